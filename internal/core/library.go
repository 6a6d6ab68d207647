package core

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/calebwils/Smart-Juris/internal/store"
	"github.com/calebwils/Smart-Juris/internal/utils"
)

const (
	NumRelevantExcerpts = 3   // Number of library documents added to a search prompt
	SimilarityThreshold = 0.7 // Minimum similarity for a document to count as relevant
)

type LibrarySource interface {
	ListLegalDocuments(ctx context.Context) ([]store.LegalDocument, error)
}

// LibraryIndex keeps the embedded legal library in memory and finds the
// documents closest to a query.
type LibraryIndex struct {
	source   LibrarySource
	embedder Provider

	mu   sync.RWMutex
	docs []store.LegalDocument
}

func NewLibraryIndex(ctx context.Context, source LibrarySource, embedder Provider) (*LibraryIndex, error) {
	l := &LibraryIndex{source: source, embedder: embedder}
	if err := l.Reload(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload refreshes the in-memory copy after an ingestion.
func (l *LibraryIndex) Reload(ctx context.Context) error {
	docs, err := l.source.ListLegalDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to load legal library: %w", err)
	}
	l.mu.Lock()
	l.docs = docs
	l.mu.Unlock()

	if len(docs) == 0 {
		log.Println("Legal library is empty; searches will run without reference excerpts.")
	} else {
		log.Printf("Legal library loaded with %d documents.", len(docs))
	}
	return nil
}

func (l *LibraryIndex) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.docs)
}

// LibraryEntry is how a library document is listed: without its content or
// embedding.
type LibraryEntry struct {
	ID       int64               `json:"id"`
	Title    string              `json:"title"`
	Category store.LegalCategory `json:"category"`
	Tags     []string            `json:"tags"`
}

// Entries lists the loaded documents in library order.
func (l *LibraryIndex) Entries() []LibraryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := make([]LibraryEntry, 0, len(l.docs))
	for _, doc := range l.docs {
		tags := doc.Tags
		if tags == nil {
			tags = []string{}
		}
		entries = append(entries, LibraryEntry{ID: doc.ID, Title: doc.Title, Category: doc.Category, Tags: tags})
	}
	return entries
}

type scoredDocument struct {
	doc        store.LegalDocument
	similarity float32
}

// RelevantContext returns up to NumRelevantExcerpts documents scoring at
// least SimilarityThreshold, best first, or "" when none qualify.
func (l *LibraryIndex) RelevantContext(ctx context.Context, query string) (string, error) {
	l.mu.RLock()
	docs := l.docs
	l.mu.RUnlock()
	if len(docs) == 0 {
		return "", nil
	}

	queryEmbedding, err := l.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to get query embedding: %w", err)
	}

	scored := make([]scoredDocument, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			continue
		}
		similarity, err := utils.CosineSimilarity(queryEmbedding, doc.Embedding)
		if err != nil {
			log.Printf("Error scoring legal document %d: %v. Skipping.", doc.ID, err)
			continue
		}
		if similarity >= SimilarityThreshold {
			scored = append(scored, scoredDocument{doc: doc, similarity: similarity})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].similarity > scored[j].similarity
	})
	if len(scored) > NumRelevantExcerpts {
		scored = scored[:NumRelevantExcerpts]
	}
	if len(scored) == 0 {
		return "", nil
	}

	excerpts := make([]string, 0, len(scored))
	for _, s := range scored {
		excerpts = append(excerpts, fmt.Sprintf("[%s] %s\n%s", s.doc.Category, s.doc.Title, s.doc.Content))
	}
	return strings.Join(excerpts, "\n\n"), nil
}
