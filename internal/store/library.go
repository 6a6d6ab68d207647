package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// Embedder turns text into a vector for similarity search.
type Embedder func(ctx context.Context, text string) ([]float32, error)

func (s *SQLiteStore) InsertLegalDocument(ctx context.Context, doc *LegalDocument) error {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	embeddingJSON, err := json.Marshal(doc.Embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO legal_documents (title, category, content, tags_json, embedding_json) VALUES (?, ?, ?, ?, ?)",
		doc.Title, doc.Category, doc.Content, string(tagsJSON), string(embeddingJSON))
	if err != nil {
		return fmt.Errorf("failed to insert legal document: %w", err)
	}
	doc.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) ListLegalDocuments(ctx context.Context) ([]LegalDocument, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, category, content, tags_json, embedding_json FROM legal_documents ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query legal documents: %w", err)
	}
	defer rows.Close()

	var docs []LegalDocument
	for rows.Next() {
		var doc LegalDocument
		var tagsJSON string
		var embeddingJSON *string
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Category, &doc.Content, &tagsJSON, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("failed to scan legal document row: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &doc.Tags); err != nil {
			log.Printf("Warning: bad tags for legal document %d: %v", doc.ID, err)
		}
		if embeddingJSON == nil || *embeddingJSON == "" || *embeddingJSON == "null" {
			log.Printf("Warning: no embedding for legal document %d (%.50s)", doc.ID, doc.Title)
		} else if err := json.Unmarshal([]byte(*embeddingJSON), &doc.Embedding); err != nil {
			log.Printf("Warning: failed to unmarshal embedding for legal document %d: %v", doc.ID, err)
			doc.Embedding = nil
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStore) ClearLibrary(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM legal_documents"); err != nil {
		return fmt.Errorf("failed to clear legal documents: %w", err)
	}
	return nil
}

// ParseLibraryTable reads a markdown table whose rows are
// | title | category | content | tags |, tags being comma separated and
// optional. Header and separator rows are skipped, as are malformed rows.
func ParseLibraryTable(content string) []LegalDocument {
	var docs []LegalDocument
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "|") || !strings.HasSuffix(trimmed, "|") {
			log.Printf("Skipping line %d, not a table row", i+1)
			continue
		}

		cells := strings.Split(strings.Trim(trimmed, "|"), "|")
		for j := range cells {
			cells[j] = strings.TrimSpace(cells[j])
		}
		if strings.Trim(cells[0], "-: ") == "" {
			continue // separator
		}
		if strings.EqualFold(cells[0], "title") {
			continue // header
		}
		if len(cells) < 3 || cells[0] == "" || cells[2] == "" {
			log.Printf("Skipping malformed library row %d", i+1)
			continue
		}

		category := LegalCategory(cells[1])
		if !category.Valid() {
			log.Printf("Skipping library row %d: unknown category %q", i+1, cells[1])
			continue
		}

		doc := LegalDocument{Title: cells[0], Category: category, Content: cells[2], Tags: []string{}}
		if len(cells) > 3 {
			for _, tag := range strings.Split(cells[3], ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					doc.Tags = append(doc.Tags, tag)
				}
			}
		}
		docs = append(docs, doc)
	}
	return docs
}

// IngestLibraryFromFile replaces the library with the documents of a markdown
// table file, embedding each one. Rows that fail to embed are skipped.
func (s *SQLiteStore) IngestLibraryFromFile(ctx context.Context, filePath string, embed Embedder) (int, error) {
	contentBytes, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read library file %s: %w", filePath, err)
	}

	docs := ParseLibraryTable(string(contentBytes))
	if len(docs) == 0 {
		log.Printf("No legal documents found in %s", filePath)
		return 0, nil
	}
	log.Printf("Parsed %d legal documents. Now embedding (this may take a while)...", len(docs))

	if err := s.ClearLibrary(ctx); err != nil {
		return 0, err
	}

	// delay to not hit the embedding rate limit (1500/min)
	ticker := time.NewTicker(40 * time.Millisecond)
	defer ticker.Stop()

	count := 0
	for i := range docs {
		select {
		case <-ctx.Done():
			return count, ctx.Err()
		case <-ticker.C:
		}

		doc := &docs[i]
		embedding, err := embed(ctx, doc.Title+"\n"+doc.Content)
		if err != nil {
			log.Printf("Failed to embed legal document %d (%.50s): %v. Skipping.", i+1, doc.Title, err)
			continue
		}
		doc.Embedding = embedding
		if err := s.InsertLegalDocument(ctx, doc); err != nil {
			log.Printf("Failed to store legal document %d: %v. Skipping.", i+1, err)
			continue
		}
		count++
		if count%10 == 0 || count == len(docs) {
			log.Printf("Ingested %d/%d legal documents...", count, len(docs))
		}
	}
	return count, nil
}
