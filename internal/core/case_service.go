package core

import (
	"context"
	"iter"
	"path/filepath"
	"strings"
	"time"

	"github.com/calebwils/Smart-Juris/internal/store"
)

// DefaultAIResultTitle labels an AI result saved without a title.
const DefaultAIResultTitle = "Sauvegarde IA"

type CaseRepository interface {
	CreateCase(ctx context.Context, clientName, title, description string, at time.Time) (*store.CaseFile, error)
	GetCase(ctx context.Context, caseID string) (*store.CaseFile, error)
	ListCases(ctx context.Context, status store.CaseStatus) ([]store.CaseFile, error)
	AttachDocument(ctx context.Context, caseID string, doc store.CaseDocument, at time.Time) (*store.CaseFile, error)
	AppendAIResponse(ctx context.Context, caseID string, resp store.AIResponse) (*store.CaseFile, error)
}

// CaseService owns the collection of case files. Creation, document
// attachment and AI result appends are the only mutations it allows.
type CaseService struct {
	repo CaseRepository
	now  func() time.Time
}

func NewCaseService(repo CaseRepository) *CaseService {
	return &CaseService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *CaseService) Create(ctx context.Context, clientName, title, description string) (*store.CaseFile, error) {
	clientName = strings.TrimSpace(clientName)
	title = strings.TrimSpace(title)

	var fields []FieldError
	if clientName == "" {
		fields = append(fields, FieldError{Field: "client_name", Message: "required"})
	}
	if title == "" {
		fields = append(fields, FieldError{Field: "title", Message: "required"})
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Errors: fields}
	}

	return s.repo.CreateCase(ctx, clientName, title, strings.TrimSpace(description), s.now())
}

func (s *CaseService) Get(ctx context.Context, caseID string) (*store.CaseFile, error) {
	return s.repo.GetCase(ctx, caseID)
}

// AttachDocument records a document on a case. An empty documentType is
// taken from the file extension.
func (s *CaseService) AttachDocument(ctx context.Context, caseID, documentName, documentType string) (*store.CaseFile, error) {
	documentName = strings.TrimSpace(documentName)
	if documentName == "" {
		return nil, NewValidationError("name", "required")
	}
	documentType = strings.TrimSpace(documentType)
	if documentType == "" {
		documentType = strings.ToUpper(strings.TrimPrefix(filepath.Ext(documentName), "."))
	}
	if documentType == "" {
		return nil, NewValidationError("type", "required when the name has no extension")
	}

	return s.repo.AttachDocument(ctx, caseID, store.CaseDocument{Name: documentName, Type: documentType}, s.now())
}

// AppendAIResult stores an accepted AI answer on a case.
func (s *CaseService) AppendAIResult(ctx context.Context, caseID, title, content string) (*store.CaseFile, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("content", "required")
	}
	if strings.TrimSpace(title) == "" {
		title = DefaultAIResultTitle
	}
	return s.repo.AppendAIResponse(ctx, caseID, store.AIResponse{Query: title, Response: content, Date: s.now()})
}

// Filter yields the cases whose client name or title contains searchTerm
// (case-insensitive) and whose status equals status; an empty status matches
// all. Nothing is read until the sequence is ranged over, and every range
// re-reads the collection.
func (s *CaseService) Filter(ctx context.Context, searchTerm string, status store.CaseStatus) iter.Seq2[store.CaseFile, error] {
	return func(yield func(store.CaseFile, error) bool) {
		if status != "" && !status.Valid() {
			yield(store.CaseFile{}, NewValidationError("status", "unknown case status"))
			return
		}
		cases, err := s.repo.ListCases(ctx, status)
		if err != nil {
			yield(store.CaseFile{}, err)
			return
		}

		needle := strings.ToLower(searchTerm)
		for _, c := range cases {
			if needle != "" &&
				!strings.Contains(strings.ToLower(c.ClientName), needle) &&
				!strings.Contains(strings.ToLower(c.Title), needle) {
				continue
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

// CollectCases drains a Filter sequence, stopping at the first error.
func CollectCases(seq iter.Seq2[store.CaseFile, error]) ([]store.CaseFile, error) {
	cases := []store.CaseFile{}
	for c, err := range seq {
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}
