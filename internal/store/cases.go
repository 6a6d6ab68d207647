package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateCase inserts a new case with status OPEN and identical creation and
// update timestamps.
func (s *SQLiteStore) CreateCase(ctx context.Context, clientName, title, description string, at time.Time) (*CaseFile, error) {
	c := &CaseFile{
		ID:          uuid.NewString(),
		ClientName:  clientName,
		Title:       title,
		Description: description,
		Status:      CaseStatusOpen,
		DateCreated: at,
		DateUpdated: at,
		Notes:       []string{},
		Documents:   []CaseDocument{},
		AIResponses: []AIResponse{},
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO cases (id, client_name, title, description, status, date_created, date_updated) VALUES (?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.ClientName, c.Title, c.Description, c.Status, c.DateCreated, c.DateUpdated)
	if err != nil {
		return nil, fmt.Errorf("failed to insert case: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) GetCase(ctx context.Context, caseID string) (*CaseFile, error) {
	return loadCase(ctx, s.db, caseID)
}

// ListCases returns cases in creation order. An empty status matches all.
func (s *SQLiteStore) ListCases(ctx context.Context, status CaseStatus) ([]CaseFile, error) {
	query := "SELECT id FROM cases"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY seq ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cases: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan case row: %w", err)
		}
		ids = append(ids, id)
	}
	// Close before loading children: the pool holds a single connection.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cases: %w", err)
	}

	cases := make([]CaseFile, 0, len(ids))
	for _, id := range ids {
		c, err := loadCase(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		cases = append(cases, *c)
	}
	return cases, nil
}

// AttachDocument appends a document descriptor and refreshes DateUpdated.
func (s *SQLiteStore) AttachDocument(ctx context.Context, caseID string, doc CaseDocument, at time.Time) (*CaseFile, error) {
	var updated *CaseFile
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := touchCase(ctx, tx, caseID, at); err != nil {
			return err
		}
		url := sql.NullString{}
		if doc.URL != nil {
			url = sql.NullString{String: *doc.URL, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO case_documents (case_id, name, type, url) VALUES (?, ?, ?, ?)",
			caseID, doc.Name, doc.Type, url); err != nil {
			return fmt.Errorf("failed to insert case document: %w", err)
		}
		var err error
		updated, err = loadCase(ctx, tx, caseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AppendAIResponse appends an AI-derived entry and refreshes DateUpdated.
func (s *SQLiteStore) AppendAIResponse(ctx context.Context, caseID string, resp AIResponse) (*CaseFile, error) {
	var updated *CaseFile
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := touchCase(ctx, tx, caseID, resp.Date); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO case_ai_responses (case_id, query, response, date) VALUES (?, ?, ?, ?)",
			caseID, resp.Query, resp.Response, resp.Date); err != nil {
			return fmt.Errorf("failed to insert ai response: %w", err)
		}
		var err error
		updated, err = loadCase(ctx, tx, caseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// touchCase moves date_updated to at, never backwards.
func touchCase(ctx context.Context, q querier, caseID string, at time.Time) error {
	var current time.Time
	err := q.QueryRowContext(ctx, "SELECT date_updated FROM cases WHERE id = ?", caseID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("case %s: %w", caseID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read case: %w", err)
	}
	if at.Before(current) {
		at = current
	}
	if _, err := q.ExecContext(ctx, "UPDATE cases SET date_updated = ? WHERE id = ?", at, caseID); err != nil {
		return fmt.Errorf("failed to refresh case: %w", err)
	}
	return nil
}

func loadCase(ctx context.Context, q querier, caseID string) (*CaseFile, error) {
	c := CaseFile{
		Notes:       []string{},
		Documents:   []CaseDocument{},
		AIResponses: []AIResponse{},
	}
	err := q.QueryRowContext(ctx,
		"SELECT id, client_name, title, description, status, date_created, date_updated FROM cases WHERE id = ?",
		caseID).Scan(&c.ID, &c.ClientName, &c.Title, &c.Description, &c.Status, &c.DateCreated, &c.DateUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("case %s: %w", caseID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	notes, err := q.QueryContext(ctx, "SELECT body FROM case_notes WHERE case_id = ? ORDER BY seq ASC", caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query case notes: %w", err)
	}
	for notes.Next() {
		var body string
		if err := notes.Scan(&body); err != nil {
			notes.Close()
			return nil, fmt.Errorf("failed to scan case note: %w", err)
		}
		c.Notes = append(c.Notes, body)
	}
	notes.Close()
	if err := notes.Err(); err != nil {
		return nil, fmt.Errorf("failed to read case notes: %w", err)
	}

	docs, err := q.QueryContext(ctx, "SELECT name, type, url FROM case_documents WHERE case_id = ? ORDER BY seq ASC", caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query case documents: %w", err)
	}
	for docs.Next() {
		var doc CaseDocument
		var url sql.NullString
		if err := docs.Scan(&doc.Name, &doc.Type, &url); err != nil {
			docs.Close()
			return nil, fmt.Errorf("failed to scan case document: %w", err)
		}
		if url.Valid {
			doc.URL = &url.String
		}
		c.Documents = append(c.Documents, doc)
	}
	docs.Close()
	if err := docs.Err(); err != nil {
		return nil, fmt.Errorf("failed to read case documents: %w", err)
	}

	responses, err := q.QueryContext(ctx, "SELECT query, response, date FROM case_ai_responses WHERE case_id = ? ORDER BY seq ASC", caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ai responses: %w", err)
	}
	for responses.Next() {
		var r AIResponse
		if err := responses.Scan(&r.Query, &r.Response, &r.Date); err != nil {
			responses.Close()
			return nil, fmt.Errorf("failed to scan ai response: %w", err)
		}
		c.AIResponses = append(c.AIResponses, r)
	}
	responses.Close()
	if err := responses.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ai responses: %w", err)
	}

	return &c, nil
}
