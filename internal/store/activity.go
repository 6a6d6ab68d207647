package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AppendActivity stores a new entry. Entries are never updated or deleted.
func (s *SQLiteStore) AppendActivity(ctx context.Context, entry *ActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO activity_logs (id, user_id, user_name, action, details, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		entry.ID, entry.UserID, entry.UserName, entry.Action, entry.Details, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}
	return nil
}

// ListActivity returns every entry, most recently recorded first.
func (s *SQLiteStore) ListActivity(ctx context.Context) ([]ActivityLog, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, user_name, action, details, timestamp FROM activity_logs ORDER BY seq DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query activity logs: %w", err)
	}
	defer rows.Close()

	logs := []ActivityLog{}
	for rows.Next() {
		var l ActivityLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.UserName, &l.Action, &l.Details, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan activity log row: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
