package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *SQLiteStore) CreateChat(ctx context.Context, userID, locale string, at time.Time) (*Chat, error) {
	chat := &Chat{ID: uuid.NewString(), UserID: userID, Locale: locale, CreatedAt: at}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO chats (id, user_id, locale, created_at) VALUES (?, ?, ?, ?)",
		chat.ID, chat.UserID, chat.Locale, chat.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert chat: %w", err)
	}
	return chat, nil
}

// GetChat only finds chats owned by userID.
func (s *SQLiteStore) GetChat(ctx context.Context, chatID, userID string) (*Chat, error) {
	var chat Chat
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, locale, created_at FROM chats WHERE id = ? AND user_id = ?",
		chatID, userID).Scan(&chat.ID, &chat.UserID, &chat.Locale, &chat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chat %s: %w", chatID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return &chat, nil
}

func (s *SQLiteStore) UpdateChatLocale(ctx context.Context, chatID, locale string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE chats SET locale = ? WHERE id = ?", locale, chatID)
	if err != nil {
		return fmt.Errorf("failed to update chat locale: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("chat %s: %w", chatID, ErrNotFound)
	}
	return nil
}

// ListChatMessages returns the transcript in the order it was written.
func (s *SQLiteStore) ListChatMessages(ctx context.Context, chatID string) ([]ChatMessage, error) {
	return listChatMessages(ctx, s.db, chatID)
}

func listChatMessages(ctx context.Context, q querier, chatID string) ([]ChatMessage, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, chat_id, role, text, timestamp FROM chat_messages WHERE chat_id = ? ORDER BY seq ASC", chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []ChatMessage{}
	for rows.Next() {
		var msg ChatMessage
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Role, &msg.Text, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// AppendChatMessage assigns the message id and a timestamp strictly greater
// than any earlier message of the same chat.
func (s *SQLiteStore) AppendChatMessage(ctx context.Context, msg *ChatMessage, at time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var last sql.NullInt64
		if err := tx.QueryRowContext(ctx,
			"SELECT MAX(timestamp) FROM chat_messages WHERE chat_id = ?", msg.ChatID).Scan(&last); err != nil {
			return fmt.Errorf("failed to read last message timestamp: %w", err)
		}
		ts := at.UnixMilli()
		if last.Valid && ts <= last.Int64 {
			ts = last.Int64 + 1
		}

		msg.ID = uuid.NewString()
		msg.Timestamp = ts
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO chat_messages (id, chat_id, role, text, timestamp) VALUES (?, ?, ?, ?, ?)",
			msg.ID, msg.ChatID, msg.Role, msg.Text, msg.Timestamp); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
		return nil
	})
}

// ReplaceGreeting rewrites the opening model message, but only while it is
// still the only message of the chat. It reports whether it did.
func (s *SQLiteStore) ReplaceGreeting(ctx context.Context, chatID, text string) (bool, error) {
	replaced := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		messages, err := listChatMessages(ctx, tx, chatID)
		if err != nil {
			return err
		}
		if len(messages) != 1 || messages[0].Role != SenderModel {
			return nil
		}
		if _, err := tx.ExecContext(ctx, "UPDATE chat_messages SET text = ? WHERE id = ?", text, messages[0].ID); err != nil {
			return fmt.Errorf("failed to replace greeting: %w", err)
		}
		replaced = true
		return nil
	})
	return replaced, err
}
