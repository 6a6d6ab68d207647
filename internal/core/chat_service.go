package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/calebwils/Smart-Juris/internal/i18n"
	"github.com/calebwils/Smart-Juris/internal/store"
)

type ChatRepository interface {
	CreateChat(ctx context.Context, userID, locale string, at time.Time) (*store.Chat, error)
	GetChat(ctx context.Context, chatID, userID string) (*store.Chat, error)
	UpdateChatLocale(ctx context.Context, chatID, locale string) error
	ListChatMessages(ctx context.Context, chatID string) ([]store.ChatMessage, error)
	AppendChatMessage(ctx context.Context, msg *store.ChatMessage, at time.Time) error
	ReplaceGreeting(ctx context.Context, chatID, text string) (bool, error)
}

// ChatService keeps conversation transcripts and drives one gateway round
// trip per user message. The gateway is stateless, so every turn carries the
// whole transcript.
type ChatService struct {
	repo     ChatRepository
	gateway  *Gateway
	activity *ActivityRecorder
	now      func() time.Time

	// One turn at a time per chat, so every turn sees the whole transcript.
	mu    sync.Mutex
	turns map[string]*sync.Mutex
}

func NewChatService(repo ChatRepository, gateway *Gateway, activity *ActivityRecorder) *ChatService {
	return &ChatService{
		repo:     repo,
		gateway:  gateway,
		activity: activity,
		now:      func() time.Time { return time.Now().UTC() },
		turns:    make(map[string]*sync.Mutex),
	}
}

func (s *ChatService) lockChat(chatID string) func() {
	s.mu.Lock()
	l, ok := s.turns[chatID]
	if !ok {
		l = &sync.Mutex{}
		s.turns[chatID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// StartChat opens a conversation seeded with the localized greeting.
func (s *ChatService) StartChat(ctx context.Context, user *store.User, locale i18n.Locale) (*store.Chat, []store.ChatMessage, error) {
	if !locale.Valid() {
		return nil, nil, NewValidationError("locale", "must be fr or en")
	}
	chat, err := s.repo.CreateChat(ctx, user.ID, string(locale), s.now())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create chat: %w", err)
	}

	greeting := store.ChatMessage{ChatID: chat.ID, Role: store.SenderModel, Text: i18n.T(locale, "chat.initial")}
	if err := s.repo.AppendChatMessage(ctx, &greeting, s.now()); err != nil {
		return nil, nil, fmt.Errorf("failed to store greeting: %w", err)
	}
	return chat, []store.ChatMessage{greeting}, nil
}

func (s *ChatService) GetChat(ctx context.Context, user *store.User, chatID string) (*store.Chat, []store.ChatMessage, error) {
	chat, err := s.repo.GetChat(ctx, chatID, user.ID)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.repo.ListChatMessages(ctx, chatID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get messages for chat: %w", err)
	}
	return chat, messages, nil
}

// SetLocale switches the conversation language. The greeting follows the new
// locale only while nothing else has been said.
func (s *ChatService) SetLocale(ctx context.Context, user *store.User, chatID string, locale i18n.Locale) (*store.Chat, []store.ChatMessage, error) {
	if !locale.Valid() {
		return nil, nil, NewValidationError("locale", "must be fr or en")
	}
	if _, err := s.repo.GetChat(ctx, chatID, user.ID); err != nil {
		return nil, nil, err
	}
	unlock := s.lockChat(chatID)
	defer unlock()
	if err := s.repo.UpdateChatLocale(ctx, chatID, string(locale)); err != nil {
		return nil, nil, err
	}
	if _, err := s.repo.ReplaceGreeting(ctx, chatID, i18n.T(locale, "chat.initial")); err != nil {
		return nil, nil, fmt.Errorf("failed to localize greeting: %w", err)
	}
	return s.GetChat(ctx, user, chatID)
}

// PostMessage appends the user's message and the model's reply. A gateway
// failure is not returned: the reply becomes the localized error notice and
// no activity is recorded.
func (s *ChatService) PostMessage(ctx context.Context, user *store.User, chatID, content string) (*store.ChatMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("content", "required")
	}
	chat, err := s.repo.GetChat(ctx, chatID, user.ID)
	if err != nil {
		return nil, err
	}
	locale, err := i18n.ParseLocale(chat.Locale)
	if err != nil {
		locale = i18n.DefaultLocale
	}

	unlock := s.lockChat(chatID)
	defer unlock()

	prior, err := s.repo.ListChatMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	history := make([]Turn, 0, len(prior))
	for _, m := range prior {
		history = append(history, Turn{Role: m.Role, Text: m.Text})
	}

	userMsg := store.ChatMessage{ChatID: chatID, Role: store.SenderUser, Text: content}
	if err := s.repo.AppendChatMessage(ctx, &userMsg, s.now()); err != nil {
		return nil, fmt.Errorf("failed to store user message: %w", err)
	}

	reply, err := s.gateway.Chat(ctx, history, content, locale)
	failed := err != nil
	if failed {
		log.Printf("Error generating model response for chat %s: %v", chatID, err)
		reply = i18n.T(locale, "common.error")
	}

	modelMsg := store.ChatMessage{ChatID: chatID, Role: store.SenderModel, Text: reply}
	if err := s.repo.AppendChatMessage(ctx, &modelMsg, s.now()); err != nil {
		return nil, fmt.Errorf("failed to store model message: %w", err)
	}

	if !failed {
		s.activity.Record(ctx, user, ActionAIChat,
			fmt.Sprintf("User sent message. Length: %d", utf8.RuneCountInString(content)))
	}
	return &modelMsg, nil
}

// Transcript renders a conversation as plain text, one message per paragraph.
func (s *ChatService) Transcript(ctx context.Context, user *store.User, chatID string) (string, error) {
	_, messages, err := s.GetChat(ctx, user, chatID)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, fmt.Sprintf("%s: %s", m.Role, m.Text))
	}
	return strings.Join(parts, "\n\n"), nil
}
