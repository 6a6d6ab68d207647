package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calebwils/Smart-Juris/internal/store"
)

// stubProvider answers from fixed values and remembers every request.
type stubProvider struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []GenerateRequest

	vectors  map[string][]float32
	embedErr error
}

func (p *stubProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	return p.text, p.err
}

func (p *stubProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.embedErr != nil {
		return nil, p.embedErr
	}
	v, ok := p.vectors[text]
	if !ok {
		return nil, errors.New("no vector for " + text)
	}
	return v, nil
}

func (p *stubProvider) lastRequest(t *testing.T) GenerateRequest {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.requests, "provider was never called")
	return p.requests[len(p.requests)-1]
}

func (p *stubProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

type fixture struct {
	store     *store.SQLiteStore
	provider  *stubProvider
	workspace *Workspace
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	provider := &stubProvider{}
	gateway := NewGateway(provider, nil, 0)
	activity := NewActivityRecorder(s)
	cases := NewCaseService(s)
	chats := NewChatService(s, gateway, activity)
	return &fixture{
		store:     s,
		provider:  provider,
		workspace: NewWorkspace(cases, chats, gateway, activity, nil),
	}
}

func (f *fixture) entries(t *testing.T) []store.ActivityLog {
	t.Helper()
	entries, err := f.workspace.Activity.Entries(context.Background())
	require.NoError(t, err)
	return entries
}

var lawyer = &store.User{ID: "u-1", Name: "Maître Démo", Role: store.RoleLawyer, Subscription: store.PlanPremium}
