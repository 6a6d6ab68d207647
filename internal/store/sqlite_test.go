package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var t0 = time.Date(2024, 5, 12, 9, 30, 0, 0, time.UTC)

func TestCreateCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateCase(ctx, "Dupont SARL", "Litige X", "Retard de livraison", t0)
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, CaseStatusOpen, c.Status)
	assert.True(t, c.DateCreated.Equal(c.DateUpdated))
	assert.Empty(t, c.Notes)
	assert.Empty(t, c.Documents)
	assert.Empty(t, c.AIResponses)

	got, err := s.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dupont SARL", got.ClientName)
	assert.Equal(t, "Litige X", got.Title)
	assert.True(t, got.DateCreated.Equal(t0))
	assert.NotNil(t, got.Documents)
}

func TestGetCase_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetCase(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAttachDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c, err := s.CreateCase(ctx, "Dupont SARL", "Litige X", "", t0)
	require.NoError(t, err)

	url := "https://files.example/contrat.pdf"
	updated, err := s.AttachDocument(ctx, c.ID, CaseDocument{Name: "Contrat.pdf", Type: "PDF"}, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, updated.Documents, 1)
	assert.Equal(t, "Contrat.pdf", updated.Documents[0].Name)
	assert.Nil(t, updated.Documents[0].URL)
	assert.True(t, updated.DateUpdated.Equal(t0.Add(time.Hour)))

	updated, err = s.AttachDocument(ctx, c.ID, CaseDocument{Name: "Annexe.pdf", Type: "PDF", URL: &url}, t0.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, updated.Documents, 2)
	assert.Equal(t, "Annexe.pdf", updated.Documents[1].Name)
	require.NotNil(t, updated.Documents[1].URL)
	assert.Equal(t, url, *updated.Documents[1].URL)
}

func TestAttachDocument_UnknownCase(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AttachDocument(context.Background(), "missing", CaseDocument{Name: "a", Type: "PDF"}, t0)
	assert.ErrorIs(t, err, ErrNotFound)
}

// stepFailingQuerier rewrites the document listing so that it fails while
// rows are being read, after the query itself was accepted.
type stepFailingQuerier struct {
	querier
}

func (q stepFailingQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if strings.Contains(query, "FROM case_documents") {
		query = "SELECT name, type, url FROM case_documents WHERE case_id = ? AND abs(-9223372036854775808) > 0"
	}
	return q.querier.QueryContext(ctx, query, args...)
}

func TestLoadCase_ReadErrorIsReturned(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c, err := s.CreateCase(ctx, "Dupont SARL", "Litige X", "", t0)
	require.NoError(t, err)
	_, err = s.AttachDocument(ctx, c.ID, CaseDocument{Name: "Contrat.pdf", Type: "PDF"}, t0.Add(time.Hour))
	require.NoError(t, err)

	got, err := loadCase(ctx, stepFailingQuerier{s.db}, c.ID)
	assert.Nil(t, got)
	assert.ErrorContains(t, err, "case documents")
}

func TestAppendAIResponse_DateNeverRegresses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c, err := s.CreateCase(ctx, "Mme. Martin", "Divorce", "", t0)
	require.NoError(t, err)

	later := t0.Add(time.Hour)
	updated, err := s.AppendAIResponse(ctx, c.ID, AIResponse{Query: "q1", Response: "r1", Date: later})
	require.NoError(t, err)
	assert.True(t, updated.DateUpdated.Equal(later))

	// a skewed clock must not move date_updated backwards
	updated, err = s.AppendAIResponse(ctx, c.ID, AIResponse{Query: "q2", Response: "r2", Date: t0})
	require.NoError(t, err)
	assert.True(t, updated.DateUpdated.Equal(later))
	require.Len(t, updated.AIResponses, 2)
	assert.Equal(t, "q1", updated.AIResponses[0].Query)
	assert.Equal(t, "r2", updated.AIResponses[1].Response)
}

func TestListCases(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a, _ := s.CreateCase(ctx, "A", "first", "", t0)
	b, _ := s.CreateCase(ctx, "B", "second", "", t0)

	all, err := s.ListCases(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, b.ID, all[1].ID)

	open, err := s.ListCases(ctx, CaseStatusOpen)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	closed, err := s.ListCases(ctx, CaseStatusClosed)
	require.NoError(t, err)
	assert.Empty(t, closed)
}

func TestActivity_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i, action := range []string{"Connexion", "Création Dossier", "Déconnexion"} {
		require.NoError(t, s.AppendActivity(ctx, &ActivityLog{
			UserID: "u1", UserName: "Maître Valéry", Action: action, Details: "d", Timestamp: t0.Add(time.Duration(i) * time.Minute),
		}))
	}

	logs, err := s.ListActivity(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "Déconnexion", logs[0].Action)
	assert.Equal(t, "Création Dossier", logs[1].Action)
	assert.Equal(t, "Connexion", logs[2].Action)
	assert.NotEmpty(t, logs[0].ID)
}

func TestChatMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chat, err := s.CreateChat(ctx, "u1", "fr", t0)
	require.NoError(t, err)

	_, err = s.GetChat(ctx, chat.ID, "someone-else")
	assert.ErrorIs(t, err, ErrNotFound)

	greeting := &ChatMessage{ChatID: chat.ID, Role: SenderModel, Text: "Bonjour"}
	require.NoError(t, s.AppendChatMessage(ctx, greeting, t0))

	replaced, err := s.ReplaceGreeting(ctx, chat.ID, "Hello")
	require.NoError(t, err)
	assert.True(t, replaced)

	// same wall clock: timestamps still strictly increase
	user := &ChatMessage{ChatID: chat.ID, Role: SenderUser, Text: "Question"}
	require.NoError(t, s.AppendChatMessage(ctx, user, t0))
	assert.Greater(t, user.Timestamp, greeting.Timestamp)

	replaced, err = s.ReplaceGreeting(ctx, chat.ID, "Bonjour")
	require.NoError(t, err)
	assert.False(t, replaced)

	messages, err := s.ListChatMessages(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "Hello", messages[0].Text)
	assert.Equal(t, "Question", messages[1].Text)

	require.NoError(t, s.UpdateChatLocale(ctx, chat.ID, "en"))
	got, err := s.GetChat(ctx, chat.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "en", got.Locale)
}

func TestParseLibraryTable(t *testing.T) {
	content := `| title | category | content | tags |
|---|---|---|---|
| Article 1103 | Code | Les contrats légalement formés tiennent lieu de loi. | contrats, obligations |
| Bad row | Unknown | ignored | |
| Loi Pinel | Loi | Bail commercial. | |
not a row
| Cass. civ. 3e | Jurisprudence | Résiliation du bail. |
`
	docs := ParseLibraryTable(content)
	require.Len(t, docs, 3)
	assert.Equal(t, "Article 1103", docs[0].Title)
	assert.Equal(t, CategoryCode, docs[0].Category)
	assert.Equal(t, []string{"contrats", "obligations"}, docs[0].Tags)
	assert.Empty(t, docs[1].Tags)
	assert.Equal(t, CategoryJurisprudence, docs[2].Category)
}

func TestIngestLibraryFromFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "library.md")
	require.NoError(t, os.WriteFile(path, []byte(`| title | category | content |
|---|---|---|
| Article 1103 | Code | Force obligatoire. |
| Article 1104 | Code | Bonne foi. |
`), 0o644))

	embed := func(_ context.Context, text string) ([]float32, error) {
		if text == "Article 1104\nBonne foi." {
			return nil, errors.New("quota")
		}
		return []float32{1, 0}, nil
	}

	n, err := s.IngestLibraryFromFile(ctx, path, embed)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	docs, err := s.ListLegalDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, []float32{1, 0}, docs[0].Embedding)
}
