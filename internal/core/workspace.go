package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/calebwils/Smart-Juris/internal/i18n"
	"github.com/calebwils/Smart-Juris/internal/store"
)

const emailDomain = "smartjuris.com"

// Workspace is what a signed-in user works through: it pairs each gateway
// and case operation with the activity entry it leaves behind.
type Workspace struct {
	Cases    *CaseService
	Chats    *ChatService
	Gateway  *Gateway
	Activity *ActivityRecorder
	Library  *LibraryIndex // may be nil
}

func NewWorkspace(cases *CaseService, chats *ChatService, gateway *Gateway, activity *ActivityRecorder, library *LibraryIndex) *Workspace {
	return &Workspace{Cases: cases, Chats: chats, Gateway: gateway, Activity: activity, Library: library}
}

// Login opens a session user. Nothing is checked beyond the shape of the
// input; there are no credentials.
func (w *Workspace) Login(ctx context.Context, name string, role store.UserRole, plan store.SubscriptionPlan) (*store.User, error) {
	name = strings.TrimSpace(name)
	var fields []FieldError
	if name == "" {
		fields = append(fields, FieldError{Field: "name", Message: "required"})
	}
	if !role.Valid() {
		fields = append(fields, FieldError{Field: "role", Message: "unknown role"})
	}
	if plan == "" {
		plan = store.PlanPremium
	} else if !plan.Valid() {
		fields = append(fields, FieldError{Field: "subscription", Message: "unknown plan"})
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Errors: fields}
	}

	user := &store.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        EmailFor(name),
		Role:         role,
		Subscription: plan,
	}
	w.Activity.Record(ctx, user, ActionLogin, "Utilisateur connecté")
	return user, nil
}

// EmailFor derives the display address of a session user. Only the first
// space becomes a dot.
func EmailFor(name string) string {
	local := strings.Replace(strings.ToLower(strings.TrimSpace(name)), " ", ".", 1)
	return local + "@" + emailDomain
}

func (w *Workspace) Logout(ctx context.Context, user *store.User) {
	w.Activity.Record(ctx, user, ActionLogout, "Utilisateur déconnecté")
}

func (w *Workspace) CreateCase(ctx context.Context, user *store.User, clientName, title, description string) (*store.CaseFile, error) {
	c, err := w.Cases.Create(ctx, clientName, title, description)
	if err != nil {
		return nil, err
	}
	w.Activity.Record(ctx, user, ActionCaseCreated, "Dossier: "+c.Title)
	return c, nil
}

func (w *Workspace) AttachDocument(ctx context.Context, user *store.User, caseID, name, docType string) (*store.CaseFile, error) {
	c, err := w.Cases.AttachDocument(ctx, caseID, name, docType)
	if err != nil {
		return nil, err
	}
	doc := c.Documents[len(c.Documents)-1]
	w.Activity.Record(ctx, user, ActionDocumentAdded, fmt.Sprintf("Fichier %s ajouté au dossier %s", doc.Name, c.Title))
	return c, nil
}

// Search is only logged once the gateway has answered.
func (w *Workspace) Search(ctx context.Context, user *store.User, query string, locale i18n.Locale) (*SearchResult, error) {
	result, err := w.Gateway.Search(ctx, query, locale)
	if err != nil {
		return nil, err
	}
	w.Activity.Record(ctx, user, ActionLegalSearch, "Query: "+query)
	return result, nil
}

func (w *Workspace) Draft(ctx context.Context, user *store.User, documentType, details string, locale i18n.Locale) (string, error) {
	text, err := w.Gateway.Draft(ctx, documentType, details, locale)
	if err != nil {
		return "", err
	}
	w.Activity.Record(ctx, user, ActionDocumentDrafted, "Type: "+documentType)
	return text, nil
}

// SaveSearchToCase keeps a search answer on a case.
func (w *Workspace) SaveSearchToCase(ctx context.Context, caseID, query, explanation string, locale i18n.Locale) (*store.CaseFile, error) {
	if strings.TrimSpace(query) == "" {
		return nil, NewValidationError("query", "required")
	}
	content := fmt.Sprintf("%s: %s\n\n%s:\n%s",
		i18n.T(locale, "cases.question"), query, i18n.T(locale, "cases.ai_answer"), explanation)
	return w.Cases.AppendAIResult(ctx, caseID, i18n.T(locale, "cases.saved_ai"), content)
}

// SaveChatToCase keeps content from a conversation on a case. Empty content
// saves the whole transcript.
func (w *Workspace) SaveChatToCase(ctx context.Context, user *store.User, chatID, caseID, content string) (*store.CaseFile, error) {
	if strings.TrimSpace(content) == "" {
		transcript, err := w.Chats.Transcript(ctx, user, chatID)
		if err != nil {
			return nil, err
		}
		content = transcript
	} else if _, err := w.Chats.repo.GetChat(ctx, chatID, user.ID); err != nil {
		return nil, err
	}
	return w.Cases.AppendAIResult(ctx, caseID, i18n.T(i18n.DefaultLocale, "chat.saved_title"), content)
}

func (w *Workspace) SaveDraftToCase(ctx context.Context, caseID, documentType, content string) (*store.CaseFile, error) {
	if strings.TrimSpace(documentType) == "" {
		return nil, NewValidationError("document_type", "required")
	}
	return w.Cases.AppendAIResult(ctx, caseID, "Document: "+strings.TrimSpace(documentType), content)
}

// LibraryEntries lists the reference library; empty when none was loaded.
func (w *Workspace) LibraryEntries() []LibraryEntry {
	if w.Library == nil {
		return []LibraryEntry{}
	}
	return w.Library.Entries()
}

// Dashboard summarizes the firm's cases and how much the AI features were
// used.
type Dashboard struct {
	ActiveCases    int                      `json:"active_cases"`
	ClosedCases    int                      `json:"closed_cases"`
	TotalDocuments int                      `json:"total_documents"`
	AIQueries      int                      `json:"ai_queries"`
	ByStatus       map[store.CaseStatus]int `json:"by_status"`
}

// Dashboard counts every case that is not closed as active, archived ones
// included. AI queries are searches and chat turns.
func (w *Workspace) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{ByStatus: map[store.CaseStatus]int{
		store.CaseStatusOpen:     0,
		store.CaseStatusPending:  0,
		store.CaseStatusClosed:   0,
		store.CaseStatusArchived: 0,
	}}
	for c, err := range w.Cases.Filter(ctx, "", "") {
		if err != nil {
			return nil, err
		}
		d.ByStatus[c.Status]++
		if c.Status == store.CaseStatusClosed {
			d.ClosedCases++
		} else {
			d.ActiveCases++
		}
		d.TotalDocuments += len(c.Documents)
	}

	entries, err := w.Activity.Entries(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Action == ActionLegalSearch || e.Action == ActionAIChat {
			d.AIQueries++
		}
	}
	return d, nil
}
