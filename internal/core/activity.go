package core

import (
	"context"
	"log"
	"time"

	"github.com/calebwils/Smart-Juris/internal/metrics"
	"github.com/calebwils/Smart-Juris/internal/store"
)

// Action labels written by the application. The log accepts any label;
// these are the ones callers use today.
const (
	ActionLogin           = "Connexion"
	ActionLogout          = "Déconnexion"
	ActionCaseCreated     = "Création Dossier"
	ActionDocumentAdded   = "Ajout Document"
	ActionLegalSearch     = "Recherche Juridique"
	ActionAIChat          = "Chat IA"
	ActionDocumentDrafted = "Génération Document"
)

type ActivityStore interface {
	AppendActivity(ctx context.Context, entry *store.ActivityLog) error
	ListActivity(ctx context.Context) ([]store.ActivityLog, error)
}

// ActivityRecorder is the append-only audit trail of user actions.
type ActivityRecorder struct {
	store ActivityStore
	now   func() time.Time
}

func NewActivityRecorder(s ActivityStore) *ActivityRecorder {
	return &ActivityRecorder{store: s, now: func() time.Time { return time.Now().UTC() }}
}

// Record adds an entry for user. A nil user records nothing, and storage
// failures are logged rather than returned.
func (r *ActivityRecorder) Record(ctx context.Context, user *store.User, action, details string) {
	if user == nil {
		return
	}
	entry := &store.ActivityLog{
		UserID:    user.ID,
		UserName:  user.Name,
		Action:    action,
		Details:   details,
		Timestamp: r.now(),
	}
	if err := r.store.AppendActivity(ctx, entry); err != nil {
		log.Printf("[ACTIVITY] Failed to record %q for user %s: %v", action, user.ID, err)
		return
	}
	metrics.ActivityEntries.WithLabelValues(action).Inc()
}

// Entries returns the whole log, newest first.
func (r *ActivityRecorder) Entries(ctx context.Context) ([]store.ActivityLog, error) {
	return r.store.ListActivity(ctx)
}
