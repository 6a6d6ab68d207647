package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/calebwils/Smart-Juris/internal/auth"
	"github.com/calebwils/Smart-Juris/internal/core"
	"github.com/calebwils/Smart-Juris/internal/i18n"
	"github.com/calebwils/Smart-Juris/internal/store"
)

type contextKey string

const userContextKey contextKey = "user"

type APIHandler struct {
	workspace     *core.Workspace
	tokens        *auth.TokenIssuer
	defaultLocale i18n.Locale
}

func NewAPIHandler(ws *core.Workspace, tokens *auth.TokenIssuer, defaultLocale i18n.Locale) *APIHandler {
	if !defaultLocale.Valid() {
		defaultLocale = i18n.DefaultLocale
	}
	return &APIHandler{workspace: ws, tokens: tokens, defaultLocale: defaultLocale}
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		user, err := h.tokens.Parse(bearerToken(r))
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole refuses users whose role is not listed.
func (h *APIHandler) RequireRole(roles ...store.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := userFromContext(r)
			for _, role := range roles {
				if user != nil && user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			locale := i18n.Match(r.Header.Get("Accept-Language"), h.defaultLocale)
			writeJSON(w, http.StatusForbidden, errorResponse{Error: i18n.T(locale, "common.forbidden")})
		})
	}
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func userFromContext(r *http.Request) *store.User {
	user, _ := r.Context().Value(userContextKey).(*store.User)
	return user
}

// locale picks the explicit value when given, else the best Accept-Language
// match.
func (h *APIHandler) locale(r *http.Request, explicit string) (i18n.Locale, error) {
	if explicit != "" {
		l, err := i18n.ParseLocale(explicit)
		if err != nil {
			return "", core.NewValidationError("locale", "must be fr or en")
		}
		return l, nil
	}
	return i18n.Match(r.Header.Get("Accept-Language"), h.defaultLocale), nil
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields []core.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// decode reads a JSON body. An empty body leaves dst untouched.
func decode(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return core.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}

// writeError maps domain errors onto status codes. Gateway failures only
// ever show the generic notice.
func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr  *core.ValidationError
		gwErr *core.GatewayError
	)
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: vErr.Error(), Fields: vErr.Errors})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &gwErr):
		log.Printf("AI gateway failure on %s %s: %v", r.Method, r.URL.Path, err)
		locale := i18n.Match(r.Header.Get("Accept-Language"), h.defaultLocale)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: i18n.T(locale, "common.error")})
	default:
		log.Printf("Error handling %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

type LoginRequest struct {
	Name         string `json:"name"`
	Role         string `json:"role"`
	Subscription string `json:"subscription,omitempty"`
	Locale       string `json:"locale,omitempty"`
}

type SessionResponse struct {
	Token string      `json:"token,omitempty"`
	User  *store.User `json:"user"`
	// Localized labels for display.
	RoleLabel string `json:"role_label"`
	PlanLabel string `json:"plan_label"`
}

func (h *APIHandler) session(user *store.User, token string, locale i18n.Locale) SessionResponse {
	return SessionResponse{
		Token:     token,
		User:      user,
		RoleLabel: i18n.T(locale, "roles."+string(user.Role)),
		PlanLabel: i18n.T(locale, "plans."+string(user.Subscription)),
	}
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	locale, err := h.locale(r, req.Locale)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.workspace.Login(r.Context(), req.Name,
		store.UserRole(strings.ToUpper(req.Role)), store.SubscriptionPlan(strings.ToUpper(req.Subscription)))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		log.Printf("Error generating JWT for user %s: %v", user.ID, err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.session(user, token, locale))
}

// LogoutHandler ends the session: the token stops working right away.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.tokens.Revoke(bearerToken(r)); err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	h.workspace.Logout(r.Context(), userFromContext(r))
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	locale, err := h.locale(r, r.URL.Query().Get("locale"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.session(userFromContext(r), "", locale))
}

func (h *APIHandler) ActivityHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.workspace.Activity.Entries(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *APIHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	d, err := h.workspace.Dashboard(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *APIHandler) LibraryHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.workspace.LibraryEntries())
}
