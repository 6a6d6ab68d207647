package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/calebwils/Smart-Juris/internal/store"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/login", apiHandler.LoginHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Session routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Post("/logout", apiHandler.LogoutHandler)
			r.Get("/me", apiHandler.MeHandler)
			r.Get("/dashboard", apiHandler.DashboardHandler)
			r.Get("/library", apiHandler.LibraryHandler)

			r.Get("/cases", apiHandler.ListCasesHandler)
			r.Post("/cases", apiHandler.CreateCaseHandler)
			r.Get("/cases/{caseID}", apiHandler.GetCaseHandler)
			r.Post("/cases/{caseID}/documents", apiHandler.AttachDocumentHandler)
			r.Post("/cases/{caseID}/ai-responses", apiHandler.AppendAIResponseHandler)

			r.Post("/search", apiHandler.SearchHandler)
			r.Post("/search/save", apiHandler.SaveSearchHandler)
			r.Post("/documents/draft", apiHandler.DraftHandler)
			r.Post("/documents/draft/save", apiHandler.SaveDraftHandler)

			r.Post("/chats", apiHandler.CreateChatHandler)
			r.Get("/chats/{chatID}", apiHandler.GetChatHandler)
			r.Put("/chats/{chatID}/locale", apiHandler.SetChatLocaleHandler)
			r.Post("/chats/{chatID}/messages", apiHandler.PostMessageHandler)
			r.Post("/chats/{chatID}/save", apiHandler.SaveChatHandler)

			// Admin only
			r.With(apiHandler.RequireRole(store.RoleAdmin)).Get("/activity", apiHandler.ActivityHandler)
		})
	})

	return r
}
