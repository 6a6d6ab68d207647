package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/calebwils/Smart-Juris/internal/core"
	"github.com/calebwils/Smart-Juris/internal/store"
)

// ListCasesHandler filters with ?q= (client name or title) and ?status=.
func (h *APIHandler) ListCasesHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	status := store.CaseStatus(strings.ToUpper(query.Get("status")))

	cases, err := core.CollectCases(h.workspace.Cases.Filter(r.Context(), query.Get("q"), status))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cases)
}

type CreateCaseRequest struct {
	ClientName  string `json:"client_name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *APIHandler) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateCaseRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.workspace.CreateCase(r.Context(), userFromContext(r), req.ClientName, req.Title, req.Description)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *APIHandler) GetCaseHandler(w http.ResponseWriter, r *http.Request) {
	c, err := h.workspace.Cases.Get(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type AttachDocumentRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (h *APIHandler) AttachDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var req AttachDocumentRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.workspace.AttachDocument(r.Context(), userFromContext(r), chi.URLParam(r, "caseID"), req.Name, req.Type)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type AppendAIResponseRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *APIHandler) AppendAIResponseHandler(w http.ResponseWriter, r *http.Request) {
	var req AppendAIResponseRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.workspace.Cases.AppendAIResult(r.Context(), chi.URLParam(r, "caseID"), req.Title, req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
