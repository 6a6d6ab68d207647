package api

import "net/http"

type SearchRequest struct {
	Query  string `json:"query"`
	Locale string `json:"locale,omitempty"`
}

func (h *APIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	locale, err := h.locale(r, req.Locale)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.workspace.Search(r.Context(), userFromContext(r), req.Query, locale)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type SaveSearchRequest struct {
	CaseID      string `json:"case_id"`
	Query       string `json:"query"`
	Explanation string `json:"explanation"`
	Locale      string `json:"locale,omitempty"`
}

func (h *APIHandler) SaveSearchHandler(w http.ResponseWriter, r *http.Request) {
	var req SaveSearchRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	locale, err := h.locale(r, req.Locale)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.workspace.SaveSearchToCase(r.Context(), req.CaseID, req.Query, req.Explanation, locale)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type DraftRequest struct {
	DocumentType string `json:"document_type"`
	Details      string `json:"details"`
	Locale       string `json:"locale,omitempty"`
}

type DraftResponse struct {
	DocumentType string `json:"document_type"`
	Content      string `json:"content"` // markdown
}

func (h *APIHandler) DraftHandler(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	locale, err := h.locale(r, req.Locale)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	text, err := h.workspace.Draft(r.Context(), userFromContext(r), req.DocumentType, req.Details, locale)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DraftResponse{DocumentType: req.DocumentType, Content: text})
}

type SaveDraftRequest struct {
	CaseID       string `json:"case_id"`
	DocumentType string `json:"document_type"`
	Content      string `json:"content"`
}

func (h *APIHandler) SaveDraftHandler(w http.ResponseWriter, r *http.Request) {
	var req SaveDraftRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.workspace.SaveDraftToCase(r.Context(), req.CaseID, req.DocumentType, req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
