package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calebwils/Smart-Juris/internal/store"
)

type ChatLocaleRequest struct {
	Locale string `json:"locale,omitempty"`
}

type ChatResponse struct {
	*store.Chat
	Messages []store.ChatMessage `json:"messages"`
}

func (h *APIHandler) CreateChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatLocaleRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	locale, err := h.locale(r, req.Locale)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	chat, messages, err := h.workspace.Chats.StartChat(r.Context(), userFromContext(r), locale)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ChatResponse{Chat: chat, Messages: messages})
}

func (h *APIHandler) GetChatHandler(w http.ResponseWriter, r *http.Request) {
	chat, messages, err := h.workspace.Chats.GetChat(r.Context(), userFromContext(r), chi.URLParam(r, "chatID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Chat: chat, Messages: messages})
}

func (h *APIHandler) SetChatLocaleHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatLocaleRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	locale, err := h.locale(r, req.Locale)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	chat, messages, err := h.workspace.Chats.SetLocale(r.Context(), userFromContext(r), chi.URLParam(r, "chatID"), locale)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Chat: chat, Messages: messages})
}

type PostMessageRequest struct {
	Content string `json:"content"`
}

// PostMessageHandler answers 200 even when the model could not be reached;
// the reply is then the localized error notice.
func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req PostMessageRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	reply, err := h.workspace.Chats.PostMessage(r.Context(), userFromContext(r), chi.URLParam(r, "chatID"), req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

type SaveChatRequest struct {
	CaseID  string `json:"case_id"`
	Content string `json:"content,omitempty"`
}

func (h *APIHandler) SaveChatHandler(w http.ResponseWriter, r *http.Request) {
	var req SaveChatRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.workspace.SaveChatToCase(r.Context(), userFromContext(r), chi.URLParam(r, "chatID"), req.CaseID, req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
