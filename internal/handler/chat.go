package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/mentorchat/internal/service"
)

// ChatHandler serves a chat's message history.
type ChatHandler struct {
	chats  *service.ChatService
	logger *slog.Logger
}

func NewChatHandler(chats *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chats: chats, logger: logger}
}

// HandleList returns the chat's oldest messages, oldest first.
//
// HTTP: GET /api/chats/{chatID}/messages
func (h *ChatHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.chats.ListMessages(r.Context(), chi.URLParam(r, "chatID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

type createMessageRequest struct {
	Message  string  `json:"message"`
	URLImage *string `json:"urlImage,omitempty"`
}

// HandleCreate posts a message as the signed-in user.
//
// HTTP: POST /api/chats/{chatID}/messages  {"message": "hi"}
func (h *ChatHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.chats.CreateMessage(r.Context(), chi.URLParam(r, "chatID"), req.Message, req.URLImage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
