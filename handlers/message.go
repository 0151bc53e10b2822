package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/services"
)

// MessageHandler, sohbet mesajı endpoint'lerini yönetir.
// Mesajlar immutable'dır — update/delete endpoint'i yoktur.
type MessageHandler struct {
	conversationService services.ConversationService
}

// NewMessageHandler, constructor.
func NewMessageHandler(conversationService services.ConversationService) *MessageHandler {
	return &MessageHandler{conversationService: conversationService}
}

// List godoc
// GET /api/conversations/{id}/messages
// Mesajlar ekleme sırasında (created_at artan) döner.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	messages, err := h.conversationService.Messages(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, messages)
}

// Create godoc
// POST /api/conversations/{id}/messages
// Body: { "role": "user"|"assistant", "content": "..." }
// updated_at aynı transaction'da ileri alınır.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := h.conversationService.AddMessage(r.Context(), user.ID, r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, message)
}
