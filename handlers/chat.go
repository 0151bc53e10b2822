package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/pkg/ratelimit"
	"github.com/akinalp/sohbet/services"
)

// ChatHandler, streaming chat endpoint'ini yönetir.
type ChatHandler struct {
	chatService services.ChatService
	limiter     *ratelimit.ChatRateLimiter
}

// NewChatHandler, constructor.
func NewChatHandler(chatService services.ChatService, limiter *ratelimit.ChatRateLimiter) *ChatHandler {
	return &ChatHandler{chatService: chatService, limiter: limiter}
}

// Stream godoc
// POST /api/chat
// Body: { "conversation_id": "...", "messages": [{role, content}, ...] }
//
// Yanıt Server-Sent Events formatındadır:
//
//	data: {"content":"delta"}
//	...
//	data: [DONE]
//
// SSE header'ları İLK delta gelene kadar yazılmaz — sahiplik/validation
// hataları böylece normal JSON status'ları ile dönebilir. İlk byte'tan
// sonra oluşan hatalar data: {"error": ...} eventi olarak gönderilir.
// Browser bağlantıyı koparırsa r.Context() iptal olur ve upstream
// completion isteği de kapanır.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	// İstek body'si okunmadan ÖNCE rate limit — LLM çağrısı maliyetli
	if !h.limiter.Allow(user.ID) {
		retryAfter := h.limiter.CooldownSeconds(user.ID)
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests, "too many chat requests, slow down")
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	started := false
	start := func() {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no") // nginx buffering'i kapat
		started = true
	}

	err := h.chatService.Stream(r.Context(), user.ID, &req, func(delta string) error {
		if !started {
			start()
		}
		payload, err := json.Marshal(map[string]string{"content": delta})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})

	if err != nil {
		if !started {
			pkg.Error(w, err)
			return
		}
		// Akış ortasında hata — HTTP status artık değiştirilemez,
		// hata bir SSE eventi olarak gider. Detay sızdırılmaz.
		fmt.Fprint(w, "data: {\"error\":\"stream failed\"}\n\n")
		flusher.Flush()
		return
	}

	if !started {
		start() // boş yanıt da geçerli bir akıştır
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}
