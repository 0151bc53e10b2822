package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MessageRole, mesajın kimden geldiğini belirtir.
// Sadece iki değer geçerlidir — typed constant ile kısıtlarız.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Valid, rolün bilinen bir değer olup olmadığını kontrol eder.
func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message, bir sohbetin içindeki tek bir mesajı temsil eder.
//
// Mesajlar yazıldıktan sonra DEĞİŞMEZ — update/delete operasyonu yoktur.
// CreatedAt Go tarafında nanosaniye hassasiyetiyle atanır; sıralama
// her zaman created_at üzerinden yapılır ve ekleme sırasını korur.
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	CreatedAt      time.Time   `json:"created_at"`
}

// CreateMessageRequest, bir sohbete mesaj ekleme isteği.
type CreateMessageRequest struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// Validate, rol ve içeriği kontrol eder.
func (r *CreateMessageRequest) Validate() error {
	if !r.Role.Valid() {
		return fmt.Errorf("role must be %q or %q", RoleUser, RoleAssistant)
	}
	r.Content = strings.TrimSpace(r.Content)
	if utf8.RuneCountInString(r.Content) < 1 {
		return fmt.Errorf("message content is required")
	}
	return nil
}

// ChatMessage, completion API'sine giden/SSE ile dönen mesaj şekli.
// DB'deki Message'dan farklıdır: ID'si yoktur, geçmiş olduğu gibi taşınır.
type ChatMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// ChatRequest, streaming chat endpoint'inin isteği.
// ConversationID opsiyoneldir — verilirse exchange tamamlanınca
// kullanıcının son mesajı ve asistan yanıtı o sohbete kalıcı yazılır.
type ChatRequest struct {
	ConversationID string        `json:"conversation_id,omitempty"`
	Messages       []ChatMessage `json:"messages"`
}

// Validate, mesaj geçmişini kontrol eder:
// en az bir mesaj olmalı ve son mesaj kullanıcıdan gelmeli.
func (r *ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("at least one message is required")
	}
	for i := range r.Messages {
		if !r.Messages[i].Role.Valid() {
			return fmt.Errorf("message %d: invalid role %q", i, r.Messages[i].Role)
		}
		r.Messages[i].Content = strings.TrimSpace(r.Messages[i].Content)
	}
	last := r.Messages[len(r.Messages)-1]
	if last.Role != RoleUser {
		return fmt.Errorf("last message must be from the user")
	}
	if last.Content == "" {
		return fmt.Errorf("message content is required")
	}
	return nil
}
