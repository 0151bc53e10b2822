package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Conversation, bir kullanıcının AI ile yaptığı tek bir sohbeti temsil eder.
//
// Her conversation tam olarak bir kullanıcıya aittir — sahiplik kontrolü
// her erişim noktasında service katmanındaki requireOwner ile yapılır.
// UpdatedAt her yeni mesajda ileri alınır; sidebar sıralaması buna dayanır.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateConversationRequest, yeni sohbet açma isteği.
type CreateConversationRequest struct {
	Title string `json:"title"`
}

// Validate, başlığı kontrol eder. Boş başlık "New Chat" olur.
func (r *CreateConversationRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		r.Title = "New Chat"
	}
	if utf8.RuneCountInString(r.Title) > 120 {
		return fmt.Errorf("title must be at most 120 characters")
	}
	return nil
}

// UpdateConversationRequest, sohbet başlığı değiştirme isteği.
type UpdateConversationRequest struct {
	Title string `json:"title"`
}

// Validate, yeni başlığın geçerli olup olmadığını kontrol eder.
func (r *UpdateConversationRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(r.Title) > 120 {
		return fmt.Errorf("title must be at most 120 characters")
	}
	return nil
}
