package repository

import (
	"context"

	"github.com/akinalp/sohbet/models"
)

// MessageRepository, mesaj veritabanı işlemleri için interface.
//
// Update/Delete yoktur — mesajlar yazıldıktan sonra değişmez.
// ListByConversationID mesajları created_at'e göre artan sıralar;
// created_at Go tarafında nanosaniye hassasiyetiyle atandığı için
// bu sıra her zaman ekleme sırasıdır.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByConversationID(ctx context.Context, conversationID string) ([]models.Message, error)
}
