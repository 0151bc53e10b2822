package repository

import (
	"context"
	"time"

	"github.com/akinalp/sohbet/models"
)

// ConversationRepository, sohbet kayıtlarının veritabanı işlemleri.
//
// Zaman damgaları (created_at, updated_at) çağıran tarafından verilir —
// DB saati yerine Go saati kullanmak nanosaniye hassasiyeti sağlar.
// Touch, yeni mesaj yazıldığında updated_at'i ileri alır; ListByUserID
// bu kolona göre azalan sıralar (en son konuşulan sohbet en üstte).
type ConversationRepository interface {
	Create(ctx context.Context, conversation *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	ListByUserID(ctx context.Context, userID string) ([]models.Conversation, error)
	UpdateTitle(ctx context.Context, id, title string) error
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
