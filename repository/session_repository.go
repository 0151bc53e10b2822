package repository

import (
	"context"

	"github.com/akinalp/sohbet/models"
)

// SessionRepository, refresh token oturumlarının veritabanı işlemleri.
//
// DeleteByUserID sign-out-everywhere için değil, kullanıcı silindiğinde
// FK cascade'e ek olarak açık temizlik isteyen akışlar içindir.
// DeleteExpired startup'ta çağrılır — süresi geçmiş oturumlar zaten
// RefreshSession'da reddedilir ama satırların birikmesini önler.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByRefreshToken(ctx context.Context, token string) (*models.Session, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) error
}
