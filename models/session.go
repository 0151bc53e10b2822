package models

import "time"

// Session, bir refresh token oturumunu temsil eder.
//
// Access token kısa ömürlü bir JWT'dir ve DB'ye yazılmaz.
// Refresh token ise uzun ömürlüdür ve DB'de saklanır:
//   - Çalınan token iptal edilebilir (satırı sil)
//   - Logout sadece ilgili oturumu kapatır
//   - Her yenilemede token rotate edilir — eski satır silinir, yenisi yazılır
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	RefreshToken string    `json:"-"` // API'ye gönderilmez
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
