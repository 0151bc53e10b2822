// Package repository, veritabanı erişim katmanıdır.
//
// Her entity için iki dosya vardır: interface tanımı (xxx_repository.go)
// ve SQLite implementasyonu (sqlite_xxx.go). Service katmanı interface'e
// bağımlıdır — testlerde in-memory SQLite ile gerçek implementasyon
// kullanılır, mock'a gerek kalmaz.
package repository

import (
	"context"

	"github.com/akinalp/sohbet/models"
)

// UserRepository, kullanıcı veritabanı işlemleri için interface.
//
// Upsert neden Create değil?
// Kimlik OAuth provider'a aittir: aynı kişi her girişte callback'ten
// geçer. (provider, subject) çifti zaten varsa yeni satır açılmaz,
// profil alanları (email, isim, avatar) provider'dan gelen güncel
// değerlerle tazelenir. Dönen ID her zaman kalıcı satırın ID'sidir.
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
}
