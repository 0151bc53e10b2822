package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akinalp/sohbet/database"
	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/google/uuid"
)

// sqliteUserRepo, UserRepository interface'inin SQLite implementasyonu.
type sqliteUserRepo struct {
	db database.TxQuerier
}

// NewSQLiteUserRepo, constructor.
func NewSQLiteUserRepo(db database.TxQuerier) UserRepository {
	return &sqliteUserRepo{db: db}
}

func (r *sqliteUserRepo) Upsert(ctx context.Context, user *models.User) error {
	// ON CONFLICT: (provider, subject) zaten varsa profil alanlarını tazele.
	// RETURNING her iki durumda da kalıcı satırın id ve created_at'ini verir —
	// mevcut kullanıcı tekrar giriş yaptığında uuid çöpe gider, eski ID kalır.
	query := `
		INSERT INTO users (id, provider, subject, email, display_name, avatar_url)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider, subject) DO UPDATE SET
			email = excluded.email,
			display_name = excluded.display_name,
			avatar_url = excluded.avatar_url
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		user.Provider,
		user.Subject,
		user.Email,
		user.DisplayName,
		user.AvatarURL,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

func (r *sqliteUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, provider, subject, email, display_name, avatar_url, created_at
		FROM users WHERE id = ?`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Provider, &user.Subject,
		&user.Email, &user.DisplayName, &user.AvatarURL, &user.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
