package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akinalp/sohbet/database"
	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/google/uuid"
)

// sqliteConversationRepo, ConversationRepository'nin SQLite implementasyonu.
type sqliteConversationRepo struct {
	db database.TxQuerier
}

// NewSQLiteConversationRepo, constructor.
func NewSQLiteConversationRepo(db database.TxQuerier) ConversationRepository {
	return &sqliteConversationRepo{db: db}
}

func (r *sqliteConversationRepo) Create(ctx context.Context, conversation *models.Conversation) error {
	conversation.ID = uuid.NewString()

	query := `
		INSERT INTO conversations (id, user_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		conversation.ID,
		conversation.UserID,
		conversation.Title,
		conversation.CreatedAt,
		conversation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	return nil
}

func (r *sqliteConversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	query := `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations WHERE id = ?`

	conversation := &models.Conversation{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&conversation.ID, &conversation.UserID, &conversation.Title,
		&conversation.CreatedAt, &conversation.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	return conversation, nil
}

func (r *sqliteConversationRepo) ListByUserID(ctx context.Context, userID string) ([]models.Conversation, error) {
	query := `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE user_id = ?
		ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	// Boş liste için nil yerine [] dönmek frontend'in işini kolaylaştırır
	conversations := []models.Conversation{}
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}

	return conversations, nil
}

func (r *sqliteConversationRepo) UpdateTitle(ctx context.Context, id, title string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return fmt.Errorf("failed to update conversation title: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

func (r *sqliteConversationRepo) Touch(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check touch result: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

func (r *sqliteConversationRepo) Delete(ctx context.Context, id string) error {
	// Mesajlar FK cascade ile birlikte silinir (ON DELETE CASCADE)
	result, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}
