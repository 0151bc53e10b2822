package services

import (
	"context"
	"io/fs"
	"testing"

	"github.com/akinalp/sohbet/database"
	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/repository"
	"github.com/stretchr/testify/require"
)

// newTestDB, migration'ları uygulanmış in-memory SQLite açar.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(":memory:", migrationsFS)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func createTestUser(t *testing.T, db *database.DB, subject string) *models.User {
	t.Helper()

	user := &models.User{Provider: "oidc", Subject: subject}
	require.NoError(t, repository.NewSQLiteUserRepo(db.Conn).Upsert(context.Background(), user))
	return user
}

func createTestConversation(t *testing.T, svc ConversationService, userID, title string) *models.Conversation {
	t.Helper()

	conversation, err := svc.Create(context.Background(), userID, &models.CreateConversationRequest{Title: title})
	require.NoError(t, err)
	return conversation
}
