package database

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func migrationsFS(t *testing.T) fs.FS {
	t.Helper()
	sub, err := fs.Sub(EmbeddedMigrations, "migrations")
	require.NoError(t, err)
	return sub
}

func TestNew_AppliesMigrations(t *testing.T) {
	db, err := New(":memory:", migrationsFS(t))
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"users", "sessions", "conversations", "messages"} {
		var name string
		err := db.Conn.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		assert.NoError(t, err, "tablo eksik: %s", table)
	}
}

func TestNew_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := New(path, migrationsFS(t))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// İkinci açılış: uygulanmış migration'lar atlanır, hata çıkmaz
	db2, err := New(path, migrationsFS(t))
	require.NoError(t, err)
	defer db2.Close()

	var count int
	require.NoError(t, db2.Conn.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 1, count, "her migration dosyası tek kayıt")
}

func TestNew_ForeignKeysEnforced(t *testing.T) {
	db, err := New(":memory:", migrationsFS(t))
	require.NoError(t, err)
	defer db.Close()

	// Olmayan kullanıcıya conversation açılamaz — FK pragma'sı aktif
	_, err = db.Conn.Exec(
		`INSERT INTO conversations (id, user_id, title, created_at, updated_at)
		 VALUES ('c1', 'olmayan-user', 'x', '2026-01-01', '2026-01-01')`)
	assert.Error(t, err)
}
