// Package database, SQLite bağlantısını ve migration sistemini yönetir.
//
// database/sql standart arayüzü üzerinden pure-Go SQLite driver'ı
// (modernc.org/sqlite) kullanılır — CGO gerekmez, her platformda derlenir.
// Driver blank import ile kayıt olur; import'un yan etkisi gereklidir.
package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver kaydı
)

// DB, veritabanı bağlantısını saran struct.
// *sql.DB Go'nun built-in connection pool'udur — thread-safe'dir,
// birden fazla goroutine aynı anda güvenle kullanabilir.
type DB struct {
	Conn *sql.DB
}

// New, SQLite bağlantısı açar ve bekleyen migration'ları çalıştırır.
//
// dbPath: SQLite dosya yolu. ":memory:" test için geçerlidir.
// migrationsFS: Migration SQL dosyalarını içeren fs.FS
// (EmbeddedMigrations'tan fs.Sub ile alınır).
func New(dbPath string, migrationsFS fs.FS) (*DB, error) {
	// ":memory:" hariç, veritabanı dosyasının dizinini oluştur
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// "foreign_keys(1)" → FK constraint'leri aktif (SQLite'ta varsayılan kapalı!)
	// "journal_mode(WAL)" → eşzamanlı okuma/yazma performansı
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// ":memory:" için pool tek bağlantıya sabitlenir — her yeni bağlantı
	// kendi boş in-memory veritabanını alır, migration'lar kaybolurdu
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{Conn: conn}

	if err := db.runMigrations(migrationsFS); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("[database] connected and migrations applied")
	return db, nil
}

// Close, veritabanı bağlantısını kapatır.
func (db *DB) Close() error {
	return db.Conn.Close()
}

// runMigrations, migration dosyalarını alfabetik sırayla (001_, 002_, ...)
// çalıştırır. schema_migrations tablosu hangi dosyaların uygulandığını
// takip eder — uygulanmış olanlar atlanır, her dosya kendi transaction'ı
// içinde çalışır (yarım kalan migration DB'de iz bırakmaz).
func (db *DB) runMigrations(migrationsFS fs.FS) error {
	if _, err := db.Conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	applied := make(map[string]bool)
	rows, err := db.Conn.Query("SELECT filename FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate migration rows: %w", err)
	}

	for _, file := range sqlFiles {
		if applied[file] {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		// Migration + kayıt aynı transaction'da: ya ikisi de yazılır ya hiçbiri
		tx, err := db.Conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if err := execStatements(tx, string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", file, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (filename) VALUES (?)", file,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", file, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", file, err)
		}

		log.Printf("[database] migration applied: %s", file)
	}

	return nil
}

// execStatements, bir migration dosyasındaki SQL'i statement-by-statement
// çalıştırır. database/sql Exec'in çoklu-statement davranışı driver'a
// bağlıdır — statement'ları kendimiz bölerek driver bağımsız kalırız.
func execStatements(tx *sql.Tx, content string) error {
	for i, stmt := range splitStatements(content) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}

// splitStatements, SQL metnini noktalı virgül ile statement'lara böler.
// String literal içindeki noktalı virgüller ('it''s;ok' gibi) yoksayılır.
func splitStatements(sqlText string) []string {
	var statements []string
	var current strings.Builder
	inString := false

	for i := 0; i < len(sqlText); i++ {
		ch := sqlText[i]

		if ch == '\'' {
			// '' escape'i — iki tırnağı da yaz, toggle etme
			if inString && i+1 < len(sqlText) && sqlText[i+1] == '\'' {
				current.WriteByte(ch)
				current.WriteByte(sqlText[i+1])
				i++
				continue
			}
			inString = !inString
		}

		if ch == ';' && !inString {
			s := strings.TrimSpace(current.String())
			if s != "" {
				statements = append(statements, s)
			}
			current.Reset()
			continue
		}

		current.WriteByte(ch)
	}

	// Son statement noktalı virgülsüz bitmiş olabilir
	s := strings.TrimSpace(current.String())
	if s != "" {
		statements = append(statements, s)
	}

	return statements
}
