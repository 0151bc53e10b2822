// Package database — transaction yönetimi.
//
// WithTx, birden fazla DB operasyonunun atomik (all-or-nothing)
// çalışmasını sağlar. Chat exchange kalıcılaştırması bunun tek
// kullanıcısı değil ama en önemlisidir: kullanıcı mesajı + asistan
// yanıtı + updated_at bump'ı ya birlikte yazılır ya hiçbiri.
//
// Repository'ler ile kullanım: repository constructor'ları TxQuerier
// kabul eder — normal akışta *sql.DB, transaction içinde *sql.Tx geçilir.
package database

import (
	"context"
	"database/sql"
	"fmt"
)

// TxQuerier, hem *sql.DB hem *sql.Tx tarafından karşılanan interface.
// database/sql bu interface'i tanımlamaz — biz tanımlarız,
// Go'nun structural typing'i sayesinde ikisi de otomatik karşılar.
type TxQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx, verilen fonksiyonu bir SQL transaction içinde çalıştırır.
//
// fn nil dönerse COMMIT, error dönerse ROLLBACK. fn panic atarsa
// ROLLBACK yapılıp panic tekrar fırlatılır — aksi halde transaction
// açık kalır ve SQLite dosya kilidi takılı kalabilir.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}

		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}

		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	err = fn(tx)
	return
}
