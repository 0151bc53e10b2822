// Package pkg, katmanlar arasında paylaşılan küçük yardımcıları barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Error'lar sabit değer olarak tanımlanır ve errors.Is() ile karşılaştırılır:
//
//	if errors.Is(err, pkg.ErrForbidden) { ... }
//
// Service katmanı bu sentinel'leri %w ile sarar ("%w: conversation not found"),
// handler katmanı pkg.Error() üzerinden HTTP status code'una çevirir.
package pkg

import "errors"

// Domain-level error'lar.
//
// ErrInternal aynı zamanda konfigürasyon hataları için kullanılır:
// access code sunucuda tanımlı değilse gate 500 döner ama istemciye
// neden bilgisi sızdırmaz — generic server error yeterli.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")
)
