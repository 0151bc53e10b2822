// Package services, business logic katmanını barındırır.
//
// Handler (HTTP) ile Repository (DB) arasında oturan katmandır:
// sahiplik kontrolleri, token üretimi, OAuth exchange ve streaming
// orchestration'ı burada yaşar. Service ASLA http.Request/Response
// bilmez, ASLA doğrudan SQL çalıştırmaz.
package services

import (
	"crypto/subtle"
	"fmt"
	"log"

	"github.com/akinalp/sohbet/pkg"
	"github.com/google/uuid"
)

// AccessService, paylaşılan access code kontrolü — sign-in'den önceki kapı.
//
// Bilinçli olarak minimal: rate limiting, lockout ve audit log YOKTUR.
// Brute-force direnci bu tasarımın kabul edilmiş bir riskidir; kapının
// arkasında hâlâ OAuth kimlik doğrulaması durur.
type AccessService interface {
	// ValidateCode, gönderilen kodu sunucu secret'ı ile karşılaştırır.
	// Eşleşirse cookie'ye yazılacak taze bir validation token döner.
	ValidateCode(code string) (string, error)
}

// accessService, AccessService implementasyonu.
type accessService struct {
	secret string
}

// NewAccessService, constructor.
// secret boş olabilir — eksiklik startup'ta değil istek anında yüzeye çıkar.
func NewAccessService(secret string) AccessService {
	return &accessService{secret: secret}
}

func (s *accessService) ValidateCode(code string) (string, error) {
	if s.secret == "" {
		// Gerçek neden log'a yazılır, istemciye generic server error gider
		log.Println("[access] ACCESS_CODE is not configured")
		return "", fmt.Errorf("%w: server configuration error", pkg.ErrInternal)
	}

	// Constant-time karşılaştırma — timing yan kanalından kod uzunluğu
	// veya eşleşen prefix bilgisi sızdırmaz
	if subtle.ConstantTimeCompare([]byte(code), []byte(s.secret)) != 1 {
		return "", fmt.Errorf("%w: invalid access code", pkg.ErrUnauthorized)
	}

	return uuid.NewString(), nil
}
