// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// İki ayrı katman vardır ve görevleri karışmaz:
//   - AuthMiddleware.Require: API route'ları için sert kapı — geçerli
//     access token yoksa 401, handler hiç çalışmaz.
//   - SessionMiddleware.Refresh: sayfa route'ları için yumuşak katman —
//     oturumu sessizce tazeler, asla engellemez.
//
// Access code ve validation token kontrolü BURADA YAPILMAZ — o ikisi
// sadece access gate endpoint'i ve OAuth callback'inde yaşar.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/akinalp/sohbet/handlers"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/pkg/cookie"
	"github.com/akinalp/sohbet/repository"
	"github.com/akinalp/sohbet/services"
)

// AuthMiddleware, access token doğrulama middleware'ı.
type AuthMiddleware struct {
	authService services.AuthService
	userRepo    repository.UserRepository
	cookies     *cookie.Manager
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(authService services.AuthService, userRepo repository.UserRepository, cookies *cookie.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
		cookies:     cookies,
	}
}

// Require, geçerli oturum zorunlu kılan middleware.
//
// 1. access_token cookie'sini oku — yoksa 401
// 2. JWT'yi doğrula — geçersiz/süresi dolmuşsa 401
// 3. Kullanıcıyı DB'den getir — token geçerli ama kullanıcı silinmiş olabilir
// 4. Kullanıcıyı context'e ekle, next handler'ı çağır
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := m.cookies.ReadAccess(r)
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := m.authService.ValidateAccessToken(token)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		user, err := m.userRepo.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, pkg.ErrNotFound) {
				pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user no longer exists")
				return
			}
			pkg.Error(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), handlers.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
