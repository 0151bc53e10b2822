package middleware

import (
	"net/http"

	"github.com/akinalp/sohbet/pkg/cookie"
	"github.com/akinalp/sohbet/services"
)

// SessionMiddleware, sayfa istekleri için sessiz oturum tazeleme.
//
// API olmayan her route'un önünde çalışır — SPA sayfası render
// edilmeden önce süresi dolmuş access token canlı bir refresh token
// ile yenilenir ve cookie'ler yeniden yazılır. Başarısızlık durumları
// AYIRT EDİLMEZ: refresh edilemezse kullanıcı sayfaya "çıkış yapmış"
// olarak devam eder, login yönlendirmesini sayfanın kendisi yapar.
type SessionMiddleware struct {
	authService services.AuthService
	cookies     *cookie.Manager
}

// NewSessionMiddleware, constructor.
func NewSessionMiddleware(authService services.AuthService, cookies *cookie.Manager) *SessionMiddleware {
	return &SessionMiddleware{
		authService: authService,
		cookies:     cookies,
	}
}

// Refresh, gerekiyorsa oturumu tazeleyen middleware. Asla engellemez.
func (m *SessionMiddleware) Refresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Access token hâlâ geçerliyse dokunma
		if token, ok := m.cookies.ReadAccess(r); ok {
			if _, err := m.authService.ValidateAccessToken(token); err == nil {
				next.ServeHTTP(w, r)
				return
			}
		}

		refresh, ok := m.cookies.ReadRefresh(r)
		if !ok {
			next.ServeHTTP(w, r) // oturum yok — sayfa yine de render edilir
			return
		}

		tokens, err := m.authService.RefreshSession(r.Context(), refresh)
		if err != nil {
			// Geçersiz/süresi dolmuş refresh token — cookie'leri temizle
			// ki her sayfa yüklemesinde aynı DB sorgusu tekrarlanmasın
			m.cookies.ClearSession(w)
			next.ServeHTTP(w, r)
			return
		}

		m.cookies.SetSession(w,
			tokens.AccessToken, m.authService.AccessTokenTTL(),
			tokens.RefreshToken, m.authService.RefreshTokenTTL(),
		)
		next.ServeHTTP(w, r)
	})
}
