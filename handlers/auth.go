package handlers

import (
	"net/http"
	"strings"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/pkg/cookie"
	"github.com/akinalp/sohbet/services"
)

// AuthHandler, OAuth akışı ve oturum endpoint'lerini yönetir.
type AuthHandler struct {
	authService services.AuthService
	cookies     *cookie.Manager
	development bool // redirect host mantığını etkiler
}

// NewAuthHandler, constructor.
func NewAuthHandler(authService services.AuthService, cookies *cookie.Manager, development bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		development: development,
	}
}

// Login godoc
// GET /auth/login?next=/some/path
//
// Kullanıcıyı identity provider'ın authorize sayfasına yönlendirir.
// next path'i state parametresi olarak taşınır — provider state'i
// callback'e olduğu gibi geri gönderir.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	next := sanitizeNext(r.URL.Query().Get("next"))
	http.Redirect(w, r, h.authService.AuthURL(next), http.StatusFound)
}

// Callback godoc
// GET /auth/callback?code=...&next=...
//
// Provider redirect'inin state machine'i:
//
//	Start → TokenChecked → {Exchanged → Cleaned → Redirected} | Rejected
//
//  1. code yoksa → /login?error=auth (terminal).
//  2. code var ama access_validated cookie'si yoksa → Rejected:
//     /login?error=unauthorized (terminal). Access code kontrolünü
//     atlayıp doğrudan provider ile oturum açma girişimini kapatır.
//  3. İkisi de varsa exchange denenir:
//     - Hata → generic error redirect. Validation cookie'sine
//       DOKUNULMAZ — kullanıcı kalan TTL içinde tekrar deneyebilir.
//     - Başarı → cookie silinir (tek kullanımlık), oturum cookie'leri
//       yazılır, hedefe redirect edilir.
//
// Retry YOKTUR; her başarısızlık o istek için terminaldir, kullanıcı
// akışı access gate'ten baştan başlatır.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	code := query.Get("code")
	if code == "" {
		http.Redirect(w, r, "/login?error=auth", http.StatusFound)
		return
	}

	if _, ok := h.cookies.ReadValidation(r); !ok {
		http.Redirect(w, r, "/login?error=unauthorized", http.StatusFound)
		return
	}

	tokens, err := h.authService.ExchangeCode(r.Context(), code)
	if err != nil {
		http.Redirect(w, r, "/login?error=auth", http.StatusFound)
		return
	}

	// Tek kullanımlık tüketim: aynı cookie ile ikinci callback reddedilir
	h.cookies.ClearValidation(w)
	h.cookies.SetSession(w,
		tokens.AccessToken, h.authService.AccessTokenTTL(),
		tokens.RefreshToken, h.authService.RefreshTokenTTL(),
	)

	// next öncelikle query'den okunur; provider sadece state'i geri
	// taşıyorsa (standart davranış) Login'in koyduğu değer oradan gelir
	next := query.Get("next")
	if next == "" {
		next = query.Get("state")
	}

	http.Redirect(w, r, h.redirectTarget(r, sanitizeNext(next)), http.StatusFound)
}

// Refresh godoc
// POST /api/auth/refresh
//
// SPA'nın açık oturum yenilemesi — refresh token cookie'den okunur,
// token çifti rotate edilir, yeni cookie'ler yazılır.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refresh, ok := h.cookies.ReadRefresh(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "no active session")
		return
	}

	tokens, err := h.authService.RefreshSession(r.Context(), refresh)
	if err != nil {
		h.cookies.ClearSession(w)
		pkg.Error(w, err)
		return
	}

	h.cookies.SetSession(w,
		tokens.AccessToken, h.authService.AccessTokenTTL(),
		tokens.RefreshToken, h.authService.RefreshTokenTTL(),
	)
	pkg.JSON(w, http.StatusOK, tokens.User)
}

// Logout godoc
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if refresh, ok := h.cookies.ReadRefresh(r); ok {
		if err := h.authService.Logout(r.Context(), refresh); err != nil {
			pkg.Error(w, err)
			return
		}
	}

	h.cookies.ClearSession(w)
	pkg.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me godoc
// GET /api/users/me
// Auth middleware gerektirir — context'te user bilgisi olur.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	pkg.JSON(w, http.StatusOK, user)
}

// redirectTarget, başarılı exchange sonrası gidilecek adresi hesaplar:
//   - development → same-origin path (relative redirect)
//   - reverse proxy arkasında (X-Forwarded-Host) → https://<host><next>
//   - aksi halde same-origin path
func (h *AuthHandler) redirectTarget(r *http.Request, next string) string {
	if h.development {
		return next
	}
	if forwardedHost := r.Header.Get("X-Forwarded-Host"); forwardedHost != "" {
		return "https://" + forwardedHost + next
	}
	return next
}

// sanitizeNext, next path'ini relative same-origin path'e zorlar.
// "//evil.com" ve "https://evil.com" open-redirect olurdu — kabul
// edilen tek şekil "/" ile başlayan, "//" ile başlamayan path'tir.
func sanitizeNext(next string) string {
	if next == "" ||
		!strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") ||
		strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
