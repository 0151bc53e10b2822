// Package cookie, uygulamanın tüm cookie okuma/yazma işlemlerini tek yerde toplar.
//
// Üç cookie yönetilir:
//   - access_validated: access code kontrolünden geçildiğinin kısa ömürlü kanıtı.
//     Sunucu tarafında kaydı YOKTUR — cookie'nin kendisi tek kayıttır.
//     Geçerlilik tamamen süre + sahiplik bazlıdır; erken iptalin tek yolu
//     başarılı OAuth callback'inde silinmesidir (tek kullanımlık).
//   - access_token: kısa ömürlü JWT oturum token'ı.
//   - refresh_token: uzun ömürlü, DB'de saklanan opaque token.
//
// Hepsi aynı attribute politikasını paylaşır: HttpOnly (JS erişemez),
// SameSite=Lax, Path=/. Secure flag'i deployment ortamına bağlıdır —
// development'ta kapalı (http://localhost), production'da açık.
package cookie

import (
	"net/http"
	"time"
)

// Cookie isimleri.
const (
	AccessValidated = "access_validated"
	AccessToken     = "access_token"
	RefreshToken    = "refresh_token"
)

// ValidationTTL, access_validated cookie'sinin sabit ömrü.
// Kullanıcının access code'u girdikten sonra OAuth akışını
// tamamlaması için 10 dakikası vardır.
const ValidationTTL = 600 * time.Second

// Manager, sabit attribute'larla cookie set/get/clear işlemleri yapar.
type Manager struct {
	secure bool
}

// NewManager, constructor.
// secure: production'da true — cookie'ler sadece HTTPS üzerinden gönderilir.
func NewManager(secure bool) *Manager {
	return &Manager{secure: secure}
}

// IssueValidation, access_validated cookie'sini yazar.
// Access Gate başarılı code kontrolünden sonra çağırır.
func (m *Manager) IssueValidation(w http.ResponseWriter, value string) {
	m.set(w, AccessValidated, value, int(ValidationTTL.Seconds()))
}

// ReadValidation, access_validated cookie'sini okur.
// Cookie yoksa veya boşsa ("", false) döner — süresi dolmuş cookie'yi
// tarayıcı zaten göndermez, bu yüzden "expired" ile "absent" aynı şeydir.
func (m *Manager) ReadValidation(r *http.Request) (string, bool) {
	return m.read(r, AccessValidated)
}

// ClearValidation, access_validated cookie'sini siler.
// Başarılı OAuth exchange sonrası tek kullanımlık tüketim için çağrılır.
func (m *Manager) ClearValidation(w http.ResponseWriter) {
	m.set(w, AccessValidated, "", -1)
}

// SetSession, oturum cookie çiftini yazar.
func (m *Manager) SetSession(w http.ResponseWriter, access string, accessTTL time.Duration, refresh string, refreshTTL time.Duration) {
	m.set(w, AccessToken, access, int(accessTTL.Seconds()))
	m.set(w, RefreshToken, refresh, int(refreshTTL.Seconds()))
}

// ClearSession, oturum cookie çiftini siler (sign-out).
func (m *Manager) ClearSession(w http.ResponseWriter) {
	m.set(w, AccessToken, "", -1)
	m.set(w, RefreshToken, "", -1)
}

// ReadAccess, access_token cookie'sini okur.
func (m *Manager) ReadAccess(r *http.Request) (string, bool) {
	return m.read(r, AccessToken)
}

// ReadRefresh, refresh_token cookie'sini okur.
func (m *Manager) ReadRefresh(r *http.Request) (string, bool) {
	return m.read(r, RefreshToken)
}

func (m *Manager) set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) read(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
