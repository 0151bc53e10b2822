// Package handlers, HTTP request/response işlemlerini yönetir.
//
// Handler "ince" kalır: body'yi parse et, service'i çağır, sonucu
// HTTP response'a çevir. İş mantığı service'de, SQL repository'dedir.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/pkg/cookie"
	"github.com/akinalp/sohbet/services"
)

// AccessHandler, access gate endpoint'ini yönetir.
type AccessHandler struct {
	accessService services.AccessService
	cookies       *cookie.Manager
}

// NewAccessHandler, constructor.
func NewAccessHandler(accessService services.AccessService, cookies *cookie.Manager) *AccessHandler {
	return &AccessHandler{
		accessService: accessService,
		cookies:       cookies,
	}
}

// Validate godoc
// POST /api/validate-access
// Body: { "accessCode": "..." }
//
// Kod doğruysa access_validated cookie'si yazılır (600s TTL) — OAuth
// callback'i bu cookie olmadan oturum açmayı reddeder. Yanlış kodda
// cookie YAZILMAZ ve neden bilgisi verilmez; secret sunucuda tanımlı
// değilse generic 500 döner.
func (h *AccessHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessCode string `json:"accessCode"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.accessService.ValidateCode(req.AccessCode)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	h.cookies.IssueValidation(w, token)
	pkg.JSON(w, http.StatusOK, map[string]string{"message": "access code validated"})
}
