package handlers

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akinalp/sohbet/database"
	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/repository"
	"github.com/akinalp/sohbet/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// conversationFixture, gerçek service + in-memory SQLite üzerinde
// çalışan handler test düzeneği. PathValue'nun çalışması için istekler
// gerçek bir ServeMux üzerinden geçer.
type conversationFixture struct {
	svc   services.ConversationService
	owner *models.User
	other *models.User
}

// asUser, auth middleware'ının yaptığı işi taklit eder: kullanıcıyı
// context'e koyar.
func asUser(user *models.User, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newConversationFixture(t *testing.T) *conversationFixture {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)
	db, err := database.New(":memory:", migrationsFS)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	owner := &models.User{Provider: "oidc", Subject: "owner"}
	require.NoError(t, userRepo.Upsert(context.Background(), owner))
	other := &models.User{Provider: "oidc", Subject: "other"}
	require.NoError(t, userRepo.Upsert(context.Background(), other))

	svc := services.NewConversationService(
		db.Conn,
		repository.NewSQLiteConversationRepo(db.Conn),
		repository.NewSQLiteMessageRepo(db.Conn),
	)

	return &conversationFixture{
		svc:   svc,
		owner: owner,
		other: other,
	}
}

// routesFor, verilen kullanıcı adına tüm conversation route'larını bağlar.
func (fx *conversationFixture) routesFor(user *models.User) *http.ServeMux {
	h := NewConversationHandler(fx.svc)
	mh := NewMessageHandler(fx.svc)

	mux := http.NewServeMux()
	mux.Handle("GET /api/conversations", asUser(user, h.List))
	mux.Handle("POST /api/conversations", asUser(user, h.Create))
	mux.Handle("GET /api/conversations/{id}", asUser(user, h.Get))
	mux.Handle("PATCH /api/conversations/{id}", asUser(user, h.Update))
	mux.Handle("DELETE /api/conversations/{id}", asUser(user, h.Delete))
	mux.Handle("GET /api/conversations/{id}/messages", asUser(user, mh.List))
	mux.Handle("POST /api/conversations/{id}/messages", asUser(user, mh.Create))
	return mux
}

func do(t *testing.T, mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestConversationHandler_CreateAndGet(t *testing.T) {
	fx := newConversationFixture(t)
	mux := fx.routesFor(fx.owner)

	rec := do(t, mux, http.MethodPost, "/api/conversations", `{"title":"Deneme"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data models.Conversation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Deneme", created.Data.Title)

	rec = do(t, mux, http.MethodGet, "/api/conversations/"+created.Data.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConversationHandler_OwnershipStatusCodes(t *testing.T) {
	fx := newConversationFixture(t)
	ownerMux := fx.routesFor(fx.owner)
	otherMux := fx.routesFor(fx.other)

	rec := do(t, ownerMux, http.MethodPost, "/api/conversations", `{"title":"Gizli"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Data models.Conversation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Data.ID

	// Başkasının sohbeti → 403, olmayan sohbet → 404
	assert.Equal(t, http.StatusForbidden,
		do(t, otherMux, http.MethodGet, "/api/conversations/"+id, "").Code)
	assert.Equal(t, http.StatusForbidden,
		do(t, otherMux, http.MethodDelete, "/api/conversations/"+id, "").Code)
	assert.Equal(t, http.StatusForbidden,
		do(t, otherMux, http.MethodGet, "/api/conversations/"+id+"/messages", "").Code)
	assert.Equal(t, http.StatusNotFound,
		do(t, ownerMux, http.MethodGet, "/api/conversations/hayalet-id", "").Code)
}

func TestConversationHandler_RenameAndDelete(t *testing.T) {
	fx := newConversationFixture(t)
	mux := fx.routesFor(fx.owner)

	rec := do(t, mux, http.MethodPost, "/api/conversations", `{"title":"Eski"}`)
	var created struct {
		Data models.Conversation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Data.ID

	rec = do(t, mux, http.MethodPatch, "/api/conversations/"+id, `{"title":"Yeni"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Boş başlıkla rename reddedilir
	rec = do(t, mux, http.MethodPatch, "/api/conversations/"+id, `{"title":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, mux, http.MethodDelete, "/api/conversations/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, mux, http.MethodGet, "/api/conversations/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMessageHandler_AppendAndList(t *testing.T) {
	fx := newConversationFixture(t)
	mux := fx.routesFor(fx.owner)

	rec := do(t, mux, http.MethodPost, "/api/conversations", `{}`)
	var created struct {
		Data models.Conversation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Data.ID

	rec = do(t, mux, http.MethodPost, "/api/conversations/"+id+"/messages",
		`{"role":"user","content":"merhaba"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Geçersiz rol reddedilir
	rec = do(t, mux, http.MethodPost, "/api/conversations/"+id+"/messages",
		`{"role":"system","content":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, mux, http.MethodGet, "/api/conversations/"+id+"/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed struct {
		Data []models.Message `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 1)
	assert.Equal(t, "merhaba", listed.Data[0].Content)
}
