package services

import (
	"context"
	"errors"
	"testing"

	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/pkg/llm"
	"github.com/akinalp/sohbet/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompleter, Completer'ın test implementasyonu: önceden tanımlı
// delta'ları akıtır, istenirse sonunda hata üretir.
type fakeCompleter struct {
	deltas []string
	err    error
	// son çağrıda gönderilen geçmiş — prompt'un doğru kurulduğunu test eder
	gotMessages []llm.Message
}

func (f *fakeCompleter) Stream(ctx context.Context, messages []llm.Message) (<-chan string, <-chan error) {
	f.gotMessages = messages

	deltaChan := make(chan string, len(f.deltas))
	errChan := make(chan error, 1)

	go func() {
		defer close(deltaChan)
		defer close(errChan)
		for _, d := range f.deltas {
			deltaChan <- d
		}
		if f.err != nil {
			errChan <- f.err
		}
	}()

	return deltaChan, errChan
}

type chatFixture struct {
	chat         ChatService
	conversation ConversationService
	completer    *fakeCompleter
	owner        *models.User
	other        *models.User
}

func newChatFixture(t *testing.T, completer *fakeCompleter) *chatFixture {
	t.Helper()

	db := newTestDB(t)
	conversationRepo := repository.NewSQLiteConversationRepo(db.Conn)
	messageRepo := repository.NewSQLiteMessageRepo(db.Conn)

	return &chatFixture{
		chat:         NewChatService(db.Conn, conversationRepo, completer),
		conversation: NewConversationService(db.Conn, conversationRepo, messageRepo),
		completer:    completer,
		owner:        createTestUser(t, db, "owner-subject"),
		other:        createTestUser(t, db, "other-subject"),
	}
}

func userAsks(content string) *models.ChatRequest {
	return &models.ChatRequest{
		Messages: []models.ChatMessage{
			{Role: models.RoleUser, Content: content},
		},
	}
}

func TestChatService_StreamAndPersist(t *testing.T) {
	fx := newChatFixture(t, &fakeCompleter{deltas: []string{"Mer", "ha", "ba!"}})
	ctx := context.Background()

	conversation := createTestConversation(t, fx.conversation, fx.owner.ID, "Sohbet")

	req := userAsks("selam")
	req.ConversationID = conversation.ID

	var got []string
	err := fx.chat.Stream(ctx, fx.owner.ID, req, func(delta string) error {
		got = append(got, delta)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mer", "ha", "ba!"}, got)

	// Exchange atomik yazıldı: kullanıcı mesajı + birleştirilmiş yanıt
	messages, err := fx.conversation.Messages(ctx, fx.owner.ID, conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, models.RoleUser, messages[0].Role)
	assert.Equal(t, "selam", messages[0].Content)
	assert.Equal(t, models.RoleAssistant, messages[1].Role)
	assert.Equal(t, "Merhaba!", messages[1].Content)
	assert.True(t, messages[1].CreatedAt.After(messages[0].CreatedAt))

	// updated_at exchange ile ileri gitti
	bumped, err := fx.conversation.Get(ctx, fx.owner.ID, conversation.ID)
	require.NoError(t, err)
	assert.True(t, bumped.UpdatedAt.After(conversation.UpdatedAt))

	// Geçmiş completion servisine olduğu gibi gitti
	require.Len(t, fx.completer.gotMessages, 1)
	assert.Equal(t, "selam", fx.completer.gotMessages[0].Content)
}

func TestChatService_NoPersistWithoutConversation(t *testing.T) {
	fx := newChatFixture(t, &fakeCompleter{deltas: []string{"yanıt"}})
	ctx := context.Background()

	err := fx.chat.Stream(ctx, fx.owner.ID, userAsks("selam"), func(string) error { return nil })
	require.NoError(t, err)

	// conversation_id yoktu — hiçbir sohbete mesaj yazılmadı
	list, err := fx.conversation.List(ctx, fx.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestChatService_NoPersistOnStreamFailure(t *testing.T) {
	fx := newChatFixture(t, &fakeCompleter{
		deltas: []string{"kısmi "},
		err:    errors.New("upstream kapandı"),
	})
	ctx := context.Background()

	conversation := createTestConversation(t, fx.conversation, fx.owner.ID, "Sohbet")

	req := userAsks("selam")
	req.ConversationID = conversation.ID

	var got []string
	err := fx.chat.Stream(ctx, fx.owner.ID, req, func(delta string) error {
		got = append(got, delta)
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, []string{"kısmi "}, got, "hata öncesi delta'lar yine de iletilir")

	// Yarım yanıt DB'ye girmez — ne mesaj ne updated_at bump'ı
	messages, err := fx.conversation.Messages(ctx, fx.owner.ID, conversation.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	got2, err := fx.conversation.Get(ctx, fx.owner.ID, conversation.ID)
	require.NoError(t, err)
	assert.True(t, got2.UpdatedAt.Equal(conversation.UpdatedAt), "updated_at değişmemeli")
}

func TestChatService_NoPersistOnEmitFailure(t *testing.T) {
	fx := newChatFixture(t, &fakeCompleter{deltas: []string{"bir", "iki"}})
	ctx := context.Background()

	conversation := createTestConversation(t, fx.conversation, fx.owner.ID, "Sohbet")

	req := userAsks("selam")
	req.ConversationID = conversation.ID

	// Browser'ın kopmasını simüle et: ilk delta'dan sonra emit hata döner
	calls := 0
	err := fx.chat.Stream(ctx, fx.owner.ID, req, func(string) error {
		calls++
		return errors.New("connection reset")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	messages, err := fx.conversation.Messages(ctx, fx.owner.ID, conversation.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestChatService_OwnershipCheckedBeforeStreaming(t *testing.T) {
	completer := &fakeCompleter{deltas: []string{"asla"}}
	fx := newChatFixture(t, completer)
	ctx := context.Background()

	conversation := createTestConversation(t, fx.conversation, fx.owner.ID, "Sohbet")

	req := userAsks("selam")
	req.ConversationID = conversation.ID

	emitted := false
	err := fx.chat.Stream(ctx, fx.other.ID, req, func(string) error {
		emitted = true
		return nil
	})
	assert.ErrorIs(t, err, pkg.ErrForbidden)
	assert.False(t, emitted, "sahiplik hatası streaming başlamadan dönmeli")
	assert.Nil(t, completer.gotMessages, "completion servisi hiç çağrılmamalı")
}

func TestChatService_ValidatesRequest(t *testing.T) {
	fx := newChatFixture(t, &fakeCompleter{})
	ctx := context.Background()

	// Boş geçmiş
	err := fx.chat.Stream(ctx, fx.owner.ID, &models.ChatRequest{}, func(string) error { return nil })
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	// Son mesaj asistandan — kabul edilmez
	err = fx.chat.Stream(ctx, fx.owner.ID, &models.ChatRequest{
		Messages: []models.ChatMessage{
			{Role: models.RoleUser, Content: "soru"},
			{Role: models.RoleAssistant, Content: "cevap"},
		},
	}, func(string) error { return nil })
	assert.ErrorIs(t, err, pkg.ErrBadRequest)
}

func TestChatService_EmptyReplyStillPersists(t *testing.T) {
	// Upstream hiç delta üretmeden [DONE] dedi — geçerli ama boş yanıt
	fx := newChatFixture(t, &fakeCompleter{})
	ctx := context.Background()

	conversation := createTestConversation(t, fx.conversation, fx.owner.ID, "Sohbet")

	req := userAsks("selam")
	req.ConversationID = conversation.ID

	require.NoError(t, fx.chat.Stream(ctx, fx.owner.ID, req, func(string) error { return nil }))

	messages, err := fx.conversation.Messages(ctx, fx.owner.ID, conversation.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "", messages[1].Content)
}
