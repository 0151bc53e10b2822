package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/akinalp/sohbet/database"
	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/pkg/llm"
	"github.com/akinalp/sohbet/repository"
)

// Completer, completion stream servisinin soyutlaması.
// Üretimde *llm.Client; testlerde sahte SSE sunucusuna bağlı bir client.
type Completer interface {
	Stream(ctx context.Context, messages []llm.Message) (<-chan string, <-chan error)
}

// ChatService, streaming chat orchestration'ı.
//
// Akış: mesaj geçmişi completion servisine gider, delta'lar emit
// callback'i ile handler'a (oradan SSE ile browser'a) akar. Akış
// BAŞARIYLA biterse ve istekte conversation_id varsa, kullanıcının son
// mesajı + asistan yanıtı tek transaction'da kalıcılaştırılır ve
// updated_at ileri alınır. Akış yarıda kesilirse hiçbir şey yazılmaz —
// yarım yanıt DB'ye girmez.
type ChatService interface {
	Stream(ctx context.Context, userID string, req *models.ChatRequest, emit func(delta string) error) error
}

// chatService, ChatService implementasyonu.
type chatService struct {
	db               *sql.DB // exchange kalıcılaştırması WithTx ister
	conversationRepo repository.ConversationRepository
	completer        Completer
}

// NewChatService, constructor.
func NewChatService(db *sql.DB, conversationRepo repository.ConversationRepository, completer Completer) ChatService {
	return &chatService{
		db:               db,
		conversationRepo: conversationRepo,
		completer:        completer,
	}
}

func (s *chatService) Stream(ctx context.Context, userID string, req *models.ChatRequest, emit func(delta string) error) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	// Sahiplik kontrolü STREAMING BAŞLAMADAN yapılır — 403/404,
	// SSE header'ları yazılmadan dönebilmeli
	if req.ConversationID != "" {
		if _, err := requireOwner(ctx, s.conversationRepo, userID, req.ConversationID); err != nil {
			return err
		}
	}

	history := make([]llm.Message, len(req.Messages))
	for i, m := range req.Messages {
		history[i] = llm.Message{Role: string(m.Role), Content: m.Content}
	}

	deltaChan, errChan := s.completer.Stream(ctx, history)

	var reply strings.Builder
	for delta := range deltaChan {
		if err := emit(delta); err != nil {
			// Browser koptu — upstream ctx üzerinden zaten iptal oluyor,
			// biz sadece forwarding'i durdururuz. Kalıcılaştırma YAPILMAZ.
			return fmt.Errorf("failed to forward completion delta: %w", err)
		}
		reply.WriteString(delta)
	}

	// Kanal sözleşmesi: deltaChan kapandıktan sonra errChan'de
	// en fazla bir error bekler
	if err := <-errChan; err != nil {
		return fmt.Errorf("completion stream failed: %w", err)
	}

	if req.ConversationID == "" {
		return nil
	}

	userMsg := req.Messages[len(req.Messages)-1]
	return s.persistExchange(ctx, req.ConversationID, userMsg.Content, reply.String())
}

// persistExchange, tamamlanan bir soru/cevap çiftini atomik yazar.
// Üç yazma tek transaction'dadır: kullanıcı mesajı, asistan yanıtı,
// updated_at bump'ı — ya hepsi ya hiçbiri.
func (s *chatService) persistExchange(ctx context.Context, conversationID, userContent, assistantContent string) error {
	userAt := time.Now().UTC()
	assistantAt := time.Now().UTC()
	// created_at sıralaması ekleme sırasını korumalı — saat aynı
	// nanosaniyeyi verirse asistanı bir adım ileri al
	if !assistantAt.After(userAt) {
		assistantAt = userAt.Add(time.Nanosecond)
	}

	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txMessageRepo := repository.NewSQLiteMessageRepo(tx)

		if err := txMessageRepo.Create(ctx, &models.Message{
			ConversationID: conversationID,
			Role:           models.RoleUser,
			Content:        userContent,
			CreatedAt:      userAt,
		}); err != nil {
			return err
		}

		if err := txMessageRepo.Create(ctx, &models.Message{
			ConversationID: conversationID,
			Role:           models.RoleAssistant,
			Content:        assistantContent,
			CreatedAt:      assistantAt,
		}); err != nil {
			return err
		}

		return repository.NewSQLiteConversationRepo(tx).Touch(ctx, conversationID, assistantAt)
	})
}
