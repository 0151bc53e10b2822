package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akinalp/sohbet/database"
	"github.com/akinalp/sohbet/models"
	"github.com/akinalp/sohbet/pkg"
	"github.com/akinalp/sohbet/repository"
)

// ConversationService, sohbet ve mesaj CRUD'u — hepsi kullanıcıya scoped.
//
// Sahiplik kuralı: conversation parametresi alan HER operasyon önce
// requireOwner'dan geçer. Kontrol tek bir yerde durur ki endpoint'ler
// arasında davranış kayması (drift) olmasın: olmayan sohbet → ErrNotFound,
// başkasının sohbeti → ErrForbidden, asla veri dönmez.
type ConversationService interface {
	List(ctx context.Context, userID string) ([]models.Conversation, error)
	Create(ctx context.Context, userID string, req *models.CreateConversationRequest) (*models.Conversation, error)
	Get(ctx context.Context, userID, conversationID string) (*models.Conversation, error)
	Rename(ctx context.Context, userID, conversationID string, req *models.UpdateConversationRequest) (*models.Conversation, error)
	Delete(ctx context.Context, userID, conversationID string) error
	Messages(ctx context.Context, userID, conversationID string) ([]models.Message, error)
	AddMessage(ctx context.Context, userID, conversationID string, req *models.CreateMessageRequest) (*models.Message, error)
}

// conversationService, ConversationService implementasyonu.
type conversationService struct {
	db               *sql.DB // AddMessage'ın WithTx'i için
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
}

// NewConversationService, constructor.
func NewConversationService(
	db *sql.DB,
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
) ConversationService {
	return &conversationService{
		db:               db,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
	}
}

func (s *conversationService) List(ctx context.Context, userID string) ([]models.Conversation, error) {
	return s.conversationRepo.ListByUserID(ctx, userID)
}

func (s *conversationService) Create(ctx context.Context, userID string, req *models.CreateConversationRequest) (*models.Conversation, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	now := time.Now().UTC()
	conversation := &models.Conversation{
		UserID:    userID,
		Title:     req.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.conversationRepo.Create(ctx, conversation); err != nil {
		return nil, err
	}

	return conversation, nil
}

func (s *conversationService) Get(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	return s.requireOwner(ctx, userID, conversationID)
}

func (s *conversationService) Rename(ctx context.Context, userID, conversationID string, req *models.UpdateConversationRequest) (*models.Conversation, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	conversation, err := s.requireOwner(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	if err := s.conversationRepo.UpdateTitle(ctx, conversationID, req.Title); err != nil {
		return nil, err
	}

	conversation.Title = req.Title
	return conversation, nil
}

func (s *conversationService) Delete(ctx context.Context, userID, conversationID string) error {
	if _, err := s.requireOwner(ctx, userID, conversationID); err != nil {
		return err
	}

	return s.conversationRepo.Delete(ctx, conversationID)
}

func (s *conversationService) Messages(ctx context.Context, userID, conversationID string) ([]models.Message, error) {
	if _, err := s.requireOwner(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	return s.messageRepo.ListByConversationID(ctx, conversationID)
}

func (s *conversationService) AddMessage(ctx context.Context, userID, conversationID string, req *models.CreateMessageRequest) (*models.Message, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if _, err := s.requireOwner(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	message := &models.Message{
		ConversationID: conversationID,
		Role:           req.Role,
		Content:        req.Content,
		CreatedAt:      now,
	}

	// Mesaj INSERT'i + updated_at bump'ı atomik: biri yazılıp diğeri
	// yazılmazsa sidebar sıralaması gerçeği yansıtmaz
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repository.NewSQLiteMessageRepo(tx).Create(ctx, message); err != nil {
			return err
		}
		return repository.NewSQLiteConversationRepo(tx).Touch(ctx, conversationID, now)
	})
	if err != nil {
		return nil, err
	}

	return message, nil
}

func (s *conversationService) requireOwner(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	return requireOwner(ctx, s.conversationRepo, userID, conversationID)
}

// requireOwner, sahiplik guard'ı — conversation'a dokunan her servis
// (ConversationService ve ChatService) aynı fonksiyondan geçer.
// Sohbet yoksa ErrNotFound, sahibi farklıysa ErrForbidden döner.
func requireOwner(ctx context.Context, repo repository.ConversationRepository, userID, conversationID string) (*models.Conversation, error) {
	conversation, err := repo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if conversation.UserID != userID {
		return nil, fmt.Errorf("%w: conversation belongs to another user", pkg.ErrForbidden)
	}

	return conversation, nil
}
