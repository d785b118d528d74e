package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/repository"
)

// MessageService handles direct messages between users.
type MessageService interface {
	Send(ctx context.Context, actor Actor, req dto.SendMessageRequest) (dto.MessageResponse, error)
	Conversations(ctx context.Context, actor Actor) ([]dto.ConversationResponse, error)
	Thread(ctx context.Context, actor Actor, otherID uint, page, limit int) ([]dto.MessageResponse, int64, error)
	MarkRead(ctx context.Context, actor Actor, id uint) (dto.MessageResponse, error)
}

type messageService struct {
	repo      repository.MessageRepository
	users     repository.UserRepository
	hub       *MessageHub
	events    EventPublisher
	sanitizer *bluemonday.Policy
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewMessageService constructs the message service. hub and events may be nil.
func NewMessageService(repo repository.MessageRepository, users repository.UserRepository, hub *MessageHub, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) MessageService {
	if events == nil {
		events = noopPublisher{}
	}
	return &messageService{
		repo:      repo,
		users:     users,
		hub:       hub,
		events:    events,
		sanitizer: bluemonday.StrictPolicy(),
		validator: validate,
		logger:    logger.With().Str("component", "message_service").Logger(),
		now:       time.Now,
	}
}

func (s *messageService) Send(ctx context.Context, actor Actor, req dto.SendMessageRequest) (dto.MessageResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.MessageResponse{}, err
	}
	if req.RecipientID == actor.ID {
		return dto.MessageResponse{}, ErrSelfMessage
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" {
		return dto.MessageResponse{}, ErrEmptyMessage
	}

	if _, err := s.users.GetByID(ctx, req.RecipientID); err != nil {
		return dto.MessageResponse{}, translateNotFound(err, ErrUserNotFound)
	}

	message := models.Message{
		SenderID:    actor.ID,
		RecipientID: req.RecipientID,
		Content:     content,
	}
	if err := s.repo.Create(ctx, &message); err != nil {
		return dto.MessageResponse{}, err
	}

	response := dto.NewMessageResponse(message)
	if s.hub != nil {
		s.hub.Deliver(response)
	}
	s.events.Publish(ctx, SubjectMessageCreated, response)
	return response, nil
}

func (s *messageService) Conversations(ctx context.Context, actor Actor) ([]dto.ConversationResponse, error) {
	conversations, err := s.repo.Conversations(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ConversationResponse, 0, len(conversations))
	for _, conversation := range conversations {
		counterpart, err := s.users.GetByID(ctx, conversation.CounterpartID)
		if err != nil {
			s.logger.Debug().Err(err).Uint("counterpart_id", conversation.CounterpartID).Msg("skipping conversation with missing user")
			continue
		}
		responses = append(responses, dto.ConversationResponse{
			Counterpart: dto.NewPublicProfileResponse(counterpart),
			LastMessage: dto.NewMessageResponse(conversation.LastMessage),
			Unread:      conversation.Unread,
		})
	}
	return responses, nil
}

func (s *messageService) Thread(ctx context.Context, actor Actor, otherID uint, page, limit int) ([]dto.MessageResponse, int64, error) {
	messages, total, err := s.repo.Thread(ctx, actor.ID, otherID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]dto.MessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, dto.NewMessageResponse(message))
	}
	return responses, total, nil
}

func (s *messageService) MarkRead(ctx context.Context, actor Actor, id uint) (dto.MessageResponse, error) {
	message, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.MessageResponse{}, translateNotFound(err, ErrMessageNotFound)
	}
	if message.RecipientID != actor.ID {
		return dto.MessageResponse{}, ErrForbidden
	}

	updated, err := s.repo.MarkRead(ctx, id, actor.ID, s.now().UTC())
	if err != nil {
		return dto.MessageResponse{}, translateNotFound(err, ErrMessageNotFound)
	}
	return dto.NewMessageResponse(updated), nil
}
