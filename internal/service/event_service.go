package service

import (
	"context"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/repository"
)

// EventService exposes ticketed event operations.
type EventService interface {
	List(ctx context.Context, query dto.EventListQuery) ([]dto.EventResponse, int64, error)
	Get(ctx context.Context, id uint) (dto.EventResponse, error)
	Create(ctx context.Context, actor Actor, req dto.CreateEventRequest) (dto.EventResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.UpdateEventRequest, meta *RequestMeta) (dto.EventResponse, error)
	Delete(ctx context.Context, actor Actor, id uint, meta *RequestMeta) error
	AttachImage(ctx context.Context, actor Actor, id uint, file *multipart.FileHeader) (dto.EventResponse, error)
}

type eventService struct {
	repo      repository.EventRepository
	users     repository.UserRepository
	uploads   UploadService
	audit     AdminLogger
	currency  string
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEventService constructs the event service.
func NewEventService(repo repository.EventRepository, users repository.UserRepository, uploads UploadService, audit AdminLogger, currency string, validate *validator.Validate, logger zerolog.Logger) EventService {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = "eur"
	}
	return &eventService{
		repo:      repo,
		users:     users,
		uploads:   uploads,
		audit:     audit,
		currency:  currency,
		validator: validate,
		logger:    logger.With().Str("component", "event_service").Logger(),
		now:       time.Now,
	}
}

func (s *eventService) List(ctx context.Context, query dto.EventListQuery) ([]dto.EventResponse, int64, error) {
	filter := repository.EventFilter{
		Search: query.Search,
		Page:   query.Page,
		Limit:  query.Limit,
	}
	if query.OrganizerID > 0 {
		organizerID := query.OrganizerID
		filter.OrganizerID = &organizerID
	}
	if query.Upcoming {
		now := s.now()
		filter.UpcomingAt = &now
	}

	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]dto.EventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, dto.NewEventResponse(event))
	}
	return responses, total, nil
}

func (s *eventService) Get(ctx context.Context, id uint) (dto.EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.EventResponse{}, translateNotFound(err, ErrEventNotFound)
	}
	return dto.NewEventResponse(event), nil
}

func (s *eventService) Create(ctx context.Context, actor Actor, req dto.CreateEventRequest) (dto.EventResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EventResponse{}, err
	}

	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return dto.EventResponse{}, translateNotFound(err, ErrUserNotFound)
	}
	if !user.CanSell() {
		return dto.EventResponse{}, ErrNotSeller
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.currency
	}

	event := models.Event{
		OrganizerID: actor.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Venue:       strings.TrimSpace(req.Venue),
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt,
		Price:       req.Price,
		Currency:    currency,
		Capacity:    req.Capacity,
	}
	if err := s.repo.Create(ctx, &event); err != nil {
		return dto.EventResponse{}, err
	}

	s.logger.Info().Uint("event_id", event.ID).Uint("organizer_id", actor.ID).Msg("event created")
	return dto.NewEventResponse(event), nil
}

func (s *eventService) Update(ctx context.Context, actor Actor, id uint, req dto.UpdateEventRequest, meta *RequestMeta) (dto.EventResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EventResponse{}, err
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.EventResponse{}, translateNotFound(err, ErrEventNotFound)
	}
	if !canManage(actor, event.OrganizerID) {
		return dto.EventResponse{}, ErrForbidden
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Venue != nil {
		updates["venue"] = strings.TrimSpace(*req.Venue)
	}
	if req.StartsAt != nil {
		updates["starts_at"] = req.StartsAt.UTC()
	}
	if req.EndsAt != nil {
		updates["ends_at"] = req.EndsAt.UTC()
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Capacity != nil {
		if *req.Capacity < event.TicketsSold {
			return dto.EventResponse{}, ErrCapacityBelowSold
		}
		updates["capacity"] = *req.Capacity
	}
	if len(updates) == 0 {
		return dto.NewEventResponse(event), nil
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return dto.EventResponse{}, translateNotFound(err, ErrEventNotFound)
	}

	if actor.ID != event.OrganizerID {
		s.audit.Log(ctx, AdminActivityEntry{
			AdminID:    actor.ID,
			Action:     models.AdminActionUpdate,
			TargetType: models.TargetEvent,
			TargetID:   strconv.FormatUint(uint64(id), 10),
			Details:    map[string]interface{}{"fields": sortedKeys(updates), "organizerId": event.OrganizerID},
			Request:    meta,
		})
	}
	return dto.NewEventResponse(updated), nil
}

func (s *eventService) Delete(ctx context.Context, actor Actor, id uint, meta *RequestMeta) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translateNotFound(err, ErrEventNotFound)
	}
	if !canManage(actor, event.OrganizerID) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrEventNotFound)
	}
	if event.ImagePublicID != "" {
		_ = s.uploads.Remove(ctx, event.ImagePublicID, MediaImage)
	}

	if actor.ID != event.OrganizerID {
		s.audit.Log(ctx, AdminActivityEntry{
			AdminID:    actor.ID,
			Action:     models.AdminActionDelete,
			TargetType: models.TargetEvent,
			TargetID:   strconv.FormatUint(uint64(id), 10),
			Details:    map[string]interface{}{"title": event.Title, "organizerId": event.OrganizerID, "ticketsSold": event.TicketsSold},
			Request:    meta,
		})
	}
	return nil
}

func (s *eventService) AttachImage(ctx context.Context, actor Actor, id uint, file *multipart.FileHeader) (dto.EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.EventResponse{}, translateNotFound(err, ErrEventNotFound)
	}
	if actor.ID != event.OrganizerID {
		return dto.EventResponse{}, ErrForbidden
	}

	stored, err := s.uploads.Store(ctx, "events", file, MediaImage)
	if err != nil {
		return dto.EventResponse{}, err
	}

	updated, err := s.repo.Update(ctx, id, map[string]interface{}{
		"image_url":       stored.URL,
		"image_public_id": stored.PublicID,
	})
	if err != nil {
		_ = s.uploads.Remove(ctx, stored.PublicID, MediaImage)
		return dto.EventResponse{}, translateNotFound(err, ErrEventNotFound)
	}
	if event.ImagePublicID != "" {
		_ = s.uploads.Remove(ctx, event.ImagePublicID, MediaImage)
	}
	return dto.NewEventResponse(updated), nil
}
