package service

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/repository"
)

// UserService manages profiles and artist applications.
type UserService interface {
	PublicProfile(ctx context.Context, id uint) (dto.PublicProfileResponse, error)
	UpdateProfile(ctx context.Context, actor Actor, req dto.UpdateProfileRequest) (dto.UserResponse, error)
	UpdateAvatar(ctx context.Context, actor Actor, file *multipart.FileHeader) (dto.UserResponse, error)
	ApplyAsArtist(ctx context.Context, actor Actor, req dto.ArtistApplicationRequest) (dto.UserResponse, error)
}

type userService struct {
	users     repository.UserRepository
	uploads   UploadService
	settings  SettingsReader
	sanitizer *bluemonday.Policy
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs the user service.
func NewUserService(users repository.UserRepository, uploads UploadService, settings SettingsReader, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		uploads:   uploads,
		settings:  settings,
		sanitizer: bluemonday.UGCPolicy(),
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) PublicProfile(ctx context.Context, id uint) (dto.PublicProfileResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return dto.PublicProfileResponse{}, translateNotFound(err, ErrUserNotFound)
	}
	return dto.NewPublicProfileResponse(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor Actor, req dto.UpdateProfileRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		updates["bio"] = strings.TrimSpace(s.sanitizer.Sanitize(*req.Bio))
	}
	if len(updates) == 0 {
		return s.current(ctx, actor.ID)
	}

	user, err := s.users.Update(ctx, actor.ID, updates)
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err, ErrUserNotFound)
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) UpdateAvatar(ctx context.Context, actor Actor, file *multipart.FileHeader) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err, ErrUserNotFound)
	}

	uploaded, err := s.uploads.Store(ctx, "avatars", file, MediaImage)
	if err != nil {
		return dto.UserResponse{}, err
	}

	updated, err := s.users.Update(ctx, actor.ID, map[string]interface{}{
		"avatar_url":       uploaded.URL,
		"avatar_public_id": uploaded.PublicID,
	})
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err, ErrUserNotFound)
	}

	if user.AvatarPublicID != "" && user.AvatarPublicID != uploaded.PublicID {
		if err := s.uploads.Remove(ctx, user.AvatarPublicID, MediaImage); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to remove previous avatar")
		}
	}
	return dto.NewUserResponse(updated), nil
}

func (s *userService) ApplyAsArtist(ctx context.Context, actor Actor, req dto.ArtistApplicationRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}
	if s.settings != nil && !s.settings.Current(ctx).AllowArtistApplications {
		return dto.UserResponse{}, ErrApplicationsClosed
	}

	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err, ErrUserNotFound)
	}
	switch user.ArtistStatus {
	case models.ArtistStatusNone, models.ArtistStatusIncomplete, "":
	default:
		return dto.UserResponse{}, ErrApplicationNotAllowed
	}

	updated, err := s.users.Update(ctx, actor.ID, map[string]interface{}{
		"artist_status":    models.ArtistStatusPending,
		"artist_statement": strings.TrimSpace(s.sanitizer.Sanitize(req.Statement)),
		"portfolio_url":    strings.TrimSpace(req.PortfolioURL),
	})
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err, ErrUserNotFound)
	}

	s.logger.Info().Uint("user_id", actor.ID).Msg("artist application submitted")
	return dto.NewUserResponse(updated), nil
}

func (s *userService) current(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err, ErrUserNotFound)
	}
	return dto.NewUserResponse(user), nil
}
