package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/nemesis-api/internal/auth"
	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/repository"
	"github.com/noah-isme/nemesis-api/pkg/mailer"
)

// AuthService handles registration and credential checks.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.UserResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error)
	Me(ctx context.Context, userID uint) (dto.UserResponse, error)
}

type authService struct {
	users     repository.UserRepository
	tokens    *auth.TokenManager
	mailer    mailer.Sender
	clientURL string
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, sender mailer.Sender, clientURL string, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		tokens:    tokens,
		mailer:    sender,
		clientURL: strings.TrimRight(clientURL, "/"),
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (dto.UserResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return dto.UserResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		ArtistStatus: models.ArtistStatusNone,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if _, lookupErr := s.users.GetByEmail(ctx, req.Email); lookupErr == nil {
			return dto.UserResponse{}, ErrEmailTaken
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("user registered")
	s.sendWelcome(ctx, user)
	return dto.NewUserResponse(user), nil
}

func (s *authService) sendWelcome(ctx context.Context, user models.User) {
	if s.mailer == nil {
		return
	}
	msg, err := mailer.Welcome(user.Email, mailer.WelcomeData{Name: user.Name, ClientURL: s.clientURL})
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to render welcome email")
		return
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to send welcome email")
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}
	if user.Suspended {
		return dto.AuthResponse{}, ErrAccountSuspended
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	return dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	}, nil
}

func (s *authService) Me(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, translateNotFound(err, ErrUserNotFound)
	}
	return dto.NewUserResponse(user), nil
}
