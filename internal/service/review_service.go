package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/repository"
)

// ReviewService manages artwork reviews.
type ReviewService interface {
	List(ctx context.Context, artworkID uint, page, limit int) ([]dto.ReviewResponse, int64, error)
	Create(ctx context.Context, actor Actor, artworkID uint, req dto.CreateReviewRequest) (dto.ReviewResponse, error)
	Delete(ctx context.Context, actor Actor, id uint, meta *RequestMeta) error
}

type reviewService struct {
	repo      repository.ReviewRepository
	artworks  repository.ArtworkRepository
	audit     AdminLogger
	sanitizer *bluemonday.Policy
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewReviewService constructs the review service.
func NewReviewService(repo repository.ReviewRepository, artworks repository.ArtworkRepository, audit AdminLogger, validate *validator.Validate, logger zerolog.Logger) ReviewService {
	return &reviewService{
		repo:      repo,
		artworks:  artworks,
		audit:     audit,
		sanitizer: bluemonday.UGCPolicy(),
		validator: validate,
		logger:    logger.With().Str("component", "review_service").Logger(),
	}
}

func (s *reviewService) List(ctx context.Context, artworkID uint, page, limit int) ([]dto.ReviewResponse, int64, error) {
	if _, err := s.artworks.GetByID(ctx, artworkID); err != nil {
		return nil, 0, translateNotFound(err, ErrArtworkNotFound)
	}

	reviews, total, err := s.repo.ListByArtwork(ctx, artworkID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]dto.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, dto.NewReviewResponse(review))
	}
	return responses, total, nil
}

func (s *reviewService) Create(ctx context.Context, actor Actor, artworkID uint, req dto.CreateReviewRequest) (dto.ReviewResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ReviewResponse{}, err
	}

	artwork, err := s.artworks.GetByID(ctx, artworkID)
	if err != nil {
		return dto.ReviewResponse{}, translateNotFound(err, ErrArtworkNotFound)
	}
	if artwork.ArtistID == actor.ID {
		return dto.ReviewResponse{}, ErrSelfReview
	}

	exists, err := s.repo.Exists(ctx, artworkID, actor.ID)
	if err != nil {
		return dto.ReviewResponse{}, err
	}
	if exists {
		return dto.ReviewResponse{}, ErrDuplicateReview
	}

	review := models.Review{
		ArtworkID: artworkID,
		UserID:    actor.ID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(s.sanitizer.Sanitize(req.Comment)),
	}
	if err := s.repo.Create(ctx, &review); err != nil {
		if exists, lookupErr := s.repo.Exists(ctx, artworkID, actor.ID); lookupErr == nil && exists {
			return dto.ReviewResponse{}, ErrDuplicateReview
		}
		return dto.ReviewResponse{}, err
	}
	return dto.NewReviewResponse(review), nil
}

func (s *reviewService) Delete(ctx context.Context, actor Actor, id uint, meta *RequestMeta) error {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translateNotFound(err, ErrReviewNotFound)
	}
	if !canManage(actor, review.UserID) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrReviewNotFound)
	}

	if actor.ID != review.UserID {
		s.audit.Log(ctx, AdminActivityEntry{
			AdminID:    actor.ID,
			Action:     models.AdminActionUpdate,
			TargetType: models.TargetArtwork,
			TargetID:   strconv.FormatUint(uint64(review.ArtworkID), 10),
			Details:    map[string]interface{}{"removedReviewId": id, "authorId": review.UserID},
			Request:    meta,
		})
	}
	return nil
}
