package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/observability"
	"github.com/noah-isme/nemesis-api/internal/repository"
)

const artworkCacheVersionKey = "nemesis:artworks:version"

// ArtworkService exposes marketplace listing operations.
type ArtworkService interface {
	List(ctx context.Context, query dto.ArtworkListQuery) (dto.ArtworkListResponse, error)
	// Featured returns the visible artworks pinned in the platform settings, in pinned order.
	Featured(ctx context.Context) ([]dto.ArtworkResponse, error)
	Get(ctx context.Context, id uint, viewer *Actor) (dto.ArtworkResponse, error)
	Create(ctx context.Context, actor Actor, req dto.CreateArtworkRequest) (dto.ArtworkResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.UpdateArtworkRequest, meta *RequestMeta) (dto.ArtworkResponse, error)
	Delete(ctx context.Context, actor Actor, id uint, meta *RequestMeta) error
	AttachMedia(ctx context.Context, actor Actor, id uint, file *multipart.FileHeader) (dto.ArtworkResponse, error)
	// Invalidate drops every cached listing page.
	Invalidate(ctx context.Context)
}

type artworkService struct {
	repo      repository.ArtworkRepository
	users     repository.UserRepository
	uploads   UploadService
	audit     AdminLogger
	events    EventPublisher
	settings  SettingsReader
	cache     *redis.Client
	ttl       time.Duration
	currency  string
	validator *validator.Validate
	logger    zerolog.Logger
}

// ArtworkServiceDeps groups the collaborators of the artwork service.
type ArtworkServiceDeps struct {
	Repo      repository.ArtworkRepository
	Users     repository.UserRepository
	Uploads   UploadService
	Audit     AdminLogger
	Events    EventPublisher
	Settings  SettingsReader
	Cache     *redis.Client
	CacheTTL  time.Duration
	Currency  string
	Validator *validator.Validate
}

// NewArtworkService constructs the artwork service. The cache is optional.
func NewArtworkService(deps ArtworkServiceDeps, logger zerolog.Logger) ArtworkService {
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	currency := strings.ToLower(strings.TrimSpace(deps.Currency))
	if currency == "" {
		currency = "eur"
	}
	events := deps.Events
	if events == nil {
		events = noopPublisher{}
	}
	return &artworkService{
		repo:      deps.Repo,
		users:     deps.Users,
		uploads:   deps.Uploads,
		audit:     deps.Audit,
		events:    events,
		settings:  deps.Settings,
		cache:     deps.Cache,
		ttl:       ttl,
		currency:  currency,
		validator: deps.Validator,
		logger:    logger.With().Str("component", "artwork_service").Logger(),
	}
}

func (s *artworkService) List(ctx context.Context, query dto.ArtworkListQuery) (dto.ArtworkListResponse, error) {
	cacheKey := s.cacheKey(ctx, query)
	if cacheKey != "" {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var response dto.ArtworkListResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				response.CacheHit = true
				observability.ArtworkCacheRequests().WithLabelValues("hit").Inc()
				return response, nil
			}
		} else if err != nil && !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("artwork cache lookup failed")
		}
		observability.ArtworkCacheRequests().WithLabelValues("miss").Inc()
	}

	filter := repository.ArtworkFilter{
		Category: strings.TrimSpace(query.Category),
		Kind:     strings.TrimSpace(query.Kind),
		Search:   query.Search,
		MinPrice: query.MinPrice,
		MaxPrice: query.MaxPrice,
		Sort:     query.Sort,
		Page:     query.Page,
		Limit:    query.Limit,
	}
	if query.ArtistID > 0 {
		artistID := query.ArtistID
		filter.ArtistID = &artistID
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ArtworkListResponse{}, err
	}

	response := dto.ArtworkListResponse{
		Items: make([]dto.ArtworkResponse, 0, len(items)),
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
	}
	for _, item := range items {
		response.Items = append(response.Items, dto.NewArtworkResponse(item))
	}

	if cacheKey != "" {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache artwork listing")
			}
		}
	}

	return response, nil
}

func (s *artworkService) Featured(ctx context.Context) ([]dto.ArtworkResponse, error) {
	if s.settings == nil {
		return []dto.ArtworkResponse{}, nil
	}
	ids := s.settings.Current(ctx).FeaturedArtworkIDs
	if len(ids) == 0 {
		return []dto.ArtworkResponse{}, nil
	}

	items, _, err := s.repo.List(ctx, repository.ArtworkFilter{IDs: ids, Limit: len(ids)})
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Artwork, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	featured := make([]dto.ArtworkResponse, 0, len(items))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			featured = append(featured, dto.NewArtworkResponse(item))
		}
	}
	return featured, nil
}

func (s *artworkService) Get(ctx context.Context, id uint, viewer *Actor) (dto.ArtworkResponse, error) {
	artwork, err := s.find(ctx, id)
	if err != nil {
		return dto.ArtworkResponse{}, err
	}
	if artwork.Status == models.ArtworkStatusHidden && (viewer == nil || !canManage(*viewer, artwork.ArtistID)) {
		return dto.ArtworkResponse{}, ErrArtworkNotFound
	}

	response := dto.NewArtworkResponse(artwork)
	summary, err := s.repo.Rating(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Uint("artwork_id", id).Msg("failed to load artwork rating")
		return response, nil
	}
	response.AverageRating = &summary.Average
	response.ReviewCount = &summary.Count
	return response, nil
}

func (s *artworkService) Create(ctx context.Context, actor Actor, req dto.CreateArtworkRequest) (dto.ArtworkResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ArtworkResponse{}, err
	}
	if err := s.ensureSeller(ctx, actor); err != nil {
		return dto.ArtworkResponse{}, err
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.currency
	}

	artwork := models.Artwork{
		ArtistID:    actor.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.ToLower(strings.TrimSpace(req.Category)),
		Medium:      strings.TrimSpace(req.Medium),
		Kind:        req.Kind,
		Price:       req.Price,
		Currency:    currency,
		Status:      models.ArtworkStatusAvailable,
	}
	if err := s.repo.Create(ctx, &artwork); err != nil {
		return dto.ArtworkResponse{}, err
	}

	s.Invalidate(ctx)
	s.logger.Info().Uint("artwork_id", artwork.ID).Uint("artist_id", actor.ID).Msg("artwork created")
	return dto.NewArtworkResponse(artwork), nil
}

func (s *artworkService) Update(ctx context.Context, actor Actor, id uint, req dto.UpdateArtworkRequest, meta *RequestMeta) (dto.ArtworkResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ArtworkResponse{}, err
	}

	artwork, err := s.find(ctx, id)
	if err != nil {
		return dto.ArtworkResponse{}, err
	}
	if !canManage(actor, artwork.ArtistID) {
		return dto.ArtworkResponse{}, ErrForbidden
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		updates["category"] = strings.ToLower(strings.TrimSpace(*req.Category))
	}
	if req.Medium != nil {
		updates["medium"] = strings.TrimSpace(*req.Medium)
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Status != nil {
		if artwork.Status == models.ArtworkStatusSold {
			return dto.ArtworkResponse{}, ErrArtworkSold
		}
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		return dto.NewArtworkResponse(artwork), nil
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return dto.ArtworkResponse{}, translateNotFound(err, ErrArtworkNotFound)
	}

	s.Invalidate(ctx)
	if actor.ID != artwork.ArtistID {
		s.audit.Log(ctx, AdminActivityEntry{
			AdminID:    actor.ID,
			Action:     models.AdminActionUpdate,
			TargetType: models.TargetArtwork,
			TargetID:   strconv.FormatUint(uint64(id), 10),
			Details:    map[string]interface{}{"fields": sortedKeys(updates), "artistId": artwork.ArtistID},
			Request:    meta,
		})
	}
	return dto.NewArtworkResponse(updated), nil
}

func (s *artworkService) Delete(ctx context.Context, actor Actor, id uint, meta *RequestMeta) error {
	artwork, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !canManage(actor, artwork.ArtistID) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateNotFound(err, ErrArtworkNotFound)
	}

	s.removeMedia(ctx, artwork)
	s.Invalidate(ctx)
	s.events.Publish(ctx, SubjectArtworkRemoved, map[string]interface{}{"artworkId": id, "artistId": artwork.ArtistID})

	if actor.ID != artwork.ArtistID {
		s.audit.Log(ctx, AdminActivityEntry{
			AdminID:    actor.ID,
			Action:     models.AdminActionDelete,
			TargetType: models.TargetArtwork,
			TargetID:   strconv.FormatUint(uint64(id), 10),
			Details:    map[string]interface{}{"title": artwork.Title, "artistId": artwork.ArtistID},
			Request:    meta,
		})
	}
	return nil
}

func (s *artworkService) AttachMedia(ctx context.Context, actor Actor, id uint, file *multipart.FileHeader) (dto.ArtworkResponse, error) {
	artwork, err := s.find(ctx, id)
	if err != nil {
		return dto.ArtworkResponse{}, err
	}
	if actor.ID != artwork.ArtistID {
		return dto.ArtworkResponse{}, ErrForbidden
	}

	kinds := []string{MediaImage}
	if artwork.Kind == models.ArtworkKindVideo {
		kinds = append(kinds, MediaVideo)
	}
	stored, err := s.uploads.Store(ctx, "artworks", file, kinds...)
	if err != nil {
		return dto.ArtworkResponse{}, err
	}

	updates := map[string]interface{}{}
	previous, previousKind := artwork.ImagePublicID, MediaImage
	if stored.Kind == MediaVideo {
		updates["video_url"] = stored.URL
		updates["video_public_id"] = stored.PublicID
		previous, previousKind = artwork.VideoPublicID, MediaVideo
	} else {
		updates["image_url"] = stored.URL
		updates["image_public_id"] = stored.PublicID
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		_ = s.uploads.Remove(ctx, stored.PublicID, stored.Kind)
		return dto.ArtworkResponse{}, translateNotFound(err, ErrArtworkNotFound)
	}
	if previous != "" {
		_ = s.uploads.Remove(ctx, previous, previousKind)
	}

	s.Invalidate(ctx)
	return dto.NewArtworkResponse(updated), nil
}

func (s *artworkService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, artworkCacheVersionKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate artwork cache")
	}
}

func (s *artworkService) cacheKey(ctx context.Context, query dto.ArtworkListQuery) string {
	if s.cache == nil {
		return ""
	}
	version, err := s.cache.Get(ctx, artworkCacheVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn().Err(err).Msg("failed to read artwork cache version")
		return ""
	}
	payload, err := json.Marshal(query)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("nemesis:artworks:v%d:%s", version, hex.EncodeToString(sum[:8]))
}

func (s *artworkService) find(ctx context.Context, id uint) (models.Artwork, error) {
	artwork, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Artwork{}, translateNotFound(err, ErrArtworkNotFound)
	}
	return artwork, nil
}

func (s *artworkService) ensureSeller(ctx context.Context, actor Actor) error {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return translateNotFound(err, ErrUserNotFound)
	}
	if !user.CanSell() {
		return ErrNotSeller
	}
	return nil
}

func (s *artworkService) removeMedia(ctx context.Context, artwork models.Artwork) {
	if artwork.ImagePublicID != "" {
		_ = s.uploads.Remove(ctx, artwork.ImagePublicID, MediaImage)
	}
	if artwork.VideoPublicID != "" {
		_ = s.uploads.Remove(ctx, artwork.VideoPublicID, MediaVideo)
	}
}

func canManage(actor Actor, ownerID uint) bool {
	return actor.ID == ownerID || actor.IsAdmin()
}

func translateNotFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func sortedKeys(values map[string]interface{}) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
