package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/repository"
)

// ResolvedLine is a cart line joined with the current state of its product.
type ResolvedLine struct {
	Item      models.CartItem
	Title     string
	ImageURL  string
	UnitPrice int64
	Currency  string
	Available bool
}

// CartService manages shopping carts.
type CartService interface {
	Get(ctx context.Context, userID uint) (dto.CartResponse, error)
	Add(ctx context.Context, userID uint, req dto.AddCartItemRequest) (dto.CartResponse, error)
	UpdateQuantity(ctx context.Context, userID, itemID uint, req dto.UpdateCartItemRequest) (dto.CartResponse, error)
	Remove(ctx context.Context, userID, itemID uint) (dto.CartResponse, error)
	Clear(ctx context.Context, userID uint) error
	Resolve(ctx context.Context, userID uint) ([]ResolvedLine, error)
}

type cartService struct {
	repo      repository.CartRepository
	artworks  repository.ArtworkRepository
	events    repository.EventRepository
	currency  string
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCartService constructs the cart service.
func NewCartService(repo repository.CartRepository, artworks repository.ArtworkRepository, events repository.EventRepository, currency string, validate *validator.Validate, logger zerolog.Logger) CartService {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = "eur"
	}
	return &cartService{
		repo:      repo,
		artworks:  artworks,
		events:    events,
		currency:  currency,
		validator: validate,
		logger:    logger.With().Str("component", "cart_service").Logger(),
	}
}

func (s *cartService) Get(ctx context.Context, userID uint) (dto.CartResponse, error) {
	lines, err := s.Resolve(ctx, userID)
	if err != nil {
		return dto.CartResponse{}, err
	}
	return s.summarise(lines), nil
}

func (s *cartService) Add(ctx context.Context, userID uint, req dto.AddCartItemRequest) (dto.CartResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CartResponse{}, err
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	existing, err := s.existingLine(ctx, userID, req.ItemType, req.ItemID)
	if err != nil {
		return dto.CartResponse{}, err
	}

	switch req.ItemType {
	case models.ItemTypeArtwork:
		artwork, err := s.artworks.GetByID(ctx, req.ItemID)
		if err != nil {
			return dto.CartResponse{}, translateNotFound(err, ErrArtworkNotFound)
		}
		if artwork.ArtistID == userID {
			return dto.CartResponse{}, ErrOwnItem
		}
		if artwork.Status != models.ArtworkStatusAvailable {
			return dto.CartResponse{}, ErrCartItemUnavailable
		}
		if existing != nil {
			return s.Get(ctx, userID)
		}
		quantity = 1
	case models.ItemTypeEvent:
		event, err := s.events.GetByID(ctx, req.ItemID)
		if err != nil {
			return dto.CartResponse{}, translateNotFound(err, ErrEventNotFound)
		}
		if event.OrganizerID == userID {
			return dto.CartResponse{}, ErrOwnItem
		}
		wanted := quantity
		if existing != nil {
			wanted += existing.Quantity
		}
		if wanted > event.Remaining() {
			return dto.CartResponse{}, ErrInsufficientCapacity
		}
	}

	item := models.CartItem{UserID: userID, ItemType: req.ItemType, ItemID: req.ItemID, Quantity: quantity}
	if err := s.repo.Add(ctx, &item); err != nil {
		return dto.CartResponse{}, err
	}
	return s.Get(ctx, userID)
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, itemID uint, req dto.UpdateCartItemRequest) (dto.CartResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CartResponse{}, err
	}

	item, err := s.repo.GetItem(ctx, userID, itemID)
	if err != nil {
		return dto.CartResponse{}, translateNotFound(err, ErrCartItemNotFound)
	}

	switch item.ItemType {
	case models.ItemTypeArtwork:
		if req.Quantity != 1 {
			return dto.CartResponse{}, ErrInvalidQuantity
		}
	case models.ItemTypeEvent:
		event, err := s.events.GetByID(ctx, item.ItemID)
		if err != nil {
			return dto.CartResponse{}, translateNotFound(err, ErrEventNotFound)
		}
		if req.Quantity > event.Remaining() {
			return dto.CartResponse{}, ErrInsufficientCapacity
		}
	}

	if _, err := s.repo.SetQuantity(ctx, userID, itemID, req.Quantity); err != nil {
		return dto.CartResponse{}, translateNotFound(err, ErrCartItemNotFound)
	}
	return s.Get(ctx, userID)
}

func (s *cartService) Remove(ctx context.Context, userID, itemID uint) (dto.CartResponse, error) {
	if err := s.repo.Remove(ctx, userID, itemID); err != nil {
		return dto.CartResponse{}, translateNotFound(err, ErrCartItemNotFound)
	}
	return s.Get(ctx, userID)
}

func (s *cartService) Clear(ctx context.Context, userID uint) error {
	return s.repo.Clear(ctx, userID)
}

// Resolve joins each cart line with its product. Lines whose product vanished are reported unavailable.
func (s *cartService) Resolve(ctx context.Context, userID uint) ([]ResolvedLine, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]ResolvedLine, 0, len(items))
	for _, item := range items {
		line := ResolvedLine{Item: item, Currency: s.currency}
		switch item.ItemType {
		case models.ItemTypeArtwork:
			artwork, err := s.artworks.GetByID(ctx, item.ItemID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			if err == nil {
				line.Title = artwork.Title
				line.ImageURL = artwork.ImageURL
				line.UnitPrice = artwork.Price
				line.Currency = artwork.Currency
				line.Available = artwork.Status == models.ArtworkStatusAvailable && artwork.ArtistID != userID
			}
		case models.ItemTypeEvent:
			event, err := s.events.GetByID(ctx, item.ItemID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			if err == nil {
				line.Title = event.Title
				line.ImageURL = event.ImageURL
				line.UnitPrice = event.Price
				line.Currency = event.Currency
				line.Available = item.Quantity <= event.Remaining()
			}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *cartService) existingLine(ctx context.Context, userID uint, itemType string, itemID uint) (*models.CartItem, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ItemType == itemType && items[i].ItemID == itemID {
			return &items[i], nil
		}
	}
	return nil, nil
}

func (s *cartService) summarise(lines []ResolvedLine) dto.CartResponse {
	response := dto.CartResponse{
		Items:    make([]dto.CartLineResponse, 0, len(lines)),
		Currency: s.currency,
	}
	for _, line := range lines {
		subtotal := line.UnitPrice * int64(line.Item.Quantity)
		response.Items = append(response.Items, dto.CartLineResponse{
			ID:        line.Item.ID,
			ItemType:  line.Item.ItemType,
			ItemID:    line.Item.ItemID,
			Title:     line.Title,
			ImageURL:  line.ImageURL,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Item.Quantity,
			Subtotal:  subtotal,
			Available: line.Available,
		})
		response.Count += line.Item.Quantity
		if line.Available {
			response.Total += subtotal
		}
	}
	if len(lines) > 0 && lines[0].Currency != "" {
		response.Currency = lines[0].Currency
	}
	return response
}
