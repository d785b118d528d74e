package dto

import (
	"time"

	"github.com/noah-isme/nemesis-api/internal/models"
)

// ArtworkListQuery captures public listing filters.
type ArtworkListQuery struct {
	Category string
	Kind     string
	ArtistID uint
	Search   string
	MinPrice *int64
	MaxPrice *int64
	Page     int
	Limit    int
	Sort     string
}

// CreateArtworkRequest captures new listing payloads. Prices are in minor units.
type CreateArtworkRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=200"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Category    string `json:"category" validate:"required,max=64"`
	Medium      string `json:"medium" validate:"omitempty,max=120"`
	Kind        string `json:"kind" validate:"required,oneof=physical digital video"`
	Price       int64  `json:"price" validate:"required,gt=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3,alpha"`
}

// UpdateArtworkRequest captures partial listing updates.
type UpdateArtworkRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=2,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Category    *string `json:"category" validate:"omitempty,max=64"`
	Medium      *string `json:"medium" validate:"omitempty,max=120"`
	Price       *int64  `json:"price" validate:"omitempty,gt=0"`
	Status      *string `json:"status" validate:"omitempty,oneof=available hidden"`
}

// ArtworkResponse serialises a listing.
type ArtworkResponse struct {
	ID            uint      `json:"id"`
	ArtistID      uint      `json:"artistId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Medium        string    `json:"medium"`
	Kind          string    `json:"kind"`
	Price         int64     `json:"price"`
	Currency      string    `json:"currency"`
	ImageURL      string    `json:"imageUrl"`
	VideoURL      string    `json:"videoUrl,omitempty"`
	Status        string    `json:"status"`
	AverageRating *float64  `json:"averageRating,omitempty"`
	ReviewCount   *int64    `json:"reviewCount,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ArtworkListResponse is the cacheable list payload.
type ArtworkListResponse struct {
	Items    []ArtworkResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
	CacheHit bool              `json:"-"`
}

// NewArtworkResponse converts an artwork model.
func NewArtworkResponse(artwork models.Artwork) ArtworkResponse {
	return ArtworkResponse{
		ID:          artwork.ID,
		ArtistID:    artwork.ArtistID,
		Title:       artwork.Title,
		Description: artwork.Description,
		Category:    artwork.Category,
		Medium:      artwork.Medium,
		Kind:        artwork.Kind,
		Price:       artwork.Price,
		Currency:    artwork.Currency,
		ImageURL:    artwork.ImageURL,
		VideoURL:    artwork.VideoURL,
		Status:      artwork.Status,
		CreatedAt:   artwork.CreatedAt,
		UpdatedAt:   artwork.UpdatedAt,
	}
}
