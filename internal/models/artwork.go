package models

import "time"

// Artwork kinds.
const (
	ArtworkKindPhysical = "physical"
	ArtworkKindDigital  = "digital"
	ArtworkKindVideo    = "video"
)

// Artwork statuses.
const (
	ArtworkStatusAvailable = "available"
	ArtworkStatusSold      = "sold"
	ArtworkStatusHidden    = "hidden"
)

// Artwork is a listing published by an artist. Prices are stored in minor units.
type Artwork struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ArtistID      uint      `gorm:"not null;index" json:"artistId"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	Category      string    `gorm:"size:64;index" json:"category"`
	Medium        string    `gorm:"size:120" json:"medium"`
	Kind          string    `gorm:"size:16;not null;default:physical;index" json:"kind"`
	Price         int64     `gorm:"not null;index" json:"price"`
	Currency      string    `gorm:"size:8;not null" json:"currency"`
	ImageURL      string    `gorm:"size:512" json:"imageUrl"`
	ImagePublicID string    `gorm:"size:255" json:"-"`
	VideoURL      string    `gorm:"size:512" json:"videoUrl,omitempty"`
	VideoPublicID string    `gorm:"size:255" json:"-"`
	Status        string    `gorm:"size:16;not null;default:available;index" json:"status"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// MediaPublicIDs returns the stored media identifiers that exist for the artwork.
func (a Artwork) MediaPublicIDs() []string {
	ids := make([]string, 0, 2)
	if a.ImagePublicID != "" {
		ids = append(ids, a.ImagePublicID)
	}
	if a.VideoPublicID != "" {
		ids = append(ids, a.VideoPublicID)
	}
	return ids
}
