package models

import "time"

// Event is a ticketed happening organised by an artist or gallerist.
type Event struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	OrganizerID   uint       `gorm:"not null;index" json:"organizerId"`
	Title         string     `gorm:"size:200;not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	Venue         string     `gorm:"size:255" json:"venue"`
	StartsAt      time.Time  `gorm:"not null;index" json:"startsAt"`
	EndsAt        *time.Time `json:"endsAt,omitempty"`
	Price         int64      `gorm:"not null" json:"price"`
	Currency      string     `gorm:"size:8;not null" json:"currency"`
	Capacity      int        `gorm:"not null" json:"capacity"`
	TicketsSold   int        `gorm:"not null;default:0" json:"ticketsSold"`
	ImageURL      string     `gorm:"size:512" json:"imageUrl"`
	ImagePublicID string     `gorm:"size:255" json:"-"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Remaining returns the number of tickets still for sale.
func (e Event) Remaining() int {
	left := e.Capacity - e.TicketsSold
	if left < 0 {
		return 0
	}
	return left
}
