package dto

import (
	"time"

	"github.com/noah-isme/nemesis-api/internal/models"
)

// EventListQuery captures event listing filters.
type EventListQuery struct {
	OrganizerID uint
	Search      string
	Upcoming    bool
	Page        int
	Limit       int
}

// CreateEventRequest captures new event payloads.
type CreateEventRequest struct {
	Title       string     `json:"title" validate:"required,min=2,max=200"`
	Description string     `json:"description" validate:"omitempty,max=5000"`
	Venue       string     `json:"venue" validate:"required,max=255"`
	StartsAt    time.Time  `json:"startsAt" validate:"required"`
	EndsAt      *time.Time `json:"endsAt" validate:"omitempty,gtfield=StartsAt"`
	Price       int64      `json:"price" validate:"gte=0"`
	Currency    string     `json:"currency" validate:"omitempty,len=3,alpha"`
	Capacity    int        `json:"capacity" validate:"required,gt=0,lte=100000"`
}

// UpdateEventRequest captures partial event updates.
type UpdateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=2,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Venue       *string    `json:"venue" validate:"omitempty,max=255"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	Price       *int64     `json:"price" validate:"omitempty,gte=0"`
	Capacity    *int       `json:"capacity" validate:"omitempty,gt=0,lte=100000"`
}

// EventResponse serialises an event with its remaining capacity.
type EventResponse struct {
	ID          uint       `json:"id"`
	OrganizerID uint       `json:"organizerId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Venue       string     `json:"venue"`
	StartsAt    time.Time  `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
	Price       int64      `json:"price"`
	Currency    string     `json:"currency"`
	Capacity    int        `json:"capacity"`
	TicketsSold int        `json:"ticketsSold"`
	Remaining   int        `json:"remaining"`
	ImageURL    string     `json:"imageUrl"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// NewEventResponse converts an event model.
func NewEventResponse(event models.Event) EventResponse {
	return EventResponse{
		ID:          event.ID,
		OrganizerID: event.OrganizerID,
		Title:       event.Title,
		Description: event.Description,
		Venue:       event.Venue,
		StartsAt:    event.StartsAt,
		EndsAt:      event.EndsAt,
		Price:       event.Price,
		Currency:    event.Currency,
		Capacity:    event.Capacity,
		TicketsSold: event.TicketsSold,
		Remaining:   event.Remaining(),
		ImageURL:    event.ImageURL,
		CreatedAt:   event.CreatedAt,
	}
}
