package dto

import (
	"time"

	"github.com/noah-isme/nemesis-api/internal/models"
)

// CreateReviewRequest captures an artwork review.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

// SendMessageRequest captures a direct message.
type SendMessageRequest struct {
	RecipientID uint   `json:"recipientId" validate:"required,gt=0"`
	Content     string `json:"content" validate:"required,min=1,max=2000"`
}

// MessageResponse serialises a direct message.
type MessageResponse struct {
	ID          uint       `json:"id"`
	SenderID    uint       `json:"senderId"`
	RecipientID uint       `json:"recipientId"`
	Content     string     `json:"content"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ConversationResponse summarises a thread with one counterpart.
type ConversationResponse struct {
	Counterpart PublicProfileResponse `json:"counterpart"`
	LastMessage MessageResponse       `json:"lastMessage"`
	Unread      int64                 `json:"unread"`
}

// NewMessageResponse converts a message model.
func NewMessageResponse(message models.Message) MessageResponse {
	return MessageResponse{
		ID:          message.ID,
		SenderID:    message.SenderID,
		RecipientID: message.RecipientID,
		Content:     message.Content,
		ReadAt:      message.ReadAt,
		CreatedAt:   message.CreatedAt,
	}
}

// ReviewResponse serialises an artwork review.
type ReviewResponse struct {
	ID        uint      `json:"id"`
	ArtworkID uint      `json:"artworkId"`
	UserID    uint      `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewReviewResponse converts a review model.
func NewReviewResponse(review models.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID,
		ArtworkID: review.ArtworkID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}
