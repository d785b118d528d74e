package models

import "time"

// Review is a rating left by a buyer on an artwork.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArtworkID uint      `gorm:"not null;uniqueIndex:idx_review_author" json:"artworkId"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_review_author" json:"userId"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Favorite marks an artwork saved by a user.
type Favorite struct {
	UserID    uint      `gorm:"primaryKey" json:"userId"`
	ArtworkID uint      `gorm:"primaryKey" json:"artworkId"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// Message is a direct message between two users.
type Message struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SenderID    uint       `gorm:"not null;index:idx_message_pair" json:"senderId"`
	RecipientID uint       `gorm:"not null;index:idx_message_pair;index" json:"recipientId"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
}
