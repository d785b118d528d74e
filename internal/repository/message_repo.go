package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/nemesis-api/internal/models"
)

// Conversation summarises the latest exchange with one counterpart.
type Conversation struct {
	CounterpartID uint
	LastMessage   models.Message
	Unread        int64
}

// MessageRepository persists direct messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (models.Message, error)
	Thread(ctx context.Context, userID, otherID uint, page, limit int) ([]models.Message, int64, error)
	Conversations(ctx context.Context, userID uint) ([]Conversation, error)
	MarkRead(ctx context.Context, id, recipientID uint, at time.Time) (models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs the message repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).First(&message, id).Error
	return message, err
}

func (r *messageRepository) Thread(ctx context.Context, userID, otherID uint, page, limit int) ([]models.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", userID, otherID, otherID, userID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []models.Message
	if err := paginate(query, page, limit).Order("created_at DESC").Order("id DESC").Find(&messages).Error; err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (r *messageRepository) Conversations(ctx context.Context, userID uint) ([]Conversation, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC").Order("id DESC").
		Find(&messages).Error; err != nil {
		return nil, err
	}

	index := make(map[uint]int)
	conversations := make([]Conversation, 0)
	for _, message := range messages {
		counterpart := message.SenderID
		if counterpart == userID {
			counterpart = message.RecipientID
		}

		position, seen := index[counterpart]
		if !seen {
			position = len(conversations)
			index[counterpart] = position
			conversations = append(conversations, Conversation{CounterpartID: counterpart, LastMessage: message})
		}
		if message.RecipientID == userID && message.ReadAt == nil {
			conversations[position].Unread++
		}
	}
	return conversations, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, id, recipientID uint, at time.Time) (models.Message, error) {
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND recipient_id = ? AND read_at IS NULL", id, recipientID).
		Update("read_at", at)
	if result.Error != nil {
		return models.Message{}, result.Error
	}
	return r.GetByID(ctx, id)
}
