package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/nemesis-api/internal/models"
)

// EventFilter narrows event listings.
type EventFilter struct {
	OrganizerID *uint
	Search      string
	UpcomingAt  *time.Time
	Page        int
	Limit       int
}

// EventRepository persists ticketed events.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uint) (models.Event, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Event, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter EventFilter) ([]models.Event, int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository constructs the event repository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) GetByID(ctx context.Context, id uint) (models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).First(&event, id).Error
	return event, err
}

func (r *eventRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Event, error) {
	result := r.db.WithContext(ctx).Model(&models.Event{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.Event{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Event{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_type = ? AND item_id = ?", models.ItemTypeEvent, id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Event{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Event{})

	if filter.OrganizerID != nil {
		query = query.Where("organizer_id = ?", *filter.OrganizerID)
	}
	if filter.UpcomingAt != nil {
		query = query.Where("starts_at >= ?", *filter.UpcomingAt)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(venue) LIKE ?", like, like)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.Limit)

	var events []models.Event
	if err := query.Order("starts_at ASC").Order("id ASC").Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
