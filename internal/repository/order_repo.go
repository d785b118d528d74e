package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/nemesis-api/internal/models"
)

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID *uint
	Status string
	Page   int
	Limit  int
}

// PaymentOutcome reports what settling an order changed.
type PaymentOutcome struct {
	Order models.Order
	// Applied is false when the order had already been settled.
	Applied bool
	// Oversold lists events whose remaining capacity could not cover the order.
	Oversold []uint
	// Unavailable lists artworks that were no longer available when payment settled.
	Unavailable []uint
}

// OrderRepository persists checkout orders.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (models.Order, error)
	GetBySession(ctx context.Context, sessionID string) (models.Order, error)
	AttachSession(ctx context.Context, id uint, sessionID string) error
	SetStatus(ctx context.Context, id uint, status string) error
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	MarkPaid(ctx context.Context, sessionID string, paidAt time.Time) (PaymentOutcome, error)
	MarkCancelled(ctx context.Context, sessionID string) (models.Order, bool, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository constructs the order repository.
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	return order, err
}

func (r *orderRepository) GetBySession(ctx context.Context, sessionID string) (models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("stripe_session_id = ?", sessionID).First(&order).Error
	return order, err
}

func (r *orderRepository) AttachSession(ctx context.Context, id uint, sessionID string) error {
	result := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("stripe_session_id", sessionID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepository) SetStatus(ctx context.Context, id uint, status string) error {
	result := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.Limit)

	var orders []models.Order
	if err := query.Preload("Items").Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// MarkPaid settles a pending order: artworks become sold, tickets are counted and the buyer's
// cart lines for the purchased items are removed. Settling an already paid order is a no-op.
func (r *orderRepository) MarkPaid(ctx context.Context, sessionID string, paidAt time.Time) (PaymentOutcome, error) {
	var outcome PaymentOutcome
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items").Where("stripe_session_id = ?", sessionID).First(&order).Error; err != nil {
			return err
		}
		if order.Status == models.OrderStatusPaid {
			outcome.Order = order
			return nil
		}

		update := tx.Model(&models.Order{}).
			Where("id = ? AND status <> ?", order.ID, models.OrderStatusPaid).
			Updates(map[string]interface{}{"status": models.OrderStatusPaid, "paid_at": paidAt})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			outcome.Order = order
			return nil
		}

		for _, item := range order.Items {
			switch item.ItemType {
			case models.ItemTypeArtwork:
				result := tx.Model(&models.Artwork{}).
					Where("id = ? AND status = ?", item.ItemID, models.ArtworkStatusAvailable).
					Update("status", models.ArtworkStatusSold)
				if result.Error != nil {
					return result.Error
				}
				if result.RowsAffected == 0 {
					outcome.Unavailable = append(outcome.Unavailable, item.ItemID)
				}
			case models.ItemTypeEvent:
				result := tx.Model(&models.Event{}).
					Where("id = ? AND tickets_sold + ? <= capacity", item.ItemID, item.Quantity).
					Update("tickets_sold", gorm.Expr("tickets_sold + ?", item.Quantity))
				if result.Error != nil {
					return result.Error
				}
				if result.RowsAffected == 0 {
					outcome.Oversold = append(outcome.Oversold, item.ItemID)
				}
			}
			if err := tx.Where("user_id = ? AND item_type = ? AND item_id = ?", order.UserID, item.ItemType, item.ItemID).
				Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
		}

		order.Status = models.OrderStatusPaid
		order.PaidAt = &paidAt
		outcome.Order = order
		outcome.Applied = true
		return nil
	})
	if err != nil {
		return PaymentOutcome{}, err
	}
	return outcome, nil
}

// MarkCancelled cancels a pending order. The boolean is false when the order was not pending.
func (r *orderRepository) MarkCancelled(ctx context.Context, sessionID string) (models.Order, bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("stripe_session_id = ? AND status = ?", sessionID, models.OrderStatusPending).
		Update("status", models.OrderStatusCancelled)
	if result.Error != nil {
		return models.Order{}, false, result.Error
	}

	order, err := r.GetBySession(ctx, sessionID)
	if err != nil {
		return models.Order{}, false, err
	}
	return order, result.RowsAffected > 0, nil
}
