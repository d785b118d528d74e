package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/nemesis-api/internal/models"
)

// CartRepository persists shopping cart lines.
type CartRepository interface {
	List(ctx context.Context, userID uint) ([]models.CartItem, error)
	GetItem(ctx context.Context, userID, itemID uint) (models.CartItem, error)
	Add(ctx context.Context, item *models.CartItem) error
	SetQuantity(ctx context.Context, userID, itemID uint, quantity int) (models.CartItem, error)
	Remove(ctx context.Context, userID, itemID uint) error
	Clear(ctx context.Context, userID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository constructs the cart repository.
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) List(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Order("id ASC").Find(&items).Error
	return items, err
}

func (r *cartRepository) GetItem(ctx context.Context, userID, itemID uint) (models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error
	return item, err
}

// Add inserts the line or, when the same product is already in the cart, increases its quantity.
func (r *cartRepository) Add(ctx context.Context, item *models.CartItem) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "item_type"}, {Name: "item_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + ?", item.Quantity),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(item).Error
	if err != nil {
		return err
	}

	var stored models.CartItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND item_type = ? AND item_id = ?", item.UserID, item.ItemType, item.ItemID).
		First(&stored).Error; err != nil {
		return err
	}
	*item = stored
	return nil
}

func (r *cartRepository) SetQuantity(ctx context.Context, userID, itemID uint, quantity int) (models.CartItem, error) {
	result := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if result.Error != nil {
		return models.CartItem{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.CartItem{}, gorm.ErrRecordNotFound
	}
	return r.GetItem(ctx, userID, itemID)
}

func (r *cartRepository) Remove(ctx context.Context, userID, itemID uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
