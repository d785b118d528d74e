package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/nemesis-api/internal/models"
)

// AdminActivityFilter narrows audit trail queries.
type AdminActivityFilter struct {
	AdminID    *uint
	Action     string
	TargetType string
	TargetID   string
	Page       int
	Limit      int
}

// AdminActivityRepository persists the append-only admin audit trail.
type AdminActivityRepository interface {
	Create(ctx context.Context, entry *models.AdminActivity) error
	List(ctx context.Context, filter AdminActivityFilter) ([]models.AdminActivity, int64, error)
}

type adminActivityRepository struct {
	db *gorm.DB
}

// NewAdminActivityRepository constructs the admin activity repository.
func NewAdminActivityRepository(db *gorm.DB) AdminActivityRepository {
	return &adminActivityRepository{db: db}
}

func (r *adminActivityRepository) Create(ctx context.Context, entry *models.AdminActivity) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *adminActivityRepository) List(ctx context.Context, filter AdminActivityFilter) ([]models.AdminActivity, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AdminActivity{})

	if filter.AdminID != nil {
		query = query.Where("admin_id = ?", *filter.AdminID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.TargetType != "" {
		query = query.Where("target_type = ?", filter.TargetType)
	}
	if filter.TargetID != "" {
		query = query.Where("target_id = ?", filter.TargetID)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.Limit)

	var entries []models.AdminActivity
	if err := query.Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
