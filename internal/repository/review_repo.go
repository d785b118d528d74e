package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/nemesis-api/internal/models"
)

// ReviewRepository persists artwork reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uint) (models.Review, error)
	Exists(ctx context.Context, artworkID, userID uint) (bool, error)
	ListByArtwork(ctx context.Context, artworkID uint, page, limit int) ([]models.Review, int64, error)
	Delete(ctx context.Context, id uint) error
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository constructs the review repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) GetByID(ctx context.Context, id uint) (models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).First(&review, id).Error
	return review, err
}

func (r *reviewRepository) Exists(ctx context.Context, artworkID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("artwork_id = ? AND user_id = ?", artworkID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewRepository) ListByArtwork(ctx context.Context, artworkID uint, page, limit int) ([]models.Review, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Review{}).Where("artwork_id = ?", artworkID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	if err := paginate(query, page, limit).Order("created_at DESC").Order("id DESC").Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Review{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
