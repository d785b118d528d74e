package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/nemesis-api/internal/models"
)

// FavoriteRepository persists saved artworks.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, artworkID uint) error
	Remove(ctx context.Context, userID, artworkID uint) error
	List(ctx context.Context, userID uint, page, limit int) ([]models.Artwork, int64, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository constructs the favorite repository.
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Add(ctx context.Context, userID, artworkID uint) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Favorite{UserID: userID, ArtworkID: artworkID}).Error
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, artworkID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND artwork_id = ?", userID, artworkID).
		Delete(&models.Favorite{}).Error
}

func (r *favoriteRepository) List(ctx context.Context, userID uint, page, limit int) ([]models.Artwork, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Artwork{}).
		Joins("JOIN favorites ON favorites.artwork_id = artworks.id").
		Where("favorites.user_id = ?", userID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var artworks []models.Artwork
	if err := paginate(query.Select("artworks.*"), page, limit).Order("favorites.created_at DESC").Find(&artworks).Error; err != nil {
		return nil, 0, err
	}
	return artworks, total, nil
}
