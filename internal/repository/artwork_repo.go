package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/utils"
)

var artworkSortColumns = map[string]string{
	"createdAt": "created_at",
	"price":     "price",
	"title":     "title",
}

// ArtworkFilter narrows public artwork listings.
type ArtworkFilter struct {
	Category      string
	Kind          string
	ArtistID      *uint
	Search        string
	MinPrice      *int64
	MaxPrice      *int64
	IDs           []uint
	IncludeHidden bool
	Sort          string
	Page          int
	Limit         int
}

// RatingSummary aggregates reviews for an artwork.
type RatingSummary struct {
	Average float64
	Count   int64
}

// ArtworkRepository persists artwork listings.
type ArtworkRepository interface {
	Create(ctx context.Context, artwork *models.Artwork) error
	GetByID(ctx context.Context, id uint) (models.Artwork, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Artwork, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ArtworkFilter) ([]models.Artwork, int64, error)
	Rating(ctx context.Context, id uint) (RatingSummary, error)
}

type artworkRepository struct {
	db *gorm.DB
}

// NewArtworkRepository constructs the artwork repository.
func NewArtworkRepository(db *gorm.DB) ArtworkRepository {
	return &artworkRepository{db: db}
}

func (r *artworkRepository) Create(ctx context.Context, artwork *models.Artwork) error {
	return r.db.WithContext(ctx).Create(artwork).Error
}

func (r *artworkRepository) GetByID(ctx context.Context, id uint) (models.Artwork, error) {
	var artwork models.Artwork
	err := r.db.WithContext(ctx).First(&artwork, id).Error
	return artwork, err
}

func (r *artworkRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Artwork, error) {
	result := r.db.WithContext(ctx).Model(&models.Artwork{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.Artwork{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Artwork{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *artworkRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("artwork_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("artwork_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_type = ? AND item_id = ?", models.ItemTypeArtwork, id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Artwork{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *artworkRepository) List(ctx context.Context, filter ArtworkFilter) ([]models.Artwork, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Artwork{})

	if !filter.IncludeHidden {
		query = query.Where("status <> ?", models.ArtworkStatusHidden)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.ArtistID != nil {
		query = query.Where("artist_id = ?", *filter.ArtistID)
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.Limit)

	var artworks []models.Artwork
	if err := query.Order(utils.SortClause(filter.Sort, artworkSortColumns)).Order("id DESC").Find(&artworks).Error; err != nil {
		return nil, 0, err
	}
	return artworks, total, nil
}

func (r *artworkRepository) Rating(ctx context.Context, id uint) (RatingSummary, error) {
	var summary RatingSummary
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("artwork_id = ?", id).
		Scan(&summary).Error
	return summary, err
}
