package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/nemesis-api/internal/models"
)

// UserFilter narrows admin user listings.
type UserFilter struct {
	Role         string
	ArtistStatus string
	Search       string
	Page         int
	Limit        int
}

// RemovedContent lists what a cascading user delete removed.
type RemovedContent struct {
	User     models.User
	Artworks []models.Artwork
	Events   []models.Event
}

// UserRepository persists marketplace accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	DeleteCascade(ctx context.Context, id uint) (RemovedContent, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return user, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	return user, err
}

func (r *userRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.User, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.ArtistStatus != "" {
		query = query.Where("artist_status = ?", filter.ArtistStatus)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = paginate(query, filter.Page, filter.Limit)

	var users []models.User
	if err := query.Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) DeleteCascade(ctx context.Context, id uint) (RemovedContent, error) {
	var removed RemovedContent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&removed.User, id).Error; err != nil {
			return err
		}
		if err := tx.Where("artist_id = ?", id).Find(&removed.Artworks).Error; err != nil {
			return err
		}
		if err := tx.Where("organizer_id = ?", id).Find(&removed.Events).Error; err != nil {
			return err
		}

		artworkIDs := make([]uint, 0, len(removed.Artworks))
		for _, artwork := range removed.Artworks {
			artworkIDs = append(artworkIDs, artwork.ID)
		}
		eventIDs := make([]uint, 0, len(removed.Events))
		for _, event := range removed.Events {
			eventIDs = append(eventIDs, event.ID)
		}

		if len(artworkIDs) > 0 {
			if err := tx.Where("artwork_id IN ?", artworkIDs).Delete(&models.Review{}).Error; err != nil {
				return err
			}
			if err := tx.Where("artwork_id IN ?", artworkIDs).Delete(&models.Favorite{}).Error; err != nil {
				return err
			}
			if err := tx.Where("item_type = ? AND item_id IN ?", models.ItemTypeArtwork, artworkIDs).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", artworkIDs).Delete(&models.Artwork{}).Error; err != nil {
				return err
			}
		}
		if len(eventIDs) > 0 {
			if err := tx.Where("item_type = ? AND item_id IN ?", models.ItemTypeEvent, eventIDs).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", eventIDs).Delete(&models.Event{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sender_id = ? OR recipient_id = ?", id, id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return RemovedContent{}, err
	}
	return removed, nil
}

func paginate(query *gorm.DB, page, limit int) *gorm.DB {
	if limit <= 0 {
		return query
	}
	if page <= 0 {
		page = 1
	}
	return query.Offset((page - 1) * limit).Limit(limit)
}
