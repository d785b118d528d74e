package repository

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/nemesis-api/internal/models"
)

// SettingsRepository persists the single platform settings document.
type SettingsRepository interface {
	Get(ctx context.Context) (models.PlatformSettings, error)
	Save(ctx context.Context, values datatypes.JSONMap, updatedBy uint) (models.PlatformSettings, error)
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository constructs the settings repository.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the stored document, or an empty one when nothing has been saved yet.
func (r *settingsRepository) Get(ctx context.Context) (models.PlatformSettings, error) {
	var settings models.PlatformSettings
	err := r.db.WithContext(ctx).First(&settings, models.PlatformSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PlatformSettings{ID: models.PlatformSettingsID, Values: datatypes.JSONMap{}}, nil
	}
	return settings, err
}

func (r *settingsRepository) Save(ctx context.Context, values datatypes.JSONMap, updatedBy uint) (models.PlatformSettings, error) {
	settings := models.PlatformSettings{
		ID:        models.PlatformSettingsID,
		Values:    values,
		UpdatedBy: &updatedBy,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "updated_by", "updated_at"}),
	}).Create(&settings).Error
	if err != nil {
		return models.PlatformSettings{}, err
	}
	return r.Get(ctx)
}
