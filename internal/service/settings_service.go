package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/repository"
)

//go:embed schemas/platform_settings.json
var platformSettingsSchema []byte

const platformSettingsSchemaURL = "https://nemesis.local/schemas/platform_settings.json"

// PlatformSettings is the typed view of the settings document used by other services.
type PlatformSettings struct {
	CommissionRate          float64
	MaintenanceMode         bool
	AllowArtistApplications bool
	SupportEmail            string
	FeaturedArtworkIDs      []uint
}

// SettingsReader exposes the effective platform settings.
type SettingsReader interface {
	Current(ctx context.Context) PlatformSettings
}

// SettingsService manages the platform settings document.
type SettingsService interface {
	SettingsReader
	Get(ctx context.Context) (dto.SettingsResponse, error)
	Update(ctx context.Context, actor Actor, values map[string]interface{}, meta *RequestMeta) (dto.SettingsResponse, error)
}

type settingsService struct {
	repo   repository.SettingsRepository
	audit  AdminLogger
	schema *jsonschema.Schema
	logger zerolog.Logger
}

// NewSettingsService constructs the settings service and compiles the document schema.
func NewSettingsService(repo repository.SettingsRepository, audit AdminLogger, logger zerolog.Logger) (SettingsService, error) {
	schema, err := CompileSettingsSchema()
	if err != nil {
		return nil, err
	}
	return &settingsService{
		repo:   repo,
		audit:  audit,
		schema: schema,
		logger: logger.With().Str("component", "settings_service").Logger(),
	}, nil
}

// CompileSettingsSchema compiles the embedded platform settings schema.
func CompileSettingsSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(platformSettingsSchemaURL, bytes.NewReader(platformSettingsSchema)); err != nil {
		return nil, fmt.Errorf("failed to load settings schema: %w", err)
	}
	schema, err := compiler.Compile(platformSettingsSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile settings schema: %w", err)
	}
	return schema, nil
}

// DefaultSettings returns the document used before an admin saves anything.
func DefaultSettings() map[string]interface{} {
	return map[string]interface{}{
		"commissionRate":          10.0,
		"maintenanceMode":         false,
		"allowArtistApplications": true,
		"supportEmail":            "",
		"featuredArtworkIds":      []interface{}{},
	}
}

func (s *settingsService) Get(ctx context.Context) (dto.SettingsResponse, error) {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		return dto.SettingsResponse{}, err
	}
	return newSettingsResponse(stored), nil
}

func (s *settingsService) Current(ctx context.Context) PlatformSettings {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load platform settings, using defaults")
		return typedSettings(DefaultSettings())
	}
	return typedSettings(mergeSettings(DefaultSettings(), normalizeSettings(stored.Values)))
}

func (s *settingsService) Update(ctx context.Context, actor Actor, values map[string]interface{}, meta *RequestMeta) (dto.SettingsResponse, error) {
	if !actor.IsAdmin() {
		return dto.SettingsResponse{}, ErrForbidden
	}
	values = normalizeSettings(values)
	if err := s.schema.Validate(values); err != nil {
		return dto.SettingsResponse{}, fmt.Errorf("%w: %s", ErrInvalidSettings, schemaMessage(err))
	}

	current, err := s.repo.Get(ctx)
	if err != nil {
		return dto.SettingsResponse{}, err
	}

	before := mergeSettings(DefaultSettings(), normalizeSettings(current.Values))
	after := mergeSettings(before, values)
	changes := diffSettings(before, after)
	if len(changes) == 0 {
		return newSettingsResponse(current), nil
	}

	saved, err := s.repo.Save(ctx, datatypes.JSONMap(after), actor.ID)
	if err != nil {
		return dto.SettingsResponse{}, err
	}

	s.audit.Log(ctx, AdminActivityEntry{
		AdminID:    actor.ID,
		Action:     models.AdminActionSettingsUpdate,
		TargetType: models.TargetPlatformSettings,
		TargetID:   "global",
		Details:    map[string]interface{}{"changes": changes},
		Request:    meta,
	})

	return newSettingsResponse(saved), nil
}

func newSettingsResponse(stored models.PlatformSettings) dto.SettingsResponse {
	response := dto.SettingsResponse{
		Values:    mergeSettings(DefaultSettings(), normalizeSettings(stored.Values)),
		UpdatedBy: stored.UpdatedBy,
	}
	if !stored.UpdatedAt.IsZero() {
		updatedAt := stored.UpdatedAt
		response.UpdatedAt = &updatedAt
	}
	return response
}

// normalizeSettings re-decodes values so numbers are float64 and lists are
// []interface{}, whether they came from a request body or a JSONB column.
func normalizeSettings(values map[string]interface{}) map[string]interface{} {
	if len(values) == 0 {
		return map[string]interface{}{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return values
	}
	normalized := map[string]interface{}{}
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return values
	}
	return normalized
}

func mergeSettings(base map[string]interface{}, overlay map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(overlay))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range overlay {
		merged[key] = value
	}
	return merged
}

func diffSettings(before, after map[string]interface{}) map[string]interface{} {
	keys := make([]string, 0, len(after))
	for key := range after {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	changes := map[string]interface{}{}
	for _, key := range keys {
		if reflect.DeepEqual(before[key], after[key]) {
			continue
		}
		changes[key] = map[string]interface{}{"from": before[key], "to": after[key]}
	}
	return changes
}

func typedSettings(values map[string]interface{}) PlatformSettings {
	settings := PlatformSettings{}
	if rate, ok := values["commissionRate"].(float64); ok {
		settings.CommissionRate = rate
	}
	settings.MaintenanceMode, _ = values["maintenanceMode"].(bool)
	settings.AllowArtistApplications, _ = values["allowArtistApplications"].(bool)
	settings.SupportEmail, _ = values["supportEmail"].(string)
	if ids, ok := values["featuredArtworkIds"].([]interface{}); ok {
		for _, raw := range ids {
			if id, ok := raw.(float64); ok && id > 0 {
				settings.FeaturedArtworkIDs = append(settings.FeaturedArtworkIDs, uint(id))
			}
		}
	}
	return settings
}

func schemaMessage(err error) string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return err.Error()
	}
	for len(validationErr.Causes) > 0 {
		validationErr = validationErr.Causes[0]
	}
	location := validationErr.InstanceLocation
	if location == "" {
		location = "/"
	}
	return location + ": " + validationErr.Message
}
