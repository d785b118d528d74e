package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Asset describes a stored media file.
type Asset struct {
	URL          string
	PublicID     string
	ResourceType string
	Bytes        int
}

// Service stores marketplace media in Cloudinary.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: cld,
		folder: cfg.Folder,
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload stores the file below <folder>/<scope>. The resource type is detected by Cloudinary.
func (s *Service) Upload(ctx context.Context, scope, name string, reader io.Reader) (Asset, error) {
	params := uploader.UploadParams{
		Folder:       Folder(s.folder, scope),
		PublicID:     PublicID(name),
		ResourceType: "auto",
		Overwrite:    api.Bool(false),
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return Asset{}, fmt.Errorf("failed to upload asset: %w", err)
	}
	if result.Error.Message != "" {
		return Asset{}, fmt.Errorf("failed to upload asset: %s", result.Error.Message)
	}

	s.logger.Info().Str("public_id", result.PublicID).Str("resource_type", result.ResourceType).Msg("file uploaded to cloudinary")

	return Asset{
		URL:          result.SecureURL,
		PublicID:     result.PublicID,
		ResourceType: result.ResourceType,
		Bytes:        result.Bytes,
	}, nil
}

// Destroy removes a stored asset. Unknown public ids are not an error.
// resourceType is "image" or "video"; empty means image.
func (s *Service) Destroy(ctx context.Context, publicID, resourceType string) error {
	if strings.TrimSpace(publicID) == "" {
		return nil
	}
	if resourceType == "" {
		resourceType = "image"
	}

	result, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to destroy asset %s: %w", publicID, err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("failed to destroy asset %s: %s", publicID, result.Error.Message)
	}

	s.logger.Info().Str("public_id", publicID).Str("result", result.Result).Msg("asset removed from cloudinary")
	return nil
}

// Folder joins the base folder and a scope such as "artworks" or "avatars".
func Folder(base, scope string) string {
	parts := make([]string, 0, 2)
	for _, part := range []string{base, scope} {
		if trimmed := strings.Trim(part, "/ "); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "/")
}

// PublicID derives a collision free public id from the uploaded file name.
func PublicID(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = "upload"
	}
	if len(base) > 48 {
		base = base[:48]
	}

	return base + "-" + uuid.NewString()[:8]
}
