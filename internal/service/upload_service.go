package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/observability"
	"github.com/noah-isme/nemesis-api/pkg/cloudinary"
)

// Media kinds accepted by uploads.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

var (
	// ErrUploadMissing indicates the multipart file field was absent.
	ErrUploadMissing = errors.New("file is required")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the sniffed content type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
)

var allowedMedia = map[string][]string{
	MediaImage: {"image/jpeg", "image/png", "image/webp", "image/gif"},
	MediaVideo: {"video/mp4", "video/webm", "video/quicktime"},
}

// MediaStorage abstracts the remote media store.
type MediaStorage interface {
	Upload(ctx context.Context, scope, name string, reader io.Reader) (cloudinary.Asset, error)
	Destroy(ctx context.Context, publicID, resourceType string) error
}

// UploadService validates and stores media files.
type UploadService interface {
	Store(ctx context.Context, scope string, file *multipart.FileHeader, kinds ...string) (dto.UploadResponse, error)
	Remove(ctx context.Context, publicID, kind string) error
}

type uploadService struct {
	storage MediaStorage
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewUploadService constructs an upload service. storage may be nil when media storage is not configured.
func NewUploadService(storage MediaStorage, maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &uploadService{
		storage: storage,
		logger:  logger.With().Str("component", "upload_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/noah-isme/nemesis-api/internal/service/upload"),
	}
}

func (s *uploadService) Store(ctx context.Context, scope string, file *multipart.FileHeader, kinds ...string) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "upload.store")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	span.SetAttributes(attribute.String("upload.scope", scope), attribute.Int64("upload.max_bytes", s.maxSize))

	reject := func(reason string, err error) (dto.UploadResponse, error) {
		observability.Uploads().WithLabelValues(reason).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		return dto.UploadResponse{}, err
	}

	if s.storage == nil {
		return reject("unavailable", ErrStorageUnavailable)
	}
	if file == nil {
		return reject("missing", ErrUploadMissing)
	}
	span.SetAttributes(attribute.String("upload.original_name", strings.TrimSpace(file.Filename)))

	if file.Size > s.maxSize {
		return reject("size", ErrUploadTooLarge)
	}

	handle, err := file.Open()
	if err != nil {
		return reject("read", err)
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		return reject("read", err)
	}
	if int64(buf.Len()) > s.maxSize {
		return reject("size", ErrUploadTooLarge)
	}

	if len(kinds) == 0 {
		kinds = []string{MediaImage}
	}
	detected := mimetype.Detect(buf.Bytes())
	kind, ok := classifyMedia(detected, kinds)
	span.SetAttributes(attribute.String("upload.detected_mime", detected.String()))
	if !ok {
		return reject("type", ErrUploadTypeNotAllowed)
	}

	folder := scope
	if kind == MediaVideo {
		folder = scope + "/videos"
	}

	asset, err := s.storage.Upload(ctx, folder, file.Filename, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return reject("storage", err)
	}

	observability.Uploads().WithLabelValues("success").Inc()
	span.SetAttributes(attribute.String("upload.public_id", asset.PublicID))
	span.SetStatus(codes.Ok, "stored")

	return dto.UploadResponse{
		URL:       asset.URL,
		PublicID:  asset.PublicID,
		MimeType:  detected.String(),
		Kind:      kind,
		SizeBytes: int64(buf.Len()),
	}, nil
}

func (s *uploadService) Remove(ctx context.Context, publicID, kind string) error {
	if s.storage == nil || strings.TrimSpace(publicID) == "" {
		return nil
	}
	if err := s.storage.Destroy(ctx, publicID, kind); err != nil {
		s.logger.Warn().Err(err).Str("public_id", publicID).Msg("failed to remove media")
		return err
	}
	return nil
}

func classifyMedia(detected *mimetype.MIME, kinds []string) (string, bool) {
	for _, kind := range kinds {
		for _, allowed := range allowedMedia[kind] {
			if detected.Is(allowed) {
				return kind, true
			}
		}
	}
	return "", false
}
