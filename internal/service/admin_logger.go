package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/observability"
	"github.com/noah-isme/nemesis-api/internal/repository"
)

const defaultAuditWriteTimeout = 5 * time.Second

// AdminActivityEntry describes one privileged mutation to audit.
type AdminActivityEntry struct {
	AdminID    uint
	Action     string
	TargetType string
	TargetID   string
	Details    map[string]interface{}
	Request    *RequestMeta
}

// AuditFailureHandler receives audit records that could not be written.
type AuditFailureHandler func(entry AdminActivityEntry, err error)

// AdminLogger records admin activity without affecting the caller.
type AdminLogger interface {
	// Log schedules the write and returns immediately. Failures go to the failure handler.
	Log(ctx context.Context, entry AdminActivityEntry)
	// Wait blocks until every scheduled write has finished.
	Wait()
}

// AdminLoggerOption customises the admin logger.
type AdminLoggerOption func(*adminLogger)

// WithAuditFailureHandler replaces the default log-and-count failure handler.
func WithAuditFailureHandler(handler AuditFailureHandler) AdminLoggerOption {
	return func(l *adminLogger) {
		if handler != nil {
			l.onFailure = handler
		}
	}
}

// WithAuditWriteTimeout bounds each background write.
func WithAuditWriteTimeout(timeout time.Duration) AdminLoggerOption {
	return func(l *adminLogger) {
		if timeout > 0 {
			l.timeout = timeout
		}
	}
}

type adminLogger struct {
	repo      repository.AdminActivityRepository
	logger    zerolog.Logger
	onFailure AuditFailureHandler
	timeout   time.Duration
	inflight  sync.WaitGroup
}

// NewAdminLogger constructs the fire-and-forget audit writer.
func NewAdminLogger(repo repository.AdminActivityRepository, logger zerolog.Logger, opts ...AdminLoggerOption) AdminLogger {
	l := &adminLogger{
		repo:    repo,
		logger:  logger.With().Str("component", "admin_logger").Logger(),
		timeout: defaultAuditWriteTimeout,
	}
	l.onFailure = l.logFailure
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *adminLogger) Log(ctx context.Context, entry AdminActivityEntry) {
	record, err := buildAdminActivity(entry)
	if err != nil {
		l.fail(entry, err)
		return
	}

	// The write outlives the request, so only values are inherited from ctx.
	detached := context.WithoutCancel(ctx)

	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				l.fail(entry, fmt.Errorf("audit write panicked: %v", recovered))
			}
		}()

		writeCtx, cancel := context.WithTimeout(detached, l.timeout)
		defer cancel()

		if err := l.repo.Create(writeCtx, &record); err != nil {
			l.fail(entry, err)
		}
	}()
}

func (l *adminLogger) Wait() {
	l.inflight.Wait()
}

func (l *adminLogger) fail(entry AdminActivityEntry, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			l.logger.Error().Interface("panic", recovered).Msg("audit failure handler panicked")
		}
	}()
	l.onFailure(entry, err)
}

func (l *adminLogger) logFailure(entry AdminActivityEntry, err error) {
	observability.AdminActivityFailures().Inc()
	l.logger.Error().
		Err(err).
		Uint("admin_id", entry.AdminID).
		Str("action", entry.Action).
		Str("target_type", entry.TargetType).
		Str("target_id", entry.TargetID).
		Msg("failed to record admin activity")
}

func buildAdminActivity(entry AdminActivityEntry) (models.AdminActivity, error) {
	action := strings.ToUpper(strings.TrimSpace(entry.Action))
	if !models.IsValidAdminAction(action) {
		return models.AdminActivity{}, fmt.Errorf("unknown admin action %q", entry.Action)
	}
	if !models.IsValidTargetType(entry.TargetType) {
		return models.AdminActivity{}, fmt.Errorf("unknown target type %q", entry.TargetType)
	}
	if entry.AdminID == 0 {
		return models.AdminActivity{}, fmt.Errorf("admin id is required")
	}

	details := datatypes.JSONMap{}
	for key, value := range entry.Details {
		details[key] = value
	}

	record := models.AdminActivity{
		AdminID:    entry.AdminID,
		Action:     action,
		TargetType: entry.TargetType,
		TargetID:   strings.TrimSpace(entry.TargetID),
		Details:    details,
	}
	if entry.Request != nil {
		record.IPAddress = truncate(entry.Request.IP, 64)
		record.UserAgent = truncate(entry.Request.UserAgent, 512)
	}
	return record, nil
}

func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	return value[:max]
}
