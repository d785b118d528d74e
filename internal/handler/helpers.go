package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/middleware"
	"github.com/noah-isme/nemesis-api/internal/service"
	"github.com/noah-isme/nemesis-api/internal/utils"
	"github.com/noah-isme/nemesis-api/pkg/payments"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrInvalidQuantity, fiber.StatusBadRequest},
	{service.ErrCartEmpty, fiber.StatusBadRequest},
	{service.ErrSelfMessage, fiber.StatusBadRequest},
	{service.ErrEmptyMessage, fiber.StatusBadRequest},
	{service.ErrSelfSuspend, fiber.StatusBadRequest},
	{service.ErrSelfDelete, fiber.StatusBadRequest},
	{service.ErrInvalidSettings, fiber.StatusBadRequest},
	{service.ErrUploadMissing, fiber.StatusBadRequest},
	{service.ErrUploadTypeNotAllowed, fiber.StatusBadRequest},
	{service.ErrOwnItem, fiber.StatusBadRequest},
	{service.ErrSelfReview, fiber.StatusBadRequest},
	{service.ErrCapacityBelowSold, fiber.StatusBadRequest},
	{payments.ErrInvalidSignature, fiber.StatusBadRequest},

	{service.ErrInvalidCredentials, fiber.StatusUnauthorized},

	{service.ErrForbidden, fiber.StatusForbidden},
	{service.ErrNotSeller, fiber.StatusForbidden},
	{service.ErrRoleEscalation, fiber.StatusForbidden},
	{service.ErrAccountSuspended, fiber.StatusForbidden},
	{service.ErrApplicationsClosed, fiber.StatusForbidden},

	{service.ErrUserNotFound, fiber.StatusNotFound},
	{service.ErrArtworkNotFound, fiber.StatusNotFound},
	{service.ErrEventNotFound, fiber.StatusNotFound},
	{service.ErrCartItemNotFound, fiber.StatusNotFound},
	{service.ErrOrderNotFound, fiber.StatusNotFound},
	{service.ErrReviewNotFound, fiber.StatusNotFound},
	{service.ErrMessageNotFound, fiber.StatusNotFound},

	{service.ErrEmailTaken, fiber.StatusConflict},
	{service.ErrDuplicateReview, fiber.StatusConflict},
	{service.ErrApplicationNotAllowed, fiber.StatusConflict},
	{service.ErrCartItemUnavailable, fiber.StatusConflict},
	{service.ErrInsufficientCapacity, fiber.StatusConflict},
	{service.ErrArtworkSold, fiber.StatusConflict},

	{service.ErrUploadTooLarge, fiber.StatusRequestEntityTooLarge},

	{service.ErrPaymentsUnavailable, fiber.StatusServiceUnavailable},
	{service.ErrMaintenanceMode, fiber.StatusServiceUnavailable},
	{service.ErrStorageUnavailable, fiber.StatusServiceUnavailable},
}

// respondError maps service errors onto HTTP statuses. Unknown errors are
// logged and reported as a generic 500 with the provided fallback message.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	if isValidationError(err) {
		return utils.SendError(c, validationMessage(err), fiber.StatusBadRequest)
	}
	for _, candidate := range errorStatuses {
		if errors.Is(err, candidate.err) {
			return utils.SendError(c, err.Error(), candidate.status)
		}
	}

	requestLogger(logger, c).Error().Err(err).Msg(fallback)
	return utils.SendError(c, fallback, fiber.StatusInternalServerError)
}

func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "invalid payload"
	}
	fields := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields = append(fields, fieldErr.Field()+" failed "+fieldErr.Tag())
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseQueryUint(c *fiber.Ctx, key string) uint {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0
	}
	return uint(parsed)
}

func parseQueryInt64(c *fiber.Ctx, key string) *int64 {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func paramID(c *fiber.Ctx, key string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Params(key)), 10, 64)
	if err != nil || value == 0 {
		return 0, errors.New("invalid " + key)
	}
	return uint(value), nil
}

func pageQuery(c *fiber.Ctx, defaults utils.PaginationDefaults) utils.PageQuery {
	return utils.ParsePagination(c.Queries(), defaults)
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	return service.Actor{
		ID:   userIDFromContext(c),
		Role: userRoleFromContext(c),
	}
}

// optionalActor returns nil for anonymous requests.
func optionalActor(c *fiber.Ctx) *service.Actor {
	actor := actorFromContext(c)
	if actor.ID == 0 {
		return nil
	}
	return &actor
}

func requestMeta(c *fiber.Ctx) *service.RequestMeta {
	return &service.RequestMeta{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if requestID := middleware.RequestID(c); requestID != "" {
			logger = base.With().Str("request_id", requestID).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
