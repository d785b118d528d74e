package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/nemesis-api/internal/dto"
	"github.com/noah-isme/nemesis-api/internal/models"
	"github.com/noah-isme/nemesis-api/internal/observability"
	"github.com/noah-isme/nemesis-api/internal/repository"
	"github.com/noah-isme/nemesis-api/pkg/mailer"
	"github.com/noah-isme/nemesis-api/pkg/payments"
)

// OrderService turns carts into paid orders.
type OrderService interface {
	Checkout(ctx context.Context, actor Actor) (dto.CheckoutResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	List(ctx context.Context, actor Actor, query dto.OrderListQuery) ([]models.Order, int64, error)
	ListAll(ctx context.Context, query dto.OrderListQuery) ([]models.Order, int64, error)
	Get(ctx context.Context, actor Actor, id uint) (models.Order, error)
}

// OrderServiceDeps groups the collaborators of the order service.
type OrderServiceDeps struct {
	Orders    repository.OrderRepository
	Users     repository.UserRepository
	Cart      CartService
	Gateway   payments.Gateway
	Mailer    mailer.Sender
	Settings  SettingsReader
	Events    EventPublisher
	Catalog   interface{ Invalidate(ctx context.Context) }
	ClientURL string
	Currency  string
}

type orderService struct {
	deps   OrderServiceDeps
	logger zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewOrderService constructs the order service. Gateway may be nil when payments are not configured.
func NewOrderService(deps OrderServiceDeps, logger zerolog.Logger) OrderService {
	if deps.Events == nil {
		deps.Events = noopPublisher{}
	}
	deps.ClientURL = strings.TrimRight(deps.ClientURL, "/")
	deps.Currency = strings.ToLower(strings.TrimSpace(deps.Currency))
	if deps.Currency == "" {
		deps.Currency = "eur"
	}
	return &orderService{
		deps:   deps,
		logger: logger.With().Str("component", "order_service").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/nemesis-api/internal/service/order"),
		now:    time.Now,
	}
}

func (s *orderService) Checkout(ctx context.Context, actor Actor) (dto.CheckoutResponse, error) {
	ctx, span := s.tracer.Start(ctx, "orders.checkout", trace.WithAttributes(attribute.Int("order.user_id", int(actor.ID))))
	defer span.End()

	fail := func(err error) (dto.CheckoutResponse, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.CheckoutResponse{}, err
	}

	settings := PlatformSettings{}
	if s.deps.Settings != nil {
		settings = s.deps.Settings.Current(ctx)
	}
	if settings.MaintenanceMode {
		return fail(ErrMaintenanceMode)
	}
	if s.deps.Gateway == nil {
		return fail(ErrPaymentsUnavailable)
	}

	lines, err := s.deps.Cart.Resolve(ctx, actor.ID)
	if err != nil {
		return fail(err)
	}
	if len(lines) == 0 {
		return fail(ErrCartEmpty)
	}

	order := models.Order{
		UserID:   actor.ID,
		Status:   models.OrderStatusPending,
		Currency: s.deps.Currency,
		Items:    make([]models.OrderItem, 0, len(lines)),
	}
	checkoutLines := make([]payments.CheckoutLine, 0, len(lines))
	for _, line := range lines {
		if !line.Available {
			return fail(fmt.Errorf("%w: %s", ErrCartItemUnavailable, line.Title))
		}
		if line.Currency != "" && line.Currency != order.Currency {
			return fail(fmt.Errorf("%w: mixed currencies", ErrCartItemUnavailable))
		}
		order.Items = append(order.Items, models.OrderItem{
			ItemType:  line.Item.ItemType,
			ItemID:    line.Item.ItemID,
			Title:     line.Title,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Item.Quantity,
		})
		order.TotalAmount += line.UnitPrice * int64(line.Item.Quantity)
		checkoutLines = append(checkoutLines, payments.CheckoutLine{
			Name:       line.Title,
			UnitAmount: line.UnitPrice,
			Quantity:   int64(line.Item.Quantity),
		})
	}

	order.CommissionAmount = commissionFor(order.TotalAmount, settings.CommissionRate)

	if err := s.deps.Orders.Create(ctx, &order); err != nil {
		return fail(err)
	}
	span.SetAttributes(attribute.Int("order.id", int(order.ID)), attribute.Int64("order.total", order.TotalAmount))

	buyer, err := s.deps.Users.GetByID(ctx, actor.ID)
	if err != nil {
		return fail(translateNotFound(err, ErrUserNotFound))
	}

	session, err := s.deps.Gateway.CreateCheckout(ctx, payments.CheckoutRequest{
		OrderID:       order.ID,
		CustomerEmail: buyer.Email,
		Currency:      order.Currency,
		Lines:         checkoutLines,
		SuccessURL:    fmt.Sprintf("%s/checkout/success?orderId=%d&session_id={CHECKOUT_SESSION_ID}", s.deps.ClientURL, order.ID),
		CancelURL:     fmt.Sprintf("%s/cart?orderId=%d", s.deps.ClientURL, order.ID),
	})
	if err != nil {
		if statusErr := s.deps.Orders.SetStatus(ctx, order.ID, models.OrderStatusCancelled); statusErr != nil {
			s.logger.Warn().Err(statusErr).Uint("order_id", order.ID).Msg("failed to cancel order after checkout error")
		}
		return fail(err)
	}

	if err := s.deps.Orders.AttachSession(ctx, order.ID, session.ID); err != nil {
		return fail(err)
	}

	observability.Orders().WithLabelValues(models.OrderStatusPending).Inc()
	span.SetStatus(codes.Ok, "checkout created")
	s.logger.Info().Uint("order_id", order.ID).Uint("user_id", actor.ID).Int64("total", order.TotalAmount).Msg("checkout started")

	return dto.CheckoutResponse{OrderID: order.ID, URL: session.URL}, nil
}

func (s *orderService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ctx, span := s.tracer.Start(ctx, "orders.webhook")
	defer span.End()

	if s.deps.Gateway == nil {
		span.SetStatus(codes.Error, "payments not configured")
		return ErrPaymentsUnavailable
	}

	event, err := s.deps.Gateway.ParseWebhook(payload, signature)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "verification failed")
		return err
	}
	span.SetAttributes(attribute.String("webhook.type", event.Type), attribute.String("webhook.session_id", event.SessionID))

	switch event.Type {
	case payments.EventCheckoutCompleted:
		err = s.completeOrder(ctx, event)
	case payments.EventCheckoutExpired:
		err = s.expireOrder(ctx, event)
	default:
		s.logger.Debug().Str("type", event.Type).Msg("ignoring webhook event")
		return nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "webhook handling failed")
		return err
	}
	span.SetStatus(codes.Ok, "handled")
	return nil
}

func (s *orderService) completeOrder(ctx context.Context, event payments.WebhookEvent) error {
	outcome, err := s.deps.Orders.MarkPaid(ctx, event.SessionID, s.now().UTC())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn().Str("session_id", event.SessionID).Msg("payment completed for unknown checkout session")
		return nil
	}
	if err != nil {
		return err
	}
	if !outcome.Applied {
		s.logger.Info().Uint("order_id", outcome.Order.ID).Msg("duplicate payment notification ignored")
		return nil
	}
	if len(outcome.Oversold) > 0 {
		s.logger.Error().Uint("order_id", outcome.Order.ID).Interface("event_ids", outcome.Oversold).Msg("order paid for events without remaining capacity")
	}
	if len(outcome.Unavailable) > 0 {
		s.logger.Error().Uint("order_id", outcome.Order.ID).Interface("artwork_ids", outcome.Unavailable).Msg("order paid for artworks that were already sold")
	}
	if len(outcome.Oversold) > 0 || len(outcome.Unavailable) > 0 {
		observability.Orders().WithLabelValues("refund_required").Inc()
		s.deps.Events.Publish(ctx, SubjectOrderRefundRequired, map[string]interface{}{
			"orderId":     outcome.Order.ID,
			"userId":      outcome.Order.UserID,
			"oversold":    outcome.Oversold,
			"unavailable": outcome.Unavailable,
		})
	}

	observability.Orders().WithLabelValues(models.OrderStatusPaid).Inc()
	if s.deps.Catalog != nil {
		s.deps.Catalog.Invalidate(ctx)
	}
	s.deps.Events.Publish(ctx, SubjectOrderPaid, map[string]interface{}{
		"orderId": outcome.Order.ID,
		"userId":  outcome.Order.UserID,
		"total":   outcome.Order.TotalAmount,
	})
	s.sendConfirmation(ctx, outcome.Order)
	return nil
}

// commissionFor applies a percentage rate to an amount in minor units.
func commissionFor(total int64, rate float64) int64 {
	if total <= 0 || rate <= 0 {
		return 0
	}
	return int64(math.Round(float64(total) * rate / 100))
}

func (s *orderService) expireOrder(ctx context.Context, event payments.WebhookEvent) error {
	order, cancelled, err := s.deps.Orders.MarkCancelled(ctx, event.SessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if cancelled {
		observability.Orders().WithLabelValues(models.OrderStatusCancelled).Inc()
		s.deps.Events.Publish(ctx, SubjectOrderCancelled, map[string]interface{}{"orderId": order.ID, "userId": order.UserID})
	}
	return nil
}

func (s *orderService) sendConfirmation(ctx context.Context, order models.Order) {
	if s.deps.Mailer == nil {
		return
	}
	buyer, err := s.deps.Users.GetByID(ctx, order.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("order_id", order.ID).Msg("failed to load buyer for confirmation email")
		return
	}

	lines := make([]mailer.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, mailer.OrderLine{Title: item.Title, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	paidAt := s.now().UTC()
	if order.PaidAt != nil {
		paidAt = *order.PaidAt
	}

	msg, err := mailer.OrderConfirmation(buyer.Email, mailer.OrderConfirmationData{
		Name:     buyer.Name,
		OrderID:  order.ID,
		PaidAt:   paidAt,
		Currency: order.Currency,
		Total:    order.TotalAmount,
		Lines:    lines,
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("order_id", order.ID).Msg("failed to render confirmation email")
		return
	}
	if err := s.deps.Mailer.Send(ctx, msg); err != nil {
		s.logger.Warn().Err(err).Uint("order_id", order.ID).Msg("failed to send confirmation email")
	}
}

func (s *orderService) List(ctx context.Context, actor Actor, query dto.OrderListQuery) ([]models.Order, int64, error) {
	userID := actor.ID
	return s.deps.Orders.List(ctx, repository.OrderFilter{
		UserID: &userID,
		Status: strings.TrimSpace(query.Status),
		Page:   query.Page,
		Limit:  query.Limit,
	})
}

func (s *orderService) ListAll(ctx context.Context, query dto.OrderListQuery) ([]models.Order, int64, error) {
	return s.deps.Orders.List(ctx, repository.OrderFilter{
		Status: strings.TrimSpace(query.Status),
		Page:   query.Page,
		Limit:  query.Limit,
	})
}

func (s *orderService) Get(ctx context.Context, actor Actor, id uint) (models.Order, error) {
	order, err := s.deps.Orders.GetByID(ctx, id)
	if err != nil {
		return models.Order{}, translateNotFound(err, ErrOrderNotFound)
	}
	if order.UserID != actor.ID && !actor.IsAdmin() {
		return models.Order{}, ErrForbidden
	}
	return order, nil
}
