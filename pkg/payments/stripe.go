package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeConfig holds Stripe credentials.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// StripeGateway implements Gateway on Stripe Checkout.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	logger        zerolog.Logger
}

// NewStripeGateway constructs the Stripe gateway.
func NewStripeGateway(cfg StripeConfig, logger zerolog.Logger) (*StripeGateway, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, ErrNotConfigured
	}
	return &StripeGateway{
		api:           client.New(cfg.SecretKey, nil),
		webhookSecret: cfg.WebhookSecret,
		logger:        logger.With().Str("component", "stripe_gateway").Logger(),
	}, nil
}

func (g *StripeGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	if len(req.Lines) == 0 {
		return CheckoutSession{}, fmt.Errorf("checkout requires at least one line")
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	lines := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
				UnitAmount: stripe.Int64(line.UnitAmount),
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}

	orderID := strconv.FormatUint(uint64(req.OrderID), 10)
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(orderID),
		LineItems:         lines,
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata("orderId", orderID)

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("failed to create checkout session: %w", err)
	}

	g.logger.Info().Str("session_id", session.ID).Str("order_id", orderID).Msg("checkout session created")
	return CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (WebhookEvent, error) {
	if g.webhookSecret == "" {
		return WebhookEvent{}, ErrNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	result := WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if !strings.HasPrefix(result.Type, "checkout.session.") || event.Data == nil {
		return result, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return WebhookEvent{}, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	result.SessionID = session.ID
	result.OrderID = session.Metadata["orderId"]
	if result.OrderID == "" {
		result.OrderID = session.ClientReferenceID
	}
	return result, nil
}
