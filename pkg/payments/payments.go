// Package payments creates hosted checkout sessions and verifies provider webhooks.
package payments

import (
	"context"
	"errors"
)

// Webhook event types handled by the order flow.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

var (
	// ErrNotConfigured indicates no payment provider credentials were supplied.
	ErrNotConfigured = errors.New("payments are not configured")
	// ErrInvalidSignature indicates a webhook payload failed verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// CheckoutLine is one purchasable line of a checkout.
type CheckoutLine struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CheckoutRequest describes the hosted checkout to create.
type CheckoutRequest struct {
	OrderID       uint
	CustomerEmail string
	Currency      string
	Lines         []CheckoutLine
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the provider session the client is redirected to.
type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent is the verified subset of a provider event the order flow needs.
type WebhookEvent struct {
	ID        string
	Type      string
	SessionID string
	OrderID   string
}

// Gateway abstracts the payment provider.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (WebhookEvent, error)
}
