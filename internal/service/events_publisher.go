package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nemesis-api/internal/observability"
)

// Domain event subjects.
const (
	SubjectOrderPaid      = "nemesis.orders.paid"
	SubjectOrderCancelled = "nemesis.orders.cancelled"
	// SubjectOrderRefundRequired flags a paid order containing items it could not be fulfilled with.
	SubjectOrderRefundRequired = "nemesis.orders.refund_required"
	SubjectMessageCreated      = "nemesis.messages.created"
	SubjectArtworkRemoved      = "nemesis.artworks.removed"
)

// DomainEvent is the envelope published for every subject.
type DomainEvent struct {
	Subject    string      `json:"subject"`
	Source     string      `json:"source"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// EventPublisher broadcasts domain events. Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{})
}

type natsPublisher struct {
	conn   *nats.Conn
	source string
	logger zerolog.Logger
}

// NewEventPublisher returns a NATS backed publisher, or a no-op when conn is nil.
func NewEventPublisher(conn *nats.Conn, source string, logger zerolog.Logger) EventPublisher {
	if conn == nil {
		return noopPublisher{}
	}
	return &natsPublisher{
		conn:   conn,
		source: source,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsPublisher) Publish(_ context.Context, subject string, payload interface{}) {
	data, err := json.Marshal(DomainEvent{
		Subject:    subject,
		Source:     p.source,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		observability.EventsPublished().WithLabelValues(subject, "error").Inc()
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to encode domain event")
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		observability.EventsPublished().WithLabelValues(subject, "error").Inc()
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish domain event")
		return
	}
	observability.EventsPublished().WithLabelValues(subject, "success").Inc()
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, interface{}) {}
