package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const eventSubjectPrefix = "campus.events."

// DomainEvent is broadcast whenever a domain state change happens.
type DomainEvent struct {
	Name       string         `json:"name"`
	ActorID    uint           `json:"actor_id"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// EventPublisher broadcasts domain events to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent)
}

type natsEventPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
	now    func() time.Time
}

// NewEventPublisher publishes events on campus.events.<name>. A nil
// connection yields a publisher that only logs.
func NewEventPublisher(conn *nats.Conn, logger zerolog.Logger) EventPublisher {
	return &natsEventPublisher{
		conn:   conn,
		logger: logger.With().Str("component", "event_publisher").Logger(),
		now:    time.Now,
	}
}

func (p *natsEventPublisher) Publish(ctx context.Context, event DomainEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}

	if p.conn == nil {
		p.logger.Debug().Str("event", event.Name).Msg("event publisher disabled")
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("event", event.Name).Msg("failed to encode domain event")
		return
	}

	if err := p.conn.Publish(eventSubjectPrefix+event.Name, payload); err != nil {
		p.logger.Warn().Err(err).Str("event", event.Name).Msg("failed to publish domain event")
	}
}
