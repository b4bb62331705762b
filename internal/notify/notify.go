// README: Best-effort notification outbox. Events are appended to a Redis
// stream consumed by the external email/SMS dispatcher; publish failures are
// logged and never fail the operation that produced them.
package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AhmedDevOp360/Transport-Backend/internal/types"
)

type EventType string

const (
	EventBidSubmitted   EventType = "bid_submitted"
	EventBidAccepted    EventType = "bid_accepted"
	EventBidRejected    EventType = "bid_rejected"
	EventDriverAssigned EventType = "driver_assigned"
	EventStatusChanged  EventType = "status_changed"
)

// Event is the payload handed to the external dispatcher. RecipientID is the
// user to notify; Data carries event-specific fields.
type Event struct {
	Type          EventType      `json:"type"`
	RecipientID   types.ID       `json:"recipient_id"`
	MoveRequestID types.ID       `json:"move_request_id"`
	Data          map[string]any `json:"data,omitempty"`
}

// Notifier delivers events best-effort. Implementations must not block the
// caller on downstream failures.
type Notifier interface {
	Publish(ctx context.Context, e Event)
}

type redisPublisher struct {
	rdb    *redis.Client
	stream string
	log    *zap.Logger
}

func NewRedisPublisher(rdb *redis.Client, stream string, log *zap.Logger) Notifier {
	return &redisPublisher{rdb: rdb, stream: stream, log: log}
}

func (p *redisPublisher) Publish(ctx context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		p.log.Warn("notify: marshal event", zap.Error(err))
		return
	}
	err = p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{"event": string(payload)},
	}).Err()
	if err != nil {
		p.log.Warn("notify: publish event",
			zap.String("type", string(e.Type)),
			zap.Int64("recipient_id", int64(e.RecipientID)),
			zap.Error(err),
		)
	}
}

// Nop discards all events. Used in tests and when Redis is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
