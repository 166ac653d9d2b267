package publisher

import (
	"context"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
)

// EventType names a domain event published after a unit of work commits
type EventType string

const (
	EventTransactionRecorded EventType = "transaction.recorded"
	EventVoucherIssued       EventType = "voucher.issued"
	EventVoucherRedeemed     EventType = "voucher.redeemed"
	EventVoucherCancelled    EventType = "voucher.cancelled"
	EventVoucherExpired      EventType = "voucher.expired"
	EventDrawCompleted       EventType = "draw.completed"
	EventPrizeChosen         EventType = "winner.prize_chosen"
	EventPrizeCollected      EventType = "winner.prize_collected"
)

// Event is the envelope written to the bus
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	AggregateID string    `json:"aggregateId"`
	OccurredAt  time.Time `json:"occurredAt"`
	Payload     any       `json:"payload"`
}

// NewEvent stamps a fresh id on an event
func NewEvent(t EventType, aggregateID string, at time.Time, payload any) Event {
	return Event{
		ID:          models.GenerateID("msg"),
		Type:        t,
		AggregateID: aggregateID,
		OccurredAt:  at,
		Payload:     payload,
	}
}

// Publisher delivers domain events. Publishing is best effort: callers have
// already committed and only log failures.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// NoopPublisher drops every event. Used when kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...Event) error { return nil }
func (NoopPublisher) Close() error                           { return nil }
