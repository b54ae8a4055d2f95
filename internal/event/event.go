package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	BillSaved      Type = "BillSaved"
	BillDeleted    Type = "BillDeleted"
	ProductChanged Type = "ProductChanged"
	ShopChanged    Type = "ShopChanged"
	ShopRenamed    Type = "ShopRenamed"
	DataRestored   Type = "DataRestored"
)

// LedgerEvent announces that a collection changed. Consumers re-read the store; the event
// carries no record payload.
type LedgerEvent struct {
	EventID   string    `json:"event_id"`
	EventType Type      `json:"event_type"`
	EntityID  string    `json:"entity_id,omitempty"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func New(t Type, entityID string) LedgerEvent {
	return LedgerEvent{
		EventID:   uuid.New().String(),
		EventType: t,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e LedgerEvent) error
}

type PublisherFunc func(ctx context.Context, e LedgerEvent) error

func (f PublisherFunc) Publish(ctx context.Context, e LedgerEvent) error {
	return f(ctx, e)
}

type Nop struct{}

func (Nop) Publish(context.Context, LedgerEvent) error { return nil }

// Fanout delivers to every publisher and returns the first error after trying them all.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e LedgerEvent) error {
	var first error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
