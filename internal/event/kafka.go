package event

import (
	"context"
	"encoding/json"

	"github.com/fekuna/omnipos-ledger-service/pkg/broker"
)

// KafkaPublisher writes events to the ledger topic, keyed by event type.
type KafkaPublisher struct {
	producer *broker.KafkaProducer
	source   string
}

func NewKafkaPublisher(producer *broker.KafkaProducer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e LedgerEvent) error {
	e.Source = p.source
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, string(e.EventType), data)
}
