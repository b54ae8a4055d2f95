package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/analytics"
	"github.com/fekuna/omnipos-ledger-service/internal/event"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Consumer is the read side of the ledger topic. *broker.KafkaConsumer implements it.
type Consumer interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// LedgerListener drops cached analytics whenever another instance reports a write.
type LedgerListener struct {
	consumer Consumer
	uc       analytics.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewLedgerListener(consumer Consumer, uc analytics.UseCase, logger logger.ZapLogger) *LedgerListener {
	return &LedgerListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

func (l *LedgerListener) Start(ctx context.Context) {
	l.logger.Info("Starting ledger event listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping ledger event listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.backoff):
				}
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *LedgerListener) processMessage(ctx context.Context, value []byte) {
	var e event.LedgerEvent
	if err := json.Unmarshal(value, &e); err != nil {
		l.logger.Error("Failed to unmarshal ledger event", zap.Error(err))
		return
	}

	switch e.EventType {
	case event.BillSaved, event.BillDeleted, event.ProductChanged,
		event.ShopChanged, event.ShopRenamed, event.DataRestored:
	default:
		return
	}

	l.logger.Debug("Processing ledger event",
		zap.String("event_type", string(e.EventType)),
		zap.String("entity_id", e.EntityID),
		zap.String("source", e.Source))

	if err := l.uc.Invalidate(ctx); err != nil {
		l.logger.Error("Failed to invalidate analytics cache", zap.String("event_id", e.EventID), zap.Error(err))
	}
}
