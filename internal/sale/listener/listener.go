package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/sale"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventSaleSaved   = "SaleSaved"
	EventSaleDeleted = "SaleDeleted"
)

// MessageReader is satisfied by *broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type SaleListener struct {
	consumer MessageReader
	uc       sale.UseCase
	logger   logger.ZapLogger
}

func NewSaleListener(consumer MessageReader, uc sale.UseCase, logger logger.ZapLogger) *SaleListener {
	return &SaleListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *SaleListener) Start(ctx context.Context) {
	l.logger.Info("Starting Sale Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Sale Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				// Don't log context canceled error as error
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type SaleEvent struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Payload   SalePayload `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type SalePayload struct {
	ID string `json:"id"`
}

func (l *SaleListener) processMessage(ctx context.Context, value []byte) {
	var event SaleEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}
	if event.Payload.ID == "" {
		return
	}

	var err error
	switch event.EventType {
	case EventSaleSaved:
		err = l.uc.Apply(ctx, event.Payload.ID)
	case EventSaleDeleted:
		err = l.uc.Remove(ctx, event.Payload.ID)
	default:
		return
	}
	if err != nil {
		l.logger.Error("Failed to process sale event",
			zap.String("event_type", event.EventType),
			zap.String("sale_id", event.Payload.ID),
			zap.Error(err),
		)
	}
}
