package service

import (
	"context"

	"go.uber.org/zap"

	"tasktracker/internal/metrics"
	"tasktracker/internal/mq"
)

// eventSink publishes after commit. A failed publish is logged and never
// fails the operation that produced it.
type eventSink struct {
	publisher mq.Publisher
	logger    *zap.Logger
}

func newEventSink(publisher mq.Publisher, logger *zap.Logger) eventSink {
	if publisher == nil {
		publisher = mq.NoopPublisher{}
	}
	return eventSink{publisher: publisher, logger: logger}
}

func (e eventSink) emit(ctx context.Context, routingKey string, payload any) {
	err := e.publisher.Publish(ctx, routingKey, payload)
	metrics.IncrementEventPublished(routingKey, err)
	if err != nil {
		e.logger.Warn("Failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
