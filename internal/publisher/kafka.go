package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/logger"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"
)

// KafkaPublisher writes events as JSON messages keyed by aggregate id, so
// every event for one voucher or winner lands on the same partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

// NewKafkaPublisher creates a publisher for one topic
func NewKafkaPublisher(brokers []string, topic string, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
		logger: log,
	}
}

// Publish implements Publisher
func (p *KafkaPublisher) Publish(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID().String()

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		body, err := json.Marshal(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.AggregateID),
			Value: body,
			Headers: []kafka.Header{
				{Key: "event-type", Value: []byte(e.Type)},
				{Key: "trace-id", Value: []byte(traceID)},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Errorw("failed to publish events", "count", len(msgs), "error", err)
		return err
	}
	return nil
}

// Close flushes and closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
