// Package events publishes campground domain events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/warp/campsite-engine/campground"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes events as JSON, keyed by site so one site's events stay
// ordered on one partition.
type Kafka struct {
	writer messageWriter
}

// Envelope is the message body.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func NewKafka(brokers []string, topic string) *Kafka {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.Hash{},
	})
	return &Kafka{writer: writer}
}

func (k *Kafka) Publish(ctx context.Context, ev campground.Event) error {
	body, err := json.Marshal(Envelope{
		ID:         ev.ID,
		Type:       string(ev.Type),
		OccurredAt: ev.OccurredAt,
		Payload:    ev.Payload,
	})
	if err != nil {
		return fmt.Errorf("encode event %s: %w", ev.Type, err)
	}

	headers := []kafka.Header{
		{Key: "event_id", Value: []byte(ev.ID)},
		{Key: "event_type", Value: []byte(ev.Type)},
	}
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, key := range carrier.Keys() {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(carrier.Get(key))})
	}

	msg := kafka.Message{
		Key:     []byte(ev.Key),
		Value:   body,
		Headers: headers,
		Time:    ev.OccurredAt,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish event %s: %w", ev.Type, err)
	}
	return nil
}

func (k *Kafka) Close() error { return k.writer.Close() }

// SplitBrokers parses a comma-separated broker list.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// HeaderValue returns the first header with key, or "".
func HeaderValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

var _ campground.Publisher = (*Kafka)(nil)
