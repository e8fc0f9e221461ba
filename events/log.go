package events

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/warp/campsite-engine/campground"
)

// Log writes events to the logger instead of a broker. Used when no Kafka
// brokers are configured.
type Log struct {
	log logrus.FieldLogger
}

func NewLog(log logrus.FieldLogger) *Log { return &Log{log: log} }

func (l *Log) Publish(_ context.Context, ev campground.Event) error {
	l.log.WithFields(logrus.Fields{
		"event_id":   ev.ID,
		"event_type": ev.Type,
		"key":        ev.Key,
	}).Debug("event")
	return nil
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(context.Context, campground.Event) error { return nil }
