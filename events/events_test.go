package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/campsite-engine/campground"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func sampleEvent() campground.Event {
	return campground.Event{
		ID:         "ev-1",
		Type:       campground.EventCommitmentCreated,
		Key:        "S1",
		OccurredAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Payload:    map[string]string{"commitment_id": "R-1"},
	}
}

func TestKafka_Publish(t *testing.T) {
	w := &fakeWriter{}
	k := &Kafka{writer: w}

	// GIVEN: A reservation event for S1
	// WHEN: It is published
	require.NoError(t, k.Publish(context.Background(), sampleEvent()))

	// THEN: One message keyed by site carries the JSON envelope
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "S1", string(msg.Key))
	assert.Equal(t, "ev-1", HeaderValue(msg.Headers, "event_id"))
	assert.Equal(t, "commitment.created", HeaderValue(msg.Headers, "event_type"))
	assert.True(t, msg.Time.Equal(sampleEvent().OccurredAt))

	var env struct {
		ID      string            `json:"id"`
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "ev-1", env.ID)
	assert.Equal(t, "commitment.created", env.Type)
	assert.Equal(t, "R-1", env.Payload["commitment_id"])
}

func TestKafka_PublishError(t *testing.T) {
	k := &Kafka{writer: &fakeWriter{err: errors.New("broker down")}}

	err := k.Publish(context.Background(), sampleEvent())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "commitment.created")
	assert.Contains(t, err.Error(), "broker down")
}

func TestKafka_UnencodablePayload(t *testing.T) {
	w := &fakeWriter{}
	ev := sampleEvent()
	ev.Payload = make(chan int)

	err := (&Kafka{writer: w}).Publish(context.Background(), ev)

	assert.Error(t, err)
	assert.Empty(t, w.msgs)
}

func TestKafka_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, (&Kafka{writer: w}).Close())
	assert.True(t, w.closed)
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, SplitBrokers(" kafka-1:9092, ,kafka-2:9092 "))
	assert.Nil(t, SplitBrokers(""))
}

func TestHeaderValue_Missing(t *testing.T) {
	assert.Equal(t, "", HeaderValue([]kafka.Header{{Key: "a", Value: []byte("1")}}, "b"))
}

func TestLog_Publish(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	require.NoError(t, NewLog(logger).Publish(context.Background(), sampleEvent()))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "event", entry.Message)
	assert.Equal(t, "S1", entry.Data["key"])
}

func TestNoop_Publish(t *testing.T) {
	assert.NoError(t, Noop{}.Publish(context.Background(), sampleEvent()))
}
