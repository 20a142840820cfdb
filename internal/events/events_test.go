package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/catalog_api/internal/config"
	"github.com/Skotchmaster/catalog_api/internal/events"
	"github.com/Skotchmaster/catalog_api/internal/events/eventstest"
	"github.com/Skotchmaster/catalog_api/internal/logging"
)

func TestEventKey(t *testing.T) {
	require.Equal(t, "product:42", events.Event{Type: events.ProductCreated, ActorID: 1, ProductID: 42}.Key())
	require.Equal(t, "user:7", events.Event{Type: events.UserLoggedIn, ActorID: 7}.Key())
}

func TestEventJSON(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err := json.Marshal(events.Event{Type: events.UserLoggedOut, ActorID: 3, OccurredAt: at})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"user_logged_out","actor_id":3,"occurred_at":"2025-01-02T03:04:05Z"}`, string(data))
}

func TestEmit_StampsTime(t *testing.T) {
	rec := &eventstest.Recorder{}
	events.Emit(context.Background(), rec, events.Event{Type: events.ProductDeleted, ProductID: 1})

	got := rec.Events()
	require.Len(t, got, 1)
	require.False(t, got[0].OccurredAt.IsZero())
}

func TestEmit_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.IntoContext(context.Background(), logging.NewWithWriter(&buf, "debug"))

	rec := &eventstest.Recorder{Err: errors.New("broker down")}
	events.Emit(ctx, rec, events.Event{Type: events.ProductUpdated, ProductID: 9})

	require.Contains(t, buf.String(), "event_publish_failed")
	require.Contains(t, buf.String(), "broker down")
}

// stalled never answers until its context is done.
type stalled struct{}

func (stalled) Publish(ctx context.Context, _ events.Event) error {
	<-ctx.Done()
	return ctx.Err()
}

func (stalled) Close() error { return nil }

func TestEmit_BoundedByPublishTimeout(t *testing.T) {
	prev := events.PublishTimeout
	events.PublishTimeout = 50 * time.Millisecond
	t.Cleanup(func() { events.PublishTimeout = prev })

	var buf bytes.Buffer
	ctx := logging.IntoContext(context.Background(), logging.NewWithWriter(&buf, "debug"))

	start := time.Now()
	events.Emit(ctx, stalled{}, events.Event{Type: events.ProductCreated, ProductID: 5})

	require.Less(t, time.Since(start), time.Second)
	require.Contains(t, buf.String(), "event_publish_failed")
	require.Contains(t, buf.String(), context.DeadlineExceeded.Error())
}

func TestEmit_UnreachableBrokerDoesNotStall(t *testing.T) {
	p := events.NewKafkaPublisher([]string{"127.0.0.1:1"}, "product_events")
	t.Cleanup(func() { _ = p.Close() })

	start := time.Now()
	events.Emit(context.Background(), p, events.Event{Type: events.ProductUpdated, ProductID: 5})
	require.Less(t, time.Since(start), events.PublishTimeout+time.Second)
}

func TestEmit_NilPublisher(t *testing.T) {
	require.NotPanics(t, func() {
		events.Emit(context.Background(), nil, events.Event{Type: events.ProductCreated})
	})
}

func TestNew_NoBrokersIsNop(t *testing.T) {
	p := events.New(nil, "product_events")
	require.IsType(t, events.Nop{}, p)
	require.NoError(t, p.Publish(context.Background(), events.Event{}))
	require.NoError(t, p.Close())
}

func TestKafkaPublisher_Integration(t *testing.T) {
	brokers := config.CSV(os.Getenv("CATALOG_TEST_KAFKA_BROKERS"))
	if len(brokers) == 0 {
		t.Skip("CATALOG_TEST_KAFKA_BROKERS not set")
	}
	topic := "catalog_test_events"

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	conn, err := kafka.Dial("tcp", brokers[0])
	require.NoError(t, err)
	_ = conn.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	_ = conn.Close()

	leader, err := kafka.DialLeader(ctx, "tcp", brokers[0], topic, 0)
	require.NoError(t, err)
	end, err := leader.ReadLastOffset()
	require.NoError(t, err)
	_ = leader.Close()

	pub := events.NewKafkaPublisher(brokers, topic)
	defer pub.Close()
	require.NoError(t, pub.Publish(ctx, events.Event{Type: events.ProductCreated, ActorID: 1, ProductID: 5}))

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
		MaxWait:   time.Second,
	})
	defer r.Close()
	require.NoError(t, r.SetOffset(end))

	m, err := r.ReadMessage(ctx)
	require.NoError(t, err)
	require.Equal(t, "product:5", string(m.Key))

	var got map[string]any
	require.NoError(t, json.Unmarshal(m.Value, &got))
	require.Equal(t, events.ProductCreated, got["type"])
}
