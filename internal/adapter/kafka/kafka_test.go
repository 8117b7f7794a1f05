package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/couchcryptid/collision-dashboard/internal/observability"
)

type fakeWriter struct {
	batches [][]kafkago.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.batches = append(w.batches, msgs)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testPublisher(w messageWriter, batchSize int) *Publisher {
	return &Publisher{
		writer:    w,
		batchSize: batchSize,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:   observability.NewMetricsForTesting(),
	}
}

func testRecord(minute int, street string) domain.Record {
	return domain.Record{
		Timestamp:      time.Date(2021, 9, 11, 14, minute, 0, 0, time.UTC),
		Latitude:       40.7,
		Longitude:      -73.9,
		InjuredPersons: domain.Known(1),
		OnStreetName:   street,
	}
}

func testTable(n int) *domain.Table {
	t := &domain.Table{Stats: domain.LoadStats{LoadedAt: time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)}}
	for i := range n {
		t.Records = append(t.Records, testRecord(i, "BROADWAY"))
	}
	return t
}

func TestSerializeToMessage(t *testing.T) {
	loadedAt := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)
	r := testRecord(39, "WHITESTONE EXPRESSWAY")

	msg, err := serializeToMessage(r, loadedAt)
	require.NoError(t, err)

	assert.Equal(t, []byte(r.ID()), msg.Key)
	assert.Equal(t, r.Timestamp, msg.Time)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "crash_hour", msg.Headers[0].Key)
	assert.Equal(t, []byte("14"), msg.Headers[0].Value)
	assert.Equal(t, "loaded_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(loadedAt.Format(time.RFC3339)), msg.Headers[1].Value)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, r.ID(), body["id"])
	assert.Equal(t, "WHITESTONE EXPRESSWAY", body["on_street_name"])
	assert.Equal(t, "2021-09-11T14:39:00Z", body["date/time"])
	assert.Nil(t, body["injured_cyclists"], "null counts stay null")
	assert.InDelta(t, 1, body["injured_persons"], 0)
}

func TestPublish_Batches(t *testing.T) {
	w := &fakeWriter{}
	p := testPublisher(w, 2)

	require.NoError(t, p.Publish(context.Background(), testTable(5)))

	require.Len(t, w.batches, 3)
	assert.Len(t, w.batches[0], 2)
	assert.Len(t, w.batches[2], 1)
}

func TestPublish_EmptyTable(t *testing.T) {
	w := &fakeWriter{}
	p := testPublisher(w, 2)

	require.NoError(t, p.Publish(context.Background(), testTable(0)))
	assert.Empty(t, w.batches)
}

func TestPublish_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unreachable")}
	p := testPublisher(w, 2)

	err := p.Publish(context.Background(), testTable(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "records 0-2")
	assert.Contains(t, err.Error(), "broker unreachable")
}

func TestPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, testPublisher(w, 2).Close())
	assert.True(t, w.closed)
}
