package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/collision-dashboard/internal/config"
	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/couchcryptid/collision-dashboard/internal/observability"
)

const defaultBatchSize = 500

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes the normalized base table to a Kafka topic so other
// consumers can reuse the cleaned records.
type Publisher struct {
	writer    messageWriter
	batchSize int
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewPublisher creates a Kafka producer for the configured topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, batchSize: defaultBatchSize, logger: logger, metrics: metrics}
}

// Publish writes every record of t in batches. Records are keyed by
// Record.ID, so republishing the same file produces the same keys.
func (p *Publisher) Publish(ctx context.Context, t *domain.Table) error {
	start := time.Now()
	published := 0
	for lo := 0; lo < t.Len(); lo += p.batchSize {
		hi := min(lo+p.batchSize, t.Len())

		msgs := make([]kafkago.Message, 0, hi-lo)
		for _, r := range t.Records[lo:hi] {
			msg, err := serializeToMessage(r, t.Stats.LoadedAt)
			if err != nil {
				p.metrics.PublishErrors.Inc()
				return err
			}
			msgs = append(msgs, msg)
		}

		if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
			p.metrics.PublishErrors.Inc()
			return fmt.Errorf("publish records %d-%d: %w", lo, hi, err)
		}
		published += len(msgs)
		p.metrics.RecordsPublished.Add(float64(len(msgs)))
	}

	p.logger.Info("base table published", "records", published, "duration", time.Since(start))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// collisionMessage is the wire form of a record.
type collisionMessage struct {
	ID string `json:"id"`
	domain.Record
}

func serializeToMessage(r domain.Record, loadedAt time.Time) (kafkago.Message, error) {
	id := r.ID()
	data, err := json.Marshal(collisionMessage{ID: id, Record: r})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize collision %s: %w", id, err)
	}
	return kafkago.Message{
		Key:   []byte(id),
		Value: data,
		Time:  r.Timestamp,
		Headers: []kafkago.Header{
			{Key: "crash_hour", Value: []byte(strconv.Itoa(r.Timestamp.Hour()))},
			{Key: "loaded_at", Value: []byte(loadedAt.Format(time.RFC3339))},
		},
	}, nil
}
