// Package kafka publishes normalized records to a Kafka topic. It implements
// pipeline.Sink for deployments whose archive is fed through a broker rather
// than written directly.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/station-log-import/internal/catalog"
	"github.com/couchcryptid/station-log-import/internal/domain"
	"github.com/couchcryptid/station-log-import/internal/mapping"
)

// Writer produces one JSON message per record, keyed by epoch timestamp so
// log-compacted topics deduplicate replayed imports.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger

	dryRun bool
	units  []byte // JSON object of destination field -> unit, sent as a header
	period string // active period name, sent as a header
}

// NewWriter creates a Kafka producer for the archive topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// BeginRun captures the unit tags for the run and the dry-run instruction.
// Records carry no unit metadata themselves; consumers read the units header.
func (w *Writer) BeginRun(_ context.Context, fields []mapping.FieldSpec, dryRun bool) error {
	w.dryRun = dryRun

	tags := make(map[string]string, len(fields))
	for _, f := range fields {
		if f.Unit != "" {
			tags[f.Dest] = f.Unit
		}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("serialize unit tags: %w", err)
	}
	w.units = data

	if dryRun {
		w.logger.Info("dry run: records will not be produced to Kafka")
	}
	return nil
}

// BeginPeriod tracks the active period for message headers and logs the run
// boundaries.
func (w *Writer) BeginPeriod(_ context.Context, period catalog.Period) error {
	w.period = period.Name()
	if period.IsFirst || period.IsLast {
		w.logger.Info("period boundary",
			"period", period.Name(),
			"first_period", period.IsFirst,
			"last_period", period.IsLast,
		)
	}
	return nil
}

// WriteBatch serializes and publishes a batch in a single WriteMessages call.
// Dry runs serialize everything but skip the produce.
func (w *Writer) WriteBatch(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := w.serializeToMessage(&records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if w.dryRun {
		return nil
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

// Close flushes and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

func (w *Writer) serializeToMessage(rec *domain.Record) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.FormatInt(rec.DateTime, 10)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "period", Value: []byte(w.period)},
			{Key: "units", Value: w.units},
			{Key: "imported_at", Value: []byte(rec.ImportedAt.Format(time.RFC3339))},
		},
	}, nil
}
