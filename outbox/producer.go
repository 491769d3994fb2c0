// Package outbox implements transactional event publishing over the
// outbox pattern. A Producer stores messages in an outbox table within
// the caller's database transaction, and a Worker forwards committed
// messages to Kafka. Events are therefore never visible to consumers
// unless the business write that produced them committed.
package outbox

import (
	"context"
	"encoding/json"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Producer stores messages in the outbox table for later delivery.
type Producer interface {
	// Publish marshals payload as JSON and schedules it for delivery
	// to topic. Messages with the same key are delivered in order.
	// The idb argument must be the bun.Tx of the surrounding business
	// write, so that the message commits or rolls back with it.
	Publish(ctx context.Context, idb bun.IDB, topic, key string, payload any) error
}

// NewProducer creates a Producer backed by the outbox table.
func NewProducer() Producer {
	return &pgProducer{
		tableName: outboxTableName,
	}
}

type pgProducer struct {
	tableName string
}

func (p *pgProducer) Publish(ctx context.Context, idb bun.IDB, topic, key string, payload any) error {
	if _, ok := idb.(bun.Tx); !ok {
		return errx.New("idb must be bun.Tx instance")
	}

	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return errx.Wrap(err)
	}

	envelope := &messageEnvelope{
		DestinationTopic: topic,
		UUID:             uuid.NewString(),
		Payload:          msgBytes,
		Metadata: map[string]string{
			"partition_key": key,
		},
	}

	// inject tracing context into envelope metadata, so the worker
	// side of the trace links back to this transaction
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(envelope.Metadata))

	// the stored payload is the whole envelope: the forwarder unwraps
	// it and publishes the inner message to the destination topic
	envelopeBytes, err := json.Marshal(envelope)
	if err != nil {
		return errx.Wrap(err)
	}

	outBoxData := outboxMsg{
		UUID:     envelope.UUID,
		Payload:  envelopeBytes,
		Metadata: map[string]string{},
	}

	_, err = idb.NewInsert().
		ModelTableExpr(p.tableName).
		Model(&outBoxData).
		Value("transaction_id", "pg_current_xact_id()").
		Exec(ctx)

	return errx.Wrap(err)
}

// NoopProducer discards every message. It stands in for the real
// producer when the outbox worker is disabled.
type NoopProducer struct{}

func NewNoopProducer() NoopProducer { return NoopProducer{} }

func (NoopProducer) Publish(context.Context, bun.IDB, string, string, any) error {
	return nil
}

// messageEnvelope wraps a Watermill message and carries its destination topic.
type messageEnvelope struct {
	DestinationTopic string            `json:"destination_topic"`
	UUID             string            `json:"uuid"`
	Payload          []byte            `json:"payload"`
	Metadata         map[string]string `json:"metadata"`
}

// outboxMsg represents a single outbox row as stored in the database.
type outboxMsg struct {
	UUID     string            `bun:"uuid"`
	Payload  []byte            `bun:"payload"`
	Metadata map[string]string `bun:"metadata"`
}
