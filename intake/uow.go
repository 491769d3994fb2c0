package intake

import (
	"context"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"

	"github.com/geodepot/geodepot/outbox"
	"github.com/geodepot/geodepot/record"
)

// UnitOfWork runs record writes and event publishes inside one database
// transaction, so a lifecycle event can never outlive a rolled back
// record change.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx exposes the transactional collaborators available inside WithinTx.
type Tx interface {
	// Records returns a file record repository bound to the transaction.
	Records() record.Repo

	// PublishEvent schedules an event for delivery after the
	// transaction commits.
	PublishEvent(ctx context.Context, topic, key string, payload any) error
}

// NewUnitOfWork creates the production UnitOfWork over a bun database
// handle and the outbox producer.
func NewUnitOfWork(db *bun.DB, producer outbox.Producer) UnitOfWork {
	return &bunUnitOfWork{
		db:       db,
		producer: producer,
	}
}

type bunUnitOfWork struct {
	db       *bun.DB
	producer outbox.Producer
}

func (u *bunUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	err := u.db.RunInTx(ctx, nil, func(ctx context.Context, btx bun.Tx) error {
		return fn(ctx, &bunTx{tx: btx, producer: u.producer})
	})
	return errx.Wrap(err)
}

type bunTx struct {
	tx       bun.Tx
	producer outbox.Producer
}

func (t *bunTx) Records() record.Repo {
	return record.NewRepository(t.tx)
}

func (t *bunTx) PublishEvent(ctx context.Context, topic, key string, payload any) error {
	return t.producer.Publish(ctx, t.tx, topic, key, payload)
}
