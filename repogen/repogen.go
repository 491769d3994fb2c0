// Package repogen provides generic repository contracts and their
// PostgreSQL implementations built on bun ORM.
//
// Concrete repositories embed PgRepo or PgReadOnlyRepo with their entity
// and filter types and configure behavior through the builders.
package repogen

import (
	"context"
)

// ReadOnlyRepo defines generic read operations over an entity type E
// narrowed by a filter type F.
type ReadOnlyRepo[E any, F any] interface {
	// Get returns exactly one entity matching the filters.
	// It fails with a not-found code when no rows match and with
	// MULTIPLE_ROWS_FOUND when more than one row matches.
	Get(ctx context.Context, filters F) (*E, error)

	// List returns all entities matching the filters.
	List(ctx context.Context, filters F) ([]E, error)

	// ListWithCount returns entities matching the filters together with
	// the total count ignoring any limit/offset applied by the filters.
	ListWithCount(ctx context.Context, filters F) ([]E, int, error)

	// Count returns the number of entities matching the filters.
	Count(ctx context.Context, filters F) (int, error)

	// FirstOrNil returns the first matching entity or nil when none match.
	FirstOrNil(ctx context.Context, filters F) (*E, error)

	// Exists reports whether at least one entity matches the filters.
	Exists(ctx context.Context, filters F) (bool, error)
}

// Repo extends ReadOnlyRepo with write operations.
type Repo[E any, F any] interface {
	ReadOnlyRepo[E, F]

	// Create inserts the entity and returns it with database-assigned fields.
	Create(ctx context.Context, entity *E) (*E, error)

	// Update saves the entity by primary key and returns the stored state.
	Update(ctx context.Context, entity *E) (*E, error)

	// Delete removes the entity by primary key.
	Delete(ctx context.Context, entity *E) error
}
