package pg_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/geodepot/geodepot/pg"
)

func TestIsConflict(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "unique violation",
			err:      &pgconn.PgError{Code: "23505", ConstraintName: "uq_file_records_institution_kind_name"},
			expected: true,
		},
		{
			name:     "wrapped unique violation",
			err:      fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505"}),
			expected: true,
		},
		{
			name:     "foreign key violation",
			err:      &pgconn.PgError{Code: "23503"},
			expected: false,
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, pg.IsConflict(tc.err))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, pg.IsNotFound(sql.ErrNoRows))
	assert.True(t, pg.IsNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)))
	assert.False(t, pg.IsNotFound(errors.New("boom")))
	assert.False(t, pg.IsNotFound(nil))
}

func TestConstraintName(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_file_records_institution_kind_name"}

	assert.Equal(t, "uq_file_records_institution_kind_name", pg.ConstraintName(pgErr))
	assert.Equal(t, "uq_file_records_institution_kind_name", pg.ConstraintName(fmt.Errorf("wrap: %w", pgErr)))
	assert.Empty(t, pg.ConstraintName(errors.New("boom")))
	assert.Empty(t, pg.ConstraintName(nil))
}
