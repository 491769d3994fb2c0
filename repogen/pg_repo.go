package repogen

import (
	"context"
	"fmt"

	"github.com/code19m/errx"
	"github.com/geodepot/geodepot/pg"
	"github.com/uptrace/bun"
)

// PgRepo provides CRUD operations for a PostgreSQL table using bun ORM.
type PgRepo[E any, F any] struct {
	*PgReadOnlyRepo[E, F]

	// conflictCodesMap maps PostgreSQL constraint names to error codes.
	// E.g. map["uq_file_records_owner_kind_name"] = "DUPLICATE_FILE"
	conflictCodesMap map[string]string
}

// PgRepoBuilder is a builder for PgRepo with sensible defaults.
type PgRepoBuilder[E any, F any] struct {
	ro               *PgReadOnlyRepoBuilder[E, F]
	conflictCodesMap map[string]string
}

// NewPgRepoBuilder creates a new builder with sensible defaults.
func NewPgRepoBuilder[E any, F any](idb bun.IDB) *PgRepoBuilder[E, F] {
	return &PgRepoBuilder[E, F]{
		ro:               NewPgReadOnlyRepoBuilder[E, F](idb),
		conflictCodesMap: make(map[string]string),
	}
}

// WithSchemaName sets the schema name.
func (b *PgRepoBuilder[E, F]) WithSchemaName(name string) *PgRepoBuilder[E, F] {
	b.ro.WithSchemaName(name)
	return b
}

// WithNotFoundCode sets the error code used when Get matches no rows.
func (b *PgRepoBuilder[E, F]) WithNotFoundCode(code string) *PgRepoBuilder[E, F] {
	b.ro.WithNotFoundCode(code)
	return b
}

// WithConflictCode maps a PostgreSQL constraint name to an error code
// returned when a write violates that constraint.
func (b *PgRepoBuilder[E, F]) WithConflictCode(constraint, code string) *PgRepoBuilder[E, F] {
	b.conflictCodesMap[constraint] = code
	return b
}

// WithFilterFunc sets the function that applies filters F to select queries.
func (b *PgRepoBuilder[E, F]) WithFilterFunc(
	fn func(q *bun.SelectQuery, filters F) *bun.SelectQuery,
) *PgRepoBuilder[E, F] {
	b.ro.WithFilterFunc(fn)
	return b
}

// Build creates the PgRepo.
func (b *PgRepoBuilder[E, F]) Build() *PgRepo[E, F] {
	return &PgRepo[E, F]{
		PgReadOnlyRepo:   b.ro.Build(),
		conflictCodesMap: b.conflictCodesMap,
	}
}

func (r *PgRepo[E, F]) Create(ctx context.Context, entity *E) (*E, error) {
	q := r.idb.NewInsert().Model(entity).Returning("*")
	q = r.applyInsertModelTableExpr(q)
	_, err := q.Exec(ctx)
	if err != nil {
		if code, exists := r.conflictCodesMap[pg.ConstraintName(err)]; exists {
			return nil, errx.New(
				fmt.Sprintf("conflict while creating %s", r.entityName),
				errx.WithCode(code),
				errx.WithType(errx.T_Conflict),
				errx.WithDetails(pg.GetPgErrorDetails(err, q)),
			)
		}
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	return entity, nil
}

func (r *PgRepo[E, F]) Update(ctx context.Context, entity *E) (*E, error) {
	q := r.idb.NewUpdate().Model(entity).WherePK().Returning("*")
	q = r.applyUpdateModelTableExpr(q)
	result, err := q.Exec(ctx)
	if err != nil {
		if code, exists := r.conflictCodesMap[pg.ConstraintName(err)]; exists {
			return nil, errx.New(
				fmt.Sprintf("conflict while updating %s", r.entityName),
				errx.WithCode(code),
				errx.WithType(errx.T_Conflict),
				errx.WithDetails(pg.GetPgErrorDetails(err, q)),
			)
		}
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	if rowsAffected == 0 {
		return nil, errx.New(
			fmt.Sprintf("no %s found to update", r.entityName),
			errx.WithCode(CodeIncorrectRowsAffection),
			errx.WithDetails(pg.GetPgErrorDetails(err, q)),
		)
	}

	return entity, nil
}

func (r *PgRepo[E, F]) Delete(ctx context.Context, entity *E) error {
	q := r.idb.NewDelete().Model(entity).WherePK()
	q = r.applyDeleteModelTableExpr(q)
	result, err := q.Exec(ctx)
	if err != nil {
		if code, exists := r.conflictCodesMap[pg.ConstraintName(err)]; exists {
			return errx.New(
				fmt.Sprintf("conflict while deleting %s", r.entityName),
				errx.WithCode(code),
				errx.WithType(errx.T_Conflict),
				errx.WithDetails(pg.GetPgErrorDetails(err, q)),
			)
		}
		return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	if rowsAffected == 0 {
		return errx.New(
			fmt.Sprintf("no %s found to delete", r.entityName),
			errx.WithCode(CodeIncorrectRowsAffection),
			errx.WithDetails(pg.GetPgErrorDetails(err, q)),
		)
	}

	return nil
}

func (r *PgRepo[E, F]) applyInsertModelTableExpr(q *bun.InsertQuery) *bun.InsertQuery {
	table := q.GetModel().(bun.TableModel).Table() //nolint:errcheck // table name is always available
	return q.ModelTableExpr("?.? AS ?", bun.Ident(r.schemaName), bun.Ident(table.Name), bun.Ident(table.Alias))
}

func (r *PgRepo[E, F]) applyUpdateModelTableExpr(q *bun.UpdateQuery) *bun.UpdateQuery {
	table := q.GetModel().(bun.TableModel).Table() //nolint:errcheck // table name is always available
	return q.ModelTableExpr("?.? AS ?", bun.Ident(r.schemaName), bun.Ident(table.Name), bun.Ident(table.Alias))
}

func (r *PgRepo[E, F]) applyDeleteModelTableExpr(q *bun.DeleteQuery) *bun.DeleteQuery {
	table := q.GetModel().(bun.TableModel).Table() //nolint:errcheck // table name is always available
	return q.ModelTableExpr("?.? AS ?", bun.Ident(r.schemaName), bun.Ident(table.Name), bun.Ident(table.Alias))
}
