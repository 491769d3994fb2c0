package record

import (
	"github.com/geodepot/geodepot/filekind"
	"github.com/geodepot/geodepot/repogen"
	"github.com/geodepot/geodepot/sorter"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AllowedSortFields lists the columns listing endpoints may sort by.
var AllowedSortFields = []string{"name", "size", "created_at", "updated_at"}

// Filter narrows file record queries. Zero values mean "not filtered".
type Filter struct {
	ID            uuid.UUID
	InstitutionID uuid.UUID
	Kind          filekind.Kind
	Name          string

	Sort   sorter.SortOpts
	Limit  int
	Offset int
}

// Repo is the repository contract the intake orchestrator depends on.
type Repo = repogen.Repo[FileRecord, Filter]

// NewRepository creates the file record repository. The unique
// constraint on (institution_id, kind, name) maps to CodeDuplicateFile.
func NewRepository(idb bun.IDB) Repo {
	return repogen.NewPgRepoBuilder[FileRecord, Filter](idb).
		WithNotFoundCode(CodeFileNotFound).
		WithConflictCode(UniqueFileConstraint, CodeDuplicateFile).
		WithFilterFunc(applyFilter).
		Build()
}

func applyFilter(q *bun.SelectQuery, f Filter) *bun.SelectQuery {
	if f.ID != uuid.Nil {
		q = q.Where("fr.id = ?", f.ID)
	}
	if f.InstitutionID != uuid.Nil {
		q = q.Where("fr.institution_id = ?", f.InstitutionID)
	}
	if f.Kind != "" {
		q = q.Where("fr.kind = ?", f.Kind)
	}
	if f.Name != "" {
		q = q.Where("fr.name = ?", f.Name)
	}

	for _, opt := range f.Sort {
		q = q.Order(opt.ToSQL())
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	return q
}
