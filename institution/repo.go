package institution

import (
	"github.com/geodepot/geodepot/repogen"
	"github.com/geodepot/geodepot/sorter"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AllowedSortFields lists the columns listing endpoints may sort by.
var AllowedSortFields = []string{"name", "country", "created_at", "updated_at"}

// Filter narrows institution queries. Zero values mean "not filtered".
type Filter struct {
	ID   uuid.UUID
	Name string

	Sort   sorter.SortOpts
	Limit  int
	Offset int
}

// Repo is the repository contract for institutions.
type Repo = repogen.Repo[Institution, Filter]

// NewRepository creates the institution repository with its constraint
// to error code mapping.
func NewRepository(idb bun.IDB) Repo {
	return repogen.NewPgRepoBuilder[Institution, Filter](idb).
		WithNotFoundCode(CodeInstitutionNotFound).
		WithConflictCode(UniqueNameConstraint, CodeInstitutionExists).
		WithConflictCode(UniqueEmailConstraint, CodeContributorEmailTaken).
		WithConflictCode(FileRecordsFKRef, CodeInstitutionNotEmpty).
		WithFilterFunc(applyFilter).
		Build()
}

func applyFilter(q *bun.SelectQuery, f Filter) *bun.SelectQuery {
	if f.ID != uuid.Nil {
		q = q.Where("ins.id = ?", f.ID)
	}
	if f.Name != "" {
		q = q.Where("ins.name = ?", f.Name)
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
