package institution

import (
	"context"

	"github.com/code19m/errx"
	"github.com/google/uuid"
)

// Service provides institution management on top of the repository.
type Service struct {
	repo Repo
}

// NewService creates a new institution service.
func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// Create registers a new institution. The name uniqueness pre-check is a
// fast path; the database constraint stays authoritative.
func (s *Service) Create(ctx context.Context, inst *Institution) (*Institution, error) {
	exists, err := s.repo.Exists(ctx, Filter{Name: inst.Name})
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if exists {
		return nil, errx.New(
			"institution already exists",
			errx.WithCode(CodeInstitutionExists),
			errx.WithType(errx.T_Conflict),
			errx.WithDetails(errx.D{"name": inst.Name}),
		)
	}

	created, err := s.repo.Create(ctx, inst)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return created, nil
}

// GetByID returns the institution with the given id.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Institution, error) {
	inst, err := s.repo.Get(ctx, Filter{ID: id})
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return inst, nil
}

// List returns institutions matching the filter together with the total count.
func (s *Service) List(ctx context.Context, f Filter) ([]Institution, int, error) {
	items, total, err := s.repo.ListWithCount(ctx, f)
	if err != nil {
		return nil, 0, errx.Wrap(err)
	}
	return items, total, nil
}

// UpdateParams carries the fields an update may change. Nil means keep
// the current value.
type UpdateParams struct {
	Name             *string
	Country          *string
	Address          *string
	ChapterName      *string
	OSMMapping       *int
	ContributorName  *string
	ContributorEmail *string
	ContributorPhone *string
	RoleInChapter    *string
}

// Update applies a partial update to the institution with the given id.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Institution, error) {
	inst, err := s.repo.Get(ctx, Filter{ID: id})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	applyParams(inst, params)

	updated, err := s.repo.Update(ctx, inst)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return updated, nil
}

// Delete removes the institution with the given id. Institutions that
// still own file records cannot be deleted; the restricting foreign key
// surfaces as CodeInstitutionNotEmpty.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	inst, err := s.repo.Get(ctx, Filter{ID: id})
	if err != nil {
		return errx.Wrap(err)
	}

	if err := s.repo.Delete(ctx, inst); err != nil {
		return errx.Wrap(err)
	}

	return nil
}

func applyParams(inst *Institution, params UpdateParams) {
	if params.Name != nil {
		inst.Name = *params.Name
	}
	if params.Country != nil {
		inst.Country = *params.Country
	}
	if params.Address != nil {
		inst.Address = *params.Address
	}
	if params.ChapterName != nil {
		inst.ChapterName = *params.ChapterName
	}
	if params.OSMMapping != nil {
		inst.OSMMapping = *params.OSMMapping
	}
	if params.ContributorName != nil {
		inst.ContributorName = *params.ContributorName
	}
	if params.ContributorEmail != nil {
		inst.ContributorEmail = *params.ContributorEmail
	}
	if params.ContributorPhone != nil {
		inst.ContributorPhone = *params.ContributorPhone
	}
	if params.RoleInChapter != nil {
		inst.RoleInChapter = *params.RoleInChapter
	}
}
