package institution_test

import (
	"context"
	"testing"

	"github.com/code19m/errx"
	"github.com/geodepot/geodepot/institution"
	"github.com/geodepot/geodepot/repogen"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory institution.Repo used to exercise the service.
type fakeRepo struct {
	rows map[uuid.UUID]institution.Institution
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[uuid.UUID]institution.Institution)}
}

func (f *fakeRepo) match(inst institution.Institution, flt institution.Filter) bool {
	if flt.ID != uuid.Nil && inst.ID != flt.ID {
		return false
	}
	if flt.Name != "" && inst.Name != flt.Name {
		return false
	}
	return true
}

func (f *fakeRepo) Get(_ context.Context, flt institution.Filter) (*institution.Institution, error) {
	for _, inst := range f.rows {
		if f.match(inst, flt) {
			out := inst
			return &out, nil
		}
	}
	return nil, errx.New(
		"no Institution found",
		errx.WithCode(institution.CodeInstitutionNotFound),
		errx.WithType(errx.T_NotFound),
	)
}

func (f *fakeRepo) List(_ context.Context, flt institution.Filter) ([]institution.Institution, error) {
	out := make([]institution.Institution, 0)
	for _, inst := range f.rows {
		if f.match(inst, flt) {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListWithCount(ctx context.Context, flt institution.Filter) ([]institution.Institution, int, error) {
	items, err := f.List(ctx, flt)
	if err != nil {
		return nil, 0, err
	}
	return items, len(items), nil
}

func (f *fakeRepo) Count(ctx context.Context, flt institution.Filter) (int, error) {
	items, err := f.List(ctx, flt)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (f *fakeRepo) FirstOrNil(ctx context.Context, flt institution.Filter) (*institution.Institution, error) {
	items, err := f.List(ctx, flt)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return &items[0], nil
}

func (f *fakeRepo) Exists(ctx context.Context, flt institution.Filter) (bool, error) {
	items, err := f.List(ctx, flt)
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}

func (f *fakeRepo) Create(_ context.Context, inst *institution.Institution) (*institution.Institution, error) {
	for _, existing := range f.rows {
		if existing.Name == inst.Name {
			return nil, errx.New(
				"conflict while creating Institution",
				errx.WithCode(institution.CodeInstitutionExists),
				errx.WithType(errx.T_Conflict),
			)
		}
	}
	if inst.ID == uuid.Nil {
		inst.ID = uuid.New()
	}
	f.rows[inst.ID] = *inst
	return inst, nil
}

func (f *fakeRepo) Update(_ context.Context, inst *institution.Institution) (*institution.Institution, error) {
	if _, ok := f.rows[inst.ID]; !ok {
		return nil, errx.New("no Institution found to update", errx.WithCode(repogen.CodeIncorrectRowsAffection))
	}
	f.rows[inst.ID] = *inst
	return inst, nil
}

func (f *fakeRepo) Delete(_ context.Context, inst *institution.Institution) error {
	if _, ok := f.rows[inst.ID]; !ok {
		return errx.New("no Institution found to delete", errx.WithCode(repogen.CodeIncorrectRowsAffection))
	}
	delete(f.rows, inst.ID)
	return nil
}

func seed(t *testing.T, repo *fakeRepo, name string) uuid.UUID {
	t.Helper()

	inst := &institution.Institution{
		Name:             name,
		Country:          "Kenya",
		Address:          "Ngong Road 12",
		ChapterName:      "Nairobi Chapter",
		ContributorName:  "Amina Odhiambo",
		ContributorEmail: name + "@example.org",
		ContributorPhone: "+254700000000",
	}
	created, err := repo.Create(context.Background(), inst)
	require.NoError(t, err)
	return created.ID
}

func TestServiceCreate(t *testing.T) {
	repo := newFakeRepo()
	svc := institution.NewService(repo)

	created, err := svc.Create(context.Background(), &institution.Institution{
		Name:             "OpenMap Kenya",
		Country:          "Kenya",
		Address:          "Ngong Road 12",
		ChapterName:      "Nairobi Chapter",
		ContributorName:  "Amina Odhiambo",
		ContributorEmail: "amina@example.org",
		ContributorPhone: "+254700000000",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
}

func TestServiceCreateDuplicateName(t *testing.T) {
	repo := newFakeRepo()
	svc := institution.NewService(repo)
	seed(t, repo, "OpenMap Kenya")

	_, err := svc.Create(context.Background(), &institution.Institution{Name: "OpenMap Kenya"})
	require.Error(t, err)

	ex := errx.AsErrorX(err)
	assert.Equal(t, institution.CodeInstitutionExists, ex.Code())
	assert.Equal(t, errx.T_Conflict, ex.Type())
}

func TestServiceGetByID(t *testing.T) {
	repo := newFakeRepo()
	svc := institution.NewService(repo)
	id := seed(t, repo, "OpenMap Kenya")

	inst, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "OpenMap Kenya", inst.Name)

	_, err = svc.GetByID(context.Background(), uuid.New())
	require.Error(t, err)

	ex := errx.AsErrorX(err)
	assert.Equal(t, institution.CodeInstitutionNotFound, ex.Code())
}

func TestServiceUpdatePartial(t *testing.T) {
	repo := newFakeRepo()
	svc := institution.NewService(repo)
	id := seed(t, repo, "OpenMap Kenya")

	country := "Uganda"
	updated, err := svc.Update(context.Background(), id, institution.UpdateParams{Country: &country})
	require.NoError(t, err)

	assert.Equal(t, "Uganda", updated.Country)
	assert.Equal(t, "OpenMap Kenya", updated.Name)
	assert.Equal(t, "Nairobi Chapter", updated.ChapterName)
}

func TestServiceDelete(t *testing.T) {
	repo := newFakeRepo()
	svc := institution.NewService(repo)
	id := seed(t, repo, "OpenMap Kenya")

	require.NoError(t, svc.Delete(context.Background(), id))

	err := svc.Delete(context.Background(), id)
	require.Error(t, err)

	ex := errx.AsErrorX(err)
	assert.Equal(t, institution.CodeInstitutionNotFound, ex.Code())
}

func TestServiceList(t *testing.T) {
	repo := newFakeRepo()
	svc := institution.NewService(repo)
	seed(t, repo, "OpenMap Kenya")
	seed(t, repo, "OpenMap Ghana")

	items, total, err := svc.List(context.Background(), institution.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)
}
