package httpapi_test

import (
	"context"
	"maps"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/geodepot/geodepot/blobstore"
	"github.com/geodepot/geodepot/blobstore/diskstore"
	"github.com/geodepot/geodepot/http/server"
	"github.com/geodepot/geodepot/http/server/middleware"
	"github.com/geodepot/geodepot/httpapi"
	"github.com/geodepot/geodepot/institution"
	"github.com/geodepot/geodepot/intake"
	"github.com/geodepot/geodepot/observability/logger"
	"github.com/geodepot/geodepot/record"
	"github.com/geodepot/geodepot/repogen"
	"github.com/geodepot/geodepot/sorter"
)

const testBaseURL = "https://files.geodepot.example"

// fixture wires the real handler, services and middleware chain over
// in-memory repositories and an on-disk blob store. Requests are
// driven through app.Test, so every assertion covers the same path a
// production request takes.
type fixture struct {
	app          *fiber.App
	records      *fakeRecords
	institutions *fakeInstitutions
	store        blobstore.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	records := newFakeRecords()
	insts := newFakeInstitutions(records)
	store, err := diskstore.New(diskstore.Config{RootDir: t.TempDir()})
	require.NoError(t, err)
	nopLog, err := logger.New(logger.Config{Disable: true})
	require.NoError(t, err)

	intakeSvc := intake.NewService(
		intake.Config{MaxParallelUploads: 4, EventsTopic: "geodepot.file-events"},
		nopLog, records, insts, store, &fakeUOW{records: records},
	)
	instSvc := institution.NewService(insts)

	handler := httpapi.NewHandler(
		httpapi.Config{PublicBaseURL: testBaseURL},
		intakeSvc, instSvc, records,
	)

	srv := server.NewHTTPServer(
		server.Config{
			Host:          "127.0.0.1",
			Port:          0,
			ReadTimeout:   5 * time.Second,
			WriteTimeout:  5 * time.Second,
			IdleTimeout:   30 * time.Second,
			HandleTimeout: 5 * time.Second,
			BodyLimit:     16 << 20,
		},
		[]server.Middleware{
			middleware.NewRecoveryMW(nopLog),
			middleware.NewTracingMW(),
			middleware.NewTimeoutMW(5 * time.Second),
			middleware.NewMetaInjectMW("geodepot", "test"),
			middleware.NewAlertingMW(),
			middleware.NewLoggerMW(nopLog),
			middleware.NewErrorHandlerMW(false),
		},
	)
	srv.RegisterRouter(handler.RegisterRoutes)

	return &fixture{
		app:          srv.App(),
		records:      records,
		institutions: insts,
		store:        store,
	}
}

// ---- record repository fake ----

type fakeRecords struct {
	mu   sync.Mutex
	rows map[uuid.UUID]record.FileRecord
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{rows: map[uuid.UUID]record.FileRecord{}}
}

func recordMatches(rec record.FileRecord, f record.Filter) bool {
	if f.ID != uuid.Nil && rec.ID != f.ID {
		return false
	}
	if f.InstitutionID != uuid.Nil && rec.InstitutionID != f.InstitutionID {
		return false
	}
	if f.Kind != "" && rec.Kind != f.Kind {
		return false
	}
	if f.Name != "" && rec.Name != f.Name {
		return false
	}
	return true
}

func sortRecords(recs []record.FileRecord, opts sorter.SortOpts) {
	sort.SliceStable(recs, func(i, j int) bool {
		for _, opt := range opts {
			var less, eq bool
			switch opt.Field {
			case "name":
				less, eq = recs[i].Name < recs[j].Name, recs[i].Name == recs[j].Name
			case "size":
				less, eq = recs[i].Size < recs[j].Size, recs[i].Size == recs[j].Size
			case "created_at":
				less, eq = recs[i].CreatedAt.Before(recs[j].CreatedAt), recs[i].CreatedAt.Equal(recs[j].CreatedAt)
			case "updated_at":
				less, eq = recs[i].UpdatedAt.Before(recs[j].UpdatedAt), recs[i].UpdatedAt.Equal(recs[j].UpdatedAt)
			default:
				continue
			}
			if eq {
				continue
			}
			if opt.Dir == sorter.Desc {
				return !less
			}
			return less
		}
		return recs[i].Name < recs[j].Name
	})
}

func pageOf[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func (f *fakeRecords) matching(flt record.Filter) []record.FileRecord {
	out := make([]record.FileRecord, 0, len(f.rows))
	for _, rec := range f.rows {
		if recordMatches(rec, flt) {
			out = append(out, rec)
		}
	}
	sortRecords(out, flt.Sort)
	return out
}

func (f *fakeRecords) Get(_ context.Context, flt record.Filter) (*record.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	found := f.matching(flt)
	switch len(found) {
	case 0:
		return nil, errx.New("no FileRecord found",
			errx.WithCode(record.CodeFileNotFound), errx.WithType(errx.T_NotFound))
	case 1:
		rec := found[0]
		return &rec, nil
	default:
		return nil, errx.New("multiple FileRecord rows found",
			errx.WithCode(repogen.CodeMultipleRowsFound), errx.WithType(errx.T_Conflict))
	}
}

func (f *fakeRecords) List(_ context.Context, flt record.Filter) ([]record.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.matching(flt)
	return pageOf(all, flt.Limit, flt.Offset), nil
}

func (f *fakeRecords) ListWithCount(_ context.Context, flt record.Filter) ([]record.FileRecord, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.matching(flt)
	return pageOf(all, flt.Limit, flt.Offset), len(all), nil
}

func (f *fakeRecords) Count(_ context.Context, flt record.Filter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.matching(flt)), nil
}

func (f *fakeRecords) FirstOrNil(_ context.Context, flt record.Filter) (*record.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	found := f.matching(flt)
	if len(found) == 0 {
		return nil, nil
	}
	rec := found[0]
	return &rec, nil
}

func (f *fakeRecords) Exists(_ context.Context, flt record.Filter) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.matching(flt)) > 0, nil
}

func (f *fakeRecords) Create(_ context.Context, rec *record.FileRecord) (*record.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.InstitutionID == rec.InstitutionID && row.Kind == rec.Kind && row.Name == rec.Name {
			return nil, errx.New("conflict while creating FileRecord",
				errx.WithCode(record.CodeDuplicateFile), errx.WithType(errx.T_Conflict))
		}
	}

	stored := *rec
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	f.rows[stored.ID] = stored
	out := stored
	return &out, nil
}

func (f *fakeRecords) Update(_ context.Context, rec *record.FileRecord) (*record.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.rows[rec.ID]; !ok {
		return nil, errx.New("no rows affected",
			errx.WithCode(repogen.CodeIncorrectRowsAffection))
	}

	stored := *rec
	stored.UpdatedAt = time.Now().UTC()
	f.rows[stored.ID] = stored
	out := stored
	return &out, nil
}

func (f *fakeRecords) Delete(_ context.Context, rec *record.FileRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.rows[rec.ID]; !ok {
		return errx.New("no rows affected",
			errx.WithCode(repogen.CodeIncorrectRowsAffection))
	}
	delete(f.rows, rec.ID)
	return nil
}

func (f *fakeRecords) insert(t *testing.T, rec record.FileRecord) record.FileRecord {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
		rec.UpdatedAt = rec.CreatedAt
	}
	f.rows[rec.ID] = rec
	return rec
}

func (f *fakeRecords) snapshot() map[uuid.UUID]record.FileRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return maps.Clone(f.rows)
}

func (f *fakeRecords) restore(rows map[uuid.UUID]record.FileRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = rows
}

// ---- institution repository fake ----

// fakeInstitutions keeps a reference to the record fake so deletes can
// enforce the restricting foreign key the real schema carries.
type fakeInstitutions struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]institution.Institution
	records *fakeRecords
}

func newFakeInstitutions(records *fakeRecords) *fakeInstitutions {
	return &fakeInstitutions{
		rows:    map[uuid.UUID]institution.Institution{},
		records: records,
	}
}

func institutionMatches(inst institution.Institution, f institution.Filter) bool {
	if f.ID != uuid.Nil && inst.ID != f.ID {
		return false
	}
	if f.Name != "" && inst.Name != f.Name {
		return false
	}
	return true
}

func sortInstitutions(insts []institution.Institution, opts sorter.SortOpts) {
	sort.SliceStable(insts, func(i, j int) bool {
		for _, opt := range opts {
			var less, eq bool
			switch opt.Field {
			case "name":
				less, eq = insts[i].Name < insts[j].Name, insts[i].Name == insts[j].Name
			case "country":
				less, eq = insts[i].Country < insts[j].Country, insts[i].Country == insts[j].Country
			case "created_at":
				less, eq = insts[i].CreatedAt.Before(insts[j].CreatedAt), insts[i].CreatedAt.Equal(insts[j].CreatedAt)
			default:
				continue
			}
			if eq {
				continue
			}
			if opt.Dir == sorter.Desc {
				return !less
			}
			return less
		}
		return insts[i].Name < insts[j].Name
	})
}

func (f *fakeInstitutions) matching(flt institution.Filter) []institution.Institution {
	out := make([]institution.Institution, 0, len(f.rows))
	for _, inst := range f.rows {
		if institutionMatches(inst, flt) {
			out = append(out, inst)
		}
	}
	sortInstitutions(out, flt.Sort)
	return out
}

func (f *fakeInstitutions) Get(_ context.Context, flt institution.Filter) (*institution.Institution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	found := f.matching(flt)
	switch len(found) {
	case 0:
		return nil, errx.New("no Institution found",
			errx.WithCode(institution.CodeInstitutionNotFound), errx.WithType(errx.T_NotFound))
	case 1:
		inst := found[0]
		return &inst, nil
	default:
		return nil, errx.New("multiple Institution rows found",
			errx.WithCode(repogen.CodeMultipleRowsFound), errx.WithType(errx.T_Conflict))
	}
}

func (f *fakeInstitutions) List(_ context.Context, flt institution.Filter) ([]institution.Institution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.matching(flt)
	return pageOf(all, flt.Limit, flt.Offset), nil
}

func (f *fakeInstitutions) ListWithCount(_ context.Context, flt institution.Filter) ([]institution.Institution, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.matching(flt)
	return pageOf(all, flt.Limit, flt.Offset), len(all), nil
}

func (f *fakeInstitutions) Count(_ context.Context, flt institution.Filter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.matching(flt)), nil
}

func (f *fakeInstitutions) FirstOrNil(_ context.Context, flt institution.Filter) (*institution.Institution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	found := f.matching(flt)
	if len(found) == 0 {
		return nil, nil
	}
	inst := found[0]
	return &inst, nil
}

func (f *fakeInstitutions) Exists(_ context.Context, flt institution.Filter) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.matching(flt)) > 0, nil
}

func (f *fakeInstitutions) Create(_ context.Context, inst *institution.Institution) (*institution.Institution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.Name == inst.Name {
			return nil, errx.New("conflict while creating Institution",
				errx.WithCode(institution.CodeInstitutionExists), errx.WithType(errx.T_Conflict))
		}
		if row.ContributorEmail == inst.ContributorEmail {
			return nil, errx.New("conflict while creating Institution",
				errx.WithCode(institution.CodeContributorEmailTaken), errx.WithType(errx.T_Conflict))
		}
	}

	stored := *inst
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	f.rows[stored.ID] = stored
	out := stored
	return &out, nil
}

func (f *fakeInstitutions) Update(_ context.Context, inst *institution.Institution) (*institution.Institution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.rows[inst.ID]; !ok {
		return nil, errx.New("no rows affected",
			errx.WithCode(repogen.CodeIncorrectRowsAffection))
	}

	stored := *inst
	stored.UpdatedAt = time.Now().UTC()
	f.rows[stored.ID] = stored
	out := stored
	return &out, nil
}

func (f *fakeInstitutions) Delete(_ context.Context, inst *institution.Institution) error {
	owned, err := f.records.Count(context.Background(), record.Filter{InstitutionID: inst.ID})
	if err != nil {
		return err
	}
	if owned > 0 {
		return errx.New("institution still owns file records",
			errx.WithCode(institution.CodeInstitutionNotEmpty), errx.WithType(errx.T_Conflict))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[inst.ID]; !ok {
		return errx.New("no rows affected",
			errx.WithCode(repogen.CodeIncorrectRowsAffection))
	}
	delete(f.rows, inst.ID)
	return nil
}

func (f *fakeInstitutions) insert(t *testing.T, inst institution.Institution) institution.Institution {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	if inst.ID == uuid.Nil {
		inst.ID = uuid.New()
	}
	if inst.CreatedAt.IsZero() {
		inst.CreatedAt = time.Now().UTC()
		inst.UpdatedAt = inst.CreatedAt
	}
	f.rows[inst.ID] = inst
	return inst
}

// ---- unit of work fake ----

type fakeUOW struct {
	records *fakeRecords
	txMu    sync.Mutex
}

func (u *fakeUOW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx intake.Tx) error) error {
	u.txMu.Lock()
	defer u.txMu.Unlock()

	before := u.records.snapshot()
	if err := fn(ctx, &fakeTx{uow: u}); err != nil {
		u.records.restore(before)
		return err
	}
	return nil
}

type fakeTx struct {
	uow *fakeUOW
}

func (t *fakeTx) Records() record.Repo { return t.uow.records }

func (t *fakeTx) PublishEvent(context.Context, string, string, any) error { return nil }
