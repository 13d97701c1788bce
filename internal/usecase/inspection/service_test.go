package inspection

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"qctrack/internal/domain/fiscal"
	"qctrack/internal/infrastructure/persistence/gormstore/model"
	gormrepo "qctrack/internal/infrastructure/persistence/gormstore/repository"
	gormuow "qctrack/internal/infrastructure/persistence/gormstore/uow"
	"qctrack/internal/ports"
)

var testNow = time.Date(2025, 8, 10, 9, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, event string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type testEnv struct {
	svc    *Service
	repo   *gormrepo.InspectionRepository
	uow    *gormuow.UnitOfWork
	events *recordingPublisher
	db     *gorm.DB
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "inspection.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func testOptions() Options {
	return Options{
		Calendar:             fiscal.Default(),
		DerivedStation:       "SIV",
		FallbackOnStoreError: true,
		MaxAttempts:          3,
		Now:                  func() time.Time { return testNow },
	}
}

func setupService(t *testing.T) *testEnv {
	t.Helper()

	db := openTestDB(t)
	env := &testEnv{
		repo:   gormrepo.NewInspectionRepository(db),
		uow:    gormuow.NewUnitOfWork(db),
		events: &recordingPublisher{},
		db:     db,
	}
	env.svc = NewService(env.repo, env.uow, env.events, testOptions())
	return env
}

// seed inserts a record directly, bypassing number and round computation.
func (e *testEnv) seed(t *testing.T, station, number, lot string, round int) ports.InspectionRecord {
	t.Helper()

	record, err := e.repo.CreateInspection(context.Background(), ports.InspectionRecord{
		Station:          station,
		InspectionNumber: number,
		LotNumber:        lot,
		FiscalYear:       "2026",
		WorkWeek:         "06",
		Round:            round,
		InspectionDate:   testNow,
		CreatedAt:        testNow,
		UpdatedAt:        testNow,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", number, err)
	}
	return record
}

func (e *testEnv) count(t *testing.T) int64 {
	t.Helper()

	var n int64
	if err := e.db.Model(&model.InspectionRecord{}).Count(&n).Error; err != nil {
		t.Fatalf("count records: %v", err)
	}
	return n
}

// faultyRepo wraps a repository and fails selected calls.
type faultyRepo struct {
	ports.InspectionRepository

	listErr      error
	maxRoundErr  error
	createErrs   []error
	createCalls  int
	createFailed int
}

func (r *faultyRepo) ListInspectionNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.InspectionRepository.ListInspectionNumbersWithPrefix(ctx, prefix)
}

func (r *faultyRepo) MaxSamplingRound(ctx context.Context, station string, lotNumber string) (int, error) {
	if r.maxRoundErr != nil {
		return 0, r.maxRoundErr
	}
	return r.InspectionRepository.MaxSamplingRound(ctx, station, lotNumber)
}

func (r *faultyRepo) CreateInspection(ctx context.Context, record ports.InspectionRecord) (ports.InspectionRecord, error) {
	r.createCalls++
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			r.createFailed++
			return ports.InspectionRecord{}, err
		}
	}
	return r.InspectionRepository.CreateInspection(ctx, record)
}

func TestNewServiceDefaults(t *testing.T) {
	svc := NewService(nil, nil, nil, Options{})
	if svc.opts.MaxAttempts != defaultMaxAttempts {
		t.Fatalf("MaxAttempts = %d, want %d", svc.opts.MaxAttempts, defaultMaxAttempts)
	}
	if svc.opts.DerivedStation != "SIV" {
		t.Fatalf("DerivedStation = %q, want SIV", svc.opts.DerivedStation)
	}
	if svc.opts.Catalog == nil || svc.opts.Now == nil {
		t.Fatalf("catalog and clock must default")
	}
}

func TestGetInspectionByNumber(t *testing.T) {
	env := setupService(t)
	env.seed(t, "OQA", "OQA260806-100001", "L1", 1)

	got, err := env.svc.GetInspectionByNumber(context.Background(), "OQA260806-100001")
	if err != nil {
		t.Fatalf("GetInspectionByNumber() error = %v", err)
	}
	if got.LotNumber != "L1" {
		t.Fatalf("GetInspectionByNumber() lot = %q", got.LotNumber)
	}

	if _, err := env.svc.GetInspection(context.Background(), 999); !errors.Is(err, ports.ErrInspectionNotFound) {
		t.Fatalf("GetInspection(999) error = %v, want ErrInspectionNotFound", err)
	}
}

func TestListInspectionsNormalizesFilter(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	env.seed(t, "OQA", "OQA260806-100001", "L1", 1)
	second := env.seed(t, "OQA", "OQA260806-100002", "L1", 2)

	if _, err := env.svc.JudgeInspection(ctx, second.ID, "ng", 1); err != nil {
		t.Fatalf("JudgeInspection() error = %v", err)
	}

	items, err := env.svc.ListInspections(ctx, ports.InspectionFilter{Station: "oqa", WorkWeek: "6", Judgment: "fail"})
	if err != nil {
		t.Fatalf("ListInspections() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != second.ID {
		t.Fatalf("ListInspections(REJECT) = %+v", items)
	}

	items, err = env.svc.ListInspections(ctx, ports.InspectionFilter{Judgment: "pending"})
	if err != nil {
		t.Fatalf("ListInspections(PENDING) error = %v", err)
	}
	if len(items) != 1 || items[0].InspectionNumber != "OQA260806-100001" {
		t.Fatalf("ListInspections(PENDING) = %+v", items)
	}

	if _, err := env.svc.ListInspections(ctx, ports.InspectionFilter{Judgment: "maybe"}); err == nil {
		t.Fatalf("ListInspections(maybe) expected error")
	}
}
