package defect

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domaindefect "qctrack/internal/domain/defect"
	"qctrack/internal/domain/fiscal"
	domaininspection "qctrack/internal/domain/inspection"
	"qctrack/internal/infrastructure/persistence/gormstore/model"
	gormrepo "qctrack/internal/infrastructure/persistence/gormstore/repository"
	gormuow "qctrack/internal/infrastructure/persistence/gormstore/uow"
	"qctrack/internal/ports"
)

var testNow = time.Date(2025, 8, 10, 9, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, event string, _ any) error {
	p.events = append(p.events, event)
	return nil
}

func setupService(t *testing.T) (*Service, *gormrepo.InspectionRepository, *recordingPublisher) {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "defect.sqlite")), &gorm.Config{TranslateError: true})
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

	inspections := gormrepo.NewInspectionRepository(db)
	events := &recordingPublisher{}
	svc := NewService(gormrepo.NewDefectRepository(db), inspections, gormuow.NewUnitOfWork(db), events, fiscal.Default())
	svc.now = func() time.Time { return testNow }
	return svc, inspections, events
}

func TestRecordDefectPlacesFoundAt(t *testing.T) {
	svc, _, events := setupService(t)
	foundAt := time.Date(2025, 7, 4, 8, 0, 0, 0, time.UTC)

	created, err := svc.RecordDefect(context.Background(), RecordDefectInput{
		Station:        "oqa",
		LotNumber:      "L1",
		DefectCode:     "scr",
		DefectCategory: "cosmetic",
		Qty:            3,
		FoundAt:        &foundAt,
		Attributes:     []byte(`{ "side": "A", "zone": 2 }`),
		UserID:         5,
	})
	if err != nil {
		t.Fatalf("RecordDefect() error = %v", err)
	}
	if created.Station != "OQA" || created.DefectCode != "SCR" || created.DefectCategory != domaindefect.CategoryCosmetic {
		t.Fatalf("RecordDefect() = %+v", created)
	}
	if created.FiscalYear != "2025" || created.WorkWeek != "52" {
		t.Fatalf("placement = %s/%s, want 2025/52", created.FiscalYear, created.WorkWeek)
	}
	if string(created.Attributes) != `{"side":"A","zone":2}` {
		t.Fatalf("Attributes = %s", created.Attributes)
	}
	if len(events.events) != 1 || events.events[0] != ports.EventDefectRecorded {
		t.Fatalf("events = %v", events.events)
	}
}

func TestRecordDefectInheritsFromInspection(t *testing.T) {
	svc, inspections, _ := setupService(t)
	ctx := context.Background()

	inspection, err := inspections.CreateInspection(ctx, ports.InspectionRecord{
		Station:          "OQA",
		InspectionNumber: "OQA260806-100001",
		LotNumber:        "L9",
		ItemNumber:       "ITEM-9",
		MachineLineNo:    "LINE-1",
		FiscalYear:       "2026",
		WorkWeek:         "06",
		Round:            1,
		InspectionDate:   testNow,
		CreatedAt:        testNow,
		UpdatedAt:        testNow,
	})
	if err != nil {
		t.Fatalf("CreateInspection() error = %v", err)
	}

	created, err := svc.RecordDefect(ctx, RecordDefectInput{InspectionID: &inspection.ID, DefectCode: "DNT", Qty: 1})
	if err != nil {
		t.Fatalf("RecordDefect() error = %v", err)
	}
	if created.Station != "OQA" || created.LotNumber != "L9" || created.ItemNumber != "ITEM-9" || created.MachineLineNo != "LINE-1" {
		t.Fatalf("RecordDefect() = %+v", created)
	}
	if created.DefectCategory != domaindefect.CategoryOther {
		t.Fatalf("DefectCategory = %q, want OTHER", created.DefectCategory)
	}

	missing := uint64(404)
	if _, err := svc.RecordDefect(ctx, RecordDefectInput{InspectionID: &missing, DefectCode: "DNT", Qty: 1}); !errors.Is(err, ports.ErrInspectionNotFound) {
		t.Fatalf("RecordDefect(missing inspection) error = %v", err)
	}
}

func TestRecordDefectValidation(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	cases := []struct {
		input RecordDefectInput
		want  error
	}{
		{RecordDefectInput{Station: "OQA", LotNumber: "L1", Qty: 1}, domaindefect.ErrDefectCodeRequired},
		{RecordDefectInput{Station: "OQA", LotNumber: "L1", DefectCode: "X", Qty: 0}, domaindefect.ErrInvalidQty},
		{RecordDefectInput{Station: "OQA", LotNumber: "L1", DefectCode: "X", Qty: 1, DefectCategory: "weird"}, domaindefect.ErrInvalidCategory},
		{RecordDefectInput{Station: "OQA", LotNumber: "L1", DefectCode: "X", Qty: 1, Attributes: []byte(`[1,2]`)}, domaindefect.ErrInvalidAttributes},
		{RecordDefectInput{LotNumber: "L1", DefectCode: "X", Qty: 1}, domaininspection.ErrStationRequired},
		{RecordDefectInput{Station: "OQA", DefectCode: "X", Qty: 1}, domaininspection.ErrLotNumberRequired},
	}
	for _, tc := range cases {
		if _, err := svc.RecordDefect(ctx, tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("RecordDefect(%+v) error = %v, want %v", tc.input, err, tc.want)
		}
	}
}

func TestUpdateListAndDeleteDefect(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.RecordDefect(ctx, RecordDefectInput{Station: "OQA", LotNumber: "L1", DefectCode: "SCR", Qty: 2})
	if err != nil {
		t.Fatalf("RecordDefect() error = %v", err)
	}

	qty := 4
	category := "functional"
	updated, err := svc.UpdateDefect(ctx, created.ID, UpdateDefectInput{Qty: &qty, DefectCategory: &category}, 8)
	if err != nil {
		t.Fatalf("UpdateDefect() error = %v", err)
	}
	if updated.Qty != 4 || updated.DefectCategory != domaindefect.CategoryFunctional || updated.UpdatedBy != 8 {
		t.Fatalf("UpdateDefect() = %+v", updated)
	}

	zero := 0
	if _, err := svc.UpdateDefect(ctx, created.ID, UpdateDefectInput{Qty: &zero}, 8); !errors.Is(err, domaindefect.ErrInvalidQty) {
		t.Fatalf("UpdateDefect(qty 0) error = %v", err)
	}

	items, err := svc.ListDefects(ctx, ports.DefectFilter{Station: "oqa", DefectCode: "scr", WorkWeek: "6"})
	if err != nil {
		t.Fatalf("ListDefects() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("ListDefects() len = %d, want 1", len(items))
	}

	if err := svc.DeleteDefect(ctx, created.ID); err != nil {
		t.Fatalf("DeleteDefect() error = %v", err)
	}
	if _, err := svc.GetDefect(ctx, created.ID); !errors.Is(err, ports.ErrDefectNotFound) {
		t.Fatalf("GetDefect() after delete error = %v", err)
	}
}
