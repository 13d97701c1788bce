package part

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domainpart "qctrack/internal/domain/part"
	"qctrack/internal/infrastructure/persistence/gormstore/model"
	gormrepo "qctrack/internal/infrastructure/persistence/gormstore/repository"
	gormuow "qctrack/internal/infrastructure/persistence/gormstore/uow"
	"qctrack/internal/ports"
)

func setupService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "parts.sqlite")), &gorm.Config{TranslateError: true})
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
	return NewService(gormrepo.NewPartRepository(db), gormuow.NewUnitOfWork(db))
}

func TestCreateGetUpdateDeletePart(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.CreatePart(ctx, CreatePartInput{PartNumber: " PN-1 ", Model: "MX"})
	if err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}
	if created.PartNumber != "PN-1" || !created.Active {
		t.Fatalf("CreatePart() = %+v", created)
	}

	if _, err := svc.CreatePart(ctx, CreatePartInput{PartNumber: "PN-1"}); !errors.Is(err, ports.ErrUniquenessConflict) {
		t.Fatalf("CreatePart(duplicate) error = %v", err)
	}
	if _, err := svc.CreatePart(ctx, CreatePartInput{}); !errors.Is(err, domainpart.ErrPartNumberRequired) {
		t.Fatalf("CreatePart(blank) error = %v", err)
	}

	inactive := false
	version := " C "
	updated, err := svc.UpdatePart(ctx, "PN-1", UpdatePartInput{Active: &inactive, Version: &version})
	if err != nil {
		t.Fatalf("UpdatePart() error = %v", err)
	}
	if updated.Active || updated.Version != "C" || updated.Model != "MX" {
		t.Fatalf("UpdatePart() = %+v", updated)
	}

	if _, err := svc.UpdatePart(ctx, "PN-404", UpdatePartInput{Active: &inactive}); !errors.Is(err, ports.ErrPartNotFound) {
		t.Fatalf("UpdatePart(missing) error = %v", err)
	}

	if err := svc.DeletePart(ctx, "PN-1"); err != nil {
		t.Fatalf("DeletePart() error = %v", err)
	}
	if _, err := svc.GetPart(ctx, "PN-1"); !errors.Is(err, ports.ErrPartNotFound) {
		t.Fatalf("GetPart() after delete error = %v", err)
	}
}

func TestImportParts(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if _, err := svc.CreatePart(ctx, CreatePartInput{PartNumber: "PN-1", Model: "OLD"}); err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}

	doc := `
parts:
  - part_number: PN-1
    model: NEW
  - part_number: PN-2
    description: bracket
    part_site: P2
  - part_number: PN-3
    active: false
`
	result, err := svc.ImportParts(ctx, strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ImportParts() error = %v", err)
	}
	if result.Inserted != 2 || result.Updated != 1 {
		t.Fatalf("ImportParts() = %+v, want 2 inserted 1 updated", result)
	}

	pn1, err := svc.GetPart(ctx, "PN-1")
	if err != nil {
		t.Fatalf("GetPart() error = %v", err)
	}
	if pn1.Model != "NEW" {
		t.Fatalf("PN-1 model = %q, want NEW", pn1.Model)
	}

	active, err := svc.ListParts(ctx, true)
	if err != nil {
		t.Fatalf("ListParts() error = %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("ListParts(active) len = %d, want 2", len(active))
	}
}

func TestImportPartsRejectsBadDocument(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	for _, doc := range []string{
		"",
		"parts:\n  - part_number: PN-1\n    colour: red\n",
		"parts:\n  - part_number: PN-1\n  - description: no number\n",
	} {
		if _, err := svc.ImportParts(ctx, strings.NewReader(doc)); err == nil {
			t.Fatalf("ImportParts(%q) expected error", doc)
		}
	}

	parts, err := svc.ListParts(ctx, false)
	if err != nil {
		t.Fatalf("ListParts() error = %v", err)
	}
	if len(parts) != 0 {
		t.Fatalf("ListParts() after failed imports = %d, want 0 (import is atomic)", len(parts))
	}
}
