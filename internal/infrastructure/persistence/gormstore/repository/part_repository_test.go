package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"qctrack/internal/ports"
)

func TestUpsertPartReportsInsert(t *testing.T) {
	repo := NewPartRepository(openTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	inserted, err := repo.UpsertPart(ctx, ports.Part{PartNumber: "PN-1", Model: "M1", Active: true, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("UpsertPart() error = %v", err)
	}
	if !inserted {
		t.Fatalf("UpsertPart() inserted = false on first call")
	}

	inserted, err = repo.UpsertPart(ctx, ports.Part{PartNumber: "PN-1", Model: "M2", Active: false, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("UpsertPart() error = %v", err)
	}
	if inserted {
		t.Fatalf("UpsertPart() inserted = true on second call")
	}

	got, err := repo.GetPart(ctx, "PN-1")
	if err != nil {
		t.Fatalf("GetPart() error = %v", err)
	}
	if got.Model != "M2" || got.Active {
		t.Fatalf("GetPart() = %+v, want model M2 inactive", got)
	}

	active, err := repo.ListParts(ctx, true)
	if err != nil {
		t.Fatalf("ListParts() error = %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("ListParts(activeOnly) len = %d, want 0", len(active))
	}
}

func TestCreatePartDuplicateAndDelete(t *testing.T) {
	repo := NewPartRepository(openTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := repo.CreatePart(ctx, ports.Part{PartNumber: "PN-2", Active: true, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}
	if _, err := repo.CreatePart(ctx, ports.Part{PartNumber: "PN-2", CreatedAt: now, UpdatedAt: now}); !errors.Is(err, ports.ErrUniquenessConflict) {
		t.Fatalf("CreatePart(duplicate) error = %v, want ErrUniquenessConflict", err)
	}
	if err := repo.DeletePart(ctx, "PN-2"); err != nil {
		t.Fatalf("DeletePart() error = %v", err)
	}
	if _, err := repo.GetPart(ctx, "PN-2"); !errors.Is(err, ports.ErrPartNotFound) {
		t.Fatalf("GetPart() after delete error = %v, want ErrPartNotFound", err)
	}
}
