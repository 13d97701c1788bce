package inspection

import (
	"context"
	"errors"
	"fmt"
	"testing"

	domain "qctrack/internal/domain/inspection"
	"qctrack/internal/errs"
)

func TestGetNextSamplingRoundNewPair(t *testing.T) {
	env := setupService(t)

	got, err := env.svc.GetNextSamplingRound(context.Background(), "OQA", "L100")
	if err != nil {
		t.Fatalf("GetNextSamplingRound() error = %v", err)
	}
	if got != 1 {
		t.Fatalf("GetNextSamplingRound() = %d, want 1", got)
	}
}

func TestGetNextSamplingRoundAfterGaps(t *testing.T) {
	env := setupService(t)
	env.seed(t, "OQA", "OQA260806-100001", "L100", 1)
	env.seed(t, "OQA", "OQA260806-100002", "L100", 2)
	env.seed(t, "OQA", "OQA260806-100003", "L100", 5)
	env.seed(t, "OQA", "OQA260806-100004", "L200", 9)
	env.seed(t, "SIV", "SIV260806-100001", "L100", 7)

	got, err := env.svc.GetNextSamplingRound(context.Background(), "OQA", "L100")
	if err != nil {
		t.Fatalf("GetNextSamplingRound() error = %v", err)
	}
	if got != 6 {
		t.Fatalf("GetNextSamplingRound() = %d, want 6", got)
	}
}

func TestGetNextSamplingRoundValidation(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	if _, err := env.svc.GetNextSamplingRound(ctx, "", "L100"); !errors.Is(err, domain.ErrStationRequired) {
		t.Fatalf("GetNextSamplingRound(no station) error = %v", err)
	}
	if _, err := env.svc.GetNextSamplingRound(ctx, "OQA", "  "); !errors.Is(err, domain.ErrLotNumberRequired) {
		t.Fatalf("GetNextSamplingRound(no lot) error = %v", err)
	}
}

func TestGetNextSamplingRoundRejectsUnknownStationWithStrictCatalog(t *testing.T) {
	env := setupService(t)
	catalog, err := ParseStationCatalog([]byte("[[stations]]\ncode = \"OQA\"\nderives_to = \"SIV\"\n\n[[stations]]\ncode = \"SIV\"\n"))
	if err != nil {
		t.Fatalf("ParseStationCatalog() error = %v", err)
	}
	opts := testOptions()
	opts.Catalog = catalog
	svc := NewService(env.repo, env.uow, nil, opts)
	ctx := context.Background()

	if _, err := svc.GetNextSamplingRound(ctx, "IQC", "L1"); !errors.Is(err, domain.ErrUnknownStation) {
		t.Fatalf("GetNextSamplingRound(IQC) error = %v, want ErrUnknownStation", err)
	}
	got, err := svc.GetNextSamplingRound(ctx, "siv", "L1")
	if err != nil || got != 1 {
		t.Fatalf("GetNextSamplingRound(siv) = %d, %v; want 1, nil", got, err)
	}
}

func TestGetNextSamplingRoundStoreError(t *testing.T) {
	env := setupService(t)
	repo := &faultyRepo{InspectionRepository: env.repo, maxRoundErr: fmt.Errorf("connection refused")}
	svc := NewService(repo, env.uow, nil, testOptions())
	ctx := context.Background()

	got, err := svc.GetNextSamplingRound(ctx, "OQA", "L100")
	if err != nil || got != 0 {
		t.Fatalf("GetNextSamplingRound() = %d, %v; want 0, nil", got, err)
	}

	if _, err := svc.NextSamplingRound(ctx, "OQA", "L100"); !errs.IsKind(err, errs.KindStore) {
		t.Fatalf("NextSamplingRound() error = %v, want store kind", err)
	}
}
