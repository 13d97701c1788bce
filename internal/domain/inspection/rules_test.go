package inspection

import (
	"errors"
	"testing"

	"qctrack/internal/errs"
)

func TestNormalizeStation(t *testing.T) {
	got, err := NormalizeStation(" oqa ")
	if err != nil {
		t.Fatalf("NormalizeStation() error = %v", err)
	}
	if got != "OQA" {
		t.Fatalf("NormalizeStation() = %q, want OQA", got)
	}

	if _, err := NormalizeStation(""); !errors.Is(err, ErrStationRequired) {
		t.Fatalf("NormalizeStation(empty) error = %v, want ErrStationRequired", err)
	}
	if _, err := NormalizeStation("OQAX"); !errors.Is(err, ErrInvalidStation) {
		t.Fatalf("NormalizeStation(OQAX) error = %v, want ErrInvalidStation", err)
	}
	if _, err := NormalizeStation("O%"); !errors.Is(err, ErrInvalidStation) {
		t.Fatalf("NormalizeStation(O%%) error = %v, want ErrInvalidStation", err)
	}
	if kind := errs.KindOf(ErrInvalidStation); kind != errs.KindValidation {
		t.Fatalf("KindOf(ErrInvalidStation) = %q, want validation", kind)
	}
}

func TestParseWorkWeek(t *testing.T) {
	for in, want := range map[string]int{"6": 6, "06": 6, " 53 ": 53, "1": 1} {
		got, err := ParseWorkWeek(in)
		if err != nil {
			t.Fatalf("ParseWorkWeek(%q) error = %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseWorkWeek(%q) = %d, want %d", in, got, want)
		}
	}

	for _, in := range []string{"0", "54", "", "w6", "-1", "+6", "6 6", "1e1"} {
		if _, err := ParseWorkWeek(in); !errors.Is(err, ErrInvalidWorkWeek) {
			t.Fatalf("ParseWorkWeek(%q) error = %v, want ErrInvalidWorkWeek", in, err)
		}
	}

	if got := FormatWorkWeek(6); got != "06" {
		t.Fatalf("FormatWorkWeek(6) = %q, want 06", got)
	}
}

func TestNormalizeJudgment(t *testing.T) {
	for in, want := range map[string]string{"accept": JudgmentAccept, "OK": JudgmentAccept, " ng ": JudgmentReject, "REJECT": JudgmentReject} {
		got, err := NormalizeJudgment(in)
		if err != nil {
			t.Fatalf("NormalizeJudgment(%q) error = %v", in, err)
		}
		if got != want {
			t.Fatalf("NormalizeJudgment(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := NormalizeJudgment("maybe"); !errors.Is(err, ErrInvalidJudgment) {
		t.Fatalf("NormalizeJudgment(maybe) error = %v, want ErrInvalidJudgment", err)
	}
}

func TestNormalizeLotNumber(t *testing.T) {
	if _, err := NormalizeLotNumber("   "); !errors.Is(err, ErrLotNumberRequired) {
		t.Fatalf("NormalizeLotNumber(blank) error = %v, want ErrLotNumberRequired", err)
	}
	if got, _ := NormalizeLotNumber(" L100 "); got != "L100" {
		t.Fatalf("NormalizeLotNumber() = %q, want L100", got)
	}
}
