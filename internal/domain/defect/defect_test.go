package defect

import (
	"errors"
	"testing"
)

func TestNormalizeCategory(t *testing.T) {
	got, err := NormalizeCategory(" cosmetic ")
	if err != nil || got != CategoryCosmetic {
		t.Fatalf("NormalizeCategory() = (%q, %v), want COSMETIC", got, err)
	}
	if got, _ := NormalizeCategory(""); got != CategoryOther {
		t.Fatalf("NormalizeCategory(empty) = %q, want OTHER", got)
	}
	if _, err := NormalizeCategory("smell"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("NormalizeCategory(smell) error = %v, want ErrInvalidCategory", err)
	}
}

func TestNormalizeCodeAndQty(t *testing.T) {
	if got, _ := NormalizeCode(" scr-01 "); got != "SCR-01" {
		t.Fatalf("NormalizeCode() = %q, want SCR-01", got)
	}
	if _, err := NormalizeCode(""); !errors.Is(err, ErrDefectCodeRequired) {
		t.Fatalf("NormalizeCode(empty) error = %v", err)
	}
	if err := ValidateQty(0); !errors.Is(err, ErrInvalidQty) {
		t.Fatalf("ValidateQty(0) error = %v, want ErrInvalidQty", err)
	}
	if err := ValidateQty(3); err != nil {
		t.Fatalf("ValidateQty(3) error = %v", err)
	}
}
