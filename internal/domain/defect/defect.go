package defect

import (
	"errors"
	"fmt"
	"strings"

	"qctrack/internal/errs"
)

const (
	CategoryCosmetic    = "COSMETIC"
	CategoryFunctional  = "FUNCTIONAL"
	CategoryDimensional = "DIMENSIONAL"
	CategoryPackaging   = "PACKAGING"
	CategoryOther       = "OTHER"
)

var (
	ErrDefectCodeRequired = errs.WithKind(errors.New("defect code is required"), errs.KindValidation)
	ErrInvalidCategory    = errs.WithKind(errors.New("invalid defect category"), errs.KindValidation)
	ErrInvalidQty         = errs.WithKind(errors.New("defect qty must be greater than zero"), errs.KindValidation)
	ErrInvalidAttributes  = errs.WithKind(errors.New("defect attributes must be a JSON object"), errs.KindValidation)
)

var categories = []string{CategoryCosmetic, CategoryFunctional, CategoryDimensional, CategoryPackaging, CategoryOther}

// NormalizeCategory defaults an empty category to OTHER.
func NormalizeCategory(category string) (string, error) {
	value := strings.ToUpper(strings.TrimSpace(category))
	if value == "" {
		return CategoryOther, nil
	}
	for _, known := range categories {
		if value == known {
			return value, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, category)
}

func NormalizeCode(code string) (string, error) {
	value := strings.ToUpper(strings.TrimSpace(code))
	if value == "" {
		return "", ErrDefectCodeRequired
	}
	return value, nil
}

func ValidateQty(qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQty, qty)
	}
	return nil
}

func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}
