package part

import (
	"errors"
	"fmt"
	"strings"

	"qctrack/internal/errs"
)

const MaxPartNumberLength = 64

var (
	ErrPartNumberRequired = errs.WithKind(errors.New("part number is required"), errs.KindValidation)
	ErrInvalidPartNumber  = errs.WithKind(errors.New("invalid part number"), errs.KindValidation)
)

// NormalizePartNumber trims the part number and rejects blanks, inner whitespace and
// values longer than the column.
func NormalizePartNumber(partNumber string) (string, error) {
	value := strings.TrimSpace(partNumber)
	if value == "" {
		return "", ErrPartNumberRequired
	}
	if len(value) > MaxPartNumberLength || strings.ContainsAny(value, " \t\r\n") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPartNumber, partNumber)
	}
	return value, nil
}
