package inspection

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	MaxStationLength = 3

	JudgmentAccept = "ACCEPT"
	JudgmentReject = "REJECT"
)

// NormalizeStation trims and upper-cases a station code and checks its shape.
func NormalizeStation(station string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(station))
	if code == "" {
		return "", ErrStationRequired
	}
	if len(code) > MaxStationLength {
		return "", fmt.Errorf("%w: %q longer than %d characters", ErrInvalidStation, station, MaxStationLength)
	}
	for _, ch := range code {
		if (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') {
			return "", fmt.Errorf("%w: %q", ErrInvalidStation, station)
		}
	}
	return code, nil
}

func ParseWorkWeek(workWeek string) (int, error) {
	raw := strings.TrimSpace(workWeek)
	if raw == "" || strings.Trim(raw, "0123456789") != "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWorkWeek, workWeek)
	}
	week, err := strconv.Atoi(raw)
	if err != nil || week < 1 || week > 53 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWorkWeek, workWeek)
	}
	return week, nil
}

func FormatWorkWeek(week int) string {
	return fmt.Sprintf("%02d", week)
}

func FormatFiscalYear(year int) string {
	return strconv.Itoa(year)
}

func NormalizeLotNumber(lotNumber string) (string, error) {
	lot := strings.TrimSpace(lotNumber)
	if lot == "" {
		return "", ErrLotNumberRequired
	}
	return lot, nil
}

func NormalizeJudgment(judgment string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(judgment)) {
	case JudgmentAccept, "OK", "PASS":
		return JudgmentAccept, nil
	case JudgmentReject, "NG", "FAIL":
		return JudgmentReject, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidJudgment, judgment)
	}
}
