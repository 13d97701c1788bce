package inspection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"qctrack/internal/bootstrap/logging"
	domain "qctrack/internal/domain/inspection"
	"qctrack/internal/errs"
)

// GenerateInspectionNumber returns the next inspection number candidate for station on
// referenceDate in the given work week. It does not reserve the number: two calls with
// no insert in between return the same value.
//
// When the store cannot be read and FallbackOnStoreError is set, a clock-based
// candidate is returned instead of the error. That candidate is not guaranteed unique.
func (s *Service) GenerateInspectionNumber(ctx context.Context, station string, referenceDate time.Time, workWeek string) (string, error) {
	if err := checkContext(ctx); err != nil {
		return "", err
	}
	prefix, err := s.numberPrefix(station, referenceDate, workWeek)
	if err != nil {
		return "", err
	}

	number, err := s.nextNumber(ctx, prefix)
	if err == nil {
		return number, nil
	}
	if !s.opts.FallbackOnStoreError || !errs.IsKind(err, errs.KindStore) {
		return "", err
	}

	fallback := domain.FallbackNumber(prefix, s.opts.Now())
	logging.Warn(ctx, "inspection number store read failed, using fallback",
		slog.String("prefix", prefix),
		slog.String("fallback", fallback),
		slog.Any("error", errs.Loggable(err)),
	)
	return fallback, nil
}

// NextInspectionNumber is GenerateInspectionNumber without the fallback.
func (s *Service) NextInspectionNumber(ctx context.Context, station string, referenceDate time.Time, workWeek string) (string, error) {
	if err := checkContext(ctx); err != nil {
		return "", err
	}
	prefix, err := s.numberPrefix(station, referenceDate, workWeek)
	if err != nil {
		return "", err
	}
	return s.nextNumber(ctx, prefix)
}

// numberPrefix uses the calendar's work week for referenceDate when workWeek is blank.
func (s *Service) numberPrefix(station string, referenceDate time.Time, workWeek string) (string, error) {
	code, err := s.opts.Catalog.Validate(station)
	if err != nil {
		return "", err
	}
	fiscalYear, week := s.opts.Calendar.Placement(referenceDate)
	if strings.TrimSpace(workWeek) != "" {
		week, err = domain.ParseWorkWeek(workWeek)
		if err != nil {
			return "", err
		}
	}
	return domain.NumberPrefix(code, fiscalYear, referenceDate, week), nil
}

func (s *Service) nextNumber(ctx context.Context, prefix string) (string, error) {
	if s.repo == nil {
		return "", fmt.Errorf("inspection repository is required")
	}
	numbers, err := s.repo.ListInspectionNumbersWithPrefix(ctx, prefix)
	if err != nil {
		return "", errs.WrapStore(err, "list inspection numbers")
	}

	counter := domain.NextCounter(numbers)
	if counter > domain.MaxCounter {
		return "", fmt.Errorf("%w: %s", domain.ErrCounterExhausted, prefix)
	}
	return domain.FormatNumber(prefix, counter), nil
}
