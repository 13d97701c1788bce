package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"qctrack/internal/bootstrap/logging"
	domaininspection "qctrack/internal/domain/inspection"
	"qctrack/internal/errs"
	"qctrack/internal/ports"
)

const (
	NameLAR         = "lar"
	NameDefectTrend = "defect-trend"
)

var (
	ErrUnknownReport     = errs.WithKind(errors.New("unknown report"), errs.KindValidation)
	ErrInvalidFiscalYear = errs.WithKind(errors.New("fiscal year must be a four digit year"), errs.KindValidation)
	ErrInvalidWeekRange  = errs.WithKind(errors.New("from week must not be after to week"), errs.KindValidation)

	ErrWeekRangeNeedsFiscalYear = errs.WithKind(errors.New("a work week range needs a fiscal year"), errs.KindValidation)
)

// Service computes LAR and defect-trend reports. Results are cached for ttl; new
// inspections or defects show up once the entry expires.
type Service struct {
	repo  ports.ReportRepository
	cache ports.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewService(repo ports.ReportRepository, cache ports.Cache, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl, now: time.Now}
}

// NormalizeFilter upper-cases the station and pads work weeks to two digits. A week
// range is only meaningful inside one fiscal year, so it requires FiscalYear.
func NormalizeFilter(filter ports.ReportFilter) (ports.ReportFilter, error) {
	out := ports.ReportFilter{}
	if station := strings.TrimSpace(filter.Station); station != "" {
		code, err := domaininspection.NormalizeStation(station)
		if err != nil {
			return ports.ReportFilter{}, err
		}
		out.Station = code
	}
	if fy := strings.TrimSpace(filter.FiscalYear); fy != "" {
		year, err := strconv.Atoi(fy)
		if err != nil || year < 1000 || year > 9999 {
			return ports.ReportFilter{}, fmt.Errorf("%w: %q", ErrInvalidFiscalYear, filter.FiscalYear)
		}
		out.FiscalYear = domaininspection.FormatFiscalYear(year)
	}
	for _, w := range []struct {
		in  string
		out *string
	}{{filter.FromWeek, &out.FromWeek}, {filter.ToWeek, &out.ToWeek}} {
		if strings.TrimSpace(w.in) == "" {
			continue
		}
		week, err := domaininspection.ParseWorkWeek(w.in)
		if err != nil {
			return ports.ReportFilter{}, err
		}
		*w.out = domaininspection.FormatWorkWeek(week)
	}
	if (out.FromWeek != "" || out.ToWeek != "") && out.FiscalYear == "" {
		return ports.ReportFilter{}, ErrWeekRangeNeedsFiscalYear
	}
	if out.FromWeek != "" && out.ToWeek != "" && out.FromWeek > out.ToWeek {
		return ports.ReportFilter{}, fmt.Errorf("%w: %s > %s", ErrInvalidWeekRange, out.FromWeek, out.ToWeek)
	}
	return out, nil
}

func cacheKey(name string, filter ports.ReportFilter) string {
	return strings.Join([]string{"report", name, filter.Station, filter.FiscalYear, filter.FromWeek, filter.ToWeek}, ":")
}

// cached loads name/filter from the cache into dst, or computes it with build and stores it.
// Cache failures are logged and never fail the report.
func (s *Service) cached(ctx context.Context, key string, dst any, build func() (any, error)) error {
	if s.cache != nil && s.ttl > 0 {
		value, found, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			logging.Warn(ctx, "report cache read failed", slog.String("key", key), slog.Any("error", errs.Loggable(err)))
		case found:
			if err := json.Unmarshal([]byte(value), dst); err == nil {
				return nil
			}
			logging.Warn(ctx, "report cache entry unreadable", slog.String("key", key))
		}
	}

	result, err := build()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return errs.Wrap(err, "marshal report")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errs.Wrap(err, "copy report")
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
			logging.Warn(ctx, "report cache write failed", slog.String("key", key), slog.Any("error", errs.Loggable(err)))
		}
	}
	return nil
}

func checkContext(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	return nil
}
