package inspection

import (
	"context"
	"errors"
	"strings"

	domain "qctrack/internal/domain/inspection"
	"qctrack/internal/errs"
	"qctrack/internal/ports"
)

const pendingJudgment = "PENDING"

func (s *Service) GetInspection(ctx context.Context, id uint64) (ports.InspectionRecord, error) {
	if err := checkContext(ctx); err != nil {
		return ports.InspectionRecord{}, err
	}
	if s.repo == nil {
		return ports.InspectionRecord{}, errors.New("inspection repository is required")
	}
	record, err := s.repo.GetInspection(ctx, id)
	if err != nil {
		return ports.InspectionRecord{}, errs.WrapStore(err, "get inspection record")
	}
	return record, nil
}

func (s *Service) GetInspectionByNumber(ctx context.Context, number string) (ports.InspectionRecord, error) {
	if err := checkContext(ctx); err != nil {
		return ports.InspectionRecord{}, err
	}
	if s.repo == nil {
		return ports.InspectionRecord{}, errors.New("inspection repository is required")
	}
	record, err := s.repo.GetInspectionByNumber(ctx, number)
	if err != nil {
		return ports.InspectionRecord{}, errs.WrapStore(err, "get inspection record by number")
	}
	return record, nil
}

// ListInspections accepts judgment ACCEPT, REJECT (or their aliases) or PENDING for unjudged records.
func (s *Service) ListInspections(ctx context.Context, filter ports.InspectionFilter) ([]ports.InspectionRecord, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, errors.New("inspection repository is required")
	}

	if station := strings.TrimSpace(filter.Station); station != "" {
		code, err := domain.NormalizeStation(station)
		if err != nil {
			return nil, err
		}
		filter.Station = code
	}
	if ww := strings.TrimSpace(filter.WorkWeek); ww != "" {
		week, err := domain.ParseWorkWeek(ww)
		if err != nil {
			return nil, err
		}
		filter.WorkWeek = domain.FormatWorkWeek(week)
	}
	switch judgment := strings.ToUpper(strings.TrimSpace(filter.Judgment)); judgment {
	case "", pendingJudgment:
		filter.Judgment = judgment
	default:
		normalized, err := domain.NormalizeJudgment(judgment)
		if err != nil {
			return nil, err
		}
		filter.Judgment = normalized
	}

	items, err := s.repo.ListInspections(ctx, filter)
	if err != nil {
		return nil, errs.WrapStore(err, "list inspection records")
	}
	return items, nil
}

func (s *Service) Stations() []Station {
	return s.opts.Catalog.Stations()
}
