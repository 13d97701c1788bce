package inspection

import (
	"context"
	"fmt"
	"log/slog"

	"qctrack/internal/bootstrap/logging"
	domain "qctrack/internal/domain/inspection"
	"qctrack/internal/errs"
)

// GetNextSamplingRound returns max(round)+1 for the (station, lot) pair, or 1 when the
// pair is new. A store failure is logged and reported as round 0 with a nil error.
func (s *Service) GetNextSamplingRound(ctx context.Context, station string, lotNumber string) (int, error) {
	round, err := s.NextSamplingRound(ctx, station, lotNumber)
	if err == nil {
		return round, nil
	}
	if !errs.IsKind(err, errs.KindStore) {
		return 0, err
	}

	logging.Warn(ctx, "sampling round store read failed",
		slog.String("station", station),
		slog.String("lot_number", lotNumber),
		slog.Any("error", errs.Loggable(err)),
	)
	return 0, nil
}

// NextSamplingRound is GetNextSamplingRound with store failures returned as errors.
func (s *Service) NextSamplingRound(ctx context.Context, station string, lotNumber string) (int, error) {
	if err := checkContext(ctx); err != nil {
		return 0, err
	}
	code, err := s.opts.Catalog.Validate(station)
	if err != nil {
		return 0, err
	}
	lot, err := domain.NormalizeLotNumber(lotNumber)
	if err != nil {
		return 0, err
	}
	return s.nextRound(ctx, code, lot)
}

func (s *Service) nextRound(ctx context.Context, station string, lotNumber string) (int, error) {
	if s.repo == nil {
		return 0, fmt.Errorf("inspection repository is required")
	}
	maxRound, err := s.repo.MaxSamplingRound(ctx, station, lotNumber)
	if err != nil {
		return 0, errs.WrapStore(err, "query max sampling round")
	}
	return maxRound + 1, nil
}
