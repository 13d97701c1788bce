package inspection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"qctrack/internal/bootstrap/logging"
	domain "qctrack/internal/domain/inspection"
	"qctrack/internal/errs"
	"qctrack/internal/ports"
)

// UpdateInspection applies a partial update. Station, inspection number and round may be
// sent back unchanged but any different value fails with ErrImmutableField.
func (s *Service) UpdateInspection(ctx context.Context, id uint64, input UpdateInspectionInput, userID uint64) (ports.InspectionRecord, error) {
	if err := checkContext(ctx); err != nil {
		return ports.InspectionRecord{}, err
	}
	if s.repo == nil || s.uow == nil {
		return ports.InspectionRecord{}, errors.New("inspection repository and unit of work are required")
	}
	if err := validateQuantities(input.LotQty, input.SampleQty, input.DefectQty); err != nil {
		return ports.InspectionRecord{}, err
	}
	judgment, err := normalizeOptionalJudgment(input.Judgment)
	if err != nil {
		return ports.InspectionRecord{}, err
	}

	var updated ports.InspectionRecord
	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetInspection(txCtx, id)
		if err != nil {
			return errs.WrapStore(err, "load inspection record")
		}
		if err := checkImmutable(current, input); err != nil {
			return err
		}

		if err := s.repo.UpdateInspection(txCtx, id, ports.InspectionUpdate{
			PartSite:         input.PartSite,
			ItemNumber:       input.ItemNumber,
			Model:            input.Model,
			Version:          input.Version,
			MachineLineNo:    input.MachineLineNo,
			SamplingReasonID: input.SamplingReasonID,
			LotQty:           input.LotQty,
			Shift:            input.Shift,
			InspectionLineID: input.InspectionLineID,
			QCRef:            input.QCRef,
			SampleQty:        input.SampleQty,
			DefectQty:        input.DefectQty,
			Judgment:         judgment,
			UpdatedBy:        userID,
			UpdatedAt:        s.now(),
		}); err != nil {
			return errs.WrapStore(err, "update inspection record")
		}

		updated, err = s.repo.GetInspection(txCtx, id)
		return errs.WrapStore(err, "reload inspection record")
	})
	if err != nil {
		return ports.InspectionRecord{}, err
	}
	return updated, nil
}

// JudgeInspection records the ACCEPT or REJECT outcome of an inspection.
func (s *Service) JudgeInspection(ctx context.Context, id uint64, judgment string, userID uint64) (ports.InspectionRecord, error) {
	normalized, err := domain.NormalizeJudgment(judgment)
	if err != nil {
		return ports.InspectionRecord{}, err
	}
	updated, err := s.UpdateInspection(ctx, id, UpdateInspectionInput{Judgment: &normalized}, userID)
	if err != nil {
		return ports.InspectionRecord{}, err
	}

	logging.Info(ctx, "inspection judged",
		slog.String("inspection_number", updated.InspectionNumber),
		slog.String("judgment", normalized),
	)
	return updated, nil
}

func (s *Service) DeleteInspection(ctx context.Context, id uint64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if s.repo == nil {
		return errors.New("inspection repository is required")
	}
	if err := s.repo.DeleteInspection(ctx, id); err != nil {
		return errs.WrapStore(err, "delete inspection record")
	}
	logging.Info(ctx, "inspection deleted", slog.Uint64("id", id))
	return nil
}

func checkImmutable(current ports.InspectionRecord, input UpdateInspectionInput) error {
	if input.Station != nil && !strings.EqualFold(strings.TrimSpace(*input.Station), current.Station) {
		return fmt.Errorf("%w: station", domain.ErrImmutableField)
	}
	if input.InspectionNumber != nil && strings.TrimSpace(*input.InspectionNumber) != current.InspectionNumber {
		return fmt.Errorf("%w: inspection_number", domain.ErrImmutableField)
	}
	if input.Round != nil && *input.Round != current.Round {
		return fmt.Errorf("%w: round", domain.ErrImmutableField)
	}
	return nil
}
