package inspection

import (
	"context"
	"errors"
	"log/slog"

	"qctrack/internal/bootstrap/logging"
	domain "qctrack/internal/domain/inspection"
	"qctrack/internal/errs"
	"qctrack/internal/ports"
)

// CreateInspection stores a new inspection record. Number and round are computed and
// inserted in one transaction; a uniqueness conflict with a concurrent writer restarts
// the transaction with fresh reads.
func (s *Service) CreateInspection(ctx context.Context, input CreateInspectionInput) (ports.InspectionRecord, error) {
	if err := checkContext(ctx); err != nil {
		return ports.InspectionRecord{}, err
	}
	if s.repo == nil || s.uow == nil {
		return ports.InspectionRecord{}, errors.New("inspection repository and unit of work are required")
	}

	station, err := s.opts.Catalog.Validate(input.Station)
	if err != nil {
		return ports.InspectionRecord{}, err
	}
	lot, err := domain.NormalizeLotNumber(input.LotNumber)
	if err != nil {
		return ports.InspectionRecord{}, err
	}
	if err := validateQuantities(&input.LotQty, input.SampleQty, input.DefectQty); err != nil {
		return ports.InspectionRecord{}, err
	}
	judgment, err := normalizeOptionalJudgment(input.Judgment)
	if err != nil {
		return ports.InspectionRecord{}, err
	}

	inspectionDate := s.now()
	if input.InspectionDate != nil {
		inspectionDate = input.InspectionDate.UTC()
	}
	fiscalYear, week := s.opts.Calendar.Placement(inspectionDate)
	prefix := domain.NumberPrefix(station, fiscalYear, inspectionDate, week)

	var created ports.InspectionRecord
	err = s.withRetry(ctx, "create_inspection", func(txCtx context.Context) error {
		number, err := s.nextNumber(txCtx, prefix)
		if err != nil {
			return err
		}
		round, err := s.nextRound(txCtx, station, lot)
		if err != nil {
			return err
		}

		now := s.now()
		created, err = s.repo.CreateInspection(txCtx, ports.InspectionRecord{
			Station:          station,
			InspectionNumber: number,
			LotNumber:        lot,
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
			FiscalYear:       domain.FormatFiscalYear(fiscalYear),
			WorkWeek:         domain.FormatWorkWeek(week),
			Round:            round,
			InspectionDate:   inspectionDate,
			CreatedBy:        input.UserID,
			UpdatedBy:        input.UserID,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
		return errs.WrapStore(err, "create inspection record")
	})
	if err != nil {
		return ports.InspectionRecord{}, err
	}

	logging.Info(ctx, "inspection created",
		slog.String("inspection_number", created.InspectionNumber),
		slog.String("lot_number", created.LotNumber),
		slog.Int("round", created.Round),
	)
	s.publish(ctx, ports.EventInspectionCreated, created)
	return created, nil
}

func validateQuantities(values ...*int) error {
	for _, value := range values {
		if value != nil && *value < 0 {
			return domain.ErrInvalidQuantity
		}
	}
	return nil
}

func normalizeOptionalJudgment(judgment *string) (*string, error) {
	if judgment == nil {
		return nil, nil
	}
	normalized, err := domain.NormalizeJudgment(*judgment)
	if err != nil {
		return nil, err
	}
	return &normalized, nil
}
