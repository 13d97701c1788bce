package inspection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"qctrack/internal/bootstrap/logging"
	domain "qctrack/internal/domain/inspection"
	"qctrack/internal/errs"
	"qctrack/internal/ports"
)

// CreateDerivedRecord copies the shared fields of the source record into a new record
// at the source's derive target station (SIV for OQA by default). Station-specific
// fields start empty and inspection_number_ref points at the source. Number and round
// are computed against the target station in the same transaction as the insert.
func (s *Service) CreateDerivedRecord(ctx context.Context, sourceRecordID uint64, requestingUserID uint64) (ports.InspectionRecord, error) {
	if err := checkContext(ctx); err != nil {
		return ports.InspectionRecord{}, err
	}
	if s.repo == nil || s.uow == nil {
		return ports.InspectionRecord{}, errors.New("inspection repository and unit of work are required")
	}

	var (
		source  ports.InspectionRecord
		created ports.InspectionRecord
	)
	err := s.withRetry(ctx, "create_derived_record", func(txCtx context.Context) error {
		var err error
		source, err = s.repo.GetInspection(txCtx, sourceRecordID)
		if err != nil {
			return errs.WrapStore(err, fmt.Sprintf("load source inspection %d", sourceRecordID))
		}

		target, err := domain.NormalizeStation(s.opts.Catalog.DeriveTarget(source.Station, s.opts.DerivedStation))
		if err != nil {
			return err
		}
		if target == source.Station {
			return fmt.Errorf("%w: %s", domain.ErrSameStation, target)
		}

		today := s.now()
		fiscalYear, week := s.opts.Calendar.Placement(today)
		number, err := s.nextNumber(txCtx, domain.NumberPrefix(target, fiscalYear, today, week))
		if err != nil {
			return err
		}
		round, err := s.nextRound(txCtx, target, source.LotNumber)
		if err != nil {
			return err
		}

		now := s.now()
		record := deriveFrom(source)
		record.Station = target
		record.InspectionNumber = number
		record.Round = round
		record.FiscalYear = domain.FormatFiscalYear(fiscalYear)
		record.WorkWeek = domain.FormatWorkWeek(week)
		record.InspectionDate = today
		record.CreatedBy = requestingUserID
		record.UpdatedBy = requestingUserID
		record.CreatedAt = now
		record.UpdatedAt = now

		created, err = s.repo.CreateInspection(txCtx, record)
		return errs.WrapStore(err, "create derived inspection record")
	})
	if err != nil {
		return ports.InspectionRecord{}, err
	}

	logging.Info(ctx, "inspection derived",
		slog.String("source", source.InspectionNumber),
		slog.String("inspection_number", created.InspectionNumber),
		slog.Int("round", created.Round),
	)
	s.publish(ctx, ports.EventInspectionDerived, created)
	return created, nil
}

// deriveFrom copies the fields shared between stations. Shift, inspection line,
// QC reference, sample and defect quantities and judgment stay nil.
func deriveFrom(source ports.InspectionRecord) ports.InspectionRecord {
	ref := source.InspectionNumber
	return ports.InspectionRecord{
		InspectionNumberRef: &ref,
		LotNumber:           source.LotNumber,
		PartSite:            source.PartSite,
		ItemNumber:          source.ItemNumber,
		Model:               source.Model,
		Version:             source.Version,
		MachineLineNo:       source.MachineLineNo,
		SamplingReasonID:    source.SamplingReasonID,
		LotQty:              source.LotQty,
	}
}
