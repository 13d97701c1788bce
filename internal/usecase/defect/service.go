package defect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"qctrack/internal/bootstrap/logging"
	domaindefect "qctrack/internal/domain/defect"
	"qctrack/internal/domain/fiscal"
	domaininspection "qctrack/internal/domain/inspection"
	"qctrack/internal/errs"
	"qctrack/internal/ports"
)

type Service struct {
	repo        ports.DefectRepository
	inspections ports.InspectionReadRepository
	uow         ports.UnitOfWork
	events      ports.EventPublisher
	calendar    fiscal.Calendar
	now         func() time.Time
}

func NewService(
	repo ports.DefectRepository,
	inspections ports.InspectionReadRepository,
	uow ports.UnitOfWork,
	events ports.EventPublisher,
	calendar fiscal.Calendar,
) *Service {
	return &Service{
		repo:        repo,
		inspections: inspections,
		uow:         uow,
		events:      events,
		calendar:    calendar,
		now:         time.Now,
	}
}

// RecordDefectInput describes one defect observation. When InspectionID is set the
// station, lot, item and line default to the linked inspection's values.
type RecordDefectInput struct {
	InspectionID   *uint64
	Station        string
	LotNumber      string
	ItemNumber     string
	MachineLineNo  string
	DefectCode     string
	DefectCategory string
	Qty            int
	FoundAt        *time.Time
	Remark         string
	Attributes     json.RawMessage
	UserID         uint64
}

type UpdateDefectInput struct {
	DefectCode     *string
	DefectCategory *string
	Qty            *int
	Remark         *string
	Attributes     json.RawMessage
}

func (s *Service) RecordDefect(ctx context.Context, input RecordDefectInput) (ports.DefectRecord, error) {
	if err := checkContext(ctx); err != nil {
		return ports.DefectRecord{}, err
	}
	if s.repo == nil || s.uow == nil {
		return ports.DefectRecord{}, errors.New("defect repository and unit of work are required")
	}

	code, err := domaindefect.NormalizeCode(input.DefectCode)
	if err != nil {
		return ports.DefectRecord{}, err
	}
	category, err := domaindefect.NormalizeCategory(input.DefectCategory)
	if err != nil {
		return ports.DefectRecord{}, err
	}
	if err := domaindefect.ValidateQty(input.Qty); err != nil {
		return ports.DefectRecord{}, err
	}
	attributes, err := normalizeAttributes(input.Attributes)
	if err != nil {
		return ports.DefectRecord{}, err
	}

	foundAt := s.now()
	if input.FoundAt != nil {
		foundAt = *input.FoundAt
	}
	fiscalYear, week := s.calendar.Placement(foundAt)

	var created ports.DefectRecord
	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		record := ports.DefectRecord{
			InspectionID:   input.InspectionID,
			Station:        input.Station,
			LotNumber:      input.LotNumber,
			ItemNumber:     input.ItemNumber,
			MachineLineNo:  input.MachineLineNo,
			DefectCode:     code,
			DefectCategory: category,
			Qty:            input.Qty,
			FoundAt:        foundAt.UTC(),
			FiscalYear:     domaininspection.FormatFiscalYear(fiscalYear),
			WorkWeek:       domaininspection.FormatWorkWeek(week),
			Remark:         strings.TrimSpace(input.Remark),
			Attributes:     attributes,
			CreatedBy:      input.UserID,
			UpdatedBy:      input.UserID,
		}
		if err := s.linkInspection(txCtx, &record); err != nil {
			return err
		}

		station, err := domaininspection.NormalizeStation(record.Station)
		if err != nil {
			return err
		}
		lot, err := domaininspection.NormalizeLotNumber(record.LotNumber)
		if err != nil {
			return err
		}
		record.Station = station
		record.LotNumber = lot

		now := s.now().UTC()
		record.CreatedAt = now
		record.UpdatedAt = now
		created, err = s.repo.CreateDefect(txCtx, record)
		return errs.WrapStore(err, "create defect record")
	})
	if err != nil {
		return ports.DefectRecord{}, err
	}

	logging.Info(ctx, "defect recorded",
		slog.String("defect_code", created.DefectCode),
		slog.String("lot_number", created.LotNumber),
		slog.Int("qty", created.Qty),
	)
	if s.events != nil {
		if err := s.events.Publish(ctx, ports.EventDefectRecorded, created); err != nil {
			logging.Warn(ctx, "publish event failed",
				slog.String("event", ports.EventDefectRecorded),
				slog.Any("error", errs.Loggable(err)),
			)
		}
	}
	return created, nil
}

func (s *Service) linkInspection(ctx context.Context, record *ports.DefectRecord) error {
	if record.InspectionID == nil {
		return nil
	}
	if s.inspections == nil {
		return errors.New("inspection repository is required to link defects")
	}

	inspection, err := s.inspections.GetInspection(ctx, *record.InspectionID)
	if err != nil {
		return errs.WrapStore(err, fmt.Sprintf("load inspection %d", *record.InspectionID))
	}
	if strings.TrimSpace(record.Station) == "" {
		record.Station = inspection.Station
	}
	if strings.TrimSpace(record.LotNumber) == "" {
		record.LotNumber = inspection.LotNumber
	}
	if strings.TrimSpace(record.ItemNumber) == "" {
		record.ItemNumber = inspection.ItemNumber
	}
	if strings.TrimSpace(record.MachineLineNo) == "" {
		record.MachineLineNo = inspection.MachineLineNo
	}
	return nil
}

func (s *Service) GetDefect(ctx context.Context, id uint64) (ports.DefectRecord, error) {
	if err := checkContext(ctx); err != nil {
		return ports.DefectRecord{}, err
	}
	record, err := s.repo.GetDefect(ctx, id)
	if err != nil {
		return ports.DefectRecord{}, errs.WrapStore(err, "get defect record")
	}
	return record, nil
}

func (s *Service) ListDefects(ctx context.Context, filter ports.DefectFilter) ([]ports.DefectRecord, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if station := strings.TrimSpace(filter.Station); station != "" {
		code, err := domaininspection.NormalizeStation(station)
		if err != nil {
			return nil, err
		}
		filter.Station = code
	}
	filter.DefectCode = strings.ToUpper(strings.TrimSpace(filter.DefectCode))
	if ww := strings.TrimSpace(filter.WorkWeek); ww != "" {
		week, err := domaininspection.ParseWorkWeek(ww)
		if err != nil {
			return nil, err
		}
		filter.WorkWeek = domaininspection.FormatWorkWeek(week)
	}

	items, err := s.repo.ListDefects(ctx, filter)
	if err != nil {
		return nil, errs.WrapStore(err, "list defect records")
	}
	return items, nil
}

func (s *Service) UpdateDefect(ctx context.Context, id uint64, input UpdateDefectInput, userID uint64) (ports.DefectRecord, error) {
	if err := checkContext(ctx); err != nil {
		return ports.DefectRecord{}, err
	}

	update := ports.DefectUpdate{
		Remark:    input.Remark,
		UpdatedBy: userID,
		UpdatedAt: s.now().UTC(),
	}
	if input.DefectCode != nil {
		code, err := domaindefect.NormalizeCode(*input.DefectCode)
		if err != nil {
			return ports.DefectRecord{}, err
		}
		update.DefectCode = &code
	}
	if input.DefectCategory != nil {
		category, err := domaindefect.NormalizeCategory(*input.DefectCategory)
		if err != nil {
			return ports.DefectRecord{}, err
		}
		update.DefectCategory = &category
	}
	if input.Qty != nil {
		if err := domaindefect.ValidateQty(*input.Qty); err != nil {
			return ports.DefectRecord{}, err
		}
		update.Qty = input.Qty
	}
	attributes, err := normalizeAttributes(input.Attributes)
	if err != nil {
		return ports.DefectRecord{}, err
	}
	update.Attributes = attributes

	var updated ports.DefectRecord
	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.UpdateDefect(txCtx, id, update); err != nil {
			return errs.WrapStore(err, "update defect record")
		}
		var err error
		updated, err = s.repo.GetDefect(txCtx, id)
		return errs.WrapStore(err, "reload defect record")
	})
	if err != nil {
		return ports.DefectRecord{}, err
	}
	return updated, nil
}

func (s *Service) DeleteDefect(ctx context.Context, id uint64) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := s.repo.DeleteDefect(ctx, id); err != nil {
		return errs.WrapStore(err, "delete defect record")
	}
	logging.Info(ctx, "defect deleted", slog.Uint64("id", id))
	return nil
}

// normalizeAttributes accepts an empty value or a JSON object and compacts it.
func normalizeAttributes(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var object map[string]any
	if err := json.Unmarshal(trimmed, &object); err != nil {
		return nil, fmt.Errorf("%w: %v", domaindefect.ErrInvalidAttributes, err)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, fmt.Errorf("%w: %v", domaindefect.ErrInvalidAttributes, err)
	}
	return buf.Bytes(), nil
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
