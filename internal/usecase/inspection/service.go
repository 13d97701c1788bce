package inspection

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"qctrack/internal/bootstrap/logging"
	"qctrack/internal/domain/fiscal"
	"qctrack/internal/errs"
	"qctrack/internal/ports"
)

const defaultMaxAttempts = 5

type Options struct {
	Calendar fiscal.Calendar
	Catalog  *StationCatalog
	// DerivedStation is the target of CreateDerivedRecord when the catalog names none.
	DerivedStation string
	// FallbackOnStoreError lets GenerateInspectionNumber answer with a clock-based
	// candidate when the store cannot be read. Persisting paths never do this.
	FallbackOnStoreError bool
	MaxAttempts          int
	Now                  func() time.Time
}

type Service struct {
	repo   ports.InspectionRepository
	uow    ports.UnitOfWork
	events ports.EventPublisher
	opts   Options
}

func NewService(repo ports.InspectionRepository, uow ports.UnitOfWork, events ports.EventPublisher, opts Options) *Service {
	if opts.Catalog == nil {
		opts.Catalog = DefaultStationCatalog()
	}
	if strings.TrimSpace(opts.DerivedStation) == "" {
		opts.DerivedStation = "SIV"
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:   repo,
		uow:    uow,
		events: events,
		opts:   opts,
	}
}

type CreateInspectionInput struct {
	Station          string
	LotNumber        string
	PartSite         string
	ItemNumber       string
	Model            string
	Version          string
	MachineLineNo    string
	SamplingReasonID *uint64
	LotQty           int
	Shift            *string
	InspectionLineID *string
	QCRef            *string
	SampleQty        *int
	DefectQty        *int
	Judgment         *string
	InspectionDate   *time.Time
	UserID           uint64
}

// UpdateInspectionInput holds a partial update. Station, InspectionNumber and Round
// are accepted only so a request that tries to change them can be rejected.
type UpdateInspectionInput struct {
	Station          *string
	InspectionNumber *string
	Round            *int

	PartSite         *string
	ItemNumber       *string
	Model            *string
	Version          *string
	MachineLineNo    *string
	SamplingReasonID *uint64
	LotQty           *int
	Shift            *string
	InspectionLineID *string
	QCRef            *string
	SampleQty        *int
	DefectQty        *int
	Judgment         *string
}

func (s *Service) now() time.Time {
	return s.opts.Now().UTC()
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

// withRetry runs fn in a transaction and repeats it while it fails on a uniqueness conflict.
func (s *Service) withRetry(ctx context.Context, op string, fn func(txCtx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		err = s.uow.WithTx(ctx, fn)
		if err == nil || !errors.Is(err, ports.ErrUniquenessConflict) {
			return err
		}
		if ports.InTx(ctx) {
			return err
		}
		logging.Warn(ctx, "uniqueness conflict, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Any("error", errs.Loggable(err)),
		)
	}
	return err
}

func (s *Service) publish(ctx context.Context, event string, record ports.InspectionRecord) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event, record); err != nil {
		logging.Warn(ctx, "publish event failed",
			slog.String("event", event),
			slog.String("inspection_number", record.InspectionNumber),
			slog.Any("error", errs.Loggable(err)),
		)
	}
}
