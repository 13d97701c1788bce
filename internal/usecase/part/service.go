package part

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"qctrack/internal/bootstrap/logging"
	domainpart "qctrack/internal/domain/part"
	"qctrack/internal/errs"
	"qctrack/internal/ports"
)

type Service struct {
	repo ports.PartRepository
	uow  ports.UnitOfWork
	now  func() time.Time
}

func NewService(repo ports.PartRepository, uow ports.UnitOfWork) *Service {
	return &Service{repo: repo, uow: uow, now: time.Now}
}

type CreatePartInput struct {
	PartNumber  string
	Description string
	Model       string
	Version     string
	PartSite    string
	// Active defaults to true.
	Active *bool
}

type UpdatePartInput struct {
	Description *string
	Model       *string
	Version     *string
	PartSite    *string
	Active      *bool
}

func (s *Service) CreatePart(ctx context.Context, input CreatePartInput) (ports.Part, error) {
	if err := checkContext(ctx); err != nil {
		return ports.Part{}, err
	}
	if s.repo == nil {
		return ports.Part{}, errors.New("part repository is required")
	}

	part, err := s.buildPart(input)
	if err != nil {
		return ports.Part{}, err
	}
	created, err := s.repo.CreatePart(ctx, part)
	if err != nil {
		return ports.Part{}, errs.WrapStore(err, "create part")
	}

	logging.Info(ctx, "part created", slog.String("part_number", created.PartNumber))
	return created, nil
}

func (s *Service) GetPart(ctx context.Context, partNumber string) (ports.Part, error) {
	if err := checkContext(ctx); err != nil {
		return ports.Part{}, err
	}
	number, err := domainpart.NormalizePartNumber(partNumber)
	if err != nil {
		return ports.Part{}, err
	}
	part, err := s.repo.GetPart(ctx, number)
	if err != nil {
		return ports.Part{}, errs.WrapStore(err, "get part")
	}
	return part, nil
}

func (s *Service) ListParts(ctx context.Context, activeOnly bool) ([]ports.Part, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	parts, err := s.repo.ListParts(ctx, activeOnly)
	if err != nil {
		return nil, errs.WrapStore(err, "list parts")
	}
	return parts, nil
}

func (s *Service) UpdatePart(ctx context.Context, partNumber string, input UpdatePartInput) (ports.Part, error) {
	if err := checkContext(ctx); err != nil {
		return ports.Part{}, err
	}
	number, err := domainpart.NormalizePartNumber(partNumber)
	if err != nil {
		return ports.Part{}, err
	}

	var updated ports.Part
	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.UpdatePart(txCtx, number, ports.PartUpdate{
			Description: trimmed(input.Description),
			Model:       trimmed(input.Model),
			Version:     trimmed(input.Version),
			PartSite:    trimmed(input.PartSite),
			Active:      input.Active,
			UpdatedAt:   s.now().UTC(),
		}); err != nil {
			return errs.WrapStore(err, "update part")
		}
		var err error
		updated, err = s.repo.GetPart(txCtx, number)
		return errs.WrapStore(err, "reload part")
	})
	if err != nil {
		return ports.Part{}, err
	}
	return updated, nil
}

func (s *Service) DeletePart(ctx context.Context, partNumber string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	number, err := domainpart.NormalizePartNumber(partNumber)
	if err != nil {
		return err
	}
	if err := s.repo.DeletePart(ctx, number); err != nil {
		return errs.WrapStore(err, "delete part")
	}
	logging.Info(ctx, "part deleted", slog.String("part_number", number))
	return nil
}

func (s *Service) buildPart(input CreatePartInput) (ports.Part, error) {
	number, err := domainpart.NormalizePartNumber(input.PartNumber)
	if err != nil {
		return ports.Part{}, err
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	now := s.now().UTC()
	return ports.Part{
		PartNumber:  number,
		Description: strings.TrimSpace(input.Description),
		Model:       strings.TrimSpace(input.Model),
		Version:     strings.TrimSpace(input.Version),
		PartSite:    strings.TrimSpace(input.PartSite),
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	out := strings.TrimSpace(*value)
	return &out
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
