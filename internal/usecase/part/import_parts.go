package part

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"qctrack/internal/bootstrap/logging"
	"qctrack/internal/errs"
)

// ImportFile is the YAML layout accepted by ImportParts:
//
//	parts:
//	  - part_number: PN-100
//	    model: MX
//	    active: false
type ImportFile struct {
	Parts []ImportEntry `yaml:"parts"`
}

type ImportEntry struct {
	PartNumber  string `yaml:"part_number"`
	Description string `yaml:"description"`
	Model       string `yaml:"model"`
	Version     string `yaml:"version"`
	PartSite    string `yaml:"part_site"`
	Active      *bool  `yaml:"active"`
}

type ImportResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

var ErrInvalidImport = errs.WithKind(errors.New("invalid parts import file"), errs.KindValidation)

// ImportParts upserts every entry by part number in one transaction. An invalid entry
// aborts the whole import.
func (s *Service) ImportParts(ctx context.Context, r io.Reader) (ImportResult, error) {
	if err := checkContext(ctx); err != nil {
		return ImportResult{}, err
	}

	var file ImportFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return ImportResult{}, fmt.Errorf("%w: empty document", ErrInvalidImport)
		}
		return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	var result ImportResult
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		result = ImportResult{}
		for i, entry := range file.Parts {
			part, err := s.buildPart(CreatePartInput{
				PartNumber:  entry.PartNumber,
				Description: entry.Description,
				Model:       entry.Model,
				Version:     entry.Version,
				PartSite:    entry.PartSite,
				Active:      entry.Active,
			})
			if err != nil {
				return fmt.Errorf("parts[%d]: %w", i, err)
			}
			inserted, err := s.repo.UpsertPart(txCtx, part)
			if err != nil {
				return errs.WrapStore(err, fmt.Sprintf("upsert part %s", part.PartNumber))
			}
			if inserted {
				result.Inserted++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	logging.Info(ctx, "parts imported",
		slog.Int("inserted", result.Inserted),
		slog.Int("updated", result.Updated),
	)
	return result, nil
}
