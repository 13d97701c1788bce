package inspection

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	domain "qctrack/internal/domain/inspection"
	"qctrack/internal/errs"
)

type Station struct {
	Code      string `toml:"code"`
	Name      string `toml:"name"`
	DerivesTo string `toml:"derives_to"`
}

// StationCatalog knows the inspection stations and which station a record derives into.
// A catalog loaded from a file is strict: stations outside it are rejected.
type StationCatalog struct {
	stations map[string]Station
	strict   bool
}

type catalogFile struct {
	Stations []Station `toml:"stations"`
}

func DefaultStationCatalog() *StationCatalog {
	catalog, _ := newStationCatalog([]Station{
		{Code: "OQA", Name: "Outgoing quality audit", DerivesTo: "SIV"},
		{Code: "SIV", Name: "Supplier incoming verification"},
	}, false)
	return catalog
}

func LoadStationCatalog(path string) (*StationCatalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultStationCatalog(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrapf(err, "read station catalog %s", path)
	}
	return ParseStationCatalog(raw)
}

func ParseStationCatalog(raw []byte) (*StationCatalog, error) {
	var file catalogFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, errs.Wrap(err, "decode station catalog")
	}
	if len(file.Stations) == 0 {
		return nil, fmt.Errorf("station catalog has no stations")
	}
	return newStationCatalog(file.Stations, true)
}

func newStationCatalog(stations []Station, strict bool) (*StationCatalog, error) {
	catalog := &StationCatalog{stations: make(map[string]Station, len(stations)), strict: strict}
	for _, station := range stations {
		code, err := domain.NormalizeStation(station.Code)
		if err != nil {
			return nil, err
		}
		station.Code = code
		if strings.TrimSpace(station.DerivesTo) != "" {
			target, err := domain.NormalizeStation(station.DerivesTo)
			if err != nil {
				return nil, fmt.Errorf("station %s derives_to: %w", code, err)
			}
			if target == code {
				return nil, fmt.Errorf("station %s: %w", code, domain.ErrSameStation)
			}
			station.DerivesTo = target
		}
		if _, dup := catalog.stations[code]; dup {
			return nil, fmt.Errorf("duplicate station %s in catalog", code)
		}
		catalog.stations[code] = station
	}
	return catalog, nil
}

func (c *StationCatalog) Lookup(code string) (Station, bool) {
	station, ok := c.stations[code]
	return station, ok
}

// Validate normalizes code and, for strict catalogs, requires it to be listed.
func (c *StationCatalog) Validate(code string) (string, error) {
	normalized, err := domain.NormalizeStation(code)
	if err != nil {
		return "", err
	}
	if c.strict {
		if _, ok := c.stations[normalized]; !ok {
			return "", fmt.Errorf("%w: %s", domain.ErrUnknownStation, normalized)
		}
	}
	return normalized, nil
}

// DeriveTarget returns the station a record at source derives into, or fallback.
func (c *StationCatalog) DeriveTarget(source string, fallback string) string {
	if station, ok := c.stations[source]; ok && station.DerivesTo != "" {
		return station.DerivesTo
	}
	return strings.ToUpper(strings.TrimSpace(fallback))
}

func (c *StationCatalog) Stations() []Station {
	items := make([]Station, 0, len(c.stations))
	for _, station := range c.stations {
		items = append(items, station)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Code < items[j].Code })
	return items
}
