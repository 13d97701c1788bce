package inspection

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	domain "qctrack/internal/domain/inspection"
)

func TestDefaultStationCatalog(t *testing.T) {
	catalog := DefaultStationCatalog()

	if got := catalog.DeriveTarget("OQA", "XYZ"); got != "SIV" {
		t.Fatalf("DeriveTarget(OQA) = %q, want SIV", got)
	}
	if got := catalog.DeriveTarget("IQC", "siv"); got != "SIV" {
		t.Fatalf("DeriveTarget(IQC) = %q, want fallback SIV", got)
	}
	if code, err := catalog.Validate(" iqc "); err != nil || code != "IQC" {
		t.Fatalf("Validate(iqc) = %q, %v; default catalog accepts any well-formed code", code, err)
	}
}

func TestLoadStationCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.toml")
	content := `
[[stations]]
code = "iqc"
name = "Incoming quality control"
derives_to = "oqa"

[[stations]]
code = "OQA"
name = "Outgoing quality audit"
derives_to = "SIV"

[[stations]]
code = "SIV"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	catalog, err := LoadStationCatalog(path)
	if err != nil {
		t.Fatalf("LoadStationCatalog() error = %v", err)
	}
	if got := catalog.DeriveTarget("IQC", "SIV"); got != "OQA" {
		t.Fatalf("DeriveTarget(IQC) = %q, want OQA", got)
	}
	if _, err := catalog.Validate("FQC"); !errors.Is(err, domain.ErrUnknownStation) {
		t.Fatalf("Validate(FQC) error = %v, want ErrUnknownStation", err)
	}
	stations := catalog.Stations()
	if len(stations) != 3 || stations[0].Code != "IQC" || stations[2].Code != "SIV" {
		t.Fatalf("Stations() = %+v", stations)
	}
}

func TestParseStationCatalogRejectsBadEntries(t *testing.T) {
	cases := []string{
		``,
		"[[stations]]\ncode = \"TOOLONG\"\n",
		"[[stations]]\ncode = \"OQA\"\nderives_to = \"oqa\"\n",
		"[[stations]]\ncode = \"OQA\"\n\n[[stations]]\ncode = \"oqa\"\n",
		"[[stations]\n",
	}
	for _, raw := range cases {
		if _, err := ParseStationCatalog([]byte(raw)); err == nil {
			t.Fatalf("ParseStationCatalog(%q) expected error", raw)
		}
	}
}
