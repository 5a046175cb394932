package city

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_CityYAMLMatchesDefaults(t *testing.T) {
	cfg, err := Load("../../../configs/city.yaml")
	if err != nil {
		t.Fatalf("load city.yaml: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("configs/city.yaml drifted from defaults: %+v", cfg)
	}
}

func TestLoad_EmptyPathIsDefaults(t *testing.T) {
	cfg, err := Load("  ")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("got %+v", cfg)
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "city.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoad_PartialOverrideKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeYAML(t, "seed: 0\ncity_size: 40\nground_size: 0\ncounts:\n  trees: 3\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 0 || cfg.Counts.Trees != 3 {
		t.Fatalf("override not applied: %+v", cfg)
	}
	if cfg.Counts.Houses != 15 || cfg.TreeLevels != 3 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.GroundSize != 100 {
		t.Fatalf("ground_size 0 should follow city_size, got %f", cfg.GroundSize)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"city_size":     "city_size: -5\n",
		"ground_size":   "ground_size: -1\n",
		"tree_levels":   "tree_levels: 9\n",
		"counts.humans": "counts:\n  humans: -1\n",
		"counts.trees":  "counts:\n  trees: 1000001\n",
	}
	for field, body := range cases {
		_, err := Load(writeYAML(t, body))
		if err == nil {
			t.Fatalf("%s: expected error", field)
		}
		if !strings.Contains(err.Error(), field) || !strings.HasPrefix(err.Error(), "city.yaml: ") {
			t.Fatalf("%s: unexpected error %q", field, err)
		}
	}

	if _, err := Load(writeYAML(t, "seed: [1, 2\n")); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestLoad_RejectsNonFiniteSizes(t *testing.T) {
	cases := map[string]string{
		"city_size":   "city_size: .nan\n",
		"ground_size": "ground_size: .inf\n",
	}
	for field, body := range cases {
		_, err := Load(writeYAML(t, body))
		if err == nil || !strings.Contains(err.Error(), field) {
			t.Fatalf("%s: expected finite error, got %v", field, err)
		}
	}
	if _, err := Load(writeYAML(t, "city_size: -.inf\n")); err == nil {
		t.Fatalf("expected -inf city_size rejected")
	}
}

func TestValidate_UpperBounds(t *testing.T) {
	cfg := Defaults()
	cfg.CitySize = MaxCitySize
	if err := cfg.Validate(); err != nil {
		t.Fatalf("max city_size rejected: %v", err)
	}
	cfg.CitySize = 1e12
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "city_size") {
		t.Fatalf("expected city_size bound error, got %v", err)
	}

	cfg = Defaults()
	cfg.Counts.Trees = MaxCount
	if err := cfg.Validate(); err != nil {
		t.Fatalf("max count rejected: %v", err)
	}
	cfg.Counts.Trees = 1 << 40
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "counts.trees") {
		t.Fatalf("expected counts.trees bound error, got %v", err)
	}
}

func TestCounts_GetSet(t *testing.T) {
	var c Counts
	for i, cat := range Categories {
		if !c.Set(cat, i+1) {
			t.Fatalf("Set(%s) rejected", cat)
		}
	}
	for i, cat := range Categories {
		if got := c.Get(cat); got != i+1 {
			t.Fatalf("Get(%s)=%d want %d", cat, got, i+1)
		}
	}
	if c.Set("roads", 1) || c.Get("roads") != 0 {
		t.Fatalf("unknown category should be ignored")
	}
}

func TestExclusion_BoundaryIsOutside(t *testing.T) {
	if SkyscraperCore.Inside(6, 0) || SkyscraperCore.Inside(0, -6) {
		t.Fatalf("boundary should be outside")
	}
	if !SkyscraperCore.Inside(5.99, -5.99) {
		t.Fatalf("interior point reported outside")
	}
	if MediumCore.Inside(3, 10) || !MediumCore.Inside(-9, 9) {
		t.Fatalf("medium core mismatch")
	}
	if (Exclusion{}).Inside(0, 0) {
		t.Fatalf("empty exclusion must not contain anything")
	}
}
