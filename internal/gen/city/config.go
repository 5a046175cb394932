package city

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Upper bounds accepted by Validate. Requests arrive from remote viewers, so
// every input that scales the mesh is capped.
const (
	MaxTreeLevels = 8
	MaxCitySize   = 1000.0
	MaxCount      = 1000
)

type Config struct {
	Seed       int64   `yaml:"seed" json:"seed"`
	CitySize   float64 `yaml:"city_size" json:"city_size"`
	GroundSize float64 `yaml:"ground_size" json:"ground_size"`
	TreeLevels int     `yaml:"tree_levels" json:"tree_levels"`
	Counts     Counts  `yaml:"counts" json:"counts"`
}

// Counts is the requested number of objects per category. Categories subject
// to exclusion may place fewer.
type Counts struct {
	Skyscrapers     int `yaml:"skyscrapers" json:"skyscrapers"`
	MediumBuildings int `yaml:"medium_buildings" json:"medium_buildings"`
	Shops           int `yaml:"shops" json:"shops"`
	Houses          int `yaml:"houses" json:"houses"`
	Streetlights    int `yaml:"streetlights" json:"streetlights"`
	Benches         int `yaml:"benches" json:"benches"`
	Humans          int `yaml:"humans" json:"humans"`
	Trees           int `yaml:"trees" json:"trees"`
	Crystals        int `yaml:"crystals" json:"crystals"`
}

func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("city.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("city.yaml: %w", err)
	}
	return cfg, nil
}

func Defaults() Config {
	return Config{
		Seed:       1337,
		CitySize:   80,
		GroundSize: 200,
		TreeLevels: 3,
		Counts: Counts{
			Skyscrapers:     6,
			MediumBuildings: 10,
			Shops:           8,
			Houses:          15,
			Streetlights:    25,
			Benches:         10,
			Humans:          20,
			Trees:           40,
			Crystals:        5,
		},
	}
}

// Normalize fills derived fields. A zero ground size follows the city size at
// the default 2.5 ratio.
func (c *Config) Normalize() {
	if c == nil {
		return
	}
	if c.GroundSize == 0 && c.CitySize > 0 {
		c.GroundSize = c.CitySize * 2.5
	}
}

// Validate rejects non-finite sizes and any value outside its bounds.
func (c Config) Validate() error {
	if math.IsNaN(c.CitySize) || math.IsInf(c.CitySize, 0) {
		return fmt.Errorf("city_size must be finite")
	}
	if c.CitySize <= 0 || c.CitySize > MaxCitySize {
		return fmt.Errorf("city_size must be in (0, %g]", MaxCitySize)
	}
	if math.IsNaN(c.GroundSize) || math.IsInf(c.GroundSize, 0) {
		return fmt.Errorf("ground_size must be finite")
	}
	if c.GroundSize <= 0 {
		return fmt.Errorf("ground_size must be > 0")
	}
	if c.TreeLevels < 0 || c.TreeLevels > MaxTreeLevels {
		return fmt.Errorf("tree_levels must be in [0, %d]", MaxTreeLevels)
	}
	for _, cat := range Categories {
		if n := c.Counts.Get(cat); n < 0 || n > MaxCount {
			return fmt.Errorf("counts.%s must be in [0, %d]", cat, MaxCount)
		}
	}
	return nil
}

// Get returns the requested count for cat, or 0 for an unknown category.
func (c Counts) Get(cat Category) int {
	switch cat {
	case Skyscrapers:
		return c.Skyscrapers
	case MediumBuildings:
		return c.MediumBuildings
	case Shops:
		return c.Shops
	case Houses:
		return c.Houses
	case Streetlights:
		return c.Streetlights
	case Benches:
		return c.Benches
	case Humans:
		return c.Humans
	case Trees:
		return c.Trees
	case Crystals:
		return c.Crystals
	default:
		return 0
	}
}

// Set stores n for cat. It reports false for an unknown category.
func (c *Counts) Set(cat Category, n int) bool {
	switch cat {
	case Skyscrapers:
		c.Skyscrapers = n
	case MediumBuildings:
		c.MediumBuildings = n
	case Shops:
		c.Shops = n
	case Houses:
		c.Houses = n
	case Streetlights:
		c.Streetlights = n
	case Benches:
		c.Benches = n
	case Humans:
		c.Humans = n
	case Trees:
		c.Trees = n
	case Crystals:
		c.Crystals = n
	default:
		return false
	}
	return true
}
