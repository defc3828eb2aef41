package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/copyleftdev/SARSIM/internal/search"
)

var scenarioValidate = validator.New(validator.WithRequiredStructEnabled())

// Scenario is the on-disk description of a search map.
//
//	name: cape-python
//	regions:
//	  - upper_left: {x: 130, y: 265}
//	    height: 50
//	    width: 50
//	    prior: 0.2
type Scenario struct {
	Name    string         `yaml:"name" json:"name" validate:"required"`
	Regions []RegionConfig `yaml:"regions" json:"regions" validate:"required,min=1,dive"`
}

// RegionConfig is one region entry; regions are indexed in file order from 1.
type RegionConfig struct {
	UpperLeft struct {
		X int `yaml:"x" json:"x"`
		Y int `yaml:"y" json:"y"`
	} `yaml:"upper_left" json:"upper_left"`
	Height int     `yaml:"height" json:"height" validate:"gt=0"`
	Width  int     `yaml:"width" json:"width" validate:"gt=0"`
	Prior  float64 `yaml:"prior" json:"prior" validate:"gte=0,lte=1"`
}

// DefaultScenario returns the built-in three-region Cape Python map.
func DefaultScenario() *Scenario {
	specs := search.CapePython()
	sc := &Scenario{Name: "cape-python", Regions: make([]RegionConfig, len(specs))}
	for i, spec := range specs {
		rc := RegionConfig{Height: spec.Height, Width: spec.Width, Prior: spec.Prior}
		rc.UpperLeft.X = spec.UpperLeft.X
		rc.UpperLeft.Y = spec.UpperLeft.Y
		sc.Regions[i] = rc
	}
	return sc
}

// LoadScenario reads and validates a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a YAML scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the struct tags, the per-region cell cap and that at least
// one region carries prior mass.
func (s *Scenario) Validate() error {
	if err := scenarioValidate.Struct(s); err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}
	var mass float64
	for i, rc := range s.Regions {
		if rc.Height > search.MaxRegionArea/rc.Width {
			return fmt.Errorf("invalid scenario: region %d is %dx%d, above %d cells", i+1, rc.Height, rc.Width, search.MaxRegionArea)
		}
		mass += rc.Prior
	}
	if mass <= 0 {
		return fmt.Errorf("invalid scenario: every prior is zero")
	}
	return nil
}

// Specs converts the scenario into region specs for the search engine.
func (s *Scenario) Specs() []search.RegionSpec {
	specs := make([]search.RegionSpec, len(s.Regions))
	for i, rc := range s.Regions {
		specs[i] = search.RegionSpec{
			Geometry: search.Geometry{
				UpperLeft: search.Coord{X: rc.UpperLeft.X, Y: rc.UpperLeft.Y},
				Height:    rc.Height,
				Width:     rc.Width,
			},
			Prior: rc.Prior,
		}
	}
	return specs
}
