package search

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ScenarioOption configures a Scenario.
type ScenarioOption func(*scenarioOptions)

type scenarioOptions struct {
	regionOpts []RegionOption
}

// WithRegionOptions applies opts to every region of the scenario.
func WithRegionOptions(opts ...RegionOption) ScenarioOption {
	return func(o *scenarioOptions) {
		o.regionOpts = append(o.regionOpts, opts...)
	}
}

// Scenario is one hidden-target search: an ordered list of regions and the
// target's true location, fixed at construction.
//
// A Scenario is not safe for concurrent use.
type Scenario struct {
	regions      []*Region
	trueLocation Coord
	trueRegion   int
}

// NewScenario builds a scenario from specs and samples the true location.
// Each region gets its own generator seeded from src; a nil src draws a
// random seed.
func NewScenario(specs []RegionSpec, src rand.Source, opts ...ScenarioOption) (*Scenario, error) {
	const op = "NewScenario"

	if len(specs) == 0 {
		return nil, newError(op, ErrEmptyScenario, "at least one region is required")
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	var o scenarioOptions
	for _, opt := range opts {
		opt(&o)
	}

	regions := make([]*Region, len(specs))
	for i, spec := range specs {
		r, err := NewRegion(i+1, spec, rand.NewPCG(src.Uint64(), src.Uint64()), o.regionOpts...)
		if err != nil {
			return nil, err
		}
		regions[i] = r
	}
	var mass float64
	for _, spec := range specs {
		mass += spec.Prior
	}
	if mass <= 0 {
		return nil, newError(op, ErrDegenerateBelief, "every prior is zero")
	}

	s := &Scenario{regions: regions}
	s.trueRegion, s.trueLocation = sampleTarget(regions, src)
	return s, nil
}

// sampleTarget picks a region with a triangular distribution over [1, n+1)
// peaking in the middle, then a uniform coordinate inside it.
func sampleTarget(regions []*Region, src rand.Source) (int, Coord) {
	n := len(regions)
	tri := distuv.NewTriangle(1, float64(n+1), float64(n+2)/2, src)

	idx := int(tri.Rand())
	if idx < 1 {
		idx = 1
	}
	if idx > n {
		idx = n
	}

	g := regions[idx-1].geom
	rng := rand.New(src)
	return idx, Coord{
		X: g.UpperLeft.X + rng.IntN(g.Height),
		Y: g.UpperLeft.Y + rng.IntN(g.Width),
	}
}

// ConductSearch runs one partial search pass over region index and reports
// whether the target now lies in that region's searched set.
func (s *Scenario) ConductSearch(index int) (bool, error) {
	if index < 1 || index > len(s.regions) {
		return false, newError("ConductSearch", ErrRegionNotFound, "index %d outside [1, %d]", index, len(s.regions))
	}
	r := s.regions[index-1]
	r.PerformPartialSearch()
	return r.ContainsSearched(s.trueLocation), nil
}

// ReviseProbabilities recomputes every region's posterior.
func (s *Scenario) ReviseProbabilities() error {
	return Revise(s.regions)
}

// Regions returns the number of regions.
func (s *Scenario) Regions() int {
	return len(s.regions)
}

// Probabilities returns the current posteriors ordered by region index.
func (s *Scenario) Probabilities() []float64 {
	out := make([]float64, len(s.regions))
	for i, r := range s.regions {
		out[i] = r.probability
	}
	return out
}

// Snapshot copies the state of every region ordered by index.
func (s *Scenario) Snapshot(withCoords bool) []RegionSnapshot {
	out := make([]RegionSnapshot, len(s.regions))
	for i, r := range s.regions {
		out[i] = r.Snapshot(withCoords)
	}
	return out
}

// TrueLocation returns the hidden target location. Search logic never reads
// it; it is exposed for renderers once the target has been found.
func (s *Scenario) TrueLocation() Coord {
	return s.trueLocation
}

// TrueRegion returns the 1-based index of the region the target was placed in.
func (s *Scenario) TrueRegion() int {
	return s.trueRegion
}
