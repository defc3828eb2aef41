package search

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Bounds of the per-pass effectiveness factor drawn by PerformPartialSearch.
const (
	MinPassEffectiveness = 0.2
	MaxPassEffectiveness = 0.9
)

// Sampler draws the effectiveness factor of a single search pass.
// distuv.Uniform satisfies it.
type Sampler interface {
	Rand() float64
}

// RegionOption configures a Region.
type RegionOption func(*Region)

// WithEffectivenessSampler replaces the Uniform(0.2, 0.9) pass draw.
func WithEffectivenessSampler(s Sampler) RegionOption {
	return func(r *Region) {
		if s != nil {
			r.sampler = s
		}
	}
}

// Region is one rectangular search area. Its coordinates are partitioned into
// searched and not-searched sets for its whole lifetime.
type Region struct {
	index              int
	geom               Geometry
	initialProbability float64
	probability        float64
	effectiveness      float64

	// searched is indexed by row-major offset; notSearched holds the offsets
	// still to be examined, in no particular order.
	searched    []bool
	notSearched []int

	sampler Sampler
	src     rand.Source
}

// NewRegion builds region index (1-based) from spec. src drives both the
// effectiveness draw and the choice of coordinates.
func NewRegion(index int, spec RegionSpec, src rand.Source, opts ...RegionOption) (*Region, error) {
	if err := spec.validate(); err != nil {
		return nil, newError("NewRegion", ErrInvalidGeometry, "region %d: %v", index, err)
	}

	area := spec.Area()
	r := &Region{
		index:              index,
		geom:               spec.Geometry,
		initialProbability: spec.Prior,
		probability:        spec.Prior,
		searched:           make([]bool, area),
		notSearched:        make([]int, area),
		src:                src,
		sampler: distuv.Uniform{
			Min: MinPassEffectiveness,
			Max: MaxPassEffectiveness,
			Src: src,
		},
	}
	for i := range r.notSearched {
		r.notSearched[i] = i
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// PerformPartialSearch examines ceil(e * |not searched|) coordinates chosen
// uniformly without replacement, where e is a fresh pass effectiveness, and
// recomputes the cumulative effectiveness. An exhausted region is a no-op.
func (r *Region) PerformPartialSearch() {
	remaining := len(r.notSearched)
	k := int(math.Ceil(r.sampler.Rand() * float64(remaining)))
	if k > remaining {
		k = remaining
	}

	if k > 0 {
		picks := make([]int, k)
		sampleuv.WithoutReplacement(picks, remaining, r.src)

		// Swap-delete from the highest position down so pending picks stay put.
		sort.Sort(sort.Reverse(sort.IntSlice(picks)))
		last := remaining
		for _, pos := range picks {
			r.searched[r.notSearched[pos]] = true
			last--
			r.notSearched[pos] = r.notSearched[last]
		}
		r.notSearched = r.notSearched[:last]
	}

	r.effectiveness = 1 - float64(len(r.notSearched))/float64(r.geom.Area())
}

// ContainsSearched reports whether c has been examined.
func (r *Region) ContainsSearched(c Coord) bool {
	if !r.geom.Contains(c) {
		return false
	}
	return r.searched[r.geom.offset(c)]
}

// Index returns the 1-based region index.
func (r *Region) Index() int { return r.index }

// Geometry returns the region rectangle.
func (r *Region) Geometry() Geometry { return r.geom }

// InitialProbability returns the fixed prior.
func (r *Region) InitialProbability() float64 { return r.initialProbability }

// Probability returns the current posterior.
func (r *Region) Probability() float64 { return r.probability }

// Effectiveness returns the cumulative fraction of the region examined.
func (r *Region) Effectiveness() float64 { return r.effectiveness }

// SearchedCount returns the size of the searched set.
func (r *Region) SearchedCount() int { return r.geom.Area() - len(r.notSearched) }

// NotSearchedCount returns the size of the not-searched set.
func (r *Region) NotSearchedCount() int { return len(r.notSearched) }

// Searched returns the searched coordinates in row-major order.
func (r *Region) Searched() []Coord {
	out := make([]Coord, 0, r.SearchedCount())
	for off, done := range r.searched {
		if done {
			out = append(out, r.geom.coord(off))
		}
	}
	return out
}

// NotSearched returns the coordinates not yet examined in row-major order.
func (r *Region) NotSearched() []Coord {
	out := make([]Coord, 0, len(r.notSearched))
	for off, done := range r.searched {
		if !done {
			out = append(out, r.geom.coord(off))
		}
	}
	return out
}

// RegionSnapshot is a read-only copy of a region's state for renderers.
type RegionSnapshot struct {
	Index              int      `json:"index"`
	Geometry           Geometry `json:"geometry"`
	InitialProbability float64  `json:"initial_probability"`
	Probability        float64  `json:"probability"`
	Effectiveness      float64  `json:"effectiveness"`
	SearchedCount      int      `json:"searched_count"`
	NotSearchedCount   int      `json:"not_searched_count"`
	Searched           []Coord  `json:"searched,omitempty"`
	NotSearched        []Coord  `json:"not_searched,omitempty"`
}

// Snapshot copies the region state. Coordinate sets are only included when
// withCoords is set.
func (r *Region) Snapshot(withCoords bool) RegionSnapshot {
	snap := RegionSnapshot{
		Index:              r.index,
		Geometry:           r.geom,
		InitialProbability: r.initialProbability,
		Probability:        r.probability,
		Effectiveness:      r.effectiveness,
		SearchedCount:      r.SearchedCount(),
		NotSearchedCount:   r.NotSearchedCount(),
	}
	if withCoords {
		snap.Searched = r.Searched()
		snap.NotSearched = r.NotSearched()
	}
	return snap
}
