package search

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSampler always returns the same pass effectiveness.
type fixedSampler float64

func (f fixedSampler) Rand() float64 { return float64(f) }

func square(x, y, side int, prior float64) RegionSpec {
	return RegionSpec{
		Geometry: Geometry{UpperLeft: Coord{X: x, Y: y}, Height: side, Width: side},
		Prior:    prior,
	}
}

func TestNewRegion(t *testing.T) {
	tests := []struct {
		name    string
		spec    RegionSpec
		wantErr bool
	}{
		{name: "valid", spec: square(0, 0, 10, 0.5)},
		{name: "zero prior", spec: square(0, 0, 10, 0)},
		{name: "unit prior", spec: square(0, 0, 10, 1)},
		{name: "zero height", spec: RegionSpec{Geometry: Geometry{Height: 0, Width: 5}, Prior: 0.1}, wantErr: true},
		{name: "negative width", spec: RegionSpec{Geometry: Geometry{Height: 5, Width: -1}, Prior: 0.1}, wantErr: true},
		{name: "prior above one", spec: square(0, 0, 10, 1.5), wantErr: true},
		{name: "negative prior", spec: square(0, 0, 10, -0.1), wantErr: true},
		{name: "largest allowed", spec: RegionSpec{Geometry: Geometry{Height: MaxRegionArea / 4, Width: 4}, Prior: 0.1}},
		{name: "one cell too many", spec: RegionSpec{Geometry: Geometry{Height: MaxRegionArea/4 + 1, Width: 4}, Prior: 0.1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegion(1, tt.spec, rand.NewPCG(1, 2))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidGeometry)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, r.Index())
			assert.Equal(t, tt.spec.Prior, r.InitialProbability())
			assert.Equal(t, tt.spec.Prior, r.Probability())
			assert.Zero(t, r.Effectiveness())
			assert.Zero(t, r.SearchedCount())
			assert.Equal(t, tt.spec.Area(), r.NotSearchedCount())
		})
	}
}

func TestPerformPartialSearchForcedHalf(t *testing.T) {
	r, err := NewRegion(1, square(80, 255, 50, 0.5), rand.NewPCG(7, 7), WithEffectivenessSampler(fixedSampler(0.5)))
	require.NoError(t, err)

	r.PerformPartialSearch()

	assert.Equal(t, 1250, r.SearchedCount())
	assert.Equal(t, 1250, r.NotSearchedCount())
	assert.Equal(t, 0.5, r.Effectiveness())
	assert.Len(t, r.Searched(), 1250)
}

func TestPerformPartialSearchPartition(t *testing.T) {
	spec := square(10, 20, 13, 0.3)
	r, err := NewRegion(2, spec, rand.NewPCG(42, 1))
	require.NoError(t, err)

	prev := r.Effectiveness()
	for pass := 0; pass < 40; pass++ {
		r.PerformPartialSearch()

		searched := r.Searched()
		notSearched := r.NotSearched()
		require.Equal(t, spec.Area(), len(searched)+len(notSearched), "pass %d", pass)

		seen := make(map[Coord]bool, spec.Area())
		for _, c := range searched {
			require.True(t, spec.Contains(c))
			require.True(t, r.ContainsSearched(c))
			seen[c] = true
		}
		for _, c := range notSearched {
			require.True(t, spec.Contains(c))
			require.False(t, seen[c], "coordinate %v in both sets", c)
			require.False(t, r.ContainsSearched(c))
			seen[c] = true
		}
		require.Len(t, seen, spec.Area())

		require.GreaterOrEqual(t, r.Effectiveness(), prev)
		if r.Effectiveness() == 1 {
			require.Zero(t, r.NotSearchedCount())
		} else {
			require.NotZero(t, r.NotSearchedCount())
		}
		prev = r.Effectiveness()
	}
	assert.Equal(t, 1.0, r.Effectiveness(), "40 passes of at least 20%% exhaust a 169 cell region")
}

func TestPerformPartialSearchExhausted(t *testing.T) {
	r, err := NewRegion(1, square(0, 0, 4, 1), rand.NewPCG(3, 3), WithEffectivenessSampler(fixedSampler(1)))
	require.NoError(t, err)

	r.PerformPartialSearch()
	assert.Equal(t, 1.0, r.Effectiveness())
	assert.Zero(t, r.NotSearchedCount())

	// No coordinates left: the pass selects nothing.
	r.PerformPartialSearch()
	assert.Equal(t, 1.0, r.Effectiveness())
	assert.Equal(t, 16, r.SearchedCount())
}

func TestPerformPartialSearchZeroFactor(t *testing.T) {
	r, err := NewRegion(1, square(0, 0, 4, 1), rand.NewPCG(3, 3), WithEffectivenessSampler(fixedSampler(0)))
	require.NoError(t, err)

	r.PerformPartialSearch()
	assert.Zero(t, r.Effectiveness())
	assert.Zero(t, r.SearchedCount())
}

func TestPerformPartialSearchDeterministic(t *testing.T) {
	run := func() []Coord {
		r, err := NewRegion(1, square(0, 0, 20, 0.4), rand.NewPCG(99, 5))
		require.NoError(t, err)
		r.PerformPartialSearch()
		r.PerformPartialSearch()
		return r.Searched()
	}
	assert.Equal(t, run(), run())
}

func TestContainsSearchedOutside(t *testing.T) {
	r, err := NewRegion(1, square(5, 5, 3, 0.2), rand.NewPCG(1, 1), WithEffectivenessSampler(fixedSampler(1)))
	require.NoError(t, err)
	r.PerformPartialSearch()

	assert.True(t, r.ContainsSearched(Coord{X: 5, Y: 5}))
	assert.True(t, r.ContainsSearched(Coord{X: 7, Y: 7}))
	assert.False(t, r.ContainsSearched(Coord{X: 8, Y: 5}))
	assert.False(t, r.ContainsSearched(Coord{X: 4, Y: 6}))
}

func TestRegionSnapshot(t *testing.T) {
	r, err := NewRegion(3, square(1, 2, 2, 0.25), rand.NewPCG(1, 1), WithEffectivenessSampler(fixedSampler(0.5)))
	require.NoError(t, err)
	r.PerformPartialSearch()

	snap := r.Snapshot(false)
	assert.Equal(t, 3, snap.Index)
	assert.Equal(t, 0.25, snap.InitialProbability)
	assert.Equal(t, 0.5, snap.Effectiveness)
	assert.Equal(t, 2, snap.SearchedCount)
	assert.Nil(t, snap.Searched)

	full := r.Snapshot(true)
	assert.Len(t, full.Searched, 2)
	assert.Len(t, full.NotSearched, 2)
}
