package montecarlo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogramSummary(t *testing.T) {
	tests := []struct {
		name string
		hist Histogram
		want Summary
	}{
		{
			name: "empty",
			hist: Histogram{},
			want: Summary{},
		},
		{
			name: "single trial",
			hist: Histogram{4: 1},
			want: Summary{Trials: 1, Min: 4, Max: 4, Mean: 4, Median: 4, P90: 4},
		},
		{
			name: "skewed",
			hist: Histogram{1: 1, 2: 3, 5: 1},
			want: Summary{Trials: 5, Min: 1, Max: 5, Mean: 2.4, Median: 2, P90: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.hist.Summary()
			assert.Equal(t, tt.want.Trials, got.Trials)
			assert.Equal(t, tt.want.Min, got.Min)
			assert.Equal(t, tt.want.Max, got.Max)
			assert.InDelta(t, tt.want.Mean, got.Mean, 1e-12)
			assert.InDelta(t, tt.want.Median, got.Median, 1e-12)
			assert.InDelta(t, tt.want.P90, got.P90, 1e-12)
		})
	}
}

func TestHistogramStdDev(t *testing.T) {
	// Unbiased: values 1,1,3,3 have mean 2 and variance 4/3.
	s := Histogram{1: 2, 3: 2}.Summary()
	assert.InDelta(t, 2.0, s.Mean, 1e-12)
	assert.InDelta(t, 1.1547005383792515, s.StdDev, 1e-12)
}

func TestHistogramMergeAndRounds(t *testing.T) {
	h := Histogram{}
	h.Add(3)
	h.Add(1)
	h.Add(3)
	h.Merge(Histogram{2: 4, 3: 1})

	assert.Equal(t, []int{1, 2, 3}, h.Rounds())
	assert.Equal(t, 8, h.Total())
	assert.Equal(t, 3, h[3])
}

func TestHistogramJSON(t *testing.T) {
	out, err := json.Marshal(Histogram{1: 5, 12: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":5,"12":2}`, string(out))
}
