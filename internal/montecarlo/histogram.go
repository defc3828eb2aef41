package montecarlo

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Histogram maps a round count to the number of trials that found the target
// in exactly that many rounds.
type Histogram map[int]int

// Add records one trial that ended after rounds rounds.
func (h Histogram) Add(rounds int) {
	h[rounds]++
}

// Merge adds every count of o into h.
func (h Histogram) Merge(o Histogram) {
	for rounds, n := range o {
		h[rounds] += n
	}
}

// Total returns the number of recorded trials.
func (h Histogram) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// Rounds returns the recorded round counts in ascending order.
func (h Histogram) Rounds() []int {
	keys := make([]int, 0, len(h))
	for rounds := range h {
		keys = append(keys, rounds)
	}
	sort.Ints(keys)
	return keys
}

// Summary describes the distribution of rounds to find the target.
type Summary struct {
	Trials int     `json:"trials"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

// Summary computes weighted statistics over the histogram. An empty histogram
// yields the zero Summary.
func (h Histogram) Summary() Summary {
	keys := h.Rounds()
	if len(keys) == 0 {
		return Summary{}
	}

	x := make([]float64, len(keys))
	w := make([]float64, len(keys))
	for i, rounds := range keys {
		x[i] = float64(rounds)
		w[i] = float64(h[rounds])
	}

	s := Summary{
		Trials: h.Total(),
		Min:    keys[0],
		Max:    keys[len(keys)-1],
		Median: stat.Quantile(0.5, stat.Empirical, x, w),
		P90:    stat.Quantile(0.9, stat.Empirical, x, w),
	}
	if s.Trials > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(x, w)
	} else {
		s.Mean = x[0]
	}
	return s
}
