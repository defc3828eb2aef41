package search

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Strategy is a deterministic policy mapping region posteriors to the regions
// searched in the next round.
type Strategy int

const (
	// Concentrate searches the most probable region twice.
	Concentrate Strategy = iota + 1
	// Split searches every region but the least probable once each.
	Split
)

type selector func(probabilities []float64) []int

var (
	strategyNames = map[Strategy]string{
		Concentrate: "concentrate",
		Split:       "split",
	}
	selectors = map[Strategy]selector{
		Concentrate: selectConcentrate,
		Split:       selectSplit,
	}
)

// Strategies lists the built-in strategies in a stable order.
func Strategies() []Strategy {
	return []Strategy{Concentrate, Split}
}

// ParseStrategy resolves a strategy name, ignoring case and surrounding space.
func ParseStrategy(name string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for s, n := range strategyNames {
		if n == key {
			return s, nil
		}
	}
	return 0, newError("ParseStrategy", ErrInvalidStrategy, "unknown strategy %q", name)
}

// String returns the strategy name.
func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if _, ok := strategyNames[s]; !ok {
		return nil, newError("MarshalText", ErrInvalidStrategy, "unknown strategy value %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Validate reports ErrInvalidStrategy for values outside the enumeration.
func (s Strategy) Validate() error {
	if _, ok := selectors[s]; !ok {
		return newError("Validate", ErrInvalidStrategy, "unknown strategy value %d", int(s))
	}
	return nil
}

// Choose returns the 1-based region indices to search this round, in search
// order. Ties between regions resolve to the lowest index.
func (s Strategy) Choose(probabilities []float64) ([]int, error) {
	sel, ok := selectors[s]
	if !ok {
		return nil, newError("Choose", ErrInvalidStrategy, "unknown strategy value %d", int(s))
	}
	if len(probabilities) == 0 {
		return nil, newError("Choose", ErrEmptyScenario, "no regions to choose from")
	}
	return sel(probabilities), nil
}

func selectConcentrate(p []float64) []int {
	best := floats.MaxIdx(p) + 1
	return []int{best, best}
}

func selectSplit(p []float64) []int {
	if len(p) == 1 {
		return []int{1}
	}
	worst := floats.MinIdx(p)
	out := make([]int, 0, len(p)-1)
	for i := range p {
		if i != worst {
			out = append(out, i+1)
		}
	}
	return out
}
