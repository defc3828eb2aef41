package search

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Posterior applies Bayes' rule to a set of regions: region i keeps weight
// priors[i] * (1 - effectiveness[i]) and the weights are normalized to sum to 1.
func Posterior(priors, effectiveness []float64) ([]float64, error) {
	const op = "Posterior"

	if len(priors) == 0 {
		return nil, newError(op, ErrEmptyScenario, "no regions to revise")
	}
	if len(priors) != len(effectiveness) {
		return nil, newError(op, ErrInvalidGeometry, "%d priors but %d effectiveness values", len(priors), len(effectiveness))
	}

	weights := make([]float64, len(priors))
	for i, p := range priors {
		weights[i] = p * (1 - effectiveness[i])
	}

	total := floats.Sum(weights)
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, newError(op, ErrDegenerateBelief, "normalization denominator is %v", total)
	}

	for i := range weights {
		weights[i] /= total
	}
	return weights, nil
}

// Revise overwrites each region's posterior from its fixed prior and its
// cumulative effectiveness. On error no region is modified.
func Revise(regions []*Region) error {
	priors := make([]float64, len(regions))
	eff := make([]float64, len(regions))
	for i, r := range regions {
		priors[i] = r.initialProbability
		eff[i] = r.effectiveness
	}

	posterior, err := Posterior(priors, eff)
	if err != nil {
		return err
	}
	for i, r := range regions {
		r.probability = posterior[i]
	}
	return nil
}
