package engine

import "github.com/rsinha/backfolio/internal/core"

// Allocate converts a ranked selection into normalized weights aligned with
// the selection order. Weights always sum to 1 for a non-empty selection.
//
// Market-cap and ROCE sizing fall back to equal weight when the denominator
// is not strictly positive or any key is negative; the fallback is a
// documented policy, not an error.
func Allocate(selection Selection, method core.SizingMethod) []float64 {
	if len(selection) == 0 {
		return nil
	}

	switch method {
	case core.SizingMarketCap:
		return proportional(selection, func(f core.Fundamentals) float64 { return f.MarketCap })
	case core.SizingROCE:
		return proportional(selection, func(f core.Fundamentals) float64 { return f.ROCE })
	default:
		return equalWeights(len(selection))
	}
}

func proportional(selection Selection, key func(core.Fundamentals) float64) []float64 {
	total := 0.0
	for _, f := range selection {
		k := key(f)
		if k < 0 {
			return equalWeights(len(selection))
		}
		total += k
	}
	if total <= 0 {
		return equalWeights(len(selection))
	}

	weights := make([]float64, len(selection))
	for i, f := range selection {
		weights[i] = key(f) / total
	}
	return weights
}

func equalWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1 / float64(n)
	}
	return weights
}
