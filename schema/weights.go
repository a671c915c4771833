package schema

import (
	"fmt"
	"math"
)

// WeightTolerance is the allowed deviation from 1.0 for a weight sum.
const WeightTolerance = 1e-6

// DefaultWeights returns a fresh copy of the preset overall-score weights.
func DefaultWeights() map[MetricName]float64 {
	return map[MetricName]float64{
		CompetitionMetric: 0.20,
		SuccessMetric:     0.25,
		ROIMetric:         0.25,
		TimingMetric:      0.15,
		HiddenMetric:      0.15,
	}
}

// ValidateWeights checks that every key is a known metric, every weight is
// non-negative, and the sum is 1.0 within WeightTolerance.
func ValidateWeights(weights map[MetricName]float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("%w: no weights provided", ErrInvalidWeights)
	}

	var sum float64
	for name, w := range weights {
		if _, ok := ValidMetricNames[name]; !ok {
			return fmt.Errorf("%w: unknown metric %q", ErrInvalidWeights, name)
		}
		if w < 0 {
			return fmt.Errorf("%w: metric %q has negative weight %.4f", ErrInvalidWeights, name, w)
		}
		sum += w
	}

	if math.Abs(sum-1.0) > WeightTolerance {
		return fmt.Errorf("%w: weights must sum to 1.0, got %.6f", ErrInvalidWeights, sum)
	}
	return nil
}
