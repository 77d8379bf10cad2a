// Package stats provides the real statistics behind the dashboard's
// confidence column: Wilson score intervals and a two-proportion z-test.
// These are kept separate from the aggregator's parity heuristic and are
// never folded into TestResult.StatisticalSignificance.
package stats

import "math"

// WilsonInterval returns the Wilson score confidence interval for a binomial
// proportion, clamped to [0, 1]. It behaves better than the normal
// approximation at the small sample sizes a young test accumulates.
func WilsonInterval(successes, trials int, confidence float64) (lower, upper float64) {
	if trials == 0 {
		return 0, 0
	}

	z := ZScore(confidence)
	p := float64(successes) / float64(trials)
	n := float64(trials)

	denom := 1 + z*z/n
	center := (p + z*z/(2*n)) / denom
	spread := (z / denom) * math.Sqrt(p*(1-p)/n+z*z/(4*n*n))

	lower = math.Max(0, center-spread)
	upper = math.Min(1, center+spread)
	return lower, upper
}

// ZScore returns the z-score for a confidence level, using precomputed
// values for the levels the dashboard offers.
func ZScore(confidence float64) float64 {
	switch {
	case confidence >= 0.99:
		return 2.576
	case confidence >= 0.95:
		return 1.96
	case confidence >= 0.90:
		return 1.645
	case confidence >= 0.85:
		return 1.44
	case confidence >= 0.80:
		return 1.28
	default:
		return 1.0
	}
}
