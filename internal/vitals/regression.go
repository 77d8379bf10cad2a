package vitals

import (
	"sort"
	"time"
)

// Regression is raised when a signal degrades at least regressionThreshold
// against its rolling baseline.
type Regression struct {
	Signal       string  `json:"signal"`
	Page         string  `json:"page"`
	Current      float64 `json:"current"`
	Baseline     float64 `json:"baseline"`
	DeviationPct float64 `json:"deviationPct"`
}

const (
	// regressionThreshold is the minimum relative degradation flagged.
	regressionThreshold = 0.15
	// baselineSamples is how many recent samples form the baseline.
	baselineSamples = 20
	// baselineWindow bounds how old a baseline sample may be.
	baselineWindow = 24 * time.Hour
)

// Baseline returns the rolling baseline for a signal on a page: the median
// of the last baselineSamples observations inside baselineWindow. Returns 0
// when there is not enough history to judge (fewer than 3 samples).
func (c *Collector) Baseline(signal, page string) float64 {
	h := c.History(signal, page, baselineWindow, baselineSamples)
	if len(h) < 3 {
		return 0
	}
	return median(h)
}

// DetectRegression compares a fresh observation against the baseline. All
// vitals are lower-is-better, so only upward deviation counts.
func (c *Collector) DetectRegression(signal, page string, current float64) *Regression {
	baseline := c.Baseline(signal, page)
	if baseline <= 0 || current <= baseline {
		return nil
	}

	deviation := (current - baseline) / baseline
	if deviation < regressionThreshold {
		return nil
	}
	return &Regression{
		Signal:       signal,
		Page:         page,
		Current:      current,
		Baseline:     baseline,
		DeviationPct: deviation * 100,
	}
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
