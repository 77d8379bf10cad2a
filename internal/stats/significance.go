package stats

import (
	"math"

	"github.com/prepflow/growth-engine/internal/abtest"
)

// Comparison summarizes how confidently the leading variant beats control.
type Comparison struct {
	LeadingVariantID string
	ConfidenceLevel  float64 // 0-1 that the leader's rate is higher
	Confident        bool    // >= 95%
	Intervals        map[string]Interval
}

// Interval is a variant's 95% Wilson CI over its per-user conversion rate.
type Interval struct {
	Lower float64
	Upper float64
}

// Confidence runs a two-proportion z-test and returns the confidence level
// (0-1) that proportion A exceeds proportion B. With no data on either side
// it returns 0.5.
func Confidence(aSuccess, aTrials, bSuccess, bTrials int) float64 {
	if aTrials == 0 || bTrials == 0 {
		return 0.5
	}

	pA := float64(aSuccess) / float64(aTrials)
	pB := float64(bSuccess) / float64(bTrials)

	// Pooled proportion under the null hypothesis pA == pB.
	pooled := float64(aSuccess+bSuccess) / float64(aTrials+bTrials)
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(aTrials) + 1/float64(bTrials)))
	if se == 0 {
		switch {
		case pA > pB:
			return 1.0
		case pA < pB:
			return 0.0
		default:
			return 0.5
		}
	}

	z := (pA - pB) / se
	return normalCDF(z)
}

// Compare evaluates aggregated results against the control row. Results must
// come from one test; the slice order (rate-descending) is preserved.
func Compare(results []abtest.TestResult) Comparison {
	cmp := Comparison{Intervals: make(map[string]Interval, len(results))}
	if len(results) == 0 {
		cmp.ConfidenceLevel = 0.5
		return cmp
	}

	var control *abtest.TestResult
	for i := range results {
		r := &results[i]
		lo, hi := WilsonInterval(r.Conversions, r.TotalUsers, 0.95)
		cmp.Intervals[r.VariantID] = Interval{Lower: lo, Upper: hi}
		if r.VariantID == abtest.ControlVariantID {
			control = r
		}
	}

	// Results arrive rate-descending, so the leader is the first row.
	leader := results[0]
	cmp.LeadingVariantID = leader.VariantID

	if control == nil || leader.VariantID == control.VariantID {
		// Control leads (or is absent): report confidence that the best
		// challenger has not beaten it.
		if len(results) < 2 || control == nil {
			cmp.ConfidenceLevel = 0.5
			return cmp
		}
		challenger := results[0]
		if challenger.VariantID == control.VariantID {
			challenger = results[1]
		}
		cmp.ConfidenceLevel = Confidence(
			control.Conversions, control.TotalUsers,
			challenger.Conversions, challenger.TotalUsers,
		)
	} else {
		cmp.ConfidenceLevel = Confidence(
			leader.Conversions, leader.TotalUsers,
			control.Conversions, control.TotalUsers,
		)
	}

	cmp.Confident = cmp.ConfidenceLevel >= 0.95
	return cmp
}

// normalCDF approximates the standard normal CDF using the Abramowitz and
// Stegun 7.1.26 error-function expansion.
func normalCDF(x float64) float64 {
	const (
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
		p  = 0.3275911
	)

	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	x = math.Abs(x) / math.Sqrt2

	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)

	return 0.5 * (1.0 + sign*y)
}
