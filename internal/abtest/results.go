package abtest

import (
	"math"
	"sort"
)

// TestResult is the per-variant aggregate computed on demand from the event
// log. It is derived, never stored.
type TestResult struct {
	TestID                  string  `json:"testId"`
	VariantID               string  `json:"variantId"`
	TotalUsers              int     `json:"totalUsers"`
	Conversions             int     `json:"conversions"`
	ConversionRate          float64 `json:"conversionRate"`
	AverageOrderValue       float64 `json:"averageOrderValue"`
	Revenue                 float64 `json:"revenue"`
	StatisticalSignificance int     `json:"statisticalSignificance"`
}

// Aggregate computes one TestResult per registered variant of test from the
// given events, sorted descending by conversion rate.
//
// StatisticalSignificance is a deliberate approximation kept for parity with
// the existing dashboards: it compares per-event conversion rates (not
// per-user) between variant and control and scales the gap onto 0-100. It is
// not a hypothesis test; the stats package provides a real two-proportion
// z-test for views that want one.
func Aggregate(test *Test, events []Event) []TestResult {
	if test == nil {
		return nil
	}

	type tally struct {
		users       map[string]struct{}
		events      int
		conversions int
		revenue     float64
	}
	tallies := make(map[string]*tally, len(test.Variants))
	for _, v := range test.Variants {
		tallies[v.ID] = &tally{users: make(map[string]struct{})}
	}

	for _, e := range events {
		if e.TestID != test.ID {
			continue
		}
		tl, ok := tallies[e.VariantID]
		if !ok {
			continue
		}
		tl.events++
		if e.UserID != "" {
			tl.users[e.UserID] = struct{}{}
		}
		if e.Type == EventConversion {
			tl.conversions++
			tl.revenue += e.Value
		}
	}

	// Per-event control rate for the significance heuristic.
	controlRate := 0.0
	for _, v := range test.Variants {
		if v.IsControl || v.ID == ControlVariantID {
			tl := tallies[v.ID]
			if tl.events > 0 {
				controlRate = float64(tl.conversions) / float64(tl.events)
			}
			break
		}
	}

	results := make([]TestResult, 0, len(test.Variants))
	for _, v := range test.Variants {
		tl := tallies[v.ID]

		rate := 0.0
		if len(tl.users) > 0 {
			rate = float64(tl.conversions) / float64(len(tl.users)) * 100
		}
		aov := 0.0
		if tl.conversions > 0 {
			aov = tl.revenue / float64(tl.conversions)
		}

		eventRate := 0.0
		if tl.events > 0 {
			eventRate = float64(tl.conversions) / float64(tl.events)
		}
		significance := int(math.Round(math.Min(math.Abs(eventRate-controlRate)*100, 100)))

		results = append(results, TestResult{
			TestID:                  test.ID,
			VariantID:               v.ID,
			TotalUsers:              len(tl.users),
			Conversions:             tl.conversions,
			ConversionRate:          rate,
			AverageOrderValue:       aov,
			Revenue:                 tl.revenue,
			StatisticalSignificance: significance,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ConversionRate > results[j].ConversionRate
	})
	return results
}
