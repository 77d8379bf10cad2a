package vitals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBudgetAtThresholdPasses(t *testing.T) {
	b := DefaultBudgets()

	// Exactly at budget is not a violation; only strictly over counts.
	m := Metrics{LCP: 2500, FID: 100, CLS: 0.1}
	report := b.CheckBudget(m, "landing")

	assert.True(t, report.Passed)
	assert.Empty(t, report.Violations)
	assert.Equal(t, 100, report.Score)
}

func TestCheckBudgetSeverityBuckets(t *testing.T) {
	b := DefaultBudgets()

	cases := []struct {
		name string
		lcp  float64
		want Severity
	}{
		{"just over", 2600, SeverityLow},        // ratio 1.04
		{"medium", 3200, SeverityMedium},        // ratio 1.28
		{"high", 4000, SeverityHigh},            // ratio 1.6
		{"double budget", 5000, SeverityCritical}, // ratio 2.0
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := b.CheckBudget(Metrics{LCP: tc.lcp}, "landing")
			require.Len(t, report.Violations, 1)
			assert.Equal(t, tc.want, report.Violations[0].Severity)
			assert.False(t, report.Passed)
		})
	}
}

func TestCheckBudgetScoreFloorsAtZero(t *testing.T) {
	b := DefaultBudgets()

	// Everything at 3x budget: all critical, score bottoms out at 0.
	m := Metrics{LCP: 7500, FID: 300, CLS: 0.3, FCP: 5400, TTI: 11400, TTFB: 2400, INP: 600}
	report := b.CheckBudget(m, "landing")

	assert.Equal(t, 0, report.Score)
	assert.Len(t, report.Violations, 7)
}

func TestCheckBudgetUnknownPageTypeUsesDefault(t *testing.T) {
	b := DefaultBudgets()

	// 2900 is over the default 2800 LCP budget but would differ on other tables.
	report := b.CheckBudget(Metrics{LCP: 2900}, "checkout")
	require.Len(t, report.Violations, 1)
	assert.Equal(t, SignalLCP, report.Violations[0].Signal)
	assert.Equal(t, 2800.0, report.Violations[0].Budget)
}

func TestCheckBudgetSkipsMissingSignals(t *testing.T) {
	b := DefaultBudgets()

	// Zero values mean "not collected" and are never violations.
	report := b.CheckBudget(Metrics{}, "landing")
	assert.True(t, report.Passed)
	assert.Equal(t, 100, report.Score)
}
