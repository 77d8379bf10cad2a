package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepflow/growth-engine/internal/abtest"
)

func TestConfidenceClearWinner(t *testing.T) {
	// 10% vs 5% over 1000 trials each: very confident.
	confidence := Confidence(100, 1000, 50, 1000)
	assert.Greater(t, confidence, 0.95)
}

func TestConfidenceEqualRates(t *testing.T) {
	confidence := Confidence(50, 1000, 50, 1000)
	assert.InDelta(t, 0.5, confidence, 0.1)
}

func TestConfidenceSmallSample(t *testing.T) {
	// Different rates but tiny samples should not reach significance.
	confidence := Confidence(5, 20, 2, 20)
	assert.Less(t, confidence, 0.95)
}

func TestConfidenceNoData(t *testing.T) {
	assert.Equal(t, 0.5, Confidence(0, 0, 0, 0))
	assert.Equal(t, 0.5, Confidence(10, 100, 0, 0))
}

func TestWilsonIntervalBounds(t *testing.T) {
	lower, upper := WilsonInterval(0, 0, 0.95)
	assert.Zero(t, lower)
	assert.Zero(t, upper)

	lower, upper = WilsonInterval(5, 10, 0.95)
	assert.Greater(t, lower, 0.0)
	assert.Less(t, upper, 1.0)
	assert.Less(t, lower, 0.5)
	assert.Greater(t, upper, 0.5)

	// Extremes stay clamped to [0, 1].
	lower, _ = WilsonInterval(0, 10, 0.95)
	assert.GreaterOrEqual(t, lower, 0.0)
	_, upper = WilsonInterval(10, 10, 0.95)
	assert.LessOrEqual(t, upper, 1.0)
}

func TestWilsonIntervalNarrowsWithSamples(t *testing.T) {
	lo1, hi1 := WilsonInterval(5, 10, 0.95)
	lo2, hi2 := WilsonInterval(500, 1000, 0.95)
	assert.Less(t, hi2-lo2, hi1-lo1)
}

func TestCompareChallengerLeads(t *testing.T) {
	results := []abtest.TestResult{
		{VariantID: "variant_a", TotalUsers: 1000, Conversions: 100, ConversionRate: 10},
		{VariantID: "control", TotalUsers: 1000, Conversions: 50, ConversionRate: 5},
	}

	cmp := Compare(results)
	assert.Equal(t, "variant_a", cmp.LeadingVariantID)
	assert.True(t, cmp.Confident)
	assert.Greater(t, cmp.ConfidenceLevel, 0.95)
	require.Contains(t, cmp.Intervals, "variant_a")
	require.Contains(t, cmp.Intervals, "control")
}

func TestCompareControlLeads(t *testing.T) {
	results := []abtest.TestResult{
		{VariantID: "control", TotalUsers: 1000, Conversions: 100, ConversionRate: 10},
		{VariantID: "variant_a", TotalUsers: 1000, Conversions: 50, ConversionRate: 5},
	}

	cmp := Compare(results)
	assert.Equal(t, "control", cmp.LeadingVariantID)
	assert.Greater(t, cmp.ConfidenceLevel, 0.95)
}

func TestCompareEmpty(t *testing.T) {
	cmp := Compare(nil)
	assert.Empty(t, cmp.LeadingVariantID)
	assert.Equal(t, 0.5, cmp.ConfidenceLevel)
	assert.False(t, cmp.Confident)
}
