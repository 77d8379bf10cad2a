package abtest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func landingTest() *Test {
	t := DefaultLandingTest()
	return &t
}

func TestAggregateConversionRate(t *testing.T) {
	test := landingTest()

	// 10 distinct users viewed variant_a, 3 of them converted.
	var events []Event
	for i := 0; i < 10; i++ {
		events = append(events, Event{
			TestID: test.ID, VariantID: "variant_a",
			UserID: fmt.Sprintf("user_%d", i), Type: EventPageView,
		})
	}
	for i := 0; i < 3; i++ {
		events = append(events, Event{
			TestID: test.ID, VariantID: "variant_a",
			UserID: fmt.Sprintf("user_%d", i), Type: EventConversion, Value: 29,
		})
	}

	results := Aggregate(test, events)
	require.Len(t, results, 4)

	var row *TestResult
	for i := range results {
		if results[i].VariantID == "variant_a" {
			row = &results[i]
		}
	}
	require.NotNil(t, row)

	assert.Equal(t, 10, row.TotalUsers)
	assert.Equal(t, 3, row.Conversions)
	assert.InDelta(t, 30.0, row.ConversionRate, 1e-9)
	assert.InDelta(t, 87.0, row.Revenue, 1e-9)
	assert.InDelta(t, 29.0, row.AverageOrderValue, 1e-9)
}

func TestAggregateNoDivideByZero(t *testing.T) {
	results := Aggregate(landingTest(), nil)
	require.Len(t, results, 4)

	for _, r := range results {
		assert.Zero(t, r.TotalUsers)
		assert.Zero(t, r.Conversions)
		assert.Equal(t, 0.0, r.ConversionRate, "must be 0, never NaN")
		assert.Equal(t, 0.0, r.AverageOrderValue)
		assert.Zero(t, r.StatisticalSignificance)
	}
}

func TestAggregateSortedByRateDescending(t *testing.T) {
	test := landingTest()
	events := []Event{
		// variant_a: 1 user, 1 conversion -> 100%
		{TestID: test.ID, VariantID: "variant_a", UserID: "u1", Type: EventPageView},
		{TestID: test.ID, VariantID: "variant_a", UserID: "u1", Type: EventConversion},
		// control: 2 users, 1 conversion -> 50%
		{TestID: test.ID, VariantID: "control", UserID: "u2", Type: EventPageView},
		{TestID: test.ID, VariantID: "control", UserID: "u3", Type: EventPageView},
		{TestID: test.ID, VariantID: "control", UserID: "u2", Type: EventConversion},
	}

	results := Aggregate(test, events)
	require.Len(t, results, 4)
	assert.Equal(t, "variant_a", results[0].VariantID)
	assert.Equal(t, "control", results[1].VariantID)
}

func TestAggregateSignificanceHeuristic(t *testing.T) {
	test := landingTest()

	// control: 4 events, 1 conversion -> per-event rate 0.25
	// variant_a: 4 events, 3 conversions -> per-event rate 0.75
	// heuristic: |0.75-0.25|*100 = 50
	events := []Event{
		{TestID: test.ID, VariantID: "control", UserID: "c1", Type: EventPageView},
		{TestID: test.ID, VariantID: "control", UserID: "c2", Type: EventPageView},
		{TestID: test.ID, VariantID: "control", UserID: "c3", Type: EventPageView},
		{TestID: test.ID, VariantID: "control", UserID: "c1", Type: EventConversion},
		{TestID: test.ID, VariantID: "variant_a", UserID: "a1", Type: EventPageView},
		{TestID: test.ID, VariantID: "variant_a", UserID: "a1", Type: EventConversion},
		{TestID: test.ID, VariantID: "variant_a", UserID: "a2", Type: EventConversion},
		{TestID: test.ID, VariantID: "variant_a", UserID: "a3", Type: EventConversion},
	}

	results := Aggregate(test, events)
	byID := make(map[string]TestResult)
	for _, r := range results {
		byID[r.VariantID] = r
	}

	assert.Equal(t, 50, byID["variant_a"].StatisticalSignificance)
	assert.Equal(t, 0, byID["control"].StatisticalSignificance)
}

func TestAggregateSignificanceCapped(t *testing.T) {
	test := landingTest()

	// variant_a converts on every event while control never does; the gap
	// saturates the 0-100 scale.
	events := []Event{
		{TestID: test.ID, VariantID: "control", UserID: "c1", Type: EventPageView},
		{TestID: test.ID, VariantID: "variant_a", UserID: "a1", Type: EventConversion},
	}

	results := Aggregate(test, events)
	for _, r := range results {
		if r.VariantID == "variant_a" {
			assert.Equal(t, 100, r.StatisticalSignificance)
		}
	}
}

func TestAggregateIgnoresForeignEvents(t *testing.T) {
	test := landingTest()
	events := []Event{
		{TestID: "other_test", VariantID: "variant_a", UserID: "u1", Type: EventConversion},
		{TestID: test.ID, VariantID: "unregistered_variant", UserID: "u2", Type: EventConversion},
	}

	results := Aggregate(test, events)
	for _, r := range results {
		assert.Zero(t, r.Conversions)
	}
}
