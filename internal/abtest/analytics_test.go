package abtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepflow/growth-engine/internal/kvstore"
)

func newTestAnalytics(t *testing.T, sinks ...Sink) *Analytics {
	t.Helper()
	registry := NewRegistry()
	require.NoError(t, registry.Register(DefaultLandingTest()))
	return NewAnalytics(kvstore.NewMemoryStore(), registry, quietLogger(), sinks...)
}

func TestAssignVariantEmitsEventOnce(t *testing.T) {
	a := newTestAnalytics(t)
	a.Engine().SetRand(fixedRand(0.30))

	v := a.AssignVariant("landing_page_variants", "user_1")
	assert.Equal(t, "variant_a", v)

	events := a.Tracker().Events()
	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, EventVariantAssigned, e.Type)
	assert.Equal(t, "variant_a", e.VariantID)
	assert.Equal(t, "user_1", e.UserID)
	assert.NotEmpty(t, e.SessionID)
	assert.Equal(t, "Benefit-led Hero", e.Metadata["variant_name"])
	assert.Equal(t, false, e.Metadata["is_control"])
	assert.Equal(t, "persistent", e.Metadata["assignment_type"])
	assert.Equal(t, "1_month", e.Metadata["rotation_period"])

	// The sticky second call emits nothing.
	a.AssignVariant("landing_page_variants", "user_1")
	assert.Equal(t, 1, a.Tracker().Len())
}

func TestAssignVariantUnknownTestEmitsNothing(t *testing.T) {
	a := newTestAnalytics(t)

	v := a.AssignVariant("nope", "user_1")
	assert.Equal(t, ControlVariantID, v)
	assert.Zero(t, a.Tracker().Len())
}

func TestTrackConversionResolvesAssignmentFirst(t *testing.T) {
	a := newTestAnalytics(t)
	a.Engine().SetRand(fixedRand(0.30))

	a.TrackConversion("landing_page_variants", "user_1", 49, map[string]any{"plan": "starter"})

	events := a.Tracker().Events()
	require.Len(t, events, 2)

	// The assignment event precedes the conversion that references it.
	assert.Equal(t, EventVariantAssigned, events[0].Type)
	assert.Equal(t, EventConversion, events[1].Type)
	assert.Equal(t, events[0].VariantID, events[1].VariantID)
	assert.Equal(t, 49.0, events[1].Value)
	assert.Equal(t, "starter", events[1].Metadata["plan"])
}

func TestTrackEngagementMergesMetadata(t *testing.T) {
	a := newTestAnalytics(t)

	a.TrackEngagement("landing_page_variants", "user_1", "scroll_depth", map[string]any{"depth": 75})

	events := a.Tracker().Events()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, EventEngagement, last.Type)
	assert.Equal(t, "scroll_depth", last.Metadata["engagement_type"])
	assert.Equal(t, 75, last.Metadata["depth"])
}

func TestTestResultsUnknownTest(t *testing.T) {
	a := newTestAnalytics(t)
	_, err := a.TestResults("nope")
	assert.Error(t, err)
}

// Full scenario: visit -> assignment -> CTA conversion -> aggregated row.
func TestVisitToConversionScenario(t *testing.T) {
	a := newTestAnalytics(t)
	a.Engine().SetRand(fixedRand(0.30)) // forces variant_a

	userID := "user_scenario"
	a.TrackPageView("landing_page_variants", userID, "/")

	assigned := 0
	for _, e := range a.Tracker().Events() {
		if e.Type == EventVariantAssigned {
			assigned++
			assert.Equal(t, "variant_a", e.VariantID)
		}
	}
	assert.Equal(t, 1, assigned)

	a.TrackConversion("landing_page_variants", userID, 1, map[string]any{"conversion_type": "cta_click"})

	results, err := a.TestResults("landing_page_variants")
	require.NoError(t, err)

	var row *TestResult
	for i := range results {
		if results[i].VariantID == "variant_a" {
			row = &results[i]
		}
	}
	require.NotNil(t, row)
	assert.Equal(t, 1, row.TotalUsers)
	assert.Equal(t, 1, row.Conversions)
	assert.InDelta(t, 100.0, row.ConversionRate, 1e-9)
	assert.InDelta(t, 1.0, row.Revenue, 1e-9)
}
