package abtest

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/prepflow/growth-engine/internal/identity"
	"github.com/prepflow/growth-engine/internal/kvstore"
)

// Analytics ties the registry, assignment engine, identity manager and
// tracker into one service. It is constructed once at boot and passed by
// reference; there are no package-level singletons so tests can run
// isolated instances side by side.
type Analytics struct {
	registry *Registry
	engine   *Engine
	tracker  *Tracker
	identity *identity.Manager
	log      *logrus.Logger
}

func NewAnalytics(store kvstore.Store, registry *Registry, log *logrus.Logger, sinks ...Sink) *Analytics {
	if log == nil {
		log = logrus.New()
	}
	return &Analytics{
		registry: registry,
		engine:   NewEngine(store, registry, log),
		tracker:  NewTracker(log, sinks...),
		identity: identity.NewManager(store, log),
		log:      log,
	}
}

// Registry exposes the test registry.
func (a *Analytics) Registry() *Registry { return a.registry }

// Engine exposes the assignment engine (tests and the simulate command).
func (a *Analytics) Engine() *Engine { return a.engine }

// Tracker exposes the event tracker.
func (a *Analytics) Tracker() *Tracker { return a.tracker }

// Identity exposes the session/user id manager.
func (a *Analytics) Identity() *identity.Manager { return a.identity }

// AssignVariant resolves the user's sticky variant for a test, persisting a
// fresh weighted draw when none is held. A fresh draw emits a
// variant_assigned event; a sticky hit emits nothing. The assignment is
// always persisted before the event referencing it is tracked.
func (a *Analytics) AssignVariant(testID, userID string) string {
	variantID, fresh := a.engine.Assign(testID, userID)
	if !fresh {
		return variantID
	}

	test := a.registry.Get(testID)
	if test == nil {
		return variantID
	}
	v, _ := test.Variant(variantID)

	a.tracker.Track(Event{
		TestID:    testID,
		VariantID: variantID,
		UserID:    userID,
		SessionID: a.identity.SessionID(),
		Type:      EventVariantAssigned,
		Metadata: map[string]any{
			"variant_name":    v.Name,
			"is_control":      v.IsControl,
			"assignment_type": "persistent",
			"rotation_period": "1_month",
		},
	})
	return variantID
}

// TrackEvent records an arbitrary event, filling in the session id when the
// caller left it empty.
func (a *Analytics) TrackEvent(e Event) {
	if e.SessionID == "" {
		e.SessionID = a.identity.SessionID()
	}
	a.tracker.Track(e)
}

// TrackPageView records a page_view for the user's current variant.
func (a *Analytics) TrackPageView(testID, userID, page string) {
	variantID := a.AssignVariant(testID, userID)
	a.TrackEvent(Event{
		TestID:    testID,
		VariantID: variantID,
		UserID:    userID,
		Type:      EventPageView,
		Metadata:  map[string]any{"page": page},
	})
}

// TrackConversion records a conversion with an optional monetary value. The
// variant is resolved through the engine first so the referenced assignment
// is always persisted before the event exists.
func (a *Analytics) TrackConversion(testID, userID string, value float64, metadata map[string]any) {
	variantID := a.AssignVariant(testID, userID)
	a.TrackEvent(Event{
		TestID:    testID,
		VariantID: variantID,
		UserID:    userID,
		Type:      EventConversion,
		Value:     value,
		Metadata:  metadata,
	})
}

// TrackEngagement records an engagement event, merging the engagement type
// into the metadata.
func (a *Analytics) TrackEngagement(testID, userID, engagementType string, metadata map[string]any) {
	variantID := a.AssignVariant(testID, userID)

	merged := map[string]any{"engagement_type": engagementType}
	for k, v := range metadata {
		merged[k] = v
	}
	a.TrackEvent(Event{
		TestID:    testID,
		VariantID: variantID,
		UserID:    userID,
		Type:      EventEngagement,
		Metadata:  merged,
	})
}

// TestResults aggregates the event log for one test.
func (a *Analytics) TestResults(testID string) ([]TestResult, error) {
	test := a.registry.Get(testID)
	if test == nil {
		return nil, fmt.Errorf("test %q not found", testID)
	}
	return Aggregate(test, a.tracker.EventsForTest(testID)), nil
}
