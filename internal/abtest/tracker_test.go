package abtest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	name   string
	events []Event
}

func (s *recordingSink) Name() string { return s.name }
func (s *recordingSink) Send(e Event) error {
	s.events = append(s.events, e)
	return nil
}

type failingSink struct{}

func (failingSink) Name() string     { return "failing" }
func (failingSink) Send(Event) error { return errors.New("sink down") }

type panickingSink struct{}

func (panickingSink) Name() string     { return "panicking" }
func (panickingSink) Send(Event) error { panic("boom") }

func TestTrackFillsDefaultsAndFansOut(t *testing.T) {
	rec := &recordingSink{name: "rec"}
	tr := NewTracker(quietLogger(), rec)

	tr.Track(Event{TestID: "t1", VariantID: "control", UserID: "u1", Type: EventPageView})

	require.Len(t, rec.events, 1)
	got := rec.events[0]
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, EventPageView, got.Type)

	require.Equal(t, 1, tr.Len())
	assert.Equal(t, got.ID, tr.Events()[0].ID)
}

func TestTrackSurvivesBrokenSinks(t *testing.T) {
	rec := &recordingSink{name: "rec"}
	tr := NewTracker(quietLogger(), failingSink{}, panickingSink{}, rec)

	assert.NotPanics(t, func() {
		tr.Track(Event{TestID: "t1", VariantID: "control", UserID: "u1", Type: EventConversion})
	})

	// The healthy sink after the broken ones still gets the event.
	assert.Len(t, rec.events, 1)
	assert.Equal(t, 1, tr.Len())
}

func TestEventsForTest(t *testing.T) {
	tr := NewTracker(quietLogger())

	tr.Track(Event{TestID: "t1", Type: EventPageView})
	tr.Track(Event{TestID: "t2", Type: EventPageView})
	tr.Track(Event{TestID: "t1", Type: EventConversion})

	assert.Len(t, tr.EventsForTest("t1"), 2)
	assert.Len(t, tr.EventsForTest("t2"), 1)
	assert.Empty(t, tr.EventsForTest("t3"))
}

func TestEventsReturnsCopy(t *testing.T) {
	tr := NewTracker(quietLogger())
	tr.Track(Event{TestID: "t1", Type: EventPageView})

	events := tr.Events()
	events[0].TestID = "mutated"

	assert.Equal(t, "t1", tr.Events()[0].TestID)
}
