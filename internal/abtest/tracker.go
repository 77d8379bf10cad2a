package abtest

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Tracker appends events to the in-memory log and fans them out to the
// configured sinks. Tracking never fails from the caller's point of view: a
// sink error or panic is logged and swallowed so analytics can never break
// the page flow.
type Tracker struct {
	log   *logrus.Logger
	now   func() time.Time
	sinks []Sink

	mu     sync.RWMutex
	events []Event
}

func NewTracker(log *logrus.Logger, sinks ...Sink) *Tracker {
	if log == nil {
		log = logrus.New()
	}
	return &Tracker{log: log, now: time.Now, sinks: sinks}
}

// SetClock replaces the time source for tests.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

// Track records the event and forwards it to every sink. Missing id and
// timestamp fields are filled in.
func (t *Tracker) Track(e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = t.now()
	}

	t.mu.Lock()
	t.events = append(t.events, e)
	t.mu.Unlock()

	for _, s := range t.sinks {
		t.send(s, e)
	}
}

func (t *Tracker) send(s Sink, e Event) {
	defer func() {
		if r := recover(); r != nil {
			t.log.WithFields(logrus.Fields{"sink": s.Name(), "panic": r}).Error("sink panicked")
		}
	}()
	if err := s.Send(e); err != nil {
		t.log.WithFields(logrus.Fields{"sink": s.Name()}).WithError(err).Debug("sink send failed")
	}
}

// Events returns a copy of the full event log.
func (t *Tracker) Events() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// EventsForTest returns a copy of the events recorded for one test.
func (t *Tracker) EventsForTest(testID string) []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Event
	for _, e := range t.events {
		if e.TestID == testID {
			out = append(out, e)
		}
	}
	return out
}

// Len reports the number of tracked events.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.events)
}
