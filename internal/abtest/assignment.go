package abtest

import (
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prepflow/growth-engine/internal/kvstore"
)

// AssignmentTTL is how long a sticky assignment is honored before the user
// is re-drawn. Mirrors the client's 1-month rotation period.
const AssignmentTTL = 30 * 24 * time.Hour

// Assignment is the persisted user→variant mapping. The JSON field names
// match the client's localStorage value shape exactly.
type Assignment struct {
	VariantID  string `json:"variantId"`
	AssignedAt int64  `json:"assignedAt"` // epoch milliseconds
	TestID     string `json:"testId"`
}

// Engine performs deterministic sticky variant assignment: a persisted,
// non-expired assignment always wins; otherwise a weighted draw over the
// test's traffic splits decides and is persisted.
//
// The storage key is scoped by user only (not user+test), so a user enrolled
// in two concurrent tests shares one slot. This matches the shipped client
// behavior and is preserved for parity with existing stored state.
type Engine struct {
	store    kvstore.Store
	registry *Registry
	log      *logrus.Logger

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewEngine(store kvstore.Store, registry *Registry, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
	}
	return &Engine{
		store:    store,
		registry: registry,
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

// SetRand replaces the random source. Used by tests and the simulate command
// to make draws reproducible.
func (e *Engine) SetRand(rng *rand.Rand) {
	e.mu.Lock()
	e.rng = rng
	e.mu.Unlock()
}

// SetClock replaces the time source for expiry tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	e.now = now
	e.mu.Unlock()
}

// Assign resolves the user's variant for a test. fresh is true when a new
// weighted draw was performed (and persisted); false when a sticky
// assignment was reused. For an unknown test it returns the control id
// without persisting anything.
func (e *Engine) Assign(testID, userID string) (variantID string, fresh bool) {
	test := e.registry.Get(testID)
	if test == nil {
		e.log.WithFields(logrus.Fields{"test_id": testID}).Warn("assignment requested for unknown test")
		return ControlVariantID, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	if a, ok := e.lookup(userID); ok {
		age := now.Sub(time.UnixMilli(a.AssignedAt))
		if age < AssignmentTTL {
			return a.VariantID, false
		}
		// Expired: clear lazily and fall through to a fresh draw.
		if err := e.store.Delete(kvstore.VariantKey(userID)); err != nil {
			e.log.WithError(err).Warn("failed to clear expired assignment")
		}
	}

	variantID = e.draw(test)
	e.persist(userID, Assignment{
		VariantID:  variantID,
		AssignedAt: now.UnixMilli(),
		TestID:     testID,
	})
	return variantID, true
}

// lookup reads the persisted assignment. Malformed JSON is treated the same
// as no assignment.
func (e *Engine) lookup(userID string) (Assignment, bool) {
	raw, err := e.store.Get(kvstore.VariantKey(userID))
	if err != nil {
		if err != kvstore.ErrNotFound {
			e.log.WithError(err).Warn("assignment storage read failed")
		}
		return Assignment{}, false
	}

	var a Assignment
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		e.log.WithError(err).Warn("discarding malformed persisted assignment")
		return Assignment{}, false
	}
	if a.VariantID == "" {
		return Assignment{}, false
	}
	return a, true
}

// draw performs the weighted selection: r uniform over [0,100), walk the
// variants accumulating traffic splits, first cumulative weight ≥ r wins.
// Falls back to control when the weights do not cover the draw.
func (e *Engine) draw(test *Test) string {
	r := e.rng.Float64() * 100
	var cumulative float64
	for _, v := range test.Variants {
		cumulative += v.TrafficSplit
		if r <= cumulative {
			return v.ID
		}
	}
	return ControlVariantID
}

func (e *Engine) persist(userID string, a Assignment) {
	raw, err := json.Marshal(a)
	if err != nil {
		e.log.WithError(err).Warn("failed to encode assignment")
		return
	}
	if err := e.store.Set(kvstore.VariantKey(userID), string(raw)); err != nil {
		e.log.WithError(err).Warn("assignment storage write failed, assignment is session-only")
	}
}
