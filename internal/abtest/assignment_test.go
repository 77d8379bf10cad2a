package abtest

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepflow/growth-engine/internal/kvstore"
)

// fixedSource makes rand.Float64 return v/2^63 deterministically.
type fixedSource struct{ v int64 }

func (s fixedSource) Int63() int64 { return s.v }
func (s fixedSource) Seed(int64)   {}

func fixedRand(f float64) *rand.Rand {
	return rand.New(fixedSource{v: int64(f * (1 << 63))})
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func fourWayRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Register(DefaultLandingTest()))
	return r
}

func TestAssignStickyAcrossCalls(t *testing.T) {
	store := kvstore.NewMemoryStore()
	e := NewEngine(store, fourWayRegistry(t), quietLogger())

	first, fresh := e.Assign("landing_page_variants", "user_1")
	assert.True(t, fresh)

	// Even with the random source forced to a different branch, the sticky
	// assignment wins.
	e.SetRand(fixedRand(0.99))
	for i := 0; i < 10; i++ {
		got, fresh := e.Assign("landing_page_variants", "user_1")
		assert.Equal(t, first, got)
		assert.False(t, fresh)
	}
}

func TestAssignWeightedDrawBranches(t *testing.T) {
	// r=30 lands past control's 25 into variant_a's [25,50] band.
	store := kvstore.NewMemoryStore()
	e := NewEngine(store, fourWayRegistry(t), quietLogger())
	e.SetRand(fixedRand(0.30))

	got, fresh := e.Assign("landing_page_variants", "user_1")
	assert.True(t, fresh)
	assert.Equal(t, "variant_a", got)
}

func TestAssignDistribution(t *testing.T) {
	store := kvstore.NewMemoryStore()
	e := NewEngine(store, fourWayRegistry(t), quietLogger())
	e.SetRand(rand.New(rand.NewSource(42)))

	const n = 100000
	counts := make(map[string]int)
	for i := 0; i < n; i++ {
		v, _ := e.Assign("landing_page_variants", fmt.Sprintf("user_%d", i))
		counts[v]++
	}

	// Each 25% arm within ±2 percentage points.
	for _, id := range []string{"control", "variant_a", "variant_b", "variant_c"} {
		share := float64(counts[id]) / n * 100
		assert.InDelta(t, 25.0, share, 2.0, "variant %s got %.2f%%", id, share)
	}
}

func TestAssignFallbackWhenWeightsShort(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Test{
		ID: "short_weights",
		Variants: []Variant{
			{ID: "a", TrafficSplit: 30},
			{ID: "b", TrafficSplit: 30},
		},
	}))

	e := NewEngine(kvstore.NewMemoryStore(), r, quietLogger())
	e.SetRand(fixedRand(0.90)) // r=90 exceeds the 60 cumulative weight

	got, fresh := e.Assign("short_weights", "user_1")
	assert.True(t, fresh)
	assert.Equal(t, ControlVariantID, got)
}

func TestAssignUnknownTest(t *testing.T) {
	store := kvstore.NewMemoryStore()
	e := NewEngine(store, NewRegistry(), quietLogger())

	got, fresh := e.Assign("nope", "user_1")
	assert.Equal(t, ControlVariantID, got)
	assert.False(t, fresh)

	// Nothing persisted for the unknown test.
	_, err := store.Get(kvstore.VariantKey("user_1"))
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestAssignExpiry(t *testing.T) {
	store := kvstore.NewMemoryStore()
	e := NewEngine(store, fourWayRegistry(t), quietLogger())

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.SetClock(func() time.Time { return base })

	first, fresh := e.Assign("landing_page_variants", "user_1")
	require.True(t, fresh)

	// 29 days later the assignment is retained.
	e.SetClock(func() time.Time { return base.Add(29 * 24 * time.Hour) })
	got, fresh := e.Assign("landing_page_variants", "user_1")
	assert.Equal(t, first, got)
	assert.False(t, fresh)

	// 31 days later it is discarded and re-drawn.
	e.SetClock(func() time.Time { return base.Add(31 * 24 * time.Hour) })
	_, fresh = e.Assign("landing_page_variants", "user_1")
	assert.True(t, fresh)

	// The persisted assignment carries the new timestamp.
	raw, err := store.Get(kvstore.VariantKey("user_1"))
	require.NoError(t, err)
	var a Assignment
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, base.Add(31*24*time.Hour).UnixMilli(), a.AssignedAt)
}

func TestAssignMalformedPersistedJSON(t *testing.T) {
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(kvstore.VariantKey("user_1"), "{not json"))

	e := NewEngine(store, fourWayRegistry(t), quietLogger())
	_, fresh := e.Assign("landing_page_variants", "user_1")
	assert.True(t, fresh, "malformed assignment should trigger a fresh draw")

	// The slot now holds valid JSON.
	raw, err := store.Get(kvstore.VariantKey("user_1"))
	require.NoError(t, err)
	var a Assignment
	assert.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, "landing_page_variants", a.TestID)
}

// The storage slot is keyed by user only, so concurrent tests share it: the
// second test sees the first test's assignment. This matches the shipped
// client storage layout.
func TestAssignSharesSlotAcrossTests(t *testing.T) {
	r := fourWayRegistry(t)
	require.NoError(t, r.Register(Test{
		ID: "second_test",
		Variants: []Variant{
			{ID: "control", TrafficSplit: 50, IsControl: true},
			{ID: "variant_x", TrafficSplit: 50},
		},
	}))

	e := NewEngine(kvstore.NewMemoryStore(), r, quietLogger())
	e.SetRand(fixedRand(0.30))

	first, _ := e.Assign("landing_page_variants", "user_1")
	require.Equal(t, "variant_a", first)

	got, fresh := e.Assign("second_test", "user_1")
	assert.Equal(t, first, got)
	assert.False(t, fresh)
}

func TestRegistryValidation(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register(Test{ID: "", Variants: []Variant{{ID: "a"}, {ID: "b"}}}))
	assert.Error(t, r.Register(Test{ID: "one_arm", Variants: []Variant{{ID: "a", TrafficSplit: 100}}}))
	assert.Error(t, r.Register(Test{ID: "over", Variants: []Variant{
		{ID: "a", TrafficSplit: 60},
		{ID: "b", TrafficSplit: 60},
	}}))

	require.NoError(t, r.Register(DefaultLandingTest()))
	assert.Error(t, r.Register(DefaultLandingTest()), "duplicate registration")
	assert.Len(t, r.List(), 1)
}
