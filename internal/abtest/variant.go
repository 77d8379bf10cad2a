package abtest

import (
	"fmt"
	"sort"
	"sync"
)

// ControlVariantID is the fallback returned when no test is registered or a
// weighted draw falls through malformed weights.
const ControlVariantID = "control"

// Variant is one arm of an experiment. Immutable once registered.
type Variant struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Description  string  `json:"description,omitempty" yaml:"description,omitempty"`
	TrafficSplit float64 `json:"trafficSplit" yaml:"split"`
	IsControl    bool    `json:"isControl" yaml:"control"`
}

// Test is a named experiment with its weighted variants.
type Test struct {
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Variants []Variant `json:"variants" yaml:"variants"`
}

// Variant returns the variant with the given id, if present.
func (t *Test) Variant(id string) (Variant, bool) {
	for _, v := range t.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// Registry holds the tests known to this process. Tests are defined at boot
// (config or CLI) and treated as immutable afterwards.
type Registry struct {
	mu    sync.RWMutex
	tests map[string]*Test
}

func NewRegistry() *Registry {
	return &Registry{tests: make(map[string]*Test)}
}

// Register adds a test after validating its variant list. Weights are
// expected to sum to 100; a short sum is allowed (the draw then falls back
// to control) but at least two variants are required.
func (r *Registry) Register(t Test) error {
	if t.ID == "" {
		return fmt.Errorf("test id is required")
	}
	if len(t.Variants) < 2 {
		return fmt.Errorf("test %q needs at least 2 variants", t.ID)
	}
	var total float64
	for _, v := range t.Variants {
		if v.ID == "" {
			return fmt.Errorf("test %q has a variant without an id", t.ID)
		}
		if v.TrafficSplit < 0 || v.TrafficSplit > 100 {
			return fmt.Errorf("test %q variant %q: traffic split must be 0-100", t.ID, v.ID)
		}
		total += v.TrafficSplit
	}
	if total > 100 {
		return fmt.Errorf("test %q: traffic splits sum to %.1f, must not exceed 100", t.ID, total)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tests[t.ID]; exists {
		return fmt.Errorf("test %q already registered", t.ID)
	}
	r.tests[t.ID] = &t
	return nil
}

// Get returns the registered test, or nil when unknown.
func (r *Registry) Get(testID string) *Test {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tests[testID]
}

// List returns all registered tests sorted by id.
func (r *Registry) List() []*Test {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tests := make([]*Test, 0, len(r.tests))
	for _, t := range r.tests {
		tests = append(tests, t)
	}
	sort.Slice(tests, func(i, j int) bool { return tests[i].ID < tests[j].ID })
	return tests
}

// DefaultLandingTest is the experiment shipped with the landing site: an
// even four-way split over the hero layout.
func DefaultLandingTest() Test {
	return Test{
		ID:   "landing_page_variants",
		Name: "Landing Page Variants",
		Variants: []Variant{
			{ID: "control", Name: "Original", TrafficSplit: 25, IsControl: true},
			{ID: "variant_a", Name: "Benefit-led Hero", TrafficSplit: 25},
			{ID: "variant_b", Name: "Social Proof Hero", TrafficSplit: 25},
			{ID: "variant_c", Name: "Pricing-first Hero", TrafficSplit: 25},
		},
	}
}
