package sink

import (
	"fmt"
	"sync"

	"github.com/prepflow/growth-engine/internal/abtest"
)

// GTagFunc mirrors the browser's window.gtag('event', name, params) hook.
type GTagFunc func(name string, params map[string]any)

// DataLayer mirrors window.dataLayer: an append-only list of pushed objects
// consumed by the GTM container.
type DataLayer struct {
	mu      sync.Mutex
	entries []map[string]any
}

func (d *DataLayer) Push(obj map[string]any) {
	d.mu.Lock()
	d.entries = append(d.entries, obj)
	d.mu.Unlock()
}

// Entries returns a copy of everything pushed so far.
func (d *DataLayer) Entries() []map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]map[string]any, len(d.entries))
	copy(out, d.entries)
	return out
}

// Vendor forwards events to the GA4/GTM hooks with the parameter names the
// existing containers expect (event_category, event_label, value,
// custom_parameter_*). Either hook may be nil; the engine carries no
// dependency on a specific vendor beyond these two call shapes.
type Vendor struct {
	GTag  GTagFunc
	Layer *DataLayer
}

func (Vendor) Name() string { return "vendor" }

func (v Vendor) Send(e abtest.Event) error {
	params := map[string]any{
		"event_category":              "ab_testing",
		"event_label":                 fmt.Sprintf("%s:%s", e.TestID, e.VariantID),
		"value":                       e.Value,
		"custom_parameter_test_id":    e.TestID,
		"custom_parameter_variant_id": e.VariantID,
		"custom_parameter_user_id":    e.UserID,
		"custom_parameter_session_id": e.SessionID,
	}
	for k, val := range e.Metadata {
		params["custom_parameter_"+k] = val
	}

	if v.GTag != nil {
		v.GTag(string(e.Type), params)
	}
	if v.Layer != nil {
		v.Layer.Push(map[string]any{
			"event":      string(e.Type),
			"test_id":    e.TestID,
			"variant_id": e.VariantID,
			"user_id":    e.UserID,
			"session_id": e.SessionID,
			"value":      e.Value,
		})
	}
	return nil
}
