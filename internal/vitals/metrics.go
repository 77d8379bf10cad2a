// Package vitals is the RUM side of the engine: it collects Core Web Vitals
// samples from real sessions, scores them against performance budgets, and
// raises alerts and regressions through pluggable channels.
package vitals

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Signal names. Values are milliseconds except CLS, which is unitless.
const (
	SignalLCP  = "lcp"
	SignalFID  = "fid"
	SignalCLS  = "cls"
	SignalFCP  = "fcp"
	SignalTTI  = "tti"
	SignalTTFB = "ttfb"
	SignalINP  = "inp"
)

// Signals lists every collected signal in stable order.
var Signals = []string{SignalLCP, SignalFID, SignalCLS, SignalFCP, SignalTTI, SignalTTFB, SignalINP}

// Metrics is one page's worth of observed vitals. A zero field means the
// signal was not captured for this sample.
type Metrics struct {
	LCP  float64 `json:"lcp,omitempty"`
	FID  float64 `json:"fid,omitempty"`
	CLS  float64 `json:"cls,omitempty"`
	FCP  float64 `json:"fcp,omitempty"`
	TTI  float64 `json:"tti,omitempty"`
	TTFB float64 `json:"ttfb,omitempty"`
	INP  float64 `json:"inp,omitempty"`
}

// Value returns the metric for a signal name.
func (m Metrics) Value(signal string) float64 {
	switch signal {
	case SignalLCP:
		return m.LCP
	case SignalFID:
		return m.FID
	case SignalCLS:
		return m.CLS
	case SignalFCP:
		return m.FCP
	case SignalTTI:
		return m.TTI
	case SignalTTFB:
		return m.TTFB
	case SignalINP:
		return m.INP
	}
	return 0
}

type point struct {
	value float64
	at    time.Time
}

// Collector samples vitals observations into per-signal, per-page history
// rings. Sample rates gate how much of the firehose is kept; rates default
// to 1.0 (keep everything) for unknown signals.
type Collector struct {
	log     *logrus.Logger
	rates   map[string]float64
	maxKeep int
	now     func() time.Time

	mu   sync.Mutex
	rng  *rand.Rand
	hist map[string][]point // key: signal + "|" + page
}

func NewCollector(rates map[string]float64, log *logrus.Logger) *Collector {
	if log == nil {
		log = logrus.New()
	}
	if rates == nil {
		rates = map[string]float64{}
	}
	return &Collector{
		log:     log,
		rates:   rates,
		maxKeep: 1000,
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		hist:    make(map[string][]point),
	}
}

// SetRand replaces the sampling source for tests.
func (c *Collector) SetRand(rng *rand.Rand) {
	c.mu.Lock()
	c.rng = rng
	c.mu.Unlock()
}

// SetClock replaces the time source for tests.
func (c *Collector) SetClock(now func() time.Time) {
	c.now = now
}

// Observe records one signal observation, subject to the signal's sample
// rate. Returns whether the observation was kept.
func (c *Collector) Observe(signal string, value float64, page string) bool {
	rate, ok := c.rates[signal]
	if !ok {
		rate = 1.0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if rate < 1.0 && c.rng.Float64() >= rate {
		return false
	}

	key := signal + "|" + page
	h := append(c.hist[key], point{value: value, at: c.now()})
	if len(h) > c.maxKeep {
		h = h[len(h)-c.maxKeep:]
	}
	c.hist[key] = h
	return true
}

// ObserveAll records every non-zero signal of a metrics sample.
func (c *Collector) ObserveAll(m Metrics, page string) {
	for _, s := range Signals {
		if v := m.Value(s); v > 0 {
			c.Observe(s, v, page)
		}
	}
}

// History returns the values recorded for a signal on a page within the
// window, newest last, capped at limit (0 = no cap).
func (c *Collector) History(signal, page string, window time.Duration, limit int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-window)
	h := c.hist[signal+"|"+page]

	var out []float64
	for _, p := range h {
		if window > 0 && p.at.Before(cutoff) {
			continue
		}
		out = append(out, p.value)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
