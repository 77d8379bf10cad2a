package vitals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Rule is a static threshold an observed vital must stay under.
type Rule struct {
	Name      string
	Signal    string
	Threshold float64
	Severity  Severity
	// Cooldown suppresses repeat alerts for the same rule+page to avoid
	// alert storms from a burst of slow sessions.
	Cooldown time.Duration
}

// Alert is one fired rule or regression.
type Alert struct {
	Rule         string    `json:"rule"`
	Signal       string    `json:"signal"`
	Value        float64   `json:"value"`
	Threshold    float64   `json:"threshold"`
	Severity     Severity  `json:"severity"`
	Page         string    `json:"page"`
	UserID       string    `json:"userId,omitempty"`
	SessionID    string    `json:"sessionId,omitempty"`
	At           time.Time `json:"at"`
	IsRegression bool      `json:"isRegression,omitempty"`
}

// Channel delivers fired alerts. Console is always on; others are inert
// unless configured.
type Channel interface {
	Name() string
	Notify(Alert) error
}

// ConsoleChannel logs alerts through the structured logger.
type ConsoleChannel struct {
	Log *logrus.Logger
}

func (ConsoleChannel) Name() string { return "console" }

func (c ConsoleChannel) Notify(a Alert) error {
	c.Log.WithFields(logrus.Fields{
		"rule":      a.Rule,
		"signal":    a.Signal,
		"value":     a.Value,
		"threshold": a.Threshold,
		"severity":  a.Severity,
		"page":      a.Page,
	}).Warn("performance alert")
	return nil
}

// WebhookChannel POSTs the alert as JSON to a configured URL.
type WebhookChannel struct {
	URL    string
	Client *http.Client
}

func NewWebhookChannel(url string) *WebhookChannel {
	return &WebhookChannel{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (WebhookChannel) Name() string { return "webhook" }

func (c *WebhookChannel) Notify(a Alert) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}
	resp, err := c.Client.Post(c.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

// DefaultRules are the shipped static thresholds, set at the "poor" end of
// the Core Web Vitals bands.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "lcp_poor", Signal: SignalLCP, Threshold: 4000, Severity: SeverityHigh, Cooldown: 5 * time.Minute},
		{Name: "fid_poor", Signal: SignalFID, Threshold: 300, Severity: SeverityHigh, Cooldown: 5 * time.Minute},
		{Name: "cls_poor", Signal: SignalCLS, Threshold: 0.25, Severity: SeverityMedium, Cooldown: 5 * time.Minute},
		{Name: "tti_poor", Signal: SignalTTI, Threshold: 7300, Severity: SeverityMedium, Cooldown: 5 * time.Minute},
		{Name: "inp_poor", Signal: SignalINP, Threshold: 500, Severity: SeverityMedium, Cooldown: 5 * time.Minute},
	}
}

// Manager evaluates alert rules and regression checks over incoming samples
// and fans fired alerts out to its channels. Channel failures are logged and
// swallowed; alerting must never block ingestion.
type Manager struct {
	log       *logrus.Logger
	collector *Collector
	channels  []Channel
	now       func() time.Time

	mu        sync.Mutex
	rules     []Rule
	lastFired map[string]time.Time // rule name + "|" + page
}

func NewManager(collector *Collector, rules []Rule, log *logrus.Logger, channels ...Channel) *Manager {
	if log == nil {
		log = logrus.New()
	}
	if rules == nil {
		rules = DefaultRules()
	}
	return &Manager{
		log:       log,
		collector: collector,
		channels:  channels,
		now:       time.Now,
		rules:     rules,
		lastFired: make(map[string]time.Time),
	}
}

// SetClock replaces the time source for cooldown tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
	m.collector.SetClock(now)
}

// Rules returns a copy of the configured rules.
func (m *Manager) Rules() []Rule {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Rule, len(m.rules))
	copy(out, m.rules)
	return out
}

// CheckPerformance evaluates a sample: static threshold rules first (with
// per-rule cooldown), then the rolling-baseline regression check, and
// records the sample into the collector afterwards so it never forms part
// of its own baseline. Returns the alerts fired.
func (m *Manager) CheckPerformance(metrics Metrics, page, userID, sessionID string) []Alert {
	now := m.now()
	var fired []Alert

	m.mu.Lock()
	for _, r := range m.rules {
		value := metrics.Value(r.Signal)
		if value == 0 || value <= r.Threshold {
			continue
		}
		key := r.Name + "|" + page
		if last, ok := m.lastFired[key]; ok && now.Sub(last) < r.Cooldown {
			continue
		}
		m.lastFired[key] = now
		fired = append(fired, Alert{
			Rule:      r.Name,
			Signal:    r.Signal,
			Value:     value,
			Threshold: r.Threshold,
			Severity:  r.Severity,
			Page:      page,
			UserID:    userID,
			SessionID: sessionID,
			At:        now,
		})
	}
	m.mu.Unlock()

	for _, s := range Signals {
		value := metrics.Value(s)
		if value == 0 {
			continue
		}
		if reg := m.collector.DetectRegression(s, page, value); reg != nil {
			fired = append(fired, Alert{
				Rule:         "regression_" + s,
				Signal:       s,
				Value:        reg.Current,
				Threshold:    reg.Baseline,
				Severity:     SeverityMedium,
				Page:         page,
				UserID:       userID,
				SessionID:    sessionID,
				At:           now,
				IsRegression: true,
			})
		}
	}

	m.collector.ObserveAll(metrics, page)

	for _, a := range fired {
		m.notify(a)
	}
	return fired
}

func (m *Manager) notify(a Alert) {
	for _, c := range m.channels {
		if err := c.Notify(a); err != nil {
			m.log.WithFields(logrus.Fields{"channel": c.Name()}).WithError(err).Debug("alert delivery failed")
		}
	}
}
