package vitals

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromRecorder exports vitals and fired alerts as Prometheus metrics. It
// doubles as an alert Channel so firing an alert bumps the counter.
type PromRecorder struct {
	samples *prometheus.HistogramVec
	alerts  *prometheus.CounterVec
}

func NewPromRecorder(reg prometheus.Registerer) *PromRecorder {
	r := &PromRecorder{
		samples: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "growth",
			Subsystem: "vitals",
			Name:      "sample",
			Help:      "Observed Core Web Vitals samples by signal and page.",
			Buckets:   prometheus.ExponentialBuckets(50, 2, 10),
		}, []string{"signal", "page"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "growth",
			Subsystem: "vitals",
			Name:      "alerts_total",
			Help:      "Performance alerts fired by signal and severity.",
		}, []string{"signal", "severity"}),
	}
	reg.MustRegister(r.samples, r.alerts)
	return r
}

// RecordSample observes every non-zero signal of a metrics sample.
func (r *PromRecorder) RecordSample(m Metrics, page string) {
	for _, s := range Signals {
		if v := m.Value(s); v > 0 {
			r.samples.WithLabelValues(s, page).Observe(v)
		}
	}
}

func (r *PromRecorder) Name() string { return "prometheus" }

// Notify implements Channel.
func (r *PromRecorder) Notify(a Alert) error {
	r.alerts.WithLabelValues(a.Signal, string(a.Severity)).Inc()
	return nil
}
