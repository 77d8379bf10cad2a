// Package server exposes the growth engine over HTTP: the event beacon the
// landing pages call, the vitals ingest endpoint, lead capture, the results
// API, and a token-protected dashboard.
package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/prepflow/growth-engine/internal/abtest"
	"github.com/prepflow/growth-engine/internal/config"
	"github.com/prepflow/growth-engine/internal/sink"
	"github.com/prepflow/growth-engine/internal/vitals"
)

type Server struct {
	analytics *abtest.Analytics
	alerts    *vitals.Manager
	budgets   vitals.Budgets
	recorder  *vitals.PromRecorder
	hub       *sink.Hub
	cfg       *config.Config
	log       *logrus.Logger

	router      *http.ServeMux
	token       string
	startTime   time.Time
	promReg     *prometheus.Registry
	eventsTotal *prometheus.CounterVec
	leadsTotal  prometheus.Counter
}

// New wires the HTTP surface around an analytics service and alert manager.
// hub may be nil when the live feed is disabled.
func New(analytics *abtest.Analytics, alerts *vitals.Manager, budgets vitals.Budgets, hub *sink.Hub, cfg *config.Config, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
	}

	promReg := prometheus.NewRegistry()
	s := &Server{
		analytics: analytics,
		alerts:    alerts,
		budgets:   budgets,
		recorder:  vitals.NewPromRecorder(promReg),
		hub:       hub,
		cfg:       cfg,
		log:       log,
		router:    http.NewServeMux(),
		token:     generateToken(),
		startTime: time.Now(),
		promReg:   promReg,
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "growth",
			Name:      "events_total",
			Help:      "Tracked events by type.",
		}, []string{"event_type"}),
		leadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "growth",
			Name:      "leads_total",
			Help:      "Captured leads.",
		}),
	}
	promReg.MustRegister(s.eventsTotal, s.leadsTotal)

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Public endpoints
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.HandleFunc("/t", s.handleBeacon)
	s.router.HandleFunc("/pf.js", s.handleClientJS)
	s.router.HandleFunc("/api/tests", s.handleTests)
	s.router.HandleFunc("/api/results", s.handleResults)
	s.router.HandleFunc("/api/events", s.handleEvents)
	s.router.HandleFunc("/api/vitals", s.handleVitals)
	s.router.HandleFunc("/api/leads", s.handleLeads)
	s.router.HandleFunc("/api/detect-country", s.handleDetectCountry)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.promReg, promhttp.HandlerOpts{}))

	if s.hub != nil {
		s.router.Handle("/api/live", s.hub)
	}

	// Dashboard (protected)
	s.router.Handle("/dashboard", s.authMiddleware(http.HandlerFunc(s.handleDashboard)))
}

func (s *Server) Start() error {
	if s.cfg.Server.TokenFile != "" {
		if err := os.WriteFile(s.cfg.Server.TokenFile, []byte(s.token), 0600); err != nil {
			s.log.WithError(err).Warn("failed to write token file")
		}
	}

	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.log.WithFields(logrus.Fields{"addr": addr}).Info("growth engine listening")
	s.log.Infof("Dashboard: http://localhost:%d/dashboard?token=%s", s.cfg.Server.Port, s.token)

	return http.ListenAndServe(addr, s.router)
}

func (s *Server) Token() string {
	return s.token
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func generateToken() string {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return "a1b2c3d4"
	}
	return hex.EncodeToString(bytes)
}
