package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/prepflow/growth-engine/internal/abtest"
	"github.com/prepflow/growth-engine/internal/config"
	"github.com/prepflow/growth-engine/internal/kvstore"
	"github.com/prepflow/growth-engine/internal/server"
	"github.com/prepflow/growth-engine/internal/sink"
	"github.com/prepflow/growth-engine/internal/vitals"
)

var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the growth engine HTTP server.

The server provides:
  - Beacon endpoint for tracking events (/t)
  - Vitals ingest with budget checks and alerts (/api/vitals)
  - Lead capture (/api/leads)
  - Results API and token-protected dashboard
  - Prometheus metrics (/metrics)

Example:
  growth-engine serve --port 8080 --config growth.yaml`,
	RunE: runServe,
}

func init() {
	defaultPort := 0
	if p := os.Getenv("PF_PORT"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			defaultPort = parsed
		}
	}

	serveCmd.Flags().IntVarP(&port, "port", "p", defaultPort, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logrus.New()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	// Identity and assignments persist only when a database is configured;
	// an unusable database degrades to in-memory state rather than failing.
	var store kvstore.Store
	if cfg.Storage.Path != "" {
		s, err := kvstore.Open(cfg.Storage.Path)
		if err != nil {
			log.WithError(err).Warn("durable storage unavailable, using in-memory store")
			store = kvstore.NewMemoryStore()
		} else {
			store = s
			defer s.Close()
		}
	} else {
		store = kvstore.NewMemoryStore()
	}

	registry := abtest.NewRegistry()
	for _, t := range cfg.Tests {
		if err := registry.Register(t); err != nil {
			return fmt.Errorf("invalid test config: %w", err)
		}
	}

	var sinks []abtest.Sink
	if cfg.Sinks.Console {
		sinks = append(sinks, sink.NewConsole(log))
	}
	var hub *sink.Hub
	if cfg.Sinks.Live {
		hub = sink.NewHub(log)
		sinks = append(sinks, hub)
	}

	analytics := abtest.NewAnalytics(store, registry, log, sinks...)

	budgets := vitals.DefaultBudgets()
	for pageType, table := range cfg.Vitals.Budgets {
		budgets[pageType] = table
	}
	collector := vitals.NewCollector(cfg.Vitals.SampleRates, log)

	channels := []vitals.Channel{vitals.ConsoleChannel{Log: log}}
	if cfg.Vitals.WebhookURL != "" {
		channels = append(channels, vitals.NewWebhookChannel(cfg.Vitals.WebhookURL))
	}
	alerts := vitals.NewManager(collector, nil, log, channels...)

	srv := server.New(analytics, alerts, budgets, hub, cfg, log)
	return srv.Start()
}
