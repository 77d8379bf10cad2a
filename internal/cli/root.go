package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	serverURL  string
)

var rootCmd = &cobra.Command{
	Use:   "growth-engine",
	Short: "PrepFlow growth engine - self-hosted A/B testing and RUM for the landing site",
	Long: `PrepFlow growth engine: weighted sticky variant assignment, conversion
tracking, result aggregation, and Core Web Vitals monitoring behind a single
binary. Running without a subcommand starts the server.`,
	RunE: runServe,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("PF_CONFIG"), "config file path")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", getEnvOrDefault("PF_SERVER", "http://localhost:8080"), "server base URL for client commands")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
