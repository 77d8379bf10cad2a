package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/prepflow/growth-engine/internal/abtest"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <testId>",
	Short: "Export raw event data",
	Long: `Export the server's in-memory event log for a test in CSV or JSON.

Examples:
  growth-engine export landing_page_variants --format csv > events.csv
  growth-engine export landing_page_variants --format json > events.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format (csv or json)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	testID := args[0]

	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("invalid format: must be 'csv' or 'json'")
	}

	var events []abtest.Event
	if err := apiGet("/api/events?test="+url.QueryEscape(testID), &events); err != nil {
		return fmt.Errorf("failed to fetch events for %q: %w", testID, err)
	}

	if exportFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"id", "test_id", "variant_id", "user_id", "session_id", "event_type", "value", "timestamp"}); err != nil {
		return err
	}
	for _, e := range events {
		record := []string{
			e.ID,
			e.TestID,
			e.VariantID,
			e.UserID,
			e.SessionID,
			string(e.Type),
			strconv.FormatFloat(e.Value, 'f', -1, 64),
			e.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}
