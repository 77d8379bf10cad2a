package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prepflow/growth-engine/internal/abtest"
	"github.com/prepflow/growth-engine/internal/stats"
)

var resultsCmd = &cobra.Command{
	Use:   "results <testId>",
	Short: "Show aggregated results for a test",
	Long: `Show per-variant results for a running test: distinct users,
conversions, conversion rate, revenue, the legacy significance score, and a
95% Wilson confidence interval.`,
	Args: cobra.ExactArgs(1),
	RunE: runResults,
}

func init() {
	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	testID := args[0]

	var results []abtest.TestResult
	if err := apiGet("/api/results?test="+url.QueryEscape(testID), &results); err != nil {
		return fmt.Errorf("failed to fetch results for %q: %w", testID, err)
	}
	if len(results) == 0 {
		fmt.Printf("No data yet for test %q.\n", testID)
		return nil
	}

	cmp := stats.Compare(results)

	fmt.Printf("TEST: %s\n\n", testID)
	fmt.Println("VARIANT           USERS    CONVERSIONS  RATE     REVENUE    SIG*  95% CI")
	fmt.Println(strings.Repeat("─", 78))

	for _, res := range results {
		indicator := ""
		if res.VariantID == cmp.LeadingVariantID && len(results) > 1 {
			indicator = " ← LEADING"
		}

		ci := cmp.Intervals[res.VariantID]
		ciStr := fmt.Sprintf("[%.1f%%, %.1f%%]", ci.Lower*100, ci.Upper*100)
		if res.TotalUsers == 0 {
			ciStr = "N/A"
		}

		name := res.VariantID
		if len(name) > 16 {
			name = name[:13] + "..."
		}

		fmt.Printf("%-16s  %-7d  %-11d  %-7s  $%-8.2f  %-4d  %s%s\n",
			name,
			res.TotalUsers,
			res.Conversions,
			fmt.Sprintf("%.2f%%", res.ConversionRate),
			res.Revenue,
			res.StatisticalSignificance,
			ciStr,
			indicator,
		)
	}

	fmt.Println()
	confPct := cmp.ConfidenceLevel * 100
	switch {
	case cmp.Confident:
		fmt.Printf("Statistical significance: %.1f%% confident %q is the winner\n", confPct, cmp.LeadingVariantID)
	case confPct >= 90:
		fmt.Printf("Statistical significance: %.1f%% confident %q beats control (not yet significant)\n", confPct, cmp.LeadingVariantID)
	default:
		fmt.Println("Statistical significance: Not enough data to determine a winner")
	}
	fmt.Println("* SIG is the legacy heuristic score, not a hypothesis test.")

	return nil
}
