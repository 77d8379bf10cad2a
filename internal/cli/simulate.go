package cli

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/prepflow/growth-engine/internal/abtest"
	"github.com/prepflow/growth-engine/internal/config"
	"github.com/prepflow/growth-engine/internal/kvstore"
)

var (
	simulateN    int
	simulateSeed int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <testId>",
	Short: "Simulate fresh assignments to verify the traffic split",
	Long: `Run N fresh weighted draws against a test defined in the config and
report each variant's observed share next to its configured split. Useful
for sanity-checking a split before shipping it.

Example:
  growth-engine simulate landing_page_variants -n 100000`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVarP(&simulateN, "draws", "n", 100000, "number of simulated assignments")
	simulateCmd.Flags().Int64Var(&simulateSeed, "seed", 0, "random seed (0 = time-based)")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	testID := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	registry := abtest.NewRegistry()
	for _, t := range cfg.Tests {
		if err := registry.Register(t); err != nil {
			return fmt.Errorf("invalid test config: %w", err)
		}
	}
	test := registry.Get(testID)
	if test == nil {
		return fmt.Errorf("test %q not found in config", testID)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	engine := abtest.NewEngine(kvstore.NewMemoryStore(), registry, log)
	if simulateSeed != 0 {
		engine.SetRand(rand.New(rand.NewSource(simulateSeed)))
	}

	counts := make(map[string]int)
	for i := 0; i < simulateN; i++ {
		// A distinct user per draw keeps every assignment fresh.
		variantID, _ := engine.Assign(testID, fmt.Sprintf("sim_user_%d", i))
		counts[variantID]++
	}

	fmt.Printf("TEST: %s  (%d draws)\n\n", testID, simulateN)
	fmt.Println("VARIANT           EXPECTED  OBSERVED  DELTA")
	fmt.Println(strings.Repeat("─", 48))
	for _, v := range test.Variants {
		observed := float64(counts[v.ID]) / float64(simulateN) * 100
		fmt.Printf("%-16s  %7.2f%%  %7.2f%%  %+.2f%%\n",
			v.ID, v.TrafficSplit, observed, observed-v.TrafficSplit)
	}
	if fallthroughCount := counts[abtest.ControlVariantID]; fallthroughCount > 0 {
		if _, ok := test.Variant(abtest.ControlVariantID); !ok {
			fmt.Printf("%-16s  %7s   %7.2f%%  (weight fall-through)\n",
				"control", "-", float64(fallthroughCount)/float64(simulateN)*100)
		}
	}
	return nil
}
