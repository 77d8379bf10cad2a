package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/prepflow/growth-engine/internal/abtest"
)

var testsCmd = &cobra.Command{
	Use:   "tests",
	Short: "Manage test definitions",
}

var testsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tests registered on the server",
	RunE:  runTestsList,
}

func newTestsCreateCmd() *cobra.Command {
	var variants string

	cmd := &cobra.Command{
		Use:   "create <id>",
		Short: "Compose a test definition for the config file",
		Long: `Compose a test definition and print it as a YAML stanza to add under
'tests:' in the config file. Without --variants an interactive wizard runs.

Examples:
  growth-engine tests create hero_copy --variants "control:50,variant_a:50"
  growth-engine tests create landing_page_variants`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			test := abtest.Test{ID: args[0], Name: args[0]}

			if variants != "" {
				parsed, err := parseVariants(variants)
				if err != nil {
					return err
				}
				test.Variants = parsed
			} else {
				composed, err := runVariantWizard()
				if err != nil {
					return err
				}
				test.Variants = composed
			}

			reg := abtest.NewRegistry()
			if err := reg.Register(test); err != nil {
				return err
			}

			out, err := yaml.Marshal(map[string][]abtest.Test{"tests": {test}})
			if err != nil {
				return fmt.Errorf("failed to encode test: %w", err)
			}
			fmt.Println("# add to your config file:")
			fmt.Print(string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&variants, "variants", "v", "", `comma-separated "id:split" pairs, e.g. "control:50,variant_a:50"`)
	return cmd
}

func init() {
	testsCmd.AddCommand(testsListCmd)
	testsCmd.AddCommand(newTestsCreateCmd())
	rootCmd.AddCommand(testsCmd)
}

func runTestsList(cmd *cobra.Command, args []string) error {
	var tests []abtest.Test
	if err := apiGet("/api/tests", &tests); err != nil {
		return err
	}

	if len(tests) == 0 {
		fmt.Println("No tests registered.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tVARIANTS\tSPLITS")
	for _, t := range tests {
		ids := make([]string, len(t.Variants))
		splits := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			ids[i] = v.ID
			splits[i] = strconv.FormatFloat(v.TrafficSplit, 'f', -1, 64)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Name, strings.Join(ids, ","), strings.Join(splits, "/"))
	}
	return w.Flush()
}

func parseVariants(spec string) ([]abtest.Variant, error) {
	var out []abtest.Variant
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		id, splitStr, found := strings.Cut(part, ":")
		if !found {
			return nil, fmt.Errorf("variant %q: expected id:split", part)
		}
		split, err := strconv.ParseFloat(splitStr, 64)
		if err != nil {
			return nil, fmt.Errorf("variant %q: invalid split: %w", part, err)
		}
		out = append(out, abtest.Variant{
			ID:           id,
			Name:         id,
			TrafficSplit: split,
			IsControl:    id == abtest.ControlVariantID,
		})
	}
	return out, nil
}

func runVariantWizard() ([]abtest.Variant, error) {
	countPrompt := promptui.Prompt{
		Label:   "How many variants (including control)",
		Default: "2",
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 2 {
				return fmt.Errorf("need a number >= 2")
			}
			return nil
		},
	}
	countStr, err := countPrompt.Run()
	if err != nil {
		return nil, err
	}
	count, _ := strconv.Atoi(countStr)

	var out []abtest.Variant
	remaining := 100.0
	for i := 0; i < count; i++ {
		defaultID := abtest.ControlVariantID
		if i > 0 {
			defaultID = fmt.Sprintf("variant_%c", 'a'+i-1)
		}
		idPrompt := promptui.Prompt{Label: fmt.Sprintf("Variant %d id", i+1), Default: defaultID}
		id, err := idPrompt.Run()
		if err != nil {
			return nil, err
		}

		splitPrompt := promptui.Prompt{
			Label:   fmt.Sprintf("Traffic split for %q (%.0f remaining)", id, remaining),
			Default: strconv.FormatFloat(remaining/float64(count-i), 'f', -1, 64),
		}
		splitStr, err := splitPrompt.Run()
		if err != nil {
			return nil, err
		}
		split, err := strconv.ParseFloat(splitStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid split: %w", err)
		}

		remaining -= split
		out = append(out, abtest.Variant{
			ID:           id,
			Name:         id,
			TrafficSplit: split,
			IsControl:    i == 0,
		})
	}
	return out, nil
}
