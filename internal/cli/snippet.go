package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prepflow/growth-engine/internal/snippets"
)

var snippetFramework string

var snippetCmd = &cobra.Command{
	Use:   "snippet <testId>",
	Short: "Print the embed snippet for a page",
	Long: `Print the snippet that loads the tracking script on a landing page.

Examples:
  growth-engine snippet landing_page_variants
  growth-engine snippet landing_page_variants --framework nextjs`,
	Args: cobra.ExactArgs(1),
	RunE: runSnippet,
}

func init() {
	snippetCmd.Flags().StringVarP(&snippetFramework, "framework", "F", "html", "target framework (html, nextjs, react)")
	rootCmd.AddCommand(snippetCmd)
}

func runSnippet(cmd *cobra.Command, args []string) error {
	framework, err := snippets.ParseFramework(snippetFramework)
	if err != nil {
		return err
	}

	out, err := snippets.Generate(framework, snippets.Config{
		TestID:    args[0],
		ServerURL: serverURL,
	})
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
