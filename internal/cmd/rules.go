package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/divvy/internal/config"
	"github.com/Iron-Ham/divvy/internal/domain"
)

var (
	rulesFile   string
	rulesExport bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the domain classification rules",
	Long: `Rules prints the ordered pattern table that maps file paths to
domains. Rules are evaluated in order and the first match wins, so the
same path always lands in the same domain.

--export writes the active rule set as YAML, a starting point for a
custom rules file (point rules.rules_file at it in the config).`,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().StringVar(&rulesFile, "file", "", "rules file to show (default the configured or built-in rules)")
	rulesCmd.Flags().BoolVar(&rulesExport, "export", false, "write the rule set as YAML to stdout")
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	file := rulesFile
	if file == "" {
		file = cfg.Rules.RulesFile
	}

	rules := domain.DefaultRules()
	if file != "" {
		var err error
		rules, err = domain.LoadRules(file)
		if err != nil {
			return fmt.Errorf("failed to load rules: %w", err)
		}
	}

	if rulesExport {
		data, err := domain.ExportRules(rules)
		if err != nil {
			return fmt.Errorf("failed to export rules: %w", err)
		}
		fmt.Print(string(data))
		return nil
	}

	fmt.Println(strings.Repeat("─", 60))
	fmt.Println("Domain Classification Rules (first match wins)")
	fmt.Println(strings.Repeat("─", 60))
	for i, rule := range rules.Domains {
		fmt.Printf("%2d. %s\n", i+1, rule.Name)
		for _, pattern := range rule.Patterns {
			fmt.Printf("      %s\n", pattern)
		}
	}

	fallback := rules.Default
	if fallback == "" {
		fallback = domain.Backend
	}
	fmt.Printf("\nUnmatched paths fall back to %q.\n", fallback)
	return nil
}
