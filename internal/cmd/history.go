package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/divvy/internal/config"
	"github.com/Iron-Ham/divvy/internal/history"
	"github.com/Iron-Ham/divvy/internal/merge"
	"github.com/Iron-Ham/divvy/internal/plan"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent plan decisions and merge runs",
	Long: `History lists what divvy decided and merged in this repository, most
recent first. Runs are recorded automatically unless history is disabled
in the config.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "how many runs of each kind to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "emit the history as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	root, err := repoRoot()
	if err != nil {
		return err
	}

	store, err := history.Open(cmd.Context(), cfg.History.ResolvePath(root))
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	plans, err := store.RecentPlans(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list plan runs: %w", err)
	}
	merges, err := store.RecentMerges(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list merge runs: %w", err)
	}

	if historyJSON {
		data, err := json.MarshalIndent(map[string]any{
			"plans":  plans,
			"merges": merges,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(plans) == 0 && len(merges) == 0 {
		fmt.Println("No recorded runs yet.")
		return nil
	}

	if len(plans) > 0 {
		fmt.Println(strings.Repeat("─", 60))
		fmt.Println("Recent Plans")
		fmt.Println(strings.Repeat("─", 60))
		for _, run := range plans {
			fmt.Printf("  %s  %-12s %-10s %d files, %d domains, %s%% overlap\n",
				run.CreatedAt.Local().Format("2006-01-02 15:04"),
				orDash(run.Epic),
				run.Decision.RecommendedMode,
				run.Decision.FileCount,
				run.Decision.DomainCount,
				plan.FormatOverlap(run.Decision.OverlapPercentage))
		}
	}

	if len(merges) > 0 {
		if len(plans) > 0 {
			fmt.Println()
		}
		fmt.Println(strings.Repeat("─", 60))
		fmt.Println("Recent Merges")
		fmt.Println(strings.Repeat("─", 60))
		for _, run := range merges {
			detail := "merged: " + strings.Join(run.Summary.MergedDomains, ", ")
			if run.Summary.Status != merge.StatusSuccess {
				detail = run.Summary.AbortReason
			}
			fmt.Printf("  %s  %-12s %-10s %s\n",
				run.CreatedAt.Local().Format("2006-01-02 15:04"),
				orDash(run.Epic),
				run.Summary.Status,
				detail)
		}
	}
	return nil
}

// orDash substitutes a dash for an empty value in fixed-width listings.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
