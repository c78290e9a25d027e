package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/divvy/internal/cleanup"
	"github.com/Iron-Ham/divvy/internal/config"
	"github.com/Iron-Ham/divvy/internal/worktree"
)

var (
	cleanupEpic           string
	cleanupAll            bool
	cleanupMaxAge         time.Duration
	cleanupDryRun         bool
	cleanupForce          bool
	cleanupDeleteBranches bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove spent worktrees and their metadata",
	Long: `Cleanup removes worktrees whose work is finished (merged, failed,
conflicted, or already cleaned) and worktrees abandoned mid-flight with
no status change for longer than --max-age.

Completed worktrees are never removed; they are waiting for merge.

Use --dry-run to see what would be cleaned up without making changes.`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().StringVar(&cleanupEpic, "epic", "", "clean up only one epic's worktrees")
	cleanupCmd.Flags().BoolVar(&cleanupAll, "all", false, "ignore the age cutoff when selecting abandoned worktrees")
	cleanupCmd.Flags().DurationVar(&cleanupMaxAge, "max-age", cleanup.DefaultMaxAge, "age after which a worktree with no status change counts as abandoned")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "show what would be cleaned up without making changes")
	cleanupCmd.Flags().BoolVarP(&cleanupForce, "force", "f", false, "skip confirmation and remove worktrees with uncommitted changes")
	cleanupCmd.Flags().BoolVar(&cleanupDeleteBranches, "delete-branches", false, "also delete each worktree's branch")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	root, err := repoRoot()
	if err != nil {
		return err
	}
	store, err := openStore(root)
	if err != nil {
		return err
	}
	mgr, err := worktree.NewManager(root)
	if err != nil {
		return err
	}

	logger, closeLogger := newLogger(cfg, root)
	defer closeLogger()

	sweeper := cleanup.NewSweeper(mgr, store, logger)
	job, err := sweeper.Plan(root, cleanup.Options{
		Epic:           cleanupEpic,
		MaxAge:         cleanupMaxAge,
		All:            cleanupAll,
		DryRun:         cleanupDryRun,
		DeleteBranches: cleanupDeleteBranches,
		Force:          cleanupForce,
	})
	if err != nil {
		return fmt.Errorf("failed to plan cleanup: %w", err)
	}

	if len(job.Targets) == 0 {
		fmt.Println("No spent worktrees found. Nothing to clean up.")
		return nil
	}

	printCleanupTargets(job)

	// Confirm unless forced. Dry runs have nothing to confirm.
	if !cleanupDryRun && !cleanupForce {
		fmt.Print("\nProceed with cleanup? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Cleanup cancelled.")
			return nil
		}
	}

	results, err := sweeper.Execute(job)
	if err != nil {
		return fmt.Errorf("failed to execute cleanup: %w", err)
	}

	printCleanupResults(job, results)

	// Finished job files older than 30 days age out.
	if !cleanupDryRun {
		_, _ = cleanup.CleanupOldJobs(root, 30*24*time.Hour)
	}
	return nil
}

func printCleanupTargets(job *cleanup.Job) {
	fmt.Println(strings.Repeat("─", 60))
	fmt.Println("Worktrees To Clean Up")
	fmt.Println(strings.Repeat("─", 60))

	for _, target := range job.Targets {
		marker := ""
		if target.HasUncommitted {
			marker = " [uncommitted changes]"
		}
		fmt.Printf("  - %s (%s, %s)%s\n", target.Name, target.Status, target.Reason, marker)
		if target.Branch != "" {
			fmt.Printf("    Branch: %s\n", target.Branch)
		}
	}
}

func printCleanupResults(job *cleanup.Job, results *cleanup.Results) {
	fmt.Println()
	fmt.Printf("  Worktrees: %d\n", results.WorktreesRemoved)
	if job.DeleteBranches {
		fmt.Printf("  Branches:  %d\n", results.BranchesDeleted)
	}
	fmt.Printf("  Metadata:  %d\n", results.MetadataArchived)
	if results.Skipped > 0 {
		fmt.Printf("  Skipped:   %d (uncommitted changes, use --force to remove)\n", results.Skipped)
	}
	for _, msg := range results.Errors {
		fmt.Printf("  Warning: %s\n", msg)
	}

	if job.DryRun {
		fmt.Printf("\nDry run - would remove %d resources.\n", results.TotalRemoved)
	} else {
		fmt.Printf("\nCleanup complete. Removed %d resources.\n", results.TotalRemoved)
	}
}
