package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/divvy/internal/config"
	"github.com/Iron-Ham/divvy/internal/errors"
	"github.com/Iron-Ham/divvy/internal/history"
	"github.com/Iron-Ham/divvy/internal/logging"
	"github.com/Iron-Ham/divvy/internal/merge"
	"github.com/Iron-Ham/divvy/internal/report"
	"github.com/Iron-Ham/divvy/internal/worktree"
)

var (
	mergeEpic          string
	mergeJSON          bool
	mergeKeepWorktrees bool
	mergeTarget        string
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge completed domain branches back onto the trunk",
	Long: `Merge integrates each completed worktree's branch onto the trunk, one
domain at a time in priority order (database before backend before
frontend before tests before docs).

Every worktree must have reported completed or failed first. A failed
domain vetoes the whole run. A conflict aborts immediately with no
auto-resolution; resolve by hand, mark the worktree completed again,
and re-run. Worktrees and branches are discarded only after every
branch merged and the trunk verifies clean.`,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringVar(&mergeEpic, "epic", "", "merge only one epic's worktrees")
	mergeCmd.Flags().BoolVar(&mergeJSON, "json", false, "emit the summary as JSON")
	mergeCmd.Flags().BoolVar(&mergeKeepWorktrees, "keep-worktrees", false, "keep worktrees and branches after a successful merge")
	mergeCmd.Flags().StringVar(&mergeTarget, "target", "", "branch to merge into (default from config, else the repository trunk)")
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	root, err := repoRoot()
	if err != nil {
		return err
	}
	store, err := openStore(root)
	if err != nil {
		return err
	}

	metas, err := listMetas(store, mergeEpic)
	if err != nil {
		return err
	}

	tasks, err := mergeTasks(metas)
	if err != nil {
		return err
	}

	mgr, err := worktree.NewManager(root)
	if err != nil {
		return err
	}

	target := mergeTarget
	if target == "" {
		target = cfg.Merge.TargetBranch
	}
	if target == "" {
		target = mgr.FindMainBranch()
	}

	git := merge.NewDefaultGitOperations(root)
	current, err := git.CurrentBranch()
	if err != nil {
		return fmt.Errorf("failed to resolve current branch: %w", err)
	}
	if current != target {
		if err := git.Checkout(target); err != nil {
			return fmt.Errorf("failed to check out %s: %w", target, err)
		}
	}

	logger, closeLogger := newLogger(cfg, root)
	defer closeLogger()

	orch := merge.NewOrchestrator(git, mgr, merge.Options{
		Priority:      cfg.Merge.Priority,
		KeepWorktrees: mergeKeepWorktrees || !cfg.Merge.CleanupOnSuccess,
		Logger:        logger,
	})

	summary, execErr := orch.Execute(cmd.Context(), tasks)
	if summary == nil {
		return execErr
	}

	updateMergedStatuses(store, logger, summary)
	recordMergeRun(cmd, cfg, root, logger, summary)

	if mergeJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode merge summary: %w", err)
		}
		fmt.Println(string(data))
	} else {
		fmt.Print(report.RenderMergeSummary(summary, termWidth()))
	}

	return execErr
}

// mergeTasks builds the task list and enforces the all-complete barrier:
// every active worktree must have reported completed or failed before any
// branch touches the trunk. Terminal worktrees from earlier runs are
// skipped.
func mergeTasks(metas []*worktree.Metadata) ([]merge.Task, error) {
	tasks := make([]merge.Task, 0, len(metas))
	for _, meta := range metas {
		switch meta.Status {
		case worktree.StatusCompleted, worktree.StatusFailed:
			tasks = append(tasks, merge.Task{
				Name:         meta.Name,
				Domain:       meta.Domain,
				Branch:       meta.Branch,
				WorktreePath: meta.Path,
				Failed:       meta.Status == worktree.StatusFailed,
			})
		default:
			if !meta.Status.IsTerminal() {
				return nil, errors.Wrapf(errors.ErrPreconditionFailed, "worktree %s is still %s", meta.Name, meta.Status)
			}
		}
	}
	return tasks, nil
}

// updateMergedStatuses writes each task's outcome back to its metadata.
func updateMergedStatuses(store *worktree.Store, logger *logging.Logger, summary *merge.Summary) {
	for _, result := range summary.Results {
		if result.Name == "" {
			continue
		}

		var status worktree.Status
		switch result.Status {
		case merge.TaskMerged:
			status = worktree.StatusMerged
		case merge.TaskConflicted:
			status = worktree.StatusConflict
		default:
			continue
		}

		if _, err := store.UpdateStatus(result.Name, status); err != nil {
			logger.Warn("failed to update worktree status",
				"worktree", result.Name,
				"status", status,
				"error", err)
		}
	}
}

// recordMergeRun stores the summary in run history, aborted runs
// included. History failures are logged and never fail the merge.
func recordMergeRun(cmd *cobra.Command, cfg *config.Config, root string, logger *logging.Logger, summary *merge.Summary) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.Open(cmd.Context(), cfg.History.ResolvePath(root))
	if err != nil {
		logger.Warn("history unavailable", "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	if _, err := store.RecordMerge(cmd.Context(), mergeEpic, summary); err != nil {
		logger.Warn("failed to record merge run", "error", err)
	}
}
