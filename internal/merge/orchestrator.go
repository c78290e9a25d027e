// Package merge integrates completed domain branches back onto the
// trunk. Branches merge sequentially in domain priority order, each as
// a --no-ff merge commit. A conflict aborts the run immediately and
// leaves the remaining branches untouched; conflicted branches are
// never auto-resolved. Worktrees and branches are removed only after
// every branch merged and the trunk verifies clean.
package merge

import (
	"context"
	"fmt"

	"github.com/Iron-Ham/divvy/internal/errors"
	"github.com/Iron-Ham/divvy/internal/logging"
)

// Cleaner removes worktrees and branches after a fully clean run.
// *worktree.Manager satisfies it.
type Cleaner interface {
	Remove(path string) error
	DeleteBranch(branch string) error
}

// Options configure a merge run.
type Options struct {
	// Priority orders domains for merging. Empty means DefaultPriority.
	Priority []string

	// KeepWorktrees skips worktree and branch removal after success.
	KeepWorktrees bool

	// Logger receives run progress. Nil means no logging.
	Logger *logging.Logger
}

// Orchestrator merges domain branches onto the trunk in priority order.
type Orchestrator struct {
	git      GitOperations
	cleaner  Cleaner
	priority []string
	opts     Options
	logger   *logging.Logger
}

// NewOrchestrator creates an orchestrator that merges through git and
// discards merged worktrees through cleaner.
func NewOrchestrator(git GitOperations, cleaner Cleaner, opts Options) *Orchestrator {
	priority := opts.Priority
	if len(priority) == 0 {
		priority = DefaultPriority()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Orchestrator{
		git:      git,
		cleaner:  cleaner,
		priority: priority,
		opts:     opts,
		logger:   logger,
	}
}

// Execute merges every task's branch onto the trunk in priority order.
// The returned Summary always describes the run, including aborted
// ones; the error carries the abort cause for callers that branch on
// it. Cancellation is honored between tasks, never mid-merge.
func (o *Orchestrator) Execute(ctx context.Context, tasks []Task) (*Summary, error) {
	if len(tasks) == 0 {
		return nil, errors.Wrap(errors.ErrNothingToMerge, "no completed worktrees to merge")
	}

	ordered := OrderTasks(tasks, o.priority)

	summary := &Summary{
		MergedDomains: []string{},
		Results:       make([]TaskResult, len(ordered)),
	}
	for i, t := range ordered {
		summary.Results[i] = TaskResult{
			Name:   t.Name,
			Domain: t.Domain,
			Branch: t.Branch,
			Status: TaskPending,
		}
	}

	// A failed domain vetoes the run before anything touches the trunk.
	for _, t := range ordered {
		if t.Failed {
			summary.Status = StatusAborted
			summary.AbortReason = fmt.Sprintf("domain %s reported failure", t.Domain)
			o.logger.Error("refusing to merge", "domain", t.Domain, "reason", "domain reported failure")
			return summary, errors.Wrapf(errors.ErrPreconditionFailed, "domain %s reported failure", t.Domain)
		}
	}

	for i, t := range ordered {
		if ctx.Err() != nil {
			summary.Status = StatusAborted
			summary.AbortReason = "merge run canceled"
			return summary, errors.Wrap(ctx.Err(), "merge run canceled")
		}

		// The trunk must return here if this task's merge goes wrong.
		head, err := o.git.RevParse("HEAD")
		if err != nil {
			summary.Status = StatusAborted
			summary.AbortReason = fmt.Sprintf("cannot resolve trunk head before domain %s: %v", t.Domain, err)
			return summary, errors.Wrapf(err, "resolving trunk head before domain %s", t.Domain)
		}

		o.logger.Info("merging domain branch", "domain", t.Domain, "branch", t.Branch)

		if err := o.git.Merge(t.Branch); err != nil {
			if errors.Is(err, errors.ErrMergeConflict) {
				// Collect conflicted paths before the abort clears the
				// unmerged index entries.
				files := o.git.GetConflicts()
				if aerr := o.git.AbortMerge(); aerr != nil {
					o.logger.Warn("failed to abort conflicted merge", "domain", t.Domain, "error", aerr)
				}
				summary.Results[i].Status = TaskConflicted
				summary.Conflicts = append(summary.Conflicts, Conflict{Domain: t.Domain, Files: files})
				summary.Status = StatusAborted
				summary.AbortReason = fmt.Sprintf("merge conflict in domain %s", t.Domain)
				o.logger.Error("merge conflict, aborting run",
					"domain", t.Domain,
					"branch", t.Branch,
					"conflicting_files", len(files))
				return summary, err
			}

			if aerr := o.git.AbortMerge(); aerr != nil {
				o.logger.Debug("no in-progress merge to abort", "error", aerr)
			}
			if rerr := o.git.ResetHard(head); rerr != nil {
				o.logger.Error("failed to restore trunk", "rev", head, "error", rerr)
			}
			summary.Status = StatusAborted
			summary.AbortReason = fmt.Sprintf("integration error in domain %s: %v", t.Domain, err)
			return summary, errors.Wrapf(err, "integrating domain %s", t.Domain)
		}

		summary.Results[i].Status = TaskMerged
		summary.MergedDomains = append(summary.MergedDomains, t.Domain)
		o.logger.Info("merged domain branch", "domain", t.Domain, "branch", t.Branch)
	}

	summary.Status = StatusSuccess

	if head, err := o.git.RevParse("HEAD"); err != nil {
		o.logger.Warn("failed to resolve trunk head", "error", err)
	} else {
		summary.TrunkHead = head
	}

	o.cleanupMerged(ordered)
	return summary, nil
}

// cleanupMerged discards worktrees and branches after a full success.
// Cleanup is skipped entirely unless the trunk verifies clean.
func (o *Orchestrator) cleanupMerged(ordered []Task) {
	if o.opts.KeepWorktrees || o.cleaner == nil {
		return
	}

	dirty, err := o.git.HasUncommittedChanges()
	if err != nil {
		o.logger.Warn("skipping cleanup, cannot verify trunk state", "error", err)
		return
	}
	if dirty {
		o.logger.Warn("skipping cleanup, trunk has uncommitted changes")
		return
	}

	for _, t := range ordered {
		if t.WorktreePath != "" {
			if err := o.cleaner.Remove(t.WorktreePath); err != nil {
				o.logger.Warn("failed to remove worktree", "path", t.WorktreePath, "error", err)
			}
		}
		if err := o.cleaner.DeleteBranch(t.Branch); err != nil {
			o.logger.Warn("failed to delete branch", "branch", t.Branch, "error", err)
		}
	}
	o.logger.Info("removed merged worktrees", "count", len(ordered))
}
