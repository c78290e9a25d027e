package cleanup

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/Iron-Ham/divvy/internal/errors"
	"github.com/Iron-Ham/divvy/internal/logging"
	"github.com/Iron-Ham/divvy/internal/worktree"
)

// GitCleaner is the slice of worktree operations the sweeper needs.
// *worktree.Manager satisfies it.
type GitCleaner interface {
	Remove(path string) error
	DeleteBranch(branch string) error
	HasUncommittedChanges(path string) (bool, error)
}

// Options configure a sweep.
type Options struct {
	// Epic limits the sweep to one epic's worktrees. Empty sweeps all.
	Epic string

	// MaxAge is the abandonment cutoff. Zero means DefaultMaxAge.
	MaxAge time.Duration

	// All ignores the age cutoff when selecting abandoned worktrees.
	All bool

	// DryRun tallies what would be removed without touching anything.
	DryRun bool

	// DeleteBranches also deletes each target's branch.
	DeleteBranches bool

	// Force removes worktrees even with uncommitted changes.
	Force bool
}

// Sweeper scans worktree metadata and removes spent worktrees.
type Sweeper struct {
	git    GitCleaner
	store  *worktree.Store
	logger *logging.Logger
}

// NewSweeper creates a sweeper over the given store and git layer.
func NewSweeper(git GitCleaner, store *worktree.Store, logger *logging.Logger) *Sweeper {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Sweeper{git: git, store: store, logger: logger}
}

// Plan scans metadata and returns a pending job snapshotting every
// worktree due for cleanup. The job is not yet saved or executed.
func (s *Sweeper) Plan(repoRoot string, opts Options) (*Job, error) {
	job := NewJob(repoRoot)
	job.Epic = opts.Epic
	if opts.MaxAge > 0 {
		job.MaxAge = opts.MaxAge
	}
	job.All = opts.All
	job.DryRun = opts.DryRun
	job.DeleteBranches = opts.DeleteBranches
	job.Force = opts.Force

	targets, err := s.scan(job.Epic, job.MaxAge, job.All)
	if err != nil {
		return nil, err
	}
	job.Targets = targets
	return job, nil
}

// scan selects worktrees whose metadata is terminal or abandoned.
func (s *Sweeper) scan(epic string, maxAge time.Duration, all bool) ([]Target, error) {
	var metas []*worktree.Metadata
	var err error
	if epic != "" {
		metas, err = s.store.ListByEpic(epic)
	} else {
		metas, err = s.store.List()
	}
	if err != nil {
		return nil, errors.Wrap(err, "listing worktree metadata")
	}

	cutoff := time.Now().Add(-maxAge)
	targets := make([]Target, 0)

	for _, meta := range metas {
		var reason string
		switch {
		case meta.Status.IsTerminal():
			reason = ReasonTerminal
		case meta.Status == worktree.StatusCompleted:
			// Completed worktrees are waiting for merge, never swept.
			continue
		case all || meta.UpdatedAt.Before(cutoff):
			reason = ReasonAbandoned
		default:
			continue
		}

		dirty := false
		if _, statErr := os.Stat(meta.Path); statErr == nil {
			dirty, err = s.git.HasUncommittedChanges(meta.Path)
			if err != nil {
				s.logger.Warn("cannot check worktree status",
					"worktree", meta.Name,
					"error", err)
				dirty = false
			}
		}

		targets = append(targets, Target{
			Name:           meta.Name,
			Epic:           meta.Epic,
			Domain:         meta.Domain,
			Path:           meta.Path,
			Branch:         meta.Branch,
			Status:         meta.Status,
			Reason:         reason,
			HasUncommitted: dirty,
		})
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })
	return targets, nil
}

// Execute runs the job against its snapshotted targets and persists
// the outcome. Dry runs tally without removing anything.
func (s *Sweeper) Execute(job *Job) (*Results, error) {
	job.Status = JobStatusRunning
	job.StartedAt = time.Now().UTC()
	if err := job.Save(); err != nil {
		return nil, errors.Wrap(err, "saving cleanup job")
	}

	results := &Results{}
	var errs []string

	for _, target := range job.Targets {
		if target.HasUncommitted && !job.Force {
			results.Skipped++
			if !job.DryRun {
				errs = append(errs, fmt.Sprintf("skipped %s: has uncommitted changes", target.Name))
			}
			continue
		}

		if job.DryRun {
			results.WorktreesRemoved++
			if job.DeleteBranches && target.Branch != "" {
				results.BranchesDeleted++
			}
			results.MetadataArchived++
			continue
		}

		if _, err := os.Stat(target.Path); err == nil {
			if err := s.git.Remove(target.Path); err != nil {
				errs = append(errs, fmt.Sprintf("failed to remove worktree %s: %v", target.Name, err))
				continue
			}
			results.WorktreesRemoved++
			s.logger.Info("removed worktree",
				"worktree", target.Name,
				"reason", target.Reason)
		}

		if job.DeleteBranches && target.Branch != "" {
			if err := s.git.DeleteBranch(target.Branch); err != nil {
				if !errors.Is(err, errors.ErrBranchNotFound) {
					errs = append(errs, fmt.Sprintf("failed to delete branch %s: %v", target.Branch, err))
				}
			} else {
				results.BranchesDeleted++
			}
		}

		if target.Status != worktree.StatusCleaned {
			if _, err := s.store.UpdateStatus(target.Name, worktree.StatusCleaned); err != nil {
				s.logger.Warn("cannot mark worktree cleaned",
					"worktree", target.Name,
					"error", err)
			}
		}
		if err := s.store.Archive(target.Name); err != nil {
			if !errors.Is(err, errors.ErrWorktreeNotFound) {
				errs = append(errs, fmt.Sprintf("failed to archive metadata for %s: %v", target.Name, err))
			}
		} else {
			results.MetadataArchived++
		}
	}

	results.TotalRemoved = results.WorktreesRemoved + results.BranchesDeleted + results.MetadataArchived
	results.Errors = errs

	job.Results = results
	job.Status = JobStatusCompleted
	job.EndedAt = time.Now().UTC()
	if len(errs) > 0 && results.TotalRemoved == 0 {
		job.Status = JobStatusFailed
		job.Error = fmt.Sprintf("all operations failed: %d errors", len(errs))
	}

	if err := job.Save(); err != nil {
		return nil, errors.Wrap(err, "saving cleanup job results")
	}
	return results, nil
}
