package worktree

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/divvy/internal/errors"
	"github.com/Iron-Ham/divvy/internal/logging"
	"github.com/Iron-Ham/divvy/internal/plan"
)

// ProvisionOptions configure a Provisioner.
type ProvisionOptions struct {
	// Dir is the parent directory worktrees are checked out under.
	Dir string
	// BranchPrefix prefixes every provisioned branch. Empty means
	// "feature".
	BranchPrefix string
	// BaseBranch is the branch worktrees start from. Empty means the
	// repository trunk (main or master).
	BaseBranch string
	// Logger receives provisioning progress. Nil discards it.
	Logger *logging.Logger
}

// Provisioner creates one worktree per domain plan and records a
// metadata file for each.
type Provisioner struct {
	repo   Repository
	store  *Store
	opts   ProvisionOptions
	logger *logging.Logger
}

// NewProvisioner creates a Provisioner.
func NewProvisioner(repo Repository, store *Store, opts ProvisionOptions) *Provisioner {
	if opts.BranchPrefix == "" {
		opts.BranchPrefix = "feature"
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Provisioner{
		repo:   repo,
		store:  store,
		opts:   opts,
		logger: logger,
	}
}

// Provision creates a worktree, branch, and metadata record for every
// domain plan. All worktrees branch off the same base so each starts
// from an identical tree.
//
// Provisioning is all-or-nothing: on any failure, worktrees and
// branches created earlier in the run are removed before the error is
// returned.
func (p *Provisioner) Provision(epic string, plans []plan.DomainPlan) ([]*Metadata, error) {
	if epic == "" {
		return nil, errors.NewValidationError("epic must not be empty").WithField("epic")
	}
	if len(plans) == 0 {
		return nil, errors.Wrap(errors.ErrNoWorkItems, "no domain plans to provision")
	}

	dir, err := filepath.Abs(p.opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve worktrees directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create worktrees directory: %w", err)
	}

	base := p.opts.BaseBranch
	if base == "" {
		base = p.repo.FindMainBranch()
	}

	var provisioned []*Metadata
	for _, dp := range plans {
		branch := BranchName(p.opts.BranchPrefix, epic, dp.Domain)
		if p.repo.BranchExists(branch) {
			p.rollback(provisioned)
			return nil, errors.NewGitError("branch from a previous run is in the way", errors.ErrBranchExists).
				WithBranch(branch)
		}

		name := WorktreeName(epic, dp.Domain)
		path := filepath.Join(dir, name)

		if err := p.repo.CreateFromBranch(path, branch, base); err != nil {
			p.rollback(provisioned)
			return nil, err
		}

		now := time.Now().UTC()
		meta := &Metadata{
			Name:        name,
			Epic:        epic,
			Domain:      dp.Domain,
			Description: dp.Description,
			Branch:      branch,
			BaseBranch:  base,
			Path:        path,
			Files:       dp.Files,
			Status:      StatusCreated,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := p.store.Save(meta); err != nil {
			_ = p.repo.Remove(path)
			_ = p.repo.DeleteBranch(branch)
			p.rollback(provisioned)
			return nil, err
		}

		p.logger.Info("provisioned worktree",
			"name", name,
			"domain", dp.Domain,
			"branch", branch,
			"base", base,
			"files", len(dp.Files))
		provisioned = append(provisioned, meta)
	}

	return provisioned, nil
}

// rollback undoes worktrees created earlier in a failed run.
func (p *Provisioner) rollback(metas []*Metadata) {
	for _, m := range metas {
		if err := p.repo.Remove(m.Path); err != nil {
			p.logger.Warn("rollback: failed to remove worktree", "name", m.Name, "error", err)
		}
		if err := p.repo.DeleteBranch(m.Branch); err != nil {
			p.logger.Warn("rollback: failed to delete branch", "branch", m.Branch, "error", err)
		}
		if err := p.store.Delete(m.Name); err != nil {
			p.logger.Warn("rollback: failed to delete metadata", "name", m.Name, "error", err)
		}
	}
}
