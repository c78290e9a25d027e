// Package worktree provisions and manages git worktrees for parallel
// execution.
//
// A Manager wraps the git CLI through a CommandExecutor so every
// operation can be exercised against a mock in tests. Metadata about
// each provisioned worktree (domain, branch, status lifecycle) is kept
// as JSON files in a Store under the repository's .divvy directory, and
// a Provisioner ties the two together: one worktree plus one metadata
// record per domain plan.
package worktree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Iron-Ham/divvy/internal/errors"
)

// FindGitRoot finds the root of the git repository by traversing up from
// startDir. It returns the directory containing .git (either a directory
// or a file for worktrees). Returns an error if no git repository is
// found.
func FindGitRoot(startDir string) (string, error) {
	dir := startDir
	for {
		gitPath := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitPath); err == nil {
			// .git can be a directory (normal repo) or a file (worktree)
			if info.IsDir() || info.Mode().IsRegular() {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Wrapf(errors.ErrNotGitRepository, "no .git found in %s or any parent", startDir)
		}
		dir = parent
	}
}

// Manager performs git worktree, branch, and status operations for one
// repository.
type Manager struct {
	repoDir  string
	executor CommandExecutor
}

// NewManager creates a Manager for the repository containing repoDir.
// The repository root may be a parent of repoDir.
func NewManager(repoDir string) (*Manager, error) {
	gitRoot, err := FindGitRoot(repoDir)
	if err != nil {
		return nil, err
	}
	return &Manager{
		repoDir:  gitRoot,
		executor: NewCLICommandExecutor(),
	}, nil
}

// NewManagerWithExecutor creates a Manager with a custom executor and
// no repository discovery. This is primarily useful for testing.
func NewManagerWithExecutor(repoDir string, executor CommandExecutor) *Manager {
	return &Manager{
		repoDir:  repoDir,
		executor: executor,
	}
}

// RepoDir returns the repository root the manager operates on.
func (m *Manager) RepoDir() string {
	return m.repoDir
}

// Create creates a new worktree at the given path with a new branch
// from the repository HEAD.
func (m *Manager) Create(path, branch string) error {
	output, err := m.executor.Run(m.repoDir, "git", "worktree", "add", "-b", branch, path)
	if err != nil {
		return m.createError(output, err, path, branch)
	}
	return nil
}

// CreateFromBranch creates a new worktree at the given path with a new
// branch based off a specific base branch rather than HEAD.
func (m *Manager) CreateFromBranch(path, newBranch, baseBranch string) error {
	output, err := m.executor.Run(m.repoDir, "git", "worktree", "add", "-b", newBranch, path, baseBranch)
	if err != nil {
		return m.createError(output, err, path, newBranch)
	}
	return nil
}

// createError classifies a failed worktree add. Git reports an existing
// branch with "already exists".
func (m *Manager) createError(output []byte, err error, path, branch string) error {
	cause := err
	if strings.Contains(string(output), "already exists") {
		cause = errors.ErrBranchExists
	}
	return errors.NewGitError("failed to create worktree", cause).
		WithWorktree(path).
		WithBranch(branch).
		WithGitOutput(string(output))
}

// Remove removes a worktree. If git refuses, the directory is deleted
// manually and stale worktree references are pruned.
func (m *Manager) Remove(path string) error {
	output, err := m.executor.Run(m.repoDir, "git", "worktree", "remove", "--force", path)
	if err == nil {
		return nil
	}

	if strings.Contains(string(output), "is not a working tree") {
		return errors.NewGitError("failed to remove worktree", errors.ErrWorktreeNotFound).
			WithWorktree(path).
			WithGitOutput(string(output))
	}

	// Fall back to manual cleanup
	_ = os.RemoveAll(path)
	_ = m.Prune()

	return errors.NewGitError("failed to remove worktree cleanly", err).
		WithWorktree(path).
		WithGitOutput(string(output))
}

// Prune removes stale administrative entries for worktrees whose
// directories no longer exist.
func (m *Manager) Prune() error {
	return m.executor.RunQuiet(m.repoDir, "git", "worktree", "prune")
}

// List returns the paths of all worktrees in the repository, including
// the primary working tree.
func (m *Manager) List() ([]string, error) {
	output, err := m.executor.Run(m.repoDir, "git", "worktree", "list", "--porcelain")
	if err != nil {
		return nil, errors.NewGitError("failed to list worktrees", err).
			WithRepository(m.repoDir).
			WithGitOutput(string(output))
	}

	var worktrees []string
	for _, line := range strings.Split(string(output), "\n") {
		if strings.HasPrefix(line, "worktree ") {
			worktrees = append(worktrees, strings.TrimPrefix(line, "worktree "))
		}
	}
	return worktrees, nil
}

// CurrentBranch returns the branch checked out at the given worktree
// path.
func (m *Manager) CurrentBranch(path string) (string, error) {
	output, err := m.executor.Run(path, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", errors.NewGitError("failed to get current branch", err).
			WithWorktree(path).
			WithGitOutput(string(output))
	}
	return strings.TrimSpace(string(output)), nil
}

// DeleteBranch force-deletes a branch by name.
func (m *Manager) DeleteBranch(branch string) error {
	output, err := m.executor.Run(m.repoDir, "git", "branch", "-D", branch)
	if err != nil {
		cause := err
		if strings.Contains(string(output), "not found") {
			cause = errors.ErrBranchNotFound
		}
		return errors.NewGitError("failed to delete branch", cause).
			WithBranch(branch).
			WithGitOutput(string(output))
	}
	return nil
}

// BranchExists reports whether a local branch with the given name
// exists.
func (m *Manager) BranchExists(branch string) bool {
	return m.executor.RunQuiet(m.repoDir, "git", "rev-parse", "--verify", "--quiet", "refs/heads/"+branch) == nil
}

// FindMainBranch returns the name of the trunk branch: "main" when it
// exists, otherwise "master".
func (m *Manager) FindMainBranch() string {
	if m.executor.RunQuiet(m.repoDir, "git", "rev-parse", "--verify", "--quiet", "refs/heads/main") == nil {
		return "main"
	}
	return "master"
}

// HasUncommittedChanges returns true if the worktree at path has staged,
// unstaged, or untracked changes.
func (m *Manager) HasUncommittedChanges(path string) (bool, error) {
	output, err := m.executor.Run(path, "git", "status", "--porcelain")
	if err != nil {
		return false, errors.NewGitError("failed to check git status", err).
			WithWorktree(path).
			WithGitOutput(string(output))
	}
	return len(strings.TrimSpace(string(output))) > 0, nil
}

// CommitAll stages and commits all changes in the worktree at path.
// Returns nil if there is nothing to commit.
func (m *Manager) CommitAll(path, message string) error {
	output, err := m.executor.Run(path, "git", "add", "-A")
	if err != nil {
		return errors.NewGitError("failed to stage changes", err).
			WithWorktree(path).
			WithGitOutput(string(output))
	}

	output, err = m.executor.Run(path, "git", "commit", "-m", message)
	if err != nil {
		if strings.Contains(string(output), "nothing to commit") {
			return nil
		}
		return errors.NewGitError("failed to commit changes", err).
			WithWorktree(path).
			WithGitOutput(string(output))
	}
	return nil
}

// GetChangedFiles returns the files changed on the worktree's branch
// since it diverged from baseBranch. Uses three-dot syntax so only the
// branch's own changes are reported.
func (m *Manager) GetChangedFiles(path, baseBranch string) ([]string, error) {
	output, err := m.executor.Run(path, "git", "diff", "--name-only", baseBranch+"...HEAD")
	if err != nil {
		return nil, errors.NewGitError("failed to get changed files", err).
			WithWorktree(path).
			WithBranch(baseBranch).
			WithGitOutput(string(output))
	}

	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return []string{}, nil
	}
	return strings.Split(trimmed, "\n"), nil
}

// RevParse resolves a revision (for example "HEAD") to a full SHA in
// the worktree at path.
func (m *Manager) RevParse(path, rev string) (string, error) {
	output, err := m.executor.Run(path, "git", "rev-parse", rev)
	if err != nil {
		return "", errors.NewGitError(fmt.Sprintf("failed to resolve %s", rev), err).
			WithWorktree(path).
			WithGitOutput(string(output))
	}
	return strings.TrimSpace(string(output)), nil
}
