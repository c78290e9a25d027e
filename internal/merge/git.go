package merge

import (
	"os/exec"
	"strings"

	"github.com/Iron-Ham/divvy/internal/errors"
)

// GitOperations defines the git operations needed during a merge run.
// The abstraction enables testing without actual git repositories.
type GitOperations interface {
	// Checkout switches the trunk working tree to the given branch.
	Checkout(branch string) error

	// Merge merges the specified branch into the current branch with a
	// merge commit. A conflict is returned as a *errors.GitError
	// wrapping errors.ErrMergeConflict.
	Merge(branch string) error

	// GetConflicts returns files with unresolved conflicts.
	GetConflicts() []string

	// AbortMerge aborts an in-progress merge operation.
	AbortMerge() error

	// ResetHard resets the working tree to the given revision.
	ResetHard(rev string) error

	// RevParse resolves a revision to a full SHA.
	RevParse(rev string) (string, error)

	// HasUncommittedChanges reports tracked modifications in the
	// working tree. Untracked files do not count.
	HasUncommittedChanges() (bool, error)

	// CurrentBranch returns the branch currently checked out.
	CurrentBranch() (string, error)
}

// DefaultGitOperations implements GitOperations by running git in the
// trunk working tree.
type DefaultGitOperations struct {
	// WorkDir is the trunk working tree merges land in.
	WorkDir string
}

// NewDefaultGitOperations creates git operations bound to workDir.
func NewDefaultGitOperations(workDir string) *DefaultGitOperations {
	return &DefaultGitOperations{WorkDir: workDir}
}

func (g *DefaultGitOperations) run(args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.WorkDir
	return cmd.CombinedOutput()
}

// Checkout switches the working tree to the given branch.
func (g *DefaultGitOperations) Checkout(branch string) error {
	output, err := g.run("checkout", branch)
	if err != nil {
		return errors.NewGitError("failed to checkout branch", err).
			WithBranch(branch).
			WithGitOutput(string(output))
	}
	return nil
}

// Merge merges the specified branch into the current branch. The merge
// always creates a merge commit so both sides' history is preserved.
func (g *DefaultGitOperations) Merge(branch string) error {
	output, err := g.run("merge", "--no-ff", branch)
	if err != nil {
		outputStr := string(output)
		if strings.Contains(outputStr, "CONFLICT") || strings.Contains(outputStr, "Automatic merge failed") {
			return errors.NewGitError("merge conflict", errors.ErrMergeConflict).
				WithBranch(branch).
				WithGitOutput(outputStr)
		}
		return errors.NewGitError("failed to merge branch", err).
			WithBranch(branch).
			WithGitOutput(outputStr)
	}
	return nil
}

// GetConflicts returns files with unresolved conflicts. Must be called
// before AbortMerge clears the unmerged state.
func (g *DefaultGitOperations) GetConflicts() []string {
	cmd := exec.Command("git", "diff", "--name-only", "--diff-filter=U")
	cmd.Dir = g.WorkDir

	output, err := cmd.Output()
	if err != nil {
		return nil
	}

	lines := strings.TrimSpace(string(output))
	if lines == "" {
		return nil
	}
	return strings.Split(lines, "\n")
}

// AbortMerge aborts an in-progress merge operation.
func (g *DefaultGitOperations) AbortMerge() error {
	output, err := g.run("merge", "--abort")
	if err != nil {
		return errors.NewGitError("failed to abort merge", err).
			WithGitOutput(string(output))
	}
	return nil
}

// ResetHard resets the working tree to the given revision.
func (g *DefaultGitOperations) ResetHard(rev string) error {
	output, err := g.run("reset", "--hard", rev)
	if err != nil {
		return errors.NewGitError("failed to reset working tree", err).
			WithGitOutput(string(output))
	}
	return nil
}

// RevParse resolves a revision to a full SHA.
func (g *DefaultGitOperations) RevParse(rev string) (string, error) {
	cmd := exec.Command("git", "rev-parse", rev)
	cmd.Dir = g.WorkDir

	output, err := cmd.Output()
	if err != nil {
		return "", errors.NewGitError("failed to resolve revision", err).
			WithRepository(g.WorkDir)
	}
	return strings.TrimSpace(string(output)), nil
}

// HasUncommittedChanges reports tracked modifications in the working
// tree. Untracked files (the .divvy directory among them) are ignored.
func (g *DefaultGitOperations) HasUncommittedChanges() (bool, error) {
	cmd := exec.Command("git", "status", "--porcelain", "--untracked-files=no")
	cmd.Dir = g.WorkDir

	output, err := cmd.Output()
	if err != nil {
		return false, errors.NewGitError("failed to check git status", err).
			WithRepository(g.WorkDir)
	}
	return len(strings.TrimSpace(string(output))) > 0, nil
}

// CurrentBranch returns the branch currently checked out.
func (g *DefaultGitOperations) CurrentBranch() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = g.WorkDir

	output, err := cmd.Output()
	if err != nil {
		return "", errors.NewGitError("failed to get current branch", err).
			WithRepository(g.WorkDir)
	}
	return strings.TrimSpace(string(output)), nil
}

// Ensure DefaultGitOperations implements GitOperations.
var _ GitOperations = (*DefaultGitOperations)(nil)
