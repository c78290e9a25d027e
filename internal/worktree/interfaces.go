package worktree

// WorktreeManager defines operations for creating and destroying git
// worktrees. Worktrees give each domain its own working directory
// attached to the same repository, which is what makes parallel
// execution possible without clones.
type WorktreeManager interface {
	// Create creates a new worktree at the given path with a new branch
	// from HEAD.
	Create(path, branch string) error

	// CreateFromBranch creates a new worktree at the given path with a
	// new branch based off a specific base branch.
	CreateFromBranch(path, newBranch, baseBranch string) error

	// Remove removes a worktree at the given path.
	Remove(path string) error

	// Prune removes stale worktree references.
	Prune() error

	// List returns paths of all worktrees in the repository.
	List() ([]string, error)

	// RepoDir returns the repository root worktrees are managed from.
	RepoDir() string
}

// BranchManager defines operations for managing git branches.
type BranchManager interface {
	// DeleteBranch force-deletes a branch by name.
	DeleteBranch(branch string) error

	// BranchExists reports whether a local branch exists.
	BranchExists(branch string) bool

	// CurrentBranch returns the branch checked out at a worktree path.
	CurrentBranch(path string) (string, error)

	// FindMainBranch returns the trunk branch name (main or master).
	FindMainBranch() string
}

// StatusProvider defines operations for inspecting worktree state.
type StatusProvider interface {
	// HasUncommittedChanges checks if a worktree has uncommitted changes.
	HasUncommittedChanges(path string) (bool, error)

	// CommitAll stages and commits all changes in a worktree.
	CommitAll(path, message string) error

	// GetChangedFiles returns files changed since diverging from
	// baseBranch.
	GetChangedFiles(path, baseBranch string) ([]string, error)

	// RevParse resolves a revision to a full SHA in a worktree.
	RevParse(path, rev string) (string, error)
}

// Repository combines all worktree operation interfaces. Components
// that need more than one category accept this composite.
type Repository interface {
	WorktreeManager
	BranchManager
	StatusProvider
}

// Ensure Manager implements all interfaces at compile time.
var (
	_ WorktreeManager = (*Manager)(nil)
	_ BranchManager   = (*Manager)(nil)
	_ StatusProvider  = (*Manager)(nil)
	_ Repository      = (*Manager)(nil)
)
