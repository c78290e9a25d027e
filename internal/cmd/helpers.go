package cmd

import (
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/Iron-Ham/divvy/internal/config"
	"github.com/Iron-Ham/divvy/internal/logging"
	"github.com/Iron-Ham/divvy/internal/worktree"
)

// repoRoot locates the enclosing git repository starting from the current
// directory.
func repoRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return worktree.FindGitRoot(cwd)
}

// openStore opens the worktree metadata store under the repository's .divvy
// directory.
func openStore(root string) (*worktree.Store, error) {
	return worktree.NewStore(worktree.DefaultStoreDir(root))
}

// newLogger builds the configured logger. The returned close function is
// always safe to defer, including when logging is disabled.
func newLogger(cfg *config.Config, root string) (*logging.Logger, func()) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), func() {}
	}
	logger, err := logging.NewLoggerWithRotation(filepath.Join(root, ".divvy"), cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return logging.NopLogger(), func() {}
	}
	return logger, func() { _ = logger.Close() }
}

// termWidth reports the terminal width, defaulting to 80 when stdout is not
// a terminal.
func termWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}
