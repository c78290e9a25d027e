package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/divvy/internal/config"
	"github.com/Iron-Ham/divvy/internal/conflict"
	"github.com/Iron-Ham/divvy/internal/tui"
)

var (
	watchEpic  string
	watchPlain bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch worktrees for overlapping edits",
	Long: `Watch follows the active worktrees during the parallel phase and flags
files modified in more than one worktree, the edits most likely to
conflict at merge time.

Runs a full-screen view on a terminal; --plain (or a non-terminal
stdout) prints one line per overlap instead.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchEpic, "epic", "", "watch only one epic's worktrees")
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "line output instead of the full-screen view")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	root, err := repoRoot()
	if err != nil {
		return err
	}
	store, err := openStore(root)
	if err != nil {
		return err
	}

	metas, err := listMetas(store, watchEpic)
	if err != nil {
		return err
	}

	logger, closeLogger := newLogger(cfg, root)
	defer closeLogger()

	detector, err := conflict.NewWithDebounce(cfg.Watch.Debounce())
	if err != nil {
		return fmt.Errorf("failed to create overlap detector: %w", err)
	}
	defer func() { _ = detector.Close() }()

	watched := 0
	for _, meta := range metas {
		if meta.Status.IsTerminal() {
			continue
		}
		if err := detector.AddWorktree(meta.Name, meta.Path); err != nil {
			logger.Warn("cannot watch worktree", "worktree", meta.Name, "error", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		fmt.Println("No active worktrees to watch.")
		return nil
	}

	detector.Start()

	if !watchPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		return tui.Run(tui.New(store, detector, watchEpic))
	}
	return watchPlainLoop(cmd, detector, watched)
}

// watchPlainLoop prints one line per newly overlapping file until
// interrupted. The callback runs on the detector's goroutine, which is
// the only writer to seen.
func watchPlainLoop(cmd *cobra.Command, detector *conflict.Detector, watched int) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seen := make(map[string]bool)
	detector.SetCallback(func(conflicts []conflict.FileConflict) {
		for _, fc := range conflicts {
			key := fc.RelativePath + "|" + strings.Join(fc.Worktrees, ",")
			if seen[key] {
				continue
			}
			seen[key] = true
			fmt.Printf("overlap: %s (%s)\n", fc.RelativePath, strings.Join(fc.Worktrees, ", "))
		}
	})

	fmt.Printf("Watching %d worktrees for overlapping edits. Ctrl-C to stop.\n", watched)
	<-ctx.Done()
	fmt.Println()
	return nil
}
