package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/divvy/internal/config"
	"github.com/Iron-Ham/divvy/internal/domain"
	"github.com/Iron-Ham/divvy/internal/errors"
	"github.com/Iron-Ham/divvy/internal/history"
	"github.com/Iron-Ham/divvy/internal/logging"
	"github.com/Iron-Ham/divvy/internal/plan"
	"github.com/Iron-Ham/divvy/internal/report"
)

var (
	planFile       string
	planEpic       string
	planJSON       bool
	planMinFiles   int
	planMinDomains int
	planMaxOverlap float64
)

var planCmd = &cobra.Command{
	Use:   "plan [files...]",
	Short: "Decide whether a change set can be executed in parallel",
	Long: `Plan classifies the given file paths into domains and decides whether
the work is worth splitting across parallel worktrees.

Paths are read from arguments, from --file, or from stdin with --file -.
The decision and the per-domain breakdown are written to .divvy/plan.json
for worktree provisioning. Exits nonzero when the analysis recommends
sequential execution, so scripts can branch on the decision.`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVarP(&planFile, "file", "f", "", "read file paths from a file, one per line (- for stdin)")
	planCmd.Flags().StringVar(&planEpic, "epic", "", "epic name to associate with the plan")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "emit the decision as JSON")
	planCmd.Flags().IntVar(&planMinFiles, "min-files", 0, "override the minimum file count for parallel execution")
	planCmd.Flags().IntVar(&planMinDomains, "min-domains", 0, "override the minimum domain count for parallel execution")
	planCmd.Flags().Float64Var(&planMaxOverlap, "max-overlap", 0, "override the maximum overlap percentage for parallel execution")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	paths, err := collectPaths(args, planFile)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.Wrap(errors.ErrNoWorkItems, "no file paths given")
	}

	thresholds := plan.Thresholds{
		MinFiles:   cfg.Planner.MinFiles,
		MinDomains: cfg.Planner.MinDomains,
		MaxOverlap: cfg.Planner.MaxOverlap,
	}
	if cmd.Flags().Changed("min-files") {
		thresholds.MinFiles = planMinFiles
	}
	if cmd.Flags().Changed("min-domains") {
		thresholds.MinDomains = planMinDomains
	}
	if cmd.Flags().Changed("max-overlap") {
		thresholds.MaxOverlap = planMaxOverlap
	}

	classifier := domain.NewClassifier()
	if cfg.Rules.RulesFile != "" {
		classifier, err = domain.NewClassifierFromFile(cfg.Rules.RulesFile)
		if err != nil {
			return fmt.Errorf("failed to load classification rules: %w", err)
		}
	}

	result := plan.NewAnalyzer(classifier, thresholds).Analyze(paths)

	// The artifact and history live under the repository root when one
	// exists. Analysis itself does not need a repository.
	root, err := repoRoot()
	if err != nil {
		if root, err = os.Getwd(); err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	if err := plan.SaveArtifact(plan.DefaultArtifactPath(root), plan.NewArtifact(planEpic, result)); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	logger, closeLogger := newLogger(cfg, root)
	defer closeLogger()
	recordPlanRun(cmd, cfg, root, logger, result)

	if planJSON {
		data, err := json.MarshalIndent(result.Decision, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode decision: %w", err)
		}
		fmt.Println(string(data))
	} else {
		fmt.Print(report.RenderDecision(result, thresholds, termWidth()))
	}

	if !result.Decision.Viable {
		return ErrNotViable
	}
	return nil
}

// collectPaths merges positional arguments with paths read from pathFile.
// Blank lines and surrounding whitespace are dropped.
func collectPaths(args []string, pathFile string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		if p := strings.TrimSpace(arg); p != "" {
			paths = append(paths, p)
		}
	}
	if pathFile == "" {
		return paths, nil
	}

	var r io.Reader
	if pathFile == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(pathFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read path list: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if p := strings.TrimSpace(scanner.Text()); p != "" {
			paths = append(paths, p)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read path list: %w", err)
	}
	return paths, nil
}

// recordPlanRun stores the decision in run history. History failures are
// logged and never fail the plan itself.
func recordPlanRun(cmd *cobra.Command, cfg *config.Config, root string, logger *logging.Logger, result plan.Result) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.Open(cmd.Context(), cfg.History.ResolvePath(root))
	if err != nil {
		logger.Warn("history unavailable", "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	if _, err := store.RecordPlan(cmd.Context(), planEpic, result.Decision); err != nil {
		logger.Warn("failed to record plan run", "error", err)
	}
}
