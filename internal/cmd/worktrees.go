package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/divvy/internal/config"
	"github.com/Iron-Ham/divvy/internal/errors"
	"github.com/Iron-Ham/divvy/internal/plan"
	"github.com/Iron-Ham/divvy/internal/report"
	"github.com/Iron-Ham/divvy/internal/worktree"
)

var (
	worktreesEpic     string
	worktreesJSON     bool
	worktreesPlanFile string
)

var worktreesCmd = &cobra.Command{
	Use:   "worktrees",
	Short: "Manage per-domain worktrees",
	Long: `Worktrees provisions and tracks one git worktree per planned domain.

Each worktree checks out its own branch forked from the same base, so
domains work in isolation until merge. Without a subcommand, lists the
tracked worktrees and their statuses.`,
	RunE: runWorktreesList,
}

var worktreesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked worktrees",
	RunE:  runWorktreesList,
}

var worktreesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision worktrees from the saved plan",
	Long: `Create reads the plan artifact and provisions one worktree per domain.

The plan must have found parallel execution viable. Provisioning is
all-or-nothing: if any worktree fails to create, the ones created
earlier in the run are removed again.`,
	RunE: runWorktreesCreate,
}

var worktreesCompleteCmd = &cobra.Command{
	Use:   "complete <name>",
	Short: "Mark a worktree's work as completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorktreesComplete,
}

var worktreesFailCmd = &cobra.Command{
	Use:   "fail <name>",
	Short: "Mark a worktree's work as failed",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorktreesFail,
}

func init() {
	rootCmd.AddCommand(worktreesCmd)
	worktreesCmd.AddCommand(worktreesListCmd)
	worktreesCmd.AddCommand(worktreesCreateCmd)
	worktreesCmd.AddCommand(worktreesCompleteCmd)
	worktreesCmd.AddCommand(worktreesFailCmd)

	worktreesCmd.PersistentFlags().StringVar(&worktreesEpic, "epic", "", "limit to one epic's worktrees")
	worktreesCmd.PersistentFlags().BoolVar(&worktreesJSON, "json", false, "emit the listing as JSON")
	worktreesCreateCmd.Flags().StringVar(&worktreesPlanFile, "plan", "", "plan artifact to provision from (default .divvy/plan.json)")
}

func runWorktreesList(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	store, err := openStore(root)
	if err != nil {
		return err
	}

	metas, err := listMetas(store, worktreesEpic)
	if err != nil {
		return err
	}

	if worktreesJSON {
		data, err := json.MarshalIndent(metas, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode worktrees: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(report.RenderWorktrees(metas, termWidth()))
	return nil
}

func runWorktreesCreate(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	root, err := repoRoot()
	if err != nil {
		return err
	}

	artifactPath := worktreesPlanFile
	if artifactPath == "" {
		artifactPath = plan.DefaultArtifactPath(root)
	}
	artifact, err := plan.LoadArtifact(artifactPath)
	if err != nil {
		return err
	}
	if !artifact.Decision.Viable {
		return errors.Wrap(errors.ErrPreconditionFailed, "plan recommends sequential execution, nothing to provision")
	}

	epic := worktreesEpic
	if epic == "" {
		epic = artifact.Epic
	}
	if epic == "" {
		return errors.NewValidationError("epic is required: pass --epic here or to divvy plan").WithField("epic")
	}

	store, err := openStore(root)
	if err != nil {
		return err
	}
	mgr, err := worktree.NewManager(root)
	if err != nil {
		return err
	}

	logger, closeLogger := newLogger(cfg, root)
	defer closeLogger()

	prov := worktree.NewProvisioner(mgr, store, worktree.ProvisionOptions{
		Dir:          cfg.Worktrees.ResolveDir(root),
		BranchPrefix: cfg.Worktrees.BranchPrefix,
		BaseBranch:   cfg.Worktrees.BaseBranch,
		Logger:       logger,
	})

	metas, err := prov.Provision(epic, artifact.Plans)
	if err != nil {
		return fmt.Errorf("failed to provision worktrees: %w", err)
	}

	fmt.Printf("Provisioned %d worktrees for epic %q:\n", len(metas), epic)
	for _, meta := range metas {
		fmt.Printf("  %s %s\n", report.StatusIcon(meta.Status), meta.Name)
		fmt.Printf("    Branch: %s\n", meta.Branch)
		fmt.Printf("    Path:   %s\n", meta.Path)
	}
	return nil
}

func runWorktreesComplete(cmd *cobra.Command, args []string) error {
	return setWorktreeStatus(args[0], worktree.StatusCompleted)
}

func runWorktreesFail(cmd *cobra.Command, args []string) error {
	return setWorktreeStatus(args[0], worktree.StatusFailed)
}

func setWorktreeStatus(name string, status worktree.Status) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	store, err := openStore(root)
	if err != nil {
		return err
	}

	meta, err := store.UpdateStatus(name, status)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s is now %s\n", report.StatusIcon(meta.Status), meta.Name, meta.Status)
	return nil
}

// listMetas lists worktree metadata, filtered to one epic when given.
func listMetas(store *worktree.Store, epic string) ([]*worktree.Metadata, error) {
	if epic != "" {
		return store.ListByEpic(epic)
	}
	return store.List()
}
