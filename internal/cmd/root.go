// Package cmd implements the divvy command line interface.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/divvy/internal/config"
	"github.com/Iron-Ham/divvy/internal/errors"
)

// ErrNotViable is returned by the plan command when analysis recommends
// sequential execution. main maps it to a nonzero exit without printing an
// error, since the decision itself is the output.
var ErrNotViable = errors.New("parallel execution is not viable")

var rootCmd = &cobra.Command{
	Use:   "divvy",
	Short: "Parallel execution planner built on git worktrees",
	Long: `Divvy decides whether a set of file changes can be worked on in
parallel, provisions one git worktree per file domain when it can, and
merges the resulting branches back to the trunk in priority order.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is .divvy/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".divvy")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/divvy")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DIVVY")
	// Replace dots with underscores for nested keys in env vars
	// e.g., DIVVY_PLANNER_MIN_FILES for planner.min_files
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
