package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Divvy configuration
type Config struct {
	Planner   PlannerConfig   `mapstructure:"planner"`
	Merge     MergeConfig     `mapstructure:"merge"`
	Worktrees WorktreesConfig `mapstructure:"worktrees"`
	Rules     RulesConfig     `mapstructure:"rules"`
	History   HistoryConfig   `mapstructure:"history"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// PlannerConfig controls the parallel execution decision thresholds
type PlannerConfig struct {
	// MinFiles is the minimum number of files required before parallel
	// execution is considered worthwhile (default: 5)
	MinFiles int `mapstructure:"min_files"`
	// MinDomains is the minimum number of distinct domains required for
	// parallel execution (default: 2)
	MinDomains int `mapstructure:"min_domains"`
	// MaxOverlap is the overlap percentage at or above which parallel
	// execution is rejected (default: 30.0)
	MaxOverlap float64 `mapstructure:"max_overlap"`
}

// MergeConfig controls how domain branches are merged back to the trunk
type MergeConfig struct {
	// Priority is the domain merge order. Domains not listed merge after
	// all listed domains, in input order.
	// Default: [database, backend, frontend, tests, docs]
	Priority []string `mapstructure:"priority"`
	// CleanupOnSuccess removes worktrees and branches after a fully
	// successful merge run (default: true)
	CleanupOnSuccess bool `mapstructure:"cleanup_on_success"`
	// TargetBranch is the branch to merge into. Empty means auto-detect
	// (main, then master).
	TargetBranch string `mapstructure:"target_branch"`
}

// WorktreesConfig controls where and how git worktrees are provisioned
type WorktreesConfig struct {
	// Dir is the directory where git worktrees are created.
	// If empty, defaults to ".divvy/worktrees" relative to the repository root.
	// Can be an absolute path to store worktrees outside the repository
	// (e.g., on a faster drive or to avoid cluttering the project).
	// Supports ~ for home directory expansion.
	Dir string `mapstructure:"dir"`
	// BaseBranch is the branch new worktree branches fork from.
	// Empty means auto-detect (main, then master).
	BaseBranch string `mapstructure:"base_branch"`
	// BranchPrefix is the prefix for generated branch names (default: "feature")
	// Branches are named <prefix>/<epic>/<domain-slug>.
	BranchPrefix string `mapstructure:"branch_prefix"`
}

// RulesConfig controls domain classification rules
type RulesConfig struct {
	// RulesFile is the path to a YAML file with custom classification rules.
	// Empty means use the built-in rule table.
	RulesFile string `mapstructure:"rules_file"`
}

// HistoryConfig controls persistence of plan and merge runs
type HistoryConfig struct {
	// Enabled controls whether runs are recorded (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Path is the SQLite database path. Empty means ".divvy/history.db"
	// relative to the repository root.
	Path string `mapstructure:"path"`
}

// WatchConfig controls the overlap watcher
type WatchConfig struct {
	// DebounceMs is how long to wait after the last filesystem event before
	// re-evaluating overlap, in milliseconds (default: 400)
	DebounceMs int `mapstructure:"debounce_ms"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// Debounce returns the watch debounce as a time.Duration
func (w *WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// ResolveDir returns the resolved worktree directory path.
// If Dir is empty, it returns the default path relative to baseDir.
// If Dir starts with ~, it expands to the user's home directory.
// If Dir is a relative path, it's resolved relative to baseDir.
func (w *WorktreesConfig) ResolveDir(baseDir string) string {
	if w.Dir == "" {
		return filepath.Join(baseDir, ".divvy", "worktrees")
	}

	path := w.Dir

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// If relative path, resolve relative to baseDir
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	return path
}

// ResolvePath returns the resolved history database path.
// If Path is empty, it returns the default path relative to baseDir.
func (h *HistoryConfig) ResolvePath(baseDir string) string {
	if h.Path == "" {
		return filepath.Join(baseDir, ".divvy", "history.db")
	}
	if !filepath.IsAbs(h.Path) {
		return filepath.Join(baseDir, h.Path)
	}
	return h.Path
}

// DefaultMergePriority returns the built-in domain merge order
func DefaultMergePriority() []string {
	return []string{"database", "backend", "frontend", "tests", "docs"}
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Planner: PlannerConfig{
			MinFiles:   5,
			MinDomains: 2,
			MaxOverlap: 30.0,
		},
		Merge: MergeConfig{
			Priority:         DefaultMergePriority(),
			CleanupOnSuccess: true,
			TargetBranch:     "", // Empty means auto-detect
		},
		Worktrees: WorktreesConfig{
			Dir:          "", // Empty means use default: .divvy/worktrees
			BaseBranch:   "", // Empty means auto-detect
			BranchPrefix: "feature",
		},
		Rules: RulesConfig{
			RulesFile: "", // Empty means built-in rules
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "", // Empty means use default: .divvy/history.db
		},
		Watch: WatchConfig{
			DebounceMs: 400,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Planner defaults
	viper.SetDefault("planner.min_files", defaults.Planner.MinFiles)
	viper.SetDefault("planner.min_domains", defaults.Planner.MinDomains)
	viper.SetDefault("planner.max_overlap", defaults.Planner.MaxOverlap)

	// Merge defaults
	viper.SetDefault("merge.priority", defaults.Merge.Priority)
	viper.SetDefault("merge.cleanup_on_success", defaults.Merge.CleanupOnSuccess)
	viper.SetDefault("merge.target_branch", defaults.Merge.TargetBranch)

	// Worktrees defaults
	viper.SetDefault("worktrees.dir", defaults.Worktrees.Dir)
	viper.SetDefault("worktrees.base_branch", defaults.Worktrees.BaseBranch)
	viper.SetDefault("worktrees.branch_prefix", defaults.Worktrees.BranchPrefix)

	// Rules defaults
	viper.SetDefault("rules.rules_file", defaults.Rules.RulesFile)

	// History defaults
	viper.SetDefault("history.enabled", defaults.History.Enabled)
	viper.SetDefault("history.path", defaults.History.Path)

	// Watch defaults
	viper.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "divvy")
	}
	// Fall back to ~/.config/divvy
	home, err := os.UserHomeDir()
	if err != nil {
		return ".divvy"
	}
	return filepath.Join(home, ".config", "divvy")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
