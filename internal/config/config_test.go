package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Verify default planner config
	if cfg.Planner.MinFiles != 5 {
		t.Errorf("Planner.MinFiles = %d, want 5", cfg.Planner.MinFiles)
	}
	if cfg.Planner.MinDomains != 2 {
		t.Errorf("Planner.MinDomains = %d, want 2", cfg.Planner.MinDomains)
	}
	if cfg.Planner.MaxOverlap != 30.0 {
		t.Errorf("Planner.MaxOverlap = %f, want 30.0", cfg.Planner.MaxOverlap)
	}

	// Verify default merge config
	wantPriority := []string{"database", "backend", "frontend", "tests", "docs"}
	if len(cfg.Merge.Priority) != len(wantPriority) {
		t.Fatalf("Merge.Priority length = %d, want %d", len(cfg.Merge.Priority), len(wantPriority))
	}
	for i, domain := range wantPriority {
		if cfg.Merge.Priority[i] != domain {
			t.Errorf("Merge.Priority[%d] = %q, want %q", i, cfg.Merge.Priority[i], domain)
		}
	}
	if !cfg.Merge.CleanupOnSuccess {
		t.Error("Merge.CleanupOnSuccess should be true by default")
	}
	if cfg.Merge.TargetBranch != "" {
		t.Errorf("Merge.TargetBranch should be empty by default, got %q", cfg.Merge.TargetBranch)
	}

	// Verify default worktrees config
	if cfg.Worktrees.Dir != "" {
		t.Errorf("Worktrees.Dir should be empty by default, got %q", cfg.Worktrees.Dir)
	}
	if cfg.Worktrees.BranchPrefix != "feature" {
		t.Errorf("Worktrees.BranchPrefix = %q, want %q", cfg.Worktrees.BranchPrefix, "feature")
	}

	// Verify default history config
	if !cfg.History.Enabled {
		t.Error("History.Enabled should be true by default")
	}
	if cfg.History.Path != "" {
		t.Errorf("History.Path should be empty by default, got %q", cfg.History.Path)
	}

	// Verify default watch config
	if cfg.Watch.DebounceMs != 400 {
		t.Errorf("Watch.DebounceMs = %d, want 400", cfg.Watch.DebounceMs)
	}

	// Verify default logging config
	if !cfg.Logging.Enabled {
		t.Error("Logging.Enabled should be true by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.MaxSizeMB != 10 {
		t.Errorf("Logging.MaxSizeMB = %d, want 10", cfg.Logging.MaxSizeMB)
	}
	if cfg.Logging.MaxBackups != 3 {
		t.Errorf("Logging.MaxBackups = %d, want 3", cfg.Logging.MaxBackups)
	}
}

func TestWatchConfig_Debounce(t *testing.T) {
	tests := []struct {
		ms       int
		expected time.Duration
	}{
		{400, 400 * time.Millisecond},
		{100, 100 * time.Millisecond},
		{1000, 1 * time.Second},
		{0, 0},
	}

	for _, tt := range tests {
		cfg := WatchConfig{DebounceMs: tt.ms}
		result := cfg.Debounce()
		if result != tt.expected {
			t.Errorf("Debounce() with %dms = %v, want %v", tt.ms, result, tt.expected)
		}
	}
}

func TestDefaultMergePriority(t *testing.T) {
	priority := DefaultMergePriority()

	expected := []string{"database", "backend", "frontend", "tests", "docs"}
	if len(priority) != len(expected) {
		t.Errorf("DefaultMergePriority() length = %d, want %d", len(priority), len(expected))
	}

	for i, domain := range expected {
		if priority[i] != domain {
			t.Errorf("DefaultMergePriority()[%d] = %q, want %q", i, priority[i], domain)
		}
	}
}

func TestWorktreesConfig_ResolveDir(t *testing.T) {
	tests := []struct {
		name     string
		dir      string
		baseDir  string
		expected string
	}{
		{
			name:     "empty dir uses default",
			dir:      "",
			baseDir:  "/repo",
			expected: filepath.Join("/repo", ".divvy", "worktrees"),
		},
		{
			name:     "absolute dir used as-is",
			dir:      "/fast/worktrees",
			baseDir:  "/repo",
			expected: "/fast/worktrees",
		},
		{
			name:     "relative dir resolved against base",
			dir:      "wt",
			baseDir:  "/repo",
			expected: filepath.Join("/repo", "wt"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := WorktreesConfig{Dir: tt.dir}
			result := cfg.ResolveDir(tt.baseDir)
			if result != tt.expected {
				t.Errorf("ResolveDir(%q) = %q, want %q", tt.baseDir, result, tt.expected)
			}
		})
	}

	t.Run("tilde expands to home", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("no home directory available")
		}
		cfg := WorktreesConfig{Dir: "~/worktrees"}
		result := cfg.ResolveDir("/repo")
		expected := filepath.Join(home, "worktrees")
		if result != expected {
			t.Errorf("ResolveDir() = %q, want %q", result, expected)
		}
	})
}

func TestHistoryConfig_ResolvePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		baseDir  string
		expected string
	}{
		{
			name:     "empty path uses default",
			path:     "",
			baseDir:  "/repo",
			expected: filepath.Join("/repo", ".divvy", "history.db"),
		},
		{
			name:     "absolute path used as-is",
			path:     "/var/lib/divvy.db",
			baseDir:  "/repo",
			expected: "/var/lib/divvy.db",
		},
		{
			name:     "relative path resolved against base",
			path:     "runs.db",
			baseDir:  "/repo",
			expected: filepath.Join("/repo", "runs.db"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := HistoryConfig{Path: tt.path}
			result := cfg.ResolvePath(tt.baseDir)
			if result != tt.expected {
				t.Errorf("ResolvePath(%q) = %q, want %q", tt.baseDir, result, tt.expected)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	// Test with XDG_CONFIG_HOME set
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_CONFIG_HOME")
		defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

		_ = os.Setenv("XDG_CONFIG_HOME", "/custom/config")
		result := ConfigDir()
		expected := "/custom/config/divvy"
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})

	// Test without XDG_CONFIG_HOME
	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		original := os.Getenv("XDG_CONFIG_HOME")
		defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

		_ = os.Setenv("XDG_CONFIG_HOME", "")
		result := ConfigDir()

		// Should be based on home directory
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "divvy")
		if result != expected {
			t.Errorf("ConfigDir() = %q, want %q", result, expected)
		}
	})
}

func TestConfigFile(t *testing.T) {
	original := os.Getenv("XDG_CONFIG_HOME")
	defer func() { _ = os.Setenv("XDG_CONFIG_HOME", original) }()

	_ = os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	result := ConfigFile()
	expected := "/custom/config/divvy/config.yaml"
	if result != expected {
		t.Errorf("ConfigFile() = %q, want %q", result, expected)
	}
}

func TestGet(t *testing.T) {
	// Set defaults in viper first (normally done by cmd init)
	SetDefaults()

	// Get() should return defaults when no config file exists
	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}

	// Should have default values
	if cfg.Planner.MinFiles != 5 {
		t.Errorf("Get().Planner.MinFiles = %d, want 5", cfg.Planner.MinFiles)
	}
	if cfg.Worktrees.BranchPrefix != "feature" {
		t.Errorf("Get().Worktrees.BranchPrefix = %q, want %q", cfg.Worktrees.BranchPrefix, "feature")
	}
}
