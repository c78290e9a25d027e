package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

// hasFieldError reports whether errs contains an error for the given field.
func hasFieldError(errs []ValidationError, field string) bool {
	for _, err := range errs {
		if err.Field == field {
			return true
		}
	}
	return false
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Default config should be valid, got %d errors: %v", len(errs), errs)
	}
}

func TestConfig_Validate_Planner(t *testing.T) {
	t.Run("zero min_files", func(t *testing.T) {
		cfg := Default()
		cfg.Planner.MinFiles = 0
		errs := cfg.Validate()
		if !hasFieldError(errs, "planner.min_files") {
			t.Error("expected error for zero min_files")
		}
	})

	t.Run("excessive min_files", func(t *testing.T) {
		cfg := Default()
		cfg.Planner.MinFiles = 20000
		errs := cfg.Validate()
		if !hasFieldError(errs, "planner.min_files") {
			t.Error("expected error for excessive min_files")
		}
	})

	t.Run("zero min_domains", func(t *testing.T) {
		cfg := Default()
		cfg.Planner.MinDomains = 0
		errs := cfg.Validate()
		if !hasFieldError(errs, "planner.min_domains") {
			t.Error("expected error for zero min_domains")
		}
	})

	t.Run("negative max_overlap", func(t *testing.T) {
		cfg := Default()
		cfg.Planner.MaxOverlap = -1
		errs := cfg.Validate()
		if !hasFieldError(errs, "planner.max_overlap") {
			t.Error("expected error for negative max_overlap")
		}
	})

	t.Run("max_overlap above 100", func(t *testing.T) {
		cfg := Default()
		cfg.Planner.MaxOverlap = 101
		errs := cfg.Validate()
		if !hasFieldError(errs, "planner.max_overlap") {
			t.Error("expected error for max_overlap above 100")
		}
	})

	t.Run("max_overlap of 0 is valid", func(t *testing.T) {
		cfg := Default()
		cfg.Planner.MaxOverlap = 0
		errs := cfg.Validate()
		if hasFieldError(errs, "planner.max_overlap") {
			t.Error("zero max_overlap should be valid")
		}
	})

	t.Run("max_overlap of 100 is valid", func(t *testing.T) {
		cfg := Default()
		cfg.Planner.MaxOverlap = 100
		errs := cfg.Validate()
		if hasFieldError(errs, "planner.max_overlap") {
			t.Error("max_overlap of 100 should be valid")
		}
	})
}

func TestConfig_Validate_Merge(t *testing.T) {
	t.Run("empty priority entry", func(t *testing.T) {
		cfg := Default()
		cfg.Merge.Priority = []string{"database", ""}
		errs := cfg.Validate()
		if !hasFieldError(errs, "merge.priority[1]") {
			t.Error("expected error for empty priority entry")
		}
	})

	t.Run("duplicate priority entry", func(t *testing.T) {
		cfg := Default()
		cfg.Merge.Priority = []string{"backend", "frontend", "backend"}
		errs := cfg.Validate()
		if !hasFieldError(errs, "merge.priority[2]") {
			t.Error("expected error for duplicate priority entry")
		}
	})

	t.Run("empty priority list is valid", func(t *testing.T) {
		cfg := Default()
		cfg.Merge.Priority = nil
		errs := cfg.Validate()
		if len(errs) != 0 {
			t.Errorf("empty priority list should be valid, got: %v", errs)
		}
	})

	t.Run("invalid target branch", func(t *testing.T) {
		cfg := Default()
		cfg.Merge.TargetBranch = "bad branch name"
		errs := cfg.Validate()
		if !hasFieldError(errs, "merge.target_branch") {
			t.Error("expected error for branch name with spaces")
		}
	})

	t.Run("valid target branch with slashes", func(t *testing.T) {
		cfg := Default()
		cfg.Merge.TargetBranch = "release/v2.1"
		errs := cfg.Validate()
		if hasFieldError(errs, "merge.target_branch") {
			t.Error("branch name with slashes and dots should be valid")
		}
	})
}

func TestConfig_Validate_Worktrees(t *testing.T) {
	t.Run("empty branch prefix", func(t *testing.T) {
		cfg := Default()
		cfg.Worktrees.BranchPrefix = ""
		errs := cfg.Validate()
		if !hasFieldError(errs, "worktrees.branch_prefix") {
			t.Error("expected error for empty branch prefix")
		}
	})

	t.Run("branch prefix with invalid characters", func(t *testing.T) {
		cfg := Default()
		cfg.Worktrees.BranchPrefix = "my prefix!"
		errs := cfg.Validate()
		if !hasFieldError(errs, "worktrees.branch_prefix") {
			t.Error("expected error for branch prefix with spaces")
		}
	})

	t.Run("branch prefix starting with digit", func(t *testing.T) {
		cfg := Default()
		cfg.Worktrees.BranchPrefix = "1feature"
		errs := cfg.Validate()
		if !hasFieldError(errs, "worktrees.branch_prefix") {
			t.Error("expected error for branch prefix starting with digit")
		}
	})

	t.Run("overly long branch prefix", func(t *testing.T) {
		cfg := Default()
		cfg.Worktrees.BranchPrefix = strings.Repeat("a", 51)
		errs := cfg.Validate()
		if !hasFieldError(errs, "worktrees.branch_prefix") {
			t.Error("expected error for overly long branch prefix")
		}
	})

	t.Run("valid branch prefixes", func(t *testing.T) {
		for _, prefix := range []string{"feature", "divvy", "my-prefix", "my_prefix", "f2"} {
			cfg := Default()
			cfg.Worktrees.BranchPrefix = prefix
			errs := cfg.Validate()
			if hasFieldError(errs, "worktrees.branch_prefix") {
				t.Errorf("prefix %q should be valid", prefix)
			}
		}
	})

	t.Run("dir with null byte", func(t *testing.T) {
		cfg := Default()
		cfg.Worktrees.Dir = "some\x00path"
		errs := cfg.Validate()
		if !hasFieldError(errs, "worktrees.dir") {
			t.Error("expected error for dir with null byte")
		}
	})

	t.Run("invalid base branch", func(t *testing.T) {
		cfg := Default()
		cfg.Worktrees.BaseBranch = "-starts-with-dash"
		errs := cfg.Validate()
		if !hasFieldError(errs, "worktrees.base_branch") {
			t.Error("expected error for base branch starting with dash")
		}
	})
}

func TestConfig_Validate_Watch(t *testing.T) {
	t.Run("negative debounce", func(t *testing.T) {
		cfg := Default()
		cfg.Watch.DebounceMs = -1
		errs := cfg.Validate()
		if !hasFieldError(errs, "watch.debounce_ms") {
			t.Error("expected error for negative debounce")
		}
	})

	t.Run("excessive debounce", func(t *testing.T) {
		cfg := Default()
		cfg.Watch.DebounceMs = 120000
		errs := cfg.Validate()
		if !hasFieldError(errs, "watch.debounce_ms") {
			t.Error("expected error for excessive debounce")
		}
	})

	t.Run("zero debounce is valid", func(t *testing.T) {
		cfg := Default()
		cfg.Watch.DebounceMs = 0
		errs := cfg.Validate()
		if hasFieldError(errs, "watch.debounce_ms") {
			t.Error("zero debounce should be valid")
		}
	})
}

func TestConfig_Validate_Logging(t *testing.T) {
	t.Run("invalid log level", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "verbose"
		errs := cfg.Validate()
		if !hasFieldError(errs, "logging.level") {
			t.Error("expected error for invalid log level")
		}
	})

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range ValidLogLevels() {
			cfg := Default()
			cfg.Logging.Level = level
			errs := cfg.Validate()
			if hasFieldError(errs, "logging.level") {
				t.Errorf("level %q should be valid", level)
			}
		}
	})

	t.Run("empty log level is valid", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = ""
		errs := cfg.Validate()
		if hasFieldError(errs, "logging.level") {
			t.Error("empty log level should be valid")
		}
	})

	t.Run("zero max size", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.MaxSizeMB = 0
		errs := cfg.Validate()
		if !hasFieldError(errs, "logging.max_size_mb") {
			t.Error("expected error for zero max size")
		}
	})

	t.Run("excessive max size", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.MaxSizeMB = 2000
		errs := cfg.Validate()
		if !hasFieldError(errs, "logging.max_size_mb") {
			t.Error("expected error for excessive max size")
		}
	})

	t.Run("negative max backups", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.MaxBackups = -1
		errs := cfg.Validate()
		if !hasFieldError(errs, "logging.max_backups") {
			t.Error("expected error for negative max backups")
		}
	})
}

func TestValidLogLevels(t *testing.T) {
	levels := ValidLogLevels()

	expected := []string{"debug", "info", "warn", "error"}
	if len(levels) != len(expected) {
		t.Fatalf("ValidLogLevels() length = %d, want %d", len(levels), len(expected))
	}
	for i, level := range expected {
		if levels[i] != level {
			t.Errorf("ValidLogLevels()[%d] = %q, want %q", i, levels[i], level)
		}
	}
}
