package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "planner.min_files")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// branchPrefixRegex validates branch prefix characters
// Branch names should start with alphanumeric and can contain alphanumeric, hyphen, underscore
var branchPrefixRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// branchNameRegex validates full branch names (slashes and dots allowed)
var branchNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/-]*$`)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Planner config
	errors = append(errors, c.validatePlanner()...)

	// Validate Merge config
	errors = append(errors, c.validateMerge()...)

	// Validate Worktrees config
	errors = append(errors, c.validateWorktrees()...)

	// Validate History config
	errors = append(errors, c.validateHistory()...)

	// Validate Watch config
	errors = append(errors, c.validateWatch()...)

	// Validate Logging config
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validatePlanner validates the PlannerConfig
func (c *Config) validatePlanner() []ValidationError {
	var errors []ValidationError

	if c.Planner.MinFiles < 1 {
		errors = append(errors, ValidationError{
			Field:   "planner.min_files",
			Value:   c.Planner.MinFiles,
			Message: "must be at least 1",
		})
	}

	// Reasonable upper bound to catch unit mistakes (e.g. entering bytes)
	const maxMinFiles = 10000
	if c.Planner.MinFiles > maxMinFiles {
		errors = append(errors, ValidationError{
			Field:   "planner.min_files",
			Value:   c.Planner.MinFiles,
			Message: fmt.Sprintf("exceeds maximum of %d", maxMinFiles),
		})
	}

	if c.Planner.MinDomains < 1 {
		errors = append(errors, ValidationError{
			Field:   "planner.min_domains",
			Value:   c.Planner.MinDomains,
			Message: "must be at least 1",
		})
	}

	if c.Planner.MaxOverlap < 0 || c.Planner.MaxOverlap > 100 {
		errors = append(errors, ValidationError{
			Field:   "planner.max_overlap",
			Value:   c.Planner.MaxOverlap,
			Message: "must be between 0 and 100",
		})
	}

	return errors
}

// validateMerge validates the MergeConfig
func (c *Config) validateMerge() []ValidationError {
	var errors []ValidationError

	// Priority entries must be non-empty and unique
	seen := make(map[string]bool)
	for i, domain := range c.Merge.Priority {
		fieldName := fmt.Sprintf("merge.priority[%d]", i)

		if strings.TrimSpace(domain) == "" {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   domain,
				Message: "domain name cannot be empty",
			})
			continue
		}

		if seen[domain] {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   domain,
				Message: "duplicate domain in priority list",
			})
		}
		seen[domain] = true
	}

	// Target branch, if set, must be a valid branch name
	if c.Merge.TargetBranch != "" && !branchNameRegex.MatchString(c.Merge.TargetBranch) {
		errors = append(errors, ValidationError{
			Field:   "merge.target_branch",
			Value:   c.Merge.TargetBranch,
			Message: "must be a valid git branch name",
		})
	}

	return errors
}

// validateWorktrees validates the WorktreesConfig
func (c *Config) validateWorktrees() []ValidationError {
	var errors []ValidationError

	if c.Worktrees.BranchPrefix == "" {
		errors = append(errors, ValidationError{
			Field:   "worktrees.branch_prefix",
			Value:   c.Worktrees.BranchPrefix,
			Message: "cannot be empty",
		})
	} else if !branchPrefixRegex.MatchString(c.Worktrees.BranchPrefix) {
		errors = append(errors, ValidationError{
			Field:   "worktrees.branch_prefix",
			Value:   c.Worktrees.BranchPrefix,
			Message: "must start with a letter and contain only alphanumeric characters, hyphens, or underscores",
		})
	}

	// Git branch names have length limits
	const maxBranchPrefixLength = 50
	if len(c.Worktrees.BranchPrefix) > maxBranchPrefixLength {
		errors = append(errors, ValidationError{
			Field:   "worktrees.branch_prefix",
			Value:   c.Worktrees.BranchPrefix,
			Message: fmt.Sprintf("exceeds maximum length of %d characters", maxBranchPrefixLength),
		})
	}

	// Base branch, if set, must be a valid branch name
	if c.Worktrees.BaseBranch != "" && !branchNameRegex.MatchString(c.Worktrees.BaseBranch) {
		errors = append(errors, ValidationError{
			Field:   "worktrees.base_branch",
			Value:   c.Worktrees.BaseBranch,
			Message: "must be a valid git branch name",
		})
	}

	// Dir validation - if set, check for invalid characters
	if c.Worktrees.Dir != "" {
		path := c.Worktrees.Dir

		// Check for null bytes which are invalid in paths
		if strings.ContainsRune(path, '\x00') {
			errors = append(errors, ValidationError{
				Field:   "worktrees.dir",
				Value:   path,
				Message: "path contains invalid null character",
			})
		}

		// Reasonable path length limit (most filesystems have limits around 4096)
		const maxPathLength = 4096
		if len(path) > maxPathLength {
			errors = append(errors, ValidationError{
				Field:   "worktrees.dir",
				Value:   path,
				Message: fmt.Sprintf("path exceeds maximum length of %d characters", maxPathLength),
			})
		}
	}

	return errors
}

// validateHistory validates the HistoryConfig
func (c *Config) validateHistory() []ValidationError {
	var errors []ValidationError

	if c.History.Path != "" && strings.ContainsRune(c.History.Path, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "history.path",
			Value:   c.History.Path,
			Message: "path contains invalid null character",
		})
	}

	return errors
}

// validateWatch validates the WatchConfig
func (c *Config) validateWatch() []ValidationError {
	var errors []ValidationError

	if c.Watch.DebounceMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: "must be non-negative",
		})
	}

	// Debounce beyond a minute makes the watcher useless
	const maxDebounceMs = 60000
	if c.Watch.DebounceMs > maxDebounceMs {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: fmt.Sprintf("exceeds maximum of %dms", maxDebounceMs),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
