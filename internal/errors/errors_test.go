package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// PlanError Tests
// -----------------------------------------------------------------------------

func TestNewPlanError(t *testing.T) {
	cause := ErrPlanNotFound
	err := NewPlanError("failed to load plan", cause)

	if err.message != "failed to load plan" {
		t.Errorf("message = %q, want %q", err.message, "failed to load plan")
	}
	if err.cause != cause {
		t.Errorf("cause = %v, want %v", err.cause, cause)
	}
	if err.Severity() != SeverityError {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityError)
	}
	if err.IsRetryable() {
		t.Error("IsRetryable() = true, want false")
	}
	if !err.IsUserFacing() {
		t.Error("IsUserFacing() = false, want true")
	}
}

func TestPlanError_WithMethods(t *testing.T) {
	err := NewPlanError("test", nil).
		WithEpic("auth").
		WithSeverity(SeverityCritical).
		WithRetryable(true)

	if err.Epic != "auth" {
		t.Errorf("Epic = %q, want %q", err.Epic, "auth")
	}
	if err.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityCritical)
	}
	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
}

func TestPlanError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *PlanError
		want string
	}{
		{
			name: "basic error",
			err:  NewPlanError("test error", nil),
			want: "plan error: test error",
		},
		{
			name: "with cause",
			err:  NewPlanError("test error", ErrPlanNotFound),
			want: "plan error: test error: plan not found",
		},
		{
			name: "with epic",
			err:  NewPlanError("test error", nil).WithEpic("auth"),
			want: "plan error [epic=auth]: test error",
		},
		{
			name: "with epic and cause",
			err:  NewPlanError("test error", ErrPlanInvalid).WithEpic("billing"),
			want: "plan error [epic=billing]: test error: plan is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlanError_Is(t *testing.T) {
	err := NewPlanError("test", ErrPlanNotFound).WithEpic("auth")

	// Should match PlanError type
	if !Is(err, &PlanError{}) {
		t.Error("Is(PlanError{}) = false, want true")
	}

	// Should match wrapped sentinel error
	if !Is(err, ErrPlanNotFound) {
		t.Error("Is(ErrPlanNotFound) = false, want true")
	}

	// Should not match unrelated errors
	if Is(err, ErrWorktreeNotFound) {
		t.Error("Is(ErrWorktreeNotFound) = true, want false")
	}
}

func TestPlanError_Unwrap(t *testing.T) {
	cause := ErrPlanNotFound
	err := NewPlanError("test", cause)

	if unwrapped := Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
}

// -----------------------------------------------------------------------------
// WorktreeError Tests
// -----------------------------------------------------------------------------

func TestNewWorktreeError(t *testing.T) {
	cause := ErrWorktreeExists
	err := NewWorktreeError("provisioning failed", cause)

	if err.message != "provisioning failed" {
		t.Errorf("message = %q, want %q", err.message, "provisioning failed")
	}
	if err.cause != cause {
		t.Errorf("cause = %v, want %v", err.cause, cause)
	}
}

func TestWorktreeError_WithMethods(t *testing.T) {
	err := NewWorktreeError("test", nil).
		WithWorktree("auth-backend-a1b2c3d4").
		WithBranch("feature/auth/backend").
		WithSeverity(SeverityWarning).
		WithRetryable(true)

	if err.Worktree != "auth-backend-a1b2c3d4" {
		t.Errorf("Worktree = %q, want %q", err.Worktree, "auth-backend-a1b2c3d4")
	}
	if err.Branch != "feature/auth/backend" {
		t.Errorf("Branch = %q, want %q", err.Branch, "feature/auth/backend")
	}
	if err.Severity() != SeverityWarning {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityWarning)
	}
}

func TestWorktreeError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *WorktreeError
		want string
	}{
		{
			name: "basic error",
			err:  NewWorktreeError("test error", nil),
			want: "worktree error: test error",
		},
		{
			name: "with worktree name",
			err:  NewWorktreeError("test error", nil).WithWorktree("auth-backend"),
			want: "worktree error [worktree=auth-backend]: test error",
		},
		{
			name: "with all fields",
			err:  NewWorktreeError("stale", ErrDirtyWorktree).WithWorktree("auth-backend").WithBranch("feature/auth/backend"),
			want: "worktree error [worktree=auth-backend, branch=feature/auth/backend]: stale: worktree has uncommitted changes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWorktreeError_Is(t *testing.T) {
	err := NewWorktreeError("test", ErrWorktreeExists)

	if !Is(err, &WorktreeError{}) {
		t.Error("Is(WorktreeError{}) = false, want true")
	}
	if !Is(err, ErrWorktreeExists) {
		t.Error("Is(ErrWorktreeExists) = false, want true")
	}
	if Is(err, &PlanError{}) {
		t.Error("Is(PlanError{}) = true, want false")
	}
}

// -----------------------------------------------------------------------------
// MergeError Tests
// -----------------------------------------------------------------------------

func TestNewMergeError(t *testing.T) {
	cause := ErrMergeConflict
	err := NewMergeError("integration failed", cause)

	if err.message != "integration failed" {
		t.Errorf("message = %q, want %q", err.message, "integration failed")
	}
	if err.Ordinal != -1 {
		t.Errorf("Ordinal = %d, want -1", err.Ordinal)
	}
}

func TestMergeError_WithMethods(t *testing.T) {
	err := NewMergeError("test", nil).
		WithDomain("backend").
		WithOrdinal(2).
		WithPhase("integration").
		WithSeverity(SeverityCritical).
		WithRetryable(true)

	if err.Domain != "backend" {
		t.Errorf("Domain = %q, want %q", err.Domain, "backend")
	}
	if err.Ordinal != 2 {
		t.Errorf("Ordinal = %d, want 2", err.Ordinal)
	}
	if err.Phase != "integration" {
		t.Errorf("Phase = %q, want %q", err.Phase, "integration")
	}
}

func TestMergeError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *MergeError
		want string
	}{
		{
			name: "basic error",
			err:  NewMergeError("test error", nil),
			want: "merge error: test error",
		},
		{
			name: "with domain",
			err:  NewMergeError("test error", nil).WithDomain("database"),
			want: "merge error [domain=database]: test error",
		},
		{
			name: "with all fields",
			err:  NewMergeError("failed", ErrPreconditionFailed).WithDomain("backend").WithOrdinal(3).WithPhase("precondition"),
			want: "merge error [domain=backend, ordinal=3, phase=precondition]: failed: merge precondition failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMergeError_Is(t *testing.T) {
	err := NewMergeError("test", ErrPreconditionFailed)

	if !Is(err, &MergeError{}) {
		t.Error("Is(MergeError{}) = false, want true")
	}
	if !Is(err, ErrPreconditionFailed) {
		t.Error("Is(ErrPreconditionFailed) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// GitError Tests
// -----------------------------------------------------------------------------

func TestNewGitError(t *testing.T) {
	cause := ErrMergeConflict
	err := NewGitError("merge failed", cause)

	if err.message != "merge failed" {
		t.Errorf("message = %q, want %q", err.message, "merge failed")
	}
}

func TestGitError_WithMethods(t *testing.T) {
	err := NewGitError("test", nil).
		WithBranch("feature-x").
		WithWorktree("/path/to/wt").
		WithRepository("/path/to/repo").
		WithGitOutput("fatal: error message").
		WithSeverity(SeverityWarning).
		WithRetryable(true)

	if err.Branch != "feature-x" {
		t.Errorf("Branch = %q, want %q", err.Branch, "feature-x")
	}
	if err.Worktree != "/path/to/wt" {
		t.Errorf("Worktree = %q, want %q", err.Worktree, "/path/to/wt")
	}
	if err.Repository != "/path/to/repo" {
		t.Errorf("Repository = %q, want %q", err.Repository, "/path/to/repo")
	}
	if err.GitOutput != "fatal: error message" {
		t.Errorf("GitOutput = %q, want %q", err.GitOutput, "fatal: error message")
	}
}

func TestGitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *GitError
		want string
	}{
		{
			name: "basic error",
			err:  NewGitError("test error", nil),
			want: "git error: test error",
		},
		{
			name: "with branch",
			err:  NewGitError("checkout failed", nil).WithBranch("main"),
			want: "git error [branch=main]: checkout failed",
		},
		{
			name: "with git output",
			err:  NewGitError("failed", ErrMergeConflict).WithBranch("dev").WithGitOutput("CONFLICT"),
			want: "git error [branch=dev]: failed: merge conflict\ngit output: CONFLICT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGitError_Is(t *testing.T) {
	err := NewGitError("test", ErrWorktreeExists)

	if !Is(err, &GitError{}) {
		t.Error("Is(GitError{}) = false, want true")
	}
	if !Is(err, ErrWorktreeExists) {
		t.Error("Is(ErrWorktreeExists) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// NotFoundError Tests
// -----------------------------------------------------------------------------

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("worktree", "abc123")

	if err.ResourceType != "worktree" {
		t.Errorf("ResourceType = %q, want %q", err.ResourceType, "worktree")
	}
	if err.ResourceID != "abc123" {
		t.Errorf("ResourceID = %q, want %q", err.ResourceID, "abc123")
	}
	if err.Severity() != SeverityWarning {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityWarning)
	}
}

func TestNotFoundError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *NotFoundError
		want string
	}{
		{
			name: "basic error",
			err:  NewNotFoundError("epic", "auth"),
			want: "epic 'auth' not found",
		},
		{
			name: "with cause",
			err:  NewNotFoundError("worktree", "/path").WithCause(fmt.Errorf("IO error")),
			want: "worktree '/path' not found: IO error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNotFoundError_Is(t *testing.T) {
	err := NewNotFoundError("epic", "auth")

	if !Is(err, &NotFoundError{}) {
		t.Error("Is(NotFoundError{}) = false, want true")
	}
	// NotFoundError does not wrap sentinel errors by default
	if Is(err, ErrPlanNotFound) {
		t.Error("Is(ErrPlanNotFound) = true, want false (not wrapped)")
	}
}

// -----------------------------------------------------------------------------
// AlreadyExistsError Tests
// -----------------------------------------------------------------------------

func TestNewAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExistsError("branch", "feature-x")

	if err.ResourceType != "branch" {
		t.Errorf("ResourceType = %q, want %q", err.ResourceType, "branch")
	}
	if err.ResourceID != "feature-x" {
		t.Errorf("ResourceID = %q, want %q", err.ResourceID, "feature-x")
	}
}

func TestAlreadyExistsError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AlreadyExistsError
		want string
	}{
		{
			name: "basic error",
			err:  NewAlreadyExistsError("branch", "main"),
			want: "branch 'main' already exists",
		},
		{
			name: "with cause",
			err:  NewAlreadyExistsError("file", "test.txt").WithCause(fmt.Errorf("disk error")),
			want: "file 'test.txt' already exists: disk error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAlreadyExistsError_Is(t *testing.T) {
	err := NewAlreadyExistsError("branch", "main")

	if !Is(err, &AlreadyExistsError{}) {
		t.Error("Is(AlreadyExistsError{}) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// ValidationError Tests
// -----------------------------------------------------------------------------

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("epic ID cannot be empty")

	if err.message != "epic ID cannot be empty" {
		t.Errorf("message = %q, want %q", err.message, "epic ID cannot be empty")
	}
	if err.Severity() != SeverityWarning {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityWarning)
	}
}

func TestValidationError_WithMethods(t *testing.T) {
	err := NewValidationError("invalid value").
		WithField("epic").
		WithValue("").
		WithCause(fmt.Errorf("must not be empty"))

	if err.Field != "epic" {
		t.Errorf("Field = %q, want %q", err.Field, "epic")
	}
	if err.Value != "" {
		t.Errorf("Value = %v, want empty string", err.Value)
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "basic error",
			err:  NewValidationError("invalid input"),
			want: "validation error: invalid input",
		},
		{
			name: "with field",
			err:  NewValidationError("cannot be empty").WithField("name"),
			want: "validation error [field=name]: cannot be empty",
		},
		{
			name: "with field and value",
			err:  NewValidationError("must be positive").WithField("count").WithValue(-1),
			want: "validation error [field=count, value=-1]: must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Is(t *testing.T) {
	err := NewValidationError("test")

	if !Is(err, &ValidationError{}) {
		t.Error("Is(ValidationError{}) = false, want true")
	}
	// ValidationError should match ErrInvalidInput
	if !Is(err, ErrInvalidInput) {
		t.Error("Is(ErrInvalidInput) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// TimeoutError Tests
// -----------------------------------------------------------------------------

func TestNewTimeoutError(t *testing.T) {
	err := NewTimeoutError("waiting for completion", 30*time.Second)

	if err.Operation != "waiting for completion" {
		t.Errorf("Operation = %q, want %q", err.Operation, "waiting for completion")
	}
	if err.Duration != 30*time.Second {
		t.Errorf("Duration = %v, want %v", err.Duration, 30*time.Second)
	}
	// Timeouts are retryable by default
	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
}

func TestTimeoutError_WithMethods(t *testing.T) {
	err := NewTimeoutError("test", time.Second).
		WithCause(fmt.Errorf("context deadline exceeded")).
		WithRetryable(false)

	if err.IsRetryable() {
		t.Error("IsRetryable() = true, want false")
	}
}

func TestTimeoutError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *TimeoutError
		want string
	}{
		{
			name: "basic error",
			err:  NewTimeoutError("waiting for response", 5*time.Second),
			want: "timeout error: waiting for response (timeout: 5s)",
		},
		{
			name: "with cause",
			err:  NewTimeoutError("connecting", time.Minute).WithCause(fmt.Errorf("network unreachable")),
			want: "timeout error: connecting (timeout: 1m0s): network unreachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTimeoutError_Is(t *testing.T) {
	err := NewTimeoutError("test", time.Second)

	if !Is(err, &TimeoutError{}) {
		t.Error("Is(TimeoutError{}) = false, want true")
	}
	// TimeoutError should match ErrTimeout
	if !Is(err, ErrTimeout) {
		t.Error("Is(ErrTimeout) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// Classification Helper Tests
// -----------------------------------------------------------------------------

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "timeout error",
			err:  NewTimeoutError("test", time.Second),
			want: true,
		},
		{
			name: "plan error not retryable",
			err:  NewPlanError("test", nil),
			want: false,
		},
		{
			name: "plan error set retryable",
			err:  NewPlanError("test", nil).WithRetryable(true),
			want: true,
		},
		{
			name: "wrapped timeout sentinel",
			err:  fmt.Errorf("operation failed: %w", ErrTimeout),
			want: true,
		},
		{
			name: "standard error",
			err:  errors.New("standard error"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "plan error",
			err:  NewPlanError("test", nil),
			want: true,
		},
		{
			name: "not found error",
			err:  NewNotFoundError("epic", "auth"),
			want: true,
		},
		{
			name: "validation error",
			err:  NewValidationError("invalid input"),
			want: true,
		},
		{
			name: "timeout error",
			err:  NewTimeoutError("waiting", time.Second),
			want: true,
		},
		{
			name: "standard error",
			err:  errors.New("internal error"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetSeverity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Severity
	}{
		{
			name: "nil error",
			err:  nil,
			want: SeverityDebug,
		},
		{
			name: "plan error default",
			err:  NewPlanError("test", nil),
			want: SeverityError,
		},
		{
			name: "plan error critical",
			err:  NewPlanError("test", nil).WithSeverity(SeverityCritical),
			want: SeverityCritical,
		},
		{
			name: "not found error",
			err:  NewNotFoundError("epic", "auth"),
			want: SeverityWarning,
		},
		{
			name: "standard error",
			err:  errors.New("standard"),
			want: SeverityError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetSeverity(tt.err); got != tt.want {
				t.Errorf("GetSeverity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "plan error",
			err:  NewPlanError("test", nil),
			want: true,
		},
		{
			name: "worktree error",
			err:  NewWorktreeError("test", nil),
			want: true,
		},
		{
			name: "merge error",
			err:  NewMergeError("test", nil),
			want: true,
		},
		{
			name: "git error",
			err:  NewGitError("test", nil),
			want: true,
		},
		{
			name: "not found error (semantic)",
			err:  NewNotFoundError("epic", "auth"),
			want: false,
		},
		{
			name: "standard error",
			err:  errors.New("test"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDomainError(tt.err); got != tt.want {
				t.Errorf("IsDomainError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsSemanticError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "not found error",
			err:  NewNotFoundError("epic", "auth"),
			want: true,
		},
		{
			name: "already exists error",
			err:  NewAlreadyExistsError("branch", "main"),
			want: true,
		},
		{
			name: "validation error",
			err:  NewValidationError("invalid"),
			want: true,
		},
		{
			name: "timeout error",
			err:  NewTimeoutError("waiting", time.Second),
			want: true,
		},
		{
			name: "plan error (domain)",
			err:  NewPlanError("test", nil),
			want: false,
		},
		{
			name: "standard error",
			err:  errors.New("test"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSemanticError(tt.err); got != tt.want {
				t.Errorf("IsSemanticError() = %v, want %v", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Wrap/Wrapf Tests
// -----------------------------------------------------------------------------

func TestWrap(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
		want    string
	}{
		{
			name:    "nil error",
			err:     nil,
			message: "context",
			want:    "",
		},
		{
			name:    "wrap standard error",
			err:     errors.New("base error"),
			message: "failed to process",
			want:    "failed to process: base error",
		},
		{
			name:    "wrap plan error",
			err:     NewPlanError("analysis failed", nil),
			message: "operation failed",
			want:    "operation failed: plan error: analysis failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.err, tt.message)
			if tt.err == nil {
				if got != nil {
					t.Errorf("Wrap(nil) = %v, want nil", got)
				}
				return
			}
			if got.Error() != tt.want {
				t.Errorf("Wrap().Error() = %q, want %q", got.Error(), tt.want)
			}
		})
	}
}

func TestWrapf(t *testing.T) {
	baseErr := errors.New("base error")
	err := Wrapf(baseErr, "failed to merge %s", "backend")

	want := "failed to merge backend: base error"
	if err.Error() != want {
		t.Errorf("Wrapf().Error() = %q, want %q", err.Error(), want)
	}

	// Wrapf with nil should return nil
	if got := Wrapf(nil, "test"); got != nil {
		t.Errorf("Wrapf(nil) = %v, want nil", got)
	}
}

// -----------------------------------------------------------------------------
// Re-exported Functions Tests
// -----------------------------------------------------------------------------

func TestReexportedFunctions(t *testing.T) {
	// Test that re-exported functions work correctly
	baseErr := New("base error")
	wrappedErr := fmt.Errorf("wrapped: %w", baseErr)

	// Test Is
	if !Is(wrappedErr, baseErr) {
		t.Error("Is() should return true for wrapped error")
	}

	// Test Unwrap
	if Unwrap(wrappedErr) == nil {
		t.Error("Unwrap() should return the base error")
	}

	// Test As
	var planErr *PlanError
	testErr := NewPlanError("test", nil)
	if !As(testErr, &planErr) {
		t.Error("As() should extract PlanError")
	}

	// Test Join
	err1 := New("error 1")
	err2 := New("error 2")
	joined := Join(err1, err2)
	if !Is(joined, err1) || !Is(joined, err2) {
		t.Error("Join() should combine errors")
	}
}

// -----------------------------------------------------------------------------
// Error Chain Tests
// -----------------------------------------------------------------------------

func TestErrorChain(t *testing.T) {
	// Create a chain of errors
	baseErr := ErrMergeConflict
	mergeErr := NewMergeError("integration stopped", baseErr).WithDomain("backend")
	wrappedErr := Wrap(mergeErr, "merge run failed")

	// Should be able to find all errors in the chain
	if !Is(wrappedErr, ErrMergeConflict) {
		t.Error("Should find ErrMergeConflict in chain")
	}

	var extracted *MergeError
	if !As(wrappedErr, &extracted) {
		t.Error("Should extract MergeError from chain")
	}
	if extracted.Domain != "backend" {
		t.Errorf("Domain = %q, want %q", extracted.Domain, "backend")
	}
}

// -----------------------------------------------------------------------------
// Sentinel Error Tests
// -----------------------------------------------------------------------------

func TestSentinelErrors(t *testing.T) {
	// Verify all sentinel errors are distinct
	sentinels := []error{
		ErrNoWorkItems,
		ErrPlanNotFound,
		ErrPlanInvalid,
		ErrRulesInvalid,
		ErrUnknownDomain,
		ErrNotGitRepository,
		ErrWorktreeNotFound,
		ErrWorktreeExists,
		ErrBranchNotFound,
		ErrBranchExists,
		ErrDirtyWorktree,
		ErrInvalidTransition,
		ErrMergeConflict,
		ErrPreconditionFailed,
		ErrMergeAborted,
		ErrNothingToMerge,
		ErrTimeout,
		ErrCanceled,
		ErrInvalidInput,
		ErrOperationFailed,
	}

	// Check that each sentinel is distinct from all others
	for i, err1 := range sentinels {
		for j, err2 := range sentinels {
			if i != j && Is(err1, err2) {
				t.Errorf("Sentinel error %v should not match %v", err1, err2)
			}
		}
	}
}
