package cleanup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Iron-Ham/divvy/internal/errors"
	"github.com/Iron-Ham/divvy/internal/worktree"
)

// fakeGit implements GitCleaner without touching a repository.
type fakeGit struct {
	removed   []string
	deleted   []string
	dirty     map[string]bool
	removeErr error
}

func (f *fakeGit) Remove(path string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, path)
	return nil
}

func (f *fakeGit) DeleteBranch(branch string) error {
	f.deleted = append(f.deleted, branch)
	return nil
}

func (f *fakeGit) HasUncommittedChanges(path string) (bool, error) {
	return f.dirty[path], nil
}

func newTestSweeper(t *testing.T) (*Sweeper, *fakeGit, *worktree.Store) {
	t.Helper()

	store, err := worktree.NewStore(filepath.Join(t.TempDir(), ".metadata"))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	git := &fakeGit{dirty: make(map[string]bool)}
	return NewSweeper(git, store, nil), git, store
}

// seedMeta saves a metadata record whose worktree path really exists.
func seedMeta(t *testing.T, store *worktree.Store, name, epic string, status worktree.Status, age time.Duration) *worktree.Metadata {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("failed to create worktree dir: %v", err)
	}

	stamp := time.Now().UTC().Add(-age)
	meta := &worktree.Metadata{
		Name:       name,
		Epic:       epic,
		Domain:     "backend",
		Branch:     "feature/" + epic + "/" + name,
		BaseBranch: "main",
		Path:       path,
		Status:     status,
		CreatedAt:  stamp,
		UpdatedAt:  stamp,
	}
	if err := store.Save(meta); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return meta
}

func TestSweeper_Plan_SelectsTerminalAndAbandoned(t *testing.T) {
	s, _, store := newTestSweeper(t)
	root := t.TempDir()

	seedMeta(t, store, "auth-backend-aaaa0001", "auth", worktree.StatusMerged, time.Hour)
	seedMeta(t, store, "auth-frontend-aaaa0002", "auth", worktree.StatusInProgress, time.Hour)
	seedMeta(t, store, "auth-database-aaaa0003", "auth", worktree.StatusInProgress, 72*time.Hour)
	// Completed worktrees are waiting for merge, never swept.
	seedMeta(t, store, "auth-tests-aaaa0004", "auth", worktree.StatusCompleted, 72*time.Hour)
	seedMeta(t, store, "auth-docs-aaaa0005", "auth", worktree.StatusFailed, time.Hour)

	job, err := s.Plan(root, Options{})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if len(job.Targets) != 3 {
		t.Fatalf("targets = %d, want 3: %+v", len(job.Targets), job.Targets)
	}

	reasons := make(map[string]string, len(job.Targets))
	for _, target := range job.Targets {
		reasons[target.Name] = target.Reason
	}
	if reasons["auth-backend-aaaa0001"] != ReasonTerminal {
		t.Errorf("merged worktree reason = %q, want %q", reasons["auth-backend-aaaa0001"], ReasonTerminal)
	}
	if reasons["auth-database-aaaa0003"] != ReasonAbandoned {
		t.Errorf("stale worktree reason = %q, want %q", reasons["auth-database-aaaa0003"], ReasonAbandoned)
	}
	if reasons["auth-docs-aaaa0005"] != ReasonTerminal {
		t.Errorf("failed worktree reason = %q, want %q", reasons["auth-docs-aaaa0005"], ReasonTerminal)
	}
	if _, ok := reasons["auth-tests-aaaa0004"]; ok {
		t.Error("completed worktree selected for cleanup")
	}
	if _, ok := reasons["auth-frontend-aaaa0002"]; ok {
		t.Error("fresh in-progress worktree selected for cleanup")
	}
}

func TestSweeper_Plan_AllIgnoresAge(t *testing.T) {
	s, _, store := newTestSweeper(t)

	seedMeta(t, store, "auth-backend-aced0001", "auth", worktree.StatusInProgress, time.Minute)
	// Completed worktrees stay exempt even under All.
	seedMeta(t, store, "auth-tests-aced0002", "auth", worktree.StatusCompleted, time.Minute)

	job, err := s.Plan(t.TempDir(), Options{All: true})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if len(job.Targets) != 1 {
		t.Fatalf("targets = %d, want 1: %+v", len(job.Targets), job.Targets)
	}
	if job.Targets[0].Name != "auth-backend-aced0001" {
		t.Errorf("target = %q, want the fresh in-progress worktree", job.Targets[0].Name)
	}
	if job.Targets[0].Reason != ReasonAbandoned {
		t.Errorf("reason = %q, want %q", job.Targets[0].Reason, ReasonAbandoned)
	}
}

func TestSweeper_Plan_EpicFilter(t *testing.T) {
	s, _, store := newTestSweeper(t)

	seedMeta(t, store, "auth-backend-bbbb0001", "auth", worktree.StatusMerged, time.Hour)
	seedMeta(t, store, "billing-backend-bbbb0002", "billing", worktree.StatusMerged, time.Hour)

	job, err := s.Plan(t.TempDir(), Options{Epic: "billing"})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if len(job.Targets) != 1 {
		t.Fatalf("targets = %d, want 1", len(job.Targets))
	}
	if job.Targets[0].Epic != "billing" {
		t.Errorf("target epic = %q, want billing", job.Targets[0].Epic)
	}
}

func TestSweeper_Plan_DetectsDirtyWorktrees(t *testing.T) {
	s, git, store := newTestSweeper(t)

	meta := seedMeta(t, store, "auth-backend-cccc0001", "auth", worktree.StatusFailed, time.Hour)
	git.dirty[meta.Path] = true

	job, err := s.Plan(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if len(job.Targets) != 1 {
		t.Fatalf("targets = %d, want 1", len(job.Targets))
	}
	if !job.Targets[0].HasUncommitted {
		t.Error("dirty worktree not flagged")
	}
}

func TestSweeper_Execute(t *testing.T) {
	s, git, store := newTestSweeper(t)
	root := t.TempDir()

	m1 := seedMeta(t, store, "auth-backend-dddd0001", "auth", worktree.StatusMerged, time.Hour)
	m2 := seedMeta(t, store, "auth-database-dddd0002", "auth", worktree.StatusFailed, time.Hour)

	job, err := s.Plan(root, Options{DeleteBranches: true})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	results, err := s.Execute(job)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if results.WorktreesRemoved != 2 {
		t.Errorf("WorktreesRemoved = %d, want 2", results.WorktreesRemoved)
	}
	if results.BranchesDeleted != 2 {
		t.Errorf("BranchesDeleted = %d, want 2", results.BranchesDeleted)
	}
	if results.MetadataArchived != 2 {
		t.Errorf("MetadataArchived = %d, want 2", results.MetadataArchived)
	}
	if results.TotalRemoved != 6 {
		t.Errorf("TotalRemoved = %d, want 6", results.TotalRemoved)
	}
	if len(results.Errors) != 0 {
		t.Errorf("Errors = %v, want none", results.Errors)
	}

	if len(git.removed) != 2 {
		t.Errorf("git removals = %v, want 2 paths", git.removed)
	}
	if len(git.deleted) != 2 {
		t.Errorf("branch deletions = %v, want 2 branches", git.deleted)
	}

	// Metadata left the active store.
	for _, name := range []string{m1.Name, m2.Name} {
		if _, err := store.Load(name); !errors.Is(err, errors.ErrWorktreeNotFound) {
			t.Errorf("Load(%s) error = %v, want ErrWorktreeNotFound after archive", name, err)
		}
	}

	// The job file records the finished run.
	saved, err := LoadJob(root, job.ID)
	if err != nil {
		t.Fatalf("LoadJob() error = %v", err)
	}
	if saved.Status != JobStatusCompleted {
		t.Errorf("job status = %q, want %q", saved.Status, JobStatusCompleted)
	}
	if saved.Results == nil || saved.Results.TotalRemoved != 6 {
		t.Errorf("job results = %+v, want TotalRemoved 6", saved.Results)
	}
	if saved.EndedAt.IsZero() {
		t.Error("EndedAt not set")
	}
}

func TestSweeper_Execute_SkipsDirtyWithoutForce(t *testing.T) {
	s, git, store := newTestSweeper(t)

	meta := seedMeta(t, store, "auth-backend-eeee0001", "auth", worktree.StatusFailed, time.Hour)
	git.dirty[meta.Path] = true

	job, err := s.Plan(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	results, err := s.Execute(job)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if results.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", results.Skipped)
	}
	if results.WorktreesRemoved != 0 {
		t.Errorf("WorktreesRemoved = %d, want 0", results.WorktreesRemoved)
	}
	if len(git.removed) != 0 {
		t.Errorf("git removals = %v, want none", git.removed)
	}
	// The metadata survives for a later forced run.
	if _, err := store.Load(meta.Name); err != nil {
		t.Errorf("Load() error = %v, metadata should remain", err)
	}
}

func TestSweeper_Execute_ForceRemovesDirty(t *testing.T) {
	s, git, store := newTestSweeper(t)

	meta := seedMeta(t, store, "auth-backend-ffff0001", "auth", worktree.StatusFailed, time.Hour)
	git.dirty[meta.Path] = true

	job, err := s.Plan(t.TempDir(), Options{Force: true})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	results, err := s.Execute(job)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if results.WorktreesRemoved != 1 {
		t.Errorf("WorktreesRemoved = %d, want 1", results.WorktreesRemoved)
	}
	if results.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", results.Skipped)
	}
}

func TestSweeper_Execute_DryRun(t *testing.T) {
	s, git, store := newTestSweeper(t)

	meta := seedMeta(t, store, "auth-backend-abab0001", "auth", worktree.StatusMerged, time.Hour)

	job, err := s.Plan(t.TempDir(), Options{DryRun: true, DeleteBranches: true})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	results, err := s.Execute(job)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if results.WorktreesRemoved != 1 || results.BranchesDeleted != 1 || results.MetadataArchived != 1 {
		t.Errorf("dry-run tallies = %+v, want 1/1/1", results)
	}

	// Nothing actually happened.
	if len(git.removed) != 0 || len(git.deleted) != 0 {
		t.Errorf("dry run touched git: removed=%v deleted=%v", git.removed, git.deleted)
	}
	if _, err := store.Load(meta.Name); err != nil {
		t.Errorf("Load() error = %v, metadata should remain", err)
	}
	if _, err := os.Stat(meta.Path); err != nil {
		t.Errorf("worktree dir missing after dry run: %v", err)
	}
}

func TestSweeper_Execute_MissingPathStillArchives(t *testing.T) {
	s, git, store := newTestSweeper(t)

	meta := seedMeta(t, store, "auth-backend-baba0001", "auth", worktree.StatusMerged, time.Hour)
	if err := os.RemoveAll(meta.Path); err != nil {
		t.Fatalf("failed to remove worktree dir: %v", err)
	}

	job, err := s.Plan(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	results, err := s.Execute(job)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if results.WorktreesRemoved != 0 {
		t.Errorf("WorktreesRemoved = %d, want 0", results.WorktreesRemoved)
	}
	if results.MetadataArchived != 1 {
		t.Errorf("MetadataArchived = %d, want 1", results.MetadataArchived)
	}
	if len(git.removed) != 0 {
		t.Errorf("git removals = %v, want none", git.removed)
	}
}
