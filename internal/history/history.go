// Package history records plan decisions and merge runs in a local
// sqlite database so past runs stay inspectable after the worktrees
// are gone.
package history

import (
	"context"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/divvy/internal/merge"
	"github.com/Iron-Ham/divvy/internal/plan"
)

// DefaultFileName is the database file name under .divvy.
const DefaultFileName = "history.db"

// DefaultPath returns the history database path for a repository.
func DefaultPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".divvy", DefaultFileName)
}

// PlanRun is one recorded planning decision.
type PlanRun struct {
	ID        string        `json:"id"`
	Epic      string        `json:"epic,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Decision  plan.Decision `json:"decision"`
}

// MergeRun is one recorded merge outcome.
type MergeRun struct {
	ID        string        `json:"id"`
	Epic      string        `json:"epic,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Summary   merge.Summary `json:"summary"`
}

// Store records and lists past runs.
type Store interface {
	// RecordPlan saves a planning decision.
	RecordPlan(ctx context.Context, epic string, decision plan.Decision) (*PlanRun, error)

	// RecordMerge saves a merge run summary.
	RecordMerge(ctx context.Context, epic string, summary *merge.Summary) (*MergeRun, error)

	// RecentPlans returns the newest plan runs, most recent first.
	RecentPlans(ctx context.Context, limit int) ([]*PlanRun, error)

	// RecentMerges returns the newest merge runs, most recent first.
	RecentMerges(ctx context.Context, limit int) ([]*MergeRun, error)

	// Close releases the underlying database.
	Close() error
}

// Nop returns a Store that records nothing, for runs with history
// disabled.
func Nop() Store {
	return nopStore{}
}

type nopStore struct{}

func (nopStore) RecordPlan(ctx context.Context, epic string, decision plan.Decision) (*PlanRun, error) {
	return &PlanRun{Epic: epic, Decision: decision}, nil
}

func (nopStore) RecordMerge(ctx context.Context, epic string, summary *merge.Summary) (*MergeRun, error) {
	run := &MergeRun{Epic: epic}
	if summary != nil {
		run.Summary = *summary
	}
	return run, nil
}

func (nopStore) RecentPlans(ctx context.Context, limit int) ([]*PlanRun, error) {
	return nil, nil
}

func (nopStore) RecentMerges(ctx context.Context, limit int) ([]*MergeRun, error) {
	return nil, nil
}

func (nopStore) Close() error { return nil }
