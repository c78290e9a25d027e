// Package cleanup removes spent worktrees: ones whose metadata
// reached a terminal status and ones abandoned mid-flight. Each run is
// recorded as a job file snapshotting the targets it will touch, so
// worktrees provisioned after the snapshot are never affected.
package cleanup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/divvy/internal/errors"
	"github.com/Iron-Ham/divvy/internal/id"
	"github.com/Iron-Ham/divvy/internal/util"
	"github.com/Iron-Ham/divvy/internal/worktree"
)

// JobsDir is the directory name under .divvy that holds job files.
const JobsDir = "cleanup-jobs"

// DefaultMaxAge is how long a worktree may sit without a status change
// before it counts as abandoned.
const DefaultMaxAge = 48 * time.Hour

// JobStatus represents the current state of a cleanup job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Target reasons.
const (
	// ReasonTerminal marks a worktree whose metadata reached a
	// terminal status.
	ReasonTerminal = "terminal"
	// ReasonAbandoned marks a worktree with no status change for
	// longer than the job's max age.
	ReasonAbandoned = "abandoned"
)

// Target is a worktree marked for cleanup at snapshot time.
type Target struct {
	Name           string          `json:"name"`
	Epic           string          `json:"epic,omitempty"`
	Domain         string          `json:"domain,omitempty"`
	Path           string          `json:"path"`
	Branch         string          `json:"branch"`
	Status         worktree.Status `json:"status"`
	Reason         string          `json:"reason"`
	HasUncommitted bool            `json:"has_uncommitted"`
}

// Results contains the outcome of a cleanup job.
type Results struct {
	WorktreesRemoved int      `json:"worktrees_removed"`
	BranchesDeleted  int      `json:"branches_deleted"`
	MetadataArchived int      `json:"metadata_archived"`
	Skipped          int      `json:"skipped"`
	TotalRemoved     int      `json:"total_removed"`
	Errors           []string `json:"errors,omitempty"`
}

// Job represents a cleanup run with its snapshotted targets.
type Job struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	StartedAt time.Time `json:"started_at,omitzero"`
	EndedAt   time.Time `json:"ended_at,omitzero"`
	Status    JobStatus `json:"status"`

	// Configuration
	RepoRoot       string        `json:"repo_root"`
	Epic           string        `json:"epic,omitempty"`
	MaxAge         time.Duration `json:"max_age"`
	All            bool          `json:"all,omitempty"`
	DryRun         bool          `json:"dry_run"`
	DeleteBranches bool          `json:"delete_branches"`
	Force          bool          `json:"force"`

	// Targets captured at job creation time.
	Targets []Target `json:"targets"`

	// Results
	Results *Results `json:"results,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// NewJob creates a pending cleanup job rooted at repoRoot.
func NewJob(repoRoot string) *Job {
	return &Job{
		ID:        id.GenerateShort(),
		CreatedAt: time.Now().UTC(),
		Status:    JobStatusPending,
		RepoRoot:  repoRoot,
		MaxAge:    DefaultMaxAge,
	}
}

// JobsPath returns the cleanup jobs directory for a repository.
func JobsPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".divvy", JobsDir)
}

// JobPath returns the file path for a specific job.
func JobPath(repoRoot, jobID string) string {
	return filepath.Join(JobsPath(repoRoot), jobID+".json")
}

// Save persists the job.
func (j *Job) Save() error {
	dir := JobsPath(j.RepoRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating cleanup jobs directory")
	}

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling cleanup job")
	}

	return util.AtomicWriteFile(JobPath(j.RepoRoot, j.ID), data, 0644)
}

// LoadJob reads a job from disk.
func LoadJob(repoRoot, jobID string) (*Job, error) {
	data, err := os.ReadFile(JobPath(repoRoot, jobID))
	if err != nil {
		return nil, errors.Wrapf(err, "reading cleanup job %s", jobID)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, errors.Wrapf(err, "parsing cleanup job %s", jobID)
	}
	return &job, nil
}

// ListJobs returns all recorded cleanup jobs.
func ListJobs(repoRoot string) ([]*Job, error) {
	entries, err := os.ReadDir(JobsPath(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var jobs []*Job
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		jobID := entry.Name()[:len(entry.Name())-5]
		job, err := LoadJob(repoRoot, jobID)
		if err != nil {
			continue // skip malformed job files
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// RemoveJobFile deletes a job file.
func RemoveJobFile(repoRoot, jobID string) error {
	return os.Remove(JobPath(repoRoot, jobID))
}

// CleanupOldJobs removes finished job files older than maxAge and
// returns how many were removed.
func CleanupOldJobs(repoRoot string, maxAge time.Duration) (int, error) {
	jobs, err := ListJobs(repoRoot)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, job := range jobs {
		if !job.isFinished() {
			continue
		}

		endTime := job.EndedAt
		if endTime.IsZero() {
			endTime = job.CreatedAt
		}

		if endTime.Before(cutoff) {
			if err := RemoveJobFile(repoRoot, job.ID); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (j *Job) isFinished() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
