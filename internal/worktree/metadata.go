package worktree

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Iron-Ham/divvy/internal/errors"
	"github.com/Iron-Ham/divvy/internal/util"
)

// Status is the lifecycle state of a provisioned worktree.
type Status string

const (
	// StatusCreated means the worktree exists but no work has started.
	StatusCreated Status = "created"
	// StatusAssigned means the worktree has been handed to a worker.
	StatusAssigned Status = "assigned"
	// StatusInProgress means changes are being made in the worktree.
	StatusInProgress Status = "in_progress"
	// StatusCompleted means the domain's work is committed and ready to
	// merge.
	StatusCompleted Status = "completed"
	// StatusFailed means the domain's work was abandoned.
	StatusFailed Status = "failed"
	// StatusMerged means the worktree's branch was merged into the trunk.
	StatusMerged Status = "merged"
	// StatusConflict means a merge attempt hit conflicts.
	StatusConflict Status = "conflict"
	// StatusCleaned means the worktree directory has been removed.
	StatusCleaned Status = "cleaned"
)

// validTransitions defines the legal status lifecycle. A worktree moves
// created -> assigned -> in_progress -> completed -> merged -> cleaned
// on the happy path; failed and conflict are the off-ramps.
var validTransitions = map[Status][]Status{
	StatusCreated:    {StatusAssigned, StatusInProgress, StatusCompleted, StatusFailed, StatusCleaned},
	StatusAssigned:   {StatusInProgress, StatusCompleted, StatusFailed, StatusCleaned},
	StatusInProgress: {StatusCompleted, StatusFailed, StatusCleaned},
	StatusCompleted:  {StatusMerged, StatusConflict, StatusCleaned},
	StatusFailed:     {StatusCleaned},
	StatusMerged:     {StatusCleaned},
	// A conflicted worktree can be re-marked completed after manual
	// resolution.
	StatusConflict: {StatusCompleted, StatusCleaned},
	StatusCleaned:  {},
}

// IsTerminal reports whether the status ends the worktree's active
// life. Terminal worktrees are eligible for cleanup sweeps.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusMerged, StatusFailed, StatusConflict, StatusCleaned:
		return true
	}
	return false
}

// IsValid reports whether s is a known status value.
func (s Status) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransition reports whether moving from s to next is a legal
// lifecycle step.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Metadata records everything divvy knows about one provisioned
// worktree.
type Metadata struct {
	// Name is the worktree directory name, unique per provisioning run.
	Name string `json:"name"`
	// Epic groups the worktrees provisioned from one plan.
	Epic string `json:"epic,omitempty"`
	// Domain is the file domain this worktree owns.
	Domain string `json:"domain"`
	// Description is the task summary from the domain plan.
	Description string `json:"description,omitempty"`
	// Branch is the branch checked out in the worktree.
	Branch string `json:"branch"`
	// BaseBranch is the branch the worktree's branch started from.
	BaseBranch string `json:"base_branch"`
	// Path is the absolute worktree directory.
	Path string `json:"path"`
	// Files are the repo-relative paths assigned to this domain.
	Files []string `json:"files,omitempty"`
	// Status is the current lifecycle state.
	Status Status `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists worktree metadata as one JSON file per worktree.
// Writes are atomic so concurrent readers never see torn records.
type Store struct {
	dir string
}

// archiveDirName holds records for worktrees that no longer exist.
const archiveDirName = "archived"

// NewStore creates a metadata store rooted at dir, creating the
// directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create metadata directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// DefaultStoreDir returns the conventional metadata location for a
// repository root.
func DefaultStoreDir(repoRoot string) string {
	return filepath.Join(repoRoot, ".divvy", "worktrees", ".metadata")
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Save writes the metadata record for a worktree.
func (s *Store) Save(m *Metadata) error {
	if m.Name == "" {
		return errors.NewValidationError("worktree metadata must have a name").WithField("name")
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return util.AtomicWriteFile(s.path(m.Name), data, 0644)
}

// Load reads the metadata record for a worktree by name.
func (s *Store) Load(name string) (*Metadata, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrWorktreeNotFound, "no metadata for worktree %s", name)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse metadata for %s: %w", name, err)
	}
	return &m, nil
}

// List returns all active metadata records sorted by name. Files that
// fail to parse are skipped.
func (s *Store) List() ([]*Metadata, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read metadata directory: %w", err)
	}

	var metas []*Metadata
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		m, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		metas = append(metas, m)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].Name < metas[j].Name
	})
	return metas, nil
}

// ListByEpic returns metadata records for one epic, sorted by name.
func (s *Store) ListByEpic(epic string) ([]*Metadata, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	var metas []*Metadata
	for _, m := range all {
		if m.Epic == epic {
			metas = append(metas, m)
		}
	}
	return metas, nil
}

// UpdateStatus moves a worktree to a new lifecycle status, validating
// the transition and refreshing UpdatedAt. Returns the updated record.
func (s *Store) UpdateStatus(name string, next Status) (*Metadata, error) {
	m, err := s.Load(name)
	if err != nil {
		return nil, err
	}

	if !m.Status.CanTransition(next) {
		return nil, errors.Wrapf(errors.ErrInvalidTransition,
			"worktree %s cannot move from %s to %s", name, m.Status, next)
	}

	m.Status = next
	m.UpdatedAt = time.Now().UTC()
	if err := s.Save(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes the metadata record for a worktree. Deleting a missing
// record is not an error.
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}
	return nil
}

// Archive moves a worktree's record into the archive subdirectory,
// preserving history after the worktree itself is removed. The archived
// file name carries a timestamp so re-archiving a reused name never
// overwrites an earlier record.
func (s *Store) Archive(name string) error {
	if _, err := s.Load(name); err != nil {
		return err
	}

	archiveDir := filepath.Join(s.dir, archiveDirName)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	archived := fmt.Sprintf("%s-%s.json", name, time.Now().UTC().Format("20060102-150405"))
	if err := os.Rename(s.path(name), filepath.Join(archiveDir, archived)); err != nil {
		return fmt.Errorf("failed to archive metadata: %w", err)
	}
	return nil
}
