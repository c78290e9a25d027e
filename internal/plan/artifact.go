package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/divvy/internal/errors"
	"github.com/Iron-Ham/divvy/internal/util"
)

// ArtifactName is the file name for persisted plan runs inside the
// .divvy directory.
const ArtifactName = "plan.json"

// Artifact is the persisted output of a plan run. It is written to
// .divvy/plan.json in the repository so later worktree provisioning and
// merge runs can pick up the most recent decision.
type Artifact struct {
	Epic      string       `json:"epic,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	Decision  Decision     `json:"decision"`
	Plans     []DomainPlan `json:"plans"`
}

// NewArtifact snapshots an analysis result for persistence.
func NewArtifact(epic string, res Result) *Artifact {
	return &Artifact{
		Epic:      epic,
		CreatedAt: time.Now().UTC(),
		Decision:  res.Decision,
		Plans:     res.Plans,
	}
}

// DefaultArtifactPath returns the conventional artifact location for a
// repository root.
func DefaultArtifactPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".divvy", ArtifactName)
}

// SaveArtifact writes the artifact as indented JSON. The write is
// atomic so a crashed run never leaves a torn artifact behind.
func SaveArtifact(path string, a *Artifact) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan artifact: %w", err)
	}

	return util.AtomicWriteFile(path, data, 0644)
}

// LoadArtifact reads a previously saved artifact. A missing file
// reports errors.ErrPlanNotFound; malformed content reports
// errors.ErrPlanInvalid.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrPlanNotFound, "no plan artifact at %s", path)
		}
		return nil, fmt.Errorf("failed to read plan artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, errors.Wrapf(errors.ErrPlanInvalid, "parsing plan artifact %s: %v", path, err)
	}
	return &a, nil
}
