package worktree

import (
	"fmt"

	"github.com/Iron-Ham/divvy/internal/id"
	"github.com/Iron-Ham/divvy/internal/util"
)

// WorktreeName builds a unique directory name for a domain worktree:
// "{epic}-{domain}-{id}" with both parts slugified and an 8-character
// random suffix so repeated runs for the same epic never collide.
func WorktreeName(epic, domain string) string {
	return fmt.Sprintf("%s-%s-%s", util.Slugify(epic), util.Slugify(domain), id.GenerateShort())
}

// BranchName builds the branch for a domain worktree:
// "{prefix}/{epic}/{domain}". Branch names carry no random suffix;
// there is exactly one branch per epic and domain.
func BranchName(prefix, epic, domain string) string {
	return fmt.Sprintf("%s/%s/%s", prefix, util.Slugify(epic), util.Slugify(domain))
}
