// Package id generates unique identifiers for worktrees, plan runs, and
// merge runs.
package id

import (
	"github.com/google/uuid"
)

// Generate generates a new unique ID.
func Generate() string {
	return uuid.New().String()
}

// GenerateShort generates a shorter unique ID (first 8 chars of UUID).
// Short IDs are used as worktree name suffixes where a full UUID would
// make paths unwieldy.
func GenerateShort() string {
	return uuid.New().String()[:8]
}
