package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/divvy/internal/util"
	"github.com/Iron-Ham/divvy/internal/worktree"
)

// RenderWorktrees renders worktree metadata as a table, one row per
// worktree in the order given.
func RenderWorktrees(metas []*worktree.Metadata, width int) string {
	if len(metas) == 0 {
		return "No worktrees found.\n"
	}
	if width < minWidth {
		width = minWidth
	}

	var b strings.Builder
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %-26s %-10s %-12s %-8s %s",
		"NAME", "DOMAIN", "STATUS", "UPDATED", "BRANCH")))
	b.WriteString("\n")

	branchWidth := width - 62
	for _, meta := range metas {
		icon := lipgloss.NewStyle().Foreground(StatusColor(meta.Status)).Render(StatusIcon(meta.Status))
		b.WriteString(fmt.Sprintf("%s %-26s %-10s %-12s %-8s %s\n",
			icon,
			util.TruncateString(meta.Name, 26),
			util.TruncateString(meta.Domain, 10),
			meta.Status,
			formatAge(meta.UpdatedAt),
			mutedStyle.Render(util.TruncateString(meta.Branch, branchWidth))))
	}

	return b.String()
}

// formatAge renders how long ago a timestamp was, coarsely.
func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
