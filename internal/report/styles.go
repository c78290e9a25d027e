package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/divvy/internal/worktree"
)

var (
	greenColor  = lipgloss.Color("#10B981")
	redColor    = lipgloss.Color("#F87171")
	amberColor  = lipgloss.Color("#F59E0B")
	blueColor   = lipgloss.Color("#60A5FA")
	purpleColor = lipgloss.Color("#A78BFA")
	orangeColor = lipgloss.Color("#FB923C")
	mutedColor  = lipgloss.Color("#9CA3AF")
	textColor   = lipgloss.Color("#F9FAFB")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(purpleColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	successBanner = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(greenColor).
			Padding(0, 1)

	warnBanner = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(amberColor).
			Padding(0, 1)

	errorBanner = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(redColor).
			Padding(0, 1)

	successMsg = lipgloss.NewStyle().
			Foreground(greenColor).
			Bold(true)

	errorMsg = lipgloss.NewStyle().
			Foreground(redColor).
			Bold(true)

	domainStyle = lipgloss.NewStyle().
			Foreground(blueColor).
			Bold(true)
)

// StatusIcon returns an icon for a worktree status.
func StatusIcon(status worktree.Status) string {
	switch status {
	case worktree.StatusCreated:
		return "○"
	case worktree.StatusAssigned:
		return "◌"
	case worktree.StatusInProgress:
		return "●"
	case worktree.StatusCompleted:
		return "✓"
	case worktree.StatusFailed:
		return "✗"
	case worktree.StatusMerged:
		return "↗"
	case worktree.StatusConflict:
		return "⚠"
	case worktree.StatusCleaned:
		return "·"
	default:
		return "●"
	}
}

// StatusColor returns the color for a worktree status.
func StatusColor(status worktree.Status) lipgloss.Color {
	switch status {
	case worktree.StatusCreated:
		return mutedColor
	case worktree.StatusAssigned:
		return blueColor
	case worktree.StatusInProgress:
		return greenColor
	case worktree.StatusCompleted:
		// Completed work is waiting on the merge phase.
		return amberColor
	case worktree.StatusFailed:
		return redColor
	case worktree.StatusMerged:
		return purpleColor
	case worktree.StatusConflict:
		return orangeColor
	case worktree.StatusCleaned:
		return mutedColor
	default:
		return mutedColor
	}
}
