package report

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/divvy/internal/merge"
	"github.com/Iron-Ham/divvy/internal/util"
)

// RenderMergeSummary renders the outcome of a merge run: the ordered
// per-domain results, any conflicting files, and the final trunk head.
func RenderMergeSummary(s *merge.Summary, width int) string {
	if s == nil {
		return ""
	}
	if width < minWidth {
		width = minWidth
	}

	var b strings.Builder

	if s.Status == merge.StatusSuccess {
		b.WriteString(successBanner.Render("MERGE COMPLETE"))
	} else {
		b.WriteString(errorBanner.Render("MERGE ABORTED"))
	}
	b.WriteString("\n\n")

	if s.AbortReason != "" {
		b.WriteString(errorMsg.Render(s.AbortReason))
		b.WriteString("\n\n")
	}

	b.WriteString(titleStyle.Render("Results"))
	b.WriteString("\n")
	for _, r := range s.Results {
		b.WriteString(fmt.Sprintf("  %s %-14s %-12s %s\n",
			taskIcon(r.Status), r.Domain, r.Status,
			mutedStyle.Render(util.TruncateString(r.Branch, width-32))))
	}

	if len(s.Conflicts) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Conflicting Files"))
		b.WriteString("\n")
		for _, c := range s.Conflicts {
			b.WriteString(fmt.Sprintf("  %s:\n", domainStyle.Render(c.Domain)))
			for _, file := range c.Files {
				b.WriteString("    " + file + "\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d of %d branches merged\n", len(s.MergedDomains), len(s.Results)))
	if s.TrunkHead != "" {
		b.WriteString(mutedStyle.Render("trunk at " + shortSHA(s.TrunkHead)))
		b.WriteString("\n")
	}

	return b.String()
}

func taskIcon(status merge.TaskStatus) string {
	switch status {
	case merge.TaskMerged:
		return successMsg.Render("✓")
	case merge.TaskConflicted:
		return errorMsg.Render("✗")
	default:
		return mutedStyle.Render("○")
	}
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
