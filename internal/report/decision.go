// Package report renders plan decisions, merge outcomes, and worktree
// listings for terminal output.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Iron-Ham/divvy/internal/plan"
	"github.com/Iron-Ham/divvy/internal/util"
)

const minWidth = 40

// RenderDecision renders a viability decision with its per-domain
// breakdown and the thresholds it was judged against.
func RenderDecision(res plan.Result, th plan.Thresholds, width int) string {
	if width < minWidth {
		width = minWidth
	}
	d := res.Decision

	var b strings.Builder

	if d.Viable {
		b.WriteString(successBanner.Render("PARALLEL EXECUTION VIABLE"))
	} else {
		b.WriteString(warnBanner.Render("SEQUENTIAL EXECUTION RECOMMENDED"))
	}
	b.WriteString("\n\n")
	b.WriteString(d.Reason)
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("Analysis"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Files:   %d (minimum %d)\n", d.FileCount, th.MinFiles))
	b.WriteString(fmt.Sprintf("  Domains: %d (minimum %d)\n", d.DomainCount, th.MinDomains))
	b.WriteString(fmt.Sprintf("  Overlap: %s%% (maximum %s%%)\n",
		plan.FormatOverlap(d.OverlapPercentage),
		plan.FormatOverlap(th.MaxOverlap)))

	if len(d.Domains) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Domains"))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %-14s %5s", "DOMAIN", "FILES")))
		b.WriteString("\n")
		for _, name := range sortedDomains(d.Domains) {
			b.WriteString(fmt.Sprintf("  %-14s %5d\n", name, d.Domains[name]))
		}
	}

	if len(res.Plans) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Proposed Worktrees"))
		b.WriteString("\n")
		for _, p := range res.Plans {
			b.WriteString(fmt.Sprintf("  %s  %s\n", domainStyle.Render(p.Domain), p.Description))
			if len(p.Files) > 0 {
				files := "    " + strings.Join(p.Files, ", ")
				b.WriteString(mutedStyle.Render(util.TruncateString(files, width)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

// sortedDomains returns domain names ordered by file count descending,
// name ascending on ties.
func sortedDomains(domains map[string]int) []string {
	names := make([]string, 0, len(domains))
	for name := range domains {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if domains[names[i]] != domains[names[j]] {
			return domains[names[i]] > domains[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
