// Package plan decides whether a set of changed files should be worked
// in parallel across per-domain worktrees or sequentially on a single
// branch.
//
// The Analyzer classifies every file into exactly one domain, measures
// how much the domains' pattern sets overlap on the input, and applies
// a three-part viability rule: enough files, enough domains, and low
// overlap. The outcome is a Decision plus one DomainPlan per populated
// domain, which downstream worktree provisioning consumes directly.
//
// Analysis is pure and deterministic: the same input set always yields
// the same decision and the same plans, regardless of input order or
// duplicates.
package plan

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/Iron-Ham/divvy/internal/domain"
)

// Mode names the recommended execution strategy for a set of work items.
type Mode string

const (
	// ModeSequential recommends executing all work on a single branch.
	ModeSequential Mode = "sequential"
	// ModeParallel recommends one isolated worktree per domain.
	ModeParallel Mode = "parallel"
)

// Thresholds are the tunable limits for the viability decision.
type Thresholds struct {
	// MinFiles is the minimum number of distinct files required.
	MinFiles int
	// MinDomains is the minimum number of distinct domains required.
	MinDomains int
	// MaxOverlap is the overlap percentage at or above which parallel
	// execution is rejected.
	MaxOverlap float64
}

// DefaultThresholds returns the stock decision limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinFiles:   5,
		MinDomains: 2,
		MaxOverlap: 30.0,
	}
}

// Decision is the outcome of a viability analysis.
type Decision struct {
	// Viable reports whether parallel execution is recommended.
	Viable bool `json:"viable"`

	// Reason explains the decision: the first failing condition when not
	// viable, or a summary of the inputs when viable.
	Reason string `json:"reason"`

	// FileCount is the number of distinct files analyzed.
	FileCount int `json:"file_count"`

	// DomainCount is the number of distinct domains the files span.
	DomainCount int `json:"domain_count"`

	// OverlapPercentage is the share of files matching more than one
	// domain's pattern set, rounded to one decimal place.
	OverlapPercentage float64 `json:"overlap_percentage"`

	// RecommendedMode is parallel exactly when Viable is true.
	RecommendedMode Mode `json:"recommended_mode"`

	// Domains maps each populated domain to its file count.
	Domains map[string]int `json:"domains"`
}

// DomainPlan is the unit of work handed to worktree provisioning: the
// files assigned to one domain plus a short task description.
type DomainPlan struct {
	Domain      string   `json:"domain"`
	Description string   `json:"description"`
	Files       []string `json:"files"`
}

// Result pairs a decision with the per-domain plans derived from the
// same classification pass.
type Result struct {
	Decision Decision     `json:"decision"`
	Plans    []DomainPlan `json:"plans"`
}

// Analyzer classifies work items and applies the viability rule.
type Analyzer struct {
	classifier *domain.Classifier
	thresholds Thresholds
}

// NewAnalyzer returns an analyzer that classifies with the given
// classifier and decides with the given thresholds.
func NewAnalyzer(classifier *domain.Classifier, thresholds Thresholds) *Analyzer {
	return &Analyzer{
		classifier: classifier,
		thresholds: thresholds,
	}
}

// NewDefaultAnalyzer returns an analyzer using the built-in domain
// rules and the stock thresholds.
func NewDefaultAnalyzer() *Analyzer {
	return NewAnalyzer(domain.NewClassifier(), DefaultThresholds())
}

// Analyze classifies the given file paths and decides whether they
// warrant parallel execution.
//
// Input is normalized first: paths are trimmed, empties dropped,
// duplicates removed, and the remainder sorted, so the decision is
// independent of ordering and repetition.
//
// Analyze never fails. Degenerate input produces a non-viable decision
// whose reason names the first unmet condition, checked in order:
// file count, then domain count, then overlap.
func (a *Analyzer) Analyze(paths []string) Result {
	files := normalize(paths)
	groups := a.classifier.Partition(files)

	domains := make(map[string]int, len(groups))
	for _, g := range groups {
		domains[g.Domain] = len(g.Files)
	}

	overlapping := 0
	for _, f := range files {
		if len(a.classifier.MatchingDomains(f)) > 1 {
			overlapping++
		}
	}
	overlap := 0.0
	if len(files) > 0 {
		overlap = roundOverlap(float64(overlapping) / float64(len(files)) * 100)
	}

	decision := Decision{
		FileCount:         len(files),
		DomainCount:       len(groups),
		OverlapPercentage: overlap,
		RecommendedMode:   ModeSequential,
		Domains:           domains,
	}

	switch {
	case decision.FileCount < a.thresholds.MinFiles:
		decision.Reason = fmt.Sprintf("too few files (%d < %d)",
			decision.FileCount, a.thresholds.MinFiles)
	case decision.DomainCount < a.thresholds.MinDomains:
		decision.Reason = fmt.Sprintf("too few domains (%d < %d)",
			decision.DomainCount, a.thresholds.MinDomains)
	case overlap >= a.thresholds.MaxOverlap:
		decision.Reason = fmt.Sprintf("high overlap (%s%% >= %s%%)",
			FormatOverlap(overlap), FormatOverlap(a.thresholds.MaxOverlap))
	default:
		decision.Viable = true
		decision.RecommendedMode = ModeParallel
		decision.Reason = fmt.Sprintf("%d files across %d domains with %s%% overlap",
			decision.FileCount, decision.DomainCount, FormatOverlap(overlap))
	}

	plans := make([]DomainPlan, 0, len(groups))
	for _, g := range groups {
		plans = append(plans, DomainPlan{
			Domain:      g.Domain,
			Description: describe(g.Domain, len(g.Files)),
			Files:       g.Files,
		})
	}

	return Result{Decision: decision, Plans: plans}
}

// normalize trims whitespace, drops empty entries, dedupes, and sorts.
func normalize(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// roundOverlap rounds a percentage to one decimal place, the precision
// used everywhere overlap is reported.
func roundOverlap(p float64) float64 {
	return math.Round(p*10) / 10
}

// FormatOverlap renders an overlap percentage with exactly one decimal
// place, e.g. "12.5".
func FormatOverlap(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}

// descriptions maps the built-in domains to the task summaries used in
// plans and worktree metadata.
var descriptions = map[string]string{
	domain.Backend:  "Backend API implementation",
	domain.Frontend: "Frontend UI implementation",
	domain.Database: "Database schema and migrations",
	domain.Tests:    "Test suite implementation",
	domain.Docs:     "Documentation updates",
}

// describe builds the task summary for a domain plan, e.g.
// "Backend API implementation (3 files)". Domains outside the built-in
// table get a generic summary.
func describe(domainName string, fileCount int) string {
	base, ok := descriptions[domainName]
	if !ok {
		base = "Implementation tasks"
	}
	if fileCount == 1 {
		return base + " (1 file)"
	}
	return fmt.Sprintf("%s (%d files)", base, fileCount)
}
