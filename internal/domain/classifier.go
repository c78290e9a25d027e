// Package domain classifies file paths into ownership domains.
//
// A domain is a category of file ownership (backend, frontend, database,
// tests, docs) used to partition planned work so that independent groups of
// files can be changed in parallel without touching each other. Classification
// is driven by an ordered rule table of glob patterns: rules are evaluated in
// a fixed order and the first matching domain wins, so the same path always
// yields the same domain. Paths that match no rule fall back to the default
// domain (backend).
//
// The built-in table can be replaced by a YAML rules file, see LoadRules.
package domain

import (
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/divvy/internal/errors"
)

// Canonical domain names used by the built-in rule table.
const (
	Backend  = "backend"
	Frontend = "frontend"
	Database = "database"
	Tests    = "tests"
	Docs     = "docs"
)

// Rule is one domain's pattern set within an ordered rule table.
type Rule struct {
	// Name is the domain label assigned to matching paths.
	Name string `yaml:"name"`
	// Patterns are glob patterns matched against the whole repo-relative
	// path. A single wildcard crosses directory separators, so "*.sql"
	// matches "db/schema.sql".
	Patterns []string `yaml:"patterns"`
}

// RuleSet is a complete ordered classification table.
type RuleSet struct {
	// Default is the domain assigned to paths matching no rule.
	// Empty means "backend".
	Default string `yaml:"default,omitempty"`
	// Domains are evaluated in order; the first domain with a matching
	// pattern wins.
	Domains []Rule `yaml:"domains"`
}

// DefaultRules returns the built-in classification table.
//
// The table is ordered backend, frontend, database, tests, docs and favors
// directory conventions first, then filename conventions. Matching is
// case-insensitive.
func DefaultRules() RuleSet {
	return RuleSet{
		Default: Backend,
		Domains: []Rule{
			{
				Name: Backend,
				Patterns: []string{
					"src/backend/*",
					"src/api/*",
					"src/services/*",
					"src/models/*",
					"backend/*",
					"api/*",
					"services/*",
					"models/*",
					"*.service.py",
					"*.controller.py",
					"*.router.py",
				},
			},
			{
				Name: Frontend,
				Patterns: []string{
					"src/frontend/*",
					"src/components/*",
					"src/pages/*",
					"src/ui/*",
					"frontend/*",
					"components/*",
					"pages/*",
					"ui/*",
					"*.ts",
					"*.tsx",
					"*.js",
					"*.jsx",
					"*.vue",
					"*.svelte",
				},
			},
			{
				Name: Database,
				Patterns: []string{
					"migrations/*",
					"alembic/*",
					"src/database/*",
					"src/schemas/*",
					"database/*",
					"schemas/*",
					"*migration*.py",
					"*.sql",
				},
			},
			{
				Name: Tests,
				Patterns: []string{
					"tests/*",
					"test/*",
					"*test_*.py",
					"*_test.py",
					"*.test.ts",
					"*.spec.ts",
				},
			},
			{
				Name: Docs,
				Patterns: []string{
					"docs/*",
					"documentation/*",
					"*readme*.md",
					"*.md",
					"*.rst",
				},
			},
		},
	}
}

// compiledRule pairs a domain name with its compiled patterns.
type compiledRule struct {
	name  string
	globs []glob.Glob
}

// Classifier assigns file paths to domains using a compiled rule table.
// Classification is a pure function of the path string: no filesystem
// access, no state mutation.
type Classifier struct {
	rules    []compiledRule
	fallback string
}

// NewClassifier creates a Classifier from the built-in rule table.
func NewClassifier() *Classifier {
	c, err := NewClassifierFromRules(DefaultRules())
	if err != nil {
		// The built-in table is static and must always compile.
		panic("domain: built-in rules failed to compile: " + err.Error())
	}
	return c
}

// NewClassifierFromRules creates a Classifier from the given rule set.
// Patterns are compiled case-insensitively. Returns an error wrapping
// errors.ErrRulesInvalid if the set is empty, a domain is unnamed or
// duplicated, or a pattern does not compile.
func NewClassifierFromRules(rs RuleSet) (*Classifier, error) {
	if len(rs.Domains) == 0 {
		return nil, errors.Wrap(errors.ErrRulesInvalid, "rule set has no domains")
	}

	fallback := rs.Default
	if fallback == "" {
		fallback = Backend
	}

	seen := make(map[string]bool)
	rules := make([]compiledRule, 0, len(rs.Domains))
	for _, rule := range rs.Domains {
		name := strings.TrimSpace(rule.Name)
		if name == "" {
			return nil, errors.Wrap(errors.ErrRulesInvalid, "domain with empty name")
		}
		if seen[name] {
			return nil, errors.Wrapf(errors.ErrRulesInvalid, "duplicate domain %q", name)
		}
		seen[name] = true

		if len(rule.Patterns) == 0 {
			return nil, errors.Wrapf(errors.ErrRulesInvalid, "domain %q has no patterns", name)
		}

		compiled := compiledRule{name: name}
		for _, pattern := range rule.Patterns {
			g, err := glob.Compile(strings.ToLower(pattern))
			if err != nil {
				return nil, errors.Wrapf(errors.ErrRulesInvalid, "domain %q pattern %q", name, pattern)
			}
			compiled.globs = append(compiled.globs, g)
		}
		rules = append(rules, compiled)
	}

	return &Classifier{rules: rules, fallback: fallback}, nil
}

// Classify returns the domain for a file path. Rules are evaluated in table
// order and the first matching domain wins; paths matching no rule return
// the fallback domain. Matching is case-insensitive.
func (c *Classifier) Classify(path string) string {
	lowered := strings.ToLower(path)
	for _, rule := range c.rules {
		for _, g := range rule.globs {
			if g.Match(lowered) {
				return rule.name
			}
		}
	}
	return c.fallback
}

// MatchingDomains returns every domain whose pattern set matches the path,
// in table order. Unlike Classify it does not stop at the first match and
// never falls back: a path matching no rule returns nil. Files matching
// more than one domain are the ambiguous files counted toward overlap.
func (c *Classifier) MatchingDomains(path string) []string {
	lowered := strings.ToLower(path)
	var matched []string
	for _, rule := range c.rules {
		for _, g := range rule.globs {
			if g.Match(lowered) {
				matched = append(matched, rule.name)
				break // Count each domain only once per file
			}
		}
	}
	return matched
}

// Domains returns the domain names in rule table order. The fallback domain
// is appended if it has no rule of its own.
func (c *Classifier) Domains() []string {
	names := make([]string, 0, len(c.rules)+1)
	hasFallback := false
	for _, rule := range c.rules {
		names = append(names, rule.name)
		if rule.name == c.fallback {
			hasFallback = true
		}
	}
	if !hasFallback {
		names = append(names, c.fallback)
	}
	return names
}

// Fallback returns the default domain for unmatched paths.
func (c *Classifier) Fallback() string {
	return c.fallback
}

// Group is a domain together with the files classified into it.
type Group struct {
	Domain string
	Files  []string
}

// Partition classifies paths into ordered groups. Input paths are
// deduplicated and each group's files are sorted; groups appear in rule
// table order (fallback last if it has no rule), so the same input always
// yields the same partition. The union of all groups equals the input set
// and every file appears in exactly one group.
func (c *Classifier) Partition(paths []string) []Group {
	byDomain := make(map[string][]string)
	seen := make(map[string]bool)
	for _, path := range paths {
		if seen[path] {
			continue
		}
		seen[path] = true
		domain := c.Classify(path)
		byDomain[domain] = append(byDomain[domain], path)
	}

	// Classify only ever returns rule names or the fallback, so Domains()
	// covers every key in byDomain.
	var groups []Group
	for _, name := range c.Domains() {
		files, ok := byDomain[name]
		if !ok {
			continue
		}
		sort.Strings(files)
		groups = append(groups, Group{Domain: name, Files: files})
	}

	return groups
}
