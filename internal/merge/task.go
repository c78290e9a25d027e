package merge

import "sort"

// TaskStatus is the per-task outcome of a merge run.
type TaskStatus string

const (
	// TaskPending means the branch has not been merged yet.
	TaskPending TaskStatus = "pending"
	// TaskMerged means the branch landed on the trunk.
	TaskMerged TaskStatus = "merged"
	// TaskConflicted means the branch conflicted and halted the run.
	TaskConflicted TaskStatus = "conflicted"
)

// Task is one domain branch awaiting integration.
type Task struct {
	// Name keys the worktree metadata record, when one exists.
	Name string
	// Domain the branch belongs to. Determines merge order.
	Domain string
	// Branch to merge onto the trunk.
	Branch string
	// WorktreePath is the checkout removed after a clean run.
	WorktreePath string
	// Failed marks a domain whose work was abandoned. A failed task
	// blocks the entire run.
	Failed bool
}

// TaskResult records one task's outcome within a run.
type TaskResult struct {
	Name   string     `json:"name,omitempty"`
	Domain string     `json:"domain"`
	Branch string     `json:"branch"`
	Status TaskStatus `json:"status"`
}

// Conflict names the domain and files that stopped a run.
type Conflict struct {
	Domain string   `json:"domain"`
	Files  []string `json:"files"`
}

// Run status values reported in a Summary.
const (
	StatusSuccess = "success"
	StatusAborted = "aborted"
)

// Summary is the structured outcome of a merge run. MergedDomains
// lists domains in the order they landed; Results covers every task in
// merge order, including ones the run never reached.
type Summary struct {
	MergedDomains []string     `json:"merged_domains"`
	Conflicts     []Conflict   `json:"conflicts,omitempty"`
	Status        string       `json:"status"`
	AbortReason   string       `json:"abort_reason,omitempty"`
	TrunkHead     string       `json:"trunk_head,omitempty"`
	Results       []TaskResult `json:"results"`
}

// DefaultPriority returns the merge order for the built-in domains.
// Schema changes land first so dependent code merges onto them.
func DefaultPriority() []string {
	return []string{"database", "backend", "frontend", "tests", "docs"}
}

// OrderTasks sorts tasks by the priority table: listed domains first in
// table order, unlisted domains after in their input order. The input
// slice is not modified.
func OrderTasks(tasks []Task, priority []string) []Task {
	rank := make(map[string]int, len(priority))
	for i, d := range priority {
		rank[d] = i
	}

	ordered := make([]Task, len(tasks))
	copy(ordered, tasks)

	sort.SliceStable(ordered, func(i, j int) bool {
		ri, iListed := rank[ordered[i].Domain]
		rj, jListed := rank[ordered[j].Domain]
		switch {
		case iListed && jListed:
			return ri < rj
		case iListed:
			return true
		default:
			// Unlisted pairs keep their input order.
			return false
		}
	})
	return ordered
}
