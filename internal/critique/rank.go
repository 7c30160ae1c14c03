package critique

import (
	"fmt"
	"sort"
)

// RankIssues assigns positional identifiers and orders issues by severity.
// IDs derive from list position rather than content hashing so near-duplicate
// issues stay distinguishable. The sort is stable: ties keep the relative
// order the model produced them in.
func RankIssues(issues []SpecificIssue) []SpecificIssue {
	ranked := make([]SpecificIssue, len(issues))
	copy(ranked, issues)
	for i := range ranked {
		ranked[i].ID = fmt.Sprintf("issue-%d", i+1)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Severity.Rank() < ranked[j].Severity.Rank()
	})
	return ranked
}

// RankActions orders priority actions ascending by priority (1 first),
// preserving original order within a shared priority.
func RankActions(actions []PriorityAction) []PriorityAction {
	ranked := make([]PriorityAction, len(actions))
	copy(ranked, actions)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority < ranked[j].Priority
	})
	return ranked
}
