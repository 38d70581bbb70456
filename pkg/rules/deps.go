package rules

import (
	"slices"

	"github.com/aarforge/aarforge/pkg/target"
)

// SortByTarget merges the given rule sets into one ordered, duplicate-free
// set: the deterministic union an enhancer installs as a rule's final extra
// dependencies. The order is the total order over canonical target strings,
// so two runs over graphs identical up to declaration order produce
// byte-identical edge sets.
func SortByTarget(sets ...[]Rule) []Rule {
	var merged []Rule
	seen := make(map[string]struct{})
	for _, set := range sets {
		for _, rule := range set {
			id := rule.RuleTarget().String()
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, rule)
		}
	}
	slices.SortFunc(merged, func(a, b Rule) int {
		return target.Compare(a.RuleTarget(), b.RuleTarget())
	})
	return merged
}

// SortRefs returns a sorted, duplicate-free copy of the given output
// references, using the same total order as SortByTarget.
func SortRefs(refs []OutputRef) []OutputRef {
	out := make([]OutputRef, 0, len(refs))
	seen := make(map[string]struct{})
	for _, r := range refs {
		if r.IsZero() {
			continue
		}
		if _, dup := seen[r.String()]; dup {
			continue
		}
		seen[r.String()] = struct{}{}
		out = append(out, r)
	}
	slices.SortFunc(out, CompareRefs)
	return out
}

// Targets extracts the identity of each rule, preserving order.
func Targets(set []Rule) []target.Target {
	out := make([]target.Target, len(set))
	for i, r := range set {
		out[i] = r.RuleTarget()
	}
	return out
}
