// Package rules defines the build-rule model shared by the enhancer and the
// build-file loader: rule identities with declared vs extra dependency sets,
// opaque output references, an append-only rule index, and deterministic
// dependency-set composition.
//
// # Declared vs extra dependencies
//
// Declared dependencies are user-authored edges from a build file. Extra
// dependencies are scaffolding edges injected by an enhancer. The two sets
// are carried separately end to end and are never conflated; composing a
// final dependency set replaces the extras, it never touches the declared
// edges.
//
// # Registration
//
// Enhancers do not mutate a shared index directly. They accumulate created
// rules in a [Batch] - an ordered, duplicate-checked list of (identity,
// rule) pairs - and the caller inserts the whole batch atomically with
// [Registry.Commit]. A failed enhancement therefore leaves no orphaned
// partial registrations behind.
package rules

import (
	"strings"

	"github.com/aarforge/aarforge/pkg/target"
)

// OutputRef is an opaque handle to a produced artifact. It resolves either
// to a rule's output (identified by the rule's target) or to a literal
// input path checked into the source tree. The zero value means "no output".
type OutputRef struct {
	target target.Target
	path   string
	isRule bool
}

// RuleOutput returns a reference to the output of the rule with the given
// target.
func RuleOutput(t target.Target) OutputRef {
	return OutputRef{target: t, isRule: true}
}

// PathRef returns a reference to a literal input path.
func PathRef(p string) OutputRef {
	return OutputRef{path: p}
}

// IsZero reports whether the reference points at nothing.
func (r OutputRef) IsZero() bool { return !r.isRule && r.path == "" }

// IsRuleOutput reports whether the reference resolves to a rule's output.
func (r OutputRef) IsRuleOutput() bool { return r.isRule }

// Target returns the producing rule's target and true, or a zero target and
// false for literal path references.
func (r OutputRef) Target() (target.Target, bool) {
	return r.target, r.isRule
}

// String returns the canonical printable form of the reference. Rule
// outputs render as the producing target, literal references as the path.
func (r OutputRef) String() string {
	if r.isRule {
		return r.target.String()
	}
	return r.path
}

// CompareRefs defines a total order over output references by their
// canonical string form, rule outputs before paths on ties.
func CompareRefs(a, b OutputRef) int {
	if c := strings.Compare(a.String(), b.String()); c != 0 {
		return c
	}
	switch {
	case a.isRule == b.isRule:
		return 0
	case a.isRule:
		return -1
	default:
		return 1
	}
}

// Rule is a node in the build-rule graph.
type Rule interface {
	// RuleTarget returns the rule's identity.
	RuleTarget() target.Target

	// RuleDeps returns the rule's dependency edges (declared and extra).
	// The order is deterministic for a given rule instance.
	RuleDeps() []Rule

	// Output returns a reference to the rule's produced artifact, or the
	// zero OutputRef if the rule produces none.
	Output() OutputRef
}

// Params carries a rule identity together with its two dependency sets.
type Params struct {
	Target   target.Target
	Declared []Rule // user-authored edges
	Extra    []Rule // enhancer-injected scaffolding edges
}

// NewParams creates params with the given identity and dependency sets.
func NewParams(t target.Target, declared, extra []Rule) Params {
	return Params{Target: t, Declared: declared, Extra: extra}
}

// WithFlavor returns a copy of the params whose target carries the
// additional flavor. Dependency sets are shared, not copied.
func (p Params) WithFlavor(f target.Flavor) (Params, error) {
	t, err := p.Target.WithFlavor(f)
	if err != nil {
		return Params{}, err
	}
	return Params{Target: t, Declared: p.Declared, Extra: p.Extra}, nil
}

// WithDeps returns a copy of the params with both dependency sets replaced.
func (p Params) WithDeps(declared, extra []Rule) Params {
	return Params{Target: p.Target, Declared: declared, Extra: extra}
}

// Deps returns the concatenation of declared and extra dependencies.
// The declared set comes first; the result is a fresh slice.
func (p Params) Deps() []Rule {
	deps := make([]Rule, 0, len(p.Declared)+len(p.Extra))
	deps = append(deps, p.Declared...)
	deps = append(deps, p.Extra...)
	return deps
}
