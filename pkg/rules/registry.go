package rules

import (
	"github.com/aarforge/aarforge/pkg/errors"
	"github.com/aarforge/aarforge/pkg/target"
)

// Registry is the shared rule index: an append-only mapping from full
// target identity to rule, preserving insertion order. Rules are never
// removed or replaced once added.
//
// Registry is not safe for concurrent use. The surrounding engine may run
// independent enhancements concurrently only against separate registries
// or with external synchronization; two enhancements of the same target
// are the caller's bug, not guarded here.
type Registry struct {
	byID  map[string]Rule
	order []Rule
}

// NewRegistry creates an empty rule index.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Rule)}
}

// Add inserts a single rule. It returns a DUPLICATE_RULE error if a rule
// with the same identity is already present.
func (r *Registry) Add(rule Rule) error {
	id := rule.RuleTarget().String()
	if _, exists := r.byID[id]; exists {
		return errors.New(errors.ErrCodeDuplicateRule, "rule %s is already registered", id)
	}
	r.byID[id] = rule
	r.order = append(r.order, rule)
	return nil
}

// Commit inserts every rule of the batch, all or nothing. If any batch
// rule collides with an already-registered identity, nothing is inserted
// and a DUPLICATE_RULE error names the colliding target.
func (r *Registry) Commit(b *Batch) error {
	for _, rule := range b.rules {
		if _, exists := r.byID[rule.RuleTarget().String()]; exists {
			return errors.New(errors.ErrCodeDuplicateRule,
				"rule %s is already registered", rule.RuleTarget())
		}
	}
	for _, rule := range b.rules {
		r.byID[rule.RuleTarget().String()] = rule
		r.order = append(r.order, rule)
	}
	return nil
}

// Get returns the rule with the given identity, if registered.
func (r *Registry) Get(t target.Target) (Rule, bool) {
	rule, ok := r.byID[t.String()]
	return rule, ok
}

// Rules returns all registered rules in insertion order.
// The returned slice is a copy.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int { return len(r.order) }

// Batch is an ordered accumulation of rules created during one enhancement
// call. Later pipeline steps see earlier rules through the enhancer's own
// references; the shared index only sees the batch when the caller commits
// it, so a failed enhancement has no observable side effects.
type Batch struct {
	rules []Rule
	seen  map[string]struct{}
	err   error // first duplicate-identity error recorded by Add
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{seen: make(map[string]struct{})}
}

// Add appends a rule to the batch and returns it unchanged, mirroring the
// add-and-use pattern at creation sites:
//
//	manifest := batch.Add(newManifestRule(...))
//
// Adding two rules with the same identity records a DUPLICATE_RULE error,
// surfaced through Err; a flavor collision inside one enhancement call is
// a programming error the batch makes visible before commit.
func (b *Batch) Add(rule Rule) Rule {
	id := rule.RuleTarget().String()
	if _, dup := b.seen[id]; dup {
		if b.err == nil {
			b.err = errors.New(errors.ErrCodeDuplicateRule,
				"rule %s was generated twice in one enhancement", id)
		}
		return rule
	}
	b.seen[id] = struct{}{}
	b.rules = append(b.rules, rule)
	return rule
}

// Err returns the first duplicate-identity error recorded by Add, if any.
func (b *Batch) Err() error { return b.err }

// Rules returns the batched rules in creation order.
// The returned slice is a copy.
func (b *Batch) Rules() []Rule {
	out := make([]Rule, len(b.rules))
	copy(out, b.rules)
	return out
}

// Len returns the number of batched rules.
func (b *Batch) Len() int { return len(b.rules) }
