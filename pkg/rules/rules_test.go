package rules

import (
	"testing"

	"github.com/aarforge/aarforge/pkg/errors"
	"github.com/aarforge/aarforge/pkg/target"
)

// fakeRule is a minimal Rule for exercising the registry and composer.
type fakeRule struct {
	target target.Target
	deps   []Rule
	out    OutputRef
}

func (f *fakeRule) RuleTarget() target.Target { return f.target }
func (f *fakeRule) RuleDeps() []Rule          { return f.deps }
func (f *fakeRule) Output() OutputRef         { return f.out }

func fake(t *testing.T, id string, deps ...Rule) *fakeRule {
	t.Helper()
	tgt := target.MustParse(id)
	return &fakeRule{target: tgt, deps: deps, out: RuleOutput(tgt)}
}

func TestOutputRef(t *testing.T) {
	var zero OutputRef
	if !zero.IsZero() {
		t.Error("zero OutputRef: IsZero() = false")
	}

	path := PathRef("res/AndroidManifest.xml")
	if path.IsZero() || path.IsRuleOutput() {
		t.Errorf("PathRef: IsZero()=%v IsRuleOutput()=%v", path.IsZero(), path.IsRuleOutput())
	}
	if path.String() != "res/AndroidManifest.xml" {
		t.Errorf("PathRef.String() = %q", path.String())
	}

	tgt := target.MustParse("//lib:res")
	ref := RuleOutput(tgt)
	if !ref.IsRuleOutput() {
		t.Error("RuleOutput: IsRuleOutput() = false")
	}
	got, ok := ref.Target()
	if !ok || !target.Equal(got, tgt) {
		t.Errorf("RuleOutput.Target() = %v, %v", got, ok)
	}
	if ref.String() != "//lib:res" {
		t.Errorf("RuleOutput.String() = %q", ref.String())
	}
}

func TestParamsWithFlavorKeepsDepsSeparate(t *testing.T) {
	a := fake(t, "//lib:a")
	b := fake(t, "//lib:b")
	p := NewParams(target.MustParse("//app:aar"), []Rule{a}, []Rule{b})

	flavored, err := p.WithFlavor("aar_android_manifest")
	if err != nil {
		t.Fatalf("WithFlavor() error = %v", err)
	}
	if flavored.Target.String() != "//app:aar#aar_android_manifest" {
		t.Errorf("flavored target = %s", flavored.Target)
	}
	if len(flavored.Declared) != 1 || flavored.Declared[0] != a {
		t.Error("declared deps not preserved")
	}
	if len(flavored.Extra) != 1 || flavored.Extra[0] != b {
		t.Error("extra deps not preserved")
	}

	replaced := p.WithDeps([]Rule{b}, nil)
	if len(replaced.Declared) != 1 || replaced.Declared[0] != b || len(replaced.Extra) != 0 {
		t.Error("WithDeps did not replace both sets")
	}
}

func TestRegistryAdd(t *testing.T) {
	reg := NewRegistry()
	a := fake(t, "//lib:a")

	if err := reg.Add(a); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := reg.Add(fake(t, "//lib:a")); err == nil {
		t.Fatal("Add() duplicate: expected error")
	} else if !errors.Is(err, errors.ErrCodeDuplicateRule) {
		t.Errorf("duplicate error code = %v", errors.GetCode(err))
	}

	got, ok := reg.Get(target.MustParse("//lib:a"))
	if !ok || got != a {
		t.Errorf("Get() = %v, %v", got, ok)
	}
}

func TestRegistryCommitIsAtomic(t *testing.T) {
	reg := NewRegistry()
	existing := fake(t, "//lib:dup")
	if err := reg.Add(existing); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	batch := NewBatch()
	batch.Add(fake(t, "//lib:new1"))
	batch.Add(fake(t, "//lib:dup")) // collides with the registry
	batch.Add(fake(t, "//lib:new2"))

	if err := reg.Commit(batch); err == nil {
		t.Fatal("Commit() with collision: expected error")
	}

	// Nothing from the batch may be visible.
	if reg.Len() != 1 {
		t.Fatalf("registry len = %d after failed commit, want 1", reg.Len())
	}
	if _, ok := reg.Get(target.MustParse("//lib:new1")); ok {
		t.Error("partial registration leaked from failed commit")
	}
}

func TestRegistryCommitPreservesOrder(t *testing.T) {
	reg := NewRegistry()
	batch := NewBatch()
	ids := []string{"//z:z", "//a:a", "//m:m"}
	for _, id := range ids {
		batch.Add(fake(t, id))
	}
	if err := reg.Commit(batch); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	got := reg.Rules()
	for i, id := range ids {
		if got[i].RuleTarget().String() != id {
			t.Errorf("Rules()[%d] = %s, want %s (insertion order)", i, got[i].RuleTarget(), id)
		}
	}
}

func TestBatchDuplicateDetection(t *testing.T) {
	batch := NewBatch()
	batch.Add(fake(t, "//lib:a"))
	batch.Add(fake(t, "//lib:a"))

	if batch.Err() == nil {
		t.Fatal("Err() = nil after duplicate Add")
	}
	if !errors.Is(batch.Err(), errors.ErrCodeDuplicateRule) {
		t.Errorf("Err() code = %v", errors.GetCode(batch.Err()))
	}
	if batch.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (duplicate dropped)", batch.Len())
	}
}

func TestSortByTarget(t *testing.T) {
	a := fake(t, "//a:a")
	b := fake(t, "//b:b")
	c := fake(t, "//c:c")

	// Same logical set in two declaration orders, with a duplicate.
	first := SortByTarget([]Rule{c, a}, []Rule{b, a})
	second := SortByTarget([]Rule{a, b}, []Rule{c})

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("lens = %d, %d, want 3", len(first), len(second))
	}
	for i := range first {
		if first[i].RuleTarget().String() != second[i].RuleTarget().String() {
			t.Errorf("order differs at %d: %s vs %s",
				i, first[i].RuleTarget(), second[i].RuleTarget())
		}
	}
	want := []string{"//a:a", "//b:b", "//c:c"}
	for i, w := range want {
		if first[i].RuleTarget().String() != w {
			t.Errorf("sorted[%d] = %s, want %s", i, first[i].RuleTarget(), w)
		}
	}
}

func TestSortRefs(t *testing.T) {
	refs := []OutputRef{
		PathRef("zebra/res"),
		RuleOutput(target.MustParse("//lib:a")),
		PathRef("zebra/res"), // duplicate
		{},                   // zero ref dropped
		PathRef("alpha/res"),
	}
	got := SortRefs(refs)
	want := []string{"//lib:a", "alpha/res", "zebra/res"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].String() != w {
			t.Errorf("sorted[%d] = %q, want %q", i, got[i].String(), w)
		}
	}
}
