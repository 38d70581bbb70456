package android

import (
	"maps"
	"slices"

	"github.com/aarforge/aarforge/pkg/errors"
	"github.com/aarforge/aarforge/pkg/rules"
	"github.com/aarforge/aarforge/pkg/target"
)

// CopyNativeLibs copies collected native library directories into the jni
// layout the AAR format expects.
type CopyNativeLibs struct {
	params rules.Params
	dirs   []rules.OutputRef
}

// NewCopyNativeLibs creates a native-library copy rule over the given
// directory set.
func NewCopyNativeLibs(params rules.Params, dirs []rules.OutputRef) *CopyNativeLibs {
	return &CopyNativeLibs{params: params, dirs: dirs}
}

// RuleTarget implements rules.Rule.
func (r *CopyNativeLibs) RuleTarget() target.Target { return r.params.Target }

// RuleDeps implements rules.Rule.
func (r *CopyNativeLibs) RuleDeps() []rules.Rule { return r.params.Deps() }

// Output implements rules.Rule; it references the copied jni directory.
func (r *CopyNativeLibs) Output() rules.OutputRef {
	return rules.RuleOutput(r.params.Target)
}

// Dirs returns the source directories.
func (r *CopyNativeLibs) Dirs() []rules.OutputRef { return r.dirs }

// NativeLibsKind tags the outcome of native-library enhancement.
type NativeLibsKind int

const (
	// NativeLibsNone means no native libraries were collected.
	NativeLibsNone NativeLibsKind = iota

	// NativeLibsRootAssigned means all native libraries live in the root
	// module and a copy rule was produced for them.
	NativeLibsRootAssigned

	// NativeLibsNonRoot means at least one native library was assigned
	// outside the root module, which the AAR format cannot express.
	NativeLibsNonRoot
)

// NativeLibsResult is the outcome of running a NativeLibsEnhancer. Rule
// and Dir are set only for NativeLibsRootAssigned; Misplaced lists the
// offending module names only for NativeLibsNonRoot.
type NativeLibsResult struct {
	Kind      NativeLibsKind
	Rule      rules.Rule
	Dir       rules.OutputRef
	Misplaced []string
}

// NativeLibsEnhancer turns the collected per-module native library
// directories into a copy rule, or reports why it cannot.
type NativeLibsEnhancer func(params rules.Params, modules *ModuleGraph, col *Collection) (NativeLibsResult, error)

// DefaultNativeLibsEnhancer produces a CopyNativeLibs rule under the
// aar_native_libs flavor when every collected directory belongs to the
// root module.
func DefaultNativeLibsEnhancer(params rules.Params, modules *ModuleGraph, col *Collection) (NativeLibsResult, error) {
	var misplaced []string
	root := modules.RootModule().Name()
	for _, name := range slices.Sorted(maps.Keys(col.NativeLibDirs)) {
		if name != root {
			misplaced = append(misplaced, name)
		}
	}
	if len(misplaced) > 0 {
		return NativeLibsResult{Kind: NativeLibsNonRoot, Misplaced: misplaced}, nil
	}

	dirs := rules.SortRefs(col.NativeLibDirs[root])
	if len(dirs) == 0 {
		return NativeLibsResult{Kind: NativeLibsNone}, nil
	}

	p, err := params.WithFlavor(FlavorAarNativeLibs)
	if err != nil {
		return NativeLibsResult{}, errors.Wrap(errors.ErrCodeInternal, err,
			"deriving native libs target for %s", params.Target)
	}
	rule := NewCopyNativeLibs(p, dirs)
	return NativeLibsResult{
		Kind: NativeLibsRootAssigned,
		Rule: rule,
		Dir:  rule.Output(),
	}, nil
}
