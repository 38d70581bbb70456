package android

import (
	"github.com/aarforge/aarforge/pkg/rules"
	"github.com/aarforge/aarforge/pkg/target"
)

// Flavors naming the sub-rules one AAR enhancement generates. Each flavor
// is appended to the unflavored input target exactly once per enhancement
// call, which keeps generated identities unique.
const (
	FlavorAarManifest         target.Flavor = "aar_android_manifest"
	FlavorAarAssembleAssets   target.Flavor = "aar_assemble_assets"
	FlavorAarAssembleResource target.Flavor = "aar_assemble_resource"
	FlavorAarAndroidResource  target.Flavor = "aar_android_resource"
	FlavorBuildConfig         target.Flavor = "build_config"
	FlavorAarNativeLibs       target.Flavor = "aar_native_libs"
)

// ManifestRule merges a user-supplied manifest skeleton with the manifests
// of its dependencies into one AndroidManifest.xml. The merge itself runs
// in a later build step; this rule only describes it.
type ManifestRule struct {
	params   rules.Params
	skeleton rules.OutputRef
}

// NewManifestRule creates a manifest rule from a skeleton reference.
func NewManifestRule(params rules.Params, skeleton rules.OutputRef) *ManifestRule {
	return &ManifestRule{params: params, skeleton: skeleton}
}

// RuleTarget implements rules.Rule.
func (r *ManifestRule) RuleTarget() target.Target { return r.params.Target }

// RuleDeps implements rules.Rule.
func (r *ManifestRule) RuleDeps() []rules.Rule { return r.params.Deps() }

// Output implements rules.Rule; it references the merged manifest.
func (r *ManifestRule) Output() rules.OutputRef {
	return rules.RuleOutput(r.params.Target)
}

// Skeleton returns the user-supplied manifest skeleton reference.
func (r *ManifestRule) Skeleton() rules.OutputRef { return r.skeleton }

// AssembleDirectories copies an ordered set of directories into one output
// directory. Used for asset assembly.
type AssembleDirectories struct {
	params rules.Params
	dirs   []rules.OutputRef
}

// NewAssembleDirectories creates a directory-assembly rule over the given
// ordered directory set.
func NewAssembleDirectories(params rules.Params, dirs []rules.OutputRef) *AssembleDirectories {
	return &AssembleDirectories{params: params, dirs: dirs}
}

// RuleTarget implements rules.Rule.
func (r *AssembleDirectories) RuleTarget() target.Target { return r.params.Target }

// RuleDeps implements rules.Rule.
func (r *AssembleDirectories) RuleDeps() []rules.Rule { return r.params.Deps() }

// Output implements rules.Rule; it references the assembled directory.
func (r *AssembleDirectories) Output() rules.OutputRef {
	return rules.RuleOutput(r.params.Target)
}

// Dirs returns the input directories in aggregation order.
func (r *AssembleDirectories) Dirs() []rules.OutputRef { return r.dirs }

// MergeResources merges an ordered set of Android resource directories into
// one output directory. Conflict resolution between directories supplying
// the same logical resource is the merge step's contract, not decided here;
// this rule preserves the aggregation order the merger receives.
type MergeResources struct {
	params rules.Params
	dirs   []rules.OutputRef
}

// NewMergeResources creates a resource-merge rule over the given ordered
// directory set.
func NewMergeResources(params rules.Params, dirs []rules.OutputRef) *MergeResources {
	return &MergeResources{params: params, dirs: dirs}
}

// RuleTarget implements rules.Rule.
func (r *MergeResources) RuleTarget() target.Target { return r.params.Target }

// RuleDeps implements rules.Rule.
func (r *MergeResources) RuleDeps() []rules.Rule { return r.params.Deps() }

// Output implements rules.Rule; it references the merged resource
// directory.
func (r *MergeResources) Output() rules.OutputRef {
	return rules.RuleOutput(r.params.Target)
}

// Dirs returns the input directories in aggregation order.
func (r *MergeResources) Dirs() []rules.OutputRef { return r.dirs }
