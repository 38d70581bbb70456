package android

import (
	"github.com/aarforge/aarforge/pkg/rules"
	"github.com/aarforge/aarforge/pkg/target"
)

// LibraryArgs are the arguments shared by library-shaped rules.
type LibraryArgs struct {
	// Deps are the rules the library compiles and packages against.
	Deps []rules.Rule
}

// AarArgs are the build-file arguments of an android_aar rule.
type AarArgs struct {
	LibraryArgs

	// ManifestSkeleton is the user-supplied AndroidManifest.xml the merged
	// manifest is derived from. Required.
	ManifestSkeleton rules.OutputRef

	// BuildConfigValues are constant declarations for the generated
	// BuildConfig class, in "type NAME = value" form.
	BuildConfigValues BuildConfigFields

	// IncludeBuildConfig opts the generated BuildConfig class into the
	// packaged artifact. Declaring BuildConfigValues without setting it is
	// a configuration error.
	IncludeBuildConfig bool
}

// AarRule is the final artifact rule of one AAR enhancement. It zips the
// outputs of the generated sub-graph into an .aar archive.
type AarRule struct {
	params             rules.Params
	manifest           *ManifestRule
	resource           *ResourceRule
	mergedResources    rules.OutputRef
	assembledAssets    rules.OutputRef
	nativeLibs         rules.OutputRef
	nativeLibAssetDirs []rules.OutputRef
	classpath          []rules.OutputRef
}

// NewAarRule assembles the artifact rule from the generated sub-rules and
// the collected packaging inputs. nativeLibs may be a zero ref when the
// closure carries no native libraries.
func NewAarRule(
	params rules.Params,
	manifest *ManifestRule,
	resource *ResourceRule,
	mergedResources rules.OutputRef,
	assembledAssets rules.OutputRef,
	nativeLibs rules.OutputRef,
	nativeLibAssetDirs []rules.OutputRef,
	classpath []rules.OutputRef,
) *AarRule {
	return &AarRule{
		params:             params,
		manifest:           manifest,
		resource:           resource,
		mergedResources:    mergedResources,
		assembledAssets:    assembledAssets,
		nativeLibs:         nativeLibs,
		nativeLibAssetDirs: nativeLibAssetDirs,
		classpath:          classpath,
	}
}

// RuleTarget implements rules.Rule; it is the original unflavored target.
func (r *AarRule) RuleTarget() target.Target { return r.params.Target }

// RuleDeps implements rules.Rule.
func (r *AarRule) RuleDeps() []rules.Rule { return r.params.Deps() }

// Output implements rules.Rule; it references the .aar archive.
func (r *AarRule) Output() rules.OutputRef {
	return rules.RuleOutput(r.params.Target)
}

// Manifest returns the generated manifest rule.
func (r *AarRule) Manifest() *ManifestRule { return r.manifest }

// Resource returns the generated composite resource rule.
func (r *AarRule) Resource() *ResourceRule { return r.resource }

// MergedResources returns the merged resource directory.
func (r *AarRule) MergedResources() rules.OutputRef { return r.mergedResources }

// AssembledAssets returns the assembled assets directory.
func (r *AarRule) AssembledAssets() rules.OutputRef { return r.assembledAssets }

// NativeLibs returns the copied jni directory, or a zero ref when the
// closure carries no native libraries.
func (r *AarRule) NativeLibs() rules.OutputRef { return r.nativeLibs }

// NativeLibAssetDirs returns native library directories packaged under
// assets/lib.
func (r *AarRule) NativeLibAssetDirs() []rules.OutputRef { return r.nativeLibAssetDirs }

// Classpath returns the jar outputs packaged into the archive, sorted.
func (r *AarRule) Classpath() []rules.OutputRef { return r.classpath }
