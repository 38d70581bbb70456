package android

import (
	"context"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/aarforge/aarforge/pkg/errors"
	"github.com/aarforge/aarforge/pkg/observability"
	"github.com/aarforge/aarforge/pkg/rules"
)

// Factories are the constructors the enhancer uses for its generated
// sub-rules. The zero value uses the package defaults; tests substitute
// individual entries to observe or alter construction.
type Factories struct {
	Manifest       func(params rules.Params, skeleton rules.OutputRef) *ManifestRule
	AssembleAssets func(params rules.Params, dirs []rules.OutputRef) *AssembleDirectories
	MergeResources func(params rules.Params, dirs []rules.OutputRef) *MergeResources
	Resource       func(params rules.Params, resDir, assetsDir, manifest rules.OutputRef, rDotJavaPkg string) *ResourceRule
	BuildConfig    func(params rules.Params, javaPackage string, values BuildConfigFields) *BuildConfigRule
}

func (f *Factories) setDefaults() {
	if f.Manifest == nil {
		f.Manifest = NewManifestRule
	}
	if f.AssembleAssets == nil {
		f.AssembleAssets = NewAssembleDirectories
	}
	if f.MergeResources == nil {
		f.MergeResources = NewMergeResources
	}
	if f.Resource == nil {
		f.Resource = NewResourceRule
	}
	if f.BuildConfig == nil {
		f.BuildConfig = NewBuildConfigRule
	}
}

// AarDescription turns one android_aar request into its generated rule
// sub-graph. The zero value is ready to use.
type AarDescription struct {
	// Factories override the generated sub-rule constructors.
	Factories Factories

	// NativeLibs overrides the native-library enhancement step. Nil uses
	// DefaultNativeLibsEnhancer.
	NativeLibs NativeLibsEnhancer

	// Logger receives debug output. Nil discards it.
	Logger *log.Logger
}

func (d *AarDescription) setDefaults() {
	d.Factories.setDefaults()
	if d.NativeLibs == nil {
		d.NativeLibs = DefaultNativeLibsEnhancer
	}
	if d.Logger == nil {
		d.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Enhancement is the outcome of one successful Enhance call: the final
// artifact rule plus the batch of every generated rule, ready to commit to
// a registry.
type Enhancement struct {
	// Aar is the final artifact rule. It is the last rule in Batch.
	Aar *AarRule

	// Batch holds every generated rule in creation order.
	Batch *rules.Batch
}

// Enhance expands the android_aar request described by params and args
// into its generated sub-graph.
//
// It always generates a manifest rule, an asset-assembly rule, a
// resource-merge rule, a composite resource rule, and the final artifact
// rule. Build-config class rules are generated only when args opt in;
// a native-library copy rule only when the dependency closure carries
// native libraries.
//
// Enhance mutates nothing it is given. All generated rules are returned
// in the enhancement's batch; on any error the returned enhancement is
// nil and no rule outlives the call.
func (d *AarDescription) Enhance(ctx context.Context, params rules.Params, args AarArgs) (_ *Enhancement, retErr error) {
	d.setDefaults()

	tgt := params.Target
	start := time.Now()
	observability.Enhancer().OnEnhanceStart(ctx, tgt.String())
	ruleCount := 0
	defer func() {
		observability.Enhancer().OnEnhanceComplete(ctx, tgt.String(), ruleCount, time.Since(start), retErr)
	}()

	// Validation runs before any rule is constructed so a failed call has
	// no partial sub-graph to leak.
	if err := tgt.CheckUnflavored(); err != nil {
		return nil, err
	}
	if args.ManifestSkeleton.IsZero() {
		return nil, errors.New(errors.ErrCodeInvalidBuildFile,
			"rule %s requires manifest_skeleton", tgt)
	}
	if !args.BuildConfigValues.IsEmpty() && !args.IncludeBuildConfig {
		return nil, errors.New(errors.ErrCodeConfigInconsistent,
			"rule %s has build_config_values set but include_build_config is false", tgt)
	}

	batch := rules.NewBatch()
	extraDeps := slices.Clone(params.Extra)

	// Manifest merge over the full user-declared dependency set.
	manifestParams, err := params.WithFlavor(FlavorAarManifest)
	if err != nil {
		return nil, err
	}
	manifest := d.Factories.Manifest(manifestParams.WithDeps(args.Deps, nil), args.ManifestSkeleton)
	batch.Add(manifest)

	// AARs have no dex splitting, so every packageable lands in the single
	// root module.
	modules := NewModuleGraph(tgt, nil)

	collector := NewCollector(tgt, nil, nil, modules)
	collector.AddPackageables(FilterPackageables(params.Deps()))
	col := collector.Build()
	d.Logger.Debug("collected packaging metadata",
		"target", tgt.String(),
		"resource_dirs", len(col.ResourceDirs),
		"asset_dirs", len(col.AssetDirs),
		"classpath", len(col.ClasspathEntries))

	// Assembly sub-rules depend only on the resource-producing slice of the
	// dependency sets.
	resDeclared := rules.SortByTarget(FilterResourceRules(params.Declared))
	resExtra := rules.SortByTarget(FilterResourceRules(params.Extra))

	assetsParams, err := params.WithFlavor(FlavorAarAssembleAssets)
	if err != nil {
		return nil, err
	}
	assembledAssets := d.Factories.AssembleAssets(assetsParams.WithDeps(resDeclared, resExtra), col.AssetDirs)
	batch.Add(assembledAssets)

	mergeParams, err := params.WithFlavor(FlavorAarAssembleResource)
	if err != nil {
		return nil, err
	}
	mergedResources := d.Factories.MergeResources(mergeParams.WithDeps(resDeclared, resExtra), col.ResourceDirs)
	batch.Add(mergedResources)

	// Composite resource rule over the three generated outputs. R classes
	// are the consumer's concern, so no package is assigned.
	resourceParams, err := params.WithFlavor(FlavorAarAndroidResource)
	if err != nil {
		return nil, err
	}
	resourceDeclared := rules.SortByTarget(
		[]rules.Rule{manifest, assembledAssets, mergedResources},
		params.Declared,
	)
	resource := d.Factories.Resource(
		resourceParams.WithDeps(resourceDeclared, nil),
		mergedResources.Output(),
		assembledAssets.Output(),
		manifest.Output(),
		"",
	)
	batch.Add(resource)

	// The final artifact depends on every generated sub-rule so far, plus
	// the first-order library rules from the collection.
	extraDeps = append(extraDeps, manifest, assembledAssets, mergedResources, resource)

	classpath := slices.Clone(col.ClasspathEntries)
	extraDeps = append(extraDeps, col.Libraries...)

	if args.IncludeBuildConfig {
		bcRules, err := d.buildConfigRules(params, args, col)
		if err != nil {
			return nil, err
		}
		for _, bc := range bcRules {
			batch.Add(bc)
			classpath = append(classpath, bc.Output())
			extraDeps = append(extraDeps, bc)
		}
	}

	nativeLibs, err := d.NativeLibs(params, modules, col)
	if err != nil {
		return nil, err
	}
	var nativeLibsDir rules.OutputRef
	switch nativeLibs.Kind {
	case NativeLibsNonRoot:
		return nil, errors.New(errors.ErrCodeNativeLibsPlacement,
			"rule %s has native libraries assigned to non-root modules %v; the AAR format packages native code only in the root module",
			tgt, nativeLibs.Misplaced)
	case NativeLibsRootAssigned:
		batch.Add(nativeLibs.Rule)
		extraDeps = append(extraDeps, nativeLibs.Rule)
		nativeLibsDir = nativeLibs.Dir
	}

	aar := NewAarRule(
		params.WithDeps(params.Declared, rules.SortByTarget(extraDeps)),
		manifest,
		resource,
		mergedResources.Output(),
		assembledAssets.Output(),
		nativeLibsDir,
		col.NativeLibAssetDirValues(),
		rules.SortRefs(classpath),
	)
	batch.Add(aar)

	if err := batch.Err(); err != nil {
		return nil, err
	}
	ruleCount = batch.Len()
	d.Logger.Debug("enhancement complete", "target", tgt.String(), "rules", ruleCount)
	return &Enhancement{Aar: aar, Batch: batch}, nil
}

// buildConfigRules generates one BuildConfig class rule per Java package
// contributed by the dependency closure, each merged with the values
// declared on the aar rule itself. A closure contributing nothing still
// yields one rule carrying just the declared values.
func (d *AarDescription) buildConfigRules(params rules.Params, args AarArgs, col *Collection) ([]*BuildConfigRule, error) {
	packages := slices.Sorted(maps.Keys(col.BuildConfigs))
	if len(packages) == 0 {
		packages = []string{""}
	}

	out := make([]*BuildConfigRule, 0, len(packages))
	for _, pkg := range packages {
		p, err := params.WithFlavor(buildConfigFlavor(pkg))
		if err != nil {
			return nil, err
		}
		values := col.BuildConfigs[pkg].Merge(args.BuildConfigValues)
		out = append(out, d.Factories.BuildConfig(p.WithDeps(nil, nil), pkg, values))
	}
	return out, nil
}
