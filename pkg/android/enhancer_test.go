package android

import (
	"context"
	"reflect"
	"testing"

	"github.com/aarforge/aarforge/pkg/errors"
	"github.com/aarforge/aarforge/pkg/rules"
	"github.com/aarforge/aarforge/pkg/target"
)

func minimalArgs() AarArgs {
	return AarArgs{ManifestSkeleton: rules.PathRef("AndroidManifest.xml")}
}

func enhance(t *testing.T, params rules.Params, args AarArgs) *Enhancement {
	t.Helper()
	var d AarDescription
	enh, err := d.Enhance(context.Background(), params, args)
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	return enh
}

func batchTargets(b *rules.Batch) []string {
	var out []string
	for _, r := range b.Rules() {
		out = append(out, r.RuleTarget().String())
	}
	return out
}

func TestEnhanceMinimal(t *testing.T) {
	tgt := target.MustParse("//app:lib")
	enh := enhance(t, rules.NewParams(tgt, nil, nil), minimalArgs())

	want := []string{
		"//app:lib#aar_android_manifest",
		"//app:lib#aar_assemble_assets",
		"//app:lib#aar_assemble_resource",
		"//app:lib#aar_android_resource",
		"//app:lib",
	}
	if got := batchTargets(enh.Batch); !reflect.DeepEqual(got, want) {
		t.Errorf("batch targets = %v, want %v", got, want)
	}
	if !target.Equal(enh.Aar.RuleTarget(), tgt) {
		t.Errorf("aar target = %s, want %s", enh.Aar.RuleTarget(), tgt)
	}
	if enh.Aar.Output().IsZero() {
		t.Error("aar rule must produce an artifact")
	}
	if !enh.Aar.NativeLibs().IsZero() {
		t.Error("no native libs expected for a bare target")
	}
}

func TestEnhanceAarDependsOnGeneratedSubRules(t *testing.T) {
	enh := enhance(t, rules.NewParams(target.MustParse("//app:lib"), nil, nil), minimalArgs())

	got := map[string]bool{}
	for _, dep := range enh.Aar.RuleDeps() {
		got[dep.RuleTarget().String()] = true
	}
	for _, want := range []string{
		"//app:lib#aar_android_manifest",
		"//app:lib#aar_assemble_assets",
		"//app:lib#aar_assemble_resource",
		"//app:lib#aar_android_resource",
	} {
		if !got[want] {
			t.Errorf("aar rule has no dependency edge to %s", want)
		}
	}
}

func TestEnhanceRejectsFlavoredTarget(t *testing.T) {
	tgt := target.MustParse("//app:lib#debug")
	var d AarDescription
	_, err := d.Enhance(context.Background(), rules.NewParams(tgt, nil, nil), minimalArgs())
	if !errors.Is(err, errors.ErrCodeFlavoredTarget) {
		t.Fatalf("err = %v, want FLAVORED_TARGET", err)
	}
}

func TestEnhanceRequiresManifestSkeleton(t *testing.T) {
	tgt := target.MustParse("//app:lib")
	var d AarDescription
	_, err := d.Enhance(context.Background(), rules.NewParams(tgt, nil, nil), AarArgs{})
	if !errors.Is(err, errors.ErrCodeInvalidBuildFile) {
		t.Fatalf("err = %v, want INVALID_BUILD_FILE", err)
	}
}

func TestEnhanceBuildConfigValuesRequireOptIn(t *testing.T) {
	values, err := ParseBuildConfigFields([]string{"boolean DEBUG = true"})
	if err != nil {
		t.Fatal(err)
	}
	args := minimalArgs()
	args.BuildConfigValues = values

	built := 0
	d := AarDescription{Factories: Factories{
		Manifest: func(params rules.Params, skeleton rules.OutputRef) *ManifestRule {
			built++
			return NewManifestRule(params, skeleton)
		},
	}}

	_, enhErr := d.Enhance(context.Background(), rules.NewParams(target.MustParse("//app:lib"), nil, nil), args)
	if !errors.Is(enhErr, errors.ErrCodeConfigInconsistent) {
		t.Fatalf("err = %v, want CONFIG_INCONSISTENT", enhErr)
	}
	if built != 0 {
		t.Errorf("constructed %d sub-rules before failing, want 0", built)
	}
}

func TestEnhanceBuildConfigOptIn(t *testing.T) {
	values, err := ParseBuildConfigFields([]string{"boolean DEBUG = true"})
	if err != nil {
		t.Fatal(err)
	}
	args := minimalArgs()
	args.BuildConfigValues = values
	args.IncludeBuildConfig = true

	enh := enhance(t, rules.NewParams(target.MustParse("//app:lib"), nil, nil), args)

	var bc *BuildConfigRule
	for _, r := range enh.Batch.Rules() {
		if cand, ok := r.(*BuildConfigRule); ok {
			if bc != nil {
				t.Fatal("expected exactly one build config rule")
			}
			bc = cand
		}
	}
	if bc == nil {
		t.Fatal("missing build config rule")
	}
	if got := bc.RuleTarget().String(); got != "//app:lib#build_config" {
		t.Errorf("build config target = %s", got)
	}
	if got := bc.Values().String(); got != "boolean DEBUG = true" {
		t.Errorf("build config values = %q", got)
	}

	inClasspath := false
	for _, ref := range enh.Aar.Classpath() {
		if rules.CompareRefs(ref, bc.Output()) == 0 {
			inClasspath = true
		}
	}
	if !inClasspath {
		t.Error("build config output missing from classpath")
	}

	inDeps := false
	for _, dep := range enh.Aar.RuleDeps() {
		if dep == rules.Rule(bc) {
			inDeps = true
		}
	}
	if !inDeps {
		t.Error("build config rule missing from aar deps")
	}
}

func TestEnhanceBuildConfigPerContributedPackage(t *testing.T) {
	contributed, err := ParseBuildConfigFields([]string{"String NAME = \"lib\"", "boolean DEBUG = false"})
	if err != nil {
		t.Fatal(err)
	}
	declared := NewBuildConfigValuesRule(
		rules.NewParams(target.MustParse("//cfg:lib"), nil, nil), "com.example.lib", contributed)

	override, err := ParseBuildConfigFields([]string{"boolean DEBUG = true"})
	if err != nil {
		t.Fatal(err)
	}
	args := minimalArgs()
	args.BuildConfigValues = override
	args.IncludeBuildConfig = true

	enh := enhance(t, rules.NewParams(target.MustParse("//app:lib"), []rules.Rule{declared}, nil), args)

	var bcs []*BuildConfigRule
	for _, r := range enh.Batch.Rules() {
		if bc, ok := r.(*BuildConfigRule); ok {
			bcs = append(bcs, bc)
		}
	}
	if len(bcs) != 1 {
		t.Fatalf("build config rules = %d, want 1", len(bcs))
	}
	bc := bcs[0]
	if got := bc.RuleTarget().String(); got != "//app:lib#build_config_com_example_lib" {
		t.Errorf("build config target = %s", got)
	}
	// The aar rule's values win name collisions against contributed ones.
	if got := bc.Values().String(); got != "String NAME = \"lib\"; boolean DEBUG = true" {
		t.Errorf("merged values = %q", got)
	}
}

func TestEnhanceNativeLibsInRootModule(t *testing.T) {
	ndk := NewNdkLibraryRule(
		rules.NewParams(target.MustParse("//native:jni"), nil, nil),
		rules.PathRef("native/libs"), false)

	enh := enhance(t, rules.NewParams(target.MustParse("//app:lib"), []rules.Rule{ndk}, nil), minimalArgs())

	var copyRule *CopyNativeLibs
	for _, r := range enh.Batch.Rules() {
		if cand, ok := r.(*CopyNativeLibs); ok {
			copyRule = cand
		}
	}
	if copyRule == nil {
		t.Fatal("missing native libs copy rule")
	}
	if got := copyRule.RuleTarget().String(); got != "//app:lib#aar_native_libs" {
		t.Errorf("copy rule target = %s", got)
	}
	if rules.CompareRefs(enh.Aar.NativeLibs(), copyRule.Output()) != 0 {
		t.Error("aar native libs ref does not point at the copy rule output")
	}
}

func TestEnhanceNativeLibsAsAssets(t *testing.T) {
	ndk := NewNdkLibraryRule(
		rules.NewParams(target.MustParse("//native:jni"), nil, nil),
		rules.PathRef("native/libs"), true)

	enh := enhance(t, rules.NewParams(target.MustParse("//app:lib"), []rules.Rule{ndk}, nil), minimalArgs())

	if !enh.Aar.NativeLibs().IsZero() {
		t.Error("asset-packaged libs must not produce a jni copy rule")
	}
	if got := len(enh.Aar.NativeLibAssetDirs()); got != 1 {
		t.Errorf("NativeLibAssetDirs = %d, want 1", got)
	}
}

func TestEnhanceNativeLibsOutsideRootModuleFails(t *testing.T) {
	d := AarDescription{
		NativeLibs: func(params rules.Params, modules *ModuleGraph, col *Collection) (NativeLibsResult, error) {
			return NativeLibsResult{Kind: NativeLibsNonRoot, Misplaced: []string{"feature"}}, nil
		},
	}
	_, err := d.Enhance(context.Background(),
		rules.NewParams(target.MustParse("//app:lib"), nil, nil), minimalArgs())
	if !errors.Is(err, errors.ErrCodeNativeLibsPlacement) {
		t.Fatalf("err = %v, want NATIVE_LIBS_PLACEMENT", err)
	}
}

func TestEnhanceDeterministicAcrossDeclarationOrder(t *testing.T) {
	build := func(order ...rules.Rule) *Enhancement {
		return enhance(t, rules.NewParams(target.MustParse("//app:lib"), order, nil), minimalArgs())
	}
	a := newLib(t, "//lib:a")
	b := newLib(t, "//lib:b")

	first := build(a, b)
	second := build(b, a)

	if !reflect.DeepEqual(first.Aar.Classpath(), second.Aar.Classpath()) {
		t.Errorf("classpath depends on declaration order:\n%v\n%v",
			first.Aar.Classpath(), second.Aar.Classpath())
	}
	// Declared deps keep their given order; the injected extra set after
	// them must not depend on declaration order.
	firstDeps := rules.Targets(first.Aar.RuleDeps())
	secondDeps := rules.Targets(second.Aar.RuleDeps())
	if len(firstDeps) != len(secondDeps) {
		t.Fatalf("dep counts differ: %d vs %d", len(firstDeps), len(secondDeps))
	}
	if !reflect.DeepEqual(firstDeps[2:], secondDeps[2:]) {
		t.Errorf("extra deps depend on declaration order:\n%v\n%v", firstDeps[2:], secondDeps[2:])
	}
}

func TestEnhanceResourceRulesScopeSubRuleDeps(t *testing.T) {
	res := newRes(t, "//res:main", "res/main", "assets/main")
	lib := newLib(t, "//lib:core")

	enh := enhance(t, rules.NewParams(target.MustParse("//app:lib"), []rules.Rule{lib, res}, nil), minimalArgs())

	var assemble *AssembleDirectories
	for _, r := range enh.Batch.Rules() {
		if cand, ok := r.(*AssembleDirectories); ok {
			assemble = cand
		}
	}
	if assemble == nil {
		t.Fatal("missing assemble rule")
	}
	for _, dep := range assemble.RuleDeps() {
		if _, ok := dep.(ResourceProducer); !ok {
			t.Errorf("assemble rule depends on non-resource rule %s", dep.RuleTarget())
		}
	}
	if got := len(assemble.RuleDeps()); got != 1 {
		t.Errorf("assemble deps = %d, want 1", got)
	}
	if got := len(assemble.Dirs()); got != 1 {
		t.Errorf("assemble dirs = %d, want 1", got)
	}
}

func TestEnhanceCompositeResourceRule(t *testing.T) {
	enh := enhance(t, rules.NewParams(target.MustParse("//app:lib"), nil, nil), minimalArgs())

	res := enh.Aar.Resource()
	if res == nil {
		t.Fatal("missing composite resource rule")
	}
	if got := res.RuleTarget().String(); got != "//app:lib#aar_android_resource" {
		t.Errorf("resource target = %s", got)
	}
	if res.RDotJavaPackage() != "" {
		t.Errorf("composite resource rule must not set an R package, got %q", res.RDotJavaPackage())
	}
	if rules.CompareRefs(res.Manifest(), enh.Aar.Manifest().Output()) != 0 {
		t.Error("composite resource manifest must reference the generated manifest rule")
	}
	// The composite rule depends on all three generated sub-rules.
	if got := len(res.RuleDeps()); got != 3 {
		t.Errorf("resource deps = %d, want 3", got)
	}
}

func TestEnhanceCommitsCleanly(t *testing.T) {
	enh := enhance(t, rules.NewParams(target.MustParse("//app:lib"), nil, nil), minimalArgs())

	reg := rules.NewRegistry()
	if err := reg.Commit(enh.Batch); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if reg.Len() != enh.Batch.Len() {
		t.Errorf("registry holds %d rules, batch has %d", reg.Len(), enh.Batch.Len())
	}
	if _, ok := reg.Get(target.MustParse("//app:lib")); !ok {
		t.Error("artifact rule missing from registry")
	}
}
