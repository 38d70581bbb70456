// Package buildfile loads TOML build files into build-rule graphs. A build
// file declares source rules (android_resource, android_library,
// prebuilt_jar, ndk_library, android_build_config) plus android_aar
// packaging requests over them.
//
// Loading is split in two phases. Load parses and validates the file;
// Instantiate creates the declared source rules in dependency order so
// every rule is constructed after the rules it references. android_aar
// declarations are not instantiated directly - they resolve into
// [AarRequest] values the caller hands to the enhancer.
package buildfile

import (
	"context"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/aarforge/aarforge/pkg/android"
	"github.com/aarforge/aarforge/pkg/depgraph"
	"github.com/aarforge/aarforge/pkg/errors"
	"github.com/aarforge/aarforge/pkg/observability"
	"github.com/aarforge/aarforge/pkg/rules"
	"github.com/aarforge/aarforge/pkg/target"
)

// Declaration kinds, matching the TOML array-of-tables names.
const (
	KindResource    = "android_resource"
	KindLibrary     = "android_library"
	KindPrebuiltJar = "prebuilt_jar"
	KindNdkLibrary  = "ndk_library"
	KindBuildConfig = "android_build_config"
	KindAar         = "android_aar"
)

type fileDoc struct {
	Resources    []resourceDecl    `toml:"android_resource"`
	Libraries    []libraryDecl     `toml:"android_library"`
	PrebuiltJars []prebuiltJarDecl `toml:"prebuilt_jar"`
	NdkLibraries []ndkLibraryDecl  `toml:"ndk_library"`
	BuildConfigs []buildConfigDecl `toml:"android_build_config"`
	Aars         []aarDecl         `toml:"android_aar"`
}

type resourceDecl struct {
	Name     string   `toml:"name"`
	Res      string   `toml:"res"`
	Assets   string   `toml:"assets"`
	Manifest string   `toml:"manifest"`
	Package  string   `toml:"package"`
	Deps     []string `toml:"deps"`
}

type libraryDecl struct {
	Name string   `toml:"name"`
	Deps []string `toml:"deps"`
}

type prebuiltJarDecl struct {
	Name      string   `toml:"name"`
	BinaryJar string   `toml:"binary_jar"`
	Deps      []string `toml:"deps"`
}

type ndkLibraryDecl struct {
	Name    string   `toml:"name"`
	LibDir  string   `toml:"lib_dir"`
	AsAsset bool     `toml:"as_asset"`
	Deps    []string `toml:"deps"`
}

type buildConfigDecl struct {
	Name    string   `toml:"name"`
	Package string   `toml:"package"`
	Values  []string `toml:"values"`
	Deps    []string `toml:"deps"`
}

type aarDecl struct {
	Name               string   `toml:"name"`
	ManifestSkeleton   string   `toml:"manifest_skeleton"`
	BuildConfigValues  []string `toml:"build_config_values"`
	IncludeBuildConfig bool     `toml:"include_build_config"`
	Deps               []string `toml:"deps"`
}

// entry is one validated source-rule declaration.
type entry struct {
	kind   string
	tgt    target.Target
	deps   []target.Target
	create func(params rules.Params) (rules.Rule, error)
}

// AarRequest is one android_aar declaration resolved against the
// instantiated source rules, ready for enhancement.
type AarRequest struct {
	Params rules.Params
	Args   android.AarArgs
}

// File is a parsed and validated build file.
type File struct {
	path    string
	entries map[string]*entry
	order   []string // canonical targets in declaration order
	aars    []aarDecl
}

// Load reads and parses the build file at path.
func Load(ctx context.Context, path string) (_ *File, retErr error) {
	start := time.Now()
	observability.Enhancer().OnLoadStart(ctx, path)
	declCount := 0
	defer func() {
		observability.Enhancer().OnLoadComplete(ctx, path, declCount, time.Since(start), retErr)
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBuildFile, err, "read build file %s", path)
	}
	f, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	declCount = len(f.order) + len(f.aars)
	return f, nil
}

// Parse parses build-file content. The name is used in error messages only.
func Parse(data []byte, name string) (*File, error) {
	var doc fileDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidBuildFile, err, "parse build file %s", name)
	}

	f := &File{path: name, entries: make(map[string]*entry)}

	for _, d := range doc.Resources {
		if err := f.add(KindResource, d.Name, d.Deps, func(params rules.Params) (rules.Rule, error) {
			return android.NewResourceRule(params, pathRef(d.Res), pathRef(d.Assets), pathRef(d.Manifest), d.Package), nil
		}); err != nil {
			return nil, err
		}
	}
	for _, d := range doc.Libraries {
		if err := f.add(KindLibrary, d.Name, d.Deps, func(params rules.Params) (rules.Rule, error) {
			return android.NewLibraryRule(params), nil
		}); err != nil {
			return nil, err
		}
	}
	for _, d := range doc.PrebuiltJars {
		if d.BinaryJar == "" {
			return nil, errors.New(errors.ErrCodeInvalidBuildFile,
				"prebuilt_jar %s requires binary_jar", d.Name)
		}
		if err := f.add(KindPrebuiltJar, d.Name, d.Deps, func(params rules.Params) (rules.Rule, error) {
			return android.NewPrebuiltJarRule(params, pathRef(d.BinaryJar)), nil
		}); err != nil {
			return nil, err
		}
	}
	for _, d := range doc.NdkLibraries {
		if d.LibDir == "" {
			return nil, errors.New(errors.ErrCodeInvalidBuildFile,
				"ndk_library %s requires lib_dir", d.Name)
		}
		if err := f.add(KindNdkLibrary, d.Name, d.Deps, func(params rules.Params) (rules.Rule, error) {
			return android.NewNdkLibraryRule(params, pathRef(d.LibDir), d.AsAsset), nil
		}); err != nil {
			return nil, err
		}
	}
	for _, d := range doc.BuildConfigs {
		values, err := android.ParseBuildConfigFields(d.Values)
		if err != nil {
			return nil, err
		}
		if err := f.add(KindBuildConfig, d.Name, d.Deps, func(params rules.Params) (rules.Rule, error) {
			return android.NewBuildConfigValuesRule(params, d.Package, values), nil
		}); err != nil {
			return nil, err
		}
	}

	seenAars := make(map[string]bool, len(doc.Aars))
	for _, d := range doc.Aars {
		tgt, err := parseDeclTarget(KindAar, d.Name)
		if err != nil {
			return nil, err
		}
		id := tgt.String()
		if _, dup := f.entries[id]; dup || seenAars[id] {
			return nil, errors.New(errors.ErrCodeDuplicateRule,
				"build file declares %s more than once", tgt)
		}
		seenAars[id] = true
		f.aars = append(f.aars, d)
	}

	if err := f.checkDepRefs(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the path the file was loaded from.
func (f *File) Path() string { return f.path }

// Targets returns the declared source-rule targets in declaration order.
func (f *File) Targets() []target.Target {
	out := make([]target.Target, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.entries[id].tgt)
	}
	return out
}

// AarTargets returns the declared android_aar targets in declaration order.
func (f *File) AarTargets() ([]target.Target, error) {
	out := make([]target.Target, 0, len(f.aars))
	for _, d := range f.aars {
		tgt, err := parseDeclTarget(KindAar, d.Name)
		if err != nil {
			return nil, err
		}
		out = append(out, tgt)
	}
	return out, nil
}

func (f *File) add(kind, name string, deps []string, create func(rules.Params) (rules.Rule, error)) error {
	tgt, err := parseDeclTarget(kind, name)
	if err != nil {
		return err
	}
	id := tgt.String()
	if _, dup := f.entries[id]; dup {
		return errors.New(errors.ErrCodeDuplicateRule,
			"build file declares %s more than once", tgt)
	}
	depTargets := make([]target.Target, 0, len(deps))
	for _, dep := range deps {
		depTgt, err := target.Parse(dep)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidBuildFile, err,
				"%s %s has an invalid dep", kind, tgt)
		}
		depTargets = append(depTargets, depTgt)
	}
	f.entries[id] = &entry{kind: kind, tgt: tgt, deps: depTargets, create: create}
	f.order = append(f.order, id)
	return nil
}

// checkDepRefs verifies every dep of every declaration names a declared
// source rule. android_aar targets are not valid deps; they are packaging
// requests, not rules other declarations can build against.
func (f *File) checkDepRefs() error {
	check := func(owner target.Target, deps []target.Target) error {
		for _, dep := range deps {
			if _, ok := f.entries[dep.String()]; !ok {
				return errors.New(errors.ErrCodeUnknownTarget,
					"%s depends on undeclared target %s", owner, dep)
			}
		}
		return nil
	}
	for _, id := range f.order {
		e := f.entries[id]
		if err := check(e.tgt, e.deps); err != nil {
			return err
		}
	}
	for _, d := range f.aars {
		tgt, err := parseDeclTarget(KindAar, d.Name)
		if err != nil {
			return err
		}
		depTargets, err := parseDeps(KindAar, tgt, d.Deps)
		if err != nil {
			return err
		}
		if err := check(tgt, depTargets); err != nil {
			return err
		}
	}
	return nil
}

// Instantiate creates every declared source rule in the registry, in an
// order where dependencies are created first. Returns an error without
// registering anything when the declarations form a dependency cycle.
func (f *File) Instantiate(reg *rules.Registry) error {
	g := depgraph.New()
	for _, id := range f.order {
		if err := g.AddNode(depgraph.Node{ID: id}); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "index %s", id)
		}
	}
	for _, id := range f.order {
		for _, dep := range f.entries[id].deps {
			if err := g.AddEdge(id, dep.String()); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "index deps of %s", id)
			}
		}
	}

	order, err := g.TopoSort()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidBuildFile, err,
			"build file %s has a dependency cycle", f.path)
	}

	batch := rules.NewBatch()
	created := make(map[string]rules.Rule, len(order))
	for _, id := range order {
		e := f.entries[id]
		deps := make([]rules.Rule, 0, len(e.deps))
		for _, dep := range e.deps {
			deps = append(deps, created[dep.String()])
		}
		rule, err := e.create(rules.NewParams(e.tgt, deps, nil))
		if err != nil {
			return err
		}
		created[id] = rule
		batch.Add(rule)
	}
	if err := batch.Err(); err != nil {
		return err
	}
	return reg.Commit(batch)
}

// AarRequests resolves every android_aar declaration against the rules the
// registry holds. Instantiate must have run against the same registry
// first.
func (f *File) AarRequests(reg *rules.Registry) ([]AarRequest, error) {
	out := make([]AarRequest, 0, len(f.aars))
	for _, d := range f.aars {
		tgt, err := parseDeclTarget(KindAar, d.Name)
		if err != nil {
			return nil, err
		}
		depTargets, err := parseDeps(KindAar, tgt, d.Deps)
		if err != nil {
			return nil, err
		}
		deps := make([]rules.Rule, 0, len(depTargets))
		for _, depTgt := range depTargets {
			rule, ok := reg.Get(depTgt)
			if !ok {
				return nil, errors.New(errors.ErrCodeUnknownTarget,
					"%s depends on uninstantiated target %s", tgt, depTgt)
			}
			deps = append(deps, rule)
		}
		values, err := android.ParseBuildConfigFields(d.BuildConfigValues)
		if err != nil {
			return nil, err
		}
		out = append(out, AarRequest{
			Params: rules.NewParams(tgt, deps, nil),
			Args: android.AarArgs{
				LibraryArgs:        android.LibraryArgs{Deps: deps},
				ManifestSkeleton:   pathRef(d.ManifestSkeleton),
				BuildConfigValues:  values,
				IncludeBuildConfig: d.IncludeBuildConfig,
			},
		})
	}
	return out, nil
}

func parseDeclTarget(kind, name string) (target.Target, error) {
	tgt, err := target.Parse(name)
	if err != nil {
		return target.Target{}, errors.Wrap(errors.ErrCodeInvalidBuildFile, err,
			"%s has an invalid name %q", kind, name)
	}
	if tgt.IsFlavored() {
		return target.Target{}, errors.New(errors.ErrCodeInvalidBuildFile,
			"%s %s declares a flavored name; flavors are reserved for generated rules", kind, tgt)
	}
	return tgt, nil
}

func parseDeps(kind string, owner target.Target, deps []string) ([]target.Target, error) {
	out := make([]target.Target, 0, len(deps))
	for _, dep := range deps {
		tgt, err := target.Parse(dep)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidBuildFile, err,
				"%s %s has an invalid dep", kind, owner)
		}
		out = append(out, tgt)
	}
	return out, nil
}

func pathRef(p string) rules.OutputRef {
	if p == "" {
		return rules.OutputRef{}
	}
	return rules.PathRef(p)
}
