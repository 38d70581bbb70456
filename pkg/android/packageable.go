// Package android implements the AAR build-rule graph enhancer: it expands
// one logical "package this Android library as an .aar" request into a
// deterministic sub-graph of intermediate rules (manifest generation, asset
// assembly, resource merge, composite resource, optional build-config and
// native-library rules) and wires them into a final artifact rule.
//
// The enhancer performs no I/O. Heavy work - manifest merging, resource
// merging, archive writing - belongs to the build steps the generated rules
// describe, scheduled later by the surrounding build engine.
package android

import (
	"github.com/aarforge/aarforge/pkg/rules"
	"github.com/aarforge/aarforge/pkg/target"
)

// Packageable is implemented by rules that contribute packaging metadata
// (resources, assets, classpath entries, native libraries, build-config
// values) to an enclosing Android artifact.
type Packageable interface {
	rules.Rule

	// RequiredPackageables returns the packageables this rule pulls into
	// the artifact with it.
	RequiredPackageables() []Packageable

	// Contribute records this rule's packaging metadata on the collector.
	Contribute(c *Collector)
}

// FilterPackageables returns the rules of the set that contribute packaging
// metadata, preserving order.
func FilterPackageables(set []rules.Rule) []Packageable {
	var out []Packageable
	for _, r := range set {
		if p, ok := r.(Packageable); ok {
			out = append(out, p)
		}
	}
	return out
}

// Collection is the aggregated transitive packaging metadata for one
// target's dependency closure. All slices are ordered and duplicate-free;
// building the same graph twice yields an identical collection.
type Collection struct {
	// ResourceDirs are Android resource directories, in first-seen order.
	ResourceDirs []rules.OutputRef

	// AssetDirs are asset directories, in first-seen order.
	AssetDirs []rules.OutputRef

	// ClasspathEntries are jar/classes outputs to include in the artifact.
	ClasspathEntries []rules.OutputRef

	// NativeLibDirs maps module name to native-library directories.
	NativeLibDirs map[string][]rules.OutputRef

	// NativeLibAssetDirs maps module name to native-library directories
	// that are packaged as assets.
	NativeLibAssetDirs map[string][]rules.OutputRef

	// BuildConfigs maps Java package names to contributed build-config
	// field sets.
	BuildConfigs map[string]BuildConfigFields

	// Libraries are the first-order library rules whose outputs are merged
	// into the artifact, in first-seen order.
	Libraries []rules.Rule
}

// NativeLibAssetDirValues returns all native-lib-asset directories with the
// module key dropped, sorted. This is the shape the artifact rule consumes.
func (c *Collection) NativeLibAssetDirValues() []rules.OutputRef {
	var all []rules.OutputRef
	for _, dirs := range c.NativeLibAssetDirs {
		all = append(all, dirs...)
	}
	return rules.SortRefs(all)
}

// Collector walks a dependency closure once and accumulates a Collection.
// Each transitively reached packageable is visited exactly once regardless
// of how many paths lead to it, and every container keeps first-seen order
// without duplicates, so aggregation over an identical graph is
// reproducible.
//
// A collector is single-use: populate it with AddPackageables, then call
// Build.
type Collector struct {
	owner      target.Target
	modules    *ModuleGraph
	excludeDex map[string]struct{}
	excludeRes map[string]struct{}

	visited map[string]struct{}
	seen    map[string]struct{} // container-qualified dedupe keys
	col     Collection
}

// NewCollector creates a collector for the given owner target.
// excludeDex suppresses classpath contributions and excludeRes suppresses
// resource-directory contributions from the named targets; both are empty
// in the AAR flow.
func NewCollector(owner target.Target, excludeDex, excludeRes []target.Target, modules *ModuleGraph) *Collector {
	c := &Collector{
		owner:      owner,
		modules:    modules,
		excludeDex: make(map[string]struct{}, len(excludeDex)),
		excludeRes: make(map[string]struct{}, len(excludeRes)),
		visited:    make(map[string]struct{}),
		seen:       make(map[string]struct{}),
		col: Collection{
			NativeLibDirs:      make(map[string][]rules.OutputRef),
			NativeLibAssetDirs: make(map[string][]rules.OutputRef),
			BuildConfigs:       make(map[string]BuildConfigFields),
		},
	}
	for _, t := range excludeDex {
		c.excludeDex[t.String()] = struct{}{}
	}
	for _, t := range excludeRes {
		c.excludeRes[t.String()] = struct{}{}
	}
	return c
}

// AddPackageables walks the given packageables and everything they require,
// depth-first in declaration order, visiting each rule exactly once.
func (c *Collector) AddPackageables(ps []Packageable) {
	for _, p := range ps {
		c.addPackageable(p)
	}
}

func (c *Collector) addPackageable(p Packageable) {
	id := p.RuleTarget().String()
	if _, done := c.visited[id]; done {
		return
	}
	c.visited[id] = struct{}{}

	for _, req := range p.RequiredPackageables() {
		c.addPackageable(req)
	}
	p.Contribute(c)
}

// mark records a container-qualified key and reports whether it was new.
func (c *Collector) mark(container string, key string) bool {
	k := container + "\x00" + key
	if _, dup := c.seen[k]; dup {
		return false
	}
	c.seen[k] = struct{}{}
	return true
}

// AddResourceDir records a resource directory contributed by owner.
// Contributions from resource-excluded targets are dropped.
func (c *Collector) AddResourceDir(owner target.Target, dir rules.OutputRef) {
	if dir.IsZero() {
		return
	}
	if _, excluded := c.excludeRes[owner.String()]; excluded {
		return
	}
	if c.mark("res", dir.String()) {
		c.col.ResourceDirs = append(c.col.ResourceDirs, dir)
	}
}

// AddAssetDir records an asset directory contributed by owner.
func (c *Collector) AddAssetDir(owner target.Target, dir rules.OutputRef) {
	if dir.IsZero() {
		return
	}
	if c.mark("assets", dir.String()) {
		c.col.AssetDirs = append(c.col.AssetDirs, dir)
	}
}

// AddClasspathEntry records a classpath entry contributed by owner.
// Contributions from dex-excluded targets are dropped.
func (c *Collector) AddClasspathEntry(owner target.Target, entry rules.OutputRef) {
	if entry.IsZero() {
		return
	}
	if _, excluded := c.excludeDex[owner.String()]; excluded {
		return
	}
	if c.mark("classpath", entry.String()) {
		c.col.ClasspathEntries = append(c.col.ClasspathEntries, entry)
	}
}

// AddNativeLibDir records a native-library directory, keyed by the module
// that owns the contributing target.
func (c *Collector) AddNativeLibDir(owner target.Target, dir rules.OutputRef) {
	if dir.IsZero() {
		return
	}
	module := c.modules.ModuleFor(owner).Name()
	if c.mark("nativelibs:"+module, dir.String()) {
		c.col.NativeLibDirs[module] = append(c.col.NativeLibDirs[module], dir)
	}
}

// AddNativeLibAssetDir records a native-library directory packaged as
// assets, keyed by the owning module.
func (c *Collector) AddNativeLibAssetDir(owner target.Target, dir rules.OutputRef) {
	if dir.IsZero() {
		return
	}
	module := c.modules.ModuleFor(owner).Name()
	if c.mark("nativelibassets:"+module, dir.String()) {
		c.col.NativeLibAssetDirs[module] = append(c.col.NativeLibAssetDirs[module], dir)
	}
}

// AddBuildConfig records build-config fields contributed for a Java
// package. Repeated contributions to the same package merge in arrival
// order, later fields overriding earlier ones of the same name.
func (c *Collector) AddBuildConfig(javaPackage string, fields BuildConfigFields) {
	c.col.BuildConfigs[javaPackage] = c.col.BuildConfigs[javaPackage].Merge(fields)
}

// AddLibrary records a first-order library rule whose output is merged
// into the artifact.
func (c *Collector) AddLibrary(rule rules.Rule) {
	if c.mark("libraries", rule.RuleTarget().String()) {
		c.col.Libraries = append(c.col.Libraries, rule)
	}
}

// Build returns the accumulated collection. The collector must not be used
// afterwards.
func (c *Collector) Build() *Collection {
	col := c.col
	c.col = Collection{}
	return &col
}
