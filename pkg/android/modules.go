package android

import (
	"maps"
	"slices"

	"github.com/aarforge/aarforge/pkg/target"
)

// RootModuleName is the name of the module that contains the originally
// enhanced target. It is the only module whose native libraries may be
// placed directly into an AAR.
const RootModuleName = "root"

// Module is one partition of the dependency graph.
type Module struct {
	name string
	root bool
}

// Name returns the module's name.
func (m Module) Name() string { return m.name }

// IsRoot reports whether this is the root module.
func (m Module) IsRoot() bool { return m.root }

// ModuleGraph partitions the transitive dependency closure of a root target
// into modules. With no seed configuration - the only configuration the AAR
// flow uses - every target lands in the single root module.
//
// Seeds map a module name to the targets it claims; targets are matched by
// their unflavored identity. Anything unclaimed belongs to the root module.
type ModuleGraph struct {
	rootTarget target.Target
	root       Module
	membership map[string]Module
}

// NewModuleGraph builds a module graph rooted at the given target.
// A nil or empty seeds map yields exactly one module, the root.
func NewModuleGraph(root target.Target, seeds map[string][]target.Target) *ModuleGraph {
	g := &ModuleGraph{
		rootTarget: root,
		root:       Module{name: RootModuleName, root: true},
		membership: make(map[string]Module),
	}
	for _, name := range slices.Sorted(maps.Keys(seeds)) {
		m := Module{name: name}
		for _, t := range seeds[name] {
			g.membership[t.Unflavored().String()] = m
		}
	}
	return g
}

// Root returns the originally enhanced target.
func (g *ModuleGraph) Root() target.Target { return g.rootTarget }

// RootModule returns the module containing the root target.
func (g *ModuleGraph) RootModule() Module { return g.root }

// ModuleFor returns the module owning the given target. Unseeded targets,
// which is every target in the unconfigured AAR flow, map to the root
// module.
func (g *ModuleGraph) ModuleFor(t target.Target) Module {
	if m, ok := g.membership[t.Unflavored().String()]; ok {
		return m
	}
	return g.root
}
