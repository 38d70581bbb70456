// Package pkg provides the core libraries for aarforge rule-graph enhancement.
//
// # Overview
//
// Aarforge expands android_aar build rules into complete rule graphs: each
// declaration becomes an orchestrated set of generated sub-rules covering the
// manifest, merged resources, assembled assets, build-config classes, and
// native libraries. The pkg directory is organized into five main areas:
//
//  1. [target], [rules] - Rule identities, dependency sets, registry
//  2. [android] - The enhancement domain logic (collector, sub-rules, enhancer)
//  3. [buildfile], [depgraph] - Build-file loading and instantiation ordering
//  4. [export], [cache] - Graph serialization, rendering, snapshots, caching
//  5. [errors], [observability], [buildinfo] - Cross-cutting concerns
//
// # Architecture
//
// The typical data flow through aarforge:
//
//	BUILD.toml
//	     ↓
//	[buildfile] package (parse, validate, instantiate source rules)
//	     ↓
//	[android] package (enhance each android_aar into generated sub-rules)
//	     ↓
//	[rules] package (atomic batch commit into the registry)
//	     ↓
//	[export] package (JSON / DOT / SVG output, snapshots)
//
// # Quick Start
//
// Expand a build file and export the rule graph:
//
//	import (
//	    "context"
//	    "github.com/aarforge/aarforge/pkg/android"
//	    "github.com/aarforge/aarforge/pkg/buildfile"
//	    "github.com/aarforge/aarforge/pkg/export"
//	    "github.com/aarforge/aarforge/pkg/rules"
//	)
//
//	// 1. Load and instantiate the build file
//	f, _ := buildfile.Load(context.Background(), "BUILD.toml")
//	reg := rules.NewRegistry()
//	_ = f.Instantiate(reg)
//
//	// 2. Enhance every android_aar declaration
//	desc := &android.AarDescription{}
//	reqs, _ := f.AarRequests(reg)
//	for _, req := range reqs {
//	    enh, _ := desc.Enhance(context.Background(), req.Params, req.Args)
//	    _ = reg.Commit(enh.Batch)
//	}
//
//	// 3. Export the expanded graph
//	g := export.FromRegistry(reg)
//	data, _ := g.Marshal()
//
// # Main Packages
//
// [target] - Build target identities ("//path:name") with sorted flavor
// qualifiers ("#aar_android_manifest").
//
// [rules] - The rule model: declared vs extra dependency sets, opaque output
// references, and the append-only registry with atomic batch commits.
//
// [android] - The enhancement domain: packageable collection (exactly-once
// diamond-safe traversal), module graphs, generated sub-rule types, and the
// [android.AarDescription] enhancer that ties them together.
//
// [buildfile] - TOML build-file parsing, validation, dependency-ordered
// instantiation, and android_aar request resolution.
//
// [depgraph] - Deterministic dependency graph with cycle detection and
// topological ordering, used to instantiate source rules dependencies-first.
//
// [export] - Rule-graph serialization (JSON), Graphviz DOT/SVG rendering,
// and snapshot persistence (memory, MongoDB).
//
// [cache] - Render-artifact caching with file, Redis, and null backends.
//
// [errors] - Coded errors shared across packages.
//
// [observability] - Pluggable hooks for enhancement, load, export, and cache
// events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/android/...  # Specific package
//
// [target]: https://pkg.go.dev/github.com/aarforge/aarforge/pkg/target
// [rules]: https://pkg.go.dev/github.com/aarforge/aarforge/pkg/rules
// [android]: https://pkg.go.dev/github.com/aarforge/aarforge/pkg/android
// [buildfile]: https://pkg.go.dev/github.com/aarforge/aarforge/pkg/buildfile
// [depgraph]: https://pkg.go.dev/github.com/aarforge/aarforge/pkg/depgraph
// [export]: https://pkg.go.dev/github.com/aarforge/aarforge/pkg/export
// [cache]: https://pkg.go.dev/github.com/aarforge/aarforge/pkg/cache
// [errors]: https://pkg.go.dev/github.com/aarforge/aarforge/pkg/errors
// [observability]: https://pkg.go.dev/github.com/aarforge/aarforge/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/aarforge/aarforge/pkg/buildinfo
package pkg
