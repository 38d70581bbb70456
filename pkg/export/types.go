// Package export serializes build-rule graphs for inspection: a canonical
// JSON/BSON graph format, Graphviz DOT and SVG rendering, and snapshot
// persistence.
package export

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/aarforge/aarforge/pkg/android"
	"github.com/aarforge/aarforge/pkg/rules"
)

// Node kinds, derived from the concrete rule type.
const (
	KindResource          = "android_resource"
	KindLibrary           = "android_library"
	KindPrebuiltJar       = "prebuilt_jar"
	KindNdkLibrary        = "ndk_library"
	KindBuildConfigValues = "android_build_config"
	KindBuildConfig       = "build_config"
	KindManifest          = "manifest"
	KindAssemble          = "assemble_directories"
	KindMergeResources    = "merge_resources"
	KindNativeLibs        = "native_libs"
	KindAar               = "android_aar"
	KindUnknown           = "rule"
)

// Graph is the canonical serialization format for build-rule graphs.
// Used for CLI output, snapshot storage, and cross-tool compatibility.
//
// Nodes and edges are sorted, so serializing the same registry twice
// produces identical output.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is one build rule in serialized form.
type Node struct {
	ID        string `json:"id" bson:"id"`
	Kind      string `json:"kind" bson:"kind"`
	Generated bool   `json:"generated,omitempty" bson:"generated,omitempty"` // created by an enhancement
	Output    string `json:"output,omitempty" bson:"output,omitempty"`
}

// Edge is a directed dependency between two rules.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// FromRegistry converts every rule in the registry to the serialization
// format. Nodes are sorted by target, edges by endpoint pair.
func FromRegistry(reg *rules.Registry) Graph {
	all := reg.Rules()
	out := Graph{Nodes: make([]Node, 0, len(all))}

	for _, r := range all {
		out.Nodes = append(out.Nodes, nodeFromRule(r))
		from := r.RuleTarget().String()
		for _, dep := range r.RuleDeps() {
			out.Edges = append(out.Edges, Edge{From: from, To: dep.RuleTarget().String()})
		}
	}

	slices.SortFunc(out.Nodes, func(a, b Node) int {
		return strings.Compare(a.ID, b.ID)
	})
	slices.SortFunc(out.Edges, func(a, b Edge) int {
		if c := strings.Compare(a.From, b.From); c != 0 {
			return c
		}
		return strings.Compare(a.To, b.To)
	})
	out.Edges = slices.Compact(out.Edges)
	return out
}

// Marshal serializes the graph to indented JSON.
func (g Graph) Marshal() ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

func nodeFromRule(r rules.Rule) Node {
	tgt := r.RuleTarget()
	n := Node{
		ID:        tgt.String(),
		Kind:      ruleKind(r),
		Generated: tgt.IsFlavored(),
	}
	if n.Kind == KindAar || n.Kind == KindBuildConfig {
		n.Generated = true
	}
	if out := r.Output(); !out.IsZero() && !out.IsRuleOutput() {
		n.Output = out.String()
	}
	return n
}

func ruleKind(r rules.Rule) string {
	switch r.(type) {
	case *android.ResourceRule:
		return KindResource
	case *android.LibraryRule:
		return KindLibrary
	case *android.PrebuiltJarRule:
		return KindPrebuiltJar
	case *android.NdkLibraryRule:
		return KindNdkLibrary
	case *android.BuildConfigValuesRule:
		return KindBuildConfigValues
	case *android.BuildConfigRule:
		return KindBuildConfig
	case *android.ManifestRule:
		return KindManifest
	case *android.AssembleDirectories:
		return KindAssemble
	case *android.MergeResources:
		return KindMergeResources
	case *android.CopyNativeLibs:
		return KindNativeLibs
	case *android.AarRule:
		return KindAar
	default:
		return KindUnknown
	}
}
