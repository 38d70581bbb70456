package export

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/aarforge/aarforge/pkg/android"
	"github.com/aarforge/aarforge/pkg/errors"
	"github.com/aarforge/aarforge/pkg/rules"
	"github.com/aarforge/aarforge/pkg/target"
)

func sampleRegistry(t *testing.T) *rules.Registry {
	t.Helper()
	res := android.NewResourceRule(
		rules.NewParams(target.MustParse("//res:main"), nil, nil),
		rules.PathRef("res/main"), rules.OutputRef{}, rules.OutputRef{}, "com.example")
	lib := android.NewLibraryRule(
		rules.NewParams(target.MustParse("//lib:core"), []rules.Rule{res}, nil))

	reg := rules.NewRegistry()
	for _, r := range []rules.Rule{res, lib} {
		if err := reg.Add(r); err != nil {
			t.Fatal(err)
		}
	}
	return reg
}

func TestFromRegistry(t *testing.T) {
	g := FromRegistry(sampleRegistry(t))

	wantNodes := []Node{
		{ID: "//lib:core", Kind: KindLibrary},
		{ID: "//res:main", Kind: KindResource, Output: ""},
	}
	if !reflect.DeepEqual(g.Nodes, wantNodes) {
		t.Errorf("Nodes = %+v, want %+v", g.Nodes, wantNodes)
	}
	wantEdges := []Edge{{From: "//lib:core", To: "//res:main"}}
	if !reflect.DeepEqual(g.Edges, wantEdges) {
		t.Errorf("Edges = %+v, want %+v", g.Edges, wantEdges)
	}
}

func TestFromRegistryMarksGeneratedRules(t *testing.T) {
	reg := rules.NewRegistry()
	var d android.AarDescription
	enh, err := d.Enhance(context.Background(),
		rules.NewParams(target.MustParse("//app:lib"), nil, nil),
		android.AarArgs{ManifestSkeleton: rules.PathRef("AndroidManifest.xml")})
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Commit(enh.Batch); err != nil {
		t.Fatal(err)
	}

	g := FromRegistry(reg)
	for _, n := range g.Nodes {
		if !n.Generated {
			t.Errorf("node %s (kind %s) not marked generated", n.ID, n.Kind)
		}
	}
}

func TestGraphRoundTrip(t *testing.T) {
	g := FromRegistry(sampleRegistry(t))
	data, err := g.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(g, back) {
		t.Errorf("round trip changed the graph:\n%+v\n%+v", g, back)
	}
}

func TestToDOT(t *testing.T) {
	g := FromRegistry(sampleRegistry(t))
	dot := ToDOT(g, DOTOptions{})

	for _, want := range []string{
		`"//lib:core"`,
		`"//res:main"`,
		`"//lib:core" -> "//res:main";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %s:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailedIncludesKind(t *testing.T) {
	g := FromRegistry(sampleRegistry(t))
	dot := ToDOT(g, DOTOptions{Detailed: true})
	if !strings.Contains(dot, "kind: android_library") {
		t.Errorf("detailed DOT output missing kind label:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	svg := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(svg))
	if !strings.Contains(got, `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("viewBox not normalized: %s", got)
	}
	if !strings.Contains(got, `width="100" height="50"`) {
		t.Errorf("dimensions not rewritten: %s", got)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close(ctx)

	g := FromRegistry(sampleRegistry(t))
	first := NewSnapshot("BUILD.toml", g)
	second := NewSnapshot("BUILD.toml", g)
	if first.ID == second.ID {
		t.Fatal("snapshot IDs must be unique")
	}

	for _, snap := range []Snapshot{first, second} {
		if err := store.Save(ctx, snap); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.Get(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Graph, g) {
		t.Error("stored graph does not match")
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("List = %d snapshots, want 2", len(all))
	}
}
