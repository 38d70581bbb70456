package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aarforge/aarforge/pkg/errors"
	"github.com/aarforge/aarforge/pkg/export"
	"github.com/aarforge/aarforge/pkg/target"
)

const testBuildFile = `
[[android_resource]]
name = "//res:main"
res = "res/main"
assets = "assets/main"
package = "com.example.res"

[[android_library]]
name = "//lib:core"
deps = ["//res:main"]

[[android_aar]]
name = "//app:lib"
manifest_skeleton = "app/AndroidManifest.xml"
deps = ["//lib:core"]
`

func writeBuildFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "BUILD.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndEnhance(t *testing.T) {
	c := New(io.Discard, LogInfo)
	path := writeBuildFile(t, testBuildFile)

	reg, enhs, err := c.loadAndEnhance(context.Background(), path, "")
	if err != nil {
		t.Fatalf("loadAndEnhance: %v", err)
	}

	if len(enhs) != 1 {
		t.Fatalf("enhancements = %d, want 1", len(enhs))
	}
	if got := enhs[0].Aar.RuleTarget().String(); got != "//app:lib" {
		t.Errorf("aar target = %s, want //app:lib", got)
	}

	for _, want := range []string{
		"//app:lib",
		"//app:lib#aar_android_manifest",
		"//app:lib#aar_android_resource",
		"//lib:core",
		"//res:main",
	} {
		tgt, err := target.Parse(want)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := reg.Get(tgt); !ok {
			t.Errorf("registry missing %s", want)
		}
	}
}

const twoAarBuildFile = `
[[android_library]]
name = "//lib:core"

[[android_aar]]
name = "//app:first"
manifest_skeleton = "app/First.xml"
deps = ["//lib:core"]

[[android_aar]]
name = "//app:second"
manifest_skeleton = "app/Second.xml"
deps = ["//lib:core"]
`

func TestLoadAndEnhanceTargetFilter(t *testing.T) {
	c := New(io.Discard, LogInfo)
	path := writeBuildFile(t, twoAarBuildFile)

	reg, enhs, err := c.loadAndEnhance(context.Background(), path, "//app:first")
	if err != nil {
		t.Fatalf("loadAndEnhance: %v", err)
	}
	if len(enhs) != 1 {
		t.Fatalf("enhancements = %d, want 1", len(enhs))
	}
	if got := enhs[0].Aar.RuleTarget().String(); got != "//app:first" {
		t.Errorf("aar target = %s, want //app:first", got)
	}
	if _, ok := reg.Get(target.MustParse("//app:second")); ok {
		t.Error("filtered-out aar should not be enhanced")
	}
}

func TestLoadAndEnhanceUnknownFilter(t *testing.T) {
	c := New(io.Discard, LogInfo)
	path := writeBuildFile(t, twoAarBuildFile)

	_, _, err := c.loadAndEnhance(context.Background(), path, "//app:missing")
	if !errors.Is(err, errors.ErrCodeUnknownTarget) {
		t.Fatalf("err = %v, want UNKNOWN_TARGET", err)
	}
}

func TestLoadAndEnhanceMissingFile(t *testing.T) {
	c := New(io.Discard, LogInfo)

	_, _, err := c.loadAndEnhance(context.Background(), filepath.Join(t.TempDir(), "nope.toml"), "")
	if err == nil {
		t.Fatal("expected error for missing build file")
	}
}

func TestLoadAndEnhanceInvalidAar(t *testing.T) {
	c := New(io.Discard, LogInfo)
	path := writeBuildFile(t, `
[[android_aar]]
name = "//app:lib"
deps = []
`)

	_, _, err := c.loadAndEnhance(context.Background(), path, "")
	if err == nil {
		t.Fatal("expected error for aar without manifest_skeleton")
	}
}

func TestLoadAndEnhanceExport(t *testing.T) {
	c := New(io.Discard, LogInfo)
	path := writeBuildFile(t, testBuildFile)

	reg, _, err := c.loadAndEnhance(context.Background(), path, "")
	if err != nil {
		t.Fatalf("loadAndEnhance: %v", err)
	}

	g := export.FromRegistry(reg)
	if len(g.Nodes) != reg.Len() {
		t.Errorf("exported nodes = %d, want %d", len(g.Nodes), reg.Len())
	}
	if len(g.Edges) == 0 {
		t.Error("exported graph should have edges")
	}
}
