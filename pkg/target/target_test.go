package target

import (
	"slices"
	"testing"

	"github.com/aarforge/aarforge/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple", "//java/com/app:app", "//java/com/app:app", false},
		{"single flavor", "//java/com/app:app#aar_android_manifest", "//java/com/app:app#aar_android_manifest", false},
		{"flavors sorted", "//lib:lib#zeta,alpha", "//lib:lib#alpha,zeta", false},
		{"root-ish path", "//apps:main", "//apps:main", false},

		{"missing slashes", "java/com/app:app", "", true},
		{"missing name", "//java/com/app", "", true},
		{"empty name", "//java/com/app:", "", true},
		{"double colon", "//java:com:app", "", true},
		{"empty flavor suffix", "//lib:lib#", "", true},
		{"empty flavor in list", "//lib:lib#a,,b", "", true},
		{"duplicate flavor", "//lib:lib#a,a", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidTarget) {
					t.Errorf("Parse(%q) error code = %v, want INVALID_TARGET", tt.input, errors.GetCode(err))
				}
				return
			}
			if got.String() != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.input, got.String(), tt.want)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		"//java/com/app:app",
		"//java/com/app:app#aar_android_resource",
		"//lib:lib#alpha,zeta",
	}
	for _, in := range inputs {
		got := MustParse(in)
		back, err := Parse(got.String())
		if err != nil {
			t.Fatalf("re-parse %q: %v", got.String(), err)
		}
		if !Equal(got, back) {
			t.Errorf("round trip mismatch: %q vs %q", got.String(), back.String())
		}
	}
}

func TestWithFlavor(t *testing.T) {
	base := MustParse("//java/com/app:app")

	flavored, err := base.WithFlavor("aar_assemble_assets")
	if err != nil {
		t.Fatalf("WithFlavor() error = %v", err)
	}
	if !flavored.IsFlavored() {
		t.Error("IsFlavored() = false after WithFlavor")
	}
	if got := flavored.String(); got != "//java/com/app:app#aar_assemble_assets" {
		t.Errorf("String() = %q", got)
	}

	// Base target is unchanged.
	if base.IsFlavored() {
		t.Error("WithFlavor mutated the receiver")
	}

	// Same flavor twice is rejected.
	if _, err := flavored.WithFlavor("aar_assemble_assets"); err == nil {
		t.Error("WithFlavor() with duplicate flavor: expected error")
	}

	// Empty flavor is rejected.
	if _, err := base.WithFlavor(""); err == nil {
		t.Error("WithFlavor(\"\"): expected error")
	}
}

func TestCheckUnflavored(t *testing.T) {
	base := MustParse("//java/com/app:app")
	if err := base.CheckUnflavored(); err != nil {
		t.Errorf("CheckUnflavored() on unflavored target = %v", err)
	}

	flavored := MustParse("//java/com/app:app#aar_android_manifest")
	err := flavored.CheckUnflavored()
	if err == nil {
		t.Fatal("CheckUnflavored() on flavored target: expected error")
	}
	if !errors.Is(err, errors.ErrCodeFlavoredTarget) {
		t.Errorf("error code = %v, want FLAVORED_TARGET", errors.GetCode(err))
	}
}

func TestUnflavored(t *testing.T) {
	flavored := MustParse("//java/com/app:app#a,b")
	plain := flavored.Unflavored()
	if plain.IsFlavored() {
		t.Error("Unflavored() still flavored")
	}
	if plain.String() != "//java/com/app:app" {
		t.Errorf("Unflavored().String() = %q", plain.String())
	}
}

func TestCompareIsTotalOrder(t *testing.T) {
	targets := []Target{
		MustParse("//b:x"),
		MustParse("//a:y#f"),
		MustParse("//a:y"),
		MustParse("//a:x"),
	}
	slices.SortFunc(targets, Compare)

	want := []string{"//a:x", "//a:y", "//a:y#f", "//b:x"}
	for i, w := range want {
		if targets[i].String() != w {
			t.Errorf("sorted[%d] = %q, want %q", i, targets[i].String(), w)
		}
	}
}
