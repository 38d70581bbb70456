// Package target defines build target identities and flavor qualifiers.
//
// A target names one logical build rule using the familiar double-slash
// notation:
//
//	//java/com/example/app:app
//
// A flavor is a qualifier suffix appended to a target identity to name an
// internally generated sub-rule variant of that logical target:
//
//	//java/com/example/app:app#aar_android_manifest
//
// Multiple flavors are kept sorted and joined with commas so that every
// target has exactly one canonical string form. The canonical form doubles
// as the identity's total order, which downstream packages rely on for
// deterministic rule sets.
package target

import (
	"slices"
	"strings"

	"github.com/aarforge/aarforge/pkg/errors"
)

// Flavor is a qualifier suffix denoting an internally generated sub-rule
// variant of a logical target.
type Flavor string

// Target is a build target identity: a base path, a short name, and an
// optional sorted set of flavors. The zero value is not usable - use Parse
// or New to create a valid Target.
type Target struct {
	basePath  string
	shortName string
	flavors   []Flavor
}

// New creates an unflavored target from a base path and short name.
// Use Parse when starting from the string form.
func New(basePath, shortName string) Target {
	return Target{basePath: basePath, shortName: shortName}
}

// Parse parses a target string of the form "//path/to:name" with an
// optional "#flavor1,flavor2" suffix. It returns an INVALID_TARGET error
// for malformed input.
func Parse(s string) (Target, error) {
	rest, ok := strings.CutPrefix(s, "//")
	if !ok {
		return Target{}, errors.New(errors.ErrCodeInvalidTarget, "target %q must start with //", s)
	}

	var flavorPart string
	if idx := strings.IndexByte(rest, '#'); idx >= 0 {
		rest, flavorPart = rest[:idx], rest[idx+1:]
		if flavorPart == "" {
			return Target{}, errors.New(errors.ErrCodeInvalidTarget, "target %q has an empty flavor suffix", s)
		}
	}

	path, name, ok := strings.Cut(rest, ":")
	if !ok || name == "" {
		return Target{}, errors.New(errors.ErrCodeInvalidTarget, "target %q must contain a :name part", s)
	}
	if strings.Contains(name, ":") || strings.Contains(path, ":") {
		return Target{}, errors.New(errors.ErrCodeInvalidTarget, "target %q contains more than one colon", s)
	}

	t := Target{basePath: path, shortName: name}
	if flavorPart != "" {
		for _, f := range strings.Split(flavorPart, ",") {
			if f == "" {
				return Target{}, errors.New(errors.ErrCodeInvalidTarget, "target %q has an empty flavor", s)
			}
			var err error
			if t, err = t.WithFlavor(Flavor(f)); err != nil {
				return Target{}, err
			}
		}
	}
	return t, nil
}

// MustParse parses a target string and panics on error.
// Intended for tests and compile-time constant targets.
func MustParse(s string) Target {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// BasePath returns the directory part of the target ("java/com/example/app").
func (t Target) BasePath() string { return t.basePath }

// ShortName returns the name part of the target ("app").
func (t Target) ShortName() string { return t.shortName }

// Flavors returns the target's flavors in sorted order.
// The returned slice must not be modified.
func (t Target) Flavors() []Flavor { return t.flavors }

// IsFlavored reports whether the target carries any flavor qualifier.
func (t Target) IsFlavored() bool { return len(t.flavors) > 0 }

// Unflavored returns the logical target with all flavors stripped.
func (t Target) Unflavored() Target {
	return Target{basePath: t.basePath, shortName: t.shortName}
}

// WithFlavor returns a copy of the target with the flavor appended.
// Flavors are kept sorted and unique; appending a flavor the target
// already carries is an error, which is what prevents one enhancement
// call from generating the same sub-rule identity twice.
func (t Target) WithFlavor(f Flavor) (Target, error) {
	if f == "" {
		return Target{}, errors.New(errors.ErrCodeInvalidTarget, "empty flavor for target %s", t)
	}
	if slices.Contains(t.flavors, f) {
		return Target{}, errors.New(errors.ErrCodeInvalidTarget, "target %s already has flavor %s", t, f)
	}
	flavors := make([]Flavor, 0, len(t.flavors)+1)
	flavors = append(flavors, t.flavors...)
	flavors = append(flavors, f)
	slices.Sort(flavors)
	return Target{basePath: t.basePath, shortName: t.shortName, flavors: flavors}, nil
}

// CheckUnflavored returns a FLAVORED_TARGET error if the target carries any
// flavor. Enhancement requires an unflavored input target so that generated
// sub-rule identities cannot collide with or recursively re-enhance an
// already-enhanced target.
func (t Target) CheckUnflavored() error {
	if t.IsFlavored() {
		return errors.New(errors.ErrCodeFlavoredTarget, "target %s must not be flavored", t)
	}
	return nil
}

// String returns the canonical string form of the target.
func (t Target) String() string {
	var sb strings.Builder
	sb.WriteString("//")
	sb.WriteString(t.basePath)
	sb.WriteByte(':')
	sb.WriteString(t.shortName)
	for i, f := range t.flavors {
		if i == 0 {
			sb.WriteByte('#')
		} else {
			sb.WriteByte(',')
		}
		sb.WriteString(string(f))
	}
	return sb.String()
}

// Compare defines a total, stable order over target identities using the
// canonical string form. It is the ordering used for deterministic
// dependency sets.
func Compare(a, b Target) int {
	return strings.Compare(a.String(), b.String())
}

// Equal reports whether two targets are the same identity, flavors included.
func Equal(a, b Target) bool {
	return Compare(a, b) == 0
}
