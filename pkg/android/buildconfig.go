package android

import (
	"strings"

	"github.com/aarforge/aarforge/pkg/errors"
	"github.com/aarforge/aarforge/pkg/rules"
	"github.com/aarforge/aarforge/pkg/target"
)

// BuildConfigField is one generated BuildConfig class constant, declared in
// Java field syntax: type, name, initializer value.
type BuildConfigField struct {
	Type  string
	Name  string
	Value string
}

// String renders the field back into its declaration form.
func (f BuildConfigField) String() string {
	return f.Type + " " + f.Name + " = " + f.Value
}

// BuildConfigFields is an ordered, name-unique set of BuildConfig fields.
// The zero value is the empty set.
type BuildConfigFields struct {
	fields []BuildConfigField
}

// ParseBuildConfigFields parses declarations of the form
// "type NAME = value", one per element:
//
//	String API_URL = "https://example.com"
//	boolean DEBUG = false
//
// Later declarations override earlier ones of the same name while keeping
// the original position, so field order is declaration order.
func ParseBuildConfigFields(decls []string) (BuildConfigFields, error) {
	var out BuildConfigFields
	for _, decl := range decls {
		lhs, value, ok := strings.Cut(decl, "=")
		if !ok {
			return BuildConfigFields{}, errors.New(errors.ErrCodeInvalidBuildFile,
				"build config field %q must have the form \"type NAME = value\"", decl)
		}
		parts := strings.Fields(lhs)
		if len(parts) != 2 {
			return BuildConfigFields{}, errors.New(errors.ErrCodeInvalidBuildFile,
				"build config field %q must have the form \"type NAME = value\"", decl)
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return BuildConfigFields{}, errors.New(errors.ErrCodeInvalidBuildFile,
				"build config field %q has an empty value", decl)
		}
		out = out.with(BuildConfigField{Type: parts[0], Name: parts[1], Value: value})
	}
	return out, nil
}

// with returns a copy with the field added, replacing any same-named field
// in place.
func (f BuildConfigFields) with(field BuildConfigField) BuildConfigFields {
	fields := make([]BuildConfigField, len(f.fields))
	copy(fields, f.fields)
	for i, existing := range fields {
		if existing.Name == field.Name {
			fields[i] = field
			return BuildConfigFields{fields: fields}
		}
	}
	return BuildConfigFields{fields: append(fields, field)}
}

// IsEmpty reports whether the set has no fields.
func (f BuildConfigFields) IsEmpty() bool { return len(f.fields) == 0 }

// Len returns the number of fields.
func (f BuildConfigFields) Len() int { return len(f.fields) }

// Fields returns the fields in declaration order. The returned slice is a
// copy.
func (f BuildConfigFields) Fields() []BuildConfigField {
	out := make([]BuildConfigField, len(f.fields))
	copy(out, f.fields)
	return out
}

// Merge returns the union of the two sets: receiver order first, new names
// from other appended in their order, other winning name collisions.
func (f BuildConfigFields) Merge(other BuildConfigFields) BuildConfigFields {
	out := f
	for _, field := range other.fields {
		out = out.with(field)
	}
	return out
}

// String renders the set as semicolon-separated declarations.
func (f BuildConfigFields) String() string {
	decls := make([]string, len(f.fields))
	for i, field := range f.fields {
		decls[i] = field.String()
	}
	return strings.Join(decls, "; ")
}

// BuildConfigRule generates a BuildConfig class for one Java package. Its
// output is a compiled classes directory that joins both the artifact
// classpath and the artifact's dependency set.
type BuildConfigRule struct {
	params      rules.Params
	javaPackage string
	values      BuildConfigFields
}

// NewBuildConfigRule creates a build-config rule. The params target is
// expected to carry the build_config flavor identifying the package.
func NewBuildConfigRule(params rules.Params, javaPackage string, values BuildConfigFields) *BuildConfigRule {
	return &BuildConfigRule{params: params, javaPackage: javaPackage, values: values}
}

// RuleTarget implements rules.Rule.
func (r *BuildConfigRule) RuleTarget() target.Target { return r.params.Target }

// RuleDeps implements rules.Rule.
func (r *BuildConfigRule) RuleDeps() []rules.Rule { return r.params.Deps() }

// Output implements rules.Rule.
func (r *BuildConfigRule) Output() rules.OutputRef {
	return rules.RuleOutput(r.params.Target)
}

// JavaPackage returns the package the BuildConfig class is generated in.
func (r *BuildConfigRule) JavaPackage() string { return r.javaPackage }

// Values returns the generated constant fields.
func (r *BuildConfigRule) Values() BuildConfigFields { return r.values }

// buildConfigFlavor names the build-config sub-rule for a Java package.
// The AAR's own values, which carry no package of their own, use the bare
// build_config flavor.
func buildConfigFlavor(javaPackage string) target.Flavor {
	if javaPackage == "" {
		return FlavorBuildConfig
	}
	return target.Flavor(string(FlavorBuildConfig) + "_" + strings.ReplaceAll(javaPackage, ".", "_"))
}
