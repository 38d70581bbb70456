package android

import (
	"github.com/aarforge/aarforge/pkg/rules"
	"github.com/aarforge/aarforge/pkg/target"
)

// ResourceProducer is implemented by rules that contribute Android
// resources or assets. The enhancer partitions dependency sets by this
// interface so resource-scoped sub-rules depend only on resource rules.
type ResourceProducer interface {
	rules.Rule

	// ResDir returns the resource directory, or a zero ref when the rule
	// contributes no resources.
	ResDir() rules.OutputRef

	// AssetsDir returns the assets directory, or a zero ref when the rule
	// contributes no assets.
	AssetsDir() rules.OutputRef
}

// FilterResourceRules returns the rules from in that produce resources,
// preserving order.
func FilterResourceRules(in []rules.Rule) []rules.Rule {
	var out []rules.Rule
	for _, r := range in {
		if _, ok := r.(ResourceProducer); ok {
			out = append(out, r)
		}
	}
	return out
}

// ResourceRule carries Android resources, assets, and a manifest. It is
// both a source-level rule (declared directly in a build file) and the
// composite resource rule an AAR enhancement generates over its assembled
// sub-rule outputs.
type ResourceRule struct {
	params      rules.Params
	resDir      rules.OutputRef
	assetsDir   rules.OutputRef
	manifest    rules.OutputRef
	rDotJavaPkg string
}

// NewResourceRule creates an android_resource rule. Any of the directory
// or manifest refs may be zero when the rule does not carry that piece.
func NewResourceRule(params rules.Params, resDir, assetsDir, manifest rules.OutputRef, rDotJavaPkg string) *ResourceRule {
	return &ResourceRule{
		params:      params,
		resDir:      resDir,
		assetsDir:   assetsDir,
		manifest:    manifest,
		rDotJavaPkg: rDotJavaPkg,
	}
}

// RuleTarget implements rules.Rule.
func (r *ResourceRule) RuleTarget() target.Target { return r.params.Target }

// RuleDeps implements rules.Rule.
func (r *ResourceRule) RuleDeps() []rules.Rule { return r.params.Deps() }

// Output implements rules.Rule.
func (r *ResourceRule) Output() rules.OutputRef {
	return rules.RuleOutput(r.params.Target)
}

// ResDir implements ResourceProducer.
func (r *ResourceRule) ResDir() rules.OutputRef { return r.resDir }

// AssetsDir implements ResourceProducer.
func (r *ResourceRule) AssetsDir() rules.OutputRef { return r.assetsDir }

// Manifest returns the manifest reference, or a zero ref.
func (r *ResourceRule) Manifest() rules.OutputRef { return r.manifest }

// RDotJavaPackage returns the Java package R classes are generated under.
// Empty for composite rules generated by an enhancement.
func (r *ResourceRule) RDotJavaPackage() string { return r.rDotJavaPkg }

// RequiredPackageables implements Packageable.
func (r *ResourceRule) RequiredPackageables() []Packageable {
	return FilterPackageables(r.params.Deps())
}

// Contribute implements Packageable.
func (r *ResourceRule) Contribute(c *Collector) {
	c.AddResourceDir(r.params.Target, r.resDir)
	c.AddAssetDir(r.params.Target, r.assetsDir)
}
