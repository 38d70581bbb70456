package android

import (
	"github.com/aarforge/aarforge/pkg/rules"
	"github.com/aarforge/aarforge/pkg/target"
)

// LibraryRule is a compiled Android library. It contributes its jar to the
// packaged classpath and is recorded as a packaged library.
type LibraryRule struct {
	params rules.Params
}

// NewLibraryRule creates an android_library rule.
func NewLibraryRule(params rules.Params) *LibraryRule {
	return &LibraryRule{params: params}
}

// RuleTarget implements rules.Rule.
func (r *LibraryRule) RuleTarget() target.Target { return r.params.Target }

// RuleDeps implements rules.Rule.
func (r *LibraryRule) RuleDeps() []rules.Rule { return r.params.Deps() }

// Output implements rules.Rule; it references the compiled jar.
func (r *LibraryRule) Output() rules.OutputRef {
	return rules.RuleOutput(r.params.Target)
}

// RequiredPackageables implements Packageable.
func (r *LibraryRule) RequiredPackageables() []Packageable {
	return FilterPackageables(r.params.Deps())
}

// Contribute implements Packageable.
func (r *LibraryRule) Contribute(c *Collector) {
	c.AddClasspathEntry(r.params.Target, r.Output())
	c.AddLibrary(r)
}

// PrebuiltJarRule wraps an existing jar file on disk.
type PrebuiltJarRule struct {
	params rules.Params
	jar    rules.OutputRef
}

// NewPrebuiltJarRule creates a prebuilt_jar rule over a jar path.
func NewPrebuiltJarRule(params rules.Params, jar rules.OutputRef) *PrebuiltJarRule {
	return &PrebuiltJarRule{params: params, jar: jar}
}

// RuleTarget implements rules.Rule.
func (r *PrebuiltJarRule) RuleTarget() target.Target { return r.params.Target }

// RuleDeps implements rules.Rule.
func (r *PrebuiltJarRule) RuleDeps() []rules.Rule { return r.params.Deps() }

// Output implements rules.Rule; it references the wrapped jar.
func (r *PrebuiltJarRule) Output() rules.OutputRef { return r.jar }

// RequiredPackageables implements Packageable.
func (r *PrebuiltJarRule) RequiredPackageables() []Packageable {
	return FilterPackageables(r.params.Deps())
}

// Contribute implements Packageable.
func (r *PrebuiltJarRule) Contribute(c *Collector) {
	c.AddClasspathEntry(r.params.Target, r.jar)
	c.AddLibrary(r)
}

// NdkLibraryRule carries compiled native libraries. When asAsset is set
// the .so files are packaged under assets/lib instead of jni.
type NdkLibraryRule struct {
	params  rules.Params
	libDir  rules.OutputRef
	asAsset bool
}

// NewNdkLibraryRule creates an ndk_library rule over a directory of .so
// files.
func NewNdkLibraryRule(params rules.Params, libDir rules.OutputRef, asAsset bool) *NdkLibraryRule {
	return &NdkLibraryRule{params: params, libDir: libDir, asAsset: asAsset}
}

// RuleTarget implements rules.Rule.
func (r *NdkLibraryRule) RuleTarget() target.Target { return r.params.Target }

// RuleDeps implements rules.Rule.
func (r *NdkLibraryRule) RuleDeps() []rules.Rule { return r.params.Deps() }

// Output implements rules.Rule; it references the library directory.
func (r *NdkLibraryRule) Output() rules.OutputRef { return r.libDir }

// IsAsset reports whether the libraries are packaged as assets.
func (r *NdkLibraryRule) IsAsset() bool { return r.asAsset }

// RequiredPackageables implements Packageable.
func (r *NdkLibraryRule) RequiredPackageables() []Packageable {
	return FilterPackageables(r.params.Deps())
}

// Contribute implements Packageable.
func (r *NdkLibraryRule) Contribute(c *Collector) {
	if r.asAsset {
		c.AddNativeLibAssetDir(r.params.Target, r.libDir)
		return
	}
	c.AddNativeLibDir(r.params.Target, r.libDir)
}

// BuildConfigValuesRule declares BuildConfig constants for a Java package.
// During AAR enhancement every contributed package yields one generated
// BuildConfig class rule.
type BuildConfigValuesRule struct {
	params      rules.Params
	javaPackage string
	values      BuildConfigFields
}

// NewBuildConfigValuesRule creates an android_build_config rule.
func NewBuildConfigValuesRule(params rules.Params, javaPackage string, values BuildConfigFields) *BuildConfigValuesRule {
	return &BuildConfigValuesRule{params: params, javaPackage: javaPackage, values: values}
}

// RuleTarget implements rules.Rule.
func (r *BuildConfigValuesRule) RuleTarget() target.Target { return r.params.Target }

// RuleDeps implements rules.Rule.
func (r *BuildConfigValuesRule) RuleDeps() []rules.Rule { return r.params.Deps() }

// Output implements rules.Rule. Declarations have no artifact of their
// own, so this is a zero ref.
func (r *BuildConfigValuesRule) Output() rules.OutputRef { return rules.OutputRef{} }

// JavaPackage returns the package the BuildConfig class is generated in.
func (r *BuildConfigValuesRule) JavaPackage() string { return r.javaPackage }

// Values returns the declared constant fields.
func (r *BuildConfigValuesRule) Values() BuildConfigFields { return r.values }

// RequiredPackageables implements Packageable.
func (r *BuildConfigValuesRule) RequiredPackageables() []Packageable {
	return FilterPackageables(r.params.Deps())
}

// Contribute implements Packageable.
func (r *BuildConfigValuesRule) Contribute(c *Collector) {
	c.AddBuildConfig(r.javaPackage, r.values)
}
