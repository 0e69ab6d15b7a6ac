package spec

import "github.com/gruntwork-io/fpack/coords"

// FeaturePackDependencySpec is a named dependency of a feature-pack on another one. The name is
// what packages, specs and groups use as their origin.
type FeaturePackDependencySpec struct {
	Name   string
	Config *FeaturePackConfig
}

// FeaturePackSpec is the descriptor of a feature-pack.
type FeaturePackSpec struct {
	Gav             coords.Gav
	Dependencies    []*FeaturePackDependencySpec
	DefaultPackages []string
	Configs         []*ConfigModel
}

// Dependency returns the dependency with the given name or nil.
func (spec *FeaturePackSpec) Dependency(name string) *FeaturePackDependencySpec {
	for _, dep := range spec.Dependencies {
		if dep.Name == name {
			return dep
		}
	}

	return nil
}

// HasDependencies reports whether the feature-pack depends on others.
func (spec *FeaturePackSpec) HasDependencies() bool {
	return len(spec.Dependencies) > 0
}
