package spec

// PackageParameter is a named value attached to a package.
type PackageParameter struct {
	Name  string
	Value string
}

// PackageDependencySpec is a dependency of a package on another package.
type PackageDependencySpec struct {
	Name     string
	Optional bool
	Params   []PackageParameter
}

// ExternalPackageDependencies groups the dependencies on packages of one feature-pack dependency.
type ExternalPackageDependencies struct {
	// Origin is the name of the feature-pack dependency in the declaring feature-pack spec.
	Origin string
	Deps   []PackageDependencySpec
}

// ContentFilter selects package content files by a glob pattern. The first filter matching a path
// decides whether it is installed; paths no filter matches are installed.
type ContentFilter struct {
	Pattern string
	Include bool
}

// PackageSpec describes a package of a feature-pack.
type PackageSpec struct {
	Name         string
	LocalDeps    []PackageDependencySpec
	ExternalDeps []ExternalPackageDependencies
	Params       []PackageParameter
	Filters      []ContentFilter
}

// PackageConfig requests a package, optionally with parameters.
type PackageConfig struct {
	Name   string
	Params []PackageParameter
}

// Param returns the named parameter or nil.
func (cfg *PackageConfig) Param(name string) *PackageParameter {
	for i := range cfg.Params {
		if cfg.Params[i].Name == name {
			return &cfg.Params[i]
		}
	}

	return nil
}

// SetParam adds or replaces a parameter.
func (cfg *PackageConfig) SetParam(param PackageParameter) {
	if existing := cfg.Param(param.Name); existing != nil {
		existing.Value = param.Value
		return
	}

	cfg.Params = append(cfg.Params, param)
}
