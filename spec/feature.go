package spec

// FeatureParameterSpec declares a parameter of a feature spec.
type FeatureParameterSpec struct {
	Name string
	// Default is used when no config sets the param; nil means no default.
	Default *string
	// FeatureID marks the param as part of the feature identity.
	FeatureID bool
	// Nillable params may be left unset in the resolved feature.
	Nillable bool
	// ResetOnExclude discards values inherited from an enclosing group when the feature is only
	// present because its id was re-included over an excluded spec.
	ResetOnExclude bool
}

// DefaultValue returns the default and whether one is declared.
func (param *FeatureParameterSpec) DefaultValue() (string, bool) {
	if param.Default == nil {
		return "", false
	}

	return *param.Default, true
}

// RefMapping maps a local param onto an identity param of the referenced spec.
type RefMapping struct {
	Param       string
	TargetParam string
}

// FeatureReferenceSpec is a foreign key from a feature onto a feature of another (or the same) spec.
type FeatureReferenceSpec struct {
	// Name of the reference, defaults to the target spec name.
	Name string
	// Origin names the feature-pack dependency declaring the target spec.
	Origin string
	// Feature is the target spec name.
	Feature string
	// Nillable references are skipped when a mapped param is unset.
	Nillable bool
	// Include makes the referenced feature part of the config even when not declared there.
	Include bool
	// Mappings, when empty, map the target id params onto local params of the same name.
	Mappings []RefMapping
}

// TargetSpec returns the id of the referenced spec.
func (ref *FeatureReferenceSpec) TargetSpec() SpecID {
	return SpecID{Origin: ref.Origin, Name: ref.Feature}
}

// PackageDependency is a dependency of a feature spec or feature group on a package.
type PackageDependency struct {
	// Origin names a feature-pack dependency, empty for the declaring feature-pack.
	Origin   string
	Name     string
	Optional bool
}

// FeatureSpec is the schema of one kind of configurable element.
type FeatureSpec struct {
	Name   string
	Params []*FeatureParameterSpec
	// ProvidedCapabilities are registered for every feature of the spec.
	ProvidedCapabilities []*CapabilitySpec
	// RequiredCapabilities must be provided by some feature ordered before the requiring one.
	RequiredCapabilities []*CapabilitySpec
	Refs                 []*FeatureReferenceSpec
	PackageDeps          []PackageDependency
	// StartsBranchAsParent forces a new branch before every feature of this spec.
	StartsBranchAsParent bool
}

// Param returns the named param spec or nil.
func (spec *FeatureSpec) Param(name string) *FeatureParameterSpec {
	for _, param := range spec.Params {
		if param.Name == name {
			return param
		}
	}

	return nil
}

// IDParams returns the params composing the feature identity, in declaration order.
func (spec *FeatureSpec) IDParams() []*FeatureParameterSpec {
	var params []*FeatureParameterSpec

	for _, param := range spec.Params {
		if param.FeatureID {
			params = append(params, param)
		}
	}

	return params
}

// HasIDParams reports whether features of this spec are identified.
func (spec *FeatureSpec) HasIDParams() bool {
	for _, param := range spec.Params {
		if param.FeatureID {
			return true
		}
	}

	return false
}

// Ref returns the named reference or nil.
func (spec *FeatureSpec) Ref(name string) *FeatureReferenceSpec {
	for _, ref := range spec.Refs {
		if ref.Name == name {
			return ref
		}
	}

	return nil
}
