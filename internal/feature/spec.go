// Package feature contains the resolved feature model: feature instances bound to a config, their
// specs bound to a feature-pack, and capability resolution.
package feature

import (
	"github.com/gruntwork-io/fpack/spec"
)

// ResolvedSpec is a feature spec bound to the feature-pack declaring it, with the targets of its
// references resolved.
type ResolvedSpec struct {
	ID   spec.ResolvedSpecID
	Spec *spec.FeatureSpec

	refTargets map[string]*ResolvedSpec
}

func NewResolvedSpec(id spec.ResolvedSpecID, featureSpec *spec.FeatureSpec) *ResolvedSpec {
	return &ResolvedSpec{
		ID:         id,
		Spec:       featureSpec,
		refTargets: make(map[string]*ResolvedSpec),
	}
}

// SetRefTarget binds the named reference to the spec it points at.
func (rs *ResolvedSpec) SetRefTarget(name string, target *ResolvedSpec) {
	rs.refTargets[name] = target
}

// RefTarget returns the spec the named reference points at or nil when it is not bound.
func (rs *ResolvedSpec) RefTarget(name string) *ResolvedSpec {
	return rs.refTargets[name]
}

// HasIDParams reports whether features of the spec are identified.
func (rs *ResolvedSpec) HasIDParams() bool {
	return rs.Spec.HasIDParams()
}

func (rs *ResolvedSpec) ProvidesCapabilities() bool {
	return len(rs.Spec.ProvidedCapabilities) > 0
}

func (rs *ResolvedSpec) RequiresCapabilities() bool {
	return len(rs.Spec.RequiredCapabilities) > 0
}

func (rs *ResolvedSpec) StartsBranchAsParent() bool {
	return rs.Spec.StartsBranchAsParent
}

func (rs *ResolvedSpec) String() string {
	return rs.ID.String()
}
