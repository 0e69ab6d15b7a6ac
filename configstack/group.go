package configstack

import (
	"maps"

	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/spec"
)

// IncludedFeature re-includes a feature. Params, when not nil, customize the feature and declare it
// when the group body does not.
type IncludedFeature struct {
	ID     spec.ResolvedFeatureID
	Params map[string]string
}

// GroupConfig is the filter a feature group, or a config body, applies to the features included
// while it is on the stack.
type GroupConfig struct {
	// Gav is the feature-pack the group was resolved against.
	Gav coords.Gav
	// Name is empty for config bodies.
	Name            string
	InheritFeatures bool

	includedSpecs    map[spec.ResolvedSpecID]struct{}
	excludedSpecs    map[spec.ResolvedSpecID]struct{}
	includedFeatures []*IncludedFeature
	includedIndex    map[spec.ResolvedFeatureID]*IncludedFeature
	excludedFeatures map[spec.ResolvedFeatureID]struct{}
}

func NewGroupConfig(gav coords.Gav, name string, inheritFeatures bool) *GroupConfig {
	return &GroupConfig{
		Gav:              gav,
		Name:             name,
		InheritFeatures:  inheritFeatures,
		includedSpecs:    make(map[spec.ResolvedSpecID]struct{}),
		excludedSpecs:    make(map[spec.ResolvedSpecID]struct{}),
		includedIndex:    make(map[spec.ResolvedFeatureID]*IncludedFeature),
		excludedFeatures: make(map[spec.ResolvedFeatureID]struct{}),
	}
}

func (gc *GroupConfig) IncludeSpec(id spec.ResolvedSpecID) {
	gc.includedSpecs[id] = struct{}{}
}

func (gc *GroupConfig) ExcludeSpec(id spec.ResolvedSpecID) {
	gc.excludedSpecs[id] = struct{}{}
}

// IncludeFeature re-includes a feature, replacing an earlier include of the same id.
func (gc *GroupConfig) IncludeFeature(id spec.ResolvedFeatureID, params map[string]string) {
	if existing, ok := gc.includedIndex[id]; ok {
		existing.Params = params
		return
	}

	included := &IncludedFeature{ID: id, Params: params}
	gc.includedFeatures = append(gc.includedFeatures, included)
	gc.includedIndex[id] = included
}

func (gc *GroupConfig) ExcludeFeature(id spec.ResolvedFeatureID) {
	gc.excludedFeatures[id] = struct{}{}
}

// IncludedFeatures returns the re-included features in declaration order.
func (gc *GroupConfig) IncludedFeatures() []*IncludedFeature {
	return gc.includedFeatures
}

// IncludedFeature returns the include of the feature or nil.
func (gc *GroupConfig) IncludedFeature(id spec.ResolvedFeatureID) *IncludedFeature {
	return gc.includedIndex[id]
}

func (gc *GroupConfig) isSpecIncluded(id spec.ResolvedSpecID) bool {
	_, ok := gc.includedSpecs[id]
	return ok
}

func (gc *GroupConfig) isSpecExcluded(id spec.ResolvedSpecID) bool {
	_, ok := gc.excludedSpecs[id]
	return ok
}

func (gc *GroupConfig) isFeatureIncluded(id spec.ResolvedFeatureID) bool {
	if id.IsZero() {
		return false
	}

	_, ok := gc.includedIndex[id]

	return ok
}

func (gc *GroupConfig) isFeatureExcluded(id spec.ResolvedFeatureID) bool {
	if id.IsZero() {
		return false
	}

	_, ok := gc.excludedFeatures[id]

	return ok
}

// admits applies the filter of this group alone.
func (gc *GroupConfig) admits(specID spec.ResolvedSpecID, id spec.ResolvedFeatureID) bool {
	if gc.InheritFeatures {
		if gc.isFeatureExcluded(id) {
			return false
		}

		return !gc.isSpecExcluded(specID) || gc.isFeatureIncluded(id)
	}

	if gc.isFeatureIncluded(id) {
		return true
	}

	return gc.isSpecIncluded(specID) && !gc.isFeatureExcluded(id)
}

// IsSubsetOf reports whether every feature this config admits is also admitted by other with the same
// customizations.
func (gc *GroupConfig) IsSubsetOf(other *GroupConfig) bool {
	if gc.InheritFeatures && !other.InheritFeatures {
		return false
	}

	for _, included := range gc.includedFeatures {
		if !other.admits(included.ID.Spec, included.ID) {
			return false
		}

		if included.Params == nil {
			continue
		}

		otherIncluded := other.IncludedFeature(included.ID)
		if otherIncluded == nil || !maps.Equal(otherIncluded.Params, included.Params) {
			return false
		}
	}

	if gc.InheritFeatures {
		for specID := range other.excludedSpecs {
			if !gc.isSpecExcluded(specID) {
				return false
			}
		}

		for id := range other.excludedFeatures {
			if gc.admits(id.Spec, id) {
				return false
			}
		}

		return true
	}

	for specID := range gc.includedSpecs {
		if other.InheritFeatures && other.isSpecExcluded(specID) {
			return false
		}

		if !other.InheritFeatures && !other.isSpecIncluded(specID) {
			return false
		}
	}

	for id := range other.excludedFeatures {
		if gc.admits(id.Spec, id) {
			return false
		}
	}

	return true
}
