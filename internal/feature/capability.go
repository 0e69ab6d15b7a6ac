package feature

import (
	"strings"

	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/spec"
)

const (
	listPrefix    = "["
	listSuffix    = "]"
	listSeparator = ","
)

// CapabilityResolver turns capability specs into the capability names a feature provides or requires.
type CapabilityResolver struct{}

// Resolve returns the names the capability resolves to for the feature. A param element whose value is a
// list, e.g. `[a,b]`, yields one name per list item. An optional capability referencing an unset param
// resolves to no names.
func (CapabilityResolver) Resolve(capSpec *spec.CapabilitySpec, feature *ResolvedFeature) ([]string, error) {
	names := []string{""}

	for i, elem := range capSpec.Elements {
		values := []string{elem.Value}

		if elem.Param {
			value, ok := feature.Param(elem.Value)
			if !ok || value == "" {
				if capSpec.Optional {
					return nil, nil
				}

				return nil, errors.New(CapabilityResolutionError{Capability: capSpec.String(), Feature: feature.String(), Param: elem.Value})
			}

			values = splitList(value)
			if len(values) == 0 {
				return nil, nil
			}
		}

		next := make([]string, 0, len(names)*len(values))

		for _, prefix := range names {
			for _, value := range values {
				if i > 0 {
					next = append(next, prefix+"."+value)
				} else {
					next = append(next, value)
				}
			}
		}

		names = next
	}

	return names, nil
}

func splitList(value string) []string {
	if !strings.HasPrefix(value, listPrefix) || !strings.HasSuffix(value, listSuffix) {
		return []string{value}
	}

	var items []string

	for _, item := range strings.Split(value[len(listPrefix):len(value)-len(listSuffix)], listSeparator) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

// SpecFeatures are the features of one spec in a config, in include order.
type SpecFeatures struct {
	Spec     *ResolvedSpec
	Features []*ResolvedFeature

	scheduled bool
	providers []*CapabilityProviders
}

func NewSpecFeatures(rs *ResolvedSpec) *SpecFeatures {
	return &SpecFeatures{Spec: rs}
}

// Add appends a feature.
func (sf *SpecFeatures) Add(feature *ResolvedFeature) {
	sf.Features = append(sf.Features, feature)
}

func (sf *SpecFeatures) IsFree() bool {
	return !sf.scheduled
}

// Schedule marks the spec as being ordered.
func (sf *SpecFeatures) Schedule() {
	sf.scheduled = true
}

// Free puts the spec back so it can be scheduled again.
func (sf *SpecFeatures) Free() {
	sf.scheduled = false
}

// FeatureOrdered marks the capabilities the spec provides statically as provided.
func (sf *SpecFeatures) FeatureOrdered() {
	for _, providers := range sf.providers {
		providers.provided = true
	}
}

// CapabilityProviders are the specs and features providing one capability. Specs provide it through
// each of their features.
type CapabilityProviders struct {
	Specs    []*SpecFeatures
	Features []*ResolvedFeature

	provided bool
}

// AddSpec registers a spec providing the capability with every feature.
func (cp *CapabilityProviders) AddSpec(sf *SpecFeatures) {
	cp.Specs = append(cp.Specs, sf)
	sf.providers = append(sf.providers, cp)
}

// AddFeature registers a feature providing the capability.
func (cp *CapabilityProviders) AddFeature(feature *ResolvedFeature) {
	cp.Features = append(cp.Features, feature)
	feature.providers = append(feature.providers, cp)
}

// IsProvided reports whether a provider has been ordered.
func (cp *CapabilityProviders) IsProvided() bool {
	return cp.provided
}
