package feature

import (
	"sort"

	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/spec"
)

// State is the ordering state of a feature.
type State int

const (
	Free State = iota
	Scheduled
	Ordered
)

func (state State) String() string {
	switch state {
	case Free:
		return "free"
	case Scheduled:
		return "scheduled"
	case Ordered:
		return "ordered"
	}

	return "unknown"
}

// Dependency is an explicit dependency edge of a feature.
type Dependency struct {
	ID      spec.ResolvedFeatureID
	Include bool
}

// ResolvedFeature is a feature instance of a config. Features with the same id included more than
// once in a config are merged into one instance; features of specs without id params never are.
type ResolvedFeature struct {
	// ID is zero for features of specs without id params.
	ID   spec.ResolvedFeatureID
	Spec *ResolvedSpec
	// IncludeNo records the order in which features were first included into the config.
	IncludeNo int

	params    map[string]string
	deps      []Dependency
	depIndex  map[spec.ResolvedFeatureID]int
	state     State
	batch     batchMarks
	providers []*CapabilityProviders
}

type batchMarks struct {
	start, end bool
}

// New returns a free feature. params holds the explicitly set params only, defaults are applied by
// EffectiveParams.
func New(id spec.ResolvedFeatureID, rs *ResolvedSpec, params map[string]string, deps []Dependency, includeNo int) *ResolvedFeature {
	feature := &ResolvedFeature{
		ID:        id,
		Spec:      rs,
		IncludeNo: includeNo,
		params:    make(map[string]string, len(params)),
		depIndex:  make(map[spec.ResolvedFeatureID]int, len(deps)),
	}

	for name, value := range params {
		feature.params[name] = value
	}

	feature.mergeDeps(deps, true)

	return feature
}

// HasID reports whether the feature is identified.
func (feature *ResolvedFeature) HasID() bool {
	return !feature.ID.IsZero()
}

// Param returns the effective value of the named param: the explicit value or the spec default.
func (feature *ResolvedFeature) Param(name string) (string, bool) {
	if value, ok := feature.params[name]; ok {
		return value, true
	}

	if paramSpec := feature.Spec.Spec.Param(name); paramSpec != nil {
		return paramSpec.DefaultValue()
	}

	return "", false
}

// ExplicitParam returns the value of the named param when it was set explicitly.
func (feature *ResolvedFeature) ExplicitParam(name string) (string, bool) {
	value, ok := feature.params[name]
	return value, ok
}

// SetParam sets a param explicitly.
func (feature *ResolvedFeature) SetParam(name, value string) {
	feature.params[name] = value
}

// UnsetParam removes an explicit value so the spec default applies again.
func (feature *ResolvedFeature) UnsetParam(name string) {
	delete(feature.params, name)
}

// ExplicitParams returns a copy of the explicitly set params.
func (feature *ResolvedFeature) ExplicitParams() map[string]string {
	result := make(map[string]string, len(feature.params))
	for name, value := range feature.params {
		result[name] = value
	}

	return result
}

// EffectiveParams returns the explicit params completed with the spec defaults.
func (feature *ResolvedFeature) EffectiveParams() map[string]string {
	result := feature.ExplicitParams()

	for _, paramSpec := range feature.Spec.Spec.Params {
		if _, ok := result[paramSpec.Name]; ok {
			continue
		}

		if value, ok := paramSpec.DefaultValue(); ok {
			result[paramSpec.Name] = value
		}
	}

	return result
}

// CheckParams returns an error for the first param, in spec order, that is neither nillable nor set.
func (feature *ResolvedFeature) CheckParams() error {
	for _, paramSpec := range feature.Spec.Spec.Params {
		if paramSpec.Nillable {
			continue
		}

		if _, ok := feature.Param(paramSpec.Name); !ok {
			return errors.New(ParamNotSetError{Feature: feature.String(), Param: paramSpec.Name})
		}
	}

	return nil
}

// Deps returns the explicit dependency edges in the order they were added.
func (feature *ResolvedFeature) Deps() []Dependency {
	return feature.deps
}

// HasDeps reports whether the feature has explicit dependencies.
func (feature *ResolvedFeature) HasDeps() bool {
	return len(feature.deps) > 0
}

// Merge merges another instance of the same feature. With override the params and dependency edges of
// other replace the existing ones, otherwise only those not set yet are added.
func (feature *ResolvedFeature) Merge(other *ResolvedFeature, override bool) {
	feature.MergeValues(other.params, other.deps, override)
}

// MergeValues merges explicit params and dependency edges, see Merge.
func (feature *ResolvedFeature) MergeValues(params map[string]string, deps []Dependency, override bool) {
	for name, value := range params {
		if _, ok := feature.params[name]; ok && !override {
			continue
		}

		feature.params[name] = value
	}

	feature.mergeDeps(deps, override)
}

func (feature *ResolvedFeature) mergeDeps(deps []Dependency, override bool) {
	for _, dep := range deps {
		if i, ok := feature.depIndex[dep.ID]; ok {
			if override {
				feature.deps[i] = dep
			}

			continue
		}

		feature.depIndex[dep.ID] = len(feature.deps)
		feature.deps = append(feature.deps, dep)
	}
}

// Copy returns a free copy of the feature with a new include number.
func (feature *ResolvedFeature) Copy(includeNo int) *ResolvedFeature {
	return New(feature.ID, feature.Spec, feature.params, feature.deps, includeNo)
}

// RefID returns the id of the feature the reference points at. It reports false when the reference
// is nillable and one of its mapped params is not set.
func (feature *ResolvedFeature) RefID(ref *spec.FeatureReferenceSpec) (spec.ResolvedFeatureID, bool, error) {
	target := feature.Spec.RefTarget(ref.Name)
	if target == nil {
		return spec.ResolvedFeatureID{}, false, errors.New(UnresolvedRefTargetError{Feature: feature.String(), Ref: ref.Name})
	}

	mappings := ref.Mappings
	if len(mappings) == 0 {
		for _, paramSpec := range target.Spec.IDParams() {
			mappings = append(mappings, spec.RefMapping{Param: paramSpec.Name, TargetParam: paramSpec.Name})
		}
	}

	params := make(map[string]string, len(mappings))

	for _, mapping := range mappings {
		value, ok := feature.Param(mapping.Param)
		if !ok {
			if ref.Nillable {
				return spec.ResolvedFeatureID{}, false, nil
			}

			return spec.ResolvedFeatureID{}, false, errors.New(RefParamNotSetError{Feature: feature.String(), Ref: ref.Name, Param: mapping.Param})
		}

		params[mapping.TargetParam] = value
	}

	return spec.NewResolvedFeatureID(target.ID, params), true, nil
}

// ResolveRefs returns the ids of the referenced features in reference declaration order.
func (feature *ResolvedFeature) ResolveRefs() ([]spec.ResolvedFeatureID, error) {
	var ids []spec.ResolvedFeatureID

	for _, ref := range feature.Spec.Spec.Refs {
		id, ok, err := feature.RefID(ref)
		if err != nil {
			return nil, err
		}

		if ok {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

func (feature *ResolvedFeature) IsFree() bool {
	return feature.state == Free
}

func (feature *ResolvedFeature) IsOrdered() bool {
	return feature.state == Ordered
}

// Schedule marks the feature as being ordered.
func (feature *ResolvedFeature) Schedule() {
	feature.state = Scheduled
}

// Free puts the feature back so it can be scheduled again.
func (feature *ResolvedFeature) Free() {
	feature.state = Free
}

// MarkOrdered marks the feature as ordered and the capabilities it provides as provided.
func (feature *ResolvedFeature) MarkOrdered() {
	feature.state = Ordered

	for _, providers := range feature.providers {
		providers.provided = true
	}
}

// StartBatch marks the feature as the first of a batch.
func (feature *ResolvedFeature) StartBatch() {
	feature.batch.start = true
}

// EndBatch marks the feature as the last of a batch.
func (feature *ResolvedFeature) EndBatch() {
	feature.batch.end = true
}

func (feature *ResolvedFeature) StartsBatch() bool {
	return feature.batch.start
}

func (feature *ResolvedFeature) EndsBatch() bool {
	return feature.batch.end
}

// SortedParams returns the effective params ordered by name.
func (feature *ResolvedFeature) SortedParams() []spec.Param {
	params := feature.EffectiveParams()
	if len(params) == 0 {
		return nil
	}

	result := make([]spec.Param, 0, len(params))
	for name, value := range params {
		result = append(result, spec.Param{Name: name, Value: value})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result
}

func (feature *ResolvedFeature) String() string {
	if feature.HasID() {
		return feature.ID.String()
	}

	return feature.Spec.ID.String()
}
