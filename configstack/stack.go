// Package configstack builds the feature set of one config: nested feature group scopes are pushed and
// popped while features are included, filtered and merged, then the features are ordered so that every
// feature follows what it depends on.
package configstack

import (
	"reflect"

	"dario.cat/mergo"

	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/internal/feature"
	"github.com/gruntwork-io/fpack/pkg/log"
	"github.com/gruntwork-io/fpack/spec"
)

// scope is a config pushed on the stack with the feature groups currently open in it.
type scope struct {
	config        *spec.ConfigModel
	pushedFgScope bool
	groupStack    []*GroupConfig
}

func (sc *scope) isFilteredOut(specID spec.ResolvedSpecID, id spec.ResolvedFeatureID) bool {
	included := false

	for i := len(sc.groupStack) - 1; i >= 0; i-- {
		gc := sc.groupStack[i]

		if gc.InheritFeatures {
			if gc.isFeatureExcluded(id) {
				return true
			}

			if gc.isSpecExcluded(specID) {
				if gc.isFeatureIncluded(id) {
					included = true
					continue
				}

				return true
			}

			continue
		}

		if gc.isFeatureIncluded(id) {
			included = true
			continue
		}

		if !gc.isSpecIncluded(specID) || gc.isFeatureExcluded(id) {
			return true
		}

		included = true
	}

	if included {
		return false
	}

	return sc.config != nil && !sc.config.InheritFeatures
}

func (sc *scope) isRelevant(gc *GroupConfig) bool {
	for i := len(sc.groupStack) - 1; i >= 0; i-- {
		stacked := sc.groupStack[i]
		if stacked.Name == "" || stacked.Name != gc.Name || stacked.Gav != gc.Gav {
			continue
		}

		return !gc.IsSubsetOf(stacked)
	}

	return true
}

// featureMap is an insertion ordered map of identified features.
type featureMap struct {
	index map[spec.ResolvedFeatureID]*feature.ResolvedFeature
	list  []*feature.ResolvedFeature
}

func newFeatureMap() *featureMap {
	return &featureMap{index: make(map[spec.ResolvedFeatureID]*feature.ResolvedFeature)}
}

func (fm *featureMap) get(id spec.ResolvedFeatureID) *feature.ResolvedFeature {
	return fm.index[id]
}

func (fm *featureMap) put(f *feature.ResolvedFeature) {
	if existing, ok := fm.index[f.ID]; ok {
		for i := range fm.list {
			if fm.list[i] == existing {
				fm.list[i] = f
				break
			}
		}
	} else {
		fm.list = append(fm.list, f)
	}

	fm.index[f.ID] = f
}

func (fm *featureMap) clear() {
	clear(fm.index)
	fm.list = nil
}

func (fm *featureMap) isEmpty() bool {
	return len(fm.list) == 0
}

// Stack accumulates the features of one config. The bottom scope exists for the lifetime of the stack.
type Stack struct {
	ID         spec.ConfigID
	Props      map[string]string
	ConfigDeps map[string]spec.ConfigID

	logger log.Logger

	specFeatures map[spec.ResolvedSpecID]*feature.SpecFeatures
	specOrder    []*feature.SpecFeatures
	fgFeatures   []*featureMap
	lastFg       int
	features     *featureMap
	includeCount int

	scopes    []*scope
	lastScope *scope

	capResolver  feature.CapabilityResolver
	capProviders capabilityRegistry

	orderedFeatures     []*feature.ResolvedFeature
	orderReferencedSpec bool
	inBatch             bool
	branches            [][]*feature.ResolvedFeature
}

func NewStack(id spec.ConfigID, opts ...Option) *Stack {
	stack := &Stack{
		ID:                  id,
		Props:               make(map[string]string),
		ConfigDeps:          make(map[string]spec.ConfigID),
		logger:              log.Default(),
		specFeatures:        make(map[spec.ResolvedSpecID]*feature.SpecFeatures),
		lastFg:              -1,
		orderReferencedSpec: true,
	}

	stack.lastScope = &scope{}
	stack.scopes = []*scope{stack.lastScope}
	stack.newFgScope()

	return stack.WithOptions(opts...)
}

func (stack *Stack) WithOptions(opts ...Option) *Stack {
	for _, opt := range opts {
		opt(stack)
	}

	return stack
}

// OverwriteProps sets the given props, replacing existing values.
func (stack *Stack) OverwriteProps(props map[string]string) {
	for name, value := range props {
		stack.Props[name] = value
	}
}

// OverwriteConfigDeps sets the given config dependencies, replacing existing ones.
func (stack *Stack) OverwriteConfigDeps(deps map[string]spec.ConfigID) {
	for name, id := range deps {
		stack.ConfigDeps[name] = id
	}
}

// PushConfig opens a scope for a config model whose body resolved to gc.
func (stack *Stack) PushConfig(model *spec.ConfigModel, gc *GroupConfig) {
	stack.lastScope = &scope{config: model, pushedFgScope: true, groupStack: []*GroupConfig{gc}}
	stack.scopes = append(stack.scopes, stack.lastScope)
	stack.newFgScope()
}

// PopConfig closes the last config scope. It returns the model and the group configs still open in the
// scope, innermost first, so their included features can be processed.
func (stack *Stack) PopConfig() (*spec.ConfigModel, []*GroupConfig) {
	if len(stack.scopes) == 1 {
		panic("configstack: the bottom scope cannot be popped")
	}

	popped := stack.lastScope
	stack.scopes = stack.scopes[:len(stack.scopes)-1]
	stack.lastScope = stack.scopes[len(stack.scopes)-1]

	if popped.pushedFgScope {
		stack.mergeFgScope()
	}

	open := make([]*GroupConfig, 0, len(popped.groupStack))
	for i := len(popped.groupStack) - 1; i >= 0; i-- {
		open = append(open, popped.groupStack[i])
	}

	return popped.config, open
}

// PushGroup opens a scope for a feature group. It returns false, pushing nothing, when an identical or
// broader instance of the group is already open.
func (stack *Stack) PushGroup(gc *GroupConfig) bool {
	if gc.Name != "" && !stack.isRelevant(gc) {
		return false
	}

	stack.lastScope.groupStack = append(stack.lastScope.groupStack, gc)
	stack.newFgScope()

	return true
}

// PopGroup closes the last feature group scope merging its features into the enclosing scope, and
// returns the popped group config.
func (stack *Stack) PopGroup() *GroupConfig {
	groups := stack.lastScope.groupStack
	if len(groups) == 0 {
		panic("configstack: feature group stack is empty")
	}

	stack.mergeFgScope()

	last := groups[len(groups)-1]
	stack.lastScope.groupStack = groups[:len(groups)-1]

	return last
}

func (stack *Stack) newFgScope() {
	stack.lastFg++

	if len(stack.fgFeatures) == stack.lastFg {
		stack.features = newFeatureMap()
		stack.fgFeatures = append(stack.fgFeatures, stack.features)

		return
	}

	stack.features = stack.fgFeatures[stack.lastFg]
}

func (stack *Stack) mergeFgScope() {
	if stack.lastFg <= 0 {
		return
	}

	endedGroup := stack.fgFeatures[stack.lastFg]
	stack.lastFg--
	parentGroup := stack.fgFeatures[stack.lastFg]

	for _, f := range endedGroup.list {
		parentFeature := parentGroup.get(f.ID)
		if parentFeature != nil {
			parentFeature.Merge(f, true)
			continue
		}

		parentGroup.put(f)

		if stack.lastFg == 0 {
			stack.addToSpecFeatures(f)
		}
	}

	endedGroup.clear()
	stack.features = parentGroup
}

// Includes reports whether the current scope contains the feature.
func (stack *Stack) Includes(id spec.ResolvedFeatureID) bool {
	return stack.features.get(id) != nil
}

// Feature returns the feature of the current scope or nil.
func (stack *Stack) Feature(id spec.ResolvedFeatureID) *feature.ResolvedFeature {
	return stack.features.get(id)
}

// AddFeature adds a feature to the current scope. Features without an id are never merged.
func (stack *Stack) AddFeature(f *feature.ResolvedFeature) {
	if !f.HasID() {
		stack.addToSpecFeatures(f)
		return
	}

	stack.features.put(f)

	if stack.lastFg == 0 {
		stack.addToSpecFeatures(f)
	}
}

// IncludeFeature merges the params and dependencies into the feature with the same id in the current
// scope, or adds a new feature.
func (stack *Stack) IncludeFeature(id spec.ResolvedFeatureID, rs *feature.ResolvedSpec, params map[string]string, deps []feature.Dependency) *feature.ResolvedFeature {
	if !id.IsZero() {
		if f := stack.features.get(id); f != nil {
			f.MergeValues(params, deps, true)
			return f
		}
	}

	stack.includeCount++
	f := feature.New(id, rs, params, deps, stack.includeCount)
	stack.AddFeature(f)

	return f
}

// IsFilteredOut reports whether the open scopes exclude the feature. id is zero for features without
// id params.
func (stack *Stack) IsFilteredOut(specID spec.ResolvedSpecID, id spec.ResolvedFeatureID) bool {
	for i := len(stack.scopes) - 1; i >= 0; i-- {
		if stack.scopes[i].isFilteredOut(specID, id) {
			return true
		}
	}

	return false
}

// IsReincluded reports whether an open group excludes the spec of the feature and includes the feature
// back by id.
func (stack *Stack) IsReincluded(id spec.ResolvedFeatureID) bool {
	if id.IsZero() {
		return false
	}

	for _, sc := range stack.scopes {
		for _, gc := range sc.groupStack {
			if gc.isSpecExcluded(id.Spec) && gc.isFeatureIncluded(id) {
				return true
			}
		}
	}

	return false
}

// Customizations returns the customizing includes of the feature in the open scopes, innermost first.
func (stack *Stack) Customizations(id spec.ResolvedFeatureID) []*IncludedFeature {
	var result []*IncludedFeature

	for i := len(stack.scopes) - 1; i >= 0; i-- {
		groups := stack.scopes[i].groupStack
		for j := len(groups) - 1; j >= 0; j-- {
			if included := groups[j].IncludedFeature(id); included != nil && included.Params != nil {
				result = append(result, included)
			}
		}
	}

	return result
}

func (stack *Stack) isRelevant(gc *GroupConfig) bool {
	for i := len(stack.scopes) - 1; i >= 0; i-- {
		if !stack.scopes[i].isRelevant(gc) {
			return false
		}
	}

	return true
}

// Merge adds the outcome of another stack built for the same config. Props and config dependencies
// already set are kept, as are the params of features present in both. Added features are copies, so
// one stack may be merged into several.
func (stack *Stack) Merge(other *Stack) error {
	if err := mergo.Merge(&stack.Props, other.Props, mergo.WithTransformers(keepExistingKeys{})); err != nil {
		return errors.New(err)
	}

	for name, id := range other.ConfigDeps {
		if _, ok := stack.ConfigDeps[name]; !ok {
			stack.ConfigDeps[name] = id
		}
	}

	for _, sf := range other.specOrder {
		for _, f := range sf.Features {
			if !f.HasID() {
				stack.includeCount++
				stack.addToSpecFeatures(f.Copy(stack.includeCount))

				continue
			}

			if local := stack.features.get(f.ID); local != nil {
				local.Merge(f, false)
				continue
			}

			stack.includeCount++
			f = f.Copy(stack.includeCount)
			stack.features.put(f)
			stack.addToSpecFeatures(f)
		}
	}

	return nil
}

// keepExistingKeys merges string maps without replacing a key already present, even when its value
// is empty.
type keepExistingKeys struct{}

func (keepExistingKeys) Transformer(typ reflect.Type) func(dst, src reflect.Value) error {
	if typ != reflect.TypeFor[map[string]string]() {
		return nil
	}

	return func(dst, src reflect.Value) error {
		iter := src.MapRange()
		for iter.Next() {
			if !dst.MapIndex(iter.Key()).IsValid() {
				dst.SetMapIndex(iter.Key(), iter.Value())
			}
		}

		return nil
	}
}

// IsEmpty reports whether the stack holds no feature.
func (stack *Stack) IsEmpty() bool {
	return len(stack.specOrder) == 0
}

// Features returns the features grouped by spec, specs in the order their first feature was added.
func (stack *Stack) Features() []*feature.SpecFeatures {
	return stack.specOrder
}

func (stack *Stack) addToSpecFeatures(f *feature.ResolvedFeature) {
	sf, ok := stack.specFeatures[f.Spec.ID]
	if !ok {
		sf = feature.NewSpecFeatures(f.Spec)
		stack.specFeatures[f.Spec.ID] = sf
		stack.specOrder = append(stack.specOrder, sf)
	}

	sf.Add(f)
}
