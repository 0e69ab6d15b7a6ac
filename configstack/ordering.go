package configstack

import (
	"sort"
	"strings"

	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/internal/feature"
	"github.com/gruntwork-io/fpack/spec"
)

// OrderedConfig is the outcome of ordering a config.
type OrderedConfig struct {
	ID       spec.ConfigID
	Props    map[string]string
	Features []*feature.ResolvedFeature
	// Branches partition Features into runs without a forced boundary between them.
	Branches [][]*feature.ResolvedFeature
}

// circularRef describes a reference loop found while ordering. loopedOn is the feature the loop closed
// on, nextOnPath the feature on the loop path whose ordering runs next, firstInConfig the feature of the
// path included first into the config.
type circularRef struct {
	loopedOn      *feature.ResolvedFeature
	nextOnPath    *feature.ResolvedFeature
	firstInConfig *feature.ResolvedFeature
}

func newCircularRef(loopedOn *feature.ResolvedFeature) *circularRef {
	return &circularRef{loopedOn: loopedOn, nextOnPath: loopedOn, firstInConfig: loopedOn}
}

func (ref *circularRef) setNext(f *feature.ResolvedFeature) {
	ref.nextOnPath = f
	if ref.firstInConfig.IncludeNo > f.IncludeNo {
		ref.firstInConfig = f
	}
}

// capabilityRegistry maps capability names to their providers. A map is only allocated once a second
// name is registered.
type capabilityRegistry struct {
	firstName string
	first     *feature.CapabilityProviders
	byName    map[string]*feature.CapabilityProviders
}

func (reg *capabilityRegistry) get(name string) *feature.CapabilityProviders {
	if reg.byName != nil {
		return reg.byName[name]
	}

	if reg.first != nil && reg.firstName == name {
		return reg.first
	}

	return nil
}

func (reg *capabilityRegistry) getOrAdd(name string) *feature.CapabilityProviders {
	if providers := reg.get(name); providers != nil {
		return providers
	}

	providers := &feature.CapabilityProviders{}

	switch {
	case reg.first == nil:
		reg.firstName, reg.first = name, providers
	case reg.byName == nil:
		reg.byName = map[string]*feature.CapabilityProviders{reg.firstName: reg.first, name: providers}
	default:
		reg.byName[name] = providers
	}

	return providers
}

// OrderFeatures orders the features so that each one follows the capability providers, dependencies
// and referenced features it needs. Features closing a reference loop are ordered first and, when the
// loop runs through several of them, bracketed as a batch.
func (stack *Stack) OrderFeatures() (*OrderedConfig, error) {
	if len(stack.specOrder) > 0 {
		if err := stack.doOrder(); err != nil {
			return nil, errors.New(ConfigBuildError{Config: stack.ID, Err: err})
		}
	}

	return &OrderedConfig{
		ID:       stack.ID,
		Props:    stack.Props,
		Features: stack.orderedFeatures,
		Branches: stack.branches,
	}, nil
}

func (stack *Stack) doOrder() error {
	for _, sf := range stack.specOrder {
		if !sf.Spec.ProvidesCapabilities() {
			continue
		}

		for _, capSpec := range sf.Spec.Spec.ProvidedCapabilities {
			if capSpec.IsStatic() {
				stack.capProviders.getOrAdd(capSpec.String()).AddSpec(sf)
				continue
			}

			for _, f := range sf.Features {
				names, err := stack.capResolver.Resolve(capSpec, f)
				if err != nil {
					return err
				}

				for _, name := range names {
					stack.capProviders.getOrAdd(name).AddFeature(f)
				}
			}
		}
	}

	stack.orderedFeatures = make([]*feature.ResolvedFeature, 0, len(stack.features.list))
	stack.branches = [][]*feature.ResolvedFeature{nil}

	for _, sf := range stack.specOrder {
		if _, err := stack.orderFeaturesInSpec(sf, false); err != nil {
			return err
		}
	}

	if len(stack.branches[len(stack.branches)-1]) == 0 {
		stack.branches = stack.branches[:len(stack.branches)-1]
	}

	stack.logBranches()

	return nil
}

func (stack *Stack) logBranches() {
	for i, branch := range stack.branches {
		ids := make([]string, len(branch))
		for j, f := range branch {
			ids[j] = f.String()
		}

		stack.logger.Tracef("Config %s branch %d: %s", stack.ID, i+1, strings.Join(ids, ", "))
	}
}

// orderFeaturesInSpec orders the features of a spec until a loop is found. It returns the loops found,
// nil when there are none.
func (stack *Stack) orderFeaturesInSpec(sf *feature.SpecFeatures, force bool) ([]*circularRef, error) {
	if !force {
		if !sf.IsFree() {
			return nil, nil
		}

		sf.Schedule()
	}

	var loops []*circularRef

	for i := 0; i < len(sf.Features) && loops == nil; i++ {
		var err error
		if loops, err = stack.orderFeature(sf.Features[i]); err != nil {
			return nil, err
		}
	}

	if !force {
		sf.Free()
	}

	return loops, nil
}

// orderFeature orders the feature after what it depends on. When the feature is already being ordered
// higher up it returns a loop closing on it instead.
func (stack *Stack) orderFeature(f *feature.ResolvedFeature) ([]*circularRef, error) {
	if f.IsOrdered() {
		return nil, nil
	}

	if !f.IsFree() {
		return []*circularRef{newCircularRef(f)}, nil
	}

	f.Schedule()

	var (
		loops []*circularRef
		err   error
	)

	if f.Spec.RequiresCapabilities() {
		if loops, err = stack.orderCapabilityProviders(f, loops); err != nil {
			return nil, err
		}
	}

	if f.HasDeps() {
		depIDs := make([]spec.ResolvedFeatureID, len(f.Deps()))
		for i, dep := range f.Deps() {
			depIDs[i] = dep.ID
		}

		if loops, err = stack.orderReferencedFeatures(f, depIDs, false, loops); err != nil {
			return nil, err
		}
	}

	refIDs, err := f.ResolveRefs()
	if err != nil {
		return nil, err
	}

	if len(refIDs) > 0 {
		if loops, err = stack.orderReferencedFeatures(f, refIDs, true, loops); err != nil {
			return nil, err
		}
	}

	var initiated, propagated []*circularRef

	for _, loop := range loops {
		if loop.loopedOn == f {
			initiated = append(initiated, loop)
			continue
		}

		// f is in the middle of the loop, its origin decides
		loop.setNext(f)
		f.Free()

		propagated = append(propagated, loop)
	}

	if len(propagated) > 0 {
		return propagated, nil
	}

	if len(initiated) == 0 {
		stack.ordered(f)
		return nil, nil
	}

	return nil, stack.cutLoops(f, initiated)
}

// cutLoops orders the loops f initiated. When a feature of the loops was included into the config
// before f, ordering restarts from it, otherwise f is ordered first and the rest of the loops follow
// in the same batch.
func (stack *Stack) cutLoops(f *feature.ResolvedFeature, initiated []*circularRef) error {
	prevOrderRefSpec := stack.orderReferencedSpec
	stack.orderReferencedSpec = false

	defer func() { stack.orderReferencedSpec = prevOrderRefSpec }()

	sort.SliceStable(initiated, func(i, j int) bool {
		return initiated[i].firstInConfig.IncludeNo < initiated[j].firstInConfig.IncludeNo
	})

	if initiated[0].firstInConfig.IncludeNo < f.IncludeNo {
		f.Free()

		for _, loop := range initiated {
			loops, err := stack.orderFeature(loop.firstInConfig)
			if err != nil {
				return err
			}

			if loops != nil {
				panic("configstack: loop left unresolved after ordering from its first feature " + loop.firstInConfig.String())
			}
		}

		return nil
	}

	endBatch := false
	if !stack.inBatch {
		stack.inBatch = true
		f.StartBatch()
		stack.startNewBranch()

		endBatch = true
	}

	stack.ordered(f)

	sort.SliceStable(initiated, func(i, j int) bool {
		return initiated[i].nextOnPath.IncludeNo < initiated[j].nextOnPath.IncludeNo
	})

	for _, loop := range initiated {
		loops, err := stack.orderFeature(loop.nextOnPath)
		if err != nil {
			return err
		}

		if loops != nil {
			panic("configstack: loop left unresolved after ordering its cut point " + f.String())
		}
	}

	if endBatch {
		stack.inBatch = false
		stack.orderedFeatures[len(stack.orderedFeatures)-1].EndBatch()
		stack.startNewBranch()
	}

	return nil
}

func (stack *Stack) ordered(f *feature.ResolvedFeature) {
	f.MarkOrdered()

	if sf := stack.specFeatures[f.Spec.ID]; sf != nil {
		sf.FeatureOrdered()
	}

	if f.Spec.StartsBranchAsParent() {
		stack.startNewBranch()
	}

	stack.orderedFeatures = append(stack.orderedFeatures, f)
	last := len(stack.branches) - 1
	stack.branches[last] = append(stack.branches[last], f)
}

func (stack *Stack) startNewBranch() {
	if len(stack.branches[len(stack.branches)-1]) == 0 {
		return
	}

	stack.branches = append(stack.branches, nil)
}

func (stack *Stack) orderCapabilityProviders(f *feature.ResolvedFeature, loops []*circularRef) ([]*circularRef, error) {
	for _, capSpec := range f.Spec.Spec.RequiredCapabilities {
		names, err := stack.capResolver.Resolve(capSpec, f)
		if err != nil {
			return nil, err
		}

		for _, name := range names {
			providers := stack.capProviders.get(name)
			if providers == nil {
				return nil, errors.New(NoCapabilityProviderError{Feature: f.String(), Capability: capSpec.String(), Resolved: name})
			}

			providerLoops, err := stack.orderProviders(providers)
			if err != nil {
				return nil, err
			}

			loops = append(loops, providerLoops...)
		}
	}

	return loops, nil
}

// orderProviders orders providers until one of them is ordered. It returns the loops met by the first
// provider that could not be ordered.
func (stack *Stack) orderProviders(providers *feature.CapabilityProviders) ([]*circularRef, error) {
	if providers.IsProvided() {
		return nil, nil
	}

	var firstLoops []*circularRef

	for _, sf := range providers.Specs {
		loops, err := stack.orderFeaturesInSpec(sf, !sf.IsFree())
		if err != nil {
			return nil, err
		}

		if providers.IsProvided() {
			return nil, nil
		}

		if firstLoops == nil {
			firstLoops = loops
		}
	}

	for _, provider := range providers.Features {
		loops, err := stack.orderFeature(provider)
		if err != nil {
			return nil, err
		}

		if providers.IsProvided() {
			return nil, nil
		}

		if firstLoops == nil {
			firstLoops = loops
		}
	}

	return firstLoops, nil
}

func (stack *Stack) orderReferencedFeatures(f *feature.ResolvedFeature, refIDs []spec.ResolvedFeatureID, specRefs bool, loops []*circularRef) ([]*circularRef, error) {
	for _, refID := range refIDs {
		refLoops, err := stack.orderReferencedFeature(f, refID, specRefs)
		if err != nil {
			return nil, err
		}

		loops = append(loops, refLoops...)
	}

	return loops, nil
}

// orderReferencedFeature orders a dependency or, with specRef, a referenced feature. A reference onto
// another spec orders the features of that spec first unless loops are being cut.
func (stack *Stack) orderReferencedFeature(f *feature.ResolvedFeature, refID spec.ResolvedFeatureID, specRef bool) ([]*circularRef, error) {
	if stack.orderReferencedSpec && specRef && f.Spec.ID != refID.Spec {
		target := stack.specFeatures[refID.Spec]
		if target == nil {
			return nil, errors.New(UnresolvedFeatureDependencyError{Feature: f.String(), Dependency: refID})
		}

		specLoops, err := stack.orderFeaturesInSpec(target, false)
		if err != nil {
			return nil, err
		}

		var featureLoops []*circularRef

		for _, loop := range specLoops {
			if loop.nextOnPath.ID == refID {
				featureLoops = append(featureLoops, loop)
			}
		}

		if featureLoops != nil {
			return featureLoops, nil
		}
	}

	dep := stack.features.get(refID)
	if dep == nil {
		return nil, errors.New(UnresolvedFeatureDependencyError{Feature: f.String(), Dependency: refID})
	}

	return stack.orderFeature(dep)
}
