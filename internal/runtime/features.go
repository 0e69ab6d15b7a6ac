package runtime

import (
	"context"
	"maps"
	"sort"

	"github.com/gruntwork-io/fpack/configstack"
	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/internal/feature"
	"github.com/gruntwork-io/fpack/spec"
)

// groupConfig resolves the filters of a config body or feature group reference against fp.
func (b *Builder) groupConfig(ctx context.Context, fp *fpBuilder, name string, fgs *spec.FeatureGroupSupport) (*configstack.GroupConfig, error) {
	var gav coords.Gav
	if fp != nil {
		gav = fp.gav
	}

	gc := configstack.NewGroupConfig(gav, name, fgs.InheritFeatures)

	for _, id := range fgs.IncludedSpecs {
		rs, err := b.resolveSpec(ctx, fp, id)
		if err != nil {
			return nil, err
		}

		gc.IncludeSpec(rs.ID)
	}

	for _, id := range fgs.ExcludedSpecs {
		rs, err := b.resolveSpec(ctx, fp, id)
		if err != nil {
			return nil, err
		}

		gc.ExcludeSpec(rs.ID)
	}

	for _, included := range fgs.IncludedFeatures {
		_, id, err := b.resolveFeatureID(ctx, fp, included.ID)
		if err != nil {
			return nil, err
		}

		gc.IncludeFeature(id, included.Params)
	}

	for _, excluded := range fgs.ExcludedFeatures {
		_, id, err := b.resolveFeatureID(ctx, fp, excluded)
		if err != nil {
			return nil, err
		}

		gc.ExcludeFeature(id)
	}

	return gc, nil
}

func (b *Builder) processItems(ctx context.Context, stack *configstack.Stack, fp *fpBuilder, items []spec.ConfigItem) error {
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return errors.New(err)
		}

		var err error

		switch item := item.(type) {
		case *spec.FeatureConfig:
			err = b.processFeature(ctx, stack, fp, item)
		case *spec.FeatureGroup:
			err = b.processGroup(ctx, stack, fp, item)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// processGroup includes the features of a referenced group with the filters of the reference applied.
// The group definition contributes its items and package dependencies.
func (b *Builder) processGroup(ctx context.Context, stack *configstack.Stack, fp *fpBuilder, ref *spec.FeatureGroup) error {
	target, group, err := b.resolveGroup(ctx, fp, ref)
	if err != nil {
		return err
	}

	gc, err := b.groupConfig(ctx, target, ref.Name, &ref.FeatureGroupSupport)
	if err != nil {
		return err
	}

	if !stack.PushGroup(gc) {
		b.logger.Tracef("Feature group %s of %s is already included in config %s", ref.Name, target.gav, stack.ID)
		return nil
	}

	if err := b.resolvePackageDeps(ctx, target, group.PackageDeps); err != nil {
		return errors.New(FeatureGroupConfigError{Gav: target.gav, Group: ref.Name, Err: err})
	}

	if err := b.processItems(ctx, stack, target, group.Items); err != nil {
		return err
	}

	return b.processIncludedFeatures(ctx, stack, []*configstack.GroupConfig{stack.PopGroup()})
}

func (b *Builder) processFeature(ctx context.Context, stack *configstack.Stack, fp *fpBuilder, fc *spec.FeatureConfig) error {
	rs, err := b.resolveSpec(ctx, fp, fc.Spec)
	if err != nil {
		return err
	}

	id, err := featureID(rs, fc.Params)
	if err != nil {
		return err
	}

	if stack.IsFilteredOut(rs.ID, id) {
		b.logger.Tracef("Feature of %s is filtered out of config %s", rs.ID, stack.ID)
		return nil
	}

	if err := checkUnknownParams(rs, fc.Params); err != nil {
		return err
	}

	params := maps.Clone(fc.Params)
	if params == nil {
		params = make(map[string]string)
	}

	customized := make(map[string]bool)

	if !id.IsZero() {
		// innermost first so the enclosing scopes override
		for _, included := range stack.Customizations(id) {
			if err := checkUnknownParams(rs, included.Params); err != nil {
				return err
			}

			for name, value := range included.Params {
				params[name] = value
				customized[name] = true
			}
		}

		if stack.IsReincluded(id) {
			for _, paramSpec := range rs.Spec.Params {
				if paramSpec.ResetOnExclude && !paramSpec.FeatureID && !customized[paramSpec.Name] {
					delete(params, paramSpec.Name)
				}
			}
		}
	}

	deps := make([]feature.Dependency, 0, len(fc.Deps))
	depSpecs := make([]*feature.ResolvedSpec, 0, len(fc.Deps))

	for _, dep := range fc.Deps {
		depSpec, depID, err := b.resolveFeatureID(ctx, fp, dep.ID)
		if err != nil {
			return err
		}

		deps = append(deps, feature.Dependency{ID: depID, Include: dep.Include})
		depSpecs = append(depSpecs, depSpec)
	}

	f := stack.IncludeFeature(id, rs, params, deps)

	for i, dep := range deps {
		if !dep.Include {
			continue
		}

		if err := b.includeByID(ctx, stack, depSpecs[i], dep.ID); err != nil {
			return err
		}
	}

	return b.completeFeature(ctx, stack, f)
}

// includeByID adds a feature known only by its id unless the config has it or filters it out.
func (b *Builder) includeByID(ctx context.Context, stack *configstack.Stack, rs *feature.ResolvedSpec, id spec.ResolvedFeatureID) error {
	if stack.Includes(id) || stack.IsFilteredOut(rs.ID, id) {
		return nil
	}

	f := stack.IncludeFeature(id, rs, id.Params.Map(), nil)

	return b.completeFeature(ctx, stack, f)
}

// completeFeature includes the features the feature references with include set and resolves the
// package dependencies of its spec.
func (b *Builder) completeFeature(ctx context.Context, stack *configstack.Stack, f *feature.ResolvedFeature) error {
	for _, ref := range f.Spec.Spec.Refs {
		if !ref.Include {
			continue
		}

		refID, ok, err := f.RefID(ref)
		if err != nil {
			return err
		}

		if !ok {
			continue
		}

		if err := b.includeByID(ctx, stack, f.Spec.RefTarget(ref.Name), refID); err != nil {
			return err
		}
	}

	if b.specPkgDeps[f.Spec.ID] {
		return nil
	}

	b.specPkgDeps[f.Spec.ID] = true

	return b.resolvePackageDeps(ctx, b.fpsByGa[f.Spec.ID.Gav.Ga()], f.Spec.Spec.PackageDeps)
}

// processIncludedFeatures declares the features the popped groups include with params but whose
// bodies did not declare them.
func (b *Builder) processIncludedFeatures(ctx context.Context, stack *configstack.Stack, groups []*configstack.GroupConfig) error {
	for _, gc := range groups {
		for _, included := range gc.IncludedFeatures() {
			if included.Params == nil || stack.Includes(included.ID) {
				continue
			}

			rs, err := b.resolveSpec(ctx, b.fpsByGa[included.ID.Spec.Gav.Ga()], spec.SpecID{Name: included.ID.Spec.Name})
			if err != nil {
				return err
			}

			if stack.IsFilteredOut(rs.ID, included.ID) {
				continue
			}

			if err := checkUnknownParams(rs, included.Params); err != nil {
				return err
			}

			params := included.ID.Params.Map()
			maps.Copy(params, included.Params)

			f := stack.IncludeFeature(included.ID, rs, params, nil)
			if err := b.completeFeature(ctx, stack, f); err != nil {
				return err
			}
		}
	}

	return nil
}

// featureID returns the id of a feature with the given params, zero when the spec declares no id params.
func featureID(rs *feature.ResolvedSpec, params map[string]string) (spec.ResolvedFeatureID, error) {
	idParams := rs.Spec.IDParams()
	if len(idParams) == 0 {
		return spec.ResolvedFeatureID{}, nil
	}

	values := make(map[string]string, len(idParams))

	for _, paramSpec := range idParams {
		value, ok := params[paramSpec.Name]
		if !ok {
			if value, ok = paramSpec.DefaultValue(); !ok {
				return spec.ResolvedFeatureID{}, errors.New(MissingIDParameterError{Spec: rs.ID, Param: paramSpec.Name})
			}
		}

		values[paramSpec.Name] = value
	}

	return spec.NewResolvedFeatureID(rs.ID, values), nil
}

func checkUnknownParams(rs *feature.ResolvedSpec, params map[string]string) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if rs.Spec.Param(name) == nil {
			return errors.New(UnknownParameterError{Spec: rs.ID, Param: name})
		}
	}

	return nil
}
