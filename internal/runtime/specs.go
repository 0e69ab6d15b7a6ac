package runtime

import (
	"context"

	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/internal/feature"
	"github.com/gruntwork-io/fpack/internal/layout"
	"github.com/gruntwork-io/fpack/spec"
)

// resolveOriginFp returns the feature-pack an origin names. Inside a feature-pack the origin is the name
// of one of its dependencies; in the provisioning config (fp is nil) it is the artifact id or the
// group:artifact of a requested feature-pack.
func (b *Builder) resolveOriginFp(ctx context.Context, fp *fpBuilder, origin string) (*fpBuilder, error) {
	if fp != nil {
		dep := fp.layout.Spec.Dependency(origin)
		if dep == nil {
			return nil, errors.New(UnknownFeaturePackDependencyError{Gav: fp.gav, Origin: origin})
		}

		return b.layoutFeaturePack(ctx, b.withVersion(dep.Config).Gav)
	}

	for _, fpConfig := range b.config.FeaturePacks {
		ga := fpConfig.Gav.Ga()
		if ga.ArtifactID == origin || ga.String() == origin {
			return b.layoutFeaturePack(ctx, fpConfig.Gav)
		}
	}

	return nil, errors.New(UnknownFeaturePackDependencyError{Origin: origin})
}

// locate returns the feature-pack declaring what has looks for: the one origin names, or else fp and then
// its dependencies depth first. In the provisioning config the requested feature-packs are searched in
// request order. It returns nil when none declares it.
func (b *Builder) locate(ctx context.Context, fp *fpBuilder, origin string, has func(*layout.Layout) bool) (*fpBuilder, error) {
	if origin != "" {
		target, err := b.resolveOriginFp(ctx, fp, origin)
		if err != nil {
			return nil, err
		}

		if !has(target.layout) {
			return nil, nil
		}

		return target, nil
	}

	visited := make(map[coords.Ga]bool)

	var search func(fp *fpBuilder) (*fpBuilder, error)

	search = func(fp *fpBuilder) (*fpBuilder, error) {
		if visited[fp.gav.Ga()] {
			return nil, nil
		}

		visited[fp.gav.Ga()] = true

		if has(fp.layout) {
			return fp, nil
		}

		for _, dep := range fp.layout.Spec.Dependencies {
			depFp, err := b.layoutFeaturePack(ctx, b.withVersion(dep.Config).Gav)
			if err != nil {
				return nil, err
			}

			if found, err := search(depFp); found != nil || err != nil {
				return found, err
			}
		}

		return nil, nil
	}

	if fp != nil {
		return search(fp)
	}

	for _, fpConfig := range b.config.FeaturePacks {
		top, err := b.layoutFeaturePack(ctx, fpConfig.Gav)
		if err != nil {
			return nil, err
		}

		if found, err := search(top); found != nil || err != nil {
			return found, err
		}
	}

	return nil, nil
}

// resolveSpec returns the spec bound to the feature-pack declaring it, with its references bound to
// their target specs.
func (b *Builder) resolveSpec(ctx context.Context, fp *fpBuilder, id spec.SpecID) (*feature.ResolvedSpec, error) {
	target, err := b.locate(ctx, fp, id.Origin, func(l *layout.Layout) bool { return l.HasFeatureSpec(id.Name) })
	if err != nil {
		return nil, err
	}

	if target == nil {
		var gav coords.Gav
		if fp != nil {
			gav = fp.gav
		}

		return nil, errors.New(UnknownFeatureSpecError{Gav: gav, Spec: id})
	}

	if rs, ok := target.specs[id.Name]; ok {
		return rs, nil
	}

	featureSpec, err := target.layout.FeatureSpec(id.Name)
	if err != nil {
		return nil, err
	}

	rs := feature.NewResolvedSpec(spec.ResolvedSpecID{Gav: target.gav, Name: id.Name}, featureSpec)
	// cached before the references are bound so specs may reference each other
	target.specs[id.Name] = rs

	for _, ref := range featureSpec.Refs {
		refTarget, err := b.resolveSpec(ctx, target, ref.TargetSpec())
		if err != nil {
			delete(target.specs, id.Name)
			return nil, err
		}

		rs.SetRefTarget(ref.Name, refTarget)
	}

	return rs, nil
}

// resolveGroup returns the feature-pack declaring the referenced group and the group definition.
func (b *Builder) resolveGroup(ctx context.Context, fp *fpBuilder, ref *spec.FeatureGroup) (*fpBuilder, *spec.FeatureGroup, error) {
	target, err := b.locate(ctx, fp, ref.Origin, func(l *layout.Layout) bool { return l.HasFeatureGroup(ref.Name) })
	if err != nil {
		return nil, nil, err
	}

	if target == nil {
		var gav coords.Gav
		if fp != nil {
			gav = fp.gav
		}

		return nil, nil, errors.New(UnknownFeatureGroupError{Gav: gav, Group: ref.Name})
	}

	group, err := target.layout.FeatureGroup(ref.Name)
	if err != nil {
		return nil, nil, err
	}

	return target, group, nil
}

// resolveFeatureID resolves a feature id written in the context of fp.
func (b *Builder) resolveFeatureID(ctx context.Context, fp *fpBuilder, id spec.FeatureID) (*feature.ResolvedSpec, spec.ResolvedFeatureID, error) {
	rs, err := b.resolveSpec(ctx, fp, id.Spec)
	if err != nil {
		return nil, spec.ResolvedFeatureID{}, err
	}

	return rs, spec.NewResolvedFeatureID(rs.ID, id.Params.Map()), nil
}
