package runtime

import (
	"context"

	"github.com/gruntwork-io/fpack/config"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/internal/layout"
	"github.com/gruntwork-io/fpack/spec"
)

// resolvePackage adds the package, then its dependencies, to the packages installed from fp. A package
// resolved before only gets the params merged in.
func (b *Builder) resolvePackage(ctx context.Context, fp *fpBuilder, stack []*spec.FeaturePackConfig, name string, params []spec.PackageParameter) (err error) {
	if pkg, ok := fp.packages[name]; ok {
		pkg.setParams(params)
		return nil
	}

	pkgSpec, err := fp.layout.PackageSpec(name)
	if err != nil {
		return err
	}

	// registered first so that circular dependencies end here
	pkg := &PackageRuntime{Name: name, Spec: pkgSpec}
	fp.packages[name] = pkg

	defer func() {
		if err != nil {
			delete(fp.packages, name)
		}
	}()

	pkg.setParams(pkgSpec.Params)

	for _, dep := range pkgSpec.LocalDeps {
		if isPackageExcluded(stack, dep.Name) {
			if !dep.Optional {
				return errors.New(UnsatisfiedPackageDependencyError{Gav: fp.gav, Package: name, Dependency: dep.Name})
			}

			continue
		}

		if err := b.resolvePackage(ctx, fp, stack, dep.Name, dep.Params); err != nil {
			if dep.Optional && isDescriptionError(err) {
				b.logger.Debugf("Skipping optional dependency %s of package %s of %s: %v", dep.Name, name, fp.gav, err)
				continue
			}

			return err
		}
	}

	if len(pkgSpec.ExternalDeps) > 0 {
		if err := b.resolveExternalDeps(ctx, fp, name, pkgSpec.ExternalDeps); err != nil {
			return err
		}
	}

	pkg.setParams(params)
	fp.pkgOrder = append(fp.pkgOrder, pkg)

	b.logger.Tracef("Resolved package %s of %s", name, fp.gav)

	return nil
}

func (b *Builder) resolveExternalDeps(ctx context.Context, fp *fpBuilder, name string, externalDeps []spec.ExternalPackageDependencies) error {
	var pushed []*spec.FeaturePackConfig

	targets := make([]*spec.FeaturePackConfig, len(externalDeps))

	for i, external := range externalDeps {
		dep := fp.layout.Spec.Dependency(external.Origin)
		if dep == nil {
			return errors.New(UnknownFeaturePackDependencyError{Gav: fp.gav, Origin: external.Origin})
		}

		targets[i] = b.withVersion(dep.Config)
		if b.pushFpConfig(targets[i]) {
			pushed = append(pushed, targets[i])
		}
	}

	for i, external := range externalDeps {
		targetFp, err := b.layoutFeaturePack(ctx, targets[i].Gav)
		if err != nil {
			return err
		}

		targetStack := b.fpConfigStacks[targetFp.gav]

		for _, dep := range external.Deps {
			if isPackageExcluded(targetStack, dep.Name) {
				if !dep.Optional {
					return errors.New(UnsatisfiedExternalPackageDependencyError{Gav: fp.gav, Package: name, Target: targetFp.gav, Dependency: dep.Name})
				}

				continue
			}

			if err := b.resolvePackage(ctx, targetFp, targetStack, dep.Name, dep.Params); err != nil {
				if dep.Optional && isDescriptionError(err) {
					b.logger.Debugf("Skipping optional dependency %s of package %s of %s: %v", dep.Name, name, fp.gav, err)
					continue
				}

				return err
			}
		}
	}

	return b.popFpConfigs(ctx, pushed)
}

// resolvePackageDeps resolves the packages a feature spec, feature group or config depends on.
func (b *Builder) resolvePackageDeps(ctx context.Context, fp *fpBuilder, deps []spec.PackageDependency) error {
	for _, dep := range deps {
		target, err := b.packageOwner(ctx, fp, dep)
		if err != nil {
			if dep.Optional && isDescriptionError(err) {
				continue
			}

			return err
		}

		stack := b.packageStack(target)

		if isPackageExcluded(stack, dep.Name) {
			if !dep.Optional {
				return errors.New(UnsatisfiedPackageDependencyError{Gav: target.gav, Dependency: dep.Name})
			}

			continue
		}

		if err := b.resolvePackage(ctx, target, stack, dep.Name, nil); err != nil {
			if dep.Optional && isDescriptionError(err) {
				b.logger.Debugf("Skipping optional package %s of %s: %v", dep.Name, target.gav, err)
				continue
			}

			return err
		}
	}

	return nil
}

// packageOwner returns the feature-pack declaring a package dependency. Without an origin that is fp
// itself, or in the provisioning config the first requested feature-pack with such a package.
func (b *Builder) packageOwner(ctx context.Context, fp *fpBuilder, dep spec.PackageDependency) (*fpBuilder, error) {
	if dep.Origin != "" {
		return b.resolveOriginFp(ctx, fp, dep.Origin)
	}

	if fp != nil {
		return fp, nil
	}

	owner, err := b.locate(ctx, nil, "", func(l *layout.Layout) bool { return l.HasPackage(dep.Name) })
	if err != nil {
		return nil, err
	}

	if owner == nil {
		return nil, errors.New(layout.PackageNotFoundError{Package: dep.Name})
	}

	return owner, nil
}

// isDescriptionError reports whether err comes from inconsistent feature-pack content rather than from
// the environment.
func isDescriptionError(err error) bool {
	var (
		notFound      layout.PackageNotFoundError
		noPath        layout.PathDoesNotExistError
		unsatisfied   UnsatisfiedPackageDependencyError
		unsatisfiedFp UnsatisfiedExternalPackageDependencyError
		unknownDep    UnknownFeaturePackDependencyError
		invalidSpec   config.InvalidSpecFileError
	)

	return errors.As(err, &notFound) ||
		errors.As(err, &noPath) ||
		errors.As(err, &unsatisfied) ||
		errors.As(err, &unsatisfiedFp) ||
		errors.As(err, &unknownDep) ||
		errors.As(err, &invalidSpec)
}
