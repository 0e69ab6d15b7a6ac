package runtime

import (
	"context"

	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/spec"
)

// processConfig resolves the packages a feature-pack config requests, after those of the configs its
// feature-pack dependencies push.
func (b *Builder) processConfig(ctx context.Context, fpConfig *spec.FeaturePackConfig) error {
	if err := ctx.Err(); err != nil {
		return errors.New(err)
	}

	fp, err := b.layoutFeaturePack(ctx, fpConfig.Gav)
	if err != nil {
		return err
	}

	var pushed []*spec.FeaturePackConfig

	for _, dep := range fp.layout.Spec.Dependencies {
		depConfig := b.withVersion(dep.Config)
		if b.pushFpConfig(depConfig) {
			pushed = append(pushed, depConfig)
		}
	}

	for _, depConfig := range pushed {
		if err := b.processConfig(ctx, depConfig); err != nil {
			return err
		}
	}

	stack := b.fpConfigStacks[fpConfig.Gav]

	if fpConfig.InheritPackages {
		for _, name := range fp.layout.Spec.DefaultPackages {
			if isPackageExcluded(stack, name) {
				b.logger.Tracef("Package %s of %s is excluded", name, fp.gav)
				continue
			}

			if err := b.resolvePackage(ctx, fp, stack, name, nil); err != nil {
				return err
			}
		}
	}

	if err := b.resolveIncludedPackages(ctx, fp, stack, fpConfig); err != nil {
		return err
	}

	return b.popFpConfigs(ctx, pushed)
}

func (b *Builder) resolveIncludedPackages(ctx context.Context, fp *fpBuilder, stack []*spec.FeaturePackConfig, fpConfig *spec.FeaturePackConfig) error {
	for _, pkgConfig := range fpConfig.IncludedPackages {
		if isPackageExcluded(stack, pkgConfig.Name) {
			return errors.New(UnsatisfiedPackageDependencyError{Gav: fp.gav, Dependency: pkgConfig.Name})
		}

		if err := b.resolvePackage(ctx, fp, stack, pkgConfig.Name, pkgConfig.Params); err != nil {
			return err
		}
	}

	return nil
}

// pushFpConfig pushes the config of a feature-pack dependency when the feature-pack has not been
// requested yet, or when the config changes the package set the requests stacked so far resolve.
func (b *Builder) pushFpConfig(fpConfig *spec.FeaturePackConfig) bool {
	b.recordConfig(fpConfig)

	stack := b.fpConfigStacks[fpConfig.Gav]
	if len(stack) == 0 {
		b.fpConfigStacks[fpConfig.Gav] = []*spec.FeaturePackConfig{fpConfig}
		return true
	}

	if !stack[len(stack)-1].InheritPackages {
		return false
	}

	push := false

	for _, excluded := range fpConfig.ExcludedPackages {
		if !isPackageExcluded(stack, excluded) && !isPackageIncluded(stack, excluded, nil) {
			push = true
			break
		}
	}

	if !push {
		for _, included := range fpConfig.IncludedPackages {
			if !isPackageIncluded(stack, included.Name, included.Params) && !isPackageExcluded(stack, included.Name) {
				push = true
				break
			}
		}
	}

	if push {
		b.fpConfigStacks[fpConfig.Gav] = append(stack, fpConfig)
	}

	return push
}

// popFpConfigs pops the pushed configs, resolving what they include against the requests that remain.
func (b *Builder) popFpConfigs(ctx context.Context, pushed []*spec.FeaturePackConfig) error {
	for _, fpConfig := range pushed {
		stack := b.fpConfigStacks[fpConfig.Gav]
		popped := stack[len(stack)-1]

		if len(stack) == 1 {
			delete(b.fpConfigStacks, fpConfig.Gav)
			stack = nil
		} else {
			stack = stack[:len(stack)-1]
			b.fpConfigStacks[fpConfig.Gav] = stack
		}

		if len(popped.IncludedPackages) == 0 {
			continue
		}

		fp, err := b.layoutFeaturePack(ctx, popped.Gav)
		if err != nil {
			return err
		}

		if err := b.resolveIncludedPackages(ctx, fp, stack, popped); err != nil {
			return err
		}
	}

	return nil
}

// isPackageIncluded reports whether a stacked config includes the package with every given param set.
func isPackageIncluded(stack []*spec.FeaturePackConfig, name string, params []spec.PackageParameter) bool {
	for i := len(stack) - 1; i >= 0; i-- {
		pkgConfig := stack[i].IncludedPackage(name)
		if pkgConfig == nil {
			continue
		}

		covered := true

		for _, param := range params {
			if pkgConfig.Param(param.Name) == nil {
				covered = false
				break
			}
		}

		if covered {
			return true
		}
	}

	return false
}

func isPackageExcluded(stack []*spec.FeaturePackConfig, name string) bool {
	for _, fpConfig := range stack {
		if fpConfig.IsPackageExcluded(name) {
			return true
		}
	}

	return false
}
