package runtime

import (
	"context"
	"sort"

	"github.com/gruntwork-io/fpack/configstack"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/spec"
)

// configStacks holds one stack per config id in the order the configs were first seen.
type configStacks struct {
	byID  map[spec.ConfigID]*configstack.Stack
	order []*configstack.Stack
}

func (b *Builder) configStack(id spec.ConfigID) *configstack.Stack {
	if b.stacks.byID == nil {
		b.stacks.byID = make(map[spec.ConfigID]*configstack.Stack)
	}

	if stack, ok := b.stacks.byID[id]; ok {
		return stack
	}

	stack := configstack.NewStack(id, configstack.WithLogger(b.logger))
	b.stacks.byID[id] = stack
	b.stacks.order = append(b.stacks.order, stack)

	return stack
}

// resolveConfigs feeds the configs of the feature-packs, dependencies first, then the configs the
// requests define, into the config stacks. It returns the stacks of the configs to provision.
func (b *Builder) resolveConfigs(ctx context.Context, ordered []*fpBuilder) ([]*configstack.Stack, error) {
	for _, fp := range ordered {
		for _, model := range fp.layout.Spec.Configs {
			if b.isConfigExcluded(fp, model.ID) {
				b.logger.Debugf("Config %s of %s is excluded", model.ID, fp.gav)
				continue
			}

			if err := b.processConfigModel(ctx, fp, model); err != nil {
				return nil, err
			}
		}

		for _, fpConfig := range b.fpConfigs[fp.gav.Ga()] {
			for _, model := range fpConfig.DefinedConfigs {
				if err := b.processConfigModel(ctx, fp, model); err != nil {
					return nil, err
				}
			}
		}
	}

	for _, model := range b.config.DefinedConfigs {
		if err := b.processConfigModel(ctx, nil, model); err != nil {
			return nil, err
		}
	}

	return b.provisionedStacks()
}

// isConfigExcluded asks the provisioning config, then every request for the feature-pack, whether the
// config is inherited. The first to decide wins.
func (b *Builder) isConfigExcluded(fp *fpBuilder, id spec.ConfigID) bool {
	switch b.config.Decide(id) {
	case spec.ConfigIncluded:
		return false
	case spec.ConfigExcluded:
		return true
	case spec.ConfigUndecided:
	}

	for _, fpConfig := range b.fpConfigs[fp.gav.Ga()] {
		switch fpConfig.Decide(id) {
		case spec.ConfigIncluded:
			return false
		case spec.ConfigExcluded:
			return true
		case spec.ConfigUndecided:
		}
	}

	return false
}

func (b *Builder) processConfigModel(ctx context.Context, fp *fpBuilder, model *spec.ConfigModel) error {
	if err := b.doProcessConfigModel(ctx, fp, model); err != nil {
		return errors.New(ConfigSpecError{Config: model.ID, Err: err})
	}

	return nil
}

func (b *Builder) doProcessConfigModel(ctx context.Context, fp *fpBuilder, model *spec.ConfigModel) error {
	stack := b.configStack(model.ID)

	gc, err := b.groupConfig(ctx, fp, "", &model.FeatureGroupSupport)
	if err != nil {
		return err
	}

	stack.OverwriteProps(model.Props)
	stack.OverwriteConfigDeps(model.ConfigDeps)
	stack.PushConfig(model, gc)

	if err := b.resolvePackageDeps(ctx, fp, model.PackageDeps); err != nil {
		return err
	}

	if err := b.processItems(ctx, stack, fp, model.Items); err != nil {
		return err
	}

	_, open := stack.PopConfig()

	return b.processIncludedFeatures(ctx, stack, open)
}

// provisionedStacks folds the model-only configs into the named configs of their model and returns the
// named and anonymous configs, each after the configs it depends on.
func (b *Builder) provisionedStacks() ([]*configstack.Stack, error) {
	var candidates []*configstack.Stack

	for _, stack := range b.stacks.order {
		if stack.ID.IsModelOnly() {
			continue
		}

		if stack.ID.Model != "" {
			if modelOnly, ok := b.stacks.byID[spec.ConfigID{Model: stack.ID.Model}]; ok {
				if err := stack.Merge(modelOnly); err != nil {
					return nil, err
				}
			}
		}

		candidates = append(candidates, stack)
	}

	var (
		result  []*configstack.Stack
		visited = make(map[spec.ConfigID]bool)
		visit   func(stack *configstack.Stack)
	)

	visit = func(stack *configstack.Stack) {
		if visited[stack.ID] {
			return
		}

		visited[stack.ID] = true

		names := make([]string, 0, len(stack.ConfigDeps))
		for name := range stack.ConfigDeps {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			dep, ok := b.stacks.byID[stack.ConfigDeps[name]]
			if !ok || dep.ID.IsModelOnly() {
				b.logger.Debugf("Config %s depends on unknown config %s", stack.ID, stack.ConfigDeps[name])
				continue
			}

			visit(dep)
		}

		result = append(result, stack)
	}

	for _, stack := range candidates {
		visit(stack)
	}

	return result, nil
}

// orderConfig orders the features of a config and checks every feature has its params set.
func (b *Builder) orderConfig(stack *configstack.Stack) (*configstack.OrderedConfig, error) {
	ordered, err := stack.OrderFeatures()
	if err != nil {
		return nil, err
	}

	for _, f := range ordered.Features {
		if err := f.CheckParams(); err != nil {
			return nil, errors.New(configstack.ConfigBuildError{Config: stack.ID, Err: err})
		}
	}

	return ordered, nil
}
