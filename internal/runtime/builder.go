// Package runtime resolves a provisioning config into a provisioning runtime: the laid out feature-packs
// with the packages they install and the ordered configs, then stages and installs it.
package runtime

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/gruntwork-io/fpack/config"
	"github.com/gruntwork-io/fpack/configstack"
	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/artifact"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/internal/feature"
	"github.com/gruntwork-io/fpack/internal/layout"
	"github.com/gruntwork-io/fpack/internal/telemetry"
	"github.com/gruntwork-io/fpack/options"
	"github.com/gruntwork-io/fpack/pkg/log"
	"github.com/gruntwork-io/fpack/spec"
	"github.com/gruntwork-io/fpack/util"
)

const (
	workDirPrefix = "fpack-"
	layoutDirName = "layout"
	stagedDirName = "staged"
)

// fpBuilder accumulates what gets resolved for one feature-pack.
type fpBuilder struct {
	gav    coords.Gav
	layout *layout.Layout

	packages map[string]*PackageRuntime
	pkgOrder []*PackageRuntime

	specs map[string]*feature.ResolvedSpec
}

// Builder resolves provisioning configs. A Builder is used for a single Build call.
type Builder struct {
	opts     *options.ProvisioningOptions
	resolver artifact.Resolver
	logger   log.Logger

	parsingCtx *config.ParsingContext
	config     *spec.ProvisioningConfig
	workDir    string

	fps            []*fpBuilder
	fpsByGa        map[coords.Ga]*fpBuilder
	fpConfigStacks map[coords.Gav][]*spec.FeaturePackConfig
	// fpConfigs are the requests that reached each feature-pack, the top level one first.
	fpConfigs map[coords.Ga][]*spec.FeaturePackConfig

	stacks      configStacks
	specPkgDeps map[spec.ResolvedSpecID]bool
	versioned   map[*spec.FeaturePackConfig]*spec.FeaturePackConfig
}

func NewBuilder(opts *options.ProvisioningOptions, resolver artifact.Resolver) *Builder {
	return &Builder{
		opts:           opts,
		resolver:       resolver,
		logger:         opts.Logger,
		fpsByGa:        make(map[coords.Ga]*fpBuilder),
		fpConfigStacks: make(map[coords.Gav][]*spec.FeaturePackConfig),
		fpConfigs:      make(map[coords.Ga][]*spec.FeaturePackConfig),
		specPkgDeps:    make(map[spec.ResolvedSpecID]bool),
		versioned:      make(map[*spec.FeaturePackConfig]*spec.FeaturePackConfig),
	}
}

// Build lays out every feature-pack the config needs, resolves the packages and configs and orders the
// features of each config. Either the complete runtime or an error is returned; on error the work
// directory is removed.
func (b *Builder) Build(ctx context.Context, provisioningConfig *spec.ProvisioningConfig) (rt *ProvisioningRuntime, err error) {
	if b.config != nil {
		panic("runtime: Builder.Build called twice")
	}

	b.config = provisioningConfig
	b.parsingCtx = config.NewParsingContext(ctx, b.logger)

	tmpDir := b.opts.TempDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}

	b.workDir = filepath.Join(tmpDir, workDirPrefix+uuid.NewString())
	if err := os.MkdirAll(b.workDir, util.DefaultDirPerm); err != nil {
		return nil, errors.New(err)
	}

	b.logger.Debugf("Work directory %s", b.workDir)

	defer func() {
		if err != nil && !b.opts.KeepWorkDir {
			if rmErr := os.RemoveAll(b.workDir); rmErr != nil {
				b.logger.Warnf("Failed to remove work directory %s: %v", b.workDir, rmErr)
			}
		}
	}()

	tlm := telemetry.TelemeterFromContext(ctx)

	err = tlm.Collect(ctx, "resolve-packages", map[string]any{"feature_packs": len(provisioningConfig.FeaturePacks)}, func(ctx context.Context) error {
		for _, fpConfig := range provisioningConfig.FeaturePacks {
			b.fpConfigStacks[fpConfig.Gav] = []*spec.FeaturePackConfig{fpConfig}
			b.recordConfig(fpConfig)
		}

		for _, fpConfig := range provisioningConfig.FeaturePacks {
			if err := b.processConfig(ctx, fpConfig); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	ordered := b.orderFeaturePacks()

	var stacks []*configstack.Stack

	err = tlm.Collect(ctx, "resolve-configs", nil, func(ctx context.Context) error {
		stacks, err = b.resolveConfigs(ctx, ordered)
		return err
	})
	if err != nil {
		return nil, err
	}

	configs := make([]*configstack.OrderedConfig, 0, len(stacks))

	for _, stack := range stacks {
		err = tlm.Collect(ctx, "order-config", map[string]any{"config": stack.ID.String()}, func(ctx context.Context) error {
			orderedConfig, err := b.orderConfig(stack)
			if err != nil {
				return err
			}

			configs = append(configs, orderedConfig)

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return b.newRuntime(ordered, configs)
}

// layoutFeaturePack returns the builder of the feature-pack, unpacking and parsing it on first use.
func (b *Builder) layoutFeaturePack(ctx context.Context, gav coords.Gav) (*fpBuilder, error) {
	if fp, ok := b.fpsByGa[gav.Ga()]; ok {
		if fp.gav != gav {
			return nil, errors.New(coords.FeaturePackVersionConflictError{Existing: fp.gav, Requested: gav})
		}

		return fp, nil
	}

	path, err := b.resolver.Resolve(ctx, gav.ArtifactCoords())
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(b.workDir, layoutDirName, gav.GroupID, gav.ArtifactID, gav.Version)
	if err := os.MkdirAll(filepath.Dir(dir), util.DefaultDirPerm); err != nil {
		return nil, errors.New(err)
	}

	if err := layout.Unpack(ctx, path, dir); err != nil {
		return nil, err
	}

	fpLayout, err := layout.Open(b.parsingCtx, dir)
	if err != nil {
		return nil, err
	}

	b.logger.Debugf("Laid out %s in %s", gav, dir)

	fp := &fpBuilder{
		gav:      gav,
		layout:   fpLayout,
		packages: make(map[string]*PackageRuntime),
		specs:    make(map[string]*feature.ResolvedSpec),
	}

	b.fps = append(b.fps, fp)
	b.fpsByGa[gav.Ga()] = fp

	return fp, nil
}

// withVersion fills in the version of a dependency config that leaves it out, taking it from the
// feature-pack already laid out for the same group and artifact or from the provisioning config.
func (b *Builder) withVersion(fpConfig *spec.FeaturePackConfig) *spec.FeaturePackConfig {
	if fpConfig.Gav.Version != "" {
		return fpConfig
	}

	if copied, ok := b.versioned[fpConfig]; ok {
		return copied
	}

	version := ""
	if fp, ok := b.fpsByGa[fpConfig.Gav.Ga()]; ok {
		version = fp.gav.Version
	} else if requested := b.config.FeaturePack(fpConfig.Gav.Ga()); requested != nil {
		version = requested.Gav.Version
	}

	if version == "" {
		return fpConfig
	}

	copied := *fpConfig
	copied.Gav.Version = version
	b.versioned[fpConfig] = &copied

	return &copied
}

// orderFeaturePacks returns the laid out feature-packs, each one after its dependencies, walking the
// requested feature-packs in request order.
func (b *Builder) orderFeaturePacks() []*fpBuilder {
	var (
		ordered []*fpBuilder
		visited = make(map[coords.Ga]bool)
		visit   func(fp *fpBuilder)
	)

	visit = func(fp *fpBuilder) {
		if visited[fp.gav.Ga()] {
			return
		}

		visited[fp.gav.Ga()] = true

		for _, dep := range fp.layout.Spec.Dependencies {
			if depFp, ok := b.fpsByGa[dep.Config.Gav.Ga()]; ok {
				visit(depFp)
			}
		}

		ordered = append(ordered, fp)
	}

	for _, fpConfig := range b.config.FeaturePacks {
		if fp, ok := b.fpsByGa[fpConfig.Gav.Ga()]; ok {
			visit(fp)
		}
	}

	// feature-packs reached only through a package of another one
	for _, fp := range b.fps {
		visit(fp)
	}

	return ordered
}

// packageStack returns the requests package exclusions are checked against when a package is needed
// after the feature-pack graph has been walked.
func (b *Builder) packageStack(fp *fpBuilder) []*spec.FeaturePackConfig {
	if stack := b.fpConfigStacks[fp.gav]; len(stack) > 0 {
		return stack
	}

	return b.fpConfigs[fp.gav.Ga()]
}

func (b *Builder) recordConfig(fpConfig *spec.FeaturePackConfig) {
	ga := fpConfig.Gav.Ga()

	for _, existing := range b.fpConfigs[ga] {
		if existing == fpConfig {
			return
		}
	}

	b.fpConfigs[ga] = append(b.fpConfigs[ga], fpConfig)
}
