package runtime

import (
	"os"
	"path/filepath"

	"github.com/huandu/go-clone"

	"github.com/gruntwork-io/fpack/configstack"
	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/internal/layout"
	"github.com/gruntwork-io/fpack/options"
	"github.com/gruntwork-io/fpack/pkg/log"
	"github.com/gruntwork-io/fpack/spec"
	"github.com/gruntwork-io/fpack/util"
)

const (
	resourcesDirName = "resources"
	pluginsDirName   = "plugins"
)

// PackageRuntime is a package selected for installation with its effective params.
type PackageRuntime struct {
	Name   string
	Spec   *spec.PackageSpec
	Params []spec.PackageParameter
}

// Param returns the value of the named param.
func (pkg *PackageRuntime) Param(name string) (string, bool) {
	for _, param := range pkg.Params {
		if param.Name == name {
			return param.Value, true
		}
	}

	return "", false
}

// setParams adds the params, replacing the values of params already set.
func (pkg *PackageRuntime) setParams(params []spec.PackageParameter) {
	for _, param := range params {
		replaced := false

		for i := range pkg.Params {
			if pkg.Params[i].Name == param.Name {
				pkg.Params[i].Value = param.Value
				replaced = true

				break
			}
		}

		if !replaced {
			pkg.Params = append(pkg.Params, param)
		}
	}
}

// FeaturePackRuntime is a laid out feature-pack with the packages installed from it, dependencies first.
type FeaturePackRuntime struct {
	Gav      coords.Gav
	Spec     *spec.FeaturePackSpec
	Dir      string
	Packages []*PackageRuntime

	layout *layout.Layout
}

// Package returns the named package or nil when it is not installed.
func (fp *FeaturePackRuntime) Package(name string) *PackageRuntime {
	for _, pkg := range fp.Packages {
		if pkg.Name == name {
			return pkg
		}
	}

	return nil
}

// PackageNames returns the names of the installed packages in installation order.
func (fp *FeaturePackRuntime) PackageNames() []string {
	names := make([]string, len(fp.Packages))
	for i, pkg := range fp.Packages {
		names[i] = pkg.Name
	}

	return names
}

// ProvisioningRuntime is a resolved provisioning config ready to be installed.
type ProvisioningRuntime struct {
	Config *spec.ProvisioningConfig
	// FeaturePacks are ordered dependencies first.
	FeaturePacks []*FeaturePackRuntime
	Configs      []*configstack.OrderedConfig

	workDir      string
	installDir   string
	resourcesDir string
	pluginsDir   string

	opts  *options.ProvisioningOptions
	state *spec.ProvisionedState
}

func (b *Builder) newRuntime(ordered []*fpBuilder, configs []*configstack.OrderedConfig) (*ProvisioningRuntime, error) {
	installDir, err := b.opts.AbsPath(b.opts.InstallDir)
	if err != nil {
		return nil, err
	}

	rt := &ProvisioningRuntime{
		Config:       b.config,
		Configs:      configs,
		workDir:      b.workDir,
		installDir:   installDir,
		resourcesDir: filepath.Join(b.workDir, resourcesDirName),
		pluginsDir:   filepath.Join(b.workDir, pluginsDirName),
		opts:         b.opts,
	}

	for _, dir := range []string{rt.resourcesDir, rt.pluginsDir} {
		if err := os.MkdirAll(dir, util.DefaultDirPerm); err != nil {
			return nil, errors.New(err)
		}
	}

	for _, fp := range ordered {
		fpRt := &FeaturePackRuntime{
			Gav:      fp.gav,
			Spec:     fp.layout.Spec,
			Dir:      fp.layout.Dir,
			Packages: fp.pkgOrder,
			layout:   fp.layout,
		}

		if fpRt.Packages == nil {
			fpRt.Packages = []*PackageRuntime{}
		}

		// later feature-packs override the resources and plugins of their dependencies
		if util.IsDir(fp.layout.ResourcesDir()) {
			if err := util.CopyFolderContents(fp.layout.ResourcesDir(), rt.resourcesDir); err != nil {
				return nil, err
			}
		}

		if util.IsDir(fp.layout.PluginsDir()) {
			if err := util.CopyFolderContents(fp.layout.PluginsDir(), rt.pluginsDir); err != nil {
				return nil, err
			}
		}

		rt.FeaturePacks = append(rt.FeaturePacks, fpRt)
	}

	rt.state = rt.buildState()

	return rt, nil
}

// FeaturePack returns the feature-pack with the given group and artifact or nil.
func (rt *ProvisioningRuntime) FeaturePack(ga coords.Ga) *FeaturePackRuntime {
	for _, fp := range rt.FeaturePacks {
		if fp.Gav.Ga() == ga {
			return fp
		}
	}

	return nil
}

// OrderedConfig returns the ordered config with the given id or nil.
func (rt *ProvisioningRuntime) OrderedConfig(id spec.ConfigID) *configstack.OrderedConfig {
	for _, cfg := range rt.Configs {
		if cfg.ID == id {
			return cfg
		}
	}

	return nil
}

func (rt *ProvisioningRuntime) buildState() *spec.ProvisionedState {
	state := &spec.ProvisionedState{}

	for _, fp := range rt.FeaturePacks {
		state.FeaturePacks = append(state.FeaturePacks, &spec.ProvisionedFeaturePack{
			Gav:      fp.Gav,
			Packages: fp.PackageNames(),
		})
	}

	for _, cfg := range rt.Configs {
		provisioned := &spec.ProvisionedConfig{ID: cfg.ID}

		if len(cfg.Props) > 0 {
			provisioned.Props = make(map[string]string, len(cfg.Props))
			for name, value := range cfg.Props {
				provisioned.Props[name] = value
			}
		}

		for _, f := range cfg.Features {
			provisioned.Features = append(provisioned.Features, &spec.ProvisionedFeature{
				Spec:        f.Spec.ID,
				ID:          f.ID,
				Params:      f.SortedParams(),
				StartsBatch: f.StartsBatch(),
				EndsBatch:   f.EndsBatch(),
			})
		}

		state.Configs = append(state.Configs, provisioned)
	}

	return state
}

// State returns a copy of the provisioned state the runtime installs.
func (rt *ProvisioningRuntime) State() *spec.ProvisionedState {
	return clone.Clone(rt.state).(*spec.ProvisionedState)
}

// ProvisioningConfig returns a copy of the provisioning config.
func (rt *ProvisioningRuntime) ProvisioningConfig() *spec.ProvisioningConfig {
	return clone.Clone(rt.Config).(*spec.ProvisioningConfig)
}

// WorkDir holds the laid out feature-packs, merged resources and plugins and the staged installation.
func (rt *ProvisioningRuntime) WorkDir() string {
	return rt.workDir
}

func (rt *ProvisioningRuntime) InstallDir() string {
	return rt.installDir
}

func (rt *ProvisioningRuntime) StagedDir() string {
	return filepath.Join(rt.workDir, stagedDirName)
}

func (rt *ProvisioningRuntime) ResourcesDir() string {
	return rt.resourcesDir
}

func (rt *ProvisioningRuntime) PluginsDir() string {
	return rt.pluginsDir
}

func (rt *ProvisioningRuntime) Logger() log.Logger {
	return rt.opts.Logger
}

// Close removes the work directory unless the options keep it.
func (rt *ProvisioningRuntime) Close() error {
	if rt.opts.KeepWorkDir {
		rt.opts.Logger.Infof("Keeping work directory %s", rt.workDir)
		return nil
	}

	return errors.New(os.RemoveAll(rt.workDir))
}
