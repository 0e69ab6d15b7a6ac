package runtime

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"gopkg.in/ini.v1"

	"github.com/gruntwork-io/fpack/config"
	"github.com/gruntwork-io/fpack/internal/artifact"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/internal/plugin"
	"github.com/gruntwork-io/fpack/internal/telemetry"
	"github.com/gruntwork-io/fpack/options"
	"github.com/gruntwork-io/fpack/spec"
	"github.com/gruntwork-io/fpack/util"
)

const (
	// PluginFileExt is the extension of the plugin descriptors a feature-pack ships in its plugins
	// directory. The file name is the plugin name, its default section holds the plugin options.
	PluginFileExt = ".ini"

	lockFileExt = ".lock"
)

// Provision resolves the provisioning config and installs it into the install directory of opts.
func Provision(ctx context.Context, opts *options.ProvisioningOptions, resolver artifact.Resolver, registry *plugin.Registry, provisioningConfig *spec.ProvisioningConfig) error {
	rt, err := NewBuilder(opts, resolver).Build(ctx, provisioningConfig)
	if err != nil {
		return err
	}

	defer func() {
		if err := rt.Close(); err != nil {
			opts.Logger.Warnf("Failed to remove work directory %s: %v", rt.WorkDir(), err)
		}
	}()

	return rt.Install(ctx, registry)
}

// Install stages the content of the packages, runs the plugins over it, records the provisioned state
// and moves the staged installation into the install directory. The install directory is left as is
// when any step before the move fails.
func (rt *ProvisioningRuntime) Install(ctx context.Context, registry *plugin.Registry) error {
	if rt.installDir == "" {
		return errors.New(InstallError{Err: errors.New("no install directory set")})
	}

	tlm := telemetry.TelemeterFromContext(ctx)
	staged := rt.StagedDir()

	if err := os.RemoveAll(staged); err != nil {
		return errors.New(err)
	}

	if err := os.MkdirAll(staged, util.DefaultDirPerm); err != nil {
		return errors.New(err)
	}

	err := tlm.Collect(ctx, "stage", map[string]any{"dir": staged}, func(ctx context.Context) error {
		return rt.stage(ctx)
	})
	if err != nil {
		return err
	}

	err = tlm.Collect(ctx, "plugins", nil, func(ctx context.Context) error {
		return rt.runPlugins(ctx, registry)
	})
	if err != nil {
		return err
	}

	stateDir := filepath.Join(staged, config.StateDir)

	if err := config.WriteProvisionedState(filepath.Join(stateDir, config.ProvisionedStateFileName), rt.state); err != nil {
		return err
	}

	if err := config.WriteProvisioningConfig(filepath.Join(stateDir, config.ProvisioningFileName), rt.Config); err != nil {
		return err
	}

	return rt.moveIntoPlace(ctx)
}

// stage copies the content of every package, feature-packs and packages in installation order, so that
// later packages override the files of earlier ones.
func (rt *ProvisioningRuntime) stage(ctx context.Context) error {
	staged := rt.StagedDir()

	for _, fp := range rt.FeaturePacks {
		for _, pkg := range fp.Packages {
			if err := ctx.Err(); err != nil {
				return errors.New(err)
			}

			contentDir := fp.layout.ContentDir(pkg.Name)
			if !util.IsDir(contentDir) {
				continue
			}

			filter, err := fp.layout.ContentFilter(pkg.Name)
			if err != nil {
				return err
			}

			if err := util.CopyFolderContentsWithFilter(contentDir, staged, filter.Matches); err != nil {
				return err
			}

			rt.opts.Logger.Debugf("Staged package %s of %s", pkg.Name, fp.Gav)
		}
	}

	return nil
}

type pluginInvocation struct {
	name    string
	options map[string]string
}

// plugins returns the plugins the feature-packs ship, sorted by name, with their options: those of the
// descriptor overridden by the provisioning options.
func (rt *ProvisioningRuntime) plugins() ([]pluginInvocation, error) {
	matches, err := util.Glob(filepath.Join(rt.pluginsDir, "*"+PluginFileExt))
	if err != nil {
		return nil, err
	}

	invocations := make([]pluginInvocation, 0, len(matches))

	for _, path := range matches {
		name := strings.TrimSuffix(filepath.Base(path), PluginFileExt)

		file, err := ini.Load(path)
		if err != nil {
			return nil, errors.New(plugin.PluginOptionsError{Name: name, Err: err})
		}

		pluginOptions := file.Section(ini.DefaultSection).KeysHash()
		for key, value := range rt.opts.PluginOptions[name] {
			pluginOptions[key] = value
		}

		invocations = append(invocations, pluginInvocation{name: name, options: pluginOptions})
	}

	return invocations, nil
}

func (rt *ProvisioningRuntime) runPlugins(ctx context.Context, registry *plugin.Registry) error {
	invocations, err := rt.plugins()
	if err != nil {
		return err
	}

	for _, invocation := range invocations {
		if registry == nil {
			return errors.New(plugin.UnknownPluginError{Name: invocation.name})
		}

		p, err := registry.New(invocation.name, invocation.options)
		if err != nil {
			return err
		}

		rt.opts.Logger.Debugf("Running plugin %s", invocation.name)

		err = telemetry.TelemeterFromContext(ctx).Collect(ctx, "plugin", map[string]any{"name": invocation.name}, func(ctx context.Context) error {
			return p.PostInstall(ctx, rt)
		})
		if err != nil {
			return errors.New(plugin.PluginFailedError{Name: invocation.name, Err: err})
		}
	}

	return nil
}

// moveIntoPlace replaces the install directory with the staged installation while holding a lock next
// to the install directory.
func (rt *ProvisioningRuntime) moveIntoPlace(ctx context.Context) error {
	parent := filepath.Dir(rt.installDir)
	if err := os.MkdirAll(parent, util.DefaultDirPerm); err != nil {
		return errors.New(InstallError{Dir: rt.installDir, Err: err})
	}

	lock := flock.New(rt.installDir + lockFileExt)

	if err := lock.Lock(); err != nil {
		return errors.New(InstallError{Dir: rt.installDir, Err: err})
	}

	defer func() {
		if err := lock.Unlock(); err != nil {
			rt.opts.Logger.Warnf("Failed to release lock %s: %v", lock.Path(), err)
		}

		if err := os.Remove(lock.Path()); err != nil && !os.IsNotExist(err) {
			rt.opts.Logger.Warnf("Failed to remove lock %s: %v", lock.Path(), err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return errors.New(err)
	}

	if err := os.RemoveAll(rt.installDir); err != nil {
		return errors.New(InstallError{Dir: rt.installDir, Err: err})
	}

	if err := os.Rename(rt.StagedDir(), rt.installDir); err != nil {
		rt.opts.Logger.Debugf("Rename to %s failed, copying instead: %v", rt.installDir, err)

		if err := util.CopyFolderContents(rt.StagedDir(), rt.installDir); err != nil {
			return errors.New(InstallError{Dir: rt.installDir, Err: err})
		}
	}

	rt.opts.Logger.Infof("Installed into %s", rt.installDir)

	return nil
}
