package state

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/gruntwork-io/fpack/cli/commands"
	"github.com/gruntwork-io/fpack/cli/commands/provision"
	"github.com/gruntwork-io/fpack/config"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/options"
	"github.com/gruntwork-io/fpack/spec"
	"github.com/gruntwork-io/fpack/util"
)

// Show prints the provisioned state of the installation.
func Show(ctx context.Context, opts *options.ProvisioningOptions) error {
	state, err := readState(ctx, opts)
	if err != nil {
		return err
	}

	p := commands.NewPrinterForOptions(opts)

	for _, fp := range state.FeaturePacks {
		p.FeaturePack(fp.Gav, fp.Packages)
	}

	for _, cfg := range state.Configs {
		p.Config(cfg.ID, cfg.Props)

		for _, f := range cfg.Features {
			p.Feature(1, f.Spec, f.Params, f.StartsBatch, f.EndsBatch)
		}
	}

	return p.Err()
}

// ExcludeConfig re-provisions the installation from its recorded provisioning config with the config
// excluded.
func ExcludeConfig(ctx context.Context, opts *options.ProvisioningOptions, id spec.ConfigID) error {
	if id.Model == "" && id.Name == "" {
		return errors.New(commands.MissingArgumentError{Name: "--model or --name"})
	}

	state, err := readState(ctx, opts)
	if err != nil {
		return err
	}

	if state.Config(id) == nil {
		return errors.New(ConfigNotProvisionedError{Config: id})
	}

	stateDir, err := stateDir(opts)
	if err != nil {
		return err
	}

	provisioningConfig, err := commands.ParseProvisioningConfig(ctx, opts, filepath.Join(stateDir, config.ProvisioningFileName))
	if err != nil {
		return err
	}

	provisioningConfig.IncludedConfigs = slices.DeleteFunc(provisioningConfig.IncludedConfigs, func(included spec.ConfigID) bool {
		return included == id
	})

	if !slices.Contains(provisioningConfig.ExcludedConfigs, id) {
		provisioningConfig.ExcludedConfigs = append(provisioningConfig.ExcludedConfigs, id)
	}

	opts.Logger.Infof("Excluding config %s", id)

	return provision.Provision(ctx, opts, provisioningConfig)
}

func stateDir(opts *options.ProvisioningOptions) (string, error) {
	installDir, err := commands.InstallDir(opts)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(installDir, config.StateDir)
	if !util.IsDir(dir) {
		return "", errors.New(NotProvisionedError{InstallDir: installDir})
	}

	return dir, nil
}

func readState(ctx context.Context, opts *options.ProvisioningOptions) (*spec.ProvisionedState, error) {
	dir, err := stateDir(opts)
	if err != nil {
		return nil, err
	}

	return config.ParseProvisionedState(commands.NewParsingContext(ctx, opts), filepath.Join(dir, config.ProvisionedStateFileName))
}
