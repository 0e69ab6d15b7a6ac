package provision

import (
	"context"
	"strings"

	"github.com/gruntwork-io/fpack/cli/commands"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/internal/runtime"
	"github.com/gruntwork-io/fpack/options"
	"github.com/gruntwork-io/fpack/plugins"
	"github.com/gruntwork-io/fpack/spec"
)

func Run(ctx context.Context, opts *options.ProvisioningOptions, path string) error {
	provisioningConfig, err := commands.ParseProvisioningConfig(ctx, opts, path)
	if err != nil {
		return err
	}

	return Provision(ctx, opts, provisioningConfig)
}

// Provision installs the provisioning config into the install directory of opts.
func Provision(ctx context.Context, opts *options.ProvisioningOptions, provisioningConfig *spec.ProvisioningConfig) error {
	installDir, err := commands.InstallDir(opts)
	if err != nil {
		return err
	}

	resolver, err := commands.NewResolver(opts)
	if err != nil {
		return err
	}

	opts.Logger.Infof("Provisioning %d feature-pack(s) into %s", len(provisioningConfig.FeaturePacks), installDir)

	if err := runtime.Provision(ctx, opts, resolver, plugins.NewRegistry(), provisioningConfig); err != nil {
		return err
	}

	opts.Logger.Infof("Provisioned %s", installDir)

	return nil
}

// ParsePluginOptions adds values in the form `<plugin>.<option>=<value>` to the plugin options.
func ParsePluginOptions(opts *options.ProvisioningOptions, values []string) error {
	for _, val := range values {
		key, value, ok := strings.Cut(val, "=")
		plugin, option, dotted := strings.Cut(key, ".")

		if !ok || !dotted || plugin == "" || option == "" {
			return errors.New(InvalidPluginOptionError{Value: val})
		}

		if opts.PluginOptions[plugin] == nil {
			opts.PluginOptions[plugin] = map[string]string{}
		}

		opts.PluginOptions[plugin][option] = value
	}

	return nil
}
