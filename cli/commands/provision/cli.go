// Package provision implements the `fpack provision` command resolving a provisioning config and
// installing it.
package provision

import (
	"github.com/urfave/cli/v2"

	"github.com/gruntwork-io/fpack/options"
)

const (
	CommandName = "provision"

	InstallDirFlagName   = "install-dir"
	PluginOptionFlagName = "plugin-option"
)

// NewInstallDirFlag is shared by the commands working on an installation.
func NewInstallDirFlag(opts *options.ProvisioningOptions) cli.Flag {
	return &cli.StringFlag{
		Name:        InstallDirFlagName,
		Aliases:     []string{"d"},
		EnvVars:     []string{options.EnvPrefix + "INSTALL_DIR"},
		Usage:       "The directory the installation is provisioned into.",
		Value:       opts.InstallDir,
		Destination: &opts.InstallDir,
	}
}

func NewFlags(opts *options.ProvisioningOptions) []cli.Flag {
	return []cli.Flag{
		NewInstallDirFlag(opts),
		&cli.StringSliceFlag{
			Name:  PluginOptionFlagName,
			Usage: "Sets a plugin option as <plugin>.<option>=<value>, overriding the feature-pack and settings values. May be repeated.",
		},
	}
}

func NewCommand(opts *options.ProvisioningOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Resolve a provisioning config and install it.",
		ArgsUsage: "<provisioning.hcl>",
		Flags:     NewFlags(opts),
		Action: func(ctx *cli.Context) error {
			if err := ParsePluginOptions(opts, ctx.StringSlice(PluginOptionFlagName)); err != nil {
				return err
			}

			return Run(ctx.Context, opts, ctx.Args().First())
		},
	}
}
