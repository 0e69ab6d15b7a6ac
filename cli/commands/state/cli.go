// Package state implements the `fpack state` commands working on the provisioned state recorded in
// an installation.
package state

import (
	"github.com/urfave/cli/v2"

	"github.com/gruntwork-io/fpack/cli/commands/provision"
	"github.com/gruntwork-io/fpack/options"
	"github.com/gruntwork-io/fpack/spec"
)

const (
	CommandName = "state"

	ShowCommandName          = "show"
	ExcludeConfigCommandName = "exclude-config"

	ModelFlagName = "model"
	NameFlagName  = "name"
)

func NewCommand(opts *options.ProvisioningOptions) *cli.Command {
	return &cli.Command{
		Name:  CommandName,
		Usage: "Inspect or change the provisioned state of an installation.",
		Subcommands: []*cli.Command{
			newShowCommand(opts),
			newExcludeConfigCommand(opts),
		},
	}
}

func newShowCommand(opts *options.ProvisioningOptions) *cli.Command {
	return &cli.Command{
		Name:  ShowCommandName,
		Usage: "Print the provisioned feature-packs, packages and configs.",
		Flags: []cli.Flag{provision.NewInstallDirFlag(opts)},
		Action: func(ctx *cli.Context) error {
			return Show(ctx.Context, opts)
		},
	}
}

func newExcludeConfigCommand(opts *options.ProvisioningOptions) *cli.Command {
	var id spec.ConfigID

	return &cli.Command{
		Name:  ExcludeConfigCommandName,
		Usage: "Re-provision the installation without the given config.",
		Flags: []cli.Flag{
			provision.NewInstallDirFlag(opts),
			&cli.StringFlag{
				Name:        ModelFlagName,
				Usage:       "The model of the config.",
				Destination: &id.Model,
			},
			&cli.StringFlag{
				Name:        NameFlagName,
				Usage:       "The name of the config.",
				Destination: &id.Name,
			},
		},
		Action: func(ctx *cli.Context) error {
			return ExcludeConfig(ctx.Context, opts, id)
		},
	}
}
