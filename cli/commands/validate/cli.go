// Package validate implements the `fpack validate` command checking that a feature-pack is self consistent.
package validate

import (
	"github.com/urfave/cli/v2"

	"github.com/gruntwork-io/fpack/options"
)

const CommandName = "validate"

func NewCommand(opts *options.ProvisioningOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Validate a feature-pack directory or archive.",
		ArgsUsage: "<feature-pack>",
		Action: func(ctx *cli.Context) error {
			return Run(ctx.Context, opts, ctx.Args().First())
		},
	}
}
