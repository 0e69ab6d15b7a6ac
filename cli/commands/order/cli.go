// Package order implements the `fpack order` command printing the resolved feature-packs and the
// ordered features of every config without installing anything.
package order

import (
	"github.com/urfave/cli/v2"

	"github.com/gruntwork-io/fpack/options"
)

const CommandName = "order"

func NewCommand(opts *options.ProvisioningOptions) *cli.Command {
	return &cli.Command{
		Name:      CommandName,
		Usage:     "Print the resolved feature-packs and the ordered features of each config.",
		ArgsUsage: "<provisioning.hcl>",
		Action: func(ctx *cli.Context) error {
			return Run(ctx.Context, opts, ctx.Args().First())
		},
	}
}
