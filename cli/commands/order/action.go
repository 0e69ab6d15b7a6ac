package order

import (
	"context"

	"github.com/gruntwork-io/fpack/cli/commands"
	"github.com/gruntwork-io/fpack/internal/runtime"
	"github.com/gruntwork-io/fpack/options"
)

func Run(ctx context.Context, opts *options.ProvisioningOptions, path string) error {
	provisioningConfig, err := commands.ParseProvisioningConfig(ctx, opts, path)
	if err != nil {
		return err
	}

	resolver, err := commands.NewResolver(opts)
	if err != nil {
		return err
	}

	rt, err := runtime.NewBuilder(opts, resolver).Build(ctx, provisioningConfig)
	if err != nil {
		return err
	}

	defer func() {
		if err := rt.Close(); err != nil {
			opts.Logger.Warnf("Failed to remove work directory %s: %v", rt.WorkDir(), err)
		}
	}()

	return Print(commands.NewPrinterForOptions(opts), rt)
}

// Print writes the feature-packs in installation order, then each config with its features grouped
// by branch.
func Print(p *commands.Printer, rt *runtime.ProvisioningRuntime) error {
	for _, fp := range rt.FeaturePacks {
		p.FeaturePack(fp.Gav, fp.PackageNames())
	}

	for _, cfg := range rt.Configs {
		p.Config(cfg.ID, cfg.Props)

		for i, branch := range cfg.Branches {
			p.Printf(1, "branch %d", i+1)

			for _, f := range branch {
				p.Feature(2, f.Spec.ID, f.SortedParams(), f.StartsBatch(), f.EndsBatch())
			}
		}
	}

	return p.Err()
}
