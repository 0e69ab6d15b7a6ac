package plugin

import (
	"context"

	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/spec"
)

// ConfigHandler receives the features of a provisioned config in order. NextFeaturePack and NextSpec
// are called when the feature-pack or spec changes from the previous feature; StartBatch and EndBatch
// bracket features that must be applied as one unit.
type ConfigHandler interface {
	Prepare(ctx context.Context, config *spec.ProvisionedConfig) error
	NextFeaturePack(gav coords.Gav) error
	NextSpec(spec spec.ResolvedSpecID) error
	NextFeature(feature *spec.ProvisionedFeature) error
	StartBatch() error
	EndBatch() error
	Done() error
}

// HandleConfig feeds the features of the config to the handler.
func HandleConfig(ctx context.Context, config *spec.ProvisionedConfig, handler ConfigHandler) error {
	if err := handler.Prepare(ctx, config); err != nil {
		return err
	}

	var (
		lastGav  coords.Gav
		lastSpec spec.ResolvedSpecID
		first    = true
	)

	for _, feature := range config.Features {
		if err := ctx.Err(); err != nil {
			return err
		}

		if first || feature.Spec.Gav != lastGav {
			if err := handler.NextFeaturePack(feature.Spec.Gav); err != nil {
				return err
			}

			lastGav = feature.Spec.Gav
		}

		if first || feature.Spec != lastSpec {
			if err := handler.NextSpec(feature.Spec); err != nil {
				return err
			}

			lastSpec = feature.Spec
		}

		first = false

		if feature.StartsBatch {
			if err := handler.StartBatch(); err != nil {
				return err
			}
		}

		if err := handler.NextFeature(feature); err != nil {
			return err
		}

		if feature.EndsBatch {
			if err := handler.EndBatch(); err != nil {
				return err
			}
		}
	}

	return handler.Done()
}
