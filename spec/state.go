package spec

import "github.com/gruntwork-io/fpack/coords"

// ProvisionedState is the outcome of a provisioning run, recorded next to the installation.
type ProvisionedState struct {
	FeaturePacks []*ProvisionedFeaturePack
	Configs      []*ProvisionedConfig
}

// FeaturePack returns the provisioned feature-pack with the given group and artifact or nil.
func (state *ProvisionedState) FeaturePack(ga coords.Ga) *ProvisionedFeaturePack {
	for _, fp := range state.FeaturePacks {
		if fp.Gav.Ga() == ga {
			return fp
		}
	}

	return nil
}

// Config returns the provisioned config with the given id or nil.
func (state *ProvisionedState) Config(id ConfigID) *ProvisionedConfig {
	for _, cfg := range state.Configs {
		if cfg.ID == id {
			return cfg
		}
	}

	return nil
}

// ProvisionedFeaturePack is a feature-pack with the packages installed from it.
type ProvisionedFeaturePack struct {
	Gav      coords.Gav
	Packages []string
}

// ProvisionedConfig is a config with its features in processing order.
type ProvisionedConfig struct {
	ID       ConfigID
	Props    map[string]string
	Features []*ProvisionedFeature
}

// ProvisionedFeature is a feature with its effective params, ordered by name.
type ProvisionedFeature struct {
	Spec ResolvedSpecID
	// ID is zero for features of specs without id params.
	ID     ResolvedFeatureID
	Params []Param
	// StartsBatch and EndsBatch bracket features that must be applied as one unit.
	StartsBatch bool
	EndsBatch   bool
}

// Param returns the value of the named param.
func (feature *ProvisionedFeature) Param(name string) (string, bool) {
	for _, param := range feature.Params {
		if param.Name == name {
			return param.Value, true
		}
	}

	return "", false
}
