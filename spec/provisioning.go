package spec

import (
	"slices"

	"github.com/gruntwork-io/fpack/coords"
)

// ExcludedModel excludes the configs of a model. With NamedOnly the model-only config is kept.
type ExcludedModel struct {
	Model     string
	NamedOnly bool
}

// ConfigDecision is what a layer of config customizations says about a config.
type ConfigDecision int

const (
	ConfigUndecided ConfigDecision = iota
	ConfigIncluded
	ConfigExcluded
)

// ConfigCustomizations select which configs are inherited from feature-packs and define new ones.
type ConfigCustomizations struct {
	InheritConfigs          bool
	InheritModelOnlyConfigs bool
	IncludedModels          []string
	ExcludedModels          []ExcludedModel
	IncludedConfigs         []ConfigID
	ExcludedConfigs         []ConfigID
	DefinedConfigs          []*ConfigModel
}

// DefaultConfigCustomizations inherit every config.
func DefaultConfigCustomizations() ConfigCustomizations {
	return ConfigCustomizations{InheritConfigs: true, InheritModelOnlyConfigs: true}
}

// ExcludeModel adds a model exclusion.
func (cc *ConfigCustomizations) ExcludeModel(model string, namedOnly bool) {
	cc.ExcludedModels = append(cc.ExcludedModels, ExcludedModel{Model: model, NamedOnly: namedOnly})
}

// Decide returns the decision of this layer for the config, explicit config rules first,
// then model rules, then the inherit flags.
func (cc *ConfigCustomizations) Decide(id ConfigID) ConfigDecision {
	switch {
	case slices.Contains(cc.IncludedConfigs, id):
		return ConfigIncluded
	case slices.Contains(cc.ExcludedConfigs, id):
		return ConfigExcluded
	case id.Model != "" && slices.Contains(cc.IncludedModels, id.Model):
		return ConfigIncluded
	}

	for _, excluded := range cc.ExcludedModels {
		if excluded.Model == id.Model && (!excluded.NamedOnly || id.Name != "") {
			return ConfigExcluded
		}
	}

	if id.IsModelOnly() {
		if !cc.InheritModelOnlyConfigs {
			return ConfigExcluded
		}

		return ConfigUndecided
	}

	if !cc.InheritConfigs {
		return ConfigExcluded
	}

	return ConfigUndecided
}

// FeaturePackConfig requests a feature-pack with package and config customizations.
type FeaturePackConfig struct {
	Gav              coords.Gav
	InheritPackages  bool
	ExcludedPackages []string
	IncludedPackages []*PackageConfig
	ConfigCustomizations
}

// NewFeaturePackConfig returns a config inheriting everything from the feature-pack.
func NewFeaturePackConfig(gav coords.Gav) *FeaturePackConfig {
	return &FeaturePackConfig{
		Gav:                  gav,
		InheritPackages:      true,
		ConfigCustomizations: DefaultConfigCustomizations(),
	}
}

// IsPackageExcluded reports whether this config excludes the package.
func (cfg *FeaturePackConfig) IsPackageExcluded(name string) bool {
	return slices.Contains(cfg.ExcludedPackages, name)
}

// IncludedPackage returns the include of the named package or nil.
func (cfg *FeaturePackConfig) IncludedPackage(name string) *PackageConfig {
	for _, pkg := range cfg.IncludedPackages {
		if pkg.Name == name {
			return pkg
		}
	}

	return nil
}

// ExcludePackage adds a package exclusion.
func (cfg *FeaturePackConfig) ExcludePackage(name string) *FeaturePackConfig {
	cfg.ExcludedPackages = append(cfg.ExcludedPackages, name)
	return cfg
}

// IncludePackage adds a package include.
func (cfg *FeaturePackConfig) IncludePackage(name string, params ...PackageParameter) *FeaturePackConfig {
	cfg.IncludedPackages = append(cfg.IncludedPackages, &PackageConfig{Name: name, Params: params})
	return cfg
}

// ProvisioningConfig is the root provisioning request.
type ProvisioningConfig struct {
	FeaturePacks []*FeaturePackConfig
	ConfigCustomizations
}

// NewProvisioningConfig returns a request for the given feature-packs.
func NewProvisioningConfig(fps ...*FeaturePackConfig) *ProvisioningConfig {
	return &ProvisioningConfig{
		FeaturePacks:         fps,
		ConfigCustomizations: DefaultConfigCustomizations(),
	}
}

// FeaturePack returns the config of the feature-pack with the given group and artifact or nil.
func (cfg *ProvisioningConfig) FeaturePack(ga coords.Ga) *FeaturePackConfig {
	for _, fp := range cfg.FeaturePacks {
		if fp.Gav.Ga() == ga {
			return fp
		}
	}

	return nil
}
