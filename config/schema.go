package config

import (
	"github.com/hashicorp/hcl/v2"
)

// Block and attribute names shared by the spec files.
const (
	featureBlockType      = "feature"
	featureGroupBlockType = "feature_group"
)

type featurePackFile struct {
	Gav             string             `hcl:"gav,attr"`
	DefaultPackages []string           `hcl:"default_packages,optional"`
	Dependencies    []*dependencyBlock `hcl:"dependency,block"`
	Configs         []*configBlock     `hcl:"config,block"`
}

type dependencyBlock struct {
	Name   string   `hcl:"name,label"`
	Gav    string   `hcl:"gav,attr"`
	Remain hcl.Body `hcl:",remain"`
}

type featurePackBlock struct {
	Gav    string   `hcl:"gav,label"`
	Remain hcl.Body `hcl:",remain"`
}

// featurePackConfigBody is the body of a feature-pack request, in a dependency or a provisioning file.
type featurePackConfigBody struct {
	InheritPackages  *bool           `hcl:"inherit_packages,optional"`
	ExcludedPackages []string        `hcl:"excluded_packages,optional"`
	IncludedPackages []*packageBlock `hcl:"package,block"`
	Remain           hcl.Body        `hcl:",remain"`
}

type customizationsBody struct {
	InheritConfigs          *bool                 `hcl:"inherit_configs,optional"`
	InheritModelOnlyConfigs *bool                 `hcl:"inherit_model_only_configs,optional"`
	IncludedModels          []string              `hcl:"included_models,optional"`
	ExcludedModels          []*excludedModelBlock `hcl:"exclude_model,block"`
	IncludedConfigs         []*configRefBlock     `hcl:"include_config,block"`
	ExcludedConfigs         []*configRefBlock     `hcl:"exclude_config,block"`
	Configs                 []*configBlock        `hcl:"config,block"`
}

type provisioningFile struct {
	FeaturePacks []*featurePackBlock `hcl:"feature_pack,block"`
	Remain       hcl.Body            `hcl:",remain"`
}

type excludedModelBlock struct {
	Model     string `hcl:"model,label"`
	NamedOnly bool   `hcl:"named_only,optional"`
}

type configRefBlock struct {
	Model string `hcl:"model,optional"`
	Name  string `hcl:"name,optional"`
}

type packageBlock struct {
	Name   string        `hcl:"name,label"`
	Params []*paramBlock `hcl:"param,block"`
}

type paramBlock struct {
	Name  string `hcl:"name,label"`
	Value string `hcl:"value,attr"`
}

type configBlock struct {
	Model      string            `hcl:"model,optional"`
	Name       string            `hcl:"name,optional"`
	Props      map[string]string `hcl:"props,optional"`
	ConfigDeps []*configDepBlock `hcl:"config_dep,block"`
	Remain     hcl.Body          `hcl:",remain"`
}

type configDepBlock struct {
	ID    string `hcl:"id,label"`
	Model string `hcl:"model,optional"`
	Name  string `hcl:"name,optional"`
}

// groupBody is the body of a feature group file, a feature group reference or a config.
type groupBody struct {
	InheritFeatures  *bool                  `hcl:"inherit_features,optional"`
	IncludedSpecs    []string               `hcl:"included_specs,optional"`
	ExcludedSpecs    []string               `hcl:"excluded_specs,optional"`
	IncludedFeatures []*includeFeatureBlock `hcl:"include_feature,block"`
	ExcludedFeatures []string               `hcl:"excluded_features,optional"`
	Features         []*featureBlock        `hcl:"feature,block"`
	Groups           []*groupRefBlock       `hcl:"feature_group,block"`
	PackageDeps      []*packageDepBlock     `hcl:"package_dependency,block"`
}

type includeFeatureBlock struct {
	ID     string            `hcl:"id,label"`
	Params map[string]string `hcl:"params,optional"`
}

type featureBlock struct {
	Spec   string             `hcl:"spec,label"`
	Params map[string]string  `hcl:"params,optional"`
	Deps   []*featureDepBlock `hcl:"depends,block"`
}

type featureDepBlock struct {
	ID      string `hcl:"id,label"`
	Include bool   `hcl:"include,optional"`
}

type groupRefBlock struct {
	Name   string   `hcl:"name,label"`
	Origin string   `hcl:"origin,optional"`
	Remain hcl.Body `hcl:",remain"`
}

type packageDepBlock struct {
	Name     string `hcl:"name,label"`
	Origin   string `hcl:"origin,optional"`
	Optional bool   `hcl:"optional,optional"`
}

type packageFile struct {
	Deps         []*packageDepSpecBlock `hcl:"dependency,block"`
	ExternalDeps []*externalDepsBlock   `hcl:"external_dependency,block"`
	Params       []*paramBlock          `hcl:"param,block"`
	Filters      []*filterBlock         `hcl:"filter,block"`
}

type filterBlock struct {
	Pattern string `hcl:"pattern,label"`
	Include bool   `hcl:"include,optional"`
}

type packageDepSpecBlock struct {
	Name     string        `hcl:"name,label"`
	Optional bool          `hcl:"optional,optional"`
	Params   []*paramBlock `hcl:"param,block"`
}

type externalDepsBlock struct {
	Origin string                 `hcl:"origin,label"`
	Deps   []*packageDepSpecBlock `hcl:"dependency,block"`
}

type featureSpecFile struct {
	Params               []*featureParamBlock `hcl:"param,block"`
	Provides             []string             `hcl:"provides,optional"`
	Requires             []string             `hcl:"requires,optional"`
	OptionalRequires     []string             `hcl:"optional_requires,optional"`
	Refs                 []*referenceBlock    `hcl:"reference,block"`
	PackageDeps          []*packageDepBlock   `hcl:"package_dependency,block"`
	StartsBranchAsParent bool                 `hcl:"starts_branch_as_parent,optional"`
}

type featureParamBlock struct {
	Name           string  `hcl:"name,label"`
	FeatureID      bool    `hcl:"feature_id,optional"`
	Default        *string `hcl:"default,optional"`
	Nillable       bool    `hcl:"nillable,optional"`
	ResetOnExclude bool    `hcl:"reset_on_exclude,optional"`
}

type referenceBlock struct {
	Name     string            `hcl:"name,label"`
	Feature  string            `hcl:"feature,optional"`
	Origin   string            `hcl:"origin,optional"`
	Nillable bool              `hcl:"nillable,optional"`
	Include  bool              `hcl:"include,optional"`
	Mappings map[string]string `hcl:"mappings,optional"`
}

type provisionedFile struct {
	FeaturePacks []*provisionedFeaturePackBlock `hcl:"feature_pack,block"`
	Configs      []*provisionedConfigBlock      `hcl:"config,block"`
}

type provisionedFeaturePackBlock struct {
	Gav      string   `hcl:"gav,label"`
	Packages []string `hcl:"packages,optional"`
}

type provisionedConfigBlock struct {
	Model    string                     `hcl:"model,optional"`
	Name     string                     `hcl:"name,optional"`
	Props    map[string]string          `hcl:"props,optional"`
	Features []*provisionedFeatureBlock `hcl:"feature,block"`
}

type provisionedFeatureBlock struct {
	Spec        string            `hcl:"spec,label"`
	Gav         string            `hcl:"gav,attr"`
	ID          map[string]string `hcl:"id,optional"`
	Params      map[string]string `hcl:"params,optional"`
	StartsBatch bool              `hcl:"starts_batch,optional"`
	EndsBatch   bool              `hcl:"ends_batch,optional"`
}
