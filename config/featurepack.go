package config

import (
	"path/filepath"
	"sort"

	"github.com/gruntwork-io/fpack/config/hclparse"
	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/spec"
	"github.com/hashicorp/hcl/v2"
)

// File and directory names of a feature-pack layout and of an installation.
const (
	FeaturePackFileName      = "feature-pack.hcl"
	PackagesDir              = "packages"
	PackageFileName          = "package.hcl"
	ContentDir               = "content"
	FeaturesDir              = "features"
	FeatureSpecFileName      = "spec.hcl"
	FeatureGroupsDir         = "feature_groups"
	FeatureGroupFileExt      = ".hcl"
	ResourcesDir             = "resources"
	PluginsDir               = "plugins"
	StateDir                 = ".fpack"
	ProvisionedStateFileName = "provisioned.hcl"
	ProvisioningFileName     = "provisioning.hcl"
)

// ParseFeaturePackSpec parses a feature-pack descriptor.
func ParseFeaturePackSpec(ctx *ParsingContext, path string) (*spec.FeaturePackSpec, error) {
	file, err := ctx.parseFile(path)
	if err != nil {
		return nil, err
	}

	return decodeFeaturePackFile(file)
}

// ParseFeaturePackSpecString is like ParseFeaturePackSpec but parses the given content.
func ParseFeaturePackSpecString(ctx *ParsingContext, content, path string) (*spec.FeaturePackSpec, error) {
	file, err := ctx.parseBytes([]byte(content), path)
	if err != nil {
		return nil, err
	}

	return decodeFeaturePackFile(file)
}

func decodeFeaturePackFile(file *hclparse.File) (*spec.FeaturePackSpec, error) {
	var decoded featurePackFile
	if err := file.Decode(&decoded, nil); err != nil {
		return nil, err
	}

	gav, err := coords.ParseGav(decoded.Gav)
	if err != nil {
		return nil, errors.New(InvalidSpecFileError{Path: file.ConfigPath, Err: err})
	}

	fpSpec := &spec.FeaturePackSpec{Gav: gav, DefaultPackages: decoded.DefaultPackages}

	for _, block := range decoded.Dependencies {
		depGav, err := coords.ParseGav(block.Gav)
		if err != nil {
			return nil, errors.New(InvalidSpecFileError{Path: file.ConfigPath, Err: err})
		}

		depConfig, err := decodeFeaturePackConfig(file, depGav, block.Remain)
		if err != nil {
			return nil, err
		}

		fpSpec.Dependencies = append(fpSpec.Dependencies, &spec.FeaturePackDependencySpec{Name: block.Name, Config: depConfig})
	}

	for _, block := range decoded.Configs {
		config, err := decodeConfig(file, block)
		if err != nil {
			return nil, err
		}

		fpSpec.Configs = append(fpSpec.Configs, config)
	}

	return fpSpec, nil
}

func decodeFeaturePackConfig(file *hclparse.File, gav coords.Gav, body hcl.Body) (*spec.FeaturePackConfig, error) {
	var decoded featurePackConfigBody
	if err := file.DecodeBody(body, &decoded, nil); err != nil {
		return nil, err
	}

	fpConfig := spec.NewFeaturePackConfig(gav)
	fpConfig.ExcludedPackages = decoded.ExcludedPackages

	if decoded.InheritPackages != nil {
		fpConfig.InheritPackages = *decoded.InheritPackages
	}

	for _, block := range decoded.IncludedPackages {
		fpConfig.IncludedPackages = append(fpConfig.IncludedPackages, &spec.PackageConfig{Name: block.Name, Params: decodeParams(block.Params)})
	}

	if err := decodeCustomizations(file, decoded.Remain, &fpConfig.ConfigCustomizations); err != nil {
		return nil, err
	}

	return fpConfig, nil
}

func decodeCustomizations(file *hclparse.File, body hcl.Body, out *spec.ConfigCustomizations) error {
	var decoded customizationsBody
	if err := file.DecodeBody(body, &decoded, nil); err != nil {
		return err
	}

	if decoded.InheritConfigs != nil {
		out.InheritConfigs = *decoded.InheritConfigs
	}

	if decoded.InheritModelOnlyConfigs != nil {
		out.InheritModelOnlyConfigs = *decoded.InheritModelOnlyConfigs
	}

	out.IncludedModels = decoded.IncludedModels

	for _, block := range decoded.ExcludedModels {
		out.ExcludeModel(block.Model, block.NamedOnly)
	}

	for _, block := range decoded.IncludedConfigs {
		out.IncludedConfigs = append(out.IncludedConfigs, spec.ConfigID{Model: block.Model, Name: block.Name})
	}

	for _, block := range decoded.ExcludedConfigs {
		out.ExcludedConfigs = append(out.ExcludedConfigs, spec.ConfigID{Model: block.Model, Name: block.Name})
	}

	for _, block := range decoded.Configs {
		config, err := decodeConfig(file, block)
		if err != nil {
			return err
		}

		out.DefinedConfigs = append(out.DefinedConfigs, config)
	}

	return nil
}

func decodeConfig(file *hclparse.File, block *configBlock) (*spec.ConfigModel, error) {
	config := spec.NewConfigModel(block.Model, block.Name)

	for key, value := range block.Props {
		config.Props[key] = value
	}

	for _, dep := range block.ConfigDeps {
		config.ConfigDeps[dep.ID] = spec.ConfigID{Model: dep.Model, Name: dep.Name}
	}

	if err := decodeGroupBody(file, block.Remain, &config.FeatureGroupSupport); err != nil {
		return nil, err
	}

	return config, nil
}

func decodeParams(blocks []*paramBlock) []spec.PackageParameter {
	var params []spec.PackageParameter

	for _, block := range blocks {
		params = append(params, spec.PackageParameter{Name: block.Name, Value: block.Value})
	}

	return params
}

// ParsePackageSpec parses the package.hcl of the package directory pkgDir.
func ParsePackageSpec(ctx *ParsingContext, pkgDir string) (*spec.PackageSpec, error) {
	file, err := ctx.parseFile(filepath.Join(pkgDir, PackageFileName))
	if err != nil {
		return nil, err
	}

	var decoded packageFile
	if err := file.Decode(&decoded, nil); err != nil {
		return nil, err
	}

	pkgSpec := &spec.PackageSpec{
		Name:   filepath.Base(pkgDir),
		Params: decodeParams(decoded.Params),
	}

	for _, block := range decoded.Filters {
		pkgSpec.Filters = append(pkgSpec.Filters, spec.ContentFilter{Pattern: block.Pattern, Include: block.Include})
	}

	for _, block := range decoded.Deps {
		pkgSpec.LocalDeps = append(pkgSpec.LocalDeps, decodePackageDep(block))
	}

	for _, block := range decoded.ExternalDeps {
		external := spec.ExternalPackageDependencies{Origin: block.Origin}
		for _, dep := range block.Deps {
			external.Deps = append(external.Deps, decodePackageDep(dep))
		}

		pkgSpec.ExternalDeps = append(pkgSpec.ExternalDeps, external)
	}

	return pkgSpec, nil
}

func decodePackageDep(block *packageDepSpecBlock) spec.PackageDependencySpec {
	return spec.PackageDependencySpec{Name: block.Name, Optional: block.Optional, Params: decodeParams(block.Params)}
}

// ParseFeatureSpec parses the spec.hcl of the feature spec directory specDir.
func ParseFeatureSpec(ctx *ParsingContext, specDir string) (*spec.FeatureSpec, error) {
	file, err := ctx.parseFile(filepath.Join(specDir, FeatureSpecFileName))
	if err != nil {
		return nil, err
	}

	var decoded featureSpecFile
	if err := file.Decode(&decoded, nil); err != nil {
		return nil, err
	}

	featureSpec := &spec.FeatureSpec{
		Name:                 filepath.Base(specDir),
		StartsBranchAsParent: decoded.StartsBranchAsParent,
	}

	for _, block := range decoded.Params {
		featureSpec.Params = append(featureSpec.Params, &spec.FeatureParameterSpec{
			Name:           block.Name,
			Default:        block.Default,
			FeatureID:      block.FeatureID,
			Nillable:       block.Nillable,
			ResetOnExclude: block.ResetOnExclude,
		})
	}

	caps := []struct {
		names    []string
		optional bool
		out      *[]*spec.CapabilitySpec
	}{
		{decoded.Provides, false, &featureSpec.ProvidedCapabilities},
		{decoded.Requires, false, &featureSpec.RequiredCapabilities},
		{decoded.OptionalRequires, true, &featureSpec.RequiredCapabilities},
	}

	for _, group := range caps {
		for _, name := range group.names {
			capSpec, err := spec.ParseCapabilitySpec(name, group.optional)
			if err != nil {
				return nil, errors.New(InvalidSpecFileError{Path: file.ConfigPath, Err: err})
			}

			*group.out = append(*group.out, capSpec)
		}
	}

	for _, block := range decoded.Refs {
		ref := &spec.FeatureReferenceSpec{
			Name:     block.Name,
			Origin:   block.Origin,
			Feature:  block.Feature,
			Nillable: block.Nillable,
			Include:  block.Include,
		}

		if ref.Feature == "" {
			ref.Feature = block.Name
		}

		for param, target := range block.Mappings {
			ref.Mappings = append(ref.Mappings, spec.RefMapping{Param: param, TargetParam: target})
		}

		sort.Slice(ref.Mappings, func(i, j int) bool { return ref.Mappings[i].Param < ref.Mappings[j].Param })

		featureSpec.Refs = append(featureSpec.Refs, ref)
	}

	for _, block := range decoded.PackageDeps {
		featureSpec.PackageDeps = append(featureSpec.PackageDeps, spec.PackageDependency{Origin: block.Origin, Name: block.Name, Optional: block.Optional})
	}

	return featureSpec, nil
}
