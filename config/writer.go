package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/spec"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

const (
	defaultFilePerm = 0o644
	defaultDirPerm  = 0o755
)

func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return errors.New(FileWriteError{Path: path, Err: err})
	}

	if err := os.WriteFile(path, content, defaultFilePerm); err != nil {
		return errors.New(FileWriteError{Path: path, Err: err})
	}

	return nil
}

func stringListVal(values []string) cty.Value {
	if len(values) == 0 {
		return cty.ListValEmpty(cty.String)
	}

	vals := make([]cty.Value, len(values))
	for i, value := range values {
		vals[i] = cty.StringVal(value)
	}

	return cty.ListVal(vals)
}

func stringMapVal(values map[string]string) cty.Value {
	if len(values) == 0 {
		return cty.EmptyObjectVal
	}

	vals := make(map[string]cty.Value, len(values))
	for key, value := range values {
		vals[key] = cty.StringVal(value)
	}

	return cty.ObjectVal(vals)
}

func setStringList(body *hclwrite.Body, name string, values []string) {
	if len(values) > 0 {
		body.SetAttributeValue(name, stringListVal(values))
	}
}

func setStringMap(body *hclwrite.Body, name string, values map[string]string) {
	if len(values) > 0 {
		body.SetAttributeValue(name, stringMapVal(values))
	}
}

func setString(body *hclwrite.Body, name, value string) {
	if value != "" {
		body.SetAttributeValue(name, cty.StringVal(value))
	}
}

func setBool(body *hclwrite.Body, name string, value bool) {
	if value {
		body.SetAttributeValue(name, cty.True)
	}
}

func writeParams(body *hclwrite.Body, params []spec.PackageParameter) {
	for _, param := range params {
		body.AppendNewBlock("param", []string{param.Name}).Body().SetAttributeValue("value", cty.StringVal(param.Value))
	}
}

func writeFeaturePackConfigBody(body *hclwrite.Body, fpConfig *spec.FeaturePackConfig) {
	if !fpConfig.InheritPackages {
		body.SetAttributeValue("inherit_packages", cty.False)
	}

	setStringList(body, "excluded_packages", fpConfig.ExcludedPackages)

	for _, pkg := range fpConfig.IncludedPackages {
		writeParams(body.AppendNewBlock("package", []string{pkg.Name}).Body(), pkg.Params)
	}

	writeCustomizations(body, &fpConfig.ConfigCustomizations)
}

func writeCustomizations(body *hclwrite.Body, cc *spec.ConfigCustomizations) {
	if !cc.InheritConfigs {
		body.SetAttributeValue("inherit_configs", cty.False)
	}

	if !cc.InheritModelOnlyConfigs {
		body.SetAttributeValue("inherit_model_only_configs", cty.False)
	}

	setStringList(body, "included_models", cc.IncludedModels)

	for _, excluded := range cc.ExcludedModels {
		setBool(body.AppendNewBlock("exclude_model", []string{excluded.Model}).Body(), "named_only", excluded.NamedOnly)
	}

	for _, id := range cc.IncludedConfigs {
		writeConfigID(body.AppendNewBlock("include_config", nil).Body(), id)
	}

	for _, id := range cc.ExcludedConfigs {
		writeConfigID(body.AppendNewBlock("exclude_config", nil).Body(), id)
	}

	for _, config := range cc.DefinedConfigs {
		writeConfig(body.AppendNewBlock("config", nil).Body(), config)
	}
}

func writeConfigID(body *hclwrite.Body, id spec.ConfigID) {
	setString(body, "model", id.Model)
	setString(body, "name", id.Name)
}

func writeConfig(body *hclwrite.Body, config *spec.ConfigModel) {
	writeConfigID(body, config.ID)
	setStringMap(body, "props", config.Props)

	depIDs := make([]string, 0, len(config.ConfigDeps))
	for depID := range config.ConfigDeps {
		depIDs = append(depIDs, depID)
	}

	sort.Strings(depIDs)

	for _, depID := range depIDs {
		writeConfigID(body.AppendNewBlock("config_dep", []string{depID}).Body(), config.ConfigDeps[depID])
	}

	writeGroupBody(body, &config.FeatureGroupSupport)
}

func writeGroupBody(body *hclwrite.Body, fgs *spec.FeatureGroupSupport) {
	if !fgs.InheritFeatures {
		body.SetAttributeValue("inherit_features", cty.False)
	}

	setStringList(body, "included_specs", specIDStrings(fgs.IncludedSpecs))
	setStringList(body, "excluded_specs", specIDStrings(fgs.ExcludedSpecs))

	for _, included := range fgs.IncludedFeatures {
		block := body.AppendNewBlock("include_feature", []string{included.ID.String()})
		if included.Params != nil {
			block.Body().SetAttributeValue("params", stringMapVal(included.Params))
		}
	}

	excluded := make([]string, len(fgs.ExcludedFeatures))
	for i, id := range fgs.ExcludedFeatures {
		excluded[i] = id.String()
	}

	setStringList(body, "excluded_features", excluded)

	for _, dep := range fgs.PackageDeps {
		depBody := body.AppendNewBlock("package_dependency", []string{dep.Name}).Body()
		setString(depBody, "origin", dep.Origin)
		setBool(depBody, "optional", dep.Optional)
	}

	for _, item := range fgs.Items {
		switch item := item.(type) {
		case *spec.FeatureConfig:
			featureBody := body.AppendNewBlock(featureBlockType, []string{item.Spec.String()}).Body()
			setStringMap(featureBody, "params", item.Params)

			for _, dep := range item.Deps {
				setBool(featureBody.AppendNewBlock("depends", []string{dep.ID.String()}).Body(), "include", dep.Include)
			}
		case *spec.FeatureGroup:
			groupBody := body.AppendNewBlock(featureGroupBlockType, []string{item.Name}).Body()
			setString(groupBody, "origin", item.Origin)
			writeGroupBody(groupBody, &item.FeatureGroupSupport)
		}
	}
}

func specIDStrings(ids []spec.SpecID) []string {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}

	return strs
}
