package config

import (
	"sort"

	"github.com/gruntwork-io/fpack/config/hclparse"
	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/spec"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// ParseProvisionedState parses a provisioned state file.
func ParseProvisionedState(ctx *ParsingContext, path string) (*spec.ProvisionedState, error) {
	file, err := ctx.parseFile(path)
	if err != nil {
		return nil, err
	}

	return decodeProvisionedFile(file)
}

// ParseProvisionedStateString is like ParseProvisionedState but parses the given content.
func ParseProvisionedStateString(ctx *ParsingContext, content, path string) (*spec.ProvisionedState, error) {
	file, err := ctx.parseBytes([]byte(content), path)
	if err != nil {
		return nil, err
	}

	return decodeProvisionedFile(file)
}

func decodeProvisionedFile(file *hclparse.File) (*spec.ProvisionedState, error) {
	var decoded provisionedFile
	if err := file.Decode(&decoded, nil); err != nil {
		return nil, err
	}

	invalid := func(err error) error {
		return errors.New(InvalidSpecFileError{Path: file.ConfigPath, Err: err})
	}

	state := &spec.ProvisionedState{}

	for _, block := range decoded.FeaturePacks {
		gav, err := coords.ParseGav(block.Gav)
		if err != nil {
			return nil, invalid(err)
		}

		state.FeaturePacks = append(state.FeaturePacks, &spec.ProvisionedFeaturePack{Gav: gav, Packages: block.Packages})
	}

	for _, block := range decoded.Configs {
		config := &spec.ProvisionedConfig{ID: spec.ConfigID{Model: block.Model, Name: block.Name}}
		if len(block.Props) > 0 {
			config.Props = block.Props
		}

		for _, featureBlock := range block.Features {
			gav, err := coords.ParseGav(featureBlock.Gav)
			if err != nil {
				return nil, invalid(err)
			}

			feature := &spec.ProvisionedFeature{
				Spec:        spec.ResolvedSpecID{Gav: gav, Name: featureBlock.Spec},
				Params:      SortedParams(featureBlock.Params),
				StartsBatch: featureBlock.StartsBatch,
				EndsBatch:   featureBlock.EndsBatch,
			}

			if len(featureBlock.ID) > 0 {
				feature.ID = spec.NewResolvedFeatureID(feature.Spec, featureBlock.ID)
			}

			config.Features = append(config.Features, feature)
		}

		state.Configs = append(state.Configs, config)
	}

	return state, nil
}

// SortedParams returns the params ordered by name, nil when there are none.
func SortedParams(params map[string]string) []spec.Param {
	if len(params) == 0 {
		return nil
	}

	result := make([]spec.Param, 0, len(params))
	for name, value := range params {
		result = append(result, spec.Param{Name: name, Value: value})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result
}

// FormatProvisionedState renders a provisioned state in the format read by ParseProvisionedState.
func FormatProvisionedState(state *spec.ProvisionedState) []byte {
	file := hclwrite.NewEmptyFile()
	body := file.Body()

	for _, fp := range state.FeaturePacks {
		setStringList(body.AppendNewBlock("feature_pack", []string{fp.Gav.String()}).Body(), "packages", fp.Packages)
	}

	for _, config := range state.Configs {
		configBody := body.AppendNewBlock("config", nil).Body()
		writeConfigID(configBody, config.ID)
		setStringMap(configBody, "props", config.Props)

		for _, feature := range config.Features {
			featureBody := configBody.AppendNewBlock(featureBlockType, []string{feature.Spec.Name}).Body()
			featureBody.SetAttributeValue("gav", cty.StringVal(feature.Spec.Gav.String()))

			if !feature.ID.IsZero() {
				featureBody.SetAttributeValue("id", stringMapVal(feature.ID.Params.Map()))
			}

			params := make(map[string]string, len(feature.Params))
			for _, param := range feature.Params {
				params[param.Name] = param.Value
			}

			setStringMap(featureBody, "params", params)
			setBool(featureBody, "starts_batch", feature.StartsBatch)
			setBool(featureBody, "ends_batch", feature.EndsBatch)
		}
	}

	return hclwrite.Format(file.Bytes())
}

// WriteProvisionedState writes a provisioned state to path, creating parent directories.
func WriteProvisionedState(path string, state *spec.ProvisionedState) error {
	return writeFile(path, FormatProvisionedState(state))
}
