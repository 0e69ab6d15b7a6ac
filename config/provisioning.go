package config

import (
	"github.com/gruntwork-io/fpack/config/hclparse"
	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/spec"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// ParseProvisioningConfig parses a provisioning request file.
func ParseProvisioningConfig(ctx *ParsingContext, path string) (*spec.ProvisioningConfig, error) {
	file, err := ctx.parseFile(path)
	if err != nil {
		return nil, err
	}

	return decodeProvisioningFile(file)
}

// ParseProvisioningConfigString is like ParseProvisioningConfig but parses the given content.
func ParseProvisioningConfigString(ctx *ParsingContext, content, path string) (*spec.ProvisioningConfig, error) {
	file, err := ctx.parseBytes([]byte(content), path)
	if err != nil {
		return nil, err
	}

	return decodeProvisioningFile(file)
}

func decodeProvisioningFile(file *hclparse.File) (*spec.ProvisioningConfig, error) {
	var decoded provisioningFile
	if err := file.Decode(&decoded, nil); err != nil {
		return nil, err
	}

	provisioningConfig := spec.NewProvisioningConfig()

	for _, block := range decoded.FeaturePacks {
		gav, err := coords.ParseGav(block.Gav)
		if err != nil {
			return nil, errors.New(InvalidSpecFileError{Path: file.ConfigPath, Err: err})
		}

		fpConfig, err := decodeFeaturePackConfig(file, gav, block.Remain)
		if err != nil {
			return nil, err
		}

		provisioningConfig.FeaturePacks = append(provisioningConfig.FeaturePacks, fpConfig)
	}

	if err := decodeCustomizations(file, decoded.Remain, &provisioningConfig.ConfigCustomizations); err != nil {
		return nil, err
	}

	return provisioningConfig, nil
}

// FormatProvisioningConfig renders a provisioning request in the format read by ParseProvisioningConfig.
func FormatProvisioningConfig(provisioningConfig *spec.ProvisioningConfig) []byte {
	file := hclwrite.NewEmptyFile()
	body := file.Body()

	for _, fpConfig := range provisioningConfig.FeaturePacks {
		writeFeaturePackConfigBody(body.AppendNewBlock("feature_pack", []string{fpConfig.Gav.String()}).Body(), fpConfig)
	}

	writeCustomizations(body, &provisioningConfig.ConfigCustomizations)

	return hclwrite.Format(file.Bytes())
}

// WriteProvisioningConfig writes a provisioning request to path, creating parent directories.
func WriteProvisioningConfig(path string, provisioningConfig *spec.ProvisioningConfig) error {
	return writeFile(path, FormatProvisioningConfig(provisioningConfig))
}
