package config

import (
	"path/filepath"
	"strings"

	"github.com/gruntwork-io/fpack/config/hclparse"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/spec"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// ParseFeatureGroup parses a feature group file, the group is named after the file.
func ParseFeatureGroup(ctx *ParsingContext, path string) (*spec.FeatureGroup, error) {
	file, err := ctx.parseFile(path)
	if err != nil {
		return nil, err
	}

	return decodeFeatureGroupFile(file)
}

// ParseFeatureGroupString is like ParseFeatureGroup but parses the given content.
func ParseFeatureGroupString(ctx *ParsingContext, content, path string) (*spec.FeatureGroup, error) {
	file, err := ctx.parseBytes([]byte(content), path)
	if err != nil {
		return nil, err
	}

	return decodeFeatureGroupFile(file)
}

func decodeFeatureGroupFile(file *hclparse.File) (*spec.FeatureGroup, error) {
	name := strings.TrimSuffix(filepath.Base(file.ConfigPath), filepath.Ext(file.ConfigPath))
	group := spec.NewFeatureGroup(name)

	if err := decodeGroupBody(file, file.Body, &group.FeatureGroupSupport); err != nil {
		return nil, err
	}

	return group, nil
}

func decodeGroupBody(file *hclparse.File, body hcl.Body, out *spec.FeatureGroupSupport) error {
	var decoded groupBody
	if err := file.DecodeBody(body, &decoded, nil); err != nil {
		return err
	}

	invalid := func(err error) error {
		return errors.New(InvalidSpecFileError{Path: file.ConfigPath, Err: err})
	}

	if decoded.InheritFeatures != nil {
		out.InheritFeatures = *decoded.InheritFeatures
	}

	for _, str := range decoded.IncludedSpecs {
		id, err := spec.ParseSpecID(str)
		if err != nil {
			return invalid(err)
		}

		out.IncludedSpecs = append(out.IncludedSpecs, id)
	}

	for _, str := range decoded.ExcludedSpecs {
		id, err := spec.ParseSpecID(str)
		if err != nil {
			return invalid(err)
		}

		out.ExcludedSpecs = append(out.ExcludedSpecs, id)
	}

	for _, block := range decoded.IncludedFeatures {
		id, err := spec.ParseFeatureID(block.ID)
		if err != nil {
			return invalid(err)
		}

		out.IncludedFeatures = append(out.IncludedFeatures, &spec.IncludedFeature{ID: id, Params: block.Params})
	}

	for _, str := range decoded.ExcludedFeatures {
		id, err := spec.ParseFeatureID(str)
		if err != nil {
			return invalid(err)
		}

		out.ExcludedFeatures = append(out.ExcludedFeatures, id)
	}

	for _, block := range decoded.PackageDeps {
		out.PackageDeps = append(out.PackageDeps, spec.PackageDependency{Origin: block.Origin, Name: block.Name, Optional: block.Optional})
	}

	var featureIdx, groupIdx int

	for _, kind := range itemKinds(body, len(decoded.Features), len(decoded.Groups)) {
		if kind == featureBlockType {
			feature, err := decodeFeature(decoded.Features[featureIdx])
			if err != nil {
				return invalid(err)
			}

			out.AddFeature(feature)
			featureIdx++

			continue
		}

		block := decoded.Groups[groupIdx]
		groupIdx++

		group := spec.NewFeatureGroup(block.Name)
		group.Origin = block.Origin

		if err := decodeGroupBody(file, block.Remain, &group.FeatureGroupSupport); err != nil {
			return err
		}

		out.AddGroup(group)
	}

	return nil
}

func decodeFeature(block *featureBlock) (*spec.FeatureConfig, error) {
	specID, err := spec.ParseSpecID(block.Spec)
	if err != nil {
		return nil, err
	}

	feature := spec.NewFeatureConfig(specID, block.Params)

	for _, dep := range block.Deps {
		id, err := spec.ParseFeatureID(dep.ID)
		if err != nil {
			return nil, err
		}

		feature.Deps = append(feature.Deps, spec.FeatureDependency{ID: id, Include: dep.Include})
	}

	return feature, nil
}

// itemKinds returns the types of the feature and feature group blocks of body in source order.
// gohcl decodes blocks of one type in source order, so the n-th kind maps onto the n-th decoded block.
func itemKinds(body hcl.Body, features, groups int) []string {
	kinds := make([]string, 0, features+groups)

	syntaxBody, ok := body.(*hclsyntax.Body)
	if !ok {
		for range features {
			kinds = append(kinds, featureBlockType)
		}

		for range groups {
			kinds = append(kinds, featureGroupBlockType)
		}

		return kinds
	}

	for _, block := range syntaxBody.Blocks {
		if block.Type == featureBlockType || block.Type == featureGroupBlockType {
			kinds = append(kinds, block.Type)
		}
	}

	return kinds
}
