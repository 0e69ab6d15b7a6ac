// Package layout gives access to the content of an unpacked feature-pack: its descriptor, package,
// feature spec and feature group files, resources and plugins.
package layout

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/gruntwork-io/fpack/config"
	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/artifact"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/spec"
	"github.com/gruntwork-io/fpack/util"
	"github.com/hashicorp/go-getter"
)

// Layout is an unpacked feature-pack. Specs are parsed on first access and cached.
type Layout struct {
	Dir  string
	Spec *spec.FeaturePackSpec

	parsingCtx *config.ParsingContext
	packages   map[string]*spec.PackageSpec
	features   map[string]*spec.FeatureSpec
	groups     map[string]*spec.FeatureGroup
}

// Unpack lays out the artifact at src, a zip archive or a directory, into dir. dir must not exist.
func Unpack(ctx context.Context, src, dir string) error {
	if util.FileExists(dir) {
		return errors.New(UnpackError{Source: src, Dir: dir, Err: errors.New("destination already exists")})
	}

	absSrc, err := filepath.Abs(src)
	if err != nil {
		return errors.New(UnpackError{Source: src, Dir: dir, Err: err})
	}

	if err := getter.GetAny(dir, absSrc, getter.WithContext(ctx), artifact.CopyFiles); err != nil {
		return errors.New(UnpackError{Source: src, Dir: dir, Err: err})
	}

	return nil
}

// Open reads the feature-pack descriptor of the layout in dir.
func Open(ctx *config.ParsingContext, dir string) (*Layout, error) {
	descriptor := filepath.Join(dir, config.FeaturePackFileName)
	if !util.IsFile(descriptor) {
		return nil, errors.New(PathDoesNotExistError{Path: descriptor})
	}

	fpSpec, err := config.ParseFeaturePackSpec(ctx, descriptor)
	if err != nil {
		return nil, err
	}

	return &Layout{
		Dir:        dir,
		Spec:       fpSpec,
		parsingCtx: ctx,
		packages:   make(map[string]*spec.PackageSpec),
		features:   make(map[string]*spec.FeatureSpec),
		groups:     make(map[string]*spec.FeatureGroup),
	}, nil
}

// Gav returns the coordinates declared by the feature-pack.
func (layout *Layout) Gav() coords.Gav {
	return layout.Spec.Gav
}

// PackageDir returns the directory of the named package.
func (layout *Layout) PackageDir(name string) string {
	return filepath.Join(layout.Dir, config.PackagesDir, name)
}

// ContentDir returns the directory holding the files the named package installs.
func (layout *Layout) ContentDir(name string) string {
	return filepath.Join(layout.PackageDir(name), config.ContentDir)
}

// ResourcesDir returns the directory of resources shared with plugins.
func (layout *Layout) ResourcesDir() string {
	return filepath.Join(layout.Dir, config.ResourcesDir)
}

// PluginsDir returns the directory of plugin descriptors.
func (layout *Layout) PluginsDir() string {
	return filepath.Join(layout.Dir, config.PluginsDir)
}

// HasPackage reports whether the feature-pack contains the named package.
func (layout *Layout) HasPackage(name string) bool {
	return util.IsFile(filepath.Join(layout.PackageDir(name), config.PackageFileName))
}

// PackageSpec returns the parsed spec of the named package.
func (layout *Layout) PackageSpec(name string) (*spec.PackageSpec, error) {
	if pkgSpec, ok := layout.packages[name]; ok {
		return pkgSpec, nil
	}

	if !layout.HasPackage(name) {
		return nil, errors.New(PackageNotFoundError{Gav: layout.Gav(), Package: name})
	}

	pkgSpec, err := config.ParsePackageSpec(layout.parsingCtx, layout.PackageDir(name))
	if err != nil {
		return nil, err
	}

	layout.packages[name] = pkgSpec

	return pkgSpec, nil
}

// PackageNames returns the names of all packages of the feature-pack, sorted.
func (layout *Layout) PackageNames() ([]string, error) {
	return layout.names(filepath.Join(layout.Dir, config.PackagesDir), filepath.Join("*", config.PackageFileName), func(match string) string {
		return filepath.Base(filepath.Dir(match))
	})
}

// HasFeatureSpec reports whether the feature-pack contains the named feature spec.
func (layout *Layout) HasFeatureSpec(name string) bool {
	return util.IsFile(filepath.Join(layout.Dir, config.FeaturesDir, name, config.FeatureSpecFileName))
}

// FeatureSpec returns the parsed named feature spec.
func (layout *Layout) FeatureSpec(name string) (*spec.FeatureSpec, error) {
	if featureSpec, ok := layout.features[name]; ok {
		return featureSpec, nil
	}

	if !layout.HasFeatureSpec(name) {
		return nil, errors.New(FeatureSpecNotFoundError{Gav: layout.Gav(), Spec: name})
	}

	featureSpec, err := config.ParseFeatureSpec(layout.parsingCtx, filepath.Join(layout.Dir, config.FeaturesDir, name))
	if err != nil {
		return nil, err
	}

	layout.features[name] = featureSpec

	return featureSpec, nil
}

// FeatureSpecNames returns the names of all feature specs of the feature-pack, sorted.
func (layout *Layout) FeatureSpecNames() ([]string, error) {
	return layout.names(filepath.Join(layout.Dir, config.FeaturesDir), filepath.Join("*", config.FeatureSpecFileName), func(match string) string {
		return filepath.Base(filepath.Dir(match))
	})
}

func (layout *Layout) featureGroupPath(name string) string {
	return filepath.Join(layout.Dir, config.FeatureGroupsDir, name+config.FeatureGroupFileExt)
}

// HasFeatureGroup reports whether the feature-pack contains the named feature group.
func (layout *Layout) HasFeatureGroup(name string) bool {
	return util.IsFile(layout.featureGroupPath(name))
}

// FeatureGroup returns the parsed named feature group.
func (layout *Layout) FeatureGroup(name string) (*spec.FeatureGroup, error) {
	if group, ok := layout.groups[name]; ok {
		return group, nil
	}

	if !layout.HasFeatureGroup(name) {
		return nil, errors.New(FeatureGroupNotFoundError{Gav: layout.Gav(), Group: name})
	}

	group, err := config.ParseFeatureGroup(layout.parsingCtx, layout.featureGroupPath(name))
	if err != nil {
		return nil, err
	}

	layout.groups[name] = group

	return group, nil
}

// FeatureGroupNames returns the names of all feature groups of the feature-pack, sorted.
func (layout *Layout) FeatureGroupNames() ([]string, error) {
	return layout.names(filepath.Join(layout.Dir, config.FeatureGroupsDir), "*"+config.FeatureGroupFileExt, func(match string) string {
		return strings.TrimSuffix(filepath.Base(match), config.FeatureGroupFileExt)
	})
}

// ContentFilter returns the filter of the files installed by the named package.
func (layout *Layout) ContentFilter(name string) (*FileFilter, error) {
	pkgSpec, err := layout.PackageSpec(name)
	if err != nil {
		return nil, err
	}

	return NewFileFilter(pkgSpec.Filters)
}

func (layout *Layout) names(dir, pattern string, name func(match string) string) ([]string, error) {
	if !util.IsDir(dir) {
		return nil, nil
	}

	matches, err := util.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}

	names := make([]string, len(matches))
	for i, match := range matches {
		names[i] = name(match)
	}

	return names, nil
}
