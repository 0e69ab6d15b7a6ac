// Package props provides the plugin writing the properties of the provisioned configs into an ini file,
// one section per config.
package props

import (
	"context"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/ini.v1"

	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/internal/plugin"
	"github.com/gruntwork-io/fpack/spec"
	"github.com/gruntwork-io/fpack/util"
)

const (
	Name = "props"

	DefaultFile = "configs.ini"

	anonymousSection = "config"
)

// Options of the plugin.
type Options struct {
	// File is the path, relative to the staged installation, of the written file.
	File string `option:"file"`
	// SkipEmpty leaves out the configs without properties.
	SkipEmpty bool `option:"skip_empty"`
}

type Plugin struct {
	opts Options
}

// New is the plugin factory.
func New(options map[string]string) (plugin.Plugin, error) {
	opts := Options{File: DefaultFile}

	if err := plugin.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}

	if opts.File == "" || filepath.IsAbs(opts.File) {
		return nil, errors.Errorf("file must be a path relative to the installation, got %q", opts.File)
	}

	return &Plugin{opts: opts}, nil
}

func (p *Plugin) PostInstall(ctx context.Context, rt plugin.Runtime) error {
	file := ini.Empty()

	for _, cfg := range rt.State().Configs {
		if err := ctx.Err(); err != nil {
			return errors.New(err)
		}

		if p.opts.SkipEmpty && len(cfg.Props) == 0 {
			continue
		}

		section, err := file.NewSection(SectionName(cfg.ID))
		if err != nil {
			return errors.New(err)
		}

		for _, name := range slices.Sorted(maps.Keys(cfg.Props)) {
			if _, err := section.NewKey(name, cfg.Props[name]); err != nil {
				return errors.New(err)
			}
		}
	}

	path := filepath.Join(rt.StagedDir(), p.opts.File)

	if err := os.MkdirAll(filepath.Dir(path), util.DefaultDirPerm); err != nil {
		return errors.New(err)
	}

	if err := file.SaveTo(path); err != nil {
		return errors.New(err)
	}

	rt.Logger().Debugf("Wrote config properties to %s", path)

	return nil
}

// SectionName returns the ini section holding the properties of a config.
func SectionName(id spec.ConfigID) string {
	if name := id.String(); name != "" {
		return name
	}

	return anonymousSection
}
