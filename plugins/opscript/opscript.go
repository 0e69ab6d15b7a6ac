// Package opscript provides the plugin writing one operation script per provisioned config. A script
// lists the features of the config in order, grouped by feature-pack and spec, with the batches that
// must be applied as one unit bracketed.
package opscript

import (
	"bufio"
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/internal/plugin"
	"github.com/gruntwork-io/fpack/pkg/log"
	"github.com/gruntwork-io/fpack/spec"
	"github.com/gruntwork-io/fpack/util"
)

const (
	Name = "opscript"

	DefaultDir = "scripts"
	FileExt    = ".ops"

	anonymousConfigName = "config"
)

// Options of the plugin.
type Options struct {
	// Dir is the directory, relative to the staged installation, the scripts are written to.
	Dir string `option:"dir"`
}

type Plugin struct {
	opts Options
}

// New is the plugin factory.
func New(options map[string]string) (plugin.Plugin, error) {
	opts := Options{Dir: DefaultDir}

	if err := plugin.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}

	if filepath.IsAbs(opts.Dir) {
		return nil, errors.Errorf("dir must be relative to the installation, got %s", opts.Dir)
	}

	return &Plugin{opts: opts}, nil
}

func (p *Plugin) PostInstall(ctx context.Context, rt plugin.Runtime) error {
	dir := filepath.Join(rt.StagedDir(), p.opts.Dir)

	for _, cfg := range rt.State().Configs {
		handler := &scriptWriter{path: filepath.Join(dir, ScriptName(cfg.ID)), logger: rt.Logger()}

		if err := plugin.HandleConfig(ctx, cfg, handler); err != nil {
			handler.close()
			return err
		}
	}

	return nil
}

// ScriptName returns the file name of the script of a config.
func ScriptName(id spec.ConfigID) string {
	name := id.String()
	if name == "" {
		name = anonymousConfigName
	}

	return strings.ReplaceAll(name, "/", "-") + FileExt
}

// scriptWriter renders a config as lines:
//
//	# config <id>
//	set <prop>=<value>
//	# feature-pack <gav>
//	# spec <name>
//	begin-batch
//	add <spec> <param>=<value> ...
//	end-batch
type scriptWriter struct {
	path   string
	logger log.Logger

	file *os.File
	w    *bufio.Writer
}

func (sw *scriptWriter) Prepare(_ context.Context, cfg *spec.ProvisionedConfig) error {
	if err := os.MkdirAll(filepath.Dir(sw.path), util.DefaultDirPerm); err != nil {
		return errors.New(err)
	}

	file, err := os.Create(sw.path)
	if err != nil {
		return errors.New(err)
	}

	sw.file = file
	sw.w = bufio.NewWriter(file)

	sw.printf("# config %s\n", cfg.ID)

	for _, name := range slices.Sorted(maps.Keys(cfg.Props)) {
		sw.printf("set %s=%s\n", name, cfg.Props[name])
	}

	return nil
}

func (sw *scriptWriter) NextFeaturePack(gav coords.Gav) error {
	sw.printf("# feature-pack %s\n", gav)
	return nil
}

func (sw *scriptWriter) NextSpec(id spec.ResolvedSpecID) error {
	sw.printf("# spec %s\n", id.Name)
	return nil
}

func (sw *scriptWriter) NextFeature(feature *spec.ProvisionedFeature) error {
	sw.printf("add %s", feature.Spec.Name)

	for _, param := range feature.Params {
		sw.printf(" %s=%s", param.Name, param.Value)
	}

	sw.printf("\n")

	return nil
}

func (sw *scriptWriter) StartBatch() error {
	sw.printf("begin-batch\n")
	return nil
}

func (sw *scriptWriter) EndBatch() error {
	sw.printf("end-batch\n")
	return nil
}

func (sw *scriptWriter) Done() error {
	if err := sw.w.Flush(); err != nil {
		sw.close()
		return errors.New(err)
	}

	file := sw.file
	sw.file = nil

	if err := file.Close(); err != nil {
		return errors.New(err)
	}

	sw.logger.Debugf("Wrote operation script %s", sw.path)

	return nil
}

// close releases the script file after a failure.
func (sw *scriptWriter) close() {
	if sw.file == nil {
		return
	}

	if err := sw.file.Close(); err != nil {
		sw.logger.Warnf("Failed to close %s: %v", sw.path, err)
	}

	sw.file = nil
}

// printf ignores write errors, bufio keeps the first one and reports it on Flush.
func (sw *scriptWriter) printf(format string, args ...any) {
	fmt.Fprintf(sw.w, format, args...)
}
