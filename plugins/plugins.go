// Package plugins registers the plugins built into fpack.
package plugins

import (
	"github.com/gruntwork-io/fpack/internal/plugin"
	"github.com/gruntwork-io/fpack/plugins/opscript"
	"github.com/gruntwork-io/fpack/plugins/props"
)

// RegisterBuiltins registers the built-in plugins with the registry.
func RegisterBuiltins(reg *plugin.Registry) error {
	builtins := map[string]plugin.Factory{
		opscript.Name: opscript.New,
		props.Name:    props.New,
	}

	for name, factory := range builtins {
		if err := reg.Register(name, factory); err != nil {
			return err
		}
	}

	return nil
}

// NewRegistry returns a registry holding the built-in plugins.
func NewRegistry() *plugin.Registry {
	reg := plugin.NewRegistry()

	if err := RegisterBuiltins(reg); err != nil {
		// a fresh registry cannot hold duplicates
		panic(err)
	}

	return reg
}
