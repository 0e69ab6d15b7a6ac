// Package plugin defines the contract between a provisioning run and the plugins that turn the staged
// installation into its final form.
package plugin

import (
	"context"

	"github.com/gruntwork-io/fpack/pkg/log"
	"github.com/gruntwork-io/fpack/spec"
)

// Runtime is the read-only view of a provisioning run handed to plugins. Plugins write into StagedDir
// only; the state and config they get are copies.
type Runtime interface {
	// InstallDir is where the staged installation is moved once every plugin succeeded.
	InstallDir() string
	// StagedDir holds the installation being built.
	StagedDir() string
	// ResourcesDir holds the resources of all feature-packs, later ones overriding earlier ones.
	ResourcesDir() string
	State() *spec.ProvisionedState
	ProvisioningConfig() *spec.ProvisioningConfig
	Logger() log.Logger
}

// Plugin is invoked once per run after the package content has been staged.
type Plugin interface {
	PostInstall(ctx context.Context, rt Runtime) error
}

// Func adapts a function to the Plugin interface.
type Func func(ctx context.Context, rt Runtime) error

func (fn Func) PostInstall(ctx context.Context, rt Runtime) error {
	return fn(ctx, rt)
}
