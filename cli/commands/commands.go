// Package commands holds what the fpack commands share.
package commands

import (
	"context"

	"github.com/gruntwork-io/fpack/config"
	"github.com/gruntwork-io/fpack/internal/artifact"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/options"
	"github.com/gruntwork-io/fpack/spec"
)

// NewResolver returns the artifact resolver of the run: the local repository, then the remote one when set.
func NewResolver(opts *options.ProvisioningOptions) (artifact.Resolver, error) {
	repoDir, err := opts.AbsPath(opts.RepoDir)
	if err != nil {
		return nil, err
	}

	chain := artifact.ChainResolver{artifact.NewLocalRepository(repoDir)}

	if opts.RemoteRepoURL != "" {
		cacheDir, err := opts.AbsPath(opts.ArtifactCacheDir())
		if err != nil {
			return nil, err
		}

		chain = append(chain, artifact.NewRemoteRepository(opts.Logger, opts.RemoteRepoURL, cacheDir))
	}

	return chain, nil
}

// NewParsingContext returns a parsing context printing diagnostics to the error writer of opts.
func NewParsingContext(ctx context.Context, opts *options.ProvisioningOptions) *config.ParsingContext {
	return config.NewParsingContext(ctx, opts.Logger).WithDiagnosticsWriter(opts.ErrWriter, opts.DisableLogColors)
}

// ParseProvisioningConfig reads the provisioning config at path, resolved against the working directory.
func ParseProvisioningConfig(ctx context.Context, opts *options.ProvisioningOptions, path string) (*spec.ProvisioningConfig, error) {
	if path == "" {
		return nil, errors.New(MissingArgumentError{Name: "provisioning config"})
	}

	path, err := opts.AbsPath(path)
	if err != nil {
		return nil, err
	}

	opts.ProvisioningConfigPath = path

	return config.ParseProvisioningConfig(NewParsingContext(ctx, opts), path)
}

// InstallDir returns the absolute install directory or an error when none is set.
func InstallDir(opts *options.ProvisioningOptions) (string, error) {
	if opts.InstallDir == "" {
		return "", errors.New(MissingArgumentError{Name: "--install-dir"})
	}

	return opts.AbsPath(opts.InstallDir)
}
