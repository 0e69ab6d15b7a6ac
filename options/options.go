// Package options provides a set of options that configure the behavior of the fpack program.
package options

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/pkg/log"
)

const ContextKey ctxKey = iota

const (
	// DefaultSettingsDir is the directory, relative to the home directory, holding the user settings.
	DefaultSettingsDir = "~/.fpack"

	// DefaultSettingsFileName is the name of the settings file in DefaultSettingsDir.
	DefaultSettingsFileName = "settings.ini"

	// DefaultRepoDirName is the local repository directory in DefaultSettingsDir.
	DefaultRepoDirName = "repository"

	defaultLogLevel = log.InfoLevel
)

type ctxKey byte

// ProvisioningOptions represents options that configure the behavior of the fpack program
type ProvisioningOptions struct {
	// The working directory relative paths are resolved against
	WorkingDir string

	// Location of the provisioning config file
	ProvisioningConfigPath string

	// Directory the installation is provisioned into
	InstallDir string

	// Local repository holding feature-pack artifacts in the maven layout
	RepoDir string

	// Base URL of a remote repository queried when the local repository lacks an artifact
	RemoteRepoURL string

	// Directory artifacts downloaded from the remote repository are cached in, defaults to RepoDir
	CacheDir string

	// Parent of the per run work directories, defaults to the system temp dir
	TempDir string

	// Keep the work directory of a run for inspection
	KeepWorkDir bool

	// Location of the settings file
	SettingsFile string

	LogLevel log.Level

	// Basic log entry
	Logger log.Logger

	// Disable fpack colors
	DisableLogColors bool

	// Name of the OpenTelemetry trace exporter, tracing is off when empty
	TelemetryTraceExporter string

	// Options passed to plugins, keyed by plugin name
	PluginOptions map[string]map[string]string

	// If set, fpack will write its output to this writer instead of stdout
	Writer io.Writer

	// If set, fpack will write its error output to this writer instead of stderr
	ErrWriter io.Writer
}

// NewProvisioningOptions creates a new ProvisioningOptions object with
// reasonable defaults for real usage
func NewProvisioningOptions() *ProvisioningOptions {
	return NewProvisioningOptionsWithWriters(os.Stdout, os.Stderr)
}

func NewProvisioningOptionsWithWriters(stdout, stderr io.Writer) *ProvisioningOptions {
	return &ProvisioningOptions{
		SettingsFile:  filepath.Join(DefaultSettingsDir, DefaultSettingsFileName),
		RepoDir:       filepath.Join(DefaultSettingsDir, DefaultRepoDirName),
		LogLevel:      defaultLogLevel,
		Logger:        log.New(log.WithOutput(stderr), log.WithLevel(defaultLogLevel)),
		PluginOptions: map[string]map[string]string{},
		Writer:        stdout,
		ErrWriter:     stderr,
	}
}

// NewProvisioningOptionsForTest creates a new ProvisioningOptions object with reasonable defaults for test usage.
// The repository, install and temp directories live under dir.
func NewProvisioningOptionsForTest(dir string) *ProvisioningOptions {
	opts := NewProvisioningOptionsWithWriters(io.Discard, io.Discard)
	opts.WorkingDir = dir
	opts.RepoDir = filepath.Join(dir, DefaultRepoDirName)
	opts.InstallDir = filepath.Join(dir, "install")
	opts.TempDir = filepath.Join(dir, "tmp")
	opts.SettingsFile = ""
	opts.LogLevel = log.DebugLevel
	opts.Logger.SetOptions(log.WithLevel(log.DebugLevel))

	return opts
}

// OptionsFromContext tries to retrieve options from context, otherwise, returns its own instance.
func (opts *ProvisioningOptions) OptionsFromContext(ctx context.Context) *ProvisioningOptions {
	if val := ctx.Value(ContextKey); val != nil {
		if opts, ok := val.(*ProvisioningOptions); ok {
			return opts
		}
	}

	return opts
}

// Clone creates a copy of the options sharing the logger and writers.
func (opts *ProvisioningOptions) Clone() *ProvisioningOptions {
	cloned := *opts

	cloned.PluginOptions = make(map[string]map[string]string, len(opts.PluginOptions))
	for plugin, values := range opts.PluginOptions {
		copied := make(map[string]string, len(values))
		for k, v := range values {
			copied[k] = v
		}

		cloned.PluginOptions[plugin] = copied
	}

	return &cloned
}

// AbsPath resolves path against the working directory.
func (opts *ProvisioningOptions) AbsPath(path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}

	if opts.WorkingDir != "" {
		return filepath.Join(opts.WorkingDir, path), nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.New(err)
	}

	return abs, nil
}

// ArtifactCacheDir returns the directory remote artifacts are cached in.
func (opts *ProvisioningOptions) ArtifactCacheDir() string {
	if opts.CacheDir != "" {
		return opts.CacheDir
	}

	return opts.RepoDir
}
