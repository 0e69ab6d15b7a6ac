package options_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gruntwork-io/fpack/options"
	"github.com/gruntwork-io/fpack/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settingsContent = `log_level = trace

[repository]
dir    = /srv/repo
remote = https://repo.example.com/maven2

[telemetry]
trace_exporter = console

[plugin.props]
file = standalone.properties
`

func writeSettings(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadSettings(t *testing.T) {
	t.Parallel()

	settings, err := options.LoadSettings(writeSettings(t, settingsContent))
	require.NoError(t, err)

	assert.Equal(t, "trace", settings.LogLevel)
	assert.Equal(t, "/srv/repo", settings.RepoDir)
	assert.Equal(t, "https://repo.example.com/maven2", settings.RemoteRepoURL)
	assert.Equal(t, "console", settings.TelemetryTraceExporter)
	assert.Equal(t, map[string]map[string]string{"props": {"file": "standalone.properties"}}, settings.PluginOptions)
}

func TestLoadSettingsMissingFile(t *testing.T) {
	t.Parallel()

	settings, err := options.LoadSettings(filepath.Join(t.TempDir(), "absent.ini"))
	require.NoError(t, err)
	assert.Empty(t, settings.RepoDir)
	assert.Empty(t, settings.PluginOptions)
}

func TestSettingsEnvOverride(t *testing.T) {
	t.Parallel()

	settings, err := options.LoadSettings(writeSettings(t, settingsContent))
	require.NoError(t, err)

	env := map[string]string{
		"FPACK_REPO_DIR":  "/env/repo",
		"FPACK_LOG_LEVEL": "warn",
	}

	settings.OverrideFromEnv(func(key string) (string, bool) {
		val, ok := env[key]
		return val, ok
	})

	assert.Equal(t, "/env/repo", settings.RepoDir)
	assert.Equal(t, "warn", settings.LogLevel)
	assert.Equal(t, "https://repo.example.com/maven2", settings.RemoteRepoURL)
}

func TestApplySettings(t *testing.T) {
	t.Parallel()

	opts := options.NewProvisioningOptionsForTest(t.TempDir())
	opts.PluginOptions["props"] = map[string]string{"file": "from-flag.properties"}

	settings, err := options.LoadSettings(writeSettings(t, settingsContent))
	require.NoError(t, err)
	require.NoError(t, opts.Apply(settings))

	assert.Equal(t, log.TraceLevel, opts.LogLevel)
	assert.Equal(t, log.TraceLevel, opts.Logger.Level())
	assert.Equal(t, "/srv/repo", opts.RepoDir)
	assert.Equal(t, "/srv/repo", opts.ArtifactCacheDir())
	assert.Equal(t, "console", opts.TelemetryTraceExporter)
	assert.Equal(t, "from-flag.properties", opts.PluginOptions["props"]["file"])
}

func TestApplyInvalidLevel(t *testing.T) {
	t.Parallel()

	opts := options.NewProvisioningOptionsForTest(t.TempDir())
	require.Error(t, opts.Apply(&options.Settings{LogLevel: "loud"}))
}

func TestCloneCopiesPluginOptions(t *testing.T) {
	t.Parallel()

	opts := options.NewProvisioningOptionsForTest(t.TempDir())
	opts.PluginOptions["props"] = map[string]string{"file": "a"}

	cloned := opts.Clone()
	cloned.PluginOptions["props"]["file"] = "b"
	cloned.InstallDir = "elsewhere"

	assert.Equal(t, "a", opts.PluginOptions["props"]["file"])
	assert.NotEqual(t, opts.InstallDir, cloned.InstallDir)
}

func TestOptionsFromContext(t *testing.T) {
	t.Parallel()

	opts := options.NewProvisioningOptionsForTest(t.TempDir())
	other := opts.Clone()

	ctx := context.WithValue(context.Background(), options.ContextKey, other)
	assert.Same(t, other, opts.OptionsFromContext(ctx))
	assert.Same(t, opts, opts.OptionsFromContext(context.Background()))
}

func TestAbsPath(t *testing.T) {
	t.Parallel()

	opts := options.NewProvisioningOptionsForTest("/work")

	path, err := opts.AbsPath("config.hcl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/work", "config.hcl"), path)

	path, err = opts.AbsPath("/abs/config.hcl")
	require.NoError(t, err)
	assert.Equal(t, "/abs/config.hcl", path)
}
