package options

import (
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/ini.v1"

	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/pkg/log"
	"github.com/gruntwork-io/fpack/util"
)

// EnvPrefix prefixes the environment variables overriding settings.
const EnvPrefix = "FPACK_"

const pluginSectionPrefix = "plugin."

// Settings holds user level defaults read from the settings file.
//
//	log_level = debug
//
//	[repository]
//	dir    = ~/.fpack/repository
//	remote = https://repo.example.com/maven2
//	cache  = /var/cache/fpack
//
//	[work]
//	temp_dir = /tmp/fpack
//
//	[telemetry]
//	trace_exporter = console
//
//	[plugin.props]
//	file = standalone.properties
type Settings struct {
	LogLevel               string
	RepoDir                string
	RemoteRepoURL          string
	CacheDir               string
	TempDir                string
	TelemetryTraceExporter string
	PluginOptions          map[string]map[string]string
}

// LoadSettings reads the settings file. A missing file yields empty settings.
func LoadSettings(path string) (*Settings, error) {
	settings := &Settings{PluginOptions: map[string]map[string]string{}}

	if path == "" {
		return settings, nil
	}

	path, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.New(err)
	}

	if !util.FileExists(path) {
		return settings, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, errors.New(SettingsParseError{Path: path, Err: err})
	}

	settings.LogLevel = file.Section(ini.DefaultSection).Key("log_level").String()

	repo := file.Section("repository")
	settings.RepoDir = repo.Key("dir").String()
	settings.RemoteRepoURL = repo.Key("remote").String()
	settings.CacheDir = repo.Key("cache").String()

	settings.TempDir = file.Section("work").Key("temp_dir").String()
	settings.TelemetryTraceExporter = file.Section("telemetry").Key("trace_exporter").String()

	for _, section := range file.Sections() {
		name, ok := strings.CutPrefix(section.Name(), pluginSectionPrefix)
		if !ok || name == "" {
			continue
		}

		settings.PluginOptions[name] = section.KeysHash()
	}

	return settings, nil
}

// OverrideFromEnv replaces settings with the values of the matching FPACK_ environment variables.
func (settings *Settings) OverrideFromEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	for name, target := range map[string]*string{
		"LOG_LEVEL":                &settings.LogLevel,
		"REPO_DIR":                 &settings.RepoDir,
		"REMOTE_REPO":              &settings.RemoteRepoURL,
		"CACHE_DIR":                &settings.CacheDir,
		"TEMP_DIR":                 &settings.TempDir,
		"TELEMETRY_TRACE_EXPORTER": &settings.TelemetryTraceExporter,
	} {
		if val, ok := lookup(EnvPrefix + name); ok {
			*target = val
		}
	}
}

// Apply copies the non-empty settings into the options. Directory values have their "~" expanded.
func (opts *ProvisioningOptions) Apply(settings *Settings) error {
	if settings.LogLevel != "" {
		level, err := log.ParseLevel(settings.LogLevel)
		if err != nil {
			return err
		}

		opts.LogLevel = level
		opts.Logger.SetOptions(log.WithLevel(level))
	}

	for _, dir := range []struct {
		val    string
		target *string
	}{
		{settings.RepoDir, &opts.RepoDir},
		{settings.CacheDir, &opts.CacheDir},
		{settings.TempDir, &opts.TempDir},
	} {
		if dir.val == "" {
			continue
		}

		expanded, err := homedir.Expand(dir.val)
		if err != nil {
			return errors.New(err)
		}

		*dir.target = expanded
	}

	if settings.RemoteRepoURL != "" {
		opts.RemoteRepoURL = settings.RemoteRepoURL
	}

	if settings.TelemetryTraceExporter != "" {
		opts.TelemetryTraceExporter = settings.TelemetryTraceExporter
	}

	if opts.PluginOptions == nil {
		opts.PluginOptions = map[string]map[string]string{}
	}

	for plugin, values := range settings.PluginOptions {
		if opts.PluginOptions[plugin] == nil {
			opts.PluginOptions[plugin] = map[string]string{}
		}

		for k, v := range values {
			if _, ok := opts.PluginOptions[plugin][k]; !ok {
				opts.PluginOptions[plugin][k] = v
			}
		}
	}

	return nil
}

// SettingsParseError is returned when the settings file is not valid ini.
type SettingsParseError struct {
	Path string
	Err  error
}

func (err SettingsParseError) Error() string {
	return "Error parsing settings file " + err.Path + ": " + err.Err.Error()
}

func (err SettingsParseError) Unwrap() error {
	return err.Err
}
