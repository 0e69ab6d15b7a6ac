package cli

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/gruntwork-io/fpack/options"
	"github.com/gruntwork-io/fpack/pkg/log"
)

const (
	LogLevelFlagName   = "log-level"
	LogFormatFlagName  = "log-format"
	NoColorFlagName    = "no-color"
	WorkingDirFlagName = "working-dir"
	RepoDirFlagName    = "repo-dir"
	RemoteRepoFlagName = "remote-repo"
	CacheDirFlagName   = "cache-dir"
	SettingsFlagName   = "settings"
	KeepWorkDirFlag    = "keep-work-dir"
)

// EnvVars returns the environment variable names of a flag, e.g. `FPACK_LOG_LEVEL` for `log-level`.
func EnvVars(flagName string) []string {
	return []string{options.EnvPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))}
}

// NewGlobalFlags creates the flags available to every command.
func NewGlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    LogLevelFlagName,
			EnvVars: EnvVars(LogLevelFlagName),
			Usage:   "Sets the logging level. Supported levels: " + log.AllLevels.String() + ".",
		},
		&cli.StringFlag{
			Name:    LogFormatFlagName,
			EnvVars: EnvVars(LogFormatFlagName),
			Usage:   "Sets the log format: pretty, key-value or json.",
			Value:   log.PrettyFormatName,
		},
		&cli.BoolFlag{
			Name:    NoColorFlagName,
			EnvVars: EnvVars(NoColorFlagName),
			Usage:   "Disables color in diagnostics output.",
		},
		&cli.StringFlag{
			Name:    WorkingDirFlagName,
			EnvVars: EnvVars(WorkingDirFlagName),
			Usage:   "The directory relative paths are resolved against. Defaults to the current directory.",
		},
		&cli.StringFlag{
			Name:    RepoDirFlagName,
			EnvVars: EnvVars(RepoDirFlagName),
			Usage:   "The local repository holding feature-pack artifacts.",
		},
		&cli.StringFlag{
			Name:    RemoteRepoFlagName,
			EnvVars: EnvVars(RemoteRepoFlagName),
			Usage:   "Base URL of a remote repository queried for artifacts missing from the local one.",
		},
		&cli.StringFlag{
			Name:    CacheDirFlagName,
			EnvVars: EnvVars(CacheDirFlagName),
			Usage:   "The directory remote artifacts are cached in. Defaults to the local repository.",
		},
		&cli.StringFlag{
			Name:    SettingsFlagName,
			EnvVars: EnvVars(SettingsFlagName),
			Usage:   "Path to the settings file.",
		},
		&cli.BoolFlag{
			Name:    KeepWorkDirFlag,
			EnvVars: EnvVars(KeepWorkDirFlag),
			Usage:   "Keeps the work directory of the run for inspection.",
		},
	}
}
