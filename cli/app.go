// Package cli assembles the fpack command line application.
package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gruntwork-io/fpack/cli/commands/order"
	"github.com/gruntwork-io/fpack/cli/commands/provision"
	"github.com/gruntwork-io/fpack/cli/commands/state"
	"github.com/gruntwork-io/fpack/cli/commands/validate"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/internal/telemetry"
	"github.com/gruntwork-io/fpack/options"
	"github.com/gruntwork-io/fpack/pkg/log"
)

const AppName = "fpack"

// Version is set at build time with -ldflags "-X github.com/gruntwork-io/fpack/cli.Version=...".
var Version = "dev"

// NewApp creates the fpack CLI App.
func NewApp(opts *options.ProvisioningOptions) *cli.App {
	app := &cli.App{
		Name:      AppName,
		Usage:     "Provisions installations from feature-packs.",
		UsageText: "fpack [global options] <command> [command options] [arguments...]",
		Version:   Version,
		Writer:    opts.Writer,
		ErrWriter: opts.ErrWriter,
		Flags:     NewGlobalFlags(),
		Commands: []*cli.Command{
			provision.NewCommand(opts),
			order.NewCommand(opts),
			state.NewCommand(opts),
			validate.NewCommand(opts),
		},
		Before: initialSetup(opts),
		After:  shutdown(opts),
		// errors are reported by the caller
		ExitErrHandler: func(*cli.Context, error) {},
	}

	return app
}

// initialSetup layers the settings file, the FPACK_ environment variables and the flags into opts and
// starts telemetry.
func initialSetup(opts *options.ProvisioningOptions) cli.BeforeFunc {
	return func(ctx *cli.Context) error {
		if ctx.IsSet(SettingsFlagName) {
			opts.SettingsFile = ctx.String(SettingsFlagName)
		}

		settings, err := options.LoadSettings(opts.SettingsFile)
		if err != nil {
			return err
		}

		settings.OverrideFromEnv(os.LookupEnv)

		for name, target := range map[string]*string{
			LogLevelFlagName:   &settings.LogLevel,
			RepoDirFlagName:    &settings.RepoDir,
			RemoteRepoFlagName: &settings.RemoteRepoURL,
			CacheDirFlagName:   &settings.CacheDir,
		} {
			if ctx.IsSet(name) {
				*target = ctx.String(name)
			}
		}

		if err := opts.Apply(settings); err != nil {
			return err
		}

		opts.Logger.SetOptions(log.WithFormat(ctx.String(LogFormatFlagName)))
		opts.DisableLogColors = ctx.Bool(NoColorFlagName)
		opts.KeepWorkDir = opts.KeepWorkDir || ctx.Bool(KeepWorkDirFlag)

		if ctx.IsSet(WorkingDirFlagName) {
			opts.WorkingDir = ctx.String(WorkingDirFlagName)
		}

		if opts.WorkingDir == "" {
			currentDir, err := os.Getwd()
			if err != nil {
				return errors.New(err)
			}

			opts.WorkingDir = currentDir
		}

		opts.Logger.Debugf("fpack version: %s", ctx.App.Version)

		tlm, err := telemetry.NewTelemeter(ctx.Context, AppName, ctx.App.Version, opts.ErrWriter, &telemetry.Options{
			TraceExporter: opts.TelemetryTraceExporter,
		})
		if err != nil {
			return err
		}

		ctx.Context = telemetry.ContextWithTelemeter(ctx.Context, tlm)
		ctx.Context = log.ContextWithLogger(ctx.Context, opts.Logger)
		ctx.Context = context.WithValue(ctx.Context, options.ContextKey, opts)

		return nil
	}
}

// shutdown flushes the pending spans.
func shutdown(opts *options.ProvisioningOptions) cli.AfterFunc {
	return func(ctx *cli.Context) error {
		if err := telemetry.TelemeterFromContext(ctx.Context).Shutdown(ctx.Context); err != nil {
			opts.Logger.Warnf("Failed to flush telemetry: %v", err)
		}

		return nil
	}
}
