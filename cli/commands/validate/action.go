package validate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gruntwork-io/fpack/cli/commands"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/internal/layout"
	"github.com/gruntwork-io/fpack/options"
	"github.com/gruntwork-io/fpack/util"
)

func Run(ctx context.Context, opts *options.ProvisioningOptions, path string) error {
	if path == "" {
		return errors.New(commands.MissingArgumentError{Name: "feature-pack"})
	}

	path, err := opts.AbsPath(path)
	if err != nil {
		return err
	}

	dir := path

	// archives are unpacked into a scratch directory first
	if !util.IsDir(path) {
		scratchDir, err := newScratchDir(opts)
		if err != nil {
			return err
		}

		defer func() {
			if err := os.RemoveAll(scratchDir); err != nil {
				opts.Logger.Warnf("Failed to remove %s: %v", scratchDir, err)
			}
		}()

		dir = filepath.Join(scratchDir, "layout")

		if err := layout.Unpack(ctx, path, dir); err != nil {
			return err
		}
	}

	fp, err := layout.Open(commands.NewParsingContext(ctx, opts), dir)
	if err != nil {
		return err
	}

	if err := fp.Validate(); err != nil {
		problems := errors.UnwrapMultiErrors(err)
		for _, problem := range problems {
			opts.Logger.Error(problem.Error())
		}

		return errors.New(InvalidFeaturePackError{Path: path, Problems: len(problems)})
	}

	_, err = fmt.Fprintf(opts.Writer, "%s is valid\n", fp.Gav())

	return errors.New(err)
}

func newScratchDir(opts *options.ProvisioningOptions) (string, error) {
	if opts.TempDir != "" {
		if err := os.MkdirAll(opts.TempDir, util.DefaultDirPerm); err != nil {
			return "", errors.New(err)
		}
	}

	dir, err := os.MkdirTemp(opts.TempDir, "fpack-validate-")
	if err != nil {
		return "", errors.New(err)
	}

	return dir, nil
}
