// Package artifact resolves feature-pack artifacts to local files.
package artifact

import (
	"context"
	"os"
	"strings"

	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/hashicorp/go-getter"
)

// Resolver resolves artifact coordinates to a path on the local file system.
type Resolver interface {
	Resolve(ctx context.Context, artifact coords.ArtifactCoords) (string, error)
}

// ChainResolver tries each resolver in turn and returns the first path found.
type ChainResolver []Resolver

func (chain ChainResolver) Resolve(ctx context.Context, artifact coords.ArtifactCoords) (string, error) {
	var errs *errors.MultiError

	for _, resolver := range chain {
		path, err := resolver.Resolve(ctx, artifact)
		if err == nil {
			return path, nil
		}

		errs = errs.Append(err)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return "", err
	}

	return "", errors.New(ResolutionError{Artifact: artifact, Reason: "no repository configured"})
}

// CopyFiles forces go-getter to copy local files instead of symlinking them.
func CopyFiles(client *getter.Client) error {
	// We shallow clone the getter map here rather than using getter.Getters directly because we
	// shouldn't change the original, globally-shared getter.Getters map.
	client.Getters = map[string]getter.Getter{}
	for name, value := range getter.Getters {
		if name == "file" {
			client.Getters[name] = &getter.FileGetter{Copy: true}
		} else {
			client.Getters[name] = value
		}
	}

	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// unpackedDir returns the path of the artifact laid out as a directory: the file path without its extension.
func unpackedDir(path string, artifact coords.ArtifactCoords) string {
	if artifact.Extension == "" {
		return path
	}

	return strings.TrimSuffix(path, "."+artifact.Extension)
}
