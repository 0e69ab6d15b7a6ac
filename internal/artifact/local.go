package artifact

import (
	"context"
	"path/filepath"

	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/errors"
)

// LocalRepository resolves artifacts from a directory using the maven repository layout. An
// artifact is either the packaged file or a directory named like the file without its extension.
type LocalRepository struct {
	Dir string
}

func NewLocalRepository(dir string) *LocalRepository {
	return &LocalRepository{Dir: dir}
}

// Path returns where the artifact file is expected in the repository.
func (repo *LocalRepository) Path(artifact coords.ArtifactCoords) string {
	return filepath.Join(repo.Dir, filepath.FromSlash(artifact.RepositoryPath()))
}

func (repo *LocalRepository) Resolve(_ context.Context, artifact coords.ArtifactCoords) (string, error) {
	if artifact.Version == "" {
		return "", errors.New(ResolutionError{Artifact: artifact, Reason: "version is not set"})
	}

	path := repo.Path(artifact)
	if fileExists(path) {
		return path, nil
	}

	if dir := unpackedDir(path, artifact); fileExists(dir) {
		return dir, nil
	}

	return "", errors.New(ResolutionError{Artifact: artifact, Reason: "not found in " + repo.Dir})
}
