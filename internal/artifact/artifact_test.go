package artifact_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/artifact"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRepositoryResolve(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo := artifact.NewLocalRepository(dir)

	packaged := coords.MustParseGav("org.test:fp1:1.0.0").ArtifactCoords()
	zipPath := filepath.Join(dir, "org", "test", "fp1", "1.0.0", "fp1-1.0.0.zip")
	require.NoError(t, os.MkdirAll(filepath.Dir(zipPath), 0o755))
	require.NoError(t, os.WriteFile(zipPath, []byte("zip"), 0o644))

	unpacked := coords.MustParseGav("org.test:fp2:2.0.0").ArtifactCoords()
	unpackedPath := filepath.Join(dir, "org", "test", "fp2", "2.0.0", "fp2-2.0.0")
	require.NoError(t, os.MkdirAll(unpackedPath, 0o755))

	ctx := context.Background()

	path, err := repo.Resolve(ctx, packaged)
	require.NoError(t, err)
	assert.Equal(t, zipPath, path)

	path, err = repo.Resolve(ctx, unpacked)
	require.NoError(t, err)
	assert.Equal(t, unpackedPath, path)

	_, err = repo.Resolve(ctx, coords.MustParseGav("org.test:fp3:1.0.0").ArtifactCoords())
	require.Error(t, err)

	var resolutionErr artifact.ResolutionError
	require.True(t, errors.As(err, &resolutionErr))
	assert.Equal(t, "fp3", resolutionErr.Artifact.ArtifactID)

	_, err = repo.Resolve(ctx, coords.MustParseGav("org.test:fp1").ArtifactCoords())
	require.Error(t, err)
}

func TestRemoteRepositoryDownloadsOnce(t *testing.T) {
	t.Parallel()

	remoteDir := t.TempDir()
	cacheDir := t.TempDir()

	fp := coords.MustParseGav("org.test:fp1:1.0.0").ArtifactCoords()
	remotePath := filepath.Join(remoteDir, filepath.FromSlash(fp.RepositoryPath()))
	require.NoError(t, os.MkdirAll(filepath.Dir(remotePath), 0o755))
	require.NoError(t, os.WriteFile(remotePath, []byte("content"), 0o644))

	repo := artifact.NewRemoteRepository(log.New(), "file://"+filepath.ToSlash(remoteDir), cacheDir)

	var wg sync.WaitGroup

	paths := make([]string, 4)
	errs := make([]error, 4)

	for i := range paths {
		wg.Add(1)

		go func() {
			defer wg.Done()

			paths[i], errs[i] = repo.Resolve(context.Background(), fp)
		}()
	}

	wg.Wait()

	expected := filepath.Join(cacheDir, filepath.FromSlash(fp.RepositoryPath()))

	for i := range paths {
		require.NoError(t, errs[i])
		assert.Equal(t, expected, paths[i])
	}

	content, err := os.ReadFile(expected)
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))

	_, err = repo.Resolve(context.Background(), coords.MustParseGav("org.test:missing:1.0.0").ArtifactCoords())
	require.Error(t, err)
}

func TestChainResolver(t *testing.T) {
	t.Parallel()

	first := artifact.NewLocalRepository(t.TempDir())
	secondDir := t.TempDir()
	second := artifact.NewLocalRepository(secondDir)

	fp := coords.MustParseGav("org.test:fp1:1.0.0").ArtifactCoords()
	require.NoError(t, os.MkdirAll(filepath.Join(secondDir, "org", "test", "fp1", "1.0.0", "fp1-1.0.0"), 0o755))

	path, err := artifact.ChainResolver{first, second}.Resolve(context.Background(), fp)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(secondDir, "org", "test", "fp1", "1.0.0", "fp1-1.0.0"), path)

	_, err = artifact.ChainResolver{}.Resolve(context.Background(), fp)
	require.Error(t, err)
}
