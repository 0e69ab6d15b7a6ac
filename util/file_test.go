package util_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gruntwork-io/fpack/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPathRelativeTo(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	testCases := []struct {
		path     string
		basePath string
		expected string
	}{
		{root, root, "."},
		{root, filepath.Join(root, "child"), ".."},
		{filepath.Join(root, "other-child"), filepath.Join(root, "child"), "../other-child"},
		{filepath.Join(root, "a", "b"), root, "a/b"},
	}

	for _, tc := range testCases {
		actual, err := util.GetPathRelativeTo(tc.path, tc.basePath)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, actual)
	}
}

func TestCopyFolderContentsWithFilter(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "dst")

	for _, file := range []string{"a.txt", "sub/b.txt", "sub/skip.log", "skipped/c.txt"} {
		path := filepath.Join(src, filepath.FromSlash(file))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(file), 0o644))
	}

	err := util.CopyFolderContentsWithFilter(src, dst, func(path string) bool {
		return path != "skipped" && !strings.HasSuffix(path, ".log")
	})
	require.NoError(t, err)

	assert.True(t, util.IsFile(filepath.Join(dst, "a.txt")))
	assert.True(t, util.IsFile(filepath.Join(dst, "sub", "b.txt")))
	assert.False(t, util.FileExists(filepath.Join(dst, "sub", "skip.log")))
	assert.False(t, util.FileExists(filepath.Join(dst, "skipped")))

	content, err := os.ReadFile(filepath.Join(dst, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "sub/b.txt", string(content))
}

func TestGlob(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, file := range []string{"x/one/spec.hcl", "x/two/spec.hcl", "x/two/other.txt"} {
		path := filepath.Join(dir, filepath.FromSlash(file))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	matches, err := util.Glob(filepath.Join(dir, "x", "*", "spec.hcl"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "x", "one", "spec.hcl"),
		filepath.Join(dir, "x", "two", "spec.hcl"),
	}, matches)
}

func TestEnsureDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, util.EnsureDirectory(dir))
	assert.True(t, util.IsDir(dir))

	empty, err := util.IsDirectoryEmpty(dir)
	require.NoError(t, err)
	assert.True(t, empty)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	require.Error(t, util.EnsureDirectory(file))
}
