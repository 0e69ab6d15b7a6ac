// Package fptest writes feature-pack fixtures into a local repository for tests.
package fptest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gruntwork-io/fpack/config"
	"github.com/gruntwork-io/fpack/coords"
	"github.com/stretchr/testify/require"
)

// Repo is a local repository directory holding unpacked feature-packs.
type Repo struct {
	Dir string
	t   *testing.T
}

func NewRepo(t *testing.T) *Repo {
	t.Helper()

	return &Repo{Dir: t.TempDir(), t: t}
}

// FeaturePack returns a fixture for the feature-pack with the given gav and writes its descriptor.
// The descriptor body is appended after the gav attribute.
func (repo *Repo) FeaturePack(gav, descriptor string) *FeaturePack {
	repo.t.Helper()

	artifact := coords.MustParseGav(gav).ArtifactCoords()
	path := filepath.Join(repo.Dir, filepath.FromSlash(artifact.RepositoryPath()))

	fp := &FeaturePack{Dir: strings.TrimSuffix(path, "."+artifact.Extension), t: repo.t}
	fp.File(config.FeaturePackFileName, "gav = \""+gav+"\"\n"+descriptor)

	return fp
}

// FeaturePack is an unpacked feature-pack fixture.
type FeaturePack struct {
	Dir string
	t   *testing.T
}

// File writes a file relative to the feature-pack directory.
func (fp *FeaturePack) File(rel, content string) *FeaturePack {
	fp.t.Helper()

	path := filepath.Join(fp.Dir, filepath.FromSlash(rel))
	require.NoError(fp.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(fp.t, os.WriteFile(path, []byte(content), 0o644))

	return fp
}

// Package writes the spec of a package.
func (fp *FeaturePack) Package(name, content string) *FeaturePack {
	return fp.File(config.PackagesDir+"/"+name+"/"+config.PackageFileName, content)
}

// Content writes a file installed by a package.
func (fp *FeaturePack) Content(pkg, rel, content string) *FeaturePack {
	return fp.File(config.PackagesDir+"/"+pkg+"/"+config.ContentDir+"/"+rel, content)
}

// Spec writes a feature spec.
func (fp *FeaturePack) Spec(name, content string) *FeaturePack {
	return fp.File(config.FeaturesDir+"/"+name+"/"+config.FeatureSpecFileName, content)
}

// Group writes a feature group.
func (fp *FeaturePack) Group(name, content string) *FeaturePack {
	return fp.File(config.FeatureGroupsDir+"/"+name+config.FeatureGroupFileExt, content)
}
