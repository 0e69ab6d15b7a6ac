package runtime_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gruntwork-io/fpack/config"
	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/artifact"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/internal/fptest"
	"github.com/gruntwork-io/fpack/internal/runtime"
	"github.com/gruntwork-io/fpack/options"
	"github.com/gruntwork-io/fpack/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fp1Gav = "org.test:fp1:1.0.0"
	fp2Gav = "org.test:fp2:1.0.0"
)

func newOptions(t *testing.T) *options.ProvisioningOptions {
	t.Helper()

	return options.NewProvisioningOptionsForTest(t.TempDir())
}

func parseConfig(t *testing.T, opts *options.ProvisioningOptions, content string) *spec.ProvisioningConfig {
	t.Helper()

	cfg, err := config.ParseProvisioningConfigString(config.NewParsingContext(context.Background(), opts.Logger), content, config.ProvisioningFileName)
	require.NoError(t, err)

	return cfg
}

func build(t *testing.T, repo *fptest.Repo, opts *options.ProvisioningOptions, content string) (*runtime.ProvisioningRuntime, error) {
	t.Helper()

	rt, err := runtime.NewBuilder(opts, artifact.NewLocalRepository(repo.Dir)).Build(context.Background(), parseConfig(t, opts, content))
	if err == nil {
		t.Cleanup(func() {
			assert.NoError(t, rt.Close())
		})
	}

	return rt, err
}

func mustBuild(t *testing.T, repo *fptest.Repo, content string) *runtime.ProvisioningRuntime {
	t.Helper()

	rt, err := build(t, repo, newOptions(t), content)
	require.NoError(t, err)

	return rt
}

func packages(t *testing.T, rt *runtime.ProvisioningRuntime, gav string) []string {
	t.Helper()

	fp := rt.FeaturePack(coords.MustParseGav(gav).Ga())
	require.NotNil(t, fp, "feature-pack %s is not provisioned", gav)

	return fp.PackageNames()
}

// features renders the features of a provisioned config as `artifact#spec param=value,...`.
func features(t *testing.T, rt *runtime.ProvisioningRuntime, id spec.ConfigID) []string {
	t.Helper()

	cfg := rt.State().Config(id)
	require.NotNil(t, cfg, "config %s is not provisioned", id)

	result := make([]string, len(cfg.Features))

	for i, f := range cfg.Features {
		params := make([]string, len(f.Params))
		for j, param := range f.Params {
			params[j] = param.Name + "=" + param.Value
		}

		result[i] = fmt.Sprintf("%s#%s %s", f.Spec.Gav.ArtifactID, f.Spec.Name, strings.Join(params, ","))
	}

	return result
}

func TestDependencyConfigIncludesPackages(t *testing.T) {
	t.Parallel()

	repo := fptest.NewRepo(t)

	repo.FeaturePack(fp1Gav, `default_packages = ["p1"]`).
		Package("p1", "").
		Package("p2", "")

	repo.FeaturePack(fp2Gav, `
default_packages = ["p1", "p2", "p3"]

dependency "fp1" {
  gav = "org.test:fp1:1.0.0"

  package "p2" {}
}
`).
		Package("p1", "").
		Package("p2", "").
		Package("p3", "")

	rt := mustBuild(t, repo, `feature_pack "org.test:fp2:1.0.0" {}`)

	require.Len(t, rt.FeaturePacks, 2)
	assert.Equal(t, coords.MustParseGav(fp1Gav), rt.FeaturePacks[0].Gav)
	assert.Equal(t, coords.MustParseGav(fp2Gav), rt.FeaturePacks[1].Gav)

	assert.ElementsMatch(t, []string{"p1", "p2"}, packages(t, rt, fp1Gav))
	assert.ElementsMatch(t, []string{"p1", "p2", "p3"}, packages(t, rt, fp2Gav))
}

func TestInheritPackagesDisabled(t *testing.T) {
	t.Parallel()

	repo := fptest.NewRepo(t)
	repo.FeaturePack(fp1Gav, `default_packages = ["p1", "p2"]`).
		Package("p1", "").
		Package("p2", "").
		Package("p3", "")

	rt := mustBuild(t, repo, `
feature_pack "org.test:fp1:1.0.0" {
  inherit_packages = false

  package "p3" {}
}
`)

	assert.Equal(t, []string{"p3"}, packages(t, rt, fp1Gav))
}

func TestPackageDependenciesInstalledFirst(t *testing.T) {
	t.Parallel()

	repo := fptest.NewRepo(t)
	repo.FeaturePack(fp1Gav, `default_packages = ["p1"]`).
		Package("p1", `
dependency "p2" {}

param "x" {
  value = "p1"
}
`).
		Package("p2", `
dependency "p3" {
  param "y" {
    value = "from-p2"
  }
}
`).
		Package("p3", `
param "y" {
  value = "p3"
}
`)

	rt := mustBuild(t, repo, `
feature_pack "org.test:fp1:1.0.0" {
  package "p1" {
    param "x" {
      value = "requested"
    }
  }
}
`)

	assert.Equal(t, []string{"p3", "p2", "p1"}, packages(t, rt, fp1Gav))

	fp := rt.FeaturePack(coords.MustParseGav(fp1Gav).Ga())

	x, ok := fp.Package("p1").Param("x")
	require.True(t, ok)
	assert.Equal(t, "requested", x)

	y, ok := fp.Package("p3").Param("y")
	require.True(t, ok)
	assert.Equal(t, "from-p2", y)
}

func TestCircularPackageDependencies(t *testing.T) {
	t.Parallel()

	repo := fptest.NewRepo(t)
	repo.FeaturePack(fp1Gav, `default_packages = ["p1"]`).
		Package("p1", `dependency "p2" {}`).
		Package("p2", `dependency "p1" {}`)

	rt := mustBuild(t, repo, `feature_pack "org.test:fp1:1.0.0" {}`)

	assert.Equal(t, []string{"p2", "p1"}, packages(t, rt, fp1Gav))
}

func TestExcludedPackages(t *testing.T) {
	t.Parallel()

	newRepo := func(t *testing.T) *fptest.Repo {
		t.Helper()

		repo := fptest.NewRepo(t)
		repo.FeaturePack(fp1Gav, `default_packages = ["p1", "p3"]`).
			Package("p1", `dependency "p2" {}`).
			Package("p2", "").
			Package("p3", `
dependency "p4" {
  optional = true
}

dependency "missing" {
  optional = true
}
`).
			Package("p4", "")

		return repo
	}

	t.Run("required dependency", func(t *testing.T) {
		t.Parallel()

		_, err := build(t, newRepo(t), newOptions(t), `
feature_pack "org.test:fp1:1.0.0" {
  excluded_packages = ["p2"]
}
`)
		require.Error(t, err)

		var unsatisfied runtime.UnsatisfiedPackageDependencyError
		require.True(t, errors.As(err, &unsatisfied))
		assert.Equal(t, "p1", unsatisfied.Package)
		assert.Equal(t, "p2", unsatisfied.Dependency)
		assert.ErrorContains(t, err, "Package p1 of org.test:fp1:1.0.0 has unsatisfied dependency on package p2")
	})

	t.Run("optional dependency", func(t *testing.T) {
		t.Parallel()

		rt, err := build(t, newRepo(t), newOptions(t), `
feature_pack "org.test:fp1:1.0.0" {
  excluded_packages = ["p4"]
}
`)
		require.NoError(t, err)
		assert.Equal(t, []string{"p2", "p1", "p3"}, packages(t, rt, fp1Gav))
	})

	t.Run("included and excluded", func(t *testing.T) {
		t.Parallel()

		_, err := build(t, newRepo(t), newOptions(t), `
feature_pack "org.test:fp1:1.0.0" {
  excluded_packages = ["p4"]

  package "p4" {}
}
`)

		var unsatisfied runtime.UnsatisfiedPackageDependencyError
		require.True(t, errors.As(err, &unsatisfied))
		assert.Empty(t, unsatisfied.Package)
		assert.Equal(t, "p4", unsatisfied.Dependency)
	})
}

func TestMissingPackage(t *testing.T) {
	t.Parallel()

	repo := fptest.NewRepo(t)
	repo.FeaturePack(fp1Gav, `default_packages = ["p1"]`)

	_, err := build(t, repo, newOptions(t), `feature_pack "org.test:fp1:1.0.0" {}`)
	require.ErrorContains(t, err, "Failed to resolve package p1 in org.test:fp1:1.0.0")
}

func TestExternalPackageDependencies(t *testing.T) {
	t.Parallel()

	newRepo := func(t *testing.T, dependency string) *fptest.Repo {
		t.Helper()

		repo := fptest.NewRepo(t)
		repo.FeaturePack(fp1Gav, `default_packages = ["p1"]`).
			Package("p1", "").
			Package("p9", "")

		repo.FeaturePack(fp2Gav, `default_packages = ["p1"]`+"\n"+dependency).
			Package("p1", `
external_dependency "fp1" {
  dependency "p9" {}
}
`)

		return repo
	}

	t.Run("resolved in the dependency", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t, `
dependency "fp1" {
  gav = "org.test:fp1:1.0.0"
}
`)

		rt, err := build(t, repo, newOptions(t), `feature_pack "org.test:fp2:1.0.0" {}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p9"}, packages(t, rt, fp1Gav))
		assert.Equal(t, []string{"p1"}, packages(t, rt, fp2Gav))
	})

	t.Run("excluded in the dependency", func(t *testing.T) {
		t.Parallel()

		repo := newRepo(t, `
dependency "fp1" {
  gav               = "org.test:fp1:1.0.0"
  excluded_packages = ["p9"]
}
`)

		_, err := build(t, repo, newOptions(t), `feature_pack "org.test:fp2:1.0.0" {}`)

		var unsatisfied runtime.UnsatisfiedExternalPackageDependencyError
		require.True(t, errors.As(err, &unsatisfied))
		assert.Equal(t, coords.MustParseGav(fp1Gav), unsatisfied.Target)
		assert.Equal(t, "p9", unsatisfied.Dependency)
	})
}

func TestFeaturePackVersionConflict(t *testing.T) {
	t.Parallel()

	repo := fptest.NewRepo(t)
	repo.FeaturePack(fp1Gav, "")
	repo.FeaturePack(fp2Gav, `
dependency "fp1" {
  gav = "org.test:fp1:2.0.0"
}
`)

	_, err := build(t, repo, newOptions(t), `
feature_pack "org.test:fp1:1.0.0" {}
feature_pack "org.test:fp2:1.0.0" {}
`)

	var conflict coords.FeaturePackVersionConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, coords.MustParseGav(fp1Gav), conflict.Existing)
	assert.Equal(t, coords.MustParseGav("org.test:fp1:2.0.0"), conflict.Requested)
}

func TestMissingFeaturePack(t *testing.T) {
	t.Parallel()

	_, err := build(t, fptest.NewRepo(t), newOptions(t), `feature_pack "org.test:fp1:1.0.0" {}`)

	var resolution artifact.ResolutionError
	require.True(t, errors.As(err, &resolution))
}

func TestWorkDirRemovedOnFailure(t *testing.T) {
	t.Parallel()

	repo := fptest.NewRepo(t)
	repo.FeaturePack(fp1Gav, `default_packages = ["missing"]`)

	opts := newOptions(t)

	_, err := build(t, repo, opts, `feature_pack "org.test:fp1:1.0.0" {}`)
	require.Error(t, err)

	entries, err := filepath.Glob(filepath.Join(opts.TempDir, "fpack-*"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStateIsACopy(t *testing.T) {
	t.Parallel()

	repo := fptest.NewRepo(t)
	repo.FeaturePack(fp1Gav, `default_packages = ["p1"]`).Package("p1", "")

	rt := mustBuild(t, repo, `feature_pack "org.test:fp1:1.0.0" {}`)

	state := rt.State()
	state.FeaturePacks[0].Packages[0] = "changed"

	assert.Equal(t, []string{"p1"}, rt.State().FeaturePacks[0].Packages)
}
