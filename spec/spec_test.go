package spec_test

import (
	"testing"

	"github.com/gruntwork-io/fpack/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeatureID(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		value    string
		expected string
		origin   string
		params   map[string]string
		err      bool
	}{
		{value: "specA:name=a", expected: "specA:name=a", params: map[string]string{"name": "a"}},
		{value: "fp2#specA:p2=y,p1=x", expected: "fp2#specA:p1=x,p2=y", origin: "fp2", params: map[string]string{"p1": "x", "p2": "y"}},
		{value: "specA", err: true},
		{value: "specA:", err: true},
		{value: "specA:name", err: true},
		{value: "#specA:name=a", err: true},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			t.Parallel()

			id, err := spec.ParseFeatureID(tc.value)
			if tc.err {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, id.String())
			assert.Equal(t, tc.origin, id.Spec.Origin)
			assert.Equal(t, tc.params, id.Params.Map())
		})
	}
}

func TestIDParamsAreComparable(t *testing.T) {
	t.Parallel()

	first := spec.NewIDParams(map[string]string{"b": "2", "a": "1"})
	second := spec.NewIDParams(map[string]string{"a": "1", "b": "2"})

	assert.Equal(t, first, second)
	assert.Equal(t, 2, first.Len())
	assert.Equal(t, 0, spec.IDParams("").Len())

	value, ok := first.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "2", value)

	gav := spec.ResolvedSpecID{Name: "specA"}
	ids := map[spec.ResolvedFeatureID]int{spec.NewResolvedFeatureID(gav, first.Map()): 1}
	assert.Contains(t, ids, spec.NewResolvedFeatureID(gav, map[string]string{"a": "1", "b": "2"}))
}

func TestParseCapabilitySpec(t *testing.T) {
	t.Parallel()

	capSpec, err := spec.ParseCapabilitySpec("org.wildfly.$profile.$name", false)
	require.NoError(t, err)
	assert.False(t, capSpec.IsStatic())
	assert.Equal(t, []spec.CapabilityElement{
		{Value: "org"}, {Value: "wildfly"}, {Value: "profile", Param: true}, {Value: "name", Param: true},
	}, capSpec.Elements)
	assert.Equal(t, "org.wildfly.$profile.$name", capSpec.String())

	assert.True(t, spec.MustParseCapabilitySpec("org.wildfly.domain", true).IsStatic())

	for _, invalid := range []string{"", "org..name", "org.$"} {
		_, err := spec.ParseCapabilitySpec(invalid, false)
		assert.Error(t, err, invalid)
	}
}

func TestConfigCustomizationsDecide(t *testing.T) {
	t.Parallel()

	named := spec.ConfigID{Model: "model1", Name: "config1"}
	modelOnly := spec.ConfigID{Model: "model1"}

	testCases := []struct {
		name     string
		cc       func() spec.ConfigCustomizations
		id       spec.ConfigID
		expected spec.ConfigDecision
	}{
		{
			name:     "defaults",
			cc:       spec.DefaultConfigCustomizations,
			id:       named,
			expected: spec.ConfigUndecided,
		},
		{
			name: "configs not inherited",
			cc: func() spec.ConfigCustomizations {
				cc := spec.DefaultConfigCustomizations()
				cc.InheritConfigs = false
				return cc
			},
			id:       named,
			expected: spec.ConfigExcluded,
		},
		{
			name: "included config wins over not inherited",
			cc: func() spec.ConfigCustomizations {
				cc := spec.DefaultConfigCustomizations()
				cc.InheritConfigs = false
				cc.IncludedConfigs = []spec.ConfigID{named}
				return cc
			},
			id:       named,
			expected: spec.ConfigIncluded,
		},
		{
			name: "named only model exclusion keeps model only config",
			cc: func() spec.ConfigCustomizations {
				cc := spec.DefaultConfigCustomizations()
				cc.ExcludeModel("model1", true)
				return cc
			},
			id:       modelOnly,
			expected: spec.ConfigUndecided,
		},
		{
			name: "model exclusion",
			cc: func() spec.ConfigCustomizations {
				cc := spec.DefaultConfigCustomizations()
				cc.ExcludeModel("model1", false)
				return cc
			},
			id:       modelOnly,
			expected: spec.ConfigExcluded,
		},
		{
			name: "model only configs not inherited",
			cc: func() spec.ConfigCustomizations {
				cc := spec.DefaultConfigCustomizations()
				cc.InheritModelOnlyConfigs = false
				return cc
			},
			id:       modelOnly,
			expected: spec.ConfigExcluded,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cc := tc.cc()
			assert.Equal(t, tc.expected, cc.Decide(tc.id))
		})
	}
}

func TestFeaturePackConfigPackages(t *testing.T) {
	t.Parallel()

	cfg := spec.NewFeaturePackConfig(spec.ResolvedSpecID{}.Gav).
		ExcludePackage("p1").
		IncludePackage("p2", spec.PackageParameter{Name: "x", Value: "1"})

	assert.True(t, cfg.IsPackageExcluded("p1"))
	assert.False(t, cfg.IsPackageExcluded("p2"))
	require.NotNil(t, cfg.IncludedPackage("p2"))
	assert.Equal(t, "1", cfg.IncludedPackage("p2").Param("x").Value)
	assert.Nil(t, cfg.IncludedPackage("p3"))
}
