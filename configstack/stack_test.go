package configstack_test

import (
	"testing"

	"github.com/gruntwork-io/fpack/configstack"
	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/feature"
	"github.com/gruntwork-io/fpack/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testGav = coords.MustParseGav("org.test:fp1:1.0.0")

// newSpec returns a spec with the id param "name" plus the given params.
func newSpec(name string, params ...string) *feature.ResolvedSpec {
	fs := &spec.FeatureSpec{Name: name, Params: []*spec.FeatureParameterSpec{{Name: "name", FeatureID: true}}}
	for _, param := range params {
		fs.Params = append(fs.Params, &spec.FeatureParameterSpec{Name: param, Nillable: true})
	}

	return feature.NewResolvedSpec(spec.ResolvedSpecID{Gav: testGav, Name: name}, fs)
}

func fid(rs *feature.ResolvedSpec, name string) spec.ResolvedFeatureID {
	return spec.NewResolvedFeatureID(rs.ID, map[string]string{"name": name})
}

func include(stack *configstack.Stack, rs *feature.ResolvedSpec, name string, params map[string]string) *feature.ResolvedFeature {
	all := map[string]string{"name": name}
	for k, v := range params {
		all[k] = v
	}

	return stack.IncludeFeature(fid(rs, name), rs, all, nil)
}

func orderedIDs(t *testing.T, stack *configstack.Stack) []string {
	t.Helper()

	ordered, err := stack.OrderFeatures()
	require.NoError(t, err)

	ids := make([]string, len(ordered.Features))
	for i, f := range ordered.Features {
		ids[i] = f.ID.Params.Map()["name"]
	}

	return ids
}

func TestCircularFeatureGroupsArePushedOnce(t *testing.T) {
	t.Parallel()

	specA, specB, specC := newSpec("specA", "a"), newSpec("specB", "b"), newSpec("specC", "c")

	stack := configstack.NewStack(spec.ConfigID{})
	stack.PushConfig(spec.NewConfigModel("", ""), configstack.NewGroupConfig(testGav, "", true))

	require.True(t, stack.PushGroup(configstack.NewGroupConfig(testGav, "fg1", true)))
	require.True(t, stack.PushGroup(configstack.NewGroupConfig(testGav, "fg2", true)))
	require.True(t, stack.PushGroup(configstack.NewGroupConfig(testGav, "fg3", true)))
	assert.False(t, stack.PushGroup(configstack.NewGroupConfig(testGav, "fg1", true)))

	include(stack, specC, "cOne", map[string]string{"c": "c1"})
	assert.Equal(t, "fg3", stack.PopGroup().Name)
	include(stack, specB, "bOne", map[string]string{"b": "b1"})
	assert.Equal(t, "fg2", stack.PopGroup().Name)
	include(stack, specA, "aOne", map[string]string{"a": "a1"})
	assert.Equal(t, "fg1", stack.PopGroup().Name)

	_, open := stack.PopConfig()
	require.Len(t, open, 1)

	assert.Equal(t, []string{"cOne", "bOne", "aOne"}, orderedIDs(t, stack))
}

func TestBroaderGroupIsPushedAgain(t *testing.T) {
	t.Parallel()

	specA := newSpec("specA")

	narrow := configstack.NewGroupConfig(testGav, "fg1", true)
	narrow.ExcludeSpec(specA.ID)

	stack := configstack.NewStack(spec.ConfigID{Name: "main"})
	require.True(t, stack.PushGroup(narrow))
	assert.True(t, stack.PushGroup(configstack.NewGroupConfig(testGav, "fg1", true)))

	narrower := configstack.NewGroupConfig(testGav, "fg1", true)
	narrower.ExcludeSpec(specA.ID)
	narrower.ExcludeFeature(fid(newSpec("specB"), "b"))
	assert.False(t, stack.PushGroup(narrower))

	otherFp := configstack.NewGroupConfig(coords.MustParseGav("org.test:fp2:1.0.0"), "fg1", true)
	assert.True(t, stack.PushGroup(otherFp))
}

func TestGroupConfigIsSubsetOf(t *testing.T) {
	t.Parallel()

	specA, specB := newSpec("specA"), newSpec("specB")

	group := func(inherit bool, setup func(gc *configstack.GroupConfig)) *configstack.GroupConfig {
		gc := configstack.NewGroupConfig(testGav, "fg", inherit)
		if setup != nil {
			setup(gc)
		}

		return gc
	}

	testCases := []struct {
		name     string
		gc       *configstack.GroupConfig
		other    *configstack.GroupConfig
		expected bool
	}{
		{"identical", group(true, nil), group(true, nil), true},
		{"inherit vs explicit", group(true, nil), group(false, nil), false},
		{"explicit vs inherit", group(false, func(gc *configstack.GroupConfig) { gc.IncludeSpec(specA.ID) }), group(true, nil), true},
		{
			"explicit spec excluded by other",
			group(false, func(gc *configstack.GroupConfig) { gc.IncludeSpec(specA.ID) }),
			group(true, func(gc *configstack.GroupConfig) { gc.ExcludeSpec(specA.ID) }),
			false,
		},
		{
			"fewer exclusions",
			group(true, nil),
			group(true, func(gc *configstack.GroupConfig) { gc.ExcludeFeature(fid(specA, "a1")) }),
			false,
		},
		{
			"more exclusions",
			group(true, func(gc *configstack.GroupConfig) { gc.ExcludeSpec(specA.ID) }),
			group(true, func(gc *configstack.GroupConfig) { gc.ExcludeFeature(fid(specA, "a1")) }),
			true,
		},
		{
			"reinclude not admitted by other",
			group(true, func(gc *configstack.GroupConfig) {
				gc.ExcludeSpec(specA.ID)
				gc.IncludeFeature(fid(specA, "a1"), nil)
			}),
			group(true, func(gc *configstack.GroupConfig) { gc.ExcludeSpec(specA.ID) }),
			false,
		},
		{
			"different customization",
			group(true, func(gc *configstack.GroupConfig) { gc.IncludeFeature(fid(specB, "b1"), map[string]string{"p": "1"}) }),
			group(true, func(gc *configstack.GroupConfig) { gc.IncludeFeature(fid(specB, "b1"), map[string]string{"p": "2"}) }),
			false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, tc.gc.IsSubsetOf(tc.other))
		})
	}
}

func TestIsFilteredOut(t *testing.T) {
	t.Parallel()

	specA, specB := newSpec("specA"), newSpec("specB")

	excludeSpecReincludeOne := configstack.NewGroupConfig(testGav, "fg1", true)
	excludeSpecReincludeOne.ExcludeSpec(specA.ID)
	excludeSpecReincludeOne.IncludeFeature(fid(specA, "a2"), nil)

	explicit := configstack.NewGroupConfig(testGav, "fg2", false)
	explicit.IncludeSpec(specB.ID)
	explicit.ExcludeFeature(fid(specB, "b2"))
	explicit.IncludeFeature(fid(specA, "a3"), nil)

	testCases := []struct {
		name     string
		group    *configstack.GroupConfig
		spec     *feature.ResolvedSpec
		feature  string
		expected bool
	}{
		{"excluded spec", excludeSpecReincludeOne, specA, "a1", true},
		{"reincluded feature", excludeSpecReincludeOne, specA, "a2", false},
		{"other spec inherited", excludeSpecReincludeOne, specB, "b1", false},
		{"included spec", explicit, specB, "b1", false},
		{"excluded feature of included spec", explicit, specB, "b2", true},
		{"spec not included", explicit, specA, "a1", true},
		{"feature included by id", explicit, specA, "a3", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			stack := configstack.NewStack(spec.ConfigID{Name: "main"})
			require.True(t, stack.PushGroup(tc.group))

			assert.Equal(t, tc.expected, stack.IsFilteredOut(tc.spec.ID, fid(tc.spec, tc.feature)))
		})
	}
}

func TestConfigInheritFeaturesFallback(t *testing.T) {
	t.Parallel()

	specA := newSpec("specA")

	model := spec.NewConfigModel("model1", "main")
	model.InheritFeatures = false

	stack := configstack.NewStack(model.ID)
	stack.PushConfig(model, configstack.NewGroupConfig(testGav, "", true))

	assert.True(t, stack.IsFilteredOut(specA.ID, fid(specA, "a1")))

	gc := configstack.NewGroupConfig(testGav, "fg1", false)
	gc.IncludeSpec(specA.ID)
	require.True(t, stack.PushGroup(gc))

	assert.False(t, stack.IsFilteredOut(specA.ID, fid(specA, "a1")))
}

func TestGroupFeaturesMergeIntoParent(t *testing.T) {
	t.Parallel()

	specA := newSpec("specA", "p1", "p2")

	stack := configstack.NewStack(spec.ConfigID{Name: "main"})
	stack.PushConfig(spec.NewConfigModel("", "main"), configstack.NewGroupConfig(testGav, "", true))

	include(stack, specA, "a1", map[string]string{"p1": "outer", "p2": "outer"})

	require.True(t, stack.PushGroup(configstack.NewGroupConfig(testGav, "fg1", true)))
	assert.False(t, stack.Includes(fid(specA, "a1")))
	include(stack, specA, "a1", map[string]string{"p1": "inner"})
	include(stack, specA, "a2", nil)
	stack.PopGroup()

	stack.PopConfig()

	require.Len(t, stack.Features(), 1)
	features := stack.Features()[0].Features
	require.Len(t, features, 2)

	p1, _ := features[0].Param("p1")
	p2, _ := features[0].Param("p2")
	assert.Equal(t, "inner", p1)
	assert.Equal(t, "outer", p2)
	assert.Equal(t, fid(specA, "a2"), features[1].ID)
}

func TestCustomizationsInnermostFirst(t *testing.T) {
	t.Parallel()

	specA := newSpec("specA", "p")
	id := fid(specA, "a1")

	outer := configstack.NewGroupConfig(testGav, "", true)
	outer.IncludeFeature(id, map[string]string{"p": "outer"})

	inner := configstack.NewGroupConfig(testGav, "fg1", true)
	inner.ExcludeSpec(specA.ID)
	inner.IncludeFeature(id, map[string]string{"p": "inner"})

	stack := configstack.NewStack(spec.ConfigID{Name: "main"})
	stack.PushConfig(spec.NewConfigModel("", "main"), outer)
	require.True(t, stack.PushGroup(inner))

	customizations := stack.Customizations(id)
	require.Len(t, customizations, 2)
	assert.Equal(t, "inner", customizations[0].Params["p"])
	assert.Equal(t, "outer", customizations[1].Params["p"])
	assert.True(t, stack.IsReincluded(id))
	assert.False(t, stack.IsReincluded(fid(specA, "a2")))
}

func TestMergeFirstWriterWins(t *testing.T) {
	t.Parallel()

	specA := newSpec("specA", "p")

	first := configstack.NewStack(spec.ConfigID{Name: "main"})
	first.OverwriteProps(map[string]string{"prop1": "first", "empty": ""})
	first.OverwriteConfigDeps(map[string]spec.ConfigID{"dep": {Name: "first"}})
	include(first, specA, "a1", map[string]string{"p": "first"})

	second := configstack.NewStack(spec.ConfigID{Name: "main"})
	second.OverwriteProps(map[string]string{"prop1": "second", "prop2": "second", "empty": "second"})
	second.OverwriteConfigDeps(map[string]spec.ConfigID{"dep": {Name: "second"}, "dep2": {Name: "second"}})
	include(second, specA, "a1", map[string]string{"p": "second"})
	include(second, specA, "a2", nil)

	merged := configstack.NewStack(spec.ConfigID{Name: "main"})
	require.NoError(t, merged.Merge(first))
	require.NoError(t, merged.Merge(second))

	assert.Equal(t, map[string]string{"prop1": "first", "prop2": "second", "empty": ""}, merged.Props)
	assert.Equal(t, map[string]spec.ConfigID{"dep": {Name: "first"}, "dep2": {Name: "second"}}, merged.ConfigDeps)

	features := merged.Features()[0].Features
	require.Len(t, features, 2)

	p, _ := features[0].Param("p")
	assert.Equal(t, "first", p)
	assert.Equal(t, 1, features[0].IncludeNo)
	assert.Equal(t, 2, features[1].IncludeNo)

	p, _ = first.Features()[0].Features[0].Param("p")
	assert.Equal(t, "first", p)
}

func TestMergedFeaturesWithoutIDAreCopiedPerStack(t *testing.T) {
	t.Parallel()

	anon := feature.NewResolvedSpec(spec.ResolvedSpecID{Gav: testGav, Name: "anon"}, &spec.FeatureSpec{
		Name:   "anon",
		Params: []*spec.FeatureParameterSpec{{Name: "v", Nillable: true}},
	})

	model := configstack.NewStack(spec.ConfigID{Model: "model1"})
	shared := model.IncludeFeature(spec.ResolvedFeatureID{}, anon, map[string]string{"v": "x"}, nil)

	for _, name := range []string{"one", "two"} {
		stack := configstack.NewStack(spec.ConfigID{Model: "model1", Name: name})
		require.NoError(t, stack.Merge(model))

		ordered, err := stack.OrderFeatures()
		require.NoError(t, err)
		require.Len(t, ordered.Features, 1, name)

		f := ordered.Features[0]
		assert.NotSame(t, shared, f)

		v, _ := f.Param("v")
		assert.Equal(t, "x", v)
	}

	assert.False(t, shared.IsOrdered())
}

func TestPopEmptyStackPanics(t *testing.T) {
	t.Parallel()

	stack := configstack.NewStack(spec.ConfigID{Name: "main"})

	assert.Panics(t, func() { stack.PopGroup() })
	assert.Panics(t, func() { stack.PopConfig() })
}
