package configstack_test

import (
	"testing"

	"github.com/gruntwork-io/fpack/configstack"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/internal/feature"
	"github.com/gruntwork-io/fpack/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// refSpec returns a spec whose param named after the target spec references the target's name.
func refSpec(name string, targets ...*feature.ResolvedSpec) *feature.ResolvedSpec {
	params := make([]string, len(targets))
	for i, target := range targets {
		params[i] = target.ID.Name
	}

	rs := newSpec(name, params...)

	for _, target := range targets {
		rs.Spec.Refs = append(rs.Spec.Refs, &spec.FeatureReferenceSpec{
			Name:     target.ID.Name,
			Feature:  target.ID.Name,
			Nillable: true,
			Mappings: []spec.RefMapping{{Param: target.ID.Name, TargetParam: "name"}},
		})
		rs.SetRefTarget(target.ID.Name, target)
	}

	return rs
}

func names(features []*feature.ResolvedFeature) []string {
	result := make([]string, len(features))
	for i, f := range features {
		result[i] = f.ID.Params.Map()["name"]
	}

	return result
}

func TestReferencedFeaturesAreOrderedFirst(t *testing.T) {
	t.Parallel()

	specA := newSpec("specA")
	specB := refSpec("specB", specA)

	stack := configstack.NewStack(spec.ConfigID{Name: "main"})
	include(stack, specB, "b1", map[string]string{"specA": "a1"})
	include(stack, specB, "b2", nil)
	include(stack, specA, "a1", nil)
	include(stack, specA, "a2", nil)

	assert.Equal(t, []string{"a1", "a2", "b1", "b2"}, orderedIDs(t, stack))
}

func TestDependenciesAreOrderedFirst(t *testing.T) {
	t.Parallel()

	specA := newSpec("specA")

	stack := configstack.NewStack(spec.ConfigID{Name: "main"})
	stack.IncludeFeature(fid(specA, "a1"), specA, map[string]string{"name": "a1"},
		[]feature.Dependency{{ID: fid(specA, "a3")}})
	include(stack, specA, "a2", nil)
	include(stack, specA, "a3", nil)

	assert.Equal(t, []string{"a3", "a1", "a2"}, orderedIDs(t, stack))
}

func TestUnresolvedDependency(t *testing.T) {
	t.Parallel()

	specA := newSpec("specA")
	specB := refSpec("specB", specA)

	testCases := []struct {
		name    string
		setup   func(stack *configstack.Stack)
		message string
	}{
		{
			name: "dependency",
			setup: func(stack *configstack.Stack) {
				stack.IncludeFeature(fid(specA, "a1"), specA, map[string]string{"name": "a1"},
					[]feature.Dependency{{ID: fid(specA, "missing")}})
			},
			message: "org.test:fp1:1.0.0#specA:name=a1 has unresolved dependency on org.test:fp1:1.0.0#specA:name=missing",
		},
		{
			name: "reference to missing spec",
			setup: func(stack *configstack.Stack) {
				include(stack, specB, "b1", map[string]string{"specA": "a1"})
			},
			message: "org.test:fp1:1.0.0#specB:name=b1 has unresolved dependency on org.test:fp1:1.0.0#specA:name=a1",
		},
		{
			name: "reference to missing feature",
			setup: func(stack *configstack.Stack) {
				include(stack, specA, "a2", nil)
				include(stack, specB, "b1", map[string]string{"specA": "a1"})
			},
			message: "org.test:fp1:1.0.0#specB:name=b1 has unresolved dependency on org.test:fp1:1.0.0#specA:name=a1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			stack := configstack.NewStack(spec.ConfigID{Name: "main"})
			tc.setup(stack)

			_, err := stack.OrderFeatures()
			require.EqualError(t, err, "Failed to build config named main: "+tc.message)

			var buildErr configstack.ConfigBuildError
			require.True(t, errors.As(err, &buildErr))

			var unresolved configstack.UnresolvedFeatureDependencyError
			require.True(t, errors.As(err, &unresolved))
		})
	}
}

func TestCapabilityProviders(t *testing.T) {
	t.Parallel()

	provider := newSpec("provider")
	provider.Spec.ProvidedCapabilities = []*spec.CapabilitySpec{spec.MustParseCapabilitySpec("cap.$name", false)}

	staticProvider := newSpec("static")
	staticProvider.Spec.ProvidedCapabilities = []*spec.CapabilitySpec{spec.MustParseCapabilitySpec("static.cap", false)}

	consumer := newSpec("consumer", "target")
	consumer.Spec.RequiredCapabilities = []*spec.CapabilitySpec{spec.MustParseCapabilitySpec("cap.$target", false)}

	staticConsumer := newSpec("staticConsumer")
	staticConsumer.Spec.RequiredCapabilities = []*spec.CapabilitySpec{spec.MustParseCapabilitySpec("static.cap", false)}

	t.Run("dynamic provider ordered first", func(t *testing.T) {
		t.Parallel()

		stack := configstack.NewStack(spec.ConfigID{Name: "main"})
		include(stack, consumer, "c1", map[string]string{"target": "p2"})
		include(stack, provider, "p1", nil)
		include(stack, provider, "p2", nil)

		assert.Equal(t, []string{"p2", "c1", "p1"}, orderedIDs(t, stack))
	})

	t.Run("static provider spec ordered first", func(t *testing.T) {
		t.Parallel()

		stack := configstack.NewStack(spec.ConfigID{Name: "main"})
		include(stack, staticConsumer, "c1", nil)
		include(stack, staticProvider, "s1", nil)
		include(stack, staticProvider, "s2", nil)

		assert.Equal(t, []string{"s1", "s2", "c1"}, orderedIDs(t, stack))
	})

	t.Run("missing provider", func(t *testing.T) {
		t.Parallel()

		stack := configstack.NewStack(spec.ConfigID{Name: "main"})
		include(stack, consumer, "c1", map[string]string{"target": "p9"})
		include(stack, provider, "p1", nil)

		_, err := stack.OrderFeatures()
		require.Error(t, err)

		var noProvider configstack.NoCapabilityProviderError
		require.True(t, errors.As(err, &noProvider))
		assert.Equal(t, "cap.p9", noProvider.Resolved)
		assert.Contains(t, err.Error(), "No provider found for capability cap.$target required by org.test:fp1:1.0.0#consumer:name=c1 as cap.p9")
	})
}

func TestCircularReferencesFormBatch(t *testing.T) {
	t.Parallel()

	specA := newSpec("specA", "specB")
	specB := refSpec("specB", specA)

	specA.Spec.Refs = append(specA.Spec.Refs, &spec.FeatureReferenceSpec{
		Name:     "specB",
		Feature:  "specB",
		Nillable: true,
		Mappings: []spec.RefMapping{{Param: "specB", TargetParam: "name"}},
	})
	specA.SetRefTarget("specB", specB)

	stack := configstack.NewStack(spec.ConfigID{Name: "main"})
	include(stack, specA, "a1", map[string]string{"specB": "b1"})
	include(stack, specB, "b1", map[string]string{"specA": "a1"})
	include(stack, specA, "a2", nil)

	ordered, err := stack.OrderFeatures()
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "b1", "a2"}, names(ordered.Features))
	assert.True(t, ordered.Features[0].StartsBatch())
	assert.False(t, ordered.Features[0].EndsBatch())
	assert.True(t, ordered.Features[1].EndsBatch())
	assert.False(t, ordered.Features[2].StartsBatch())

	require.Len(t, ordered.Branches, 2)
	assert.Equal(t, []string{"a1", "b1"}, names(ordered.Branches[0]))
	assert.Equal(t, []string{"a2"}, names(ordered.Branches[1]))
}

func TestLoopCutAtFirstIncludedFeature(t *testing.T) {
	t.Parallel()

	specA := newSpec("specA", "specB")
	specB := refSpec("specB", specA)

	specA.Spec.Refs = append(specA.Spec.Refs, &spec.FeatureReferenceSpec{
		Name:     "specB",
		Feature:  "specB",
		Nillable: true,
		Mappings: []spec.RefMapping{{Param: "specB", TargetParam: "name"}},
	})
	specA.SetRefTarget("specB", specB)

	stack := configstack.NewStack(spec.ConfigID{Name: "main"})
	include(stack, specA, "a0", nil)
	include(stack, specB, "b1", map[string]string{"specA": "a1"})
	include(stack, specA, "a1", map[string]string{"specB": "b1"})

	ordered, err := stack.OrderFeatures()
	require.NoError(t, err)

	assert.Equal(t, []string{"a0", "b1", "a1"}, names(ordered.Features))
	assert.True(t, ordered.Features[1].StartsBatch())
	assert.True(t, ordered.Features[2].EndsBatch())
}

func TestStartsBranchAsParent(t *testing.T) {
	t.Parallel()

	specX, specS, specY := newSpec("specX"), newSpec("specS"), newSpec("specY")
	specS.Spec.StartsBranchAsParent = true

	stack := configstack.NewStack(spec.ConfigID{Name: "main"})
	include(stack, specX, "x", nil)
	include(stack, specS, "s1", nil)
	include(stack, specY, "y", nil)

	ordered, err := stack.OrderFeatures()
	require.NoError(t, err)

	require.Len(t, ordered.Branches, 2)
	assert.Equal(t, []string{"x"}, names(ordered.Branches[0]))
	assert.Equal(t, []string{"s1", "y"}, names(ordered.Branches[1]))
}

func TestOrderingIsDeterministic(t *testing.T) {
	t.Parallel()

	build := func() []string {
		specA := newSpec("specA")
		specB := refSpec("specB", specA)
		specC := refSpec("specC", specA, specB)

		stack := configstack.NewStack(spec.ConfigID{Name: "main"})
		include(stack, specC, "c1", map[string]string{"specA": "a2", "specB": "b1"})
		include(stack, specB, "b1", map[string]string{"specA": "a1"})
		include(stack, specA, "a1", nil)
		include(stack, specA, "a2", nil)

		return orderedIDs(t, stack)
	}

	expected := build()
	assert.Equal(t, []string{"a1", "a2", "b1", "c1"}, expected)

	for range 10 {
		assert.Equal(t, expected, build())
	}
}

func TestEmptyStackOrdersNothing(t *testing.T) {
	t.Parallel()

	ordered, err := configstack.NewStack(spec.ConfigID{Name: "main"}).OrderFeatures()
	require.NoError(t, err)
	assert.Empty(t, ordered.Features)
	assert.Empty(t, ordered.Branches)
}

// addRef makes from reference to through the param named after the target spec.
func addRef(from, to *feature.ResolvedSpec) {
	from.Spec.Refs = append(from.Spec.Refs, &spec.FeatureReferenceSpec{
		Name:     to.ID.Name,
		Feature:  to.ID.Name,
		Nillable: true,
		Mappings: []spec.RefMapping{{Param: to.ID.Name, TargetParam: "name"}},
	})
	from.SetRefTarget(to.ID.Name, to)
}

func TestLoopsClosingOnOneFeatureFormOneBatch(t *testing.T) {
	t.Parallel()

	specA := newSpec("specA", "specB", "specC")
	specB, specC := refSpec("specB", specA), refSpec("specC", specA)
	addRef(specA, specB)
	addRef(specA, specC)

	stack := configstack.NewStack(spec.ConfigID{Name: "main"})
	include(stack, specA, "a1", map[string]string{"specB": "b1", "specC": "c1"})
	include(stack, specB, "b1", map[string]string{"specA": "a1"})
	include(stack, specC, "c1", map[string]string{"specA": "a1"})

	ordered, err := stack.OrderFeatures()
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "b1", "c1"}, names(ordered.Features))
	assert.True(t, ordered.Features[0].StartsBatch())
	assert.False(t, ordered.Features[1].StartsBatch())
	assert.False(t, ordered.Features[1].EndsBatch())
	assert.True(t, ordered.Features[2].EndsBatch())

	require.Len(t, ordered.Branches, 1)
	assert.Equal(t, []string{"a1", "b1", "c1"}, names(ordered.Branches[0]))
}

func TestLoopsClosingOnOneFeatureRestartFromFirstIncluded(t *testing.T) {
	t.Parallel()

	specA := newSpec("specA", "specB", "specC")
	specB, specC := refSpec("specB", specA), refSpec("specC", specA)
	addRef(specA, specB)
	addRef(specA, specC)

	stack := configstack.NewStack(spec.ConfigID{Name: "main"})
	include(stack, specA, "a1", nil)
	include(stack, specC, "c1", map[string]string{"specA": "a2"})
	include(stack, specA, "a2", map[string]string{"specB": "b1", "specC": "c1"})
	include(stack, specB, "b1", map[string]string{"specA": "a2"})

	ordered, err := stack.OrderFeatures()
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "c1", "a2", "b1"}, names(ordered.Features))
	assert.False(t, ordered.Features[0].StartsBatch())
	assert.True(t, ordered.Features[1].StartsBatch())
	assert.False(t, ordered.Features[2].StartsBatch())
	assert.False(t, ordered.Features[2].EndsBatch())
	assert.True(t, ordered.Features[3].EndsBatch())

	require.Len(t, ordered.Branches, 2)
	assert.Equal(t, []string{"a1"}, names(ordered.Branches[0]))
	assert.Equal(t, []string{"c1", "a2", "b1"}, names(ordered.Branches[1]))
}
