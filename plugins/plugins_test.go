package plugins_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"

	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/internal/plugin"
	"github.com/gruntwork-io/fpack/pkg/log"
	"github.com/gruntwork-io/fpack/plugins"
	"github.com/gruntwork-io/fpack/plugins/opscript"
	"github.com/gruntwork-io/fpack/plugins/props"
	"github.com/gruntwork-io/fpack/spec"
)

type fakeRuntime struct {
	staged string
	state  *spec.ProvisionedState
}

func (rt *fakeRuntime) InstallDir() string { return "" }
func (rt *fakeRuntime) StagedDir() string { return rt.staged }
func (rt *fakeRuntime) ResourcesDir() string { return "" }
func (rt *fakeRuntime) State() *spec.ProvisionedState { return rt.state }
func (rt *fakeRuntime) ProvisioningConfig() *spec.ProvisioningConfig { return spec.NewProvisioningConfig() }
func (rt *fakeRuntime) Logger() log.Logger { return log.Default() }

func newRuntime(t *testing.T) *fakeRuntime {
	t.Helper()

	fp1 := coords.MustParseGav("org.test:fp1:1.0.0")
	fp2 := coords.MustParseGav("org.test:fp2:1.0.0")

	return &fakeRuntime{
		staged: t.TempDir(),
		state: &spec.ProvisionedState{
			Configs: []*spec.ProvisionedConfig{
				{
					ID:    spec.ConfigID{Name: "main"},
					Props: map[string]string{"b": "2", "a": "1"},
					Features: []*spec.ProvisionedFeature{
						{
							Spec:        spec.ResolvedSpecID{Gav: fp1, Name: "specA"},
							Params:      []spec.Param{{Name: "name", Value: "a"}},
							StartsBatch: true,
						},
						{
							Spec:      spec.ResolvedSpecID{Gav: fp1, Name: "specB"},
							Params:    []spec.Param{{Name: "name", Value: "b"}},
							EndsBatch: true,
						},
						{
							Spec: spec.ResolvedSpecID{Gav: fp2, Name: "specC"},
						},
					},
				},
				{
					ID: spec.ConfigID{Model: "model1", Name: "named"},
				},
			},
		},
	}
}

func TestRegisterBuiltins(t *testing.T) {
	t.Parallel()

	reg := plugins.NewRegistry()
	assert.Equal(t, []string{opscript.Name, props.Name}, reg.Names())

	err := plugins.RegisterBuiltins(reg)

	var duplicate plugin.DuplicatePluginError
	require.True(t, errors.As(err, &duplicate))
}

func TestOpScript(t *testing.T) {
	t.Parallel()

	rt := newRuntime(t)

	p, err := plugins.NewRegistry().New(opscript.Name, nil)
	require.NoError(t, err)
	require.NoError(t, p.PostInstall(context.Background(), rt))

	content, err := os.ReadFile(filepath.Join(rt.staged, opscript.DefaultDir, "main.ops"))
	require.NoError(t, err)

	expected := `# config main
set a=1
set b=2
# feature-pack org.test:fp1:1.0.0
# spec specA
begin-batch
add specA name=a
# spec specB
add specB name=b
end-batch
# feature-pack org.test:fp2:1.0.0
# spec specC
add specC
`
	assert.Equal(t, expected, string(content))

	content, err = os.ReadFile(filepath.Join(rt.staged, opscript.DefaultDir, "model1-named.ops"))
	require.NoError(t, err)
	assert.Equal(t, "# config model1/named\n", string(content))
}

func TestOpScriptOptions(t *testing.T) {
	t.Parallel()

	rt := newRuntime(t)

	p, err := opscript.New(map[string]string{"dir": "ops"})
	require.NoError(t, err)
	require.NoError(t, p.PostInstall(context.Background(), rt))
	assert.FileExists(t, filepath.Join(rt.staged, "ops", "main.ops"))

	_, err = opscript.New(map[string]string{"unknown": "x"})
	require.Error(t, err)
}

func TestScriptName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		id       spec.ConfigID
		expected string
	}{
		{id: spec.ConfigID{Name: "main"}, expected: "main.ops"},
		{id: spec.ConfigID{Model: "m", Name: "n"}, expected: "m-n.ops"},
		{id: spec.ConfigID{}, expected: "config.ops"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, opscript.ScriptName(tc.id))
	}
}

func TestProps(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		options   map[string]string
		file      string
		withEmpty bool
	}{
		{
			name:      "defaults",
			file:      props.DefaultFile,
			withEmpty: true,
		},
		{
			name:    "custom file without empty configs",
			options: map[string]string{"file": "conf/props.ini", "skip_empty": "true"},
			file:    "conf/props.ini",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rt := newRuntime(t)

			p, err := props.New(tc.options)
			require.NoError(t, err)
			require.NoError(t, p.PostInstall(context.Background(), rt))

			file, err := ini.Load(filepath.Join(rt.staged, filepath.FromSlash(tc.file)))
			require.NoError(t, err)

			section, err := file.GetSection("main")
			require.NoError(t, err)
			assert.Equal(t, map[string]string{"a": "1", "b": "2"}, section.KeysHash())

			_, err = file.GetSection("model1/named")
			if tc.withEmpty {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPropsRejectsAbsoluteFile(t *testing.T) {
	t.Parallel()

	_, err := props.New(map[string]string{"file": "/etc/props.ini"})
	require.Error(t, err)
}
