package commands_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gruntwork-io/fpack/cli/commands"
	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/options"
	"github.com/gruntwork-io/fpack/spec"
)

func TestPrinter(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	gav := coords.MustParseGav("org.test:fp1:1.0.0")

	p := commands.NewPrinter(&out)
	p.FeaturePack(gav, []string{"p1", "p2"})
	p.Config(spec.ConfigID{Model: "m", Name: "n"}, map[string]string{"y": "2", "x": "1"})
	p.Feature(1, spec.ResolvedSpecID{Gav: gav, Name: "specA"}, []spec.Param{{Name: "name", Value: "a"}}, true, false)
	p.Feature(1, spec.ResolvedSpecID{Gav: gav, Name: "specB"}, nil, false, true)
	require.NoError(t, p.Err())

	expected := `feature-pack org.test:fp1:1.0.0
  package p1
  package p2
config m/n
  set x=1
  set y=2
  begin-batch
  org.test:fp1:1.0.0#specA name=a
  org.test:fp1:1.0.0#specB
  end-batch
`
	assert.Equal(t, expected, out.String())
}

func TestPrinterForOptionsIsPlainOffTerminal(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	opts := options.NewProvisioningOptionsForTest(t.TempDir())
	opts.Writer = &out

	commands.NewPrinterForOptions(opts).Config(spec.ConfigID{Name: "main"}, nil)
	assert.Equal(t, "config main\n", out.String())
}

func TestNewResolver(t *testing.T) {
	t.Parallel()

	opts := options.NewProvisioningOptionsForTest(t.TempDir())

	resolver, err := commands.NewResolver(opts)
	require.NoError(t, err)
	assert.Len(t, resolver, 1)

	opts.RemoteRepoURL = "https://repo.example.com/maven2"

	resolver, err = commands.NewResolver(opts)
	require.NoError(t, err)
	assert.Len(t, resolver, 2)
}
