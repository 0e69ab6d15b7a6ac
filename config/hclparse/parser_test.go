package hclparse_test

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/gruntwork-io/fpack/config/hclparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type descriptor struct {
	Name string `hcl:"name"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "package.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`name = "p1"`), 0o644))

	var diags bytes.Buffer

	file, err := hclparse.NewParser(hclparse.WithDiagnosticsWriter(&diags, true)).ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, file.ConfigPath)

	var decoded descriptor
	require.NoError(t, file.Decode(&decoded, nil))
	assert.Equal(t, "p1", decoded.Name)
	assert.Empty(t, diags.String())
}

func TestDiagnosticsAreWritten(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "syntax",
			content:  `name = `,
			expected: "Missing expression",
		},
		{
			name:     "schema",
			content:  `other = "x"`,
			expected: "Missing required argument",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var diags bytes.Buffer

			file, err := hclparse.NewParser(hclparse.WithDiagnosticsWriter(&diags, true)).Parse([]byte(tc.content), "spec.hcl")
			if err == nil {
				err = file.Decode(&descriptor{}, nil)
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expected)
			assert.Contains(t, diags.String(), tc.expected)
			assert.Contains(t, diags.String(), "spec.hcl")
		})
	}
}

func TestMissingDescriptor(t *testing.T) {
	t.Parallel()

	_, err := hclparse.NewParser().ParseFile(filepath.Join(t.TempDir(), "feature-pack.hcl"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
