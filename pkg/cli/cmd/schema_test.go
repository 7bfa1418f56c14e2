package cmd_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/devrig-sh/devrig/pkg/cli/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaOutputsValidJSON(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	schemaCmd := cmd.NewSchemaCmd()
	schemaCmd.SetOut(&out)

	require.NoError(t, schemaCmd.Execute())

	var decoded map[string]any

	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "devrig Configuration", decoded["title"])
	assert.Equal(t, []any{"spec"}, decoded["required"])
}

func TestSchemaPinsAPIMetadata(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	schemaCmd := cmd.NewSchemaCmd()
	schemaCmd.SetOut(&out)

	require.NoError(t, schemaCmd.Execute())

	output := out.String()
	assert.Contains(t, output, `"devrig.sh/v1alpha1"`)
	assert.Contains(t, output, `"Rig"`)
}

func TestSchemaEnumeratesPlatforms(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	schemaCmd := cmd.NewSchemaCmd()
	schemaCmd.SetOut(&out)

	require.NoError(t, schemaCmd.Execute())

	output := out.String()

	for _, platform := range []string{"darwin", "apt", "dnf", "windows", "wsl"} {
		assert.Contains(t, output, `"`+platform+`"`)
	}
}

func TestSchemaRendersDurationsAsStrings(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	schemaCmd := cmd.NewSchemaCmd()
	schemaCmd.SetOut(&out)

	require.NoError(t, schemaCmd.Execute())

	assert.Contains(t, out.String(), "ms|s|m|h")
}
