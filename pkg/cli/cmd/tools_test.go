package cmd_test

import (
	"bytes"
	"testing"

	"github.com/devrig-sh/devrig/pkg/cli/cmd"
	"github.com/devrig-sh/devrig/pkg/cli/helpers"
	runtime "github.com/devrig-sh/devrig/pkg/di"
	"github.com/devrig-sh/devrig/pkg/tool"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newToolsCommand(args ...string) (*cobra.Command, *bytes.Buffer) {
	toolsCmd := cmd.NewToolsCmd(runtime.NewRuntime())

	out := &bytes.Buffer{}
	toolsCmd.SetOut(out)
	toolsCmd.SetErr(out)

	for _, sub := range toolsCmd.Commands() {
		sub.Flags().String(helpers.ConfigFlagName, "", "")
	}

	toolsCmd.SetArgs(args)

	return toolsCmd, out
}

func TestToolsParentShowsHelp(t *testing.T) {
	t.Parallel()

	toolsCmd, out := newToolsCommand()

	require.NoError(t, toolsCmd.Execute())

	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "list")
	assert.Contains(t, out.String(), "show")
}

func TestToolsListShowsCatalog(t *testing.T) {
	t.Parallel()

	configPath := writeConfigFile(t, aptConfigYAML)

	toolsCmd, out := newToolsCommand("list", "--config", configPath)

	require.NoError(t, toolsCmd.Execute())

	assert.Contains(t, out.String(), "Tools for apt...")

	for _, name := range []string{"docker", "kubernetes", "jenkins", "ansible", "terraform"} {
		assert.Contains(t, out.String(), name)
	}
}

func TestToolsShowRendersDescriptor(t *testing.T) {
	t.Parallel()

	configPath := writeConfigFile(t, aptConfigYAML)

	toolsCmd, out := newToolsCommand("show", "docker", "--config", configPath)

	require.NoError(t, toolsCmd.Execute())

	assert.Contains(t, out.String(), "name: docker")
	assert.Contains(t, out.String(), "platform: apt")
	assert.Contains(t, out.String(), "hasStart: true")
	assert.Contains(t, out.String(), "maxAttempts: 30")
	assert.Contains(t, out.String(), "interval: 2s")
}

func TestToolsShowIncludesPrerequisites(t *testing.T) {
	t.Parallel()

	configPath := writeConfigFile(t, aptConfigYAML)

	toolsCmd, out := newToolsCommand("show", "kubernetes", "--config", configPath)

	require.NoError(t, toolsCmd.Execute())

	assert.Contains(t, out.String(), "prerequisites:")
	assert.Contains(t, out.String(), "- docker")
}

func TestToolsShowUnknownTool(t *testing.T) {
	t.Parallel()

	configPath := writeConfigFile(t, aptConfigYAML)

	toolsCmd, _ := newToolsCommand("show", "bogus", "--config", configPath)

	err := toolsCmd.Execute()

	require.Error(t, err)
	require.ErrorIs(t, err, tool.ErrToolUnknown)
	assert.Contains(t, err.Error(), "failed to read tool")
}
