package lifecycle_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	v1alpha1 "github.com/devrig-sh/devrig/pkg/apis/rig/v1alpha1"
	"github.com/devrig-sh/devrig/pkg/cli/helpers"
	"github.com/devrig-sh/devrig/pkg/cli/lifecycle"
	runtime "github.com/devrig-sh/devrig/pkg/di"
	"github.com/devrig-sh/devrig/pkg/io/configmanager"
	"github.com/devrig-sh/devrig/pkg/notify"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfigYAML = `apiVersion: devrig.sh/v1alpha1
kind: Rig
spec:
  tools:
    - docker
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "devrig.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func newHandlerCommand() (*cobra.Command, *configmanager.ConfigManager) {
	cmd := &cobra.Command{Use: "up"}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.Flags().String(helpers.ConfigFlagName, "", "")

	cfgManager := configmanager.NewCommandConfigManager(cmd)

	return cmd, cfgManager
}

//nolint:paralleltest // t.Setenv and t.Chdir mutate process-wide state.
func TestWrapHandler_LoadsConfigAndResolvesDeps(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Chdir(tempDir)

	cmd, cfgManager := newHandlerCommand()

	var (
		gotDeps   lifecycle.Deps
		gotConfig *v1alpha1.Rig
	)

	cmd.RunE = lifecycle.WrapHandler(
		runtime.NewRuntime(),
		cfgManager,
		func(_ *cobra.Command, _ []string, manager *configmanager.ConfigManager, deps lifecycle.Deps) error {
			gotDeps = deps
			gotConfig = manager.Config

			return nil
		},
	)

	require.NoError(t, cmd.Execute())

	require.NotNil(t, gotConfig)
	assert.Equal(t, v1alpha1.DefaultTools(), gotConfig.Spec.Tools)
	assert.NotNil(t, gotDeps.Timer)
	assert.NotNil(t, gotDeps.Factory)
}

func TestWrapHandler_AppliesExplicitConfigFlag(t *testing.T) {
	t.Parallel()

	configPath := writeTempConfig(t, minimalConfigYAML)

	cmd, cfgManager := newHandlerCommand()

	var gotConfig *v1alpha1.Rig

	cmd.RunE = lifecycle.WrapHandler(
		runtime.NewRuntime(),
		cfgManager,
		func(_ *cobra.Command, _ []string, manager *configmanager.ConfigManager, _ lifecycle.Deps) error {
			gotConfig = manager.Config

			return nil
		},
	)
	cmd.SetArgs([]string{"--config", configPath})

	require.NoError(t, cmd.Execute())

	require.NotNil(t, gotConfig)
	assert.Equal(t, []string{"docker"}, gotConfig.Spec.Tools)
}

func TestWrapHandler_ForwardsPositionalArgs(t *testing.T) {
	t.Parallel()

	configPath := writeTempConfig(t, minimalConfigYAML)

	cmd, cfgManager := newHandlerCommand()

	var gotArgs []string

	cmd.RunE = lifecycle.WrapHandler(
		runtime.NewRuntime(),
		cfgManager,
		func(_ *cobra.Command, args []string, _ *configmanager.ConfigManager, _ lifecycle.Deps) error {
			gotArgs = args

			return nil
		},
	)
	cmd.SetArgs([]string{"--config", configPath, "docker", "jenkins"})

	require.NoError(t, cmd.Execute())

	assert.Equal(t, []string{"docker", "jenkins"}, gotArgs)
}

func TestWrapHandler_SeparatesTitleFromConfigStage(t *testing.T) {
	t.Parallel()

	configPath := writeTempConfig(t, minimalConfigYAML)

	out := &bytes.Buffer{}
	cmd := &cobra.Command{Use: "up"}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.Flags().String(helpers.ConfigFlagName, "", "")

	cfgManager := configmanager.NewCommandConfigManager(cmd)

	cmd.RunE = lifecycle.WrapHandler(
		runtime.NewRuntime(),
		cfgManager,
		func(cmd *cobra.Command, _ []string, _ *configmanager.ConfigManager, _ lifecycle.Deps) error {
			lifecycle.ShowTitle(cmd, "🔧", "Provision tools...")

			return nil
		},
	)
	cmd.SetArgs([]string{"--config", configPath})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "config loaded\n\n🔧")
}

func TestWrapHandler_ConfigLoadFailure(t *testing.T) {
	t.Parallel()

	cmd, cfgManager := newHandlerCommand()

	handlerCalled := false

	cmd.RunE = lifecycle.WrapHandler(
		runtime.NewRuntime(),
		cfgManager,
		func(_ *cobra.Command, _ []string, _ *configmanager.ConfigManager, _ lifecycle.Deps) error {
			handlerCalled = true

			return nil
		},
	)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load rig configuration")
	assert.False(t, handlerCalled)
}

func TestWrapHandler_PropagatesHandlerError(t *testing.T) {
	t.Parallel()

	configPath := writeTempConfig(t, minimalConfigYAML)

	cmd, cfgManager := newHandlerCommand()

	cmd.RunE = lifecycle.WrapHandler(
		runtime.NewRuntime(),
		cfgManager,
		func(_ *cobra.Command, _ []string, _ *configmanager.ConfigManager, _ lifecycle.Deps) error {
			return assert.AnError
		},
	)
	cmd.SetArgs([]string{"--config", configPath})

	err := cmd.Execute()

	require.ErrorIs(t, err, assert.AnError)
}

func TestBuildRegistry_ExplicitPlatform(t *testing.T) {
	t.Parallel()

	cfg := v1alpha1.NewRig()
	cfg.Spec.Platform = v1alpha1.PlatformDarwin

	registry, err := lifecycle.BuildRegistry(cfg)

	require.NoError(t, err)
	assert.Equal(t, v1alpha1.PlatformDarwin, registry.Platform())
	assert.Contains(t, registry.Names(), "docker")
}

func TestBuildRegistry_ManifestOverlay(t *testing.T) {
	t.Parallel()

	manifestPath := filepath.Join(t.TempDir(), "tools.yaml")
	manifestYAML := `tools:
  - name: localstack
    summary: LocalStack cloud emulator
    install:
      probe: [localstack, --version]
      action: [pip, install, localstack]
`
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifestYAML), 0o600))

	cfg := v1alpha1.NewRig()
	cfg.Spec.Platform = v1alpha1.PlatformApt
	cfg.Spec.Manifest = manifestPath

	registry, err := lifecycle.BuildRegistry(cfg)

	require.NoError(t, err)
	assert.Contains(t, registry.Names(), "localstack")
}

func TestBuildRegistry_ManifestMissing(t *testing.T) {
	t.Parallel()

	cfg := v1alpha1.NewRig()
	cfg.Spec.Platform = v1alpha1.PlatformApt
	cfg.Spec.Manifest = filepath.Join(t.TempDir(), "missing-tools.yaml")

	_, err := lifecycle.BuildRegistry(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load tool manifest")
}

func TestResolveTools(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "arguments take precedence",
			args: []string{"docker", "jenkins"},
			want: []string{"docker", "jenkins"},
		},
		{
			name: "falls back to configured tools",
			args: nil,
			want: v1alpha1.DefaultTools(),
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			cfg := v1alpha1.NewRig()

			assert.Equal(t, testCase.want, lifecycle.ResolveTools(testCase.args, cfg))
		})
	}
}

func TestShowTitle(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cmd := &cobra.Command{Use: "up"}
	cmd.SetOut(out)

	lifecycle.ShowTitle(cmd, "🔧", "Provision tools...")

	output := out.String()
	assert.Contains(t, output, "🔧")
	assert.Contains(t, output, "Provision tools...")
}

func TestShowTitle_SeparatedFromEarlierStages(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cmd := &cobra.Command{Use: "up"}
	cmd.SetOut(notify.NewStageSeparatingWriter(out))

	_, err := fmt.Fprintln(cmd.OutOrStdout(), "✔ config loaded")
	require.NoError(t, err)

	lifecycle.ShowTitle(cmd, "🔧", "Provision tools...")

	assert.Contains(t, out.String(), "✔ config loaded\n\n🔧")
}
