package lifecycle

import (
	"fmt"

	v1alpha1 "github.com/devrig-sh/devrig/pkg/apis/rig/v1alpha1"
	"github.com/devrig-sh/devrig/pkg/cli/helpers"
	"github.com/devrig-sh/devrig/pkg/cli/ui/timer"
	runtime "github.com/devrig-sh/devrig/pkg/di"
	"github.com/devrig-sh/devrig/pkg/io/configmanager"
	"github.com/devrig-sh/devrig/pkg/notify"
	"github.com/devrig-sh/devrig/pkg/platform"
	"github.com/devrig-sh/devrig/pkg/poll"
	"github.com/devrig-sh/devrig/pkg/svc/orchestrator"
	"github.com/devrig-sh/devrig/pkg/tool"
	"github.com/spf13/cobra"
)

// Deps groups the injectable collaborators required by provisioning commands.
type Deps struct {
	Timer   timer.Timer
	Factory orchestrator.Factory
}

// WrapHandler resolves command dependencies from the runtime container and
// invokes the provided handler function with those dependencies.
//
// Command output is wrapped so stage titles get separated from the config
// loading output with a blank line. The rig configuration is loaded first so
// handlers always receive a manager with a validated, cached config. The
// provisioner factory comes from the injector, which lets tests swap in fakes
// via their own runtime modules. Positional arguments pass through untouched
// for commands that accept tool names.
func WrapHandler(
	runtimeContainer *runtime.Runtime,
	cfgManager *configmanager.ConfigManager,
	handler func(*cobra.Command, []string, *configmanager.ConfigManager, Deps) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		runE := runtime.RunEWithRuntime(
			runtimeContainer,
			runtime.WithTimer(
				func(cmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
					stageWriter := notify.NewStageSeparatingWriter(cmd.OutOrStdout())
					cmd.SetOut(stageWriter)
					cfgManager.Writer = stageWriter

					if tmr != nil {
						tmr.Start()
					}

					outputTimer := helpers.MaybeTimer(cmd, tmr)

					applyConfigFlag(cmd, cfgManager)

					_, err := cfgManager.LoadConfig(outputTimer)
					if err != nil {
						return fmt.Errorf("failed to load rig configuration: %w", err)
					}

					factory, err := runtime.ResolveProvisionerFactory(injector)
					if err != nil {
						return err
					}

					deps := Deps{Timer: tmr, Factory: factory}

					return handler(cmd, args, cfgManager, deps)
				},
			),
		)

		return runE(cmd, args)
	}
}

// applyConfigFlag forwards an explicit --config path to the manager. The flag
// lives on the root command, so it can be absent when a subcommand is
// exercised standalone in tests.
func applyConfigFlag(cmd *cobra.Command, cfgManager *configmanager.ConfigManager) {
	path, err := cmd.Flags().GetString(helpers.ConfigFlagName)
	if err == nil && path != "" {
		cfgManager.SetConfigFile(path)
	}
}

// BuildRegistry materializes the tool catalog for the configured platform.
// An empty platform in the spec auto-detects the host's platform family.
func BuildRegistry(cfg *v1alpha1.Rig) (*tool.Registry, error) {
	platformFamily := cfg.Spec.Platform
	if platformFamily == "" {
		detected, err := platform.Detect()
		if err != nil {
			return nil, fmt.Errorf("failed to detect platform: %w", err)
		}

		platformFamily = detected
	}

	opts := tool.Options{
		Poll: poll.Policy{
			MaxAttempts: cfg.Spec.Poll.MaxAttempts,
			Interval:    cfg.Spec.Poll.Interval.Duration,
		},
	}

	if cfg.Spec.Manifest != "" {
		manifest, err := tool.LoadManifest(cfg.Spec.Manifest)
		if err != nil {
			return nil, fmt.Errorf("failed to load tool manifest: %w", err)
		}

		opts.Manifest = manifest
	}

	registry, err := tool.Build(platformFamily, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build tool catalog: %w", err)
	}

	return registry, nil
}

// ResolveTools returns the tools to operate on, preferring explicit CLI
// arguments over the configured tool list.
func ResolveTools(args []string, cfg *v1alpha1.Rig) []string {
	if len(args) > 0 {
		return args
	}

	return cfg.Spec.Tools
}

// ShowTitle displays the title message for a provisioning command. Stage
// separation comes from the writer installed by WrapHandler.
func ShowTitle(cmd *cobra.Command, emoji, content string) {
	notify.WriteMessage(
		notify.Message{
			Type:    notify.TitleType,
			Content: content,
			Emoji:   emoji,
			Writer:  cmd.OutOrStdout(),
		},
	)
}
