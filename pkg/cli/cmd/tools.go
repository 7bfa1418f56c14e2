package cmd

import (
	"fmt"

	v1alpha1 "github.com/devrig-sh/devrig/pkg/apis/rig/v1alpha1"
	"github.com/devrig-sh/devrig/pkg/cli/lifecycle"
	runtime "github.com/devrig-sh/devrig/pkg/di"
	"github.com/devrig-sh/devrig/pkg/io/configmanager"
	"github.com/spf13/cobra"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"
)

// NewToolsCmd creates the parent tools command and wires catalog subcommands beneath it.
func NewToolsCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect the provisioning catalog",
		Long: `Inspect the tools devrig can provision on the active platform, including ` +
			`prerequisites, readiness policies, and follow-up guidance.`,
		Args:         cobra.NoArgs,
		RunE:         handleToolsRunE,
		SilenceUsage: true,
	}

	cmd.AddCommand(newToolsListCmd(runtimeContainer))
	cmd.AddCommand(newToolsShowCmd(runtimeContainer))

	return cmd
}

//nolint:gochecknoglobals // Injected for testability to simulate help failures.
var helpRunner = func(cmd *cobra.Command) error {
	return cmd.Help()
}

func handleToolsRunE(cmd *cobra.Command, _ []string) error {
	// Cobra Help() can return an error (e.g., output stream or template issues); wrap it for clarity.
	err := helpRunner(cmd)
	if err != nil {
		return fmt.Errorf("displaying tools command help: %w", err)
	}

	return nil
}

func newToolsListCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List tools available on the active platform",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cfgManager := configmanager.NewCommandConfigManager(cmd)
	cmd.RunE = lifecycle.WrapHandler(runtimeContainer, cfgManager, handleToolsListRunE)

	return cmd
}

func handleToolsListRunE(
	cmd *cobra.Command,
	_ []string,
	cfgManager *configmanager.ConfigManager,
	_ lifecycle.Deps,
) error {
	registry, err := lifecycle.BuildRegistry(cfgManager.Config)
	if err != nil {
		return err
	}

	lifecycle.ShowTitle(cmd, "🧰", fmt.Sprintf("Tools for %s...", registry.Platform()))

	out := cmd.OutOrStdout()

	for _, name := range registry.Names() {
		descriptor, getErr := registry.Get(name)
		if getErr != nil {
			return fmt.Errorf("failed to read tool %q: %w", name, getErr)
		}

		_, _ = fmt.Fprintf(out, "  %-12s %s\n", descriptor.Name, descriptor.Summary)
	}

	return nil
}

func newToolsShowCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "show <tool>",
		Short:        "Show one tool's provisioning recipe",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
	}

	cfgManager := configmanager.NewCommandConfigManager(cmd)
	cmd.RunE = lifecycle.WrapHandler(runtimeContainer, cfgManager, handleToolsShowRunE)

	return cmd
}

// descriptorView is the YAML projection of a descriptor. Probe and action
// closures have no useful serialization, so the view carries their shape
// (has a start step, readiness policy) rather than their implementation.
type descriptorView struct {
	Name          string            `json:"name"`
	Platform      v1alpha1.Platform `json:"platform"`
	Summary       string            `json:"summary,omitempty"`
	Prerequisites []string          `json:"prerequisites,omitempty"`
	HasStart      bool              `json:"hasStart"`
	Readiness     *readinessView    `json:"readiness,omitempty"`
	Guidance      string            `json:"guidance,omitempty"`
}

type readinessView struct {
	Interval    metav1.Duration `json:"interval"`
	MaxAttempts int             `json:"maxAttempts"`
}

func handleToolsShowRunE(
	cmd *cobra.Command,
	args []string,
	cfgManager *configmanager.ConfigManager,
	_ lifecycle.Deps,
) error {
	registry, err := lifecycle.BuildRegistry(cfgManager.Config)
	if err != nil {
		return err
	}

	descriptor, err := registry.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to read tool %q: %w", args[0], err)
	}

	view := descriptorView{
		Name:          descriptor.Name,
		Platform:      descriptor.Platform,
		Summary:       descriptor.Summary,
		Prerequisites: descriptor.Prerequisites,
		HasStart:      descriptor.HasStart(),
		Guidance:      descriptor.Guidance,
	}

	if descriptor.HasReadiness() {
		view.Readiness = &readinessView{
			Interval:    metav1.Duration{Duration: descriptor.Readiness.Policy.Interval},
			MaxAttempts: descriptor.Readiness.Policy.MaxAttempts,
		}
	}

	rendered, err := yaml.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to render tool %q: %w", args[0], err)
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), string(rendered))

	return nil
}
