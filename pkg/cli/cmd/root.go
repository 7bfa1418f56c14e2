package cmd

import (
	"fmt"

	"github.com/devrig-sh/devrig/pkg/cli/helpers"
	"github.com/devrig-sh/devrig/pkg/cli/ui/asciiart"
	"github.com/devrig-sh/devrig/pkg/cli/ui/errorhandler"
	runtime "github.com/devrig-sh/devrig/pkg/di"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command with version info and subcommands.
func NewRootCmd(version, commit, date string) *cobra.Command {
	runtimeContainer := runtime.NewRuntime()

	cmd := &cobra.Command{
		Use:          "devrig",
		Short:        "devrig provisions local developer infrastructure tools",
		Long: "devrig provisions local developer infrastructure tools such as Docker,\n" +
			"Kubernetes, Jenkins, Ansible, and Terraform. It converges each tool toward\n" +
			"installed, running, and responsive, and is safe to re-run at any time.",
		RunE:         handleRootRunE,
		SilenceUsage: true,
	}

	// Set version if available
	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	cmd.PersistentFlags().Bool(
		helpers.TimingFlagName,
		false,
		"Show per-activity timing output",
	)
	cmd.PersistentFlags().Bool(
		helpers.VerboseFlagName,
		false,
		"Enable debug logging",
	)
	cmd.PersistentFlags().String(
		helpers.ConfigFlagName,
		"",
		"Path to the devrig configuration file",
	)

	cmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		verbose, err := cmd.Flags().GetBool(helpers.VerboseFlagName)
		if err == nil && verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	}

	// Add all subcommands
	cmd.AddCommand(NewUpCmd(runtimeContainer))
	cmd.AddCommand(NewStatusCmd(runtimeContainer))
	cmd.AddCommand(NewToolsCmd(runtimeContainer))
	cmd.AddCommand(NewHistoryCmd(runtimeContainer))
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}

// Execute runs the provided root command and handles errors.
func Execute(cmd *cobra.Command) error {
	executor := errorhandler.NewExecutor()

	err := executor.Execute(cmd)
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

// --- internals ---

// handleRootRunE handles the root command.
func handleRootRunE(
	cmd *cobra.Command,
	_ []string,
) error {
	asciiart.PrintDevrigLogo(cmd.OutOrStdout())

	// The err can safely be ignored, as it can never fail at runtime.
	_ = cmd.Help()

	return nil
}
