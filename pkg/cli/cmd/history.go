package cmd

import (
	"fmt"
	"time"

	"github.com/devrig-sh/devrig/pkg/cli/lifecycle"
	"github.com/devrig-sh/devrig/pkg/cli/ui/confirm"
	runtime "github.com/devrig-sh/devrig/pkg/di"
	"github.com/devrig-sh/devrig/pkg/io/configmanager"
	"github.com/devrig-sh/devrig/pkg/notify"
	"github.com/devrig-sh/devrig/pkg/svc/journal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	historyLimitFlagName = "limit"
	historyForceFlagName = "force"
	defaultHistoryLimit  = 20
)

// NewHistoryCmd creates the parent history command and wires journal subcommands beneath it.
//
// The journal is an audit trail only; provisioning never reads it. The
// subcommands work even when recording is disabled, so past runs stay
// inspectable after history.enabled is switched off.
func NewHistoryCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "history",
		Short:        "Browse and prune the local run journal",
		Args:         cobra.NoArgs,
		RunE:         handleHistoryRunE,
		SilenceUsage: true,
	}

	cmd.AddCommand(newHistoryListCmd(runtimeContainer))
	cmd.AddCommand(newHistoryClearCmd(runtimeContainer))

	return cmd
}

func handleHistoryRunE(cmd *cobra.Command, _ []string) error {
	err := helpRunner(cmd)
	if err != nil {
		return fmt.Errorf("displaying history command help: %w", err)
	}

	return nil
}

func newHistoryListCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List recent provisioning runs, newest first",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.Flags().Int(historyLimitFlagName, defaultHistoryLimit, "Maximum number of runs to list")

	cfgManager := configmanager.NewCommandConfigManager(cmd)
	cmd.RunE = lifecycle.WrapHandler(runtimeContainer, cfgManager, handleHistoryListRunE)

	return cmd
}

func handleHistoryListRunE(
	cmd *cobra.Command,
	_ []string,
	cfgManager *configmanager.ConfigManager,
	_ lifecycle.Deps,
) error {
	limit, err := cmd.Flags().GetInt(historyLimitFlagName)
	if err != nil {
		return fmt.Errorf("failed to read %s flag: %w", historyLimitFlagName, err)
	}

	store, err := openJournal(cmd, cfgManager)
	if err != nil {
		return err
	}
	defer closeJournal(store)

	entries, err := store.List(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to list run history: %w", err)
	}

	out := cmd.OutOrStdout()

	if len(entries) == 0 {
		notify.Infof(out, "no recorded runs")

		return nil
	}

	for _, entry := range entries {
		_, _ = fmt.Fprintf(
			out,
			"%s  %-12s %-14s %8s  %s\n",
			entry.StartedAt.Local().Format(time.RFC3339),
			entry.Tool,
			entry.Result,
			entry.Duration.Round(time.Millisecond),
			entry.RunID,
		)
	}

	return nil
}

func newHistoryClearCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "clear",
		Short:        "Delete all recorded runs",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.Flags().Bool(historyForceFlagName, false, "Skip the confirmation prompt")

	cfgManager := configmanager.NewCommandConfigManager(cmd)
	cmd.RunE = lifecycle.WrapHandler(runtimeContainer, cfgManager, handleHistoryClearRunE)

	return cmd
}

func handleHistoryClearRunE(
	cmd *cobra.Command,
	_ []string,
	cfgManager *configmanager.ConfigManager,
	_ lifecycle.Deps,
) error {
	force, err := cmd.Flags().GetBool(historyForceFlagName)
	if err != nil {
		return fmt.Errorf("failed to read %s flag: %w", historyForceFlagName, err)
	}

	if !confirm.ShouldSkipPrompt(force) {
		confirm.ShowClearPreview(cmd.OutOrStdout(), journalPath(cfgManager))

		if !confirm.PromptForConfirmation(cmd.OutOrStdout()) {
			return fmt.Errorf("history clear: %w", confirm.ErrCancelled)
		}
	}

	store, err := openJournal(cmd, cfgManager)
	if err != nil {
		return err
	}
	defer closeJournal(store)

	removed, err := store.Clear(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to clear run history: %w", err)
	}

	notify.Successf(cmd.OutOrStdout(), "cleared %d recorded runs", removed)

	return nil
}

// journalPath resolves the path shown in the clear preview.
func journalPath(cfgManager *configmanager.ConfigManager) string {
	path := cfgManager.Config.Spec.History.Path
	if path == "" {
		path = journal.DefaultPath()
	}

	return path
}

func openJournal(cmd *cobra.Command, cfgManager *configmanager.ConfigManager) (*journal.Journal, error) {
	history := cfgManager.Config.Spec.History

	store, err := journal.Open(cmd.Context(), history.Path, history.Keep)
	if err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}

	return store, nil
}

func closeJournal(store *journal.Journal) {
	err := store.Close()
	if err != nil {
		logrus.WithError(err).Debug("failed to close run journal")
	}
}
