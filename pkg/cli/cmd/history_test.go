package cmd_test

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devrig-sh/devrig/pkg/cli/cmd"
	"github.com/devrig-sh/devrig/pkg/cli/helpers"
	"github.com/devrig-sh/devrig/pkg/cli/ui/confirm"
	runtime "github.com/devrig-sh/devrig/pkg/di"
	"github.com/devrig-sh/devrig/pkg/svc/journal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedJournal(t *testing.T, entries ...journal.Entry) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "history.db")

	store, err := journal.Open(context.Background(), path, 100)
	require.NoError(t, err)

	for _, entry := range entries {
		require.NoError(t, store.Append(context.Background(), entry))
	}

	require.NoError(t, store.Close())

	return path
}

func historyConfigYAML(journalPath string) string {
	// Listing and clearing work even with recording disabled; enabled only
	// gates whether up appends new runs.
	return fmt.Sprintf(`apiVersion: devrig.sh/v1alpha1
kind: Rig
spec:
  platform: apt
  history:
    enabled: false
    path: "%s"
`, journalPath)
}

func newHistoryCommand(args ...string) (*cobra.Command, *bytes.Buffer) {
	historyCmd := cmd.NewHistoryCmd(runtime.NewRuntime())

	out := &bytes.Buffer{}
	historyCmd.SetOut(out)
	historyCmd.SetErr(out)

	for _, sub := range historyCmd.Commands() {
		sub.Flags().String(helpers.ConfigFlagName, "", "")
	}

	historyCmd.SetArgs(args)

	return historyCmd, out
}

func historyEntry(tool, result string, startedAt time.Time) journal.Entry {
	return journal.Entry{
		RunID:     "run-" + tool,
		Tool:      tool,
		Platform:  "apt",
		Result:    result,
		Steps:     3,
		StartedAt: startedAt,
		Duration:  90 * time.Second,
	}
}

func TestHistoryListShowsRunsNewestFirst(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	journalPath := seedJournal(t,
		historyEntry("docker", "Success", base),
		historyEntry("jenkins", "PartialFailure", base.Add(time.Minute)),
	)

	configPath := writeConfigFile(t, historyConfigYAML(journalPath))

	historyCmd, out := newHistoryCommand("list", "--config", configPath)

	require.NoError(t, historyCmd.Execute())

	output := out.String()
	assert.Contains(t, output, "docker")
	assert.Contains(t, output, "Success")
	assert.Contains(t, output, "jenkins")
	assert.Contains(t, output, "PartialFailure")
	assert.Contains(t, output, "run-docker")

	jenkinsIdx := strings.Index(output, "jenkins")
	dockerIdx := strings.Index(output, "docker")
	require.GreaterOrEqual(t, jenkinsIdx, 0)
	require.GreaterOrEqual(t, dockerIdx, 0)
	assert.Less(t, jenkinsIdx, dockerIdx, "expected the most recent run to render first")
}

func TestHistoryListHonorsLimit(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	journalPath := seedJournal(t,
		historyEntry("docker", "Success", base),
		historyEntry("jenkins", "Success", base.Add(time.Minute)),
		historyEntry("terraform", "Success", base.Add(2*time.Minute)),
	)

	configPath := writeConfigFile(t, historyConfigYAML(journalPath))

	historyCmd, out := newHistoryCommand("list", "--limit", "1", "--config", configPath)

	require.NoError(t, historyCmd.Execute())

	assert.Contains(t, out.String(), "terraform")
	assert.NotContains(t, out.String(), "docker")
	assert.NotContains(t, out.String(), "jenkins")
}

func TestHistoryListEmptyJournal(t *testing.T) {
	t.Parallel()

	journalPath := filepath.Join(t.TempDir(), "history.db")
	configPath := writeConfigFile(t, historyConfigYAML(journalPath))

	historyCmd, out := newHistoryCommand("list", "--config", configPath)

	require.NoError(t, historyCmd.Execute())

	assert.Contains(t, out.String(), "no recorded runs")
}

func TestHistoryClearRemovesRuns(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	journalPath := seedJournal(t,
		historyEntry("docker", "Success", base),
		historyEntry("jenkins", "Fatal", base.Add(time.Minute)),
	)

	configPath := writeConfigFile(t, historyConfigYAML(journalPath))

	clearCmd, clearOut := newHistoryCommand("clear", "--force", "--config", configPath)
	require.NoError(t, clearCmd.Execute())
	assert.Contains(t, clearOut.String(), "cleared 2 recorded runs")

	listCmd, listOut := newHistoryCommand("list", "--config", configPath)
	require.NoError(t, listCmd.Execute())
	assert.Contains(t, listOut.String(), "no recorded runs")
}

func TestHistoryParentShowsHelp(t *testing.T) {
	t.Parallel()

	historyCmd, out := newHistoryCommand()

	require.NoError(t, historyCmd.Execute())

	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "list")
	assert.Contains(t, out.String(), "clear")
}

func countJournalRuns(t *testing.T, path string) int {
	t.Helper()

	store, err := journal.Open(context.Background(), path, 100)
	require.NoError(t, err)

	defer func() { require.NoError(t, store.Close()) }()

	entries, err := store.List(context.Background(), 0)
	require.NoError(t, err)

	return len(entries)
}

//nolint:paralleltest // Shares the confirm package's TTY and stdin overrides.
func TestHistoryClearPromptDeclined(t *testing.T) {
	restoreTTY := confirm.SetTTYCheckerForTests(func() bool { return true })
	defer restoreTTY()

	restoreStdin := confirm.SetStdinReaderForTests(strings.NewReader("no\n"))
	defer restoreStdin()

	journalPath := seedJournal(t,
		historyEntry("docker", "Success", time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)),
	)
	configPath := writeConfigFile(t, historyConfigYAML(journalPath))

	clearCmd, out := newHistoryCommand("clear", "--config", configPath)

	err := clearCmd.Execute()

	require.ErrorIs(t, err, confirm.ErrCancelled)
	assert.Contains(t, out.String(), "All recorded runs will be deleted from:")
	assert.Equal(t, 1, countJournalRuns(t, journalPath))
}

//nolint:paralleltest // Shares the confirm package's TTY and stdin overrides.
func TestHistoryClearPromptAccepted(t *testing.T) {
	restoreTTY := confirm.SetTTYCheckerForTests(func() bool { return true })
	defer restoreTTY()

	restoreStdin := confirm.SetStdinReaderForTests(strings.NewReader("yes\n"))
	defer restoreStdin()

	journalPath := seedJournal(t,
		historyEntry("docker", "Success", time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)),
	)
	configPath := writeConfigFile(t, historyConfigYAML(journalPath))

	clearCmd, out := newHistoryCommand("clear", "--config", configPath)

	require.NoError(t, clearCmd.Execute())

	assert.Contains(t, out.String(), "cleared 1 recorded runs")
	assert.Equal(t, 0, countJournalRuns(t, journalPath))
}

//nolint:paralleltest // Shares the confirm package's TTY override.
func TestHistoryClearForceSkipsPrompt(t *testing.T) {
	restoreTTY := confirm.SetTTYCheckerForTests(func() bool { return true })
	defer restoreTTY()

	journalPath := seedJournal(t,
		historyEntry("docker", "Success", time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)),
	)
	configPath := writeConfigFile(t, historyConfigYAML(journalPath))

	clearCmd, out := newHistoryCommand("clear", "--force", "--config", configPath)

	require.NoError(t, clearCmd.Execute())

	assert.NotContains(t, out.String(), `Type "yes" to confirm:`)
	assert.Contains(t, out.String(), "cleared 1 recorded runs")
}
