package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/devrig-sh/devrig/pkg/cli/helpers"
	"github.com/devrig-sh/devrig/pkg/cli/lifecycle"
	runtime "github.com/devrig-sh/devrig/pkg/di"
	"github.com/devrig-sh/devrig/pkg/io/configmanager"
	"github.com/devrig-sh/devrig/pkg/notify"
	"github.com/devrig-sh/devrig/pkg/tool"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates and returns the status command.
//
// Status probes tool state without running any actions, so it is always safe
// to invoke. It exits zero regardless of what the probes find.
func NewStatusCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [tool...]",
		Short: "Probe tool state without changing anything",
		Long: `Probe the install, running, and readiness state of each tool.

Probes run in parallel and never mutate the machine. The readiness probe is
invoked once per tool rather than polled, so a slow-starting service may
report unresponsive here and still converge under 'devrig up'.`,
		SilenceUsage: true,
	}

	cfgManager := configmanager.NewCommandConfigManager(cmd)
	cmd.RunE = lifecycle.WrapHandler(runtimeContainer, cfgManager, handleStatusRunE)

	return cmd
}

// toolStatus is one tool's probe sweep outcome.
type toolStatus struct {
	name      string
	installed bool
	hasStart  bool
	running   bool
	hasReady  bool
	ready     bool
	err       error
}

func handleStatusRunE(
	cmd *cobra.Command,
	args []string,
	cfgManager *configmanager.ConfigManager,
	deps lifecycle.Deps,
) error {
	cfg := cfgManager.Config

	registry, err := lifecycle.BuildRegistry(cfg)
	if err != nil {
		return err
	}

	names := lifecycle.ResolveTools(args, cfg)
	statuses := make([]toolStatus, len(names))
	tasks := make([]notify.ProgressTask, 0, len(names))

	for idx, name := range names {
		// Each task owns exactly one slot, so the sweep needs no locking.
		slot := &statuses[idx]
		slot.name = name

		tasks = append(tasks, notify.ProgressTask{
			Name: name,
			Fn: func(ctx context.Context) error {
				probeTool(ctx, registry, slot)

				return nil
			},
		})
	}

	out := cmd.OutOrStdout()

	group := notify.NewProgressGroup(
		"Check tool status...",
		"🔍",
		out,
		notify.WithLabels(notify.ProbingLabels()),
		notify.WithTimer(helpers.MaybeTimer(cmd, deps.Timer)),
	)

	err = group.Run(cmd.Context(), tasks...)
	if err != nil {
		return fmt.Errorf("status sweep interrupted: %w", err)
	}

	renderStatuses(cmd, statuses)

	return nil
}

// probeTool fills status from a single pass over the tool's probes. A tool
// missing from the catalog records the lookup error instead.
func probeTool(ctx context.Context, catalog *tool.Registry, status *toolStatus) {
	descriptor, err := catalog.Get(status.name)
	if err != nil {
		status.err = err

		return
	}

	status.installed = descriptor.Install.Probe(ctx)

	if descriptor.HasStart() {
		status.hasStart = true
		status.running = descriptor.Start.Probe(ctx)
	}

	if descriptor.HasReadiness() {
		status.hasReady = true
		status.ready = descriptor.Readiness.Probe(ctx)
	}
}

// renderStatuses prints one line per tool after the sweep completes.
func renderStatuses(cmd *cobra.Command, statuses []toolStatus) {
	out := cmd.OutOrStdout()

	for idx := range statuses {
		status := &statuses[idx]

		if status.err != nil {
			notify.Errorf(out, "%s: %v", status.name, status.err)

			continue
		}

		if !status.installed {
			notify.Warningf(out, "%s: not installed", status.name)

			continue
		}

		parts := []string{"installed"}
		degraded := false

		if status.hasStart {
			if status.running {
				parts = append(parts, "running")
			} else {
				parts = append(parts, "stopped")
				degraded = true
			}
		}

		if status.hasReady {
			if status.ready {
				parts = append(parts, "responsive")
			} else {
				parts = append(parts, "unresponsive")
				degraded = true
			}
		}

		line := status.name + ": " + strings.Join(parts, ", ")

		if degraded {
			notify.Warningf(out, "%s", line)
		} else {
			notify.Successf(out, "%s", line)
		}
	}
}
