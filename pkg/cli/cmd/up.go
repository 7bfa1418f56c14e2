package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	v1alpha1 "github.com/devrig-sh/devrig/pkg/apis/rig/v1alpha1"
	"github.com/devrig-sh/devrig/pkg/cli/helpers"
	"github.com/devrig-sh/devrig/pkg/cli/lifecycle"
	runtime "github.com/devrig-sh/devrig/pkg/di"
	"github.com/devrig-sh/devrig/pkg/io/configmanager"
	"github.com/devrig-sh/devrig/pkg/notify"
	"github.com/devrig-sh/devrig/pkg/svc/journal"
	"github.com/devrig-sh/devrig/pkg/svc/orchestrator"
	"github.com/devrig-sh/devrig/pkg/telemetry"
	"github.com/mitchellh/go-wordwrap"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/term"
)

// ErrProvisioningFailed is returned when at least one tool ends its run
// fatally. Warm-up timeouts are warnings and do not trigger it.
var ErrProvisioningFailed = errors.New("provisioning failed")

const (
	fallbackNoteWidth = 76
	minimumTermWidth  = 40
)

// NewUpCmd creates and returns the up command.
//
// Up converges the requested tools toward installed, running, and responsive.
// Every action is guarded by a probe, so re-running against a healthy machine
// performs no work.
func NewUpCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up [tool...]",
		Short: "Provision tools until installed, running, and responsive",
		Long: `Provision developer-infrastructure tools on this machine.

Without arguments the tools listed in devrig.yaml are provisioned, in order,
with prerequisites resolved first. Naming tools provisions only those and
their prerequisites.

A tool that installs and starts but does not answer its readiness probe in
time is reported as a warning, not a failure; the exit code is zero unless a
tool fails fatally.`,
		SilenceUsage: true,
	}

	cfgManager := configmanager.NewCommandConfigManager(cmd)
	cmd.RunE = lifecycle.WrapHandler(runtimeContainer, cfgManager, handleUpRunE)

	return cmd
}

func handleUpRunE(
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

	if deps.Timer != nil {
		deps.Timer.NewStage()
	}

	lifecycle.ShowTitle(cmd, "🔧", "Provision tools...")

	observers, cleanup := assembleObservers(cmd, cfg)
	defer cleanup()

	provisioner := deps.Factory.Create(registry, observers...)

	reports, err := provisioner.Provision(cmd.Context(), lifecycle.ResolveTools(args, cfg)...)

	renderReports(cmd, reports)

	if err != nil {
		return fmt.Errorf("provisioning interrupted: %w", err)
	}

	failed := 0

	for _, report := range reports {
		if report.Result == orchestrator.Fatal {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w for %d of %d tools", ErrProvisioningFailed, failed, len(reports))
	}

	notify.SuccessWithTimerf(
		cmd.OutOrStdout(),
		helpers.MaybeTimer(cmd, deps.Timer),
		"provisioning complete",
	)

	return nil
}

// assembleObservers builds the observer chain for a provisioning run and a
// cleanup function that releases any resources the observers hold.
func assembleObservers(
	cmd *cobra.Command,
	cfg *v1alpha1.Rig,
) ([]orchestrator.Observer, func()) {
	observers := []orchestrator.Observer{newRunRenderer(cmd)}
	cleanup := func() {}

	if cfg.Spec.History.Enabled {
		store, err := journal.Open(cmd.Context(), cfg.Spec.History.Path, cfg.Spec.History.Keep)
		if err != nil {
			// History is an audit trail, never an input; a broken journal
			// must not block provisioning.
			notify.Warningf(cmd.ErrOrStderr(), "run history unavailable: %v", err)
		} else {
			observers = append(observers, journal.NewWriter(store))
			cleanup = func() {
				closeErr := store.Close()
				if closeErr != nil {
					logrus.WithError(closeErr).Debug("failed to close run journal")
				}
			}
		}
	}

	if cfg.Spec.Trace {
		observers = append(observers, telemetry.NewTracer(otel.Tracer("devrig")))
	}

	return observers, cleanup
}

// runRenderer streams run progress to the command's output as it happens.
type runRenderer struct {
	cmd *cobra.Command
}

var _ orchestrator.Observer = (*runRenderer)(nil)

func newRunRenderer(cmd *cobra.Command) *runRenderer {
	return &runRenderer{cmd: cmd}
}

// RunStarted announces the tool before any step runs.
func (r *runRenderer) RunStarted(run orchestrator.RunInfo) {
	notify.Activityf(r.cmd.OutOrStdout(), "provisioning %s", run.Tool)
}

// StepCompleted logs step outcomes at debug level; the per-run summary is
// rendered once the whole session finishes.
func (r *runRenderer) StepCompleted(run orchestrator.RunInfo, step orchestrator.Step) {
	logrus.WithFields(logrus.Fields{
		"tool":     run.Tool,
		"step":     string(step.Name),
		"status":   string(step.Status),
		"attempts": step.Attempts,
		"duration": step.Duration,
	}).Debug("step completed")
}

// RunCompleted is a no-op; final results are rendered from the report list so
// ordering stays stable.
func (r *runRenderer) RunCompleted(orchestrator.Report) {}

// renderReports prints one line per tool plus any follow-up notes.
func renderReports(cmd *cobra.Command, reports []*orchestrator.Report) {
	out := cmd.OutOrStdout()

	for _, report := range reports {
		switch report.Result {
		case orchestrator.Success:
			notify.Successf(
				out,
				"%s ready in %s",
				report.Tool,
				report.Duration.Round(time.Millisecond),
			)
		case orchestrator.PartialFailure:
			notify.Warningf(out, "%s: %v", report.Tool, report.Err)
		case orchestrator.Fatal:
			notify.Errorf(out, "%s failed: %v", report.Tool, report.Err)
		}

		for _, note := range report.Notes {
			notify.Infof(out, "%s", wrapNote(note))
		}
	}
}

// wrapNote wraps guidance text to the terminal width so multi-sentence
// follow-ups stay readable.
func wrapNote(text string) string {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < minimumTermWidth {
		width = fallbackNoteWidth
	} else {
		width -= 4
	}

	return wordwrap.WrapString(text, uint(width))
}
