// Package orchestrator drives the idempotent provisioning state machine.
//
// For each tool descriptor the machine walks Start → CheckPrerequisites →
// CheckInstalled → Installing → CheckRunning → Starting → PollingReady →
// Done. Every decision is re-derived from live probes: an action runs only
// when its guarding probe reports the condition unmet, so converging an
// already-healthy tool invokes no actions at all.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	v1alpha1 "github.com/devrig-sh/devrig/pkg/apis/rig/v1alpha1"
	"github.com/devrig-sh/devrig/pkg/poll"
	"github.com/devrig-sh/devrig/pkg/tool"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Catalog serves read-only tool descriptors for one platform.
type Catalog interface {
	Get(name string) (*tool.Descriptor, error)
	Platform() v1alpha1.Platform
}

var _ Catalog = (*tool.Registry)(nil)

// Orchestrator converges tools against their descriptors and reports the
// outcome of every run to its observers.
type Orchestrator struct {
	catalog   Catalog
	observers []Observer
}

// New constructs an Orchestrator over the given catalog.
func New(catalog Catalog, observers ...Observer) *Orchestrator {
	return &Orchestrator{catalog: catalog, observers: observers}
}

// Provision converges the named tools sequentially, prerequisites first,
// and returns one report per descriptor visited in completion order.
//
// Tool-level failures never surface as an error: they are captured in the
// reports, and ExitCode maps them to the process exit status. The returned
// error is non-nil only when the context is cancelled, in which case the
// reports accumulated so far, including the interrupted run's, are still
// returned for rendering.
func (o *Orchestrator) Provision(ctx context.Context, names ...string) ([]*Report, error) {
	session := &session{
		orchestrator: o,
		results:      make(map[string]*Report),
	}

	for _, name := range names {
		_, err := session.ensure(ctx, name)
		if err != nil {
			return session.reports, err
		}
	}

	return session.reports, nil
}

// session memoizes results for one Provision invocation so a descriptor
// shared by several dependents (diamond prerequisites) is converged once
// and its result reused.
type session struct {
	orchestrator *Orchestrator
	results      map[string]*Report
	reports      []*Report
}

func (s *session) ensure(ctx context.Context, name string) (*Report, error) {
	if report, ok := s.results[name]; ok {
		return report, nil
	}

	descriptor, err := s.orchestrator.catalog.Get(name)
	if err != nil {
		report := &Report{
			RunID:     uuid.NewString(),
			Tool:      name,
			Platform:  s.orchestrator.catalog.Platform(),
			StartedAt: time.Now(),
			Result:    Fatal,
			Err:       err,
		}

		s.orchestrator.publishRunStarted(report.runInfo())
		s.finish(report)

		return report, nil
	}

	return s.run(ctx, descriptor)
}

func (s *session) run(ctx context.Context, descriptor *tool.Descriptor) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		Tool:      descriptor.Name,
		Platform:  descriptor.Platform,
		StartedAt: time.Now(),
	}

	logrus.WithFields(logrus.Fields{
		"tool": descriptor.Name,
		"run":  report.RunID,
	}).Debug("provisioning run started")

	s.orchestrator.publishRunStarted(report.runInfo())

	err := s.converge(ctx, descriptor, report)
	if err != nil {
		report.Result = Fatal
		report.Err = fmt.Errorf("provisioning interrupted: %w", err)
	}

	s.finish(report)

	return report, err
}

// finish stamps the duration, memoizes the result, and hands the completed
// report to observers.
func (s *session) finish(report *Report) {
	report.Duration = time.Since(report.StartedAt)
	s.results[report.Tool] = report
	s.reports = append(s.reports, report)
	s.orchestrator.publishRunCompleted(*report)
}

// converge walks the state machine. Terminal outcomes are written onto the
// report; the returned error is reserved for context cancellation.
func (s *session) converge(ctx context.Context, descriptor *tool.Descriptor, report *Report) error {
	err := s.checkPrerequisites(ctx, descriptor, report)
	if err != nil || report.terminal() {
		return err
	}

	err = s.ensureInstalled(ctx, descriptor, report)
	if err != nil || report.terminal() {
		return err
	}

	err = s.ensureStarted(ctx, descriptor, report)
	if err != nil || report.terminal() {
		return err
	}

	return s.awaitReadiness(ctx, descriptor, report)
}

// checkPrerequisites converges each prerequisite depth-first in declaration
// order. Only a Fatal prerequisite aborts the dependent; a PartialFailure
// means the dependency is installed and started, which is all a dependent
// needs.
func (s *session) checkPrerequisites(
	ctx context.Context,
	descriptor *tool.Descriptor,
	report *Report,
) error {
	for _, name := range descriptor.Prerequisites {
		prerequisite, err := s.ensure(ctx, name)
		if err != nil {
			return err
		}

		if prerequisite.Result == Fatal {
			s.fail(report,
				Step{
					Name:   StepPrerequisites,
					Status: Failed,
					Reason: fmt.Sprintf("prerequisite %q failed", name),
				},
				time.Now(),
				fmt.Errorf("%w: %s needs %s", ErrPrerequisiteFailed, descriptor.Name, name),
			)

			return nil
		}
	}

	return nil
}

// ensureInstalled runs the install stage: probe, action when unmet, then
// the probe again to confirm the action took effect.
func (s *session) ensureInstalled(
	ctx context.Context,
	descriptor *tool.Descriptor,
	report *Report,
) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	begin := time.Now()

	if descriptor.Install.Probe(ctx) {
		logrus.WithField("tool", descriptor.Name).Debug("already installed")
		s.step(report, Step{Name: StepInstall, Status: AlreadySatisfied}, begin)

		return nil
	}

	err = descriptor.Install.Action(ctx)
	if err != nil {
		s.fail(report,
			Step{
				Name:   StepInstall,
				Status: Failed,
				Reason: fmt.Sprintf("install failed: %v", err),
			},
			begin,
			fmt.Errorf("%w: installing %s: %w", ErrActionFailed, descriptor.Name, err),
		)

		return nil
	}

	if !descriptor.Install.Probe(ctx) {
		s.fail(report,
			Step{
				Name:   StepInstall,
				Status: Failed,
				Reason: "install did not take effect",
			},
			begin,
			fmt.Errorf("%w: %s install", ErrVerificationFailed, descriptor.Name),
		)

		return nil
	}

	s.step(report, Step{Name: StepInstall, Status: Succeeded}, begin)

	return nil
}

// ensureStarted runs the start stage for descriptors that have one. The
// start action is trusted on success; responsiveness is the readiness
// poll's job, not a second probe here.
func (s *session) ensureStarted(
	ctx context.Context,
	descriptor *tool.Descriptor,
	report *Report,
) error {
	if !descriptor.HasStart() {
		return nil
	}

	err := ctx.Err()
	if err != nil {
		return err
	}

	begin := time.Now()

	if descriptor.Start.Probe(ctx) {
		logrus.WithField("tool", descriptor.Name).Debug("already running")
		s.step(report, Step{Name: StepStart, Status: AlreadySatisfied}, begin)

		return nil
	}

	err = descriptor.Start.Action(ctx)
	if err != nil {
		s.fail(report,
			Step{
				Name:   StepStart,
				Status: Failed,
				Reason: fmt.Sprintf("start failed: %v", err),
			},
			begin,
			fmt.Errorf("%w: starting %s: %w", ErrActionFailed, descriptor.Name, err),
		)

		return nil
	}

	s.step(report, Step{Name: StepStart, Status: Succeeded}, begin)

	return nil
}

// awaitReadiness polls the readiness probe under the descriptor's policy.
// A timeout is a PartialFailure: the tool is installed and started, and
// first-run initialization may legitimately exceed the budget.
func (s *session) awaitReadiness(
	ctx context.Context,
	descriptor *tool.Descriptor,
	report *Report,
) error {
	if !descriptor.HasReadiness() {
		report.Result = Success
		s.appendGuidance(report, descriptor)

		return nil
	}

	begin := time.Now()

	result, err := poll.Wait(ctx, descriptor.Readiness.Probe, descriptor.Readiness.Policy)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}

		s.fail(report,
			Step{Name: StepReadiness, Status: Failed, Reason: err.Error()},
			begin,
			err,
		)

		return nil
	}

	if result.Outcome == poll.Ready {
		s.step(report,
			Step{Name: StepReadiness, Status: Succeeded, Attempts: result.Attempts},
			begin,
		)
		report.Result = Success
		s.appendGuidance(report, descriptor)

		return nil
	}

	s.step(report,
		Step{
			Name:     StepReadiness,
			Status:   Failed,
			Reason:   fmt.Sprintf("not responsive after %d attempts", result.Attempts),
			Attempts: result.Attempts,
		},
		begin,
	)

	report.Result = PartialFailure
	report.Err = fmt.Errorf(
		"%w: %s after %d attempts", ErrReadinessTimeout, descriptor.Name, result.Attempts,
	)
	report.Notes = append(report.Notes,
		"readiness was not confirmed; first-run initialization can exceed the poll budget, "+
			"so give it a moment and re-run to check again",
	)
	s.appendGuidance(report, descriptor)

	return nil
}

func (s *session) appendGuidance(report *Report, descriptor *tool.Descriptor) {
	if descriptor.Guidance != "" {
		report.Notes = append(report.Notes, descriptor.Guidance)
	}
}

// step records a completed transition and publishes it.
func (s *session) step(report *Report, step Step, begin time.Time) {
	step.Duration = time.Since(begin)
	report.Steps = append(report.Steps, step)
	s.orchestrator.publishStepCompleted(report.runInfo(), step)
}

// fail records a failed transition and marks the run Fatal.
func (s *session) fail(report *Report, step Step, begin time.Time, err error) {
	s.step(report, step, begin)
	report.Result = Fatal
	report.Err = err
}
