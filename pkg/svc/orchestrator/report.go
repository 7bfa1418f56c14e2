package orchestrator

import (
	"time"

	v1alpha1 "github.com/devrig-sh/devrig/pkg/apis/rig/v1alpha1"
)

// Result is the terminal outcome of one tool's provisioning run.
type Result string

const (
	// Success means the tool is installed, started where applicable, and
	// confirmed responsive.
	Success Result = "Success"
	// PartialFailure means the tool is installed and started but did not
	// confirm responsiveness within the poll budget. A warning, not an
	// error.
	PartialFailure Result = "PartialFailure"
	// Fatal means provisioning failed and dependents must not proceed.
	Fatal Result = "Fatal"
)

// StepName identifies one state-machine stage in a report.
type StepName string

const (
	// StepPrerequisites records a dependency that failed before this tool
	// could start. Recorded only on failure; successful prerequisites carry
	// their own reports.
	StepPrerequisites StepName = "prerequisites"
	// StepInstall records the install stage.
	StepInstall StepName = "install"
	// StepStart records the service start stage.
	StepStart StepName = "start"
	// StepReadiness records the readiness poll.
	StepReadiness StepName = "readiness"
)

// StepStatus classifies how a step ended.
type StepStatus string

const (
	// AlreadySatisfied means the guarding probe passed and the step's
	// action was skipped.
	AlreadySatisfied StepStatus = "AlreadySatisfied"
	// Succeeded means the step's action ran and its condition now holds.
	Succeeded StepStatus = "Succeeded"
	// Failed means the step could not establish its condition; Reason
	// carries the diagnostic.
	Failed StepStatus = "Failed"
)

// Step is the immutable record of one state transition.
type Step struct {
	Name   StepName
	Status StepStatus

	// Reason carries the diagnostic when Status is Failed.
	Reason string

	// Attempts is the number of probe invocations the readiness poll
	// consumed. Zero for other steps.
	Attempts int

	Duration time.Duration
}

// Report is the ordered record of one tool's provisioning run. It is
// rebuilt from live probes on every invocation; nothing persisted ever
// feeds back into provisioning decisions.
type Report struct {
	RunID    string
	Tool     string
	Platform v1alpha1.Platform

	Steps  []Step
	Result Result

	// Err is the failure that decided the result. Nil on Success; on
	// PartialFailure it carries the readiness timeout, which callers
	// should render as a warning rather than an error.
	Err error

	// Notes are human-readable follow-ups such as where to find an
	// initial admin credential.
	Notes []string

	StartedAt time.Time
	Duration  time.Duration
}

// RunInfo is the slice of report identity handed to observers before any
// step has run.
type RunInfo struct {
	RunID     string
	Tool      string
	Platform  v1alpha1.Platform
	StartedAt time.Time
}

func (r *Report) runInfo() RunInfo {
	return RunInfo{
		RunID:     r.RunID,
		Tool:      r.Tool,
		Platform:  r.Platform,
		StartedAt: r.StartedAt,
	}
}

// terminal reports whether the run has reached a final result.
func (r *Report) terminal() bool {
	return r.Result != ""
}

// ExitCode maps a session's reports to the process exit code: zero unless
// any run ended Fatal. PartialFailure exits zero so warm-up timeouts do
// not fail scripted invocations.
func ExitCode(reports []*Report) int {
	for _, report := range reports {
		if report.Result == Fatal {
			return 1
		}
	}

	return 0
}
