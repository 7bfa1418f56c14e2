package orchestrator

import "errors"

var (
	// ErrPrerequisiteFailed is returned in a report when a dependency
	// ended Fatal, aborting the dependent before its own install or start.
	ErrPrerequisiteFailed = errors.New("prerequisite provisioning failed")

	// ErrActionFailed is returned in a report when an install or start
	// action failed. Fatal for the descriptor; the action's diagnostic
	// output is wrapped alongside.
	ErrActionFailed = errors.New("provisioning action failed")

	// ErrVerificationFailed is returned in a report when an action
	// reported success but its probe still fails afterwards. Signals an
	// action/probe contract mismatch or environment drift.
	ErrVerificationFailed = errors.New("action completed but its probe still fails")

	// ErrReadinessTimeout is returned in a report when the readiness poll
	// budget was exhausted. Non-fatal: the tool is installed and started,
	// only responsiveness is unconfirmed.
	ErrReadinessTimeout = errors.New("tool did not become ready within the poll budget")
)
