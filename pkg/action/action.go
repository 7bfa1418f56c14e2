// Package action provides the side-effecting operations that bring tools
// into their desired state.
//
// An action either converges the machine toward the state its guarding probe
// checks for, or fails with an error. Actions are expected to be idempotent
// or at least non-destructive on retry: the only recovery mechanism is
// running the program again.
package action

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Action applies a side effect on the local machine. Unlike probes, actions
// may take significant wall-clock time and report failure as an error.
type Action func(ctx context.Context) error

// Runner executes external commands. Provisioning actions shell out through
// this interface so tests can substitute a recording fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands through os/exec. Combined output is captured and
// folded into the returned error so failures carry the tool's own words.
type ExecRunner struct{}

// NewExecRunner creates the default command runner.
func NewExecRunner() ExecRunner {
	return ExecRunner{}
}

// Run executes the command and waits for it to finish.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	logrus.Debugf("running %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(output))
		if trimmed == "" {
			return fmt.Errorf("%s failed: %w", name, err)
		}

		return fmt.Errorf("%s failed: %w, output: %s", name, err, trimmed)
	}

	return nil
}

// Command builds an action that runs a single external command.
func Command(runner Runner, name string, args ...string) Action {
	return func(ctx context.Context) error {
		return runner.Run(ctx, name, args...)
	}
}

// Sequence builds an action that runs the given actions in order, stopping
// at the first error.
func Sequence(actions ...Action) Action {
	return func(ctx context.Context) error {
		for _, act := range actions {
			err := act(ctx)
			if err != nil {
				return err
			}
		}

		return nil
	}
}
