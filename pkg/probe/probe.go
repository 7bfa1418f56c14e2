// Package probe provides the side-effect-free checks that drive provisioning
// decisions.
//
// A probe answers one question about the local machine, yes or no. Probes
// never change state and never return errors: any failure to determine the
// answer folds to false, so a flaky daemon socket reads as "not satisfied"
// and provisioning proceeds instead of aborting. Swallowed errors are traced
// at debug level for troubleshooting.
package probe

import (
	"context"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// Probe reports whether a condition currently holds on the local machine.
// Implementations must be side-effect free and safe to invoke repeatedly.
type Probe func(ctx context.Context) bool

// Binary reports whether an executable with the given name is on the PATH.
func Binary(name string) Probe {
	return func(_ context.Context) bool {
		_, err := exec.LookPath(name)
		if err != nil {
			logrus.WithError(err).Debugf("binary %q not found on PATH", name)

			return false
		}

		return true
	}
}

// Command reports whether the given command exits with status zero. Unlike
// actions, the command is expected to be a cheap query such as
// "minikube status".
func Command(name string, args ...string) Probe {
	return func(ctx context.Context) bool {
		cmd := exec.CommandContext(ctx, name, args...)

		output, err := cmd.CombinedOutput()
		if err != nil {
			logrus.WithError(err).Debugf(
				"command probe %q failed, output: %s", name, string(output),
			)

			return false
		}

		return true
	}
}

// File reports whether a file or directory exists at the given path.
func File(path string) Probe {
	return func(_ context.Context) bool {
		_, err := os.Stat(path)
		if err != nil {
			logrus.WithError(err).Debugf("file probe %q failed", path)

			return false
		}

		return true
	}
}

// All combines probes so the result is true only when every probe passes.
// Evaluation stops at the first failing probe.
func All(probes ...Probe) Probe {
	return func(ctx context.Context) bool {
		for _, probe := range probes {
			if !probe(ctx) {
				return false
			}
		}

		return true
	}
}

// Any combines probes so the result is true when at least one probe passes.
func Any(probes ...Probe) Probe {
	return func(ctx context.Context) bool {
		for _, probe := range probes {
			if probe(ctx) {
				return true
			}
		}

		return false
	}
}
