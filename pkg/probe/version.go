package probe

import (
	"context"
	"os/exec"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"
)

// versionPattern extracts the first dotted version number from version
// command output, e.g. "28.1.1" out of "Docker version 28.1.1, build a1b2c3".
var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// MinVersion reports whether the named binary is installed and its version
// command output satisfies a semver constraint such as ">= 24.0". A binary
// whose version cannot be determined fails the probe.
func MinVersion(name string, args []string, constraint string) Probe {
	return func(ctx context.Context) bool {
		parsedConstraint, err := semver.NewConstraint(constraint)
		if err != nil {
			logrus.WithError(err).Debugf("invalid version constraint %q", constraint)

			return false
		}

		cmd := exec.CommandContext(ctx, name, args...)

		output, err := cmd.CombinedOutput()
		if err != nil {
			logrus.WithError(err).Debugf(
				"version probe %q failed, output: %s", name, string(output),
			)

			return false
		}

		raw := versionPattern.FindString(string(output))
		if raw == "" {
			logrus.Debugf("no version number in %q output: %s", name, string(output))

			return false
		}

		version, err := semver.NewVersion(raw)
		if err != nil {
			logrus.WithError(err).Debugf("unparseable version %q from %q", raw, name)

			return false
		}

		return parsedConstraint.Check(version)
	}
}
