package configmanager

import (
	"fmt"
	"strconv"
	"time"

	"github.com/devrig-sh/devrig/pkg/apis/rig/v1alpha1"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flag names bound to Rig spec fields.
const (
	// PlatformFlagName overrides platform auto-detection.
	PlatformFlagName = "platform"
	// PollIntervalFlagName overrides the readiness poll interval.
	PollIntervalFlagName = "poll-interval"
	// PollAttemptsFlagName overrides the readiness poll attempt budget.
	PollAttemptsFlagName = "poll-attempts"
	// ManifestFlagName points at a tools manifest overlay file.
	ManifestFlagName = "manifest"
	// TraceFlagName enables OpenTelemetry span emission.
	TraceFlagName = "trace"
)

// AddFlags registers the rig override flags on the command and associates the
// command with the manager so changed flags take precedence over config file
// and environment values.
func (m *ConfigManager) AddFlags(cmd *cobra.Command) {
	m.command = cmd

	flags := cmd.Flags()
	flags.Var(
		&m.Config.Spec.Platform,
		PlatformFlagName,
		"Platform family override (darwin|apt|dnf|windows|wsl); empty auto-detects",
	)
	flags.Duration(
		PollIntervalFlagName,
		v1alpha1.DefaultPollInterval,
		"Fixed delay between readiness probe attempts",
	)
	flags.Int(
		PollAttemptsFlagName,
		v1alpha1.DefaultPollMaxAttempts,
		"Maximum readiness probe attempts per tool",
	)
	flags.String(
		ManifestFlagName,
		"",
		"Path to a tools manifest overlaying the built-in catalog",
	)
	flags.Bool(
		TraceFlagName,
		false,
		"Emit OpenTelemetry spans for runs and steps",
	)
}

// captureChangedFlagValues records the string values of flags the user set on
// the command line. Captured before unmarshalling so flag values can be
// re-applied over whatever the config file and environment produced.
func (m *ConfigManager) captureChangedFlagValues() map[string]string {
	if m.command == nil {
		return nil
	}

	overrides := make(map[string]string)

	m.command.Flags().Visit(func(flag *pflag.Flag) {
		overrides[flag.Name] = flag.Value.String()
	})

	return overrides
}

func (m *ConfigManager) applyFlagOverrides(overrides map[string]string) error {
	for name, raw := range overrides {
		err := m.applyFlagOverride(name, raw)
		if err != nil {
			return fmt.Errorf("failed to apply flag override for %s: %w", name, err)
		}
	}

	return nil
}

// applyFlagOverride maps one changed flag onto its Rig field. Flags that do
// not back a config field (e.g. --timing) are ignored.
func (m *ConfigManager) applyFlagOverride(name, raw string) error {
	switch name {
	case PlatformFlagName:
		return m.Config.Spec.Platform.Set(raw)
	case PollIntervalFlagName:
		duration, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", raw, err)
		}

		m.Config.Spec.Poll.Interval.Duration = duration
	case PollAttemptsFlagName:
		attempts, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("parse int %q: %w", raw, err)
		}

		m.Config.Spec.Poll.MaxAttempts = attempts
	case ManifestFlagName:
		m.Config.Spec.Manifest = raw
	case TraceFlagName:
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parse bool %q: %w", raw, err)
		}

		m.Config.Spec.Trace = value
	}

	return nil
}
