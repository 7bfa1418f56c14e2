package helpers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/devrig-sh/devrig/pkg/cli/ui/timer"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flag names shared between the root command and subcommands.
const (
	// TimingFlagName enables per-activity timing output.
	TimingFlagName = "timing"
	// VerboseFlagName enables debug-level logging.
	VerboseFlagName = "verbose"
	// ConfigFlagName points at an explicit configuration file.
	ConfigFlagName = "config"
)

// ErrNilCommand is returned when a nil command is passed to a flag helper.
var ErrNilCommand = errors.New("command is nil")

// ErrFlagNotFound is returned when a required flag is not registered on the
// command or any of its parents.
var ErrFlagNotFound = errors.New("flag not found")

// IsTimingEnabled reports whether the timing flag is set on the command,
// searching local, persistent, and inherited flags in that order.
func IsTimingEnabled(cmd *cobra.Command) (bool, error) {
	if cmd == nil {
		return false, fmt.Errorf("%w: cannot read %s flag", ErrNilCommand, TimingFlagName)
	}

	flag := lookupFlag(cmd, TimingFlagName)
	if flag == nil {
		return false, fmt.Errorf("%w: %s", ErrFlagNotFound, TimingFlagName)
	}

	enabled, err := strconv.ParseBool(flag.Value.String())
	if err != nil {
		return false, fmt.Errorf("failed to parse %s flag value: %w", TimingFlagName, err)
	}

	return enabled, nil
}

// MaybeTimer returns the timer when timing output is enabled, and nil
// otherwise. A nil result tells notify to skip the timing block entirely.
func MaybeTimer(cmd *cobra.Command, tmr timer.Timer) timer.Timer {
	if cmd == nil || tmr == nil {
		return nil
	}

	enabled, err := IsTimingEnabled(cmd)
	if err != nil || !enabled {
		return nil
	}

	return tmr
}

// lookupFlag searches the command's local, persistent, and inherited flag sets.
// Persistent flags are only merged into Flags() during execution, so each set
// is consulted explicitly.
func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag
	}

	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag
	}

	return cmd.InheritedFlags().Lookup(name)
}
