package v1alpha1

import (
	"fmt"
	"regexp"
)

// toolNameRegex matches tool identifiers: lowercase alphanumeric with optional
// hyphens, starting with a letter. Tool names appear in CLI arguments, config
// files, and journal rows, so they stay shell- and YAML-safe.
var toolNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$|^[a-z]$`)

// ToolNameMaxLength is the maximum length for a tool name.
const ToolNameMaxLength = 63

// ValidateToolName validates that a tool name is a well-formed identifier.
// Returns nil if the name is valid, or an error describing the failure.
func ValidateToolName(name string) error {
	if len(name) > ToolNameMaxLength {
		return fmt.Errorf(
			"%w: %q exceeds max %d characters (got %d)",
			ErrToolNameTooLong, name, ToolNameMaxLength, len(name),
		)
	}

	if !toolNameRegex.MatchString(name) {
		return fmt.Errorf(
			"%w: %q must be lowercase letters, numbers, and hyphens, starting with a letter",
			ErrToolNameInvalid, name,
		)
	}

	return nil
}

// Validate checks the Rig configuration for semantic errors. Unknown tool
// names are not checked here: the registry owns catalog membership and
// validates it after manifest overlays are applied.
func (r *Rig) Validate() error {
	if r.Spec.Platform != "" && !r.Spec.Platform.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPlatform, r.Spec.Platform)
	}

	if err := r.Spec.Poll.Validate(); err != nil {
		return err
	}

	if r.Spec.History.Keep < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidHistoryKeep, r.Spec.History.Keep)
	}

	for _, name := range r.Spec.Tools {
		if err := ValidateToolName(name); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks poll bounds: the attempt budget must be positive and the
// interval must not be negative.
func (p *PollSpec) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPollAttempts, p.MaxAttempts)
	}

	if p.Interval.Duration < 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidPollInterval, p.Interval.Duration)
	}

	return nil
}
