package tool

import "errors"

var (
	// ErrToolUnknown is returned when a requested tool is not in the catalog.
	ErrToolUnknown = errors.New("unknown tool")

	// ErrToolUnavailable is returned when a tool exists in the catalog but
	// has no recipe for the current platform.
	ErrToolUnavailable = errors.New("tool not available on this platform")

	// ErrPrerequisiteCycle is returned when descriptor prerequisites form a
	// cycle.
	ErrPrerequisiteCycle = errors.New("prerequisite cycle detected")

	// ErrUnknownPrerequisite is returned when a descriptor names a
	// prerequisite that does not resolve to any descriptor.
	ErrUnknownPrerequisite = errors.New("unknown prerequisite")

	// ErrManifestInvalid is returned when a tools manifest cannot be used.
	ErrManifestInvalid = errors.New("invalid tools manifest")
)
