package v1alpha1

import "errors"

// ErrInvalidPlatform is returned when an invalid platform family is specified.
var ErrInvalidPlatform = errors.New("invalid platform")

// ErrInvalidPollAttempts is returned when the poll attempt budget is not positive.
var ErrInvalidPollAttempts = errors.New("poll maxAttempts must be at least 1")

// ErrInvalidPollInterval is returned when the poll interval is negative.
var ErrInvalidPollInterval = errors.New("poll interval must not be negative")

// ErrInvalidHistoryKeep is returned when the journal retention count is negative.
var ErrInvalidHistoryKeep = errors.New("history keep must not be negative")

// ErrToolNameInvalid is returned when a tool name is not a valid identifier.
var ErrToolNameInvalid = errors.New("tool name is invalid")

// ErrToolNameTooLong is returned when a tool name exceeds the maximum length.
var ErrToolNameTooLong = errors.New("tool name is too long")
