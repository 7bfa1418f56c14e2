// Package cli provides reusable helpers for command wiring and execution.
//
// This package is organized into subpackages for different functionality:
//
//   - cli/cmd: The devrig command tree (up, status, tools, history, schema)
//   - cli/helpers: Flag handling utilities including timing detection
//   - cli/lifecycle: Shared command plumbing (config loading, catalog building)
//   - cli/ui: User interface components (asciiart, confirm, errorhandler, timer)
//
// The utilities in this package follow dependency injection patterns and
// integrate with the devrig runtime container for testability and flexibility.
package cli
