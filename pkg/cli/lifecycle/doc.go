// Package lifecycle provides provisioning command helpers.
//
// This package contains utilities for building and executing commands that
// operate on the tool catalog (up, status, tools) with consistent
// configuration loading, dependency injection, and messaging patterns.
package lifecycle
