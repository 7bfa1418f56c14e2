// Package io provides utilities for input and output operations related to configuration management.
//
// This package contains domain-specific I/O utilities focused on loading and
// resolving the devrig configuration.
//
// Subpackages:
//   - configmanager: Configuration loading from files, environment, and flags
package io
