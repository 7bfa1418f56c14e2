// Package helpers provides common CLI utilities for command handling.
//
// The flag helpers resolve flags across local, persistent, and inherited
// flag sets so subcommands can honor root-level flags such as --timing
// without re-registering them.
package helpers
