// Package cmd provides the command-line interface for devrig.
//
// This package contains the root command and its subcommands:
//   - up: provision tools until they are installed, running, and responsive
//   - status: probe tool state without changing anything
//   - tools: inspect the provisioning catalog for the active platform
//   - history: browse and prune the local run journal
//   - schema: print the JSON schema for devrig.yaml
package cmd
