// Package svc provides service layer components for devrig.
//
// This package contains the business logic layer that coordinates between
// the CLI commands and the underlying clients/infrastructure.
//
// Subpackages:
//   - orchestrator: Tool provisioning runs over probe/act/verify steps
//   - journal: Run history persistence with bounded retention
package svc
