// Package apis provides API type definitions for devrig resources.
//
// This package contains versioned API types following Kubernetes API conventions:
//
//   - rig: Rig configuration types for devrig declarative configuration
//
// The API types are designed to be serializable to YAML and support
// declarative configuration workflows.
package apis
