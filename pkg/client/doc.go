// Package client provides embedded clients for the daemons devrig probes.
//
// This package contains Go library wrappers used by probes instead of
// shelling out to external binaries:
//
//   - docker: Docker daemon ping and container state inspection
//
// By embedding these clients as Go libraries, probes get structured errors
// and timeouts instead of parsing command output.
package client
