// Package tool defines provisioning descriptors and the registry that serves
// them.
//
// A descriptor is pure data plus closures: which probes guard which actions,
// in what order, under which poll policy. The provisioning engine interprets
// descriptors without knowing what tool it is converging, so adding a tool
// means adding a catalog entry, not engine code.
package tool

import (
	v1alpha1 "github.com/devrig-sh/devrig/pkg/apis/rig/v1alpha1"
	"github.com/devrig-sh/devrig/pkg/action"
	"github.com/devrig-sh/devrig/pkg/poll"
	"github.com/devrig-sh/devrig/pkg/probe"
)

// StepSpec pairs a guarding probe with the action that satisfies it. The
// action runs only when the probe reports the condition unmet.
type StepSpec struct {
	Probe  probe.Probe
	Action action.Action
}

// ReadinessSpec describes how a tool proves it is actually serving after its
// start step, and how patiently to ask.
type ReadinessSpec struct {
	Probe  probe.Probe
	Policy poll.Policy
}

// Descriptor is the complete provisioning recipe for one tool on one
// platform.
type Descriptor struct {
	// Name identifies the tool in configuration, CLI arguments, and
	// prerequisite lists.
	Name string

	// Platform is the platform family this recipe was materialized for.
	Platform v1alpha1.Platform

	// Summary is a one-line description for listings.
	Summary string

	// Prerequisites names descriptors that must be provisioned first, in
	// order. The registry guarantees the closure is acyclic.
	Prerequisites []string

	// Install detects and establishes tool presence.
	Install StepSpec

	// Start detects and establishes the tool's running service. Nil for
	// CLI-only tools that have nothing to start.
	Start *StepSpec

	// Readiness verifies the tool actually works after install and start.
	// Nil when the tool has no meaningful readiness signal.
	Readiness *ReadinessSpec

	// Guidance is follow-up text surfaced after provisioning, such as where
	// to find an initial admin password.
	Guidance string
}

// HasStart reports whether the descriptor has a service to start.
func (d *Descriptor) HasStart() bool {
	return d.Start != nil
}

// HasReadiness reports whether the descriptor carries a readiness check.
func (d *Descriptor) HasReadiness() bool {
	return d.Readiness != nil
}

// DeepCopy returns a copy that shares no mutable state with the original.
// Probe and action closures are immutable once built and are shared.
func (d *Descriptor) DeepCopy() *Descriptor {
	if d == nil {
		return nil
	}

	out := *d

	if d.Prerequisites != nil {
		out.Prerequisites = append([]string(nil), d.Prerequisites...)
	}

	if d.Start != nil {
		start := *d.Start
		out.Start = &start
	}

	if d.Readiness != nil {
		readiness := *d.Readiness
		out.Readiness = &readiness
	}

	return &out
}
