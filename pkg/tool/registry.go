package tool

import (
	"fmt"

	v1alpha1 "github.com/devrig-sh/devrig/pkg/apis/rig/v1alpha1"
	"github.com/devrig-sh/devrig/pkg/action"
	"github.com/devrig-sh/devrig/pkg/client/docker"
	"github.com/devrig-sh/devrig/pkg/k8s"
	"github.com/devrig-sh/devrig/pkg/poll"
)

// Options configures catalog construction. Zero-value fields fall back to
// production defaults, so tests can substitute just the pieces they fake.
type Options struct {
	// Runner executes external commands for probes and actions.
	Runner action.Runner

	// DockerFactory constructs Docker API clients for daemon-backed probes
	// and actions.
	DockerFactory docker.ClientFactory

	// Kubeconfig is the kubeconfig path for cluster readiness probes.
	Kubeconfig string

	// KubeContext selects the kubeconfig context for cluster readiness
	// probes.
	KubeContext string

	// Poll is the default readiness poll policy for service-backed tools.
	Poll poll.Policy

	// Manifest optionally overlays the built-in catalog.
	Manifest *Manifest
}

func (o Options) withDefaults() Options {
	if o.Runner == nil {
		o.Runner = action.NewExecRunner()
	}

	if o.DockerFactory == nil {
		o.DockerFactory = docker.GetDockerClient
	}

	if o.Kubeconfig == "" {
		o.Kubeconfig = k8s.DefaultKubeconfigPath()
	}

	if o.KubeContext == "" {
		o.KubeContext = minikubeContext
	}

	if o.Poll.MaxAttempts < 1 {
		o.Poll = poll.Policy{
			MaxAttempts: v1alpha1.DefaultPollMaxAttempts,
			Interval:    v1alpha1.DefaultPollInterval,
		}
	}

	return o
}

// Registry serves the tool descriptors materialized for one platform.
// Descriptors are built once and immutable afterwards; Get hands out deep
// copies so no caller can corrupt another's view.
type Registry struct {
	platform    v1alpha1.Platform
	descriptors map[string]*Descriptor
	order       []string
	catalog     map[string]struct{}
}

// Build materializes the built-in catalog for the given platform, applies
// the optional manifest overlay, and validates the result. Tools the
// platform has no recipe for stay in the catalog index so lookups can
// distinguish "unknown" from "not available here".
func Build(platform v1alpha1.Platform, opts Options) (*Registry, error) {
	opts = opts.withDefaults()

	registry := &Registry{
		platform:    platform,
		descriptors: make(map[string]*Descriptor),
		catalog:     make(map[string]struct{}),
	}

	for _, builder := range builtinBuilders() {
		registry.catalog[builder.name] = struct{}{}

		descriptor := builder.build(platform, opts)
		if descriptor != nil {
			registry.add(descriptor)
		}
	}

	if opts.Manifest != nil {
		err := registry.applyManifest(opts.Manifest, opts)
		if err != nil {
			return nil, err
		}
	}

	err := registry.validate()
	if err != nil {
		return nil, err
	}

	return registry, nil
}

// Platform returns the platform family the registry was built for.
func (r *Registry) Platform() v1alpha1.Platform {
	return r.platform
}

// Get returns a deep copy of the named descriptor.
//
// Returns ErrToolUnavailable when the tool is known but has no recipe for
// the registry's platform, and ErrToolUnknown when the name matches nothing.
func (r *Registry) Get(name string) (*Descriptor, error) {
	descriptor, ok := r.descriptors[name]
	if ok {
		return descriptor.DeepCopy(), nil
	}

	_, known := r.catalog[name]
	if known {
		return nil, fmt.Errorf("%w: %q on %s", ErrToolUnavailable, name, r.platform)
	}

	return nil, fmt.Errorf("%w: %q", ErrToolUnknown, name)
}

// Names returns the available tool names in catalog order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) add(descriptor *Descriptor) {
	_, exists := r.descriptors[descriptor.Name]
	if !exists {
		r.order = append(r.order, descriptor.Name)
	}

	r.descriptors[descriptor.Name] = descriptor
	r.catalog[descriptor.Name] = struct{}{}
}

// validate checks referential integrity and prerequisite acyclicity across
// the materialized descriptors.
func (r *Registry) validate() error {
	for _, name := range r.order {
		for _, prereq := range r.descriptors[name].Prerequisites {
			_, ok := r.descriptors[prereq]
			if !ok {
				return fmt.Errorf(
					"%w: %q required by %q", ErrUnknownPrerequisite, prereq, name,
				)
			}
		}
	}

	state := make(map[string]visitState, len(r.descriptors))

	for _, name := range r.order {
		err := r.visit(name, state)
		if err != nil {
			return err
		}
	}

	return nil
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

func (r *Registry) visit(name string, state map[string]visitState) error {
	switch state[name] {
	case visited:
		return nil
	case visiting:
		return fmt.Errorf("%w: involving %q", ErrPrerequisiteCycle, name)
	case unvisited:
	}

	state[name] = visiting

	for _, prereq := range r.descriptors[name].Prerequisites {
		err := r.visit(prereq, state)
		if err != nil {
			return err
		}
	}

	state[name] = visited

	return nil
}
