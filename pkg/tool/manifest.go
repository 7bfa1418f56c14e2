package tool

import (
	"fmt"
	"os"

	v1alpha1 "github.com/devrig-sh/devrig/pkg/apis/rig/v1alpha1"
	"github.com/devrig-sh/devrig/pkg/action"
	"github.com/devrig-sh/devrig/pkg/envvar"
	"github.com/devrig-sh/devrig/pkg/poll"
	"github.com/devrig-sh/devrig/pkg/probe"
	"github.com/jinzhu/copier"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"
)

// Manifest is a declarative overlay for the built-in catalog. Entries
// matching a built-in tool patch it; other entries declare new tools.
//
// The manifest expresses structural fields and command lines only. Probes
// that need a Go client (Docker ping, Kubernetes API) cannot be declared
// here, so overlays can reshape a recipe but not teach it new probe kinds.
type Manifest struct {
	Tools []ManifestTool `json:"tools,omitzero"`
}

// ManifestTool is one overlay entry. Empty fields leave the built-in
// descriptor untouched.
type ManifestTool struct {
	Name          string             `json:"name"`
	Summary       string             `json:"summary,omitzero"`
	Guidance      string             `json:"guidance,omitzero"`
	Prerequisites []string           `json:"prerequisites,omitzero"`
	Poll          *ManifestPoll      `json:"poll,omitzero"`
	Install       *ManifestStep      `json:"install,omitzero"`
	Start         *ManifestStep      `json:"start,omitzero"`
	Readiness     *ManifestReadiness `json:"readiness,omitzero"`
}

// ManifestStep expresses a probe/action pair as command lines. The probe
// is satisfied when its command exits zero.
type ManifestStep struct {
	Probe  []string `json:"probe,omitzero"`
	Action []string `json:"action,omitzero"`
}

// ManifestReadiness expresses a readiness probe as either a command line
// or an HTTP URL to poll.
type ManifestReadiness struct {
	Probe []string      `json:"probe,omitzero"`
	HTTP  string        `json:"http,omitzero"`
	Poll  *ManifestPoll `json:"poll,omitzero"`
}

// ManifestPoll partially overrides a poll policy. Zero fields keep the
// value they would otherwise have.
type ManifestPoll struct {
	Interval    metav1.Duration `json:"interval,omitzero"`
	MaxAttempts int             `json:"maxAttempts,omitzero"`
}

// LoadManifest reads and decodes a tools manifest from disk. Environment
// variable placeholders in the manifest are expanded before decoding, so
// probe and action command lines may reference ${VAR} paths.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tools manifest: %w", err)
	}

	var manifest Manifest

	err = yaml.Unmarshal(envvar.ExpandBytes(data), &manifest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestInvalid, err)
	}

	return &manifest, nil
}

// applyManifest merges manifest entries into the registry. Entries naming
// an existing descriptor patch it in place; the rest become new exec-backed
// descriptors for the registry's platform.
func (r *Registry) applyManifest(manifest *Manifest, opts Options) error {
	for i := range manifest.Tools {
		entry := &manifest.Tools[i]

		err := v1alpha1.ValidateToolName(entry.Name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrManifestInvalid, err)
		}

		existing, ok := r.descriptors[entry.Name]
		if ok {
			err = overlayDescriptor(existing, entry, opts)
		} else {
			err = r.addManifestDescriptor(entry, opts)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// overlayDescriptor patches a built-in descriptor with the non-empty fields
// of a manifest entry.
func overlayDescriptor(dst *Descriptor, entry *ManifestTool, opts Options) error {
	overlay := Descriptor{
		Summary:       entry.Summary,
		Guidance:      entry.Guidance,
		Prerequisites: entry.Prerequisites,
	}

	err := copier.CopyWithOption(dst, &overlay, copier.Option{IgnoreEmpty: true})
	if err != nil {
		return fmt.Errorf("%w: merging %q: %w", ErrManifestInvalid, entry.Name, err)
	}

	overlayStep(&dst.Install, entry.Install, opts.Runner)

	if entry.Start != nil {
		if dst.Start == nil {
			step, stepErr := newManifestStep(entry.Start, entry.Name, "start", opts.Runner)
			if stepErr != nil {
				return stepErr
			}

			dst.Start = step
		} else {
			overlayStep(dst.Start, entry.Start, opts.Runner)
		}
	}

	if entry.Readiness != nil {
		readiness, readinessErr := overlayReadiness(dst.Readiness, entry, opts)
		if readinessErr != nil {
			return readinessErr
		}

		dst.Readiness = readiness
	}

	if entry.Poll != nil {
		if dst.Readiness == nil {
			return fmt.Errorf(
				"%w: poll override for %q: tool has no readiness probe",
				ErrManifestInvalid, entry.Name,
			)
		}

		dst.Readiness.Policy = overlayPolicy(dst.Readiness.Policy, entry.Poll)
	}

	return nil
}

// addManifestDescriptor materializes a new exec-backed tool from a manifest
// entry. New tools need at least an install probe and action; start and
// readiness stay optional, as for built-ins.
func (r *Registry) addManifestDescriptor(entry *ManifestTool, opts Options) error {
	if entry.Install == nil || len(entry.Install.Probe) == 0 || len(entry.Install.Action) == 0 {
		return fmt.Errorf(
			"%w: new tool %q needs an install probe and action",
			ErrManifestInvalid, entry.Name,
		)
	}

	descriptor := &Descriptor{
		Name:          entry.Name,
		Platform:      r.platform,
		Summary:       entry.Summary,
		Prerequisites: entry.Prerequisites,
		Install: StepSpec{
			Probe:  commandProbe(entry.Install.Probe),
			Action: commandAction(opts.Runner, entry.Install.Action),
		},
		Guidance: entry.Guidance,
	}

	if entry.Start != nil {
		step, err := newManifestStep(entry.Start, entry.Name, "start", opts.Runner)
		if err != nil {
			return err
		}

		descriptor.Start = step
	}

	if entry.Readiness != nil {
		readiness, err := overlayReadiness(nil, entry, opts)
		if err != nil {
			return err
		}

		descriptor.Readiness = readiness
	}

	r.add(descriptor)

	return nil
}

// newManifestStep builds a complete probe/action pair; both halves are
// required so a descriptor never carries an unguarded action.
func newManifestStep(
	spec *ManifestStep,
	name string,
	stage string,
	runner action.Runner,
) (*StepSpec, error) {
	if len(spec.Probe) == 0 || len(spec.Action) == 0 {
		return nil, fmt.Errorf(
			"%w: %s for %q needs both probe and action",
			ErrManifestInvalid, stage, name,
		)
	}

	return &StepSpec{
		Probe:  commandProbe(spec.Probe),
		Action: commandAction(runner, spec.Action),
	}, nil
}

// overlayStep patches the halves of an existing step that the manifest
// actually sets.
func overlayStep(dst *StepSpec, spec *ManifestStep, runner action.Runner) {
	if spec == nil {
		return
	}

	if len(spec.Probe) > 0 {
		dst.Probe = commandProbe(spec.Probe)
	}

	if len(spec.Action) > 0 {
		dst.Action = commandAction(runner, spec.Action)
	}
}

// overlayReadiness resolves the readiness spec for an entry, starting from
// the existing one when present.
func overlayReadiness(
	existing *ReadinessSpec,
	entry *ManifestTool,
	opts Options,
) (*ReadinessSpec, error) {
	spec := entry.Readiness

	resolved := ReadinessSpec{Policy: opts.Poll}
	if existing != nil {
		resolved = *existing
	}

	switch {
	case len(spec.Probe) > 0:
		resolved.Probe = commandProbe(spec.Probe)
	case spec.HTTP != "":
		resolved.Probe = probe.HTTP(spec.HTTP)
	case existing == nil:
		return nil, fmt.Errorf(
			"%w: readiness for %q needs a probe command or http url",
			ErrManifestInvalid, entry.Name,
		)
	}

	if spec.Poll != nil {
		resolved.Policy = overlayPolicy(resolved.Policy, spec.Poll)
	}

	return &resolved, nil
}

// overlayPolicy applies the set fields of a manifest poll override.
func overlayPolicy(base poll.Policy, override *ManifestPoll) poll.Policy {
	if override.MaxAttempts > 0 {
		base.MaxAttempts = override.MaxAttempts
	}

	if override.Interval.Duration > 0 {
		base.Interval = override.Interval.Duration
	}

	return base
}

func commandProbe(words []string) probe.Probe {
	return probe.Command(words[0], words[1:]...)
}

func commandAction(runner action.Runner, words []string) action.Action {
	return action.Command(runner, words[0], words[1:]...)
}
