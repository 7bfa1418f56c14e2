package v1alpha1

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

const (
	// Group is the API group for devrig.
	Group = "devrig.sh"
	// Version is the API version for devrig.
	Version = "v1alpha1"
	// Kind is the kind for devrig configurations.
	Kind = "Rig"
	// APIVersion is the full API version for devrig.
	APIVersion = Group + "/" + Version
)

// --- Core Types ---

// Rig represents a devrig configuration including API metadata and the desired
// set of developer-infrastructure tools to provision on the local machine.
type Rig struct {
	metav1.TypeMeta `json:",inline" mapstructure:",squash"`

	Spec Spec `json:"spec,omitzero" mapstructure:"spec,omitempty"`
}

// Spec defines the desired state of a devrig machine setup.
type Spec struct {
	// Tools is the ordered default set provisioned by `devrig up` when no
	// arguments are given. Prerequisites are resolved per tool regardless of
	// their position in this list.
	Tools []string `json:"tools,omitzero" jsonschema:"description=Tools provisioned by default (e.g. docker, kubernetes, jenkins)"` //nolint:lll

	// Platform overrides platform auto-detection when set.
	Platform Platform `json:"platform,omitzero" jsonschema:"description=Platform family override; empty selects auto-detection"` //nolint:lll

	Poll     PollSpec    `json:"poll,omitzero"`
	History  HistorySpec `json:"history,omitzero"`
	Manifest string      `json:"manifest,omitzero" jsonschema:"description=Path to a tools manifest overlaying the built-in catalog"` //nolint:lll
	Trace    bool        `json:"trace,omitzero"    jsonschema:"description=Emit OpenTelemetry spans for runs and steps"`
}

// PollSpec bounds readiness polling for tools that do not override it.
type PollSpec struct {
	// Interval is the fixed delay between readiness probe attempts.
	Interval metav1.Duration `default:"2s" json:"interval,omitzero"`
	// MaxAttempts caps readiness probe invocations per tool. Must be ≥ 1.
	MaxAttempts int `default:"30" json:"maxAttempts,omitzero"`
}

// HistorySpec configures the local run journal.
//
// The journal is write-only from the orchestrator's perspective: provisioning
// decisions are always re-derived from live probes, never from stored history.
type HistorySpec struct {
	Enabled bool   `default:"true" json:"enabled,omitzero"`
	Path    string `               json:"path,omitzero" jsonschema:"description=Journal database path; empty selects ~/.devrig/history.db"` //nolint:lll
	// Keep bounds how many completed runs the journal retains.
	Keep int `default:"500" json:"keep,omitzero"`
}
