package v1alpha1

import (
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Default values applied by NewRig and the configuration manager.
const (
	// DefaultPollInterval is the fixed delay between readiness probe attempts.
	DefaultPollInterval = 2 * time.Second
	// DefaultPollMaxAttempts caps readiness probe invocations per tool.
	DefaultPollMaxAttempts = 30
	// DefaultHistoryKeep bounds how many completed runs the journal retains.
	DefaultHistoryKeep = 500
)

// DefaultTools returns the ordered default tool set for `devrig up`.
func DefaultTools() []string {
	return []string{"docker", "kubernetes", "jenkins", "ansible", "terraform"}
}

// NewRig creates a new Rig instance with API metadata and default spec values.
func NewRig() *Rig {
	return &Rig{
		TypeMeta: metav1.TypeMeta{
			Kind:       Kind,
			APIVersion: APIVersion,
		},
		Spec: NewRigSpec(),
	}
}

// NewRigSpec creates a new Spec with default values.
func NewRigSpec() Spec {
	return Spec{
		Tools:    DefaultTools(),
		Platform: "",
		Poll:     NewPollSpec(),
		History:  NewHistorySpec(),
		Manifest: "",
		Trace:    false,
	}
}

// NewPollSpec creates a new PollSpec with default values.
func NewPollSpec() PollSpec {
	return PollSpec{
		Interval:    metav1.Duration{Duration: DefaultPollInterval},
		MaxAttempts: DefaultPollMaxAttempts,
	}
}

// NewHistorySpec creates a new HistorySpec with default values.
func NewHistorySpec() HistorySpec {
	return HistorySpec{
		Enabled: true,
		Path:    "",
		Keep:    DefaultHistoryKeep,
	}
}
