package di

import (
	"github.com/devrig-sh/devrig/pkg/cli/ui/timer"
	"github.com/devrig-sh/devrig/pkg/svc/orchestrator"
	"github.com/samber/do/v2"
)

// Dependency providers.

// NewRuntime constructs the shared runtime container used by the root command
// and tests. It registers default implementations for the timer and the
// provisioner factory.
func NewRuntime() *Runtime {
	return New(
		provideTimer,
		provideProvisionerFactory,
	)
}

// provideTimer registers the timer dependency with the injector.
func provideTimer(injector Injector) error {
	do.Provide(injector, func(Injector) (timer.Timer, error) {
		return timer.New(), nil
	})

	return nil
}

// provideProvisionerFactory registers the provisioner factory dependency.
func provideProvisionerFactory(injector Injector) error {
	do.Provide(injector, func(Injector) (orchestrator.Factory, error) {
		return orchestrator.DefaultFactory{}, nil
	})

	return nil
}
