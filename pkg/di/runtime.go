// Package di wires shared dependencies into command handlers through a
// samber/do injector. Each command invocation gets a fresh injector populated
// by the runtime's base modules plus any command-specific extras.
package di

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// Injector is the dependency container handed to modules and handlers.
type Injector = do.Injector

// Module registers one or more dependencies on the injector.
type Module func(Injector) error

// Runtime owns the base module set shared by every command invocation.
type Runtime struct {
	modules []Module
}

// New constructs a runtime from the given base modules.
func New(modules ...Module) *Runtime {
	return &Runtime{modules: modules}
}

// Invoke runs the handler against a fresh injector populated by the base
// modules followed by the extra modules, in order. Nil modules are skipped.
// The injector is shut down when the handler returns.
func (r *Runtime) Invoke(handler func(Injector) error, extra ...Module) error {
	injector := do.New()
	defer func() {
		_ = injector.Shutdown()
	}()

	err := applyModules(injector, r.modules)
	if err != nil {
		return err
	}

	err = applyModules(injector, extra)
	if err != nil {
		return err
	}

	return handler(injector)
}

// RunEWithRuntime adapts an injector-aware handler into a Cobra RunE.
func RunEWithRuntime(
	runtime *Runtime,
	handler func(cmd *cobra.Command, injector Injector) error,
	extra ...Module,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return runtime.Invoke(func(injector Injector) error {
			return handler(cmd, injector)
		}, extra...)
	}
}

func applyModules(injector Injector, modules []Module) error {
	for _, module := range modules {
		if module == nil {
			continue
		}

		err := module(injector)
		if err != nil {
			return err
		}
	}

	return nil
}
