package orchestrator

import "context"

// Provisioner is the surface commands use to converge tools toward their
// ready state. *Orchestrator is the standard implementation; tests substitute
// fakes.
type Provisioner interface {
	Provision(ctx context.Context, names ...string) ([]*Report, error)
}

var _ Provisioner = (*Orchestrator)(nil)

// Factory creates provisioners bound to a catalog and an observer set.
type Factory interface {
	Create(catalog Catalog, observers ...Observer) Provisioner
}

// DefaultFactory implements Factory with the standard orchestrator.
type DefaultFactory struct{}

var _ Factory = DefaultFactory{}

// Create builds an orchestrator over the catalog, broadcasting run lifecycle
// events to the observers.
func (DefaultFactory) Create(catalog Catalog, observers ...Observer) Provisioner {
	return New(catalog, observers...)
}
