package action

import (
	"context"
	"fmt"

	"github.com/devrig-sh/devrig/pkg/client/docker"
)

// PullImage ensures a container image is present locally, pulling it if
// absent. Re-running against a present image is a no-op.
func PullImage(factory docker.ClientFactory, imageRef string) Action {
	return func(ctx context.Context) error {
		return withContainerManager(factory, func(manager *docker.ContainerManager) error {
			return manager.EnsureImage(ctx, imageRef)
		})
	}
}

// StartContainer brings the described service container into the running
// state through the Engine API. Going through the API instead of `docker run`
// keeps the action idempotent: an existing stopped container is restarted
// rather than tripping over a name conflict.
func StartContainer(factory docker.ClientFactory, spec docker.ContainerSpec) Action {
	return func(ctx context.Context) error {
		return withContainerManager(factory, func(manager *docker.ContainerManager) error {
			return manager.EnsureStarted(ctx, spec)
		})
	}
}

func withContainerManager(
	factory docker.ClientFactory,
	operation func(*docker.ContainerManager) error,
) error {
	apiClient, err := factory()
	if err != nil {
		return fmt.Errorf("failed to create docker client: %w", err)
	}
	defer func() { _ = apiClient.Close() }()

	manager, err := docker.NewContainerManager(apiClient)
	if err != nil {
		return err
	}

	return operation(manager)
}
