package probe

import (
	"context"

	"github.com/devrig-sh/devrig/pkg/client/docker"
	"github.com/sirupsen/logrus"
)

// DockerDaemon reports whether the Docker daemon answers an Engine API ping.
// The client is constructed per invocation so a daemon that comes up between
// attempts is detected.
func DockerDaemon(factory docker.ClientFactory) Probe {
	return func(ctx context.Context) bool {
		apiClient, err := factory()
		if err != nil {
			logrus.WithError(err).Debug("docker daemon probe failed to create client")

			return false
		}
		defer func() { _ = apiClient.Close() }()

		_, err = apiClient.Ping(ctx)
		if err != nil {
			logrus.WithError(err).Debug("docker daemon probe ping failed")

			return false
		}

		return true
	}
}

// DockerImagePresent reports whether an image is present in the local cache.
func DockerImagePresent(factory docker.ClientFactory, imageRef string) Probe {
	return func(ctx context.Context) bool {
		apiClient, err := factory()
		if err != nil {
			logrus.WithError(err).Debugf(
				"image probe %q failed to create client", imageRef,
			)

			return false
		}
		defer func() { _ = apiClient.Close() }()

		_, err = apiClient.ImageInspect(ctx, imageRef)
		if err != nil {
			logrus.WithError(err).Debugf("image probe %q failed", imageRef)

			return false
		}

		return true
	}
}

// DockerContainerRunning reports whether a container with the given exact
// name is running.
func DockerContainerRunning(factory docker.ClientFactory, name string) Probe {
	return func(ctx context.Context) bool {
		apiClient, err := factory()
		if err != nil {
			logrus.WithError(err).Debugf(
				"container probe %q failed to create client", name,
			)

			return false
		}
		defer func() { _ = apiClient.Close() }()

		manager, err := docker.NewContainerManager(apiClient)
		if err != nil {
			logrus.WithError(err).Debugf("container probe %q failed", name)

			return false
		}

		running, err := manager.IsRunning(ctx, name)
		if err != nil {
			logrus.WithError(err).Debugf("container probe %q failed", name)

			return false
		}

		return running
	}
}
