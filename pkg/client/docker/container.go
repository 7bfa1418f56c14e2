package docker

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

const (
	// ContainerHostIP is the host IP address to bind container ports to.
	ContainerHostIP = "127.0.0.1"

	// ContainerRestartPolicy defines the restart policy for managed containers.
	ContainerRestartPolicy = "unless-stopped"

	// containerRunningState is the engine-reported state of a running container.
	containerRunningState = "running"
)

// ContainerAPI is the subset of the Docker Engine API the container manager
// uses. *client.Client satisfies it; tests substitute a fake.
type ContainerAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerCreate(
		ctx context.Context,
		config *container.Config,
		hostConfig *container.HostConfig,
		networkingConfig *network.NetworkingConfig,
		platform *ocispec.Platform,
		containerName string,
	) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ImageInspect(
		ctx context.Context,
		imageID string,
		inspectOpts ...client.ImageInspectOption,
	) (image.InspectResponse, error)
	ImagePull(
		ctx context.Context,
		refStr string,
		options image.PullOptions,
	) (io.ReadCloser, error)
}

// Compile-time check that the full API client covers the manager's subset.
var _ ContainerAPI = (client.APIClient)(nil)

// ContainerSpec describes a long-running service container a tool provisions,
// such as a CI server. The spec carries everything needed to recreate the
// container from scratch and to restart it if it already exists but stopped.
type ContainerSpec struct {
	// Name is the exact container name. Lookups anchor on it, so two specs
	// must not share a name.
	Name string

	// Image is the image reference to pull and run.
	Image string

	// ContainerPort is the service port inside the container.
	ContainerPort nat.Port

	// HostPort is the host port the service port is published on. Zero means
	// no host binding.
	HostPort int

	// VolumeName names a volume mounted at DataPath so service state survives
	// container recreation. Empty means no volume.
	VolumeName string

	// DataPath is the mount target for VolumeName inside the container.
	DataPath string

	// Env holds extra environment variables in KEY=value form.
	Env []string
}

// ContainerManager ensures service containers exist and run. All operations
// are idempotent so a re-run after a partial failure converges instead of
// erroring on already-created resources.
type ContainerManager struct {
	api ContainerAPI
}

// NewContainerManager creates a container manager backed by the given API client.
func NewContainerManager(api ContainerAPI) (*ContainerManager, error) {
	if api == nil {
		return nil, fmt.Errorf("failed to create container manager: %w", ErrAPIClientNil)
	}

	return &ContainerManager{api: api}, nil
}

// IsRunning reports whether a container with the given exact name is running.
func (cm *ContainerManager) IsRunning(ctx context.Context, name string) (bool, error) {
	containers, err := cm.listByName(ctx, name)
	if err != nil {
		return false, err
	}

	if len(containers) == 0 {
		return false, nil
	}

	return containers[0].State == containerRunningState, nil
}

// Exists reports whether a container with the given exact name exists in any state.
func (cm *ContainerManager) Exists(ctx context.Context, name string) (bool, error) {
	containers, err := cm.listByName(ctx, name)
	if err != nil {
		return false, err
	}

	return len(containers) > 0, nil
}

// EnsureImage pulls an image unless it is already present locally.
func (cm *ContainerManager) EnsureImage(ctx context.Context, imageRef string) error {
	_, err := cm.api.ImageInspect(ctx, imageRef)
	if err == nil {
		return nil
	}

	reader, err := cm.api.ImagePull(ctx, imageRef, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %q: %w", imageRef, err)
	}

	// The pull completes only once its progress stream is drained.
	_, err = io.Copy(io.Discard, reader)
	closeErr := reader.Close()

	if err != nil {
		return fmt.Errorf("failed to read image pull output: %w", err)
	}

	if closeErr != nil {
		return fmt.Errorf("failed to close image pull reader: %w", closeErr)
	}

	return nil
}

// EnsureStarted brings the container described by spec into the running
// state. A running container is left alone, a stopped one is started, and a
// missing one is created from the spec and started.
func (cm *ContainerManager) EnsureStarted(ctx context.Context, spec ContainerSpec) error {
	containers, err := cm.listByName(ctx, spec.Name)
	if err != nil {
		return err
	}

	if len(containers) > 0 {
		if containers[0].State == containerRunningState {
			return nil
		}

		err = cm.api.ContainerStart(ctx, containers[0].ID, container.StartOptions{})
		if err != nil {
			return fmt.Errorf("failed to start container %q: %w", spec.Name, err)
		}

		return nil
	}

	return cm.createAndStart(ctx, spec)
}

// createAndStart creates a container from the spec and starts it. The image
// is pulled first if absent; named volumes referenced in mounts are created
// by the engine on demand.
func (cm *ContainerManager) createAndStart(ctx context.Context, spec ContainerSpec) error {
	err := cm.EnsureImage(ctx, spec.Image)
	if err != nil {
		return err
	}

	resp, err := cm.api.ContainerCreate(
		ctx,
		buildContainerConfig(spec),
		buildHostConfig(spec),
		nil,
		nil,
		spec.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to create container %q: %w", spec.Name, err)
	}

	err = cm.api.ContainerStart(ctx, resp.ID, container.StartOptions{})
	if err != nil {
		return fmt.Errorf("failed to start container %q: %w", spec.Name, err)
	}

	return nil
}

// listByName lists containers matching the exact name in any state.
func (cm *ContainerManager) listByName(
	ctx context.Context,
	name string,
) ([]container.Summary, error) {
	filterArgs := filters.NewArgs()
	// Anchor the name filter so "jenkins" does not match "jenkins-agent".
	filterArgs.Add("name", "^/"+name+"$")

	containers, err := cm.api.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	return containers, nil
}

// Configuration builders.

func buildContainerConfig(spec ContainerSpec) *container.Config {
	config := &container.Config{
		Image: spec.Image,
		Env:   spec.Env,
	}

	if spec.ContainerPort != "" {
		config.ExposedPorts = nat.PortSet{
			spec.ContainerPort: struct{}{},
		}
	}

	return config
}

func buildHostConfig(spec ContainerSpec) *container.HostConfig {
	portBindings := nat.PortMap{}
	if spec.ContainerPort != "" && spec.HostPort > 0 {
		portBindings[spec.ContainerPort] = []nat.PortBinding{
			{
				HostIP:   ContainerHostIP,
				HostPort: strconv.Itoa(spec.HostPort),
			},
		}
	}

	var mounts []mount.Mount
	if spec.VolumeName != "" && spec.DataPath != "" {
		mounts = append(mounts, mount.Mount{
			Type:   mount.TypeVolume,
			Source: spec.VolumeName,
			Target: spec.DataPath,
		})
	}

	return &container.HostConfig{
		PortBindings: portBindings,
		RestartPolicy: container.RestartPolicy{
			Name: ContainerRestartPolicy,
		},
		Mounts: mounts,
	}
}
