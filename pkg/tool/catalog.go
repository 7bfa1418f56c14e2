package tool

import (
	"fmt"
	"runtime"

	v1alpha1 "github.com/devrig-sh/devrig/pkg/apis/rig/v1alpha1"
	"github.com/devrig-sh/devrig/pkg/action"
	"github.com/devrig-sh/devrig/pkg/client/docker"
	"github.com/devrig-sh/devrig/pkg/poll"
	"github.com/devrig-sh/devrig/pkg/probe"
	"github.com/docker/go-connections/nat"
)

const (
	// minikubeContext is the kubeconfig context minikube registers its
	// cluster under.
	minikubeContext = "minikube"

	// CI server container configuration.

	jenkinsImage              = "jenkins/jenkins:lts"
	jenkinsContainer          = "jenkins"
	jenkinsPort      nat.Port = "8080/tcp"
	jenkinsHostPort           = 8080
	jenkinsVolume             = "jenkins_home"
	jenkinsDataPath           = "/var/jenkins_home"
	jenkinsURL                = "http://127.0.0.1:8080"
)

// terraformAptScript wires up HashiCorp's apt repository before installing.
// Terraform is not in the distribution archives, so the repo setup is part
// of the install.
const terraformAptScript = `wget -O- https://apt.releases.hashicorp.com/gpg | ` +
	`sudo gpg --dearmor -o /usr/share/keyrings/hashicorp-archive-keyring.gpg && ` +
	`echo "deb [signed-by=/usr/share/keyrings/hashicorp-archive-keyring.gpg] ` +
	`https://apt.releases.hashicorp.com $(lsb_release -cs) main" | ` +
	`sudo tee /etc/apt/sources.list.d/hashicorp.list && ` +
	`sudo apt-get update && sudo apt-get install -y terraform`

type builtinBuilder struct {
	name  string
	build func(platform v1alpha1.Platform, opts Options) *Descriptor
}

// builtinBuilders returns the catalog in presentation order. A builder
// returns nil when it has no recipe for the platform.
func builtinBuilders() []builtinBuilder {
	return []builtinBuilder{
		{name: "docker", build: buildDocker},
		{name: "kubernetes", build: buildKubernetes},
		{name: "jenkins", build: buildJenkins},
		{name: "ansible", build: buildAnsible},
		{name: "terraform", build: buildTerraform},
	}
}

// smokePolicy is the poll policy for one-shot verification probes on
// CLI-only tools. One attempt, no waiting.
func smokePolicy() poll.Policy {
	return poll.Policy{MaxAttempts: 1, Interval: 0}
}

func buildDocker(platform v1alpha1.Platform, opts Options) *Descriptor {
	var install, start action.Action

	guidance := "run `docker run hello-world` to verify the engine end to end"

	switch platform {
	case v1alpha1.PlatformDarwin:
		install = action.BrewInstallCask(opts.Runner, "docker")
		start = action.OpenApp(opts.Runner, "Docker")
	case v1alpha1.PlatformApt, v1alpha1.PlatformWSL:
		install = action.AptGetInstall(opts.Runner, "docker.io")
		start = action.SystemctlStart(opts.Runner, "docker")

		if platform == v1alpha1.PlatformWSL {
			guidance = "if you use Docker Desktop's WSL integration, " +
				"enable it for this distro instead of the native service"
		}
	case v1alpha1.PlatformDnf:
		install = action.DnfInstall(opts.Runner, "moby-engine")
		start = action.SystemctlStart(opts.Runner, "docker")
	case v1alpha1.PlatformWindows:
		install = action.ChocoInstall(opts.Runner, "docker-desktop")
		start = action.Command(
			opts.Runner,
			"powershell", "-NoProfile", "-Command", "Start-Process 'Docker Desktop'",
		)
	default:
		return nil
	}

	daemonUp := probe.DockerDaemon(opts.DockerFactory)

	return &Descriptor{
		Name:     "docker",
		Platform: platform,
		Summary:  "container engine backing the kubernetes and jenkins tools",
		Install:  StepSpec{Probe: probe.Binary("docker"), Action: install},
		Start:    &StepSpec{Probe: daemonUp, Action: start},
		Readiness: &ReadinessSpec{
			Probe:  daemonUp,
			Policy: opts.Poll,
		},
		Guidance: guidance,
	}
}

func buildKubernetes(platform v1alpha1.Platform, opts Options) *Descriptor {
	var install action.Action

	switch platform {
	case v1alpha1.PlatformDarwin:
		install = action.Sequence(
			action.BrewInstall(opts.Runner, "minikube"),
			action.BrewInstall(opts.Runner, "kubectl"),
		)
	case v1alpha1.PlatformApt, v1alpha1.PlatformDnf, v1alpha1.PlatformWSL:
		install = linuxClusterToolInstall(opts.Runner)
	case v1alpha1.PlatformWindows:
		install = action.Sequence(
			action.ChocoInstall(opts.Runner, "minikube"),
			action.ChocoInstall(opts.Runner, "kubernetes-cli"),
		)
	default:
		return nil
	}

	return &Descriptor{
		Name:          "kubernetes",
		Platform:      platform,
		Summary:       "local single-node cluster via minikube",
		Prerequisites: []string{"docker"},
		Install: StepSpec{
			Probe:  probe.All(probe.Binary("minikube"), probe.Binary("kubectl")),
			Action: install,
		},
		Start: &StepSpec{
			Probe:  probe.Command("minikube", "status"),
			Action: action.Command(opts.Runner, "minikube", "start", "--driver=docker"),
		},
		Readiness: &ReadinessSpec{
			Probe:  probe.KubernetesAPI(opts.Kubeconfig, opts.KubeContext),
			Policy: opts.Poll,
		},
		Guidance: "run `kubectl get nodes` to inspect the cluster",
	}
}

// linuxClusterToolInstall fetches minikube and kubectl from their release
// channels. Neither ships in the distribution archives.
func linuxClusterToolInstall(runner action.Runner) action.Action {
	arch := runtime.GOARCH

	minikubeScript := fmt.Sprintf(
		"curl -fsSL -o /tmp/minikube "+
			"https://storage.googleapis.com/minikube/releases/latest/minikube-linux-%s && "+
			"sudo install -m 0755 /tmp/minikube /usr/local/bin/minikube",
		arch,
	)
	kubectlScript := fmt.Sprintf(
		`curl -fsSL -o /tmp/kubectl "https://dl.k8s.io/release/`+
			`$(curl -fsSL https://dl.k8s.io/release/stable.txt)/bin/linux/%s/kubectl" && `+
			"sudo install -m 0755 /tmp/kubectl /usr/local/bin/kubectl",
		arch,
	)

	return action.Sequence(
		action.Command(runner, "sh", "-c", minikubeScript),
		action.Command(runner, "sh", "-c", kubectlScript),
	)
}

func buildJenkins(platform v1alpha1.Platform, opts Options) *Descriptor {
	if !platform.IsValid() {
		return nil
	}

	containerSpec := docker.ContainerSpec{
		Name:          jenkinsContainer,
		Image:         jenkinsImage,
		ContainerPort: jenkinsPort,
		HostPort:      jenkinsHostPort,
		VolumeName:    jenkinsVolume,
		DataPath:      jenkinsDataPath,
	}

	running := probe.DockerContainerRunning(opts.DockerFactory, jenkinsContainer)

	return &Descriptor{
		Name:          "jenkins",
		Platform:      platform,
		Summary:       "CI server running as a container",
		Prerequisites: []string{"docker"},
		Install: StepSpec{
			Probe: probe.Any(
				running,
				probe.DockerImagePresent(opts.DockerFactory, jenkinsImage),
			),
			Action: action.PullImage(opts.DockerFactory, jenkinsImage),
		},
		Start: &StepSpec{
			Probe:  running,
			Action: action.StartContainer(opts.DockerFactory, containerSpec),
		},
		Readiness: &ReadinessSpec{
			Probe:  probe.HTTP(jenkinsURL),
			Policy: opts.Poll,
		},
		Guidance: "open http://localhost:8080 and retrieve the initial admin password " +
			"from /var/jenkins_home/secrets/initialAdminPassword in the jenkins container",
	}
}

func buildAnsible(platform v1alpha1.Platform, opts Options) *Descriptor {
	var install action.Action

	switch platform {
	case v1alpha1.PlatformDarwin:
		install = action.BrewInstall(opts.Runner, "ansible")
	case v1alpha1.PlatformApt, v1alpha1.PlatformWSL:
		install = action.AptGetInstall(opts.Runner, "ansible")
	case v1alpha1.PlatformDnf:
		install = action.DnfInstall(opts.Runner, "ansible")
	case v1alpha1.PlatformWindows:
		install = action.PipInstall(opts.Runner, "ansible")
	default:
		return nil
	}

	return &Descriptor{
		Name:     "ansible",
		Platform: platform,
		Summary:  "configuration automation CLI",
		Install:  StepSpec{Probe: probe.Binary("ansible"), Action: install},
		Readiness: &ReadinessSpec{
			Probe:  probe.Command("ansible", "--version"),
			Policy: smokePolicy(),
		},
		Guidance: "try `ansible localhost -m ping` to verify local automation",
	}
}

func buildTerraform(platform v1alpha1.Platform, opts Options) *Descriptor {
	var install action.Action

	switch platform {
	case v1alpha1.PlatformDarwin:
		install = action.Sequence(
			action.Command(opts.Runner, "brew", "tap", "hashicorp/tap"),
			action.BrewInstall(opts.Runner, "hashicorp/tap/terraform"),
		)
	case v1alpha1.PlatformApt, v1alpha1.PlatformWSL:
		install = action.Command(opts.Runner, "sh", "-c", terraformAptScript)
	case v1alpha1.PlatformDnf:
		install = action.Sequence(
			action.DnfInstall(opts.Runner, "dnf-plugins-core"),
			action.Command(
				opts.Runner,
				"sudo", "dnf", "config-manager", "--add-repo",
				"https://rpm.releases.hashicorp.com/fedora/hashicorp.repo",
			),
			action.DnfInstall(opts.Runner, "terraform"),
		)
	case v1alpha1.PlatformWindows:
		install = action.ChocoInstall(opts.Runner, "terraform")
	default:
		return nil
	}

	return &Descriptor{
		Name:     "terraform",
		Platform: platform,
		Summary:  "infrastructure-as-code CLI",
		Install:  StepSpec{Probe: probe.Binary("terraform"), Action: install},
		Readiness: &ReadinessSpec{
			Probe:  probe.Command("terraform", "version"),
			Policy: smokePolicy(),
		},
	}
}
