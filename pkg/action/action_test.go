//nolint:err113 // Tests use dynamic errors for fake runner behaviors
package action_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devrig-sh/devrig/pkg/action"
	"github.com/devrig-sh/devrig/pkg/client/docker"
	"github.com/docker/docker/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records every command line and fails the ones listed in failOn.
type fakeRunner struct {
	commands []string
	failOn   string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	commandLine := strings.Join(append([]string{name}, args...), " ")
	f.commands = append(f.commands, commandLine)

	if f.failOn != "" && strings.Contains(commandLine, f.failOn) {
		return errors.New("command failed: " + commandLine)
	}

	return nil
}

func TestExecRunner_Success(t *testing.T) {
	binDir := t.TempDir()
	script := filepath.Join(binDir, "devrig-fake-install")

	err := os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0o755)
	require.NoError(t, err)

	err = action.NewExecRunner().Run(context.Background(), script)

	require.NoError(t, err)
}

func TestExecRunner_FailureCarriesOutput(t *testing.T) {
	binDir := t.TempDir()
	script := filepath.Join(binDir, "devrig-fake-install")

	err := os.WriteFile(script, []byte("#!/bin/sh\necho 'no such formula'\nexit 1\n"), 0o755)
	require.NoError(t, err)

	err = action.NewExecRunner().Run(context.Background(), script)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such formula")
	assert.Contains(t, err.Error(), "failed")
}

func TestExecRunner_MissingBinary(t *testing.T) {
	t.Parallel()

	err := action.NewExecRunner().Run(context.Background(), "devrig-definitely-missing-binary")

	require.Error(t, err)
}

func TestCommand_DelegatesToRunner(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}

	err := action.Command(runner, "brew", "install", "ansible")(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"brew install ansible"}, runner.commands)
}

func TestSequence_RunsInOrder(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	sequence := action.Sequence(
		action.Command(runner, "first"),
		action.Command(runner, "second"),
	)

	err := sequence(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, runner.commands)
}

func TestSequence_StopsAtFirstError(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{failOn: "first"}
	sequence := action.Sequence(
		action.Command(runner, "first"),
		action.Command(runner, "second"),
	)

	err := sequence(context.Background())

	require.Error(t, err)
	assert.Equal(t, []string{"first"}, runner.commands)
}

func TestCatalogHelpers(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		build    func(runner action.Runner) action.Action
		expected []string
	}{
		{
			name: "brew install",
			build: func(runner action.Runner) action.Action {
				return action.BrewInstall(runner, "minikube")
			},
			expected: []string{"brew install minikube"},
		},
		{
			name: "brew install cask",
			build: func(runner action.Runner) action.Action {
				return action.BrewInstallCask(runner, "docker")
			},
			expected: []string{"brew install --cask docker"},
		},
		{
			name: "apt-get install updates index first",
			build: func(runner action.Runner) action.Action {
				return action.AptGetInstall(runner, "docker.io", "ansible")
			},
			expected: []string{
				"sudo apt-get update",
				"sudo apt-get install -y docker.io ansible",
			},
		},
		{
			name: "dnf install",
			build: func(runner action.Runner) action.Action {
				return action.DnfInstall(runner, "terraform")
			},
			expected: []string{"sudo dnf install -y terraform"},
		},
		{
			name: "choco install",
			build: func(runner action.Runner) action.Action {
				return action.ChocoInstall(runner, "minikube")
			},
			expected: []string{"choco install -y minikube"},
		},
		{
			name: "pip install",
			build: func(runner action.Runner) action.Action {
				return action.PipInstall(runner, "ansible")
			},
			expected: []string{"pip3 install --user ansible"},
		},
		{
			name: "systemctl start",
			build: func(runner action.Runner) action.Action {
				return action.SystemctlStart(runner, "docker")
			},
			expected: []string{"sudo systemctl enable --now docker"},
		},
		{
			name: "open app",
			build: func(runner action.Runner) action.Action {
				return action.OpenApp(runner, "Docker")
			},
			expected: []string{"open -a Docker"},
		},
		{
			name: "brew services start",
			build: func(runner action.Runner) action.Action {
				return action.BrewServicesStart(runner, "jenkins-lts")
			},
			expected: []string{"brew services start jenkins-lts"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			runner := &fakeRunner{}

			err := testCase.build(runner)(context.Background())

			require.NoError(t, err)
			assert.Equal(t, testCase.expected, runner.commands)
		})
	}
}

func TestStartContainer_FactoryFailure(t *testing.T) {
	t.Parallel()

	factory := func() (client.APIClient, error) {
		return nil, errors.New("docker socket unavailable")
	}

	err := action.StartContainer(factory, docker.ContainerSpec{Name: "jenkins"})(
		context.Background(),
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create docker client")
}

func TestPullImage_FactoryFailure(t *testing.T) {
	t.Parallel()

	factory := func() (client.APIClient, error) {
		return nil, errors.New("docker socket unavailable")
	}

	err := action.PullImage(factory, "jenkins/jenkins:lts")(context.Background())

	require.Error(t, err)
}
