package k8s_test

import (
	"errors"
	"testing"

	"github.com/devrig-sh/devrig/pkg/k8s"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/version"
	"k8s.io/client-go/discovery"
	fakediscovery "k8s.io/client-go/discovery/fake"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"
)

// errAPIServerUnavailable simulates an API server connection error.
var errAPIServerUnavailable = errors.New("connection refused")

// failingDiscoveryClient always fails ServerVersion requests.
type failingDiscoveryClient struct {
	*fakediscovery.FakeDiscovery
}

func (c *failingDiscoveryClient) ServerVersion() (*version.Info, error) {
	return nil, errAPIServerUnavailable
}

// stubClientset wraps a fake clientset but returns our failing discovery client.
type stubClientset struct {
	kubernetes.Interface

	discovery *failingDiscoveryClient
}

func (s *stubClientset) Discovery() discovery.DiscoveryInterface {
	return s.discovery
}

func newUnavailableClientset(t *testing.T) kubernetes.Interface {
	t.Helper()

	clientset := fake.NewClientset()

	fakeDiscovery, ok := clientset.Discovery().(*fakediscovery.FakeDiscovery)
	if !ok {
		t.Fatal("expected Discovery() to return *fakediscovery.FakeDiscovery")
	}

	return &stubClientset{
		Interface: clientset,
		discovery: &failingDiscoveryClient{FakeDiscovery: fakeDiscovery},
	}
}

func TestCheckAPIServerConnectivity(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name        string
		setupClient func(t *testing.T) kubernetes.Interface
		wantErr     bool
		errContains string
	}

	tests := []testCase{
		{
			name: "returns nil when API server responds",
			setupClient: func(_ *testing.T) kubernetes.Interface {
				return fake.NewClientset()
			},
			wantErr: false,
		},
		{
			name:        "returns error when API server is unavailable",
			setupClient: newUnavailableClientset,
			wantErr:     true,
			errContains: "API server connectivity check failed",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			client := testCase.setupClient(t)
			err := k8s.CheckAPIServerConnectivity(client)

			if testCase.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), testCase.errContains)
				require.ErrorIs(t, err, errAPIServerUnavailable)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
