package probe_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/devrig-sh/devrig/pkg/probe"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installFakeBinary writes an executable shell script into a fresh directory
// and prepends that directory to PATH for the duration of the test.
func installFakeBinary(t *testing.T, name, script string) {
	t.Helper()

	binDir := t.TempDir()
	path := filepath.Join(binDir, name)

	err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755)
	require.NoError(t, err)

	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestBinary_Found(t *testing.T) {
	installFakeBinary(t, "devrig-fake-tool", "exit 0")

	found := probe.Binary("devrig-fake-tool")(context.Background())

	assert.True(t, found)
}

func TestBinary_NotFound(t *testing.T) {
	t.Parallel()

	found := probe.Binary("devrig-definitely-missing-binary")(context.Background())

	assert.False(t, found)
}

func TestCommand_ExitZero(t *testing.T) {
	installFakeBinary(t, "devrig-fake-status", "exit 0")

	ok := probe.Command("devrig-fake-status")(context.Background())

	assert.True(t, ok)
}

func TestCommand_ExitNonZero(t *testing.T) {
	installFakeBinary(t, "devrig-fake-status", "exit 3")

	ok := probe.Command("devrig-fake-status")(context.Background())

	assert.False(t, ok)
}

func TestCommand_MissingBinary(t *testing.T) {
	t.Parallel()

	ok := probe.Command("devrig-definitely-missing-binary")(context.Background())

	assert.False(t, ok)
}

func TestFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(path, []byte("ok"), 0o600))

	assert.True(t, probe.File(path)(context.Background()))
	assert.False(t, probe.File(path+".missing")(context.Background()))
}

func TestMinVersion(t *testing.T) {
	testCases := []struct {
		name       string
		output     string
		constraint string
		expected   bool
	}{
		{
			name:       "satisfied",
			output:     "Docker version 28.1.1, build a1b2c3",
			constraint: ">= 24.0",
			expected:   true,
		},
		{
			name:       "not satisfied",
			output:     "Docker version 20.10.8, build f0df350",
			constraint: ">= 24.0",
			expected:   false,
		},
		{
			name:       "two part version",
			output:     "v1.34",
			constraint: ">= 1.30",
			expected:   true,
		},
		{
			name:       "no version in output",
			output:     "no numbers here",
			constraint: ">= 1.0",
			expected:   false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			installFakeBinary(t, "devrig-fake-versioned", "echo '"+testCase.output+"'")

			ok := probe.MinVersion(
				"devrig-fake-versioned",
				[]string{"--version"},
				testCase.constraint,
			)(context.Background())

			assert.Equal(t, testCase.expected, ok)
		})
	}
}

func TestMinVersion_MissingBinary(t *testing.T) {
	t.Parallel()

	ok := probe.MinVersion(
		"devrig-definitely-missing-binary",
		[]string{"--version"},
		">= 1.0",
	)(context.Background())

	assert.False(t, ok)
}

func TestMinVersion_InvalidConstraint(t *testing.T) {
	installFakeBinary(t, "devrig-fake-versioned", "echo 1.2.3")

	ok := probe.MinVersion(
		"devrig-fake-versioned",
		[]string{"--version"},
		"not a constraint",
	)(context.Background())

	assert.False(t, ok)
}

func TestTCPPort(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	defer func() { _ = listener.Close() }()

	addr, ok := listener.Addr().(*net.TCPAddr)
	require.True(t, ok)

	port, err := nat.NewPort("tcp", strconv.Itoa(addr.Port))
	require.NoError(t, err)

	assert.True(t, probe.TCPPort("127.0.0.1", port)(context.Background()))
}

func TestTCPPort_Refused(t *testing.T) {
	t.Parallel()

	// Bind then close a listener so the port is known to be unoccupied.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr, ok := listener.Addr().(*net.TCPAddr)
	require.True(t, ok)
	require.NoError(t, listener.Close())

	port, err := nat.NewPort("tcp", strconv.Itoa(addr.Port))
	require.NoError(t, err)

	assert.False(t, probe.TCPPort("127.0.0.1", port)(context.Background()))
}

func TestHTTP(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		status   int
		expected bool
	}{
		{name: "ok", status: http.StatusOK, expected: true},
		{name: "auth redirect still responsive", status: http.StatusForbidden, expected: true},
		{name: "not found still responsive", status: http.StatusNotFound, expected: true},
		{name: "server error", status: http.StatusServiceUnavailable, expected: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(
				func(writer http.ResponseWriter, _ *http.Request) {
					writer.WriteHeader(testCase.status)
				},
			))
			defer server.Close()

			assert.Equal(
				t,
				testCase.expected,
				probe.HTTP(server.URL)(context.Background()),
			)
		})
	}
}

func TestHTTP_Unreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	assert.False(t, probe.HTTP(server.URL)(context.Background()))
}

func TestAll(t *testing.T) {
	t.Parallel()

	yes := func(_ context.Context) bool { return true }
	no := func(_ context.Context) bool { return false }

	assert.True(t, probe.All(yes, yes)(context.Background()))
	assert.False(t, probe.All(yes, no)(context.Background()))
	assert.True(t, probe.All()(context.Background()))
}

func TestAll_ShortCircuits(t *testing.T) {
	t.Parallel()

	invoked := false
	no := func(_ context.Context) bool { return false }
	recording := func(_ context.Context) bool {
		invoked = true

		return true
	}

	assert.False(t, probe.All(no, recording)(context.Background()))
	assert.False(t, invoked)
}

func TestAny(t *testing.T) {
	t.Parallel()

	yes := func(_ context.Context) bool { return true }
	no := func(_ context.Context) bool { return false }

	assert.True(t, probe.Any(no, yes)(context.Background()))
	assert.False(t, probe.Any(no, no)(context.Background()))
	assert.False(t, probe.Any()(context.Background()))
}
