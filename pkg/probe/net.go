package probe

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/sirupsen/logrus"
)

const (
	// dialTimeout bounds a single TCP connection attempt.
	dialTimeout = 2 * time.Second

	// httpTimeout bounds a single HTTP readiness request.
	httpTimeout = 2 * time.Second
)

// TCPPort reports whether something accepts TCP connections on the given
// host and port.
func TCPPort(host string, port nat.Port) Probe {
	return func(ctx context.Context) bool {
		dialer := net.Dialer{Timeout: dialTimeout}
		address := net.JoinHostPort(host, port.Port())

		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			logrus.WithError(err).Debugf("tcp probe %q failed", address)

			return false
		}

		_ = conn.Close()

		return true
	}
}

// HTTP reports whether an HTTP server answers at the given URL. Any response
// below 500 counts as responsive: a CI server redirecting to its login page
// is up even though it refuses anonymous access.
func HTTP(url string) Probe {
	return func(ctx context.Context) bool {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			logrus.WithError(err).Debugf("http probe %q failed to build request", url)

			return false
		}

		httpClient := &http.Client{Timeout: httpTimeout}

		resp, err := httpClient.Do(req)
		if err != nil {
			logrus.WithError(err).Debugf("http probe %q failed", url)

			return false
		}

		_ = resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			logrus.Debugf("http probe %q returned status %d", url, resp.StatusCode)

			return false
		}

		return true
	}
}
