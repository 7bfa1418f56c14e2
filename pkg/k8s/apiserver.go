package k8s

import (
	"fmt"

	"k8s.io/client-go/kubernetes"
)

// CheckAPIServerConnectivity verifies the cluster's API server answers a
// discovery request. ServerVersion is used as a lightweight health check; a
// cluster whose control plane is still booting fails it until the API server
// accepts connections.
func CheckAPIServerConnectivity(clientset kubernetes.Interface) error {
	_, err := clientset.Discovery().ServerVersion()
	if err != nil {
		return fmt.Errorf("API server connectivity check failed: %w", err)
	}

	return nil
}
