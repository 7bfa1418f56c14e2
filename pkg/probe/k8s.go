package probe

import (
	"context"

	"github.com/devrig-sh/devrig/pkg/k8s"
	"github.com/sirupsen/logrus"
)

// KubernetesAPI reports whether the cluster selected by the kubeconfig and
// context answers a discovery request. A missing kubeconfig means no cluster
// has ever been provisioned, which folds to false like any other failure.
func KubernetesAPI(kubeconfig, kubeContext string) Probe {
	return func(_ context.Context) bool {
		clientset, err := k8s.NewClientset(kubeconfig, kubeContext)
		if err != nil {
			logrus.WithError(err).Debug("kubernetes probe failed to build client")

			return false
		}

		err = k8s.CheckAPIServerConnectivity(clientset)
		if err != nil {
			logrus.WithError(err).Debug("kubernetes probe connectivity check failed")

			return false
		}

		return true
	}
}
