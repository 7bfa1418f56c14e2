// Package k8s provides Kubernetes client configuration and connectivity checks.
//
// Provisioning only needs two things from a cluster: a clientset built from a
// kubeconfig (BuildRESTConfig, NewClientset) and a lightweight answer to "is
// the API server responding" (CheckAPIServerConnectivity). Anything heavier,
// such as applying workloads, is out of scope.
package k8s
