// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

// Package kubernetes patches the Kubernetes service of the application
// so the AUSF ports are reachable cluster wide.
package kubernetes

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	core "k8s.io/api/core/v1"
	meta "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8sclient "k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

var logger = loggo.GetLogger("ausf.kubernetes")

// ServicePatcher rewrites the ports of services in one namespace.
type ServicePatcher struct {
	client    k8sclient.Interface
	namespace string
}

// NewServicePatcher returns a patcher updating services in the given
// namespace through client.
func NewServicePatcher(client k8sclient.Interface, namespace string) *ServicePatcher {
	return &ServicePatcher{client: client, namespace: namespace}
}

// NewInClusterPatcher returns a patcher using the in-cluster service
// account. The namespace of a sidecar charm is its model name.
func NewInClusterPatcher(namespace string) (*ServicePatcher, error) {
	config, err := rest.InClusterConfig()
	if err != nil {
		return nil, errors.Trace(err)
	}
	client, err := k8sclient.NewForConfig(config)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return NewServicePatcher(client, namespace), nil
}

// Patch replaces the ports of the named service, leaving the rest of
// the service spec untouched. The service itself is created by Juju,
// a missing one is an error.
func (p *ServicePatcher) Patch(ctx context.Context, serviceName string, ports []core.ServicePort) error {
	api := p.client.CoreV1().Services(p.namespace)
	existing, err := api.Get(ctx, serviceName, meta.GetOptions{})
	if err != nil {
		return errors.Annotatef(err, "cannot get service %q", serviceName)
	}
	existing.Spec.Ports = ports
	if _, err := api.Update(ctx, existing, meta.UpdateOptions{}); err != nil {
		return errors.Annotatef(err, "cannot update service %q", serviceName)
	}
	logger.Debugf("patched ports of service %q in namespace %q", serviceName, p.namespace)
	return nil
}
