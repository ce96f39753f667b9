// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

// Package charm reacts to dispatched Juju hooks by reconciling the
// AUSF workload with what the model provides: an nrf relation, a
// reachable container and a configuration file, in that order.
package charm

import (
	"context"
	"net"
	"path"

	"github.com/juju/clock"
	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	core "k8s.io/api/core/v1"

	"github.com/gruyaume/ausf-operator/core/status"
	"github.com/gruyaume/ausf-operator/internal/ausf"
	"github.com/gruyaume/ausf-operator/internal/hooktool"
	"github.com/gruyaume/ausf-operator/internal/nrf"
	"github.com/gruyaume/ausf-operator/internal/pebble"
)

var logger = loggo.GetLogger("ausf.charm")

const (
	installHook      = "install"
	upgradeCharmHook = "upgrade-charm"
)

// reconcileHooks are the hooks that trigger a reconciliation.
var reconcileHooks = set.NewStrings(
	ausf.ContainerName+"-pebble-ready",
	nrf.RelationName+"-relation-created",
	nrf.RelationName+"-relation-joined",
	nrf.RelationName+"-relation-changed",
)

// Tools is the part of the hook tool client the charm drives directly.
type Tools interface {
	status.StatusSetter
	StateClient
	PrivateAddress() (string, error)
}

// Container is the part of the workload container the charm drives.
type Container interface {
	CanConnect() bool
	Exists(path string) (bool, error)
	Push(path string, data []byte) error
	ApplyLayer(label string, layer pebble.Layer) error
	Replan() error
}

// NRFRequirer reads the nrf relation.
type NRFRequirer interface {
	Created() (bool, error)
	URL() (string, error)
}

// ServicePatcher rewrites the ports of the application service.
type ServicePatcher interface {
	Patch(ctx context.Context, serviceName string, ports []core.ServicePort) error
}

// Config holds a Charm's dependencies.
type Config struct {
	Env       hooktool.Env
	Tools     Tools
	Container Container
	NRF       NRFRequirer

	// NewPatcher builds the Kubernetes service patcher. It is only
	// called for the hooks that patch the service.
	NewPatcher func() (ServicePatcher, error)

	Clock clock.Clock
}

// Validate returns an error if the configuration is incomplete.
func (config Config) Validate() error {
	if config.Env.UnitName == "" {
		return errors.NotValidf("empty Env")
	}
	if config.Tools == nil {
		return errors.NotValidf("nil Tools")
	}
	if config.Container == nil {
		return errors.NotValidf("nil Container")
	}
	if config.NRF == nil {
		return errors.NotValidf("nil NRF")
	}
	if config.NewPatcher == nil {
		return errors.NotValidf("nil NewPatcher")
	}
	if config.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	return nil
}

// Charm processes one dispatched hook at a time.
type Charm struct {
	config   Config
	deferred *DeferredQueue
}

// New returns a Charm ready to dispatch hooks.
func New(config Config) (*Charm, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Charm{
		config:   config,
		deferred: NewDeferredQueue(config.Tools, config.Clock),
	}, nil
}

// Dispatch runs the hook named in the environment, after replaying any
// hooks deferred by earlier dispatches.
func (c *Charm) Dispatch(ctx context.Context) error {
	hook := c.config.Env.HookName
	logger.Infof("dispatching %q for unit %q", hook, c.config.Env.UnitName)

	if err := c.replayDeferred(ctx, hook); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(c.runHook(ctx, hook))
}

// replayDeferred redelivers queued hooks, oldest first. The queue is
// emptied first so a hook deferring again requeues itself. A queued
// hook matching the live one is dropped, the live run covers it.
func (c *Charm) replayDeferred(ctx context.Context, current string) error {
	notices, err := c.deferred.Pending()
	if err != nil {
		return errors.Trace(err)
	}
	if len(notices) == 0 {
		return nil
	}
	if err := c.deferred.Clear(); err != nil {
		return errors.Trace(err)
	}
	for _, notice := range notices {
		if notice.Hook == current {
			continue
		}
		logger.Debugf("replaying deferred hook %q queued at %v", notice.Hook, notice.QueuedAt)
		if err := c.runHook(ctx, notice.Hook); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (c *Charm) runHook(ctx context.Context, hook string) error {
	switch {
	case hook == installHook || hook == upgradeCharmHook:
		return errors.Trace(c.patchService(ctx))
	case reconcileHooks.Contains(hook):
		return errors.Trace(c.reconcile(hook))
	default:
		logger.Debugf("ignoring hook %q", hook)
		return nil
	}
}

// reconcile drives the workload towards the state the model asks for
// and reports the resulting unit status.
func (c *Charm) reconcile(hook string) error {
	snap, err := c.snapshot()
	if err != nil {
		return errors.Trace(err)
	}
	outcome := Decide(snap)

	if outcome.Defer {
		if err := c.deferred.Add(hook); err != nil {
			return errors.Trace(err)
		}
		logger.Infof("deferred hook %q: %s", hook, outcome.Status.Message)
	}
	if outcome.WriteConfig {
		if err := c.writeConfig(snap.NRFURL); err != nil {
			return errors.Trace(err)
		}
	}
	if outcome.ApplyLayer {
		if err := c.startWorkload(); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(c.config.Tools.SetStatus(outcome.Status))
}

// snapshot observes the model and container, stopping at the first
// gate the reconciler would refuse anyway.
func (c *Charm) snapshot() (Snapshot, error) {
	var snap Snapshot
	created, err := c.config.NRF.Created()
	if err != nil {
		return snap, errors.Trace(err)
	}
	snap.RelationCreated = created
	if !created {
		return snap, nil
	}
	snap.CanConnect = c.config.Container.CanConnect()
	if !snap.CanConnect {
		return snap, nil
	}
	url, err := c.config.NRF.URL()
	if err != nil {
		return snap, errors.Trace(err)
	}
	snap.NRFURL = url
	if url == "" {
		return snap, nil
	}
	written, err := c.config.Container.Exists(ausf.ConfigPath)
	if err != nil {
		return snap, errors.Trace(err)
	}
	snap.ConfigWritten = written
	return snap, nil
}

func (c *Charm) writeConfig(nrfURL string) error {
	hostname := ausf.Hostname(c.config.Env.ApplicationName, c.config.Env.ModelName)
	content, err := ausf.RenderConfig(nrfURL, hostname)
	if err != nil {
		return errors.Trace(err)
	}
	if err := c.config.Container.Push(ausf.ConfigPath, content); err != nil {
		return errors.Trace(err)
	}
	logger.Infof("pushed %s config file", path.Base(ausf.ConfigPath))
	return nil
}

func (c *Charm) startWorkload() error {
	podIP, err := c.config.Tools.PrivateAddress()
	if err != nil {
		return errors.Trace(err)
	}
	if net.ParseIP(podIP) == nil {
		return errors.NotValidf("pod address %q", podIP)
	}
	layer := ausf.WorkloadLayer(podIP)
	if err := c.config.Container.ApplyLayer(ausf.LayerName, layer); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(c.config.Container.Replan())
}

// patchService rewrites the application service ports so the SBI is
// reachable cluster wide.
func (c *Charm) patchService(ctx context.Context) error {
	patcher, err := c.config.NewPatcher()
	if err != nil {
		return errors.Trace(err)
	}
	ports := []core.ServicePort{{
		Name:     ausf.SBIPortName,
		Port:     ausf.SBIPort,
		Protocol: core.ProtocolTCP,
	}}
	return errors.Trace(patcher.Patch(ctx, c.config.Env.ApplicationName, ports))
}
