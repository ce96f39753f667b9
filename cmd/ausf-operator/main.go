// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/gruyaume/ausf-operator/internal/ausf"
	"github.com/gruyaume/ausf-operator/internal/charm"
	"github.com/gruyaume/ausf-operator/internal/hooktool"
	"github.com/gruyaume/ausf-operator/internal/kubernetes"
	"github.com/gruyaume/ausf-operator/internal/nrf"
	"github.com/gruyaume/ausf-operator/internal/pebble"
)

var logger = loggo.GetLogger("ausf.cmd")

func main() {
	os.Exit(Main())
}

// Main is not redundant with main(), because it provides an entry
// point for testing with a controlled exit code.
func Main() int {
	env, err := hooktool.ReadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ausf-operator: %v\n", err)
		return 1
	}
	tools := hooktool.NewClient(nil)
	if err := setupLogging(tools); err != nil {
		fmt.Fprintf(os.Stderr, "ausf-operator: %v\n", err)
		return 1
	}
	if err := dispatch(env, tools); err != nil {
		logger.Errorf("dispatch of %q failed: %v", env.HookName, err)
		return 1
	}
	return 0
}

// setupLogging routes everything logged by the charm, the Kubernetes
// client included, to the juju-log hook tool.
func setupLogging(client hooktool.JujuLogger) error {
	if _, err := loggo.ReplaceDefaultWriter(hooktool.NewLogWriter(client)); err != nil {
		return errors.Trace(err)
	}
	level := os.Getenv("JUJU_CHARM_LOG_LEVEL")
	if level == "" {
		level = "INFO"
	}
	if err := loggo.ConfigureLoggers("ausf=" + level); err != nil {
		return errors.Trace(err)
	}
	kubernetes.RedirectKlog()
	return nil
}

func dispatch(env hooktool.Env, tools *hooktool.Client) error {
	container, err := pebble.NewLocalContainer(ausf.ContainerName)
	if err != nil {
		return errors.Trace(err)
	}
	ch, err := charm.New(charm.Config{
		Env:       env,
		Tools:     tools,
		Container: container,
		NRF:       nrf.NewRequirer(tools),
		NewPatcher: func() (charm.ServicePatcher, error) {
			return kubernetes.NewInClusterPatcher(env.ModelName)
		},
		Clock: clock.WallClock,
	})
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(ch.Dispatch(context.Background()))
}
