// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

// Package pebble drives a workload container through the pebble daemon
// the container agent runs in it.
package pebble

import (
	"bytes"
	stderrors "errors"
	"path/filepath"

	"github.com/canonical/pebble/client"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("ausf.pebble")

// API captures the part of the pebble client the charm relies on.
type API interface {
	SysInfo() (*client.SysInfo, error)
	Push(opts *client.PushOptions) error
	ListFiles(opts *client.ListFilesOptions) ([]*client.FileInfo, error)
	AddLayer(opts *client.AddLayerOptions) error
	Replan(opts *client.ServiceOptions) (string, error)
	WaitChange(id string, opts *client.WaitChangeOptions) (*client.Change, error)
}

// SocketPath returns the path of the pebble socket the unit agent
// mounts into the charm container for the named workload container.
func SocketPath(containerName string) string {
	return filepath.Join("/charm/containers", containerName, "pebble.socket")
}

// Container is a workload container reachable over its pebble socket.
type Container struct {
	name string
	api  API
}

// NewContainer returns a Container driven through the given API.
func NewContainer(name string, api API) *Container {
	return &Container{name: name, api: api}
}

// NewLocalContainer returns a Container for the named workload
// container of this unit, dialled over its pebble socket.
func NewLocalContainer(name string) (*Container, error) {
	pc, err := client.New(&client.Config{Socket: SocketPath(name)})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return NewContainer(name, pc), nil
}

// Name returns the workload container name.
func (c *Container) Name() string {
	return c.name
}

// CanConnect reports whether the pebble daemon in the container is
// ready to take requests.
func (c *Container) CanConnect() bool {
	if _, err := c.api.SysInfo(); err != nil {
		logger.Debugf("container %q not reachable: %v", c.name, err)
		return false
	}
	return true
}

// Exists reports whether a file exists at path in the container.
func (c *Container) Exists(path string) (bool, error) {
	_, err := c.api.ListFiles(&client.ListFilesOptions{
		Path:   path,
		Itself: true,
	})
	if err != nil {
		var apiErr *client.Error
		if stderrors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			return false, nil
		}
		return false, errors.Annotatef(err, "cannot stat %q in container %q", path, c.name)
	}
	return true, nil
}

// Push writes data to path in the container, creating missing parent
// directories.
func (c *Container) Push(path string, data []byte) error {
	err := c.api.Push(&client.PushOptions{
		Source:      bytes.NewReader(data),
		Path:        path,
		MakeDirs:    true,
		Permissions: 0o644,
	})
	if err != nil {
		return errors.Annotatef(err, "cannot push %q to container %q", path, c.name)
	}
	logger.Debugf("pushed %q to container %q", path, c.name)
	return nil
}

// ApplyLayer submits the layer under the given label, merging it into
// any layer already carrying that label.
func (c *Container) ApplyLayer(label string, layer Layer) error {
	data, err := layer.YAML()
	if err != nil {
		return errors.Trace(err)
	}
	err = c.api.AddLayer(&client.AddLayerOptions{
		Combine:   true,
		Label:     label,
		LayerData: data,
	})
	return errors.Annotatef(err, "cannot add layer %q to container %q", label, c.name)
}

// Replan asks pebble to restart any service whose configuration
// changed, and waits for the change to complete.
func (c *Container) Replan() error {
	changeID, err := c.api.Replan(&client.ServiceOptions{})
	if err != nil {
		return errors.Annotatef(err, "cannot replan container %q", c.name)
	}
	change, err := c.api.WaitChange(client.ChangeID(changeID), nil)
	if err != nil {
		return errors.Annotatef(err, "cannot wait for replan of container %q", c.name)
	}
	if change.Err != "" {
		return errors.Errorf("replan of container %q failed: %s", c.name, change.Err)
	}
	logger.Debugf("replanned container %q", c.name)
	return nil
}
