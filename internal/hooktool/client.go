// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

package hooktool

import (
	"encoding/json"
	"strings"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"github.com/gruyaume/ausf-operator/core/status"
)

// Client invokes Juju hook tools on behalf of the charm.
type Client struct {
	runner CommandRunner
}

// NewClient returns a Client running hook tools with the given runner.
// A nil runner means tools are executed directly.
func NewClient(runner CommandRunner) *Client {
	if runner == nil {
		runner = defaultRunner{}
	}
	return &Client{runner: runner}
}

// SetStatus sets the workload status of the unit.
func (c *Client) SetStatus(info status.StatusInfo) error {
	if !status.KnownWorkloadStatus(info.Status) {
		return errors.NotValidf("workload status %q", info.Status)
	}
	_, err := c.runner.RunCommand(RunParams{
		Name: "status-set",
		Args: []string{info.Status.String(), info.Message},
	})
	return errors.Trace(err)
}

// RelationIDs returns the ids of the established relations with the
// given name, sorted.
func (c *Client) RelationIDs(name string) ([]string, error) {
	out, err := c.runner.RunCommand(RunParams{
		Name: "relation-ids",
		Args: []string{name, "--format=json"},
	})
	if err != nil {
		return nil, errors.Annotatef(err, "cannot list %q relations", name)
	}
	var ids []string
	if err := json.Unmarshal(out, &ids); err != nil {
		return nil, errors.Trace(err)
	}
	return ids, nil
}

// RemoteApplication returns the name of the application on the other
// side of the given relation.
func (c *Client) RemoteApplication(relationID string) (string, error) {
	out, err := c.runner.RunCommand(RunParams{
		Name: "relation-list",
		Args: []string{"-r", relationID, "--app", "--format=json"},
	})
	if err != nil {
		return "", errors.Annotatef(err, "cannot list relation %q", relationID)
	}
	var application string
	if err := json.Unmarshal(out, &application); err != nil {
		return "", errors.Trace(err)
	}
	return application, nil
}

// ApplicationSettings returns the application databag published by the
// given application on the given relation.
func (c *Client) ApplicationSettings(relationID, application string) (map[string]string, error) {
	out, err := c.runner.RunCommand(RunParams{
		Name: "relation-get",
		Args: []string{"-r", relationID, "-", application, "--app", "--format=json"},
	})
	if err != nil {
		return nil, errors.Annotatef(err, "cannot read %q settings on relation %q", application, relationID)
	}
	var settings map[string]string
	if err := json.Unmarshal(out, &settings); err != nil {
		return nil, errors.Trace(err)
	}
	return settings, nil
}

// PrivateAddress returns the private address of the unit.
func (c *Client) PrivateAddress() (string, error) {
	out, err := c.runner.RunCommand(RunParams{
		Name: "unit-get",
		Args: []string{"private-address"},
	})
	if err != nil {
		return "", errors.Annotate(err, "cannot get private address")
	}
	return strings.TrimSpace(string(out)), nil
}

// JujuLog sends a log line to the Juju log at the given level.
func (c *Client) JujuLog(level, message string) error {
	_, err := c.runner.RunCommand(RunParams{
		Name: "juju-log",
		Args: []string{"--log-level", level, message},
	})
	return errors.Trace(err)
}

// StateGet returns the value stored in the unit state under key, or an
// empty string when nothing is stored there.
func (c *Client) StateGet(key string) (string, error) {
	out, err := c.runner.RunCommand(RunParams{
		Name: "state-get",
		Args: []string{key},
	})
	if err != nil {
		return "", errors.Annotatef(err, "cannot read unit state %q", key)
	}
	return strings.TrimSpace(string(out)), nil
}

// StateSet stores value in the unit state under key.
func (c *Client) StateSet(key, value string) error {
	input, err := yaml.Marshal(map[string]string{key: value})
	if err != nil {
		return errors.Trace(err)
	}
	_, err = c.runner.RunCommand(RunParams{
		Name:  "state-set",
		Args:  []string{"--file", "-"},
		Input: input,
	})
	return errors.Annotatef(err, "cannot write unit state %q", key)
}

// StateDelete removes key from the unit state.
func (c *Client) StateDelete(key string) error {
	_, err := c.runner.RunCommand(RunParams{
		Name: "state-delete",
		Args: []string{key},
	})
	return errors.Annotatef(err, "cannot delete unit state %q", key)
}
