// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

package pebble

import (
	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

// Layer describes a pebble configuration layer.
type Layer struct {
	Summary     string             `yaml:"summary"`
	Description string             `yaml:"description"`
	Services    map[string]Service `yaml:"services"`
}

// Service is a single service entry of a Layer.
type Service struct {
	Override    string            `yaml:"override"`
	Startup     string            `yaml:"startup"`
	Command     string            `yaml:"command"`
	Environment map[string]string `yaml:"environment,omitempty"`
}

// YAML serializes the layer for submission to pebble.
func (l Layer) YAML() ([]byte, error) {
	data, err := yaml.Marshal(l)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return data, nil
}
