// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

// Package nrf implements the requirer side of the nrf relation.
package nrf

import (
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("ausf.nrf")

// RelationName is the name the relation carries in metadata.yaml.
const RelationName = "nrf"

// urlKey is the application databag key the NRF publishes its URL under.
const urlKey = "url"

// RelationClient is the part of the hook tool client needed to read
// the relation.
type RelationClient interface {
	RelationIDs(name string) ([]string, error)
	RemoteApplication(relationID string) (string, error)
	ApplicationSettings(relationID, application string) (map[string]string, error)
}

// Requirer reads what the NRF publishes over the nrf relation.
type Requirer struct {
	client RelationClient
}

// NewRequirer returns a Requirer reading the relation through client.
func NewRequirer(client RelationClient) *Requirer {
	return &Requirer{client: client}
}

// Created reports whether the nrf relation exists.
func (r *Requirer) Created() (bool, error) {
	ids, err := r.client.RelationIDs(RelationName)
	if err != nil {
		return false, errors.Trace(err)
	}
	return len(ids) > 0, nil
}

// URL returns the URL the NRF published on the relation, or an empty
// string while the relation is absent or nothing is published yet.
func (r *Requirer) URL() (string, error) {
	ids, err := r.client.RelationIDs(RelationName)
	if err != nil {
		return "", errors.Trace(err)
	}
	if len(ids) == 0 {
		return "", nil
	}
	application, err := r.client.RemoteApplication(ids[0])
	if err != nil {
		return "", errors.Trace(err)
	}
	if application == "" {
		return "", nil
	}
	settings, err := r.client.ApplicationSettings(ids[0], application)
	if err != nil {
		return "", errors.Trace(err)
	}
	url := settings[urlKey]
	if url == "" {
		logger.Debugf("%q has not published a url on %q yet", application, ids[0])
	}
	return url, nil
}
