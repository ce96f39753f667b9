// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

package charm

import (
	"github.com/gruyaume/ausf-operator/core/status"
)

// Snapshot is everything a reconciliation looks at, gathered before
// any decision is taken.
type Snapshot struct {
	// RelationCreated is whether the nrf relation exists.
	RelationCreated bool

	// CanConnect is whether the workload container takes pebble
	// requests.
	CanConnect bool

	// NRFURL is the URL published by the NRF, empty while unpublished.
	NRFURL string

	// ConfigWritten is whether the AUSF configuration file exists in
	// the container.
	ConfigWritten bool
}

// Outcome is what a reconciliation decided to do.
type Outcome struct {
	// Status is the workload status to report.
	Status status.StatusInfo

	// WriteConfig requests rendering and pushing the configuration
	// file.
	WriteConfig bool

	// ApplyLayer requests submitting the workload layer and
	// replanning.
	ApplyLayer bool

	// Defer requests queueing the triggering hook for redelivery on a
	// later dispatch.
	Defer bool
}

// Decide maps an observed Snapshot to the actions a reconciliation has
// to take. It performs no side effects itself.
func Decide(snap Snapshot) Outcome {
	if !snap.RelationCreated {
		return Outcome{Status: status.StatusInfo{
			Status:  status.Blocked,
			Message: "Waiting for NRF relation to be created",
		}}
	}
	if !snap.CanConnect {
		return Outcome{
			Status: status.StatusInfo{
				Status:  status.Waiting,
				Message: "Waiting for container to be ready",
			},
			Defer: true,
		}
	}
	if snap.NRFURL == "" {
		return Outcome{Status: status.StatusInfo{
			Status:  status.Waiting,
			Message: "Waiting for NRF data to be available",
		}}
	}
	return Outcome{
		Status:      status.StatusInfo{Status: status.Active},
		WriteConfig: !snap.ConfigWritten,
		ApplyLayer:  true,
	}
}
