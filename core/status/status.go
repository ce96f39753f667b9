// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

// Package status holds the workload status values a unit reports
// through the status-set hook tool.
package status

// Status represents the workload status of a unit.
type Status string

// String returns a string representation of the Status.
func (s Status) String() string {
	return string(s)
}

// StatusInfo holds a Status and the message displayed alongside it.
type StatusInfo struct {
	Status  Status
	Message string
}

// StatusSetter represents a type whose status can be set.
type StatusSetter interface {
	SetStatus(StatusInfo) error
}

const (
	// Maintenance is set when:
	// The unit is not yet providing services, but is actively doing stuff
	// in preparation for providing those services.
	// This is a "spinning" state, not an error state.
	Maintenance Status = "maintenance"

	// Waiting is set when:
	// The unit is unable to progress to an active state because an
	// application to which it is related is not running.
	Waiting Status = "waiting"

	// Blocked is set when:
	// The unit needs manual intervention to get back to the Running state.
	Blocked Status = "blocked"

	// Active is set when:
	// The unit believes it is correctly offering all the services it has
	// been asked to offer.
	Active Status = "active"
)

// KnownWorkloadStatus returns true if status has a known value for a workload.
func KnownWorkloadStatus(status Status) bool {
	switch status {
	case Maintenance, Waiting, Blocked, Active:
		return true
	default:
		return false
	}
}
