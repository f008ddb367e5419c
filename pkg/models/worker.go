package models

import "time"

// ActiveState is the lifecycle state of a roster worker.
type ActiveState string

const (
	WorkerActive   ActiveState = "active"
	WorkerDormant  ActiveState = "dormant"
	WorkerArchived ActiveState = "archived"
)

// Valid returns true if the state is a known value.
func (s ActiveState) Valid() bool {
	switch s {
	case WorkerActive, WorkerDormant, WorkerArchived:
		return true
	default:
		return false
	}
}

// WorkerState is one entry of the worker roster.
type WorkerState struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Specialty       string      `json:"specialtyTag"`
	State           ActiveState `json:"activeState"`
	CapabilityScore float64     `json:"capabilityScore"`
	// LastActivation is zero if the worker was never activated.
	LastActivation time.Time `json:"lastActivationTimestamp"`
}
