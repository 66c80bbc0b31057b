// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package v1alpha1

import (
	"time"
)

// Outcome is the overall result of reconciling one descriptor.
type Outcome string

const (
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeChanged   Outcome = "changed"
	OutcomeFailed    Outcome = "failed"
)

// Change describes one property that was changed.
type Change struct {
	Property string `json:"property"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`

	// Action is the remote operation that made the change.
	Action string `json:"action,omitempty"`
}

// GuestProcess describes a program started in the guest.
type GuestProcess struct {
	PID       int64      `json:"pid"`
	Name      string     `json:"name,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	ExitCode  *int32     `json:"exit_code,omitempty"`
}

// Result is returned for each reconciled descriptor.
type Result struct {
	Path     string         `json:"path"`
	Outcome  Outcome        `json:"outcome"`
	Changes  []Change       `json:"changes,omitempty"`
	Snapshot *MachineRecord `json:"snapshot,omitempty"`
	Process  *GuestProcess  `json:"process,omitempty"`

	// Error is the cause chain of a failure.
	Error string `json:"error,omitempty"`

	// ErrorKind is the class of a failure.
	ErrorKind string `json:"error_kind,omitempty"`

	// Err is the failure itself.
	Err error `json:"-"`
}

// ChangedProperties returns the names of the changed properties.
func (r Result) ChangedProperties() []string {
	out := make([]string, 0, len(r.Changes))
	for _, c := range r.Changes {
		out = append(out, c.Property)
	}
	return out
}
