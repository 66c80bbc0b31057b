// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"
)

// Config represents the internal configuration of the reconciler. It should
// only be read/written via the context functions.
//
// Please note that all fields in this type MUST be types that are copied by
// value, not reference. That means no string slices, maps, etc. The reason is
// to prevent the possibility of race conditions when reading/writing data to
// a Config instance stored in a context.
type Config struct {
	BuildVersion string

	// VCenter describes how to connect to the vCenter server.
	VCenter VCenter

	// Retry governs the retries of remote calls against vCenter.
	Retry Retry

	// GuestRetry governs the retries of guest operations, which wait on the
	// guest agent to become available.
	GuestRetry Retry

	// LinkedCloneSettleDelay is how long to wait between adding a delta disk
	// layer to a clone source and issuing the linked clone.
	//
	// Defaults to 5 seconds.
	LinkedCloneSettleDelay time.Duration

	// MaxConcurrentReconciles is the number of descriptors reconciled at the
	// same time by a batch.
	//
	// Defaults to 1.
	MaxConcurrentReconciles int

	LogSensitiveData bool
}

// VCenter is the connection information for a vCenter server.
type VCenter struct {
	Host       string `json:"host,omitempty"`
	User       string `json:"user,omitempty"`
	Password   string `json:"password,omitempty"`
	Datacenter string `json:"datacenter,omitempty"`

	// Port is optional. When zero, the default port for the scheme is used.
	Port int `json:"port,omitempty"`

	// Insecure disables verification of the server certificate.
	Insecure bool `json:"insecure"`

	// SSL selects https over http.
	SSL bool `json:"ssl"`
}

// Retry describes a bounded exponential backoff.
type Retry struct {
	// MaxAttempts is the number of attempts made for transient faults.
	MaxAttempts int

	// NotConfiguredAttempts is the number of attempts made while a machine has
	// not yet exposed its configuration.
	NotConfiguredAttempts int

	BaseDelay time.Duration
	MaxDelay  time.Duration
	Factor    float64
	Jitter    float64
}
