// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package testlabels

const (
	// Create describes a test related to create logic.
	Create = "create"

	// Delete describes a test related to delete logic.
	Delete = "delete"

	// Guest describes a test related to guest operations.
	Guest = "guest"

	// Power describes a test related to power state changes.
	Power = "power"

	// Update describes a test related to update logic.
	Update = "update"

	// VCSim describes a test that uses vC Sim.
	VCSim = "vcsim"
)
