// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package constants

const (
	// MachineFileExtension is the extension of the configuration file of a
	// machine that is registered from a datastore folder.
	MachineFileExtension = ".vmx"

	// TemplateFileExtension is the extension of the configuration file of a
	// template that is registered from a datastore folder.
	TemplateFileExtension = ".vmtx"

	// DefaultGuestWorkingDirectory is the working directory of a program
	// started in the guest when none is specified.
	DefaultGuestWorkingDirectory = "/"
)
