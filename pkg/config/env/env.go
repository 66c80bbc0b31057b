// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package env

import (
	"os"
)

// VarName is the name of an environment variable.
type VarName uint8

const (
	_varNameBegin VarName = iota

	VCenterServer
	VCenterUser
	VCenterPassword
	VCenterDatacenter
	VCenterInsecure
	VCenterPort
	VCenterSSL
	RetryMaxAttempts
	RetryNotConfiguredAttempts
	RetryBaseDelay
	RetryMaxDelay
	GuestRetryMaxAttempts
	GuestRetryBaseDelay
	GuestRetryMaxDelay
	LinkedCloneSettleDelay
	MaxConcurrentReconciles
	LogSensitiveData

	_varNameEnd
)

// Unset unsets all environment variables related to the reconciler.
func Unset() {
	for _, n := range All() {
		_ = os.Unsetenv(n.String())
	}
}

// All returns all of the environment variable names.
func All() []VarName {
	all := make([]VarName, _varNameEnd-1)
	i := 0
	for n := _varNameBegin + 1; n < _varNameEnd; n++ {
		all[i] = n
		i++
	}
	return all
}

// VCenter returns the names of the variables that describe the vCenter
// connection.
func VCenter() []VarName {
	return []VarName{
		VCenterServer,
		VCenterUser,
		VCenterPassword,
		VCenterDatacenter,
		VCenterInsecure,
		VCenterPort,
		VCenterSSL,
	}
}

// String returns the stringified version of the environment variable name.
//
//nolint:gocyclo
func (n VarName) String() string {
	switch n {
	case VCenterServer:
		return "VCENTER_SERVER"
	case VCenterUser:
		return "VCENTER_USER"
	case VCenterPassword:
		return "VCENTER_PASSWORD"
	case VCenterDatacenter:
		return "VCENTER_DATACENTER"
	case VCenterInsecure:
		return "VCENTER_INSECURE"
	case VCenterPort:
		return "VCENTER_PORT"
	case VCenterSSL:
		return "VCENTER_SSL"
	case RetryMaxAttempts:
		return "RETRY_MAX_ATTEMPTS"
	case RetryNotConfiguredAttempts:
		return "RETRY_NOT_CONFIGURED_ATTEMPTS"
	case RetryBaseDelay:
		return "RETRY_BASE_DELAY"
	case RetryMaxDelay:
		return "RETRY_MAX_DELAY"
	case GuestRetryMaxAttempts:
		return "GUEST_RETRY_MAX_ATTEMPTS"
	case GuestRetryBaseDelay:
		return "GUEST_RETRY_BASE_DELAY"
	case GuestRetryMaxDelay:
		return "GUEST_RETRY_MAX_DELAY"
	case LinkedCloneSettleDelay:
		return "LINKED_CLONE_SETTLE_DELAY"
	case MaxConcurrentReconciles:
		return "MAX_CONCURRENT_RECONCILES"
	case LogSensitiveData:
		return "LOG_SENSITIVE_DATA"
	}
	panic("unknown environment variable")
}
