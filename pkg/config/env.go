// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/vmware-tanzu/vm-reconciler/pkg/config/env"
)

// FromEnv returns a new Config that has been initialized from environment
// variables. The vCenter connection is read from the environment only when
// HasVCenterEnv is true.
func FromEnv() Config {
	config := Default()

	setString(env.VCenterServer, &config.VCenter.Host)
	setString(env.VCenterUser, &config.VCenter.User)
	setString(env.VCenterPassword, &config.VCenter.Password)
	setString(env.VCenterDatacenter, &config.VCenter.Datacenter)
	setBool(env.VCenterInsecure, &config.VCenter.Insecure)
	setInt(env.VCenterPort, &config.VCenter.Port)
	setBool(env.VCenterSSL, &config.VCenter.SSL)

	setInt(env.RetryMaxAttempts, &config.Retry.MaxAttempts)
	setInt(env.RetryNotConfiguredAttempts, &config.Retry.NotConfiguredAttempts)
	setDuration(env.RetryBaseDelay, &config.Retry.BaseDelay)
	setDuration(env.RetryMaxDelay, &config.Retry.MaxDelay)

	setInt(env.GuestRetryMaxAttempts, &config.GuestRetry.MaxAttempts)
	setDuration(env.GuestRetryBaseDelay, &config.GuestRetry.BaseDelay)
	setDuration(env.GuestRetryMaxDelay, &config.GuestRetry.MaxDelay)

	setDuration(env.LinkedCloneSettleDelay, &config.LinkedCloneSettleDelay)
	setInt(env.MaxConcurrentReconciles, &config.MaxConcurrentReconciles)
	setBool(env.LogSensitiveData, &config.LogSensitiveData)

	return config
}

// HasVCenterEnv returns true if any of the required vCenter connection
// variables is present in the environment.
func HasVCenterEnv() bool {
	for _, n := range requiredVCenterEnv {
		if _, ok := os.LookupEnv(n.String()); ok {
			return true
		}
	}
	return false
}

var requiredVCenterEnv = []env.VarName{
	env.VCenterServer,
	env.VCenterUser,
	env.VCenterPassword,
}

func missingVCenterEnv() []string {
	var missing []string
	for _, n := range requiredVCenterEnv {
		if v := os.Getenv(n.String()); v == "" {
			missing = append(missing, n.String())
		}
	}
	return missing
}

func setBool(n env.VarName, p *bool) {
	if v := os.Getenv(n.String()); v != "" {
		if v, err := strconv.ParseBool(v); err == nil {
			*p = v
		}
	}
}

func setDuration(n env.VarName, p *time.Duration) {
	if v := os.Getenv(n.String()); v != "" {
		if v, err := time.ParseDuration(v); err == nil {
			*p = v
		}
	}
}

func setInt(n env.VarName, p *int) {
	if v := os.Getenv(n.String()); v != "" {
		if v, err := strconv.Atoi(v); err == nil {
			*p = v
		}
	}
}

func setString(n env.VarName, p *string) {
	if v := os.Getenv(n.String()); v != "" {
		*p = v
	}
}
