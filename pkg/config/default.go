// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"

	"github.com/vmware-tanzu/vm-reconciler/pkg"
)

// Default returns a Config object with default values.
func Default() Config {
	return Config{
		BuildVersion: pkg.BuildVersion,
		VCenter: VCenter{
			Insecure: true,
			SSL:      true,
		},
		Retry: Retry{
			MaxAttempts:           10,
			NotConfiguredAttempts: 5,
			BaseDelay:             500 * time.Millisecond,
			MaxDelay:              15 * time.Second,
			Factor:                2.0,
			Jitter:                0.1,
		},
		GuestRetry: Retry{
			MaxAttempts:           10,
			NotConfiguredAttempts: 1,
			BaseDelay:             5 * time.Second,
			MaxDelay:              15 * time.Second,
			Factor:                2.0,
		},
		LinkedCloneSettleDelay:  5 * time.Second,
		MaxConcurrentReconciles: 1,
	}
}
