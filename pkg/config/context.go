// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
)

type configContextKey struct{}

// WithContext returns a copy of parent that carries config. The Config is
// fixed for the lifetime of the context.
func WithContext(parent context.Context, config Config) context.Context {
	return context.WithValue(parent, configContextKey{}, config)
}

// FromContext returns the Config stored in ctx by WithContext.
func FromContext(ctx context.Context) (Config, bool) {
	if ctx == nil {
		return Config{}, false
	}
	config, ok := ctx.Value(configContextKey{}).(Config)
	return config, ok
}

// FromContextOrDefault returns the Config stored in ctx, or Default() when
// there is none.
func FromContextOrDefault(ctx context.Context) Config {
	if config, ok := FromContext(ctx); ok {
		return config
	}
	return Default()
}
