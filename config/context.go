// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"context"
)

// contextKey is used to store and retrieve the ConfigManager in the context.
type contextKey struct{}

// WithConfigManager returns a new context carrying cfgm.
func WithConfigManager(ctx context.Context, cfgm *ConfigManager) context.Context {
	return context.WithValue(ctx, contextKey{}, cfgm)
}

// M returns the ConfigManager in ctx, or a fresh default one if none was
// set.
func M(ctx context.Context) *ConfigManager {
	l := ctx.Value(contextKey{})

	if l == nil {
		cfgm, _ := NewConfigManager()
		return cfgm
	}

	return l.(*ConfigManager)
}

// G returns the Config in ctx, or an inert default configuration.
func G(ctx context.Context) *Config {
	return M(ctx).Config
}
