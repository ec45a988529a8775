// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] and
// [EngineConfig.validate] when required configuration groups are incomplete
// or invalid.
var (
	// ErrInvalidSyncConfigs indicates invalid sync settings (for example, no
	// base URL and no recognized environment to derive a default from).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidDeviceConfigs indicates invalid device identity settings
	// (for example, missing device name or type).
	ErrInvalidDeviceConfigs = errors.New("invalid device configuration")
	// ErrInvalidStorageConfigs indicates invalid SecureStore settings (for
	// example, an empty DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
)
