// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

// StructuredConfig is the top-level configuration container for the sync
// engine. It aggregates all sub-configurations and is populated by merging
// values from environment variables, command-line flags, and an optional
// JSON file (see [Sync] for the environment variables).
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Sync holds the base URL, environment switch, and scheduler debounce
	// knobs.
	Sync Sync `envPrefix:"SYNC_"`

	// Device holds the default device identity used at signup/connect time.
	Device Device `envPrefix:"DEVICE_"`

	// Storage holds the SecureStore backing-file settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Sync groups the environment variables / configuration knobs for the
// engine's network target and scheduler throttling.
type Sync struct {
	// BaseURL is the sync server's base URL. When empty, the default for
	// Environment is used; one of the two must be set.
	// Env: SYNC_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// Environment selects the default base URL when BaseURL is not set
	// explicitly: "production" or "debug".
	// Env: SYNC_ENVIRONMENT
	Environment string `env:"ENVIRONMENT"`

	// ImmediateDebounceSec is the debounce window, in seconds, applied to
	// data-changed and immediate scheduler triggers. Default 1.
	// Env: SYNC_IMMEDIATE_DEBOUNCE_SEC
	ImmediateDebounceSec int `env:"IMMEDIATE_DEBOUNCE_SEC"`

	// LifecycleDebounceSec is the debounce window, in seconds, applied to
	// app-lifecycle scheduler triggers. Default 600 (60 in debug).
	// Env: SYNC_LIFECYCLE_DEBOUNCE_SEC
	LifecycleDebounceSec int `env:"LIFECYCLE_DEBOUNCE_SEC"`
}

// Device holds the identity this device presents to the server at
// signup/login/connect time.
type Device struct {
	// Name is a human-readable device label (e.g. "phone").
	// Env: DEVICE_NAME
	Name string `env:"NAME"`

	// Type categorizes the device (e.g. "mobile", "desktop").
	// Env: DEVICE_TYPE
	Type string `env:"TYPE"`
}

// Storage holds SecureStore's backing-file settings.
type Storage struct {
	// SecureStoreDSN is the SQLite DSN (path or ":memory:") backing the
	// single-Account SecureStore table.
	// Env: STORAGE_SECURESTORE_DSN
	SecureStoreDSN string `env:"SECURESTORE_DSN"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
