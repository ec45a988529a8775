// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

// validate checks that the raw merged [StructuredConfig] is internally
// consistent before it is resolved into an [EngineConfig].
//
// It intentionally does not require BaseURL to be set here: a bare
// Environment of "production" or "debug" is enough, since [resolveBaseURL]
// fills in the default. The stricter check (a resolvable base URL) happens
// in [EngineConfig.validate].
func (cfg *StructuredConfig) validate() error {
	return nil
}

// validate checks that an [EngineConfig] is complete enough to construct the
// sync engine's dependency graph.
func (cfg *EngineConfig) validate() error {
	if cfg.BaseURL == "" {
		return ErrInvalidSyncConfigs
	}

	if cfg.Device.Name == "" || cfg.Device.Type == "" {
		return ErrInvalidDeviceConfigs
	}

	if cfg.SecureStoreDSN == "" {
		return ErrInvalidStorageConfigs
	}

	return nil
}
