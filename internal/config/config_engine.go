// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// Default base URLs used when SYNC_BASE_URL is unset and SYNC_ENVIRONMENT
// selects one of the two recognized environments.
const (
	productionBaseURL = "https://sync.duckduckgo.com"
	debugBaseURL      = "https://sync-debug.duckduckgo.com"

	environmentProduction = "production"
	environmentDebug      = "debug"

	defaultImmediateDebounce      = time.Second
	defaultLifecycleDebounceProd  = 600 * time.Second
	defaultLifecycleDebounceDebug = 60 * time.Second
)

// EngineConfig is the resolved, engine-facing configuration view built from
// [StructuredConfig] by [GetEngineConfig]. Unlike StructuredConfig, its
// fields are ready to hand directly to the dependency constructors in
// internal/engine: durations are [time.Duration], and BaseURL always holds a
// concrete value (the explicit override or the environment default).
type EngineConfig struct {
	// BaseURL is the resolved sync server base URL, passed to
	// internal/endpoints.New.
	BaseURL string

	// ImmediateDebounce throttles the data-changed/immediate scheduler
	// trigger (default 1s).
	ImmediateDebounce time.Duration

	// LifecycleDebounce throttles the app-lifecycle scheduler trigger
	// (default 600s, 60s in the debug environment).
	LifecycleDebounce time.Duration

	// Device is the identity this device presents at signup/login/connect.
	Device Device

	// SecureStoreDSN is the SQLite DSN backing internal/securestore.
	SecureStoreDSN string
}

// GetEngineConfig loads the merged [StructuredConfig] via
// [GetStructuredConfig] and resolves it into an [EngineConfig]: filling in
// environment-specific defaults for BaseURL and LifecycleDebounce when they
// are left unset, and converting the debounce knobs from seconds to
// [time.Duration].
func GetEngineConfig() (*EngineConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	baseURL, err := resolveBaseURL(cfg.Sync)
	if err != nil {
		return nil, err
	}

	immediate := defaultImmediateDebounce
	if cfg.Sync.ImmediateDebounceSec > 0 {
		immediate = time.Duration(cfg.Sync.ImmediateDebounceSec) * time.Second
	}

	lifecycle := defaultLifecycleDebounceProd
	if cfg.Sync.Environment == environmentDebug {
		lifecycle = defaultLifecycleDebounceDebug
	}
	if cfg.Sync.LifecycleDebounceSec > 0 {
		lifecycle = time.Duration(cfg.Sync.LifecycleDebounceSec) * time.Second
	}

	engineCfg := &EngineConfig{
		BaseURL:           baseURL,
		ImmediateDebounce: immediate,
		LifecycleDebounce: lifecycle,
		Device:            cfg.Device,
		SecureStoreDSN:    cfg.Storage.SecureStoreDSN,
	}

	return engineCfg, engineCfg.validate()
}

// resolveBaseURL returns sync.BaseURL when set explicitly, otherwise the
// default associated with sync.Environment. Returns [ErrInvalidSyncConfigs]
// if neither is set or Environment names anything other than "production"
// or "debug".
func resolveBaseURL(sync Sync) (string, error) {
	if sync.BaseURL != "" {
		return sync.BaseURL, nil
	}

	switch sync.Environment {
	case environmentProduction:
		return productionBaseURL, nil
	case environmentDebug:
		return debugBaseURL, nil
	default:
		return "", ErrInvalidSyncConfigs
	}
}
