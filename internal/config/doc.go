// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package config provides configuration loading, merging, and validation
// facilities for the sync engine.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// [GetStructuredConfig] chains all three sources into a raw [StructuredConfig].
// [GetEngineConfig] additionally resolves the production/debug environment
// switch into a concrete base URL and debounce durations, producing the
// [EngineConfig] consumed by internal/engine's dependency wiring.
package config
