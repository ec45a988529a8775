// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"flag"
	"io"
	"os"
)

// ParseFlags parses command-line flags into a [StructuredConfig].
//
// Each call registers the flags on a fresh flag.CommandLine, so ParseFlags
// can be called more than once in a process. Flags it does not define are
// skipped, and parsing stops at the first non-flag argument.
//
// Flags:
//
//	-sync-base-url          sync server base URL
//	-sync-environment       "production" or "debug"
//	-immediate-debounce-sec immediate/data-changed scheduler debounce, in seconds
//	-lifecycle-debounce-sec app-lifecycle scheduler debounce, in seconds
//	-device-name            device label sent at signup/connect
//	-device-type            device category sent at signup/connect
//	-securestore-dsn        SQLite DSN backing SecureStore
//	-c/-config              JSON config file path
func ParseFlags() *StructuredConfig {
	var baseURL, environment string
	var immediateDebounceSec, lifecycleDebounceSec int
	var deviceName, deviceType string
	var secureStoreDSN string
	var jsonConfigPath string

	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flag.CommandLine.SetOutput(io.Discard)

	flag.StringVar(&baseURL, "sync-base-url", "", "Sync server base URL")
	flag.StringVar(&environment, "sync-environment", "", "Sync environment: production or debug")
	flag.IntVar(&immediateDebounceSec, "immediate-debounce-sec", 0, "Immediate/data-changed scheduler debounce, in seconds")
	flag.IntVar(&lifecycleDebounceSec, "lifecycle-debounce-sec", 0, "App-lifecycle scheduler debounce, in seconds")
	flag.StringVar(&deviceName, "device-name", "", "Device label sent at signup/connect")
	flag.StringVar(&deviceType, "device-type", "", "Device category sent at signup/connect")
	flag.StringVar(&secureStoreDSN, "securestore-dsn", "", "SQLite DSN backing SecureStore")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	for args := os.Args[1:]; flag.CommandLine.Parse(args) != nil; {
		rest := flag.CommandLine.Args()
		if len(rest) == len(args) {
			rest = rest[1:]
		}
		args = rest
	}

	return &StructuredConfig{
		Sync: Sync{
			BaseURL:              baseURL,
			Environment:          environment,
			ImmediateDebounceSec: immediateDebounceSec,
			LifecycleDebounceSec: lifecycleDebounceSec,
		},
		Device: Device{
			Name: deviceName,
			Type: deviceType,
		},
		Storage: Storage{
			SecureStoreDSN: secureStoreDSN,
		},
		JSONFilePath: jsonConfigPath,
	}
}
