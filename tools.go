// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

//go:build tools

package main

// Pins the code-generation tooling referenced by the //go:generate mockgen
// directives on the engine's interfaces.
import (
	_ "go.uber.org/mock/mockgen"
)
