// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package syncoperation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoToken reports an account that is present but carries no bearer
	// token; authenticated sync calls cannot proceed.
	ErrNoToken = errors.New("syncoperation: account has no token")

	// ErrAccountRemoved marks a per-feature failure whose 403 response
	// caused the local account to be removed. Callers that see it know the
	// device is signed out and retrying is pointless.
	ErrAccountRemoved = errors.New("syncoperation: account removed after access revocation")

	// ErrCancelled reports cooperative cancellation of the operation. It is
	// never aggregated into an [OperationError] and never handed to a
	// provider's HandleSyncError.
	ErrCancelled = errors.New("syncoperation: operation cancelled")
)

// FeatureError wraps a failure of one feature's sync task. The operation
// isolates features from each other: a FeatureError for one feature never
// prevents the remaining features from completing.
type FeatureError struct {
	Feature string
	Err     error
}

// Error implements the error interface.
func (e *FeatureError) Error() string {
	return fmt.Sprintf("feature %q: %v", e.Feature, e.Err)
}

// Unwrap exposes the underlying failure for [errors.Is]/[errors.As].
func (e *FeatureError) Unwrap() error { return e.Err }

// OperationError aggregates every per-feature failure of one sync operation.
type OperationError struct {
	PerFeature []*FeatureError
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	parts := make([]string, 0, len(e.PerFeature))
	for _, fe := range e.PerFeature {
		parts = append(parts, fe.Error())
	}
	return "sync operation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the per-feature errors to [errors.Is]/[errors.As] (Go's
// multi-error unwrapping).
func (e *OperationError) Unwrap() []error {
	errs := make([]error, 0, len(e.PerFeature))
	for _, fe := range e.PerFeature {
		errs = append(errs, fe)
	}
	return errs
}
