// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package endpoints constructs the fixed set of sync-engine URLs from a
// base URL. An [Endpoints] value is immutable once built; callers
// that need to react to a debug "environment" switch build a new value and
// swap it via [AtomicEndpoints] rather than mutating one in place.
package endpoints

import (
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
)

// Endpoints holds the fixed sync-engine routes resolved against one base URL.
type Endpoints struct {
	base string
}

// New builds an immutable [Endpoints] from rawBaseURL. Returns an error if
// rawBaseURL is empty or not a valid absolute URL; a bare host is promoted
// to https.
func New(rawBaseURL string) (*Endpoints, error) {
	raw := strings.TrimSpace(rawBaseURL)
	if raw == "" {
		return nil, fmt.Errorf("endpoints: empty base url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("endpoints: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("endpoints: base url must include scheme and host")
	}

	return &Endpoints{base: strings.TrimRight(u.String(), "/")}, nil
}

// Signup returns "sync/signup".
func (e *Endpoints) Signup() string { return e.base + "/sync/signup" }

// Login returns "sync/login".
func (e *Endpoints) Login() string { return e.base + "/sync/login" }

// LogoutDevice returns "sync/logout-device".
func (e *Endpoints) LogoutDevice() string { return e.base + "/sync/logout-device" }

// DeleteAccount returns "sync/delete-account".
func (e *Endpoints) DeleteAccount() string { return e.base + "/sync/delete-account" }

// Connect returns "sync/connect", used both to submit a sealed recovery key
// (POST) and, with the device id appended, to poll for one (GET).
func (e *Endpoints) Connect() string { return e.base + "/sync/connect" }

// ConnectPoll returns "sync/connect/{deviceID}".
func (e *Endpoints) ConnectPoll(deviceID string) string {
	return e.base + "/sync/connect/" + deviceID
}

// SyncGet returns "sync/<f1>,<f2>,..." for the given feature names. Panics-
// free for an empty slice; callers reject that case earlier
// (internal/requestmaker's ErrNoFeaturesSpecified).
func (e *Endpoints) SyncGet(features []string) string {
	return e.base + "/sync/" + strings.Join(features, ",")
}

// SyncPatch returns "sync/data".
func (e *Endpoints) SyncPatch() string { return e.base + "/sync/data" }

// AtomicEndpoints holds a swappable *Endpoints so that dependents (the
// request maker, the account manager and the connect flows, through their
// EndpointsSource interfaces) can keep a long-lived reference across a
// debug environment switch without needing to be reconstructed themselves.
type AtomicEndpoints struct {
	v atomic.Pointer[Endpoints]
}

// NewAtomic wraps an initial *Endpoints value.
func NewAtomic(initial *Endpoints) *AtomicEndpoints {
	a := &AtomicEndpoints{}
	a.v.Store(initial)
	return a
}

// Load returns the currently active *Endpoints.
func (a *AtomicEndpoints) Load() *Endpoints { return a.v.Load() }

// Swap atomically replaces the active *Endpoints, e.g. after SYNC_ENVIRONMENT
// changes at runtime.
func (a *AtomicEndpoints) Swap(next *Endpoints) { a.v.Store(next) }
