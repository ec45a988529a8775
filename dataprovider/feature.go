// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package dataprovider

// Feature identifies one named kind of synced data, e.g. "bookmarks".
// Equality between two Features is plain value equality on Name.
type Feature struct {
	Name string
}

// String returns the feature name, satisfying [fmt.Stringer].
func (f Feature) String() string {
	return f.Name
}

// SetupState describes how far a Provider has progressed through the
// first-sync handshake performed once per feature, per device.
type SetupState int

const (
	// SetupStateUnknown is the zero value; a Provider must never report it
	// once RegisterFeature has been called.
	SetupStateUnknown SetupState = iota

	// SetupStateNeedsRemoteDataFetch means the device has not yet pulled the
	// full remote history for this feature. The next sync operation must run
	// a fetch-only pass for this Provider before any regular sync.
	SetupStateNeedsRemoteDataFetch

	// SetupStateReadyToSync means the Provider has completed first sync and
	// participates in regular (bidirectional) sync passes.
	SetupStateReadyToSync
)

// String renders the state for logging.
func (s SetupState) String() string {
	switch s {
	case SetupStateNeedsRemoteDataFetch:
		return "needsRemoteDataFetch"
	case SetupStateReadyToSync:
		return "readyToSync"
	default:
		return "unknown"
	}
}
