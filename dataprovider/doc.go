// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package dataprovider defines the boundary between the sync engine core and
// the concrete data models it synchronizes (bookmarks, history, credentials,
// ...). The engine never interprets a Syncable's fields beyond ID and
// Deleted; everything else is opaque JSON owned by the Provider.
//
// A type becomes a Provider by satisfying the capability set below — there is
// no base type to embed and no inheritance hierarchy, mirroring how the
// engine treats every other collaborator (see internal/crypto, internal/account).
package dataprovider
