// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package requestmaker

import (
	"encoding/json"
	"fmt"

	"github.com/duckduckgo/sync-engine-go/dataprovider"
)

// Batch is one feature's outbound contribution to a PATCH envelope.
type Batch struct {
	// Updates holds the changed records collected from the feature's
	// DataProvider.
	Updates []dataprovider.Syncable

	// ModifiedSince is the last last_modified the client remembers for this
	// feature, sent verbatim. An empty string marshals as null, which the
	// server reads as "send me everything".
	ModifiedSince string
}

// featurePatch is the wire shape of one feature inside the PATCH envelope:
// `{"updates": [...], "modified_since": "..."}`.
type featurePatch struct {
	Updates       []dataprovider.Syncable `json:"updates"`
	ModifiedSince *string                 `json:"modified_since"`
}

// featureResponse is the wire shape of one feature inside a 200 response:
// `{"last_modified": "...", "entries": [...]}`.
type featureResponse struct {
	LastModified *string                 `json:"last_modified"`
	Entries      []dataprovider.Syncable `json:"entries"`
}

// EncodePatchBody builds the JSON envelope for a PATCH /sync/data call. The
// envelope keys are the feature names; production callers send one feature
// per PATCH but the format (and this encoder) supports several at once.
// Returns [ErrNoFeaturesSpecified] for an empty batches map.
func EncodePatchBody(batches map[string]Batch) ([]byte, error) {
	if len(batches) == 0 {
		return nil, ErrNoFeaturesSpecified
	}

	envelope := make(map[string]featurePatch, len(batches))
	for feature, batch := range batches {
		updates := batch.Updates
		if updates == nil {
			updates = []dataprovider.Syncable{}
		}

		fp := featurePatch{Updates: updates}
		if batch.ModifiedSince != "" {
			ts := batch.ModifiedSince
			fp.ModifiedSince = &ts
		}
		envelope[feature] = fp
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("requestmaker: encode patch envelope: %w", err)
	}
	return body, nil
}

// DecodeResponse extracts one feature's [dataprovider.Result] from a 200
// response body `{"<feature>": {"last_modified": "...", "entries": [...]}}`.
// A missing feature key or a null/absent last_modified while the status was
// 200 is a decode failure ([ErrUnexpectedResponseBody]); 204/304 responses
// must not be passed here at all — their (possibly empty) body is ignored by
// the caller.
func DecodeResponse(body []byte, feature string) (dataprovider.Result, error) {
	if len(body) == 0 {
		return dataprovider.Result{}, ErrNoResponseBody
	}

	var envelope map[string]featureResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return dataprovider.Result{}, fmt.Errorf("%w: %w", ErrUnexpectedResponseBody, err)
	}

	fr, ok := envelope[feature]
	if !ok {
		return dataprovider.Result{}, fmt.Errorf("%w: missing feature %q", ErrUnexpectedResponseBody, feature)
	}
	if fr.LastModified == nil {
		return dataprovider.Result{}, fmt.Errorf("%w: feature %q has no last_modified", ErrUnexpectedResponseBody, feature)
	}

	received := fr.Entries
	if received == nil {
		received = []dataprovider.Syncable{}
	}

	return dataprovider.Result{SyncTimestamp: *fr.LastModified, Received: received}, nil
}
