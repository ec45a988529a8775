// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package requestmaker assembles the sync wire protocol: the
// outbound PATCH envelope `{"<feature>": {"updates": [...], "modified_since":
// "..."}}` with optional gzip compression, the GET /sync/<f1>,<f2> request,
// and the decoding of 200 responses back into per-feature results.
package requestmaker

import (
	"github.com/duckduckgo/sync-engine-go/internal/endpoints"
	"github.com/duckduckgo/sync-engine-go/internal/httpclient"
)

// EndpointsSource supplies the currently active [endpoints.Endpoints],
// satisfied by [endpoints.AtomicEndpoints].
type EndpointsSource interface {
	Load() *endpoints.Endpoints
}

// Maker builds the [httpclient.Request] values a sync operation executes.
type Maker struct {
	endpoints EndpointsSource
}

// New constructs a [Maker] resolving URLs against endpointsSource.
func New(endpointsSource EndpointsSource) *Maker {
	return &Maker{endpoints: endpointsSource}
}

// MakeGetRequest builds GET /sync/<f1>,<f2>,... carrying the bearer token.
// Returns [ErrNoFeaturesSpecified] for an empty feature list.
func (m *Maker) MakeGetRequest(token string, features []string) (httpclient.Request, error) {
	if len(features) == 0 {
		return httpclient.Request{}, ErrNoFeaturesSpecified
	}

	return httpclient.Request{
		Method:  httpclient.MethodGet,
		URL:     m.endpoints.Load().SyncGet(features),
		Headers: map[string]string{"Authorization": "Bearer " + token},
	}, nil
}

// MakePatchRequest builds PATCH /sync/data with the JSON envelope for
// batches. When compress is true the body is gzip-compressed and the request
// carries Content-Encoding: gzip; a compression failure surfaces as a
// *[CompressionError] so the caller can retry with compress set to false.
func (m *Maker) MakePatchRequest(token string, batches map[string]Batch, compress bool) (httpclient.Request, error) {
	body, err := EncodePatchBody(batches)
	if err != nil {
		return httpclient.Request{}, err
	}

	headers := map[string]string{"Authorization": "Bearer " + token}
	if compress {
		body, err = gzipCompress(body)
		if err != nil {
			return httpclient.Request{}, err
		}
		headers["Content-Encoding"] = "gzip"
	}

	return httpclient.Request{
		Method:      httpclient.MethodPatch,
		URL:         m.endpoints.Load().SyncPatch(),
		Headers:     headers,
		Body:        body,
		ContentType: "application/json",
	}, nil
}
