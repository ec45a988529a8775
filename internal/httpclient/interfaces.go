// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package httpclient wraps a REST client used for every sync-engine network
// call: building requests with headers/query/body, executing them, and
// mapping non-2xx/non-304 responses to [StatusCodeError].
package httpclient

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mock/http_client_mock.go -package=mock

// Method is an HTTP verb the sync engine issues.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPatch  Method = "PATCH"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
)

// Request describes one outbound HTTP call.
type Request struct {
	Method  Method
	URL     string
	Headers map[string]string
	Query   map[string]string

	// Body is sent as-is; callers that need JSON/gzip encoding prepare Body
	// ahead of time (see internal/requestmaker).
	Body []byte

	// ContentType, when non-empty, is sent as the Content-Type header,
	// taking precedence over any "Content-Type" entry in Headers.
	ContentType string
}

// Response is the decoded outcome of executing a [Request].
type Response struct {
	StatusCode int
	Body       []byte

	// NotModified is true for a 304 response, a valid, non-error outcome
	// distinct from any other status code.
	NotModified bool
}

// Client executes [Request] values against the sync server.
type Client interface {
	// Execute sends req and returns its [Response]. A 2xx or 304 status
	// yields a nil error; any other status yields a non-nil *StatusCodeError
	// wrapped as the returned error, with Response still populated so
	// callers can inspect the body for diagnostics.
	Execute(ctx context.Context, req Request) (*Response, error)
}
