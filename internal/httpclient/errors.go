// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package httpclient

import "fmt"

// StatusCodeError reports a non-2xx, non-304 HTTP response, carrying the
// status code for callers that branch on specific codes (e.g. 403 forces
// local account removal).
type StatusCodeError struct {
	Code int
}

// Error implements the error interface.
func (e *StatusCodeError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// StatusCode returns the HTTP status the server sent.
func (e *StatusCodeError) StatusCode() int { return e.Code }
