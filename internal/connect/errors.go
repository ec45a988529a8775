// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package connect

import "errors"

var (
	// ErrInvalidCode reports a sync/connect code that is not base64, not the
	// expected JSON wrapper, or carries the wrong payload kind.
	ErrInvalidCode = errors.New("connect: invalid code")

	// ErrNoResponseBody reports a 200 poll response with no body.
	ErrNoResponseBody = errors.New("connect: no response body")
)
