// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/duckduckgo/sync-engine-go/internal/logger"
)

// restyClient is the private implementation of [Client]: a thin wrapper
// around *resty.Client that builds a request, executes it, and maps
// non-2xx/non-304 statuses to [StatusCodeError].
type restyClient struct {
	client *resty.Client
	logger *logger.Logger
}

// New constructs a [Client] with timeout as its default per-request
// timeout. There is no global timeout; callers choose per call via ctx, or
// construct dedicated Client instances (4s for low-latency reads, 60s for
// sync).
func New(timeout time.Duration, log *logger.Logger) Client {
	if log == nil {
		log = logger.Nop()
	}

	c := resty.New().SetTimeout(timeout)
	return &restyClient{client: c, logger: log}
}

// Execute implements [Client].
func (c *restyClient) Execute(ctx context.Context, req Request) (*Response, error) {
	r := c.client.R().SetContext(ctx)

	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}
	for k, v := range req.Query {
		r.SetQueryParam(k, v)
	}
	if req.ContentType != "" {
		r.SetHeader("Content-Type", req.ContentType)
	}
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(string(req.Method), req.URL)
	if err != nil {
		return nil, fmt.Errorf("httpclient: execute %s %s: %w", req.Method, req.URL, err)
	}

	result := &Response{StatusCode: resp.StatusCode(), Body: resp.Body()}

	if resp.StatusCode() == http.StatusNotModified {
		result.NotModified = true
		return result, nil
	}
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return result, nil
	}

	c.logger.Warn().
		Str("method", string(req.Method)).
		Str("url", req.URL).
		Int("status_code", resp.StatusCode()).
		Msg("sync server returned a non-success status")

	return result, &StatusCodeError{Code: resp.StatusCode()}
}
