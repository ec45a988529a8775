// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package synctest

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/duckduckgo/sync-engine-go/internal/utils"
)

// gzipReaderPool is a pool of reusable [gzip.Reader] instances. Each reader
// is reset to the incoming request body via [gzip.Reader.Reset] before use
// and returned to the pool once the body has been fully consumed and closed.
var gzipReaderPool = sync.Pool{
	New: func() any {
		return new(gzip.Reader)
	},
}

// withGzipRequests transparently decompresses request bodies that arrive
// with "Content-Encoding: gzip", so handlers always see plain JSON. Invalid
// gzip data yields HTTP 400 without calling next — which is exactly the
// server behavior the client's gzip-fallback path reacts to.
func withGzipRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !strings.Contains(req.Header.Get("Content-Encoding"), "gzip") || req.Body == nil {
			next.ServeHTTP(w, req)
			return
		}

		gzipReader := gzipReaderPool.Get().(*gzip.Reader)
		if err := gzipReader.Reset(req.Body); err != nil {
			gzipReaderPool.Put(gzipReader)
			http.Error(w, "invalid gzip data", http.StatusBadRequest)
			return
		}

		req.Body = &wrappedReadCloser{
			Reader: gzipReader,
			onClose: func() {
				gzipReader.Close()
				gzipReaderPool.Put(gzipReader)
			},
		}
		req.Header.Del("Content-Encoding")

		next.ServeHTTP(w, req)
	})
}

// wrappedReadCloser forwards reads and runs onClose exactly once when the
// body is closed.
type wrappedReadCloser struct {
	io.Reader
	onClose func()
	closed  bool
}

func (w *wrappedReadCloser) Close() error {
	if !w.closed {
		w.closed = true
		if w.onClose != nil {
			w.onClose()
		}
	}
	return nil
}

// withAuth rejects requests that do not carry a bearer token this server
// minted. The token subject must match the signed-up user.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		token, err := utils.ParseBearerToken(req.Header.Get("Authorization"))
		if err != nil {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		userID, err := utils.ValidateToken(token, s.signKey, tokenIssuer)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		s.mu.Lock()
		known := s.user != nil && s.user.UserID == userID
		s.mu.Unlock()
		if !known {
			http.Error(w, "unknown user", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, req)
	})
}
