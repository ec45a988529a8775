// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package requestmaker

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"errors"
	"sync"
)

// gzipWriterPool is a pool of reusable [gzip.Writer] instances. Pooling
// writers avoids repeated heap allocations on the hot PATCH path; each
// writer is reset onto a fresh buffer via [gzip.Writer.Reset] before use and
// returned to the pool after the payload has been flushed and closed.
var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(nil)
	},
}

// gzipCompress compresses payload for a Content-Encoding: gzip PATCH body.
// Any failure is returned as a *[CompressionError] so the sync operation can
// notify the affected provider and retry the request uncompressed.
func gzipCompress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer

	gz := gzipWriterPool.Get().(*gzip.Writer)
	gz.Reset(&buf)

	if _, err := gz.Write(payload); err != nil {
		gz.Close()
		gzipWriterPool.Put(gz)
		return nil, &CompressionError{Code: gzipErrorCode(err), Err: err}
	}
	if err := gz.Close(); err != nil {
		gzipWriterPool.Put(gz)
		return nil, &CompressionError{Code: gzipErrorCode(err), Err: err}
	}

	gzipWriterPool.Put(gz)
	return buf.Bytes(), nil
}

// gzipErrorCode maps a compression failure onto the observability code
// space: corrupted-data conditions map to GzipCodeData, everything
// else (I/O on the underlying buffer, internal state) to GzipCodeStream.
func gzipErrorCode(err error) int {
	var corrupt flate.CorruptInputError
	if errors.Is(err, gzip.ErrHeader) || errors.Is(err, gzip.ErrChecksum) || errors.As(err, &corrupt) {
		return GzipCodeData
	}
	return GzipCodeStream
}
