package requestmaker

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duckduckgo/sync-engine-go/dataprovider"
	"github.com/duckduckgo/sync-engine-go/internal/endpoints"
)

func newTestMaker(t *testing.T) *Maker {
	t.Helper()
	eps, err := endpoints.New("https://s.example")
	require.NoError(t, err)
	return New(endpoints.NewAtomic(eps))
}

func syncable(id string, fields map[string]string) dataprovider.Syncable {
	s := dataprovider.Syncable{ID: id, Fields: map[string]json.RawMessage{}}
	for k, v := range fields {
		raw, _ := json.Marshal(v)
		s.Fields[k] = raw
	}
	return s
}

func TestMakeGetRequest(t *testing.T) {
	m := newTestMaker(t)

	req, err := m.MakeGetRequest("t1", []string{"bookmarks", "settings"})
	require.NoError(t, err)
	require.Equal(t, "https://s.example/sync/bookmarks,settings", req.URL)
	require.Equal(t, "Bearer t1", req.Headers["Authorization"])
	require.Empty(t, req.Body)
}

func TestMakeGetRequest_NoFeatures(t *testing.T) {
	m := newTestMaker(t)

	_, err := m.MakeGetRequest("t1", nil)
	require.ErrorIs(t, err, ErrNoFeaturesSpecified)
}

func TestMakePatchRequest_SingleFeatureEnvelope(t *testing.T) {
	m := newTestMaker(t)

	req, err := m.MakePatchRequest("t1", map[string]Batch{
		"bookmarks": {
			Updates:       []dataprovider.Syncable{syncable("b1", map[string]string{"title": "Y2lwaGVy"})},
			ModifiedSince: "2024-01-01T00:00:00Z",
		},
	}, false)
	require.NoError(t, err)
	require.Equal(t, "https://s.example/sync/data", req.URL)
	require.Equal(t, "Bearer t1", req.Headers["Authorization"])
	require.Empty(t, req.Headers["Content-Encoding"])

	require.JSONEq(t, `{
		"bookmarks": {
			"updates": [{"id": "b1", "title": "Y2lwaGVy"}],
			"modified_since": "2024-01-01T00:00:00Z"
		}
	}`, string(req.Body))
}

func TestMakePatchRequest_FirstSyncSendsNullModifiedSince(t *testing.T) {
	m := newTestMaker(t)

	req, err := m.MakePatchRequest("t1", map[string]Batch{
		"bookmarks": {Updates: []dataprovider.Syncable{syncable("b1", nil)}},
	}, false)
	require.NoError(t, err)
	require.JSONEq(t, `{"bookmarks": {"updates": [{"id": "b1"}], "modified_since": null}}`, string(req.Body))
}

// The envelope format supports several features in one body even though the
// production sync operation sends one feature per PATCH.
func TestMakePatchRequest_MultiFeatureEnvelope(t *testing.T) {
	m := newTestMaker(t)

	req, err := m.MakePatchRequest("t1", map[string]Batch{
		"bookmarks": {Updates: []dataprovider.Syncable{syncable("b1", nil)}, ModifiedSince: "T1"},
		"settings":  {Updates: []dataprovider.Syncable{syncable("s1", nil)}},
	}, false)
	require.NoError(t, err)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(req.Body, &envelope))
	require.Len(t, envelope, 2)
	require.Contains(t, envelope, "bookmarks")
	require.Contains(t, envelope, "settings")
}

func TestMakePatchRequest_Gzip(t *testing.T) {
	m := newTestMaker(t)

	batches := map[string]Batch{
		"bookmarks": {Updates: []dataprovider.Syncable{syncable("b1", map[string]string{"title": "dGl0bGU="})}, ModifiedSince: "T1"},
	}

	plain, err := m.MakePatchRequest("t1", batches, false)
	require.NoError(t, err)

	compressed, err := m.MakePatchRequest("t1", batches, true)
	require.NoError(t, err)
	require.Equal(t, "gzip", compressed.Headers["Content-Encoding"])

	gz, err := gzip.NewReader(bytes.NewReader(compressed.Body))
	require.NoError(t, err)
	inflated, err := io.ReadAll(gz)
	require.NoError(t, err)
	require.JSONEq(t, string(plain.Body), string(inflated))
}

func TestMakePatchRequest_NoFeatures(t *testing.T) {
	m := newTestMaker(t)

	_, err := m.MakePatchRequest("t1", nil, true)
	require.ErrorIs(t, err, ErrNoFeaturesSpecified)
}

func TestDecodeResponse(t *testing.T) {
	body := []byte(`{
		"bookmarks": {
			"last_modified": "2024-01-01T00:00:00Z",
			"entries": [{"id": "b1", "title": "Y2lwaGVy", "page": {"url": "dXJs"}}]
		}
	}`)

	result, err := DecodeResponse(body, "bookmarks")
	require.NoError(t, err)
	require.Equal(t, "2024-01-01T00:00:00Z", result.SyncTimestamp)
	require.Len(t, result.Received, 1)
	require.Equal(t, "b1", result.Received[0].ID)
	require.Contains(t, result.Received[0].Fields, "title")
	require.Contains(t, result.Received[0].Fields, "page")
}

// A server last_modified equal to the previous one is valid and must come
// through verbatim; the codec never interprets timestamps.
func TestDecodeResponse_RepeatedTimestampPassesThrough(t *testing.T) {
	body := []byte(`{"bookmarks": {"last_modified": "T1", "entries": []}}`)

	result, err := DecodeResponse(body, "bookmarks")
	require.NoError(t, err)
	require.Equal(t, "T1", result.SyncTimestamp)
	require.Empty(t, result.Received)
}

func TestDecodeResponse_MissingFeatureKey(t *testing.T) {
	body := []byte(`{"settings": {"last_modified": "T1", "entries": []}}`)

	_, err := DecodeResponse(body, "bookmarks")
	require.ErrorIs(t, err, ErrUnexpectedResponseBody)
}

func TestDecodeResponse_NullLastModified(t *testing.T) {
	body := []byte(`{"bookmarks": {"last_modified": null, "entries": []}}`)

	_, err := DecodeResponse(body, "bookmarks")
	require.ErrorIs(t, err, ErrUnexpectedResponseBody)
}

func TestDecodeResponse_EmptyBody(t *testing.T) {
	_, err := DecodeResponse(nil, "bookmarks")
	require.ErrorIs(t, err, ErrNoResponseBody)
}

func TestCompressionErrorCarriesCode(t *testing.T) {
	compErr := &CompressionError{Code: GzipCodeData, Err: gzip.ErrChecksum}

	var target *CompressionError
	require.True(t, errors.As(error(compErr), &target))
	require.Equal(t, GzipCodeData, target.Code)
	require.ErrorIs(t, compErr, gzip.ErrChecksum)
}
