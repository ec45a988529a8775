package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExecute_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(4*time.Second, nil)
	resp, err := c.Execute(context.Background(), Request{
		Method:  MethodGet,
		URL:     srv.URL + "/sync/bookmarks",
		Headers: map[string]string{"Authorization": "Bearer tok"},
	})

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.False(t, resp.NotModified)
	require.JSONEq(t, `{"ok":true}`, string(resp.Body))
}

func TestExecute_NotModifiedIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	c := New(4*time.Second, nil)
	resp, err := c.Execute(context.Background(), Request{Method: MethodGet, URL: srv.URL})

	require.NoError(t, err)
	require.True(t, resp.NotModified)
}

func TestExecute_NonSuccessMapsToStatusCodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(4*time.Second, nil)
	resp, err := c.Execute(context.Background(), Request{Method: MethodPatch, URL: srv.URL})

	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var statusErr *StatusCodeError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusForbidden, statusErr.StatusCode())
}
