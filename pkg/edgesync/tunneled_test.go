package edgesync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTunneledTransportExistingIDsParsesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/personal/sync/status", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(tunneledStatus{Instance: "personal", Count: 2, IDs: []string{"a", "b"}})
	}))
	defer srv.Close()

	transport := NewTunneledTransport(srv.URL, "personal", "secret")
	ids, err := transport.ExistingIDs(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestTunneledTransportUploadReturnsTooLargeOn413(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))
	defer srv.Close()

	transport := NewTunneledTransport(srv.URL, "personal", "secret")
	_, _, err := transport.Upload(context.Background(), records("a", "b"))
	require.Error(t, err)

	var tooLarge *ErrBatchTooLarge
	assert.True(t, errors.As(err, &tooLarge))
}

func TestTunneledTransportUploadParsesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req tunneledRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Documents, 2)
		_ = json.NewEncoder(w).Encode(tunneledResult{Status: "ok", Written: 2, Indexed: 2})
	}))
	defer srv.Close()

	transport := NewTunneledTransport(srv.URL, "personal", "secret")
	written, errs, err := transport.Upload(context.Background(), records("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.Empty(t, errs)
}
