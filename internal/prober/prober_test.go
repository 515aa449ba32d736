package prober

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, true)
	result := Probe(context.Background(), srv.URL, client)

	assert.True(t, result.Up)
	assert.Equal(t, ErrorKindUnknown, result.ErrorKind)
	require.NotNil(t, result.HTTPStatus)
	assert.Equal(t, http.StatusOK, *result.HTTPStatus)
	require.NotNil(t, result.LatencyMs)
	assert.Nil(t, result.ErrorMessage)
}

func TestProbeHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, true)
	result := Probe(context.Background(), srv.URL, client)

	assert.False(t, result.Up)
	assert.Equal(t, ErrorKindHTTP, result.ErrorKind)
	require.NotNil(t, result.HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, *result.HTTPStatus)
	require.NotNil(t, result.ErrorMessage)
	assert.Equal(t, "HTTP 500", *result.ErrorMessage)
}

func TestProbeRedirectFollowedToFinalStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/redirect" {
			http.Redirect(w, r, "/final", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, true)
	result := Probe(context.Background(), srv.URL+"/redirect", client)

	assert.True(t, result.Up)
	require.NotNil(t, result.HTTPStatus)
	assert.Equal(t, http.StatusOK, *result.HTTPStatus)
}

func TestProbeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(1*time.Millisecond, true)
	result := Probe(context.Background(), srv.URL, client)

	assert.False(t, result.Up)
	assert.Equal(t, ErrorKindTimeout, result.ErrorKind)
	require.NotNil(t, result.ErrorMessage)
}

func TestProbeConnectionRefused(t *testing.T) {
	client := NewClient(2*time.Second, true)
	// Nothing listens here; the connection attempt itself fails.
	result := Probe(context.Background(), "http://127.0.0.1:1", client)

	assert.False(t, result.Up)
	assert.Equal(t, ErrorKindConnect, result.ErrorKind)
}

func TestProbeDNSFailure(t *testing.T) {
	client := NewClient(2*time.Second, true)
	result := Probe(context.Background(), "http://this-host-does-not-resolve.invalid", client)

	assert.False(t, result.Up)
	assert.Equal(t, ErrorKindDNS, result.ErrorKind)
}

func TestProbeMalformedRequest(t *testing.T) {
	client := NewClient(time.Second, true)
	result := Probe(context.Background(), "://not-a-valid-url", client)

	assert.False(t, result.Up)
	assert.Equal(t, ErrorKindUnknown, result.ErrorKind)
}

func TestProbeTLSVerificationFailure(t *testing.T) {
	// A self-signed certificate fails verification when verifyTLS is on.
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, true)
	result := Probe(context.Background(), srv.URL, client)

	assert.False(t, result.Up)
	assert.Equal(t, ErrorKindTLS, result.ErrorKind)
	assert.Nil(t, result.HTTPStatus)
	require.NotNil(t, result.ErrorMessage)
	assert.NotEmpty(t, *result.ErrorMessage)
}

func TestProbeSkipsTLSVerificationWhenDisabled(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, false)
	result := Probe(context.Background(), srv.URL, client)

	assert.True(t, result.Up)
	require.NotNil(t, result.HTTPStatus)
	assert.Equal(t, http.StatusOK, *result.HTTPStatus)
}
