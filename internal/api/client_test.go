package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jatassi/slipstream-go/internal/errors"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when base url missing")
	}
	if _, err := NewClient(Config{BaseURL: "/api"}); err == nil {
		t.Fatal("expected error for relative base url")
	}
	if _, err := NewClient(Config{BaseURL: "http://localhost:8989/api"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClientSendsHeaders(t *testing.T) {
	var gotAPIKey, gotRequestID, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("X-Api-Key")
		gotRequestID = r.Header.Get("X-Request-Id")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"enabled":true,"intervalMin":15}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, APIKey: "secret-key"})
	require.NoError(t, err)

	_, err = client.RSSSync().GetSettings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "secret-key", gotAPIKey)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "application/json", gotAccept)
}

func TestClientTranslatesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "interval out of range", http.StatusBadRequest)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.RSSSync().GetSettings(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsServer(err))
	assert.Equal(t, http.StatusBadRequest, apperrors.GetStatus(err))
	assert.Contains(t, err.Error(), "interval out of range")
}

func TestClientTranslatesDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.RSSSync().GetStatus(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsDecode(err))
}

func TestClientTranslatesNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // connection refused from here on

	client, err := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.Storage().List(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsNetwork(err))
}

func TestClientPreservesBasePath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"running":false,"totalReleases":0,"matched":0,"grabbed":0,"elapsed":0}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL + "/api/"})
	require.NoError(t, err)

	_, err = client.RSSSync().GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/rsssync/status", gotPath)
}
