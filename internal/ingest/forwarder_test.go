package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docetl/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPForwarder_Forward(t *testing.T) {
	payload := model.ForwardingPayload{Filename: "Invoice_123.png", Content: "Total: $50\nDate: 2024-01-01"}

	t.Run("success", func(t *testing.T) {
		var got model.ForwardingPayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/document", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		f := NewHTTPForwarder(srv.URL+"/api/document", time.Second)
		err := f.Forward(context.Background(), payload)

		assert.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "workspace missing", http.StatusBadGateway)
		}))
		defer srv.Close()

		f := NewHTTPForwarder(srv.URL, time.Second)
		err := f.Forward(context.Background(), payload)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
		assert.Equal(t, "workspace missing", statusErr.Body)
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("network error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		f := NewHTTPForwarder(url, time.Second)
		err := f.Forward(context.Background(), payload)

		assert.ErrorContains(t, err, "post to ingest endpoint")
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		f := NewHTTPForwarder(srv.URL, 50*time.Millisecond)
		err := f.Forward(context.Background(), payload)

		assert.Error(t, err)
	})
}

func TestStatusError(t *testing.T) {
	assert.Equal(t, "ingest endpoint returned status 500", (&StatusError{StatusCode: 500}).Error())
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Forward(context.Background(), model.ForwardingPayload{}))
}
