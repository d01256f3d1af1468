package telephony

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PlaceCall_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/calls", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"call-1","status":"queued"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-123")
	resp, err := client.PlaceCall(context.Background(), &CallRequest{To: "+15550100"})
	require.NoError(t, err)
	assert.Equal(t, "call-1", resp.ID)
	assert.Equal(t, "queued", resp.Status)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":"sms-1","status":"sent"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-123", WithMaxRetries(3), withNoBackoff())
	resp, err := client.SendSMS(context.Background(), &SMSRequest{To: "+15550100", Body: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "sms-1", resp.ID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"bad number"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-123", WithMaxRetries(3), withNoBackoff())
	_, err := client.SendSMS(context.Background(), &SMSRequest{To: "nope", Body: "hi"})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_ExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-123", WithMaxRetries(2), withNoBackoff())
	_, err := client.PlaceCall(context.Background(), &CallRequest{To: "+15550100"})
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func withNoBackoff() Option {
	return func(c *Client) {
		c.backoff = func(int) time.Duration { return 0 }
	}
}
