package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

type stubProcessor struct {
	status   int
	resp     *domain.WebhookResponse
	endpoint string
	raw      []byte
	calls    int
}

func (s *stubProcessor) ProcessDelivery(ctx context.Context, endpoint string, raw []byte) (int, *domain.WebhookResponse) {
	s.calls++
	s.endpoint = endpoint
	s.raw = raw
	return s.status, s.resp
}

func newWebhookTestServer(t *testing.T, processor *stubProcessor, secret string) *httptest.Server {
	handler := NewWebhookHandler(processor, nil, logger.NewTestLogger(t), secret, "X-Webhook-Secret")
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestWebhookHandler_SecretGate(t *testing.T) {
	processor := &stubProcessor{status: http.StatusOK, resp: &domain.WebhookResponse{Status: "success"}}
	srv := newWebhookTestServer(t, processor, "topsecret")

	t.Run("missing secret is 401", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/webhooks/appointment", "application/json",
			strings.NewReader(`{"event":"appointment_booked"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var envelope domain.WebhookResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
		assert.Equal(t, "error", envelope.Status)
		assert.Equal(t, 0, processor.calls)
	})

	t.Run("wrong secret is 401", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/webhooks/appointment",
			strings.NewReader(`{"event":"appointment_booked"}`))
		req.Header.Set("X-Webhook-Secret", "nope")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, 0, processor.calls)
	})

	t.Run("correct secret reaches the processor", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/webhooks/appointment",
			strings.NewReader(`{"event":"appointment_booked"}`))
		req.Header.Set("X-Webhook-Secret", "topsecret")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, processor.calls)
		assert.Equal(t, "/api/webhooks/appointment", processor.endpoint)
	})
}

func TestWebhookHandler_OpenEndpointWithoutSecret(t *testing.T) {
	processor := &stubProcessor{status: http.StatusOK, resp: &domain.WebhookResponse{Status: "success", Message: "delivery processed"}}
	srv := newWebhookTestServer(t, processor, "")

	resp, err := http.Post(srv.URL+"/api/webhooks/inbound", "application/json",
		strings.NewReader(`{"event":"appointment_booked"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, processor.calls)
}

func TestWebhookHandler_InvalidJSONIs400(t *testing.T) {
	processor := &stubProcessor{status: http.StatusOK, resp: &domain.WebhookResponse{Status: "success"}}
	srv := newWebhookTestServer(t, processor, "")

	resp, err := http.Post(srv.URL+"/api/webhooks/appointment", "application/json",
		strings.NewReader(`{"event": "appointment_booked"`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, processor.calls)
}

func TestWebhookHandler_MethodGate(t *testing.T) {
	processor := &stubProcessor{status: http.StatusOK, resp: &domain.WebhookResponse{Status: "success"}}
	srv := newWebhookTestServer(t, processor, "")

	resp, err := http.Get(srv.URL + "/api/webhooks/appointment")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, 0, processor.calls)
}

func TestWebhookHandler_PassesEnvelopeThrough(t *testing.T) {
	processor := &stubProcessor{
		status: http.StatusOK,
		resp:   &domain.WebhookResponse{Status: "error", Message: "processing failed, delivery recorded", EventID: "evt-1"},
	}
	srv := newWebhookTestServer(t, processor, "")

	resp, err := http.Post(srv.URL+"/api/webhooks/status", "application/json",
		strings.NewReader(`{"event":"status_changed","event_id":"evt-1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope domain.WebhookResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "error", envelope.Status)
	assert.Equal(t, "evt-1", envelope.EventID)
}
