package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInboundPayload_NestedShape(t *testing.T) {
	raw := []byte(`{
		"event": "appointment_booked",
		"event_id": "E1",
		"userId": "u-1",
		"contact": {"email": "a@x.com", "name": "Ada Lovelace", "phone": "+1555"},
		"deal": {"title": "D1", "value": 1000, "currency": "USD"},
		"booking_details": {"location": "Zoom"},
		"appointment_time": "2026-09-01T10:00:00Z"
	}`)

	p := ParseInboundPayload(raw)

	assert.Equal(t, "appointment_booked", p.Event)
	assert.Equal(t, "E1", p.EventID)
	assert.Equal(t, "u-1", p.UserID)
	assert.Equal(t, "a@x.com", p.ContactEmail)
	assert.Equal(t, "Ada Lovelace", p.ContactName)
	assert.Equal(t, "+1555", p.ContactPhone)
	assert.Equal(t, "D1", p.DealTitle)
	assert.Equal(t, 1000.0, p.DealValue)
	assert.Equal(t, "USD", p.DealCurrency)
	require.NotNil(t, p.BookingDetails)
	assert.Equal(t, "Zoom", p.BookingDetails["location"])
	assert.Equal(t, "2026-09-01T10:00:00Z", p.BookingDetails["appointment_time"])
}

func TestParseInboundPayload_FlattenedCaseVariants(t *testing.T) {
	raw := []byte(`{
		"type": "call_booked",
		"Email": "b@y.com",
		"Name": "Grace",
		"phone_number": "+4477",
		"value": 250.5
	}`)

	p := ParseInboundPayload(raw)

	assert.Equal(t, "call_booked", p.Event)
	assert.Equal(t, "b@y.com", p.ContactEmail)
	assert.Equal(t, "Grace", p.ContactName)
	assert.Equal(t, "+4477", p.ContactPhone)
	assert.Equal(t, 250.5, p.DealValue)
	assert.Empty(t, p.EventID)
}

func TestParseInboundPayload_StatusChange(t *testing.T) {
	raw := []byte(`{
		"event": "deal_status_changed",
		"deal": {"id": "d-42", "new_status": "Proposal Sent"}
	}`)

	p := ParseInboundPayload(raw)

	assert.Equal(t, "deal_status_changed", p.Event)
	assert.Equal(t, "d-42", p.DealID)
	assert.Equal(t, "Proposal Sent", p.NewStatus)
}

func TestParseInboundPayload_NoEvent(t *testing.T) {
	p := ParseInboundPayload([]byte(`{"foo": "bar"}`))
	assert.Empty(t, p.Event)
}

func TestCanonicalizeJSON_StableAcrossKeyOrder(t *testing.T) {
	a := []byte(`{"b": 2, "a": {"y": [1, 2], "x": "v"}}`)
	b := []byte(`{"a": {"x": "v", "y": [1, 2]}, "b": 2}`)

	ca, err := CanonicalizeJSON(a)
	require.NoError(t, err)
	cb, err := CanonicalizeJSON(b)
	require.NoError(t, err)

	assert.Equal(t, string(ca), string(cb))
}

func TestCanonicalizeJSON_Invalid(t *testing.T) {
	_, err := CanonicalizeJSON([]byte(`{not json`))
	assert.Error(t, err)
}

func TestComputeDeliveryID_PrefersEventID(t *testing.T) {
	id := ComputeDeliveryID("E1", []byte(`{"event": "x"}`))
	assert.Equal(t, "E1", id)
}

func TestComputeDeliveryID_ContentHashFallback(t *testing.T) {
	a := ComputeDeliveryID("", []byte(`{"b": 1, "a": 2}`))
	b := ComputeDeliveryID("", []byte(`{"a": 2, "b": 1}`))

	assert.True(t, strings.HasPrefix(a, "sha256:"))
	// Key order must not change the derived identifier.
	assert.Equal(t, a, b)

	c := ComputeDeliveryID("", []byte(`{"a": 2, "b": 99}`))
	assert.NotEqual(t, a, c)
}
