package domain

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Inbound event types understood by the dispatcher. Senders use a few
// spellings for the same event; aliases map onto the canonical names.
const (
	EventAppointmentBooked = "appointment_booked"
	EventCallBooked        = "call_booked"
	EventDealStatusChanged = "deal_status_changed"
	EventStatusChanged     = "status_changed"
)

// WebhookLogStatus tracks the lifecycle of a delivery in the idempotency log.
type WebhookLogStatus string

const (
	WebhookLogStatusProcessing WebhookLogStatus = "processing"
	WebhookLogStatusSuccess    WebhookLogStatus = "success"
	WebhookLogStatusFailed     WebhookLogStatus = "failed"
)

// WebhookLog is the idempotency and audit record for one inbound delivery.
// DeliveryID is unique; its existence is the sole dedup signal.
type WebhookLog struct {
	ID         string           `json:"id" db:"id"`
	DeliveryID string           `json:"delivery_id" db:"delivery_id"`
	Endpoint   string           `json:"endpoint" db:"endpoint"`
	Payload    string           `json:"payload" db:"payload"`
	Status     WebhookLogStatus `json:"status" db:"status"`
	HTTPStatus int              `json:"http_status" db:"http_status"`
	Error      *string          `json:"error,omitempty" db:"error"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at" db:"updated_at"`
}

type WebhookLogRepository interface {
	// ClaimDelivery inserts the log row with status processing before any
	// mutation happens. It returns false when a row with the same delivery
	// ID already exists - the unique constraint on delivery_id, not a prior
	// read, is the authoritative duplicate signal.
	ClaimDelivery(ctx context.Context, log *WebhookLog) (bool, error)

	// FinalizeDelivery records the terminal status of a claimed delivery
	FinalizeDelivery(ctx context.Context, deliveryID string, status WebhookLogStatus, httpStatus int, errText *string) error

	// GetByDeliveryID retrieves a log row for audit purposes
	GetByDeliveryID(ctx context.Context, deliveryID string) (*WebhookLog, error)

	// ListWebhookLogs returns recent deliveries for an endpoint, newest first
	ListWebhookLogs(ctx context.Context, endpoint string, limit, offset int) ([]*WebhookLog, error)
}

// WebhookResponse is the envelope every webhook delivery gets back.
type WebhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	EventID string `json:"eventId,omitempty"`
}

// InboundPayload is the loosely-shaped content extracted from a third-party
// delivery. Field presence is never guaranteed; all of it is best effort.
type InboundPayload struct {
	Event          string
	EventID        string
	UserID         string
	ContactEmail   string
	ContactName    string
	ContactPhone   string
	ContactCompany string
	DealID         string
	DealTitle      string
	DealValue      float64
	DealCurrency   string
	DealStageID    string
	NewStatus      string
	BookingDetails JSONMap
	Raw            []byte
}

// firstString returns the first non-empty string among the given gjson paths.
func firstString(parsed gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := parsed.Get(p); v.Exists() {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

// ParseInboundPayload extracts the recognized fragments from an arbitrary
// JSON body, tolerating nested, flattened and case-variant shapes.
func ParseInboundPayload(raw []byte) *InboundPayload {
	parsed := gjson.ParseBytes(raw)

	p := &InboundPayload{
		Event:          firstString(parsed, "event", "event_type", "type", "data.event"),
		EventID:        firstString(parsed, "event_id", "eventId", "data.event_id"),
		UserID:         firstString(parsed, "userId", "user_id"),
		ContactEmail:   firstString(parsed, "contact.email", "contact.Email", "email", "Email", "contact_email"),
		ContactName:    firstString(parsed, "contact.name", "contact.Name", "name", "Name", "full_name"),
		ContactPhone:   firstString(parsed, "contact.phone", "contact.Phone", "phone", "Phone", "phone_number"),
		ContactCompany: firstString(parsed, "contact.company", "company"),
		DealID:         firstString(parsed, "deal.id", "deal_id"),
		DealTitle:      firstString(parsed, "deal.title", "deal_title"),
		DealCurrency:   firstString(parsed, "deal.currency", "currency"),
		DealStageID:    firstString(parsed, "deal.stageId", "deal.stage_id"),
		NewStatus:      firstString(parsed, "deal.new_status", "new_status", "deal.status"),
		Raw:            raw,
	}

	if v := parsed.Get("deal.value"); v.Exists() {
		p.DealValue = v.Float()
	} else if v := parsed.Get("value"); v.Exists() {
		p.DealValue = v.Float()
	}

	if booking := parsed.Get("booking_details"); booking.Exists() && booking.IsObject() {
		var bag JSONMap
		if err := json.Unmarshal([]byte(booking.Raw), &bag); err == nil {
			p.BookingDetails = bag
		}
	}
	if t := firstString(parsed, "appointment_time", "booking_details.appointment_time"); t != "" {
		if p.BookingDetails == nil {
			p.BookingDetails = JSONMap{}
		}
		p.BookingDetails["appointment_time"] = t
	}

	return p
}

// CanonicalizeJSON re-encodes a JSON document with recursively sorted object
// keys so that semantically identical payloads hash identically. Numbers keep
// their original textual representation.
func CanonicalizeJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	// encoding/json sorts map keys on marshal, which gives the stable key
	// ordering the dedup hash relies on.
	return json.Marshal(doc)
}

// ComputeDeliveryID derives the idempotency key for a delivery: the
// caller-supplied event ID when present, otherwise a SHA-256 over the
// canonicalized payload. No time bucketing.
func ComputeDeliveryID(eventID string, raw []byte) string {
	if eventID != "" {
		return eventID
	}
	canonical, err := CanonicalizeJSON(raw)
	if err != nil {
		// Unparseable bodies are rejected before dedup, but hash the raw
		// bytes anyway so this function never fails.
		canonical = raw
	}
	sum := sha256.Sum256(canonical)
	return "sha256:" + hex.EncodeToString(sum[:])
}
