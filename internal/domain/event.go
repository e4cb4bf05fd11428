package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeApplicationSubmitted EventType = "application_submitted"
	EventTypeApplicationApproved  EventType = "application_approved"
	EventTypeApplicationRejected  EventType = "application_rejected"
	EventTypePaymentSubmitted     EventType = "payment_submitted"
	EventTypePaymentApproved      EventType = "payment_approved"
	EventTypePaymentRejected      EventType = "payment_rejected"
	EventTypeBookingCancelled     EventType = "booking_cancelled"
)

// Event describes one completed lifecycle transition. Events are
// emitted after the transaction commits; delivery is fire-and-forget.
type Event struct {
	Type            EventType  `json:"type"`
	ExhibitionID    uuid.UUID  `json:"exhibition_id"`
	ApplicationID   uuid.UUID  `json:"application_id"`
	StallInstanceID uuid.UUID  `json:"stall_instance_id"`
	BrandID         uuid.UUID  `json:"brand_id"`
	Reason          string     `json:"reason,omitempty"`
	OccurredAt      time.Time  `json:"occurred_at"`
	PaymentID       *uuid.UUID `json:"payment_id,omitempty"`
}
