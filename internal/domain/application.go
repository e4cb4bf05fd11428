package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidTransition = errors.New("application transition not allowed")

type ApplicationStatus string

const (
	ApplicationPending        ApplicationStatus = "pending"
	ApplicationPaymentPending ApplicationStatus = "payment_pending"
	ApplicationPaymentReview  ApplicationStatus = "payment_review"
	ApplicationBooked         ApplicationStatus = "booked"
	ApplicationRejected       ApplicationStatus = "rejected"
)

type ApplicationEvent string

const (
	EventApproveForPayment ApplicationEvent = "approve_for_payment"
	EventReject            ApplicationEvent = "reject"
	EventSubmitPayment     ApplicationEvent = "submit_payment"
	EventApprovePayment    ApplicationEvent = "approve_payment"
	EventRejectPayment     ApplicationEvent = "reject_payment"
)

// StallApplication is a brand's request to occupy a specific stall
// instance. QuotedPrice is the effective price frozen at claim time;
// later price edits never change what the brand owes.
type StallApplication struct {
	ID              uuid.UUID         `json:"id"`
	ExhibitionID    uuid.UUID         `json:"exhibition_id"`
	StallInstanceID uuid.UUID         `json:"stall_instance_id"`
	BrandID         uuid.UUID         `json:"brand_id"`
	Message         string            `json:"message"`
	QuotedPrice     decimal.Decimal   `json:"quoted_price"`
	Status          ApplicationStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// IsTerminal reports whether the status can never change again.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationBooked || s == ApplicationRejected
}

// Next returns the status an application moves to when event fires.
// Any pair not in the table is rejected with ErrInvalidTransition.
func (s ApplicationStatus) Next(event ApplicationEvent) (ApplicationStatus, error) {
	switch s {
	case ApplicationPending:
		switch event {
		case EventApproveForPayment:
			return ApplicationPaymentPending, nil
		case EventReject:
			return ApplicationRejected, nil
		}
	case ApplicationPaymentPending:
		if event == EventSubmitPayment {
			return ApplicationPaymentReview, nil
		}
	case ApplicationPaymentReview:
		switch event {
		case EventApprovePayment:
			return ApplicationBooked, nil
		case EventRejectPayment:
			return ApplicationPaymentPending, nil
		}
	case ApplicationBooked, ApplicationRejected:
		// Terminal; fall through.
	}

	return "", ErrInvalidTransition
}

// BulkDecision is one per-row outcome of a best-effort bulk action.
type BulkDecision struct {
	ApplicationID uuid.UUID `json:"application_id"`
	OK            bool      `json:"ok"`
	Error         string    `json:"error,omitempty"`
}
