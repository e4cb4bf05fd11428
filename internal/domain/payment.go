package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPendingReview PaymentStatus = "pending_review"
	PaymentApproved      PaymentStatus = "approved"
	PaymentRejected      PaymentStatus = "rejected"
)

type PaymentDecision string

const (
	PaymentDecisionApprove PaymentDecision = "approve"
	PaymentDecisionReject  PaymentDecision = "reject"
)

// PaymentSubmission is a brand's claimed proof of payment against an
// approved application, pending organiser review. At most one
// pending_review submission exists per application.
type PaymentSubmission struct {
	ID              uuid.UUID       `json:"id"`
	ApplicationID   uuid.UUID       `json:"application_id"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionID   string          `json:"transaction_id"`
	Email           string          `json:"email"`
	ProofFileURL    *string         `json:"proof_file_url,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	Status          PaymentStatus   `json:"status"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	ReviewedBy      *uuid.UUID      `json:"reviewed_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
