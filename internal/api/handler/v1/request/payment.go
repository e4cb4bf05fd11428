package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/shopspring/decimal"
)

var errNonPositiveAmount = errors.New("amount must be positive")

type SubmitPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
	Email         string          `json:"email"`
	ProofFileURL  *string         `json:"proof_file_url,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
}

func (req *SubmitPaymentRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.TransactionID, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Notes, validation.Length(0, 2000)),
	)
	if err != nil {
		return err
	}

	if !req.Amount.IsPositive() {
		return errNonPositiveAmount
	}

	return nil
}

type ReviewPaymentRequest struct {
	Decision        string `json:"decision"`
	RejectionReason string `json:"rejection_reason"`
}

func (req *ReviewPaymentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Decision, validation.Required, validation.In("approve", "reject")),
		validation.Field(&req.RejectionReason, validation.Length(0, 1000)),
	)
}
