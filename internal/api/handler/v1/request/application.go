package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

type CreateApplicationRequest struct {
	Message string `json:"message"`
}

func (req *CreateApplicationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Message, validation.Length(0, 2000)),
	)
}

type BulkDecisionRequest struct {
	ApplicationIDs []uuid.UUID `json:"application_ids"`
	Decision       string      `json:"decision"`
}

func (req *BulkDecisionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ApplicationIDs, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Decision, validation.Required, validation.In("approve", "reject")),
	)
}
