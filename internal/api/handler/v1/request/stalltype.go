package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expofair/expofair-api/internal/layout"
)

var (
	errNonPositiveDimension = errors.New("length and width must be positive")
	errNonPositivePrice     = errors.New("price must be positive")
	errNilUnitID            = errors.New("unit_id is required")
)

type StallTypeRequest struct {
	Name       string          `json:"name"`
	Length     decimal.Decimal `json:"length"`
	Width      decimal.Decimal `json:"width"`
	UnitID     uuid.UUID       `json:"unit_id"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	AmenityIDs []uuid.UUID     `json:"amenity_ids"`
}

func (req *StallTypeRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Quantity, validation.Required,
			validation.Min(1), validation.Max(layout.MaxInstances)),
	)
	if err != nil {
		return err
	}

	if req.UnitID == uuid.Nil {
		return errNilUnitID
	}
	if !req.Length.IsPositive() || !req.Width.IsPositive() {
		return errNonPositiveDimension
	}
	if !req.Price.IsPositive() {
		return errNonPositivePrice
	}

	return nil
}
