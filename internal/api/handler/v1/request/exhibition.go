package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

var errEndsBeforeStarts = errors.New("ends_at must be after starts_at")

type CreateExhibitionRequest struct {
	Name        string    `json:"name"`
	Venue       string    `json:"venue"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

func (req *CreateExhibitionRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.Venue, validation.Length(0, 200)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.StartsAt, validation.Required),
		validation.Field(&req.EndsAt, validation.Required),
	)
	if err != nil {
		return err
	}

	if !req.EndsAt.After(req.StartsAt) {
		return errEndsBeforeStarts
	}

	return nil
}
