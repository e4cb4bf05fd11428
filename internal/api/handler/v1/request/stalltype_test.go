package request

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStallTypeRequest() StallTypeRequest {
	return StallTypeRequest{
		Name:     "Standard booth",
		Length:   decimal.NewFromInt(3),
		Width:    decimal.NewFromInt(2),
		UnitID:   uuid.New(),
		Price:    decimal.NewFromInt(250),
		Quantity: 5,
	}
}

func TestStallTypeRequest_Validate(t *testing.T) {
	req := validStallTypeRequest()
	require.NoError(t, req.Validate())
}

func TestStallTypeRequest_PriceMustBePositive(t *testing.T) {
	req := validStallTypeRequest()
	req.Price = decimal.Zero
	assert.ErrorIs(t, req.Validate(), errNonPositivePrice)

	req.Price = decimal.NewFromInt(-1)
	assert.ErrorIs(t, req.Validate(), errNonPositivePrice)
}

func TestStallTypeRequest_DimensionsMustBePositive(t *testing.T) {
	req := validStallTypeRequest()
	req.Width = decimal.Zero
	assert.ErrorIs(t, req.Validate(), errNonPositiveDimension)

	req = validStallTypeRequest()
	req.Length = decimal.NewFromInt(-2)
	assert.ErrorIs(t, req.Validate(), errNonPositiveDimension)
}

func TestStallTypeRequest_UnitIsRequired(t *testing.T) {
	req := validStallTypeRequest()
	req.UnitID = uuid.Nil
	assert.ErrorIs(t, req.Validate(), errNilUnitID)
}
