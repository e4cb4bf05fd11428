package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StallInstanceStatus string

const (
	StallAvailable StallInstanceStatus = "available"
	StallPending   StallInstanceStatus = "pending"
	StallBooked    StallInstanceStatus = "booked"
)

// StallType is an organiser-defined template for a category of stall.
// Quantity is the number of physical instances the layout generator
// produces from it.
type StallType struct {
	ID           uuid.UUID       `json:"id"`
	ExhibitionID uuid.UUID       `json:"exhibition_id"`
	Name         string          `json:"name"`
	Length       decimal.Decimal `json:"length"`
	Width        decimal.Decimal `json:"width"`
	UnitID       uuid.UUID       `json:"unit_id"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Amenities    []Amenity       `json:"amenities"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// StallInstance is one physical, individually bookable slot generated
// from a StallType. Status is mutated exclusively through the
// compare-and-swap surface in the repository layer.
type StallInstance struct {
	ID             uuid.UUID           `json:"id"`
	StallTypeID    uuid.UUID           `json:"stall_type_id"`
	ExhibitionID   uuid.UUID           `json:"exhibition_id"`
	InstanceNumber int                 `json:"instance_number"`
	PositionX      float64             `json:"position_x"`
	PositionY      float64             `json:"position_y"`
	RotationAngle  float64             `json:"rotation_angle"`
	Status         StallInstanceStatus `json:"status"`
	Price          *decimal.Decimal    `json:"price,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// EffectivePrice resolves the bookable price: the per-instance override
// when present, the stall type price otherwise.
func (si StallInstance) EffectivePrice(typePrice decimal.Decimal) decimal.Decimal {
	if si.Price != nil {
		return *si.Price
	}
	return typePrice
}

// StallListing is the brand-facing read model of one instance, with
// the price already resolved.
type StallListing struct {
	StallInstance
	StallTypeName  string          `json:"stall_type_name"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
}

// LayoutBatch is the replacement set of available instances for one
// stall type, applied atomically with the other batches of the layout.
type LayoutBatch struct {
	StallTypeID uuid.UUID
	Instances   []StallInstance
}

// CanTransition is the closed transition table for instance statuses.
// booked -> available is deliberately absent; releasing a booked stall
// goes through the privileged cancel-booking operation.
func (s StallInstanceStatus) CanTransition(to StallInstanceStatus) bool {
	switch s {
	case StallAvailable:
		return to == StallPending
	case StallPending:
		return to == StallAvailable || to == StallBooked
	case StallBooked:
		return false
	default:
		return false
	}
}
