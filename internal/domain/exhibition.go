package domain

import (
	"time"

	"github.com/google/uuid"
)

type ExhibitionStatus string

const (
	ExhibitionDraft     ExhibitionStatus = "draft"
	ExhibitionPublished ExhibitionStatus = "published"
	ExhibitionCancelled ExhibitionStatus = "cancelled"
	ExhibitionCompleted ExhibitionStatus = "completed"
)

type Exhibition struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Venue       string           `json:"venue"`
	Description string           `json:"description"`
	StartsAt    time.Time        `json:"starts_at"`
	EndsAt      time.Time        `json:"ends_at"`
	OrganiserID uuid.UUID        `json:"organiser_id"`
	Status      ExhibitionStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// IsEditable reports whether stall types and layouts may still be mutated.
func (e Exhibition) IsEditable() bool {
	return e.Status == ExhibitionDraft || e.Status == ExhibitionPublished
}
