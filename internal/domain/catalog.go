package domain

import "github.com/google/uuid"

// MeasurementUnit and Amenity are reference catalogs. Stall types point
// at them by id; nothing here is validated beyond existence.

type MeasurementUnit struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Amenity struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
