package layout

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Grid constants. Positions are derived purely from a sequential slot
// index, so identical inputs always yield identical placements.
const (
	SlotsPerRow = 5
	BoxWidth    = 10.0
	BoxHeight   = 10.0
	Padding     = 2.0

	// MaxInstances caps the total slot count of one exhibition layout.
	MaxInstances = 200
)

var (
	ErrTooManyInstances = errors.New("layout exceeds maximum instance count")
	ErrQuantityTooLow   = errors.New("quantity below number of claimed instances")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrDuplicatePinned  = errors.New("duplicate pinned instance number")
)

// TypeSpec describes one stall type to lay out. Pinned entries are the
// instances that are pending or booked; those keep their stored numbers
// and positions and are never re-placed.
type TypeSpec struct {
	StallTypeID uuid.UUID
	Quantity    int
	Pinned      []PinnedInstance
}

// PinnedInstance is an immovable slot. Its position stays occupied
// across regenerations.
type PinnedInstance struct {
	InstanceNumber int
	PositionX      float64
	PositionY      float64
}

// Placement is one new stall instance to persist.
type Placement struct {
	InstanceNumber int
	PositionX      float64
	PositionY      float64
}

// TypePlan holds the placements generated for one stall type.
type TypePlan struct {
	StallTypeID uuid.UUID
	Placements  []Placement
}

// Generate packs the new instances of every stall type onto a fixed
// grid, left to right in rows of SlotsPerRow. New slots start after
// the highest grid slot held by a pinned instance, so regeneration
// never places a fresh stall on top of an immovable one; the grid
// around immovable slots is not repacked.
func Generate(types []TypeSpec) ([]TypePlan, error) {
	total := 0
	slot := 0
	for _, t := range types {
		if t.Quantity < 1 {
			return nil, fmt.Errorf("stall type %v: %w", t.StallTypeID, ErrInvalidQuantity)
		}
		if len(t.Pinned) > t.Quantity {
			return nil, fmt.Errorf("stall type %v: %w", t.StallTypeID, ErrQuantityTooLow)
		}
		seen := make(map[int]struct{}, len(t.Pinned))
		for _, p := range t.Pinned {
			if _, dup := seen[p.InstanceNumber]; dup {
				return nil, fmt.Errorf("stall type %v: %w", t.StallTypeID, ErrDuplicatePinned)
			}
			seen[p.InstanceNumber] = struct{}{}
			if next := slotIndex(p.PositionX, p.PositionY) + 1; next > slot {
				slot = next
			}
		}
		total += t.Quantity
	}
	if total > MaxInstances {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyInstances, total, MaxInstances)
	}

	plans := make([]TypePlan, 0, len(types))
	for _, t := range types {
		numbers := freeNumbers(t.Quantity, t.Pinned)
		placements := make([]Placement, 0, len(numbers))
		for _, n := range numbers {
			placements = append(placements, Placement{
				InstanceNumber: n,
				PositionX:      position(slot % SlotsPerRow),
				PositionY:      rowPosition(slot / SlotsPerRow),
			})
			slot++
		}
		plans = append(plans, TypePlan{StallTypeID: t.StallTypeID, Placements: placements})
	}

	return plans, nil
}

// freeNumbers returns the quantity-len(pinned) lowest instance numbers
// not taken by a pinned slot, ascending.
func freeNumbers(quantity int, pinned []PinnedInstance) []int {
	taken := make(map[int]struct{}, len(pinned))
	for _, p := range pinned {
		taken[p.InstanceNumber] = struct{}{}
	}

	want := quantity - len(pinned)
	numbers := make([]int, 0, want)
	for n := 1; len(numbers) < want; n++ {
		if _, ok := taken[n]; ok {
			continue
		}
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	return numbers
}

// slotIndex recovers the grid slot a stored position occupies.
func slotIndex(x, y float64) int {
	col := int(x/(BoxWidth+Padding) + 0.5)
	row := int(y/(BoxHeight+Padding) + 0.5)

	return row*SlotsPerRow + col
}

func position(col int) float64 {
	return float64(col) * (BoxWidth + Padding)
}

func rowPosition(row int) float64 {
	return float64(row) * (BoxHeight + Padding)
}
