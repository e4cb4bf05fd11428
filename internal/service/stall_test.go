package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expofair/expofair-api/internal/domain"
	"github.com/expofair/expofair-api/internal/layout"
)

func TestCreateStallType_ResolvesReferences(t *testing.T) {
	f := newFixture()

	amenityID := uuid.New()
	f.store.mu.Lock()
	f.store.amenities[amenityID] = domain.Amenity{ID: amenityID, Name: "power"}
	f.store.mu.Unlock()

	created, err := f.stalls.CreateStallType(context.Background(), domain.StallType{
		ExhibitionID: f.exhibition.ID,
		Name:         "Corner",
		UnitID:       f.unitID,
		Price:        decimal.NewFromInt(400),
		Quantity:     2,
		Amenities:    []domain.Amenity{{ID: amenityID}},
	}, f.organiser)
	require.NoError(t, err)
	require.Len(t, created.Amenities, 1)
	assert.Equal(t, "power", created.Amenities[0].Name)

	_, err = f.stalls.CreateStallType(context.Background(), domain.StallType{
		ExhibitionID: f.exhibition.ID,
		UnitID:       uuid.New(),
		Quantity:     1,
	}, f.organiser)
	assert.ErrorIs(t, err, ErrUnknownUnit)

	_, err = f.stalls.CreateStallType(context.Background(), domain.StallType{
		ExhibitionID: f.exhibition.ID,
		UnitID:       f.unitID,
		Quantity:     1,
		Amenities:    []domain.Amenity{{ID: uuid.New()}},
	}, f.organiser)
	assert.ErrorIs(t, err, ErrUnknownAmenity)
}

func TestCreateStallType_Authorization(t *testing.T) {
	f := newFixture()

	stallType := domain.StallType{
		ExhibitionID: f.exhibition.ID,
		UnitID:       f.unitID,
		Quantity:     1,
	}

	_, err := f.stalls.CreateStallType(context.Background(), stallType, f.brand)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	// Another organiser does not own this exhibition.
	stranger := domain.User{ID: uuid.New(), Role: domain.RoleOrganiser}
	_, err = f.stalls.CreateStallType(context.Background(), stallType, stranger)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	// Managers may edit any exhibition.
	_, err = f.stalls.CreateStallType(context.Background(), stallType, f.manager)
	assert.NoError(t, err)

	f.store.mu.Lock()
	exhibition := f.store.exhibitions[f.exhibition.ID]
	exhibition.Status = domain.ExhibitionCancelled
	f.store.exhibitions[f.exhibition.ID] = exhibition
	f.store.mu.Unlock()

	_, err = f.stalls.CreateStallType(context.Background(), stallType, f.organiser)
	assert.ErrorIs(t, err, ErrExhibitionClosed)
}

func TestGenerateLayout_ReplacesAvailableInstances(t *testing.T) {
	f := newFixture()

	f.store.mu.Lock()
	stallType := f.store.stallTypes[f.stallType.ID]
	stallType.Quantity = 5
	f.store.stallTypes[f.stallType.ID] = stallType
	f.store.mu.Unlock()

	listings, err := f.stalls.GenerateLayout(context.Background(), f.exhibition.ID, f.organiser)
	require.NoError(t, err)
	require.Len(t, listings, 5)

	numbers := make(map[int]bool)
	for _, listing := range listings {
		numbers[listing.InstanceNumber] = true
		assert.Equal(t, domain.StallAvailable, listing.Status)
		assert.Equal(t, "Standard", listing.StallTypeName)
		assert.True(t, listing.EffectivePrice.Equal(decimal.NewFromInt(250)))
	}
	assert.Len(t, numbers, 5)
}

func TestGenerateLayout_KeepsClaimedInstances(t *testing.T) {
	f := newFixture()

	claimed := f.instanceByNumber(2)
	_, err := f.applications.Apply(context.Background(), f.brand, claimed.ID, "")
	require.NoError(t, err)

	listings, err := f.stalls.GenerateLayout(context.Background(), f.exhibition.ID, f.organiser)
	require.NoError(t, err)
	require.Len(t, listings, 3)

	// The claimed instance survives regeneration untouched.
	kept, err := f.stalls.GetInstance(context.Background(), claimed.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, kept.InstanceNumber)
	assert.Equal(t, domain.StallPending, kept.Status)

	var availableNumbers []int
	for _, listing := range listings {
		if listing.Status == domain.StallAvailable {
			availableNumbers = append(availableNumbers, listing.InstanceNumber)
		}
	}
	assert.ElementsMatch(t, []int{1, 3}, availableNumbers)
}

func TestGenerateLayout_QuantityBelowClaims(t *testing.T) {
	f := newFixture()

	_, err := f.applications.Apply(context.Background(), f.brand, f.instanceByNumber(1).ID, "")
	require.NoError(t, err)
	_, err = f.applications.Apply(context.Background(), f.rival, f.instanceByNumber(2).ID, "")
	require.NoError(t, err)

	f.store.mu.Lock()
	stallType := f.store.stallTypes[f.stallType.ID]
	stallType.Quantity = 1
	f.store.stallTypes[f.stallType.ID] = stallType
	f.store.mu.Unlock()

	_, err = f.stalls.GenerateLayout(context.Background(), f.exhibition.ID, f.organiser)
	assert.ErrorIs(t, err, layout.ErrQuantityTooLow)
}

func TestDeleteStallType_RefusedWhileClaimed(t *testing.T) {
	f := newFixture()

	_, err := f.applications.Apply(context.Background(), f.brand, f.instanceByNumber(1).ID, "")
	require.NoError(t, err)

	err = f.stalls.DeleteStallType(context.Background(), f.stallType.ID, f.organiser)
	assert.ErrorIs(t, err, ErrStallTypeHasClaims)
}

func TestDeleteStallType_RemovesAvailableInstances(t *testing.T) {
	f := newFixture()

	err := f.stalls.DeleteStallType(context.Background(), f.stallType.ID, f.organiser)
	require.NoError(t, err)

	listings, err := f.stalls.ListInstances(context.Background(), f.exhibition.ID)
	require.NoError(t, err)
	assert.Empty(t, listings)

	_, err = f.stalls.GetStallType(context.Background(), f.stallType.ID)
	assert.ErrorIs(t, err, ErrStallTypeNotFound)
}

func TestUpdateStallType_QuantityDoesNotTouchInstances(t *testing.T) {
	f := newFixture()

	updated := f.stallType
	updated.Quantity = 10
	_, err := f.stalls.UpdateStallType(context.Background(), updated, f.organiser)
	require.NoError(t, err)

	// Instances change on the next layout generation, not before.
	listings, err := f.stalls.ListInstances(context.Background(), f.exhibition.ID)
	require.NoError(t, err)
	assert.Len(t, listings, 3)
}

func TestExhibitionLifecycle(t *testing.T) {
	f := newFixture()

	created, err := f.exhibitions.CreateExhibition(context.Background(), domain.Exhibition{
		Name: "Autumn Expo",
	}, f.organiser)
	require.NoError(t, err)
	assert.Equal(t, domain.ExhibitionDraft, created.Status)
	assert.Equal(t, f.organiser.ID, created.OrganiserID)

	published, err := f.exhibitions.PublishExhibition(context.Background(), created.ID, f.organiser)
	require.NoError(t, err)
	assert.Equal(t, domain.ExhibitionPublished, published.Status)

	// Publishing twice fails the draft precondition.
	_, err = f.exhibitions.PublishExhibition(context.Background(), created.ID, f.organiser)
	assert.ErrorIs(t, err, ErrExhibitionClosed)

	cancelled, err := f.exhibitions.CancelExhibition(context.Background(), created.ID, f.manager)
	require.NoError(t, err)
	assert.Equal(t, domain.ExhibitionCancelled, cancelled.Status)

	_, err = f.exhibitions.CancelExhibition(context.Background(), created.ID, f.organiser)
	assert.ErrorIs(t, err, ErrExhibitionClosed)

	_, err = f.exhibitions.CreateExhibition(context.Background(), domain.Exhibition{}, f.brand)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}
