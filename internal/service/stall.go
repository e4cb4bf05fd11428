package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/expofair/expofair-api/internal/domain"
	"github.com/expofair/expofair-api/internal/layout"
	"github.com/expofair/expofair-api/internal/repository"
)

var (
	ErrStallTypeNotFound     = repository.ErrStallTypeNotFound
	ErrStallInstanceNotFound = repository.ErrStallInstanceNotFound
	ErrStallTypeHasClaims    = repository.ErrStallTypeHasClaims

	ErrUnknownUnit    = errors.New("measurement unit does not exist")
	ErrUnknownAmenity = errors.New("one or more amenities do not exist")
)

type StallRepository interface {
	CreateType(ctx context.Context, stallType domain.StallType) (domain.StallType, error)
	FindTypeByID(ctx context.Context, id uuid.UUID) (domain.StallType, error)
	FindTypesByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]domain.StallType, error)
	UpdateType(ctx context.Context, stallType domain.StallType) (domain.StallType, error)
	DeleteType(ctx context.Context, id uuid.UUID) error
	ApplyLayout(ctx context.Context, batches []domain.LayoutBatch) error
	FindInstanceByID(ctx context.Context, id uuid.UUID) (domain.StallInstance, error)
	FindInstancesByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]domain.StallInstance, error)
	FindInstancesByTypeID(ctx context.Context, stallTypeID uuid.UUID) ([]domain.StallInstance, error)
}

type StallService struct {
	repo           StallRepository
	exhibitionRepo ExhibitionRepository
}

func NewStallService(repo StallRepository, exhibitionRepo ExhibitionRepository) *StallService {
	return &StallService{
		repo:           repo,
		exhibitionRepo: exhibitionRepo,
	}
}

func (s *StallService) CreateStallType(ctx context.Context, stallType domain.StallType, actor domain.User) (domain.StallType, error) {
	exhibition, err := s.exhibitionRepo.FindByID(ctx, stallType.ExhibitionID)
	if err != nil {
		return domain.StallType{}, fmt.Errorf("s.exhibitionRepo.FindByID -> %w", err)
	}
	if err = s.authorizeEdit(exhibition, actor); err != nil {
		return domain.StallType{}, err
	}

	if stallType.Amenities, err = s.resolveReferences(ctx, stallType); err != nil {
		return domain.StallType{}, err
	}

	created, err := s.repo.CreateType(ctx, stallType)
	if err != nil {
		return domain.StallType{}, fmt.Errorf("s.repo.CreateType -> %w", err)
	}

	return created, nil
}

// UpdateStallType edits the template. A quantity change does not touch
// existing instances; it takes effect on the next layout generation.
func (s *StallService) UpdateStallType(ctx context.Context, stallType domain.StallType, actor domain.User) (domain.StallType, error) {
	existing, err := s.repo.FindTypeByID(ctx, stallType.ID)
	if err != nil {
		return domain.StallType{}, fmt.Errorf("s.repo.FindTypeByID -> %w", err)
	}
	stallType.ExhibitionID = existing.ExhibitionID

	exhibition, err := s.exhibitionRepo.FindByID(ctx, existing.ExhibitionID)
	if err != nil {
		return domain.StallType{}, fmt.Errorf("s.exhibitionRepo.FindByID -> %w", err)
	}
	if err = s.authorizeEdit(exhibition, actor); err != nil {
		return domain.StallType{}, err
	}

	if stallType.Amenities, err = s.resolveReferences(ctx, stallType); err != nil {
		return domain.StallType{}, err
	}

	updated, err := s.repo.UpdateType(ctx, stallType)
	if err != nil {
		return domain.StallType{}, fmt.Errorf("s.repo.UpdateType -> %w", err)
	}

	return updated, nil
}

func (s *StallService) DeleteStallType(ctx context.Context, id uuid.UUID, actor domain.User) error {
	stallType, err := s.repo.FindTypeByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindTypeByID -> %w", err)
	}

	exhibition, err := s.exhibitionRepo.FindByID(ctx, stallType.ExhibitionID)
	if err != nil {
		return fmt.Errorf("s.exhibitionRepo.FindByID -> %w", err)
	}
	if err = s.authorizeEdit(exhibition, actor); err != nil {
		return err
	}

	if err = s.repo.DeleteType(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeleteType -> %w", err)
	}

	return nil
}

func (s *StallService) GetStallType(ctx context.Context, id uuid.UUID) (domain.StallType, error) {
	stallType, err := s.repo.FindTypeByID(ctx, id)
	if err != nil {
		return domain.StallType{}, fmt.Errorf("s.repo.FindTypeByID -> %w", err)
	}

	return stallType, nil
}

func (s *StallService) ListStallTypes(ctx context.Context, exhibitionID uuid.UUID) ([]domain.StallType, error) {
	stallTypes, err := s.repo.FindTypesByExhibitionID(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindTypesByExhibitionID -> %w", err)
	}

	return stallTypes, nil
}

// GenerateLayout regenerates the exhibition floor plan from the current
// stall type quantities. Instances holding an application (pending or
// booked) keep their numbers and positions; only available instances
// are replaced. Running it twice without changes yields the same plan.
func (s *StallService) GenerateLayout(ctx context.Context, exhibitionID uuid.UUID, actor domain.User) ([]domain.StallListing, error) {
	exhibition, err := s.exhibitionRepo.FindByID(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("s.exhibitionRepo.FindByID -> %w", err)
	}
	if err = s.authorizeEdit(exhibition, actor); err != nil {
		return nil, err
	}

	stallTypes, err := s.repo.FindTypesByExhibitionID(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindTypesByExhibitionID -> %w", err)
	}

	specs := make([]layout.TypeSpec, len(stallTypes))
	for i, stallType := range stallTypes {
		instances, err := s.repo.FindInstancesByTypeID(ctx, stallType.ID)
		if err != nil {
			return nil, fmt.Errorf("s.repo.FindInstancesByTypeID -> %w", err)
		}

		var pinned []layout.PinnedInstance
		for _, instance := range instances {
			if instance.Status != domain.StallAvailable {
				pinned = append(pinned, layout.PinnedInstance{
					InstanceNumber: instance.InstanceNumber,
					PositionX:      instance.PositionX,
					PositionY:      instance.PositionY,
				})
			}
		}

		specs[i] = layout.TypeSpec{
			StallTypeID: stallType.ID,
			Quantity:    stallType.Quantity,
			Pinned:      pinned,
		}
	}

	plans, err := layout.Generate(specs)
	if err != nil {
		return nil, err
	}

	batches := make([]domain.LayoutBatch, len(plans))
	for i, plan := range plans {
		instances := make([]domain.StallInstance, len(plan.Placements))
		for j, placement := range plan.Placements {
			instances[j] = domain.StallInstance{
				StallTypeID:    plan.StallTypeID,
				ExhibitionID:   exhibitionID,
				InstanceNumber: placement.InstanceNumber,
				PositionX:      placement.PositionX,
				PositionY:      placement.PositionY,
				Status:         domain.StallAvailable,
			}
		}
		batches[i] = domain.LayoutBatch{
			StallTypeID: plan.StallTypeID,
			Instances:   instances,
		}
	}

	if err = s.repo.ApplyLayout(ctx, batches); err != nil {
		return nil, fmt.Errorf("s.repo.ApplyLayout -> %w", err)
	}

	return s.ListInstances(ctx, exhibitionID)
}

func (s *StallService) ListInstances(ctx context.Context, exhibitionID uuid.UUID) ([]domain.StallListing, error) {
	stallTypes, err := s.repo.FindTypesByExhibitionID(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindTypesByExhibitionID -> %w", err)
	}
	typesByID := make(map[uuid.UUID]domain.StallType, len(stallTypes))
	for _, stallType := range stallTypes {
		typesByID[stallType.ID] = stallType
	}

	instances, err := s.repo.FindInstancesByExhibitionID(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindInstancesByExhibitionID -> %w", err)
	}

	listings := make([]domain.StallListing, len(instances))
	for i, instance := range instances {
		stallType := typesByID[instance.StallTypeID]
		listings[i] = domain.StallListing{
			StallInstance:  instance,
			StallTypeName:  stallType.Name,
			EffectivePrice: instance.EffectivePrice(stallType.Price),
		}
	}

	return listings, nil
}

func (s *StallService) GetInstance(ctx context.Context, id uuid.UUID) (domain.StallListing, error) {
	instance, err := s.repo.FindInstanceByID(ctx, id)
	if err != nil {
		return domain.StallListing{}, fmt.Errorf("s.repo.FindInstanceByID -> %w", err)
	}

	stallType, err := s.repo.FindTypeByID(ctx, instance.StallTypeID)
	if err != nil {
		return domain.StallListing{}, fmt.Errorf("s.repo.FindTypeByID -> %w", err)
	}

	return domain.StallListing{
		StallInstance:  instance,
		StallTypeName:  stallType.Name,
		EffectivePrice: instance.EffectivePrice(stallType.Price),
	}, nil
}

func (s *StallService) authorizeEdit(exhibition domain.Exhibition, actor domain.User) error {
	if actor.Role != domain.RoleManager &&
		!(actor.Role == domain.RoleOrganiser && actor.ID == exhibition.OrganiserID) {
		return ErrNotAuthorized
	}
	if !exhibition.IsEditable() {
		return ErrExhibitionClosed
	}

	return nil
}

func (s *StallService) resolveReferences(ctx context.Context, stallType domain.StallType) ([]domain.Amenity, error) {
	exists, err := s.exhibitionRepo.UnitExists(ctx, stallType.UnitID)
	if err != nil {
		return nil, fmt.Errorf("s.exhibitionRepo.UnitExists -> %w", err)
	}
	if !exists {
		return nil, ErrUnknownUnit
	}

	if len(stallType.Amenities) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(stallType.Amenities))
	for i, amenity := range stallType.Amenities {
		ids[i] = amenity.ID
	}

	amenities, err := s.exhibitionRepo.FindAmenities(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("s.exhibitionRepo.FindAmenities -> %w", err)
	}
	if len(amenities) != len(ids) {
		return nil, ErrUnknownAmenity
	}

	return amenities, nil
}
