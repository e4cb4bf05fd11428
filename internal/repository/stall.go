package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/expofair/expofair-api/internal/domain"
	"github.com/expofair/expofair-api/internal/repository/dao"
)

var (
	ErrStallTypeNotFound     = dao.ErrStallTypeNotFound
	ErrStallInstanceNotFound = dao.ErrStallInstanceNotFound
	ErrStaleInstanceStatus   = dao.ErrStaleInstanceStatus
	ErrStallTypeHasClaims    = dao.ErrStallTypeHasClaims
)

type StallDAO interface {
	InsertType(ctx context.Context, stallType dao.StallType) (dao.StallType, error)
	FindTypeByID(ctx context.Context, id uuid.UUID) (dao.StallType, error)
	FindTypesByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]dao.StallType, error)
	UpdateType(ctx context.Context, stallType dao.StallType) (dao.StallType, error)
	DeleteTypeCascade(ctx context.Context, id uuid.UUID) error
	ApplyLayout(ctx context.Context, batches []dao.InstanceBatch) error
	FindInstanceByID(ctx context.Context, id uuid.UUID) (dao.StallInstance, error)
	FindInstancesByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]dao.StallInstance, error)
	FindInstancesByTypeID(ctx context.Context, stallTypeID uuid.UUID) ([]dao.StallInstance, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) error
}

type StallRepository struct {
	dao StallDAO
}

func NewStallRepository(dao StallDAO) *StallRepository {
	return &StallRepository{
		dao: dao,
	}
}

func (r *StallRepository) typeDomainToDao(st domain.StallType) dao.StallType {
	amenities := make([]dao.Amenity, len(st.Amenities))
	for i, a := range st.Amenities {
		amenities[i] = dao.Amenity{ID: a.ID, Name: a.Name}
	}

	return dao.StallType{
		ID:           st.ID,
		ExhibitionID: st.ExhibitionID,
		Name:         st.Name,
		Length:       st.Length,
		Width:        st.Width,
		UnitID:       st.UnitID,
		Price:        st.Price,
		Quantity:     st.Quantity,
		Amenities:    amenities,
		CreatedAt:    st.CreatedAt,
		UpdatedAt:    st.UpdatedAt,
	}
}

func (r *StallRepository) typeDaoToDomain(st dao.StallType) domain.StallType {
	amenities := make([]domain.Amenity, len(st.Amenities))
	for i, a := range st.Amenities {
		amenities[i] = domain.Amenity{ID: a.ID, Name: a.Name}
	}

	return domain.StallType{
		ID:           st.ID,
		ExhibitionID: st.ExhibitionID,
		Name:         st.Name,
		Length:       st.Length,
		Width:        st.Width,
		UnitID:       st.UnitID,
		Price:        st.Price,
		Quantity:     st.Quantity,
		Amenities:    amenities,
		CreatedAt:    st.CreatedAt,
		UpdatedAt:    st.UpdatedAt,
	}
}

func (r *StallRepository) instanceDomainToDao(si domain.StallInstance) dao.StallInstance {
	return dao.StallInstance{
		ID:             si.ID,
		StallTypeID:    si.StallTypeID,
		ExhibitionID:   si.ExhibitionID,
		InstanceNumber: si.InstanceNumber,
		PositionX:      si.PositionX,
		PositionY:      si.PositionY,
		RotationAngle:  si.RotationAngle,
		Status:         string(si.Status),
		Price:          si.Price,
		CreatedAt:      si.CreatedAt,
		UpdatedAt:      si.UpdatedAt,
	}
}

func (r *StallRepository) instanceDaoToDomain(si dao.StallInstance) domain.StallInstance {
	return domain.StallInstance{
		ID:             si.ID,
		StallTypeID:    si.StallTypeID,
		ExhibitionID:   si.ExhibitionID,
		InstanceNumber: si.InstanceNumber,
		PositionX:      si.PositionX,
		PositionY:      si.PositionY,
		RotationAngle:  si.RotationAngle,
		Status:         domain.StallInstanceStatus(si.Status),
		Price:          si.Price,
		CreatedAt:      si.CreatedAt,
		UpdatedAt:      si.UpdatedAt,
	}
}

func (r *StallRepository) CreateType(ctx context.Context, stallType domain.StallType) (domain.StallType, error) {
	created, err := r.dao.InsertType(ctx, r.typeDomainToDao(stallType))
	if err != nil {
		return domain.StallType{}, fmt.Errorf("r.dao.InsertType -> %w", err)
	}

	return r.typeDaoToDomain(created), nil
}

func (r *StallRepository) FindTypeByID(ctx context.Context, id uuid.UUID) (domain.StallType, error) {
	stallType, err := r.dao.FindTypeByID(ctx, id)
	if err != nil {
		return domain.StallType{}, fmt.Errorf("r.dao.FindTypeByID -> %w", err)
	}

	return r.typeDaoToDomain(stallType), nil
}

func (r *StallRepository) FindTypesByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]domain.StallType, error) {
	typesDAO, err := r.dao.FindTypesByExhibitionID(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindTypesByExhibitionID -> %w", err)
	}

	stallTypes := make([]domain.StallType, len(typesDAO))
	for i, st := range typesDAO {
		stallTypes[i] = r.typeDaoToDomain(st)
	}

	return stallTypes, nil
}

func (r *StallRepository) UpdateType(ctx context.Context, stallType domain.StallType) (domain.StallType, error) {
	updated, err := r.dao.UpdateType(ctx, r.typeDomainToDao(stallType))
	if err != nil {
		return domain.StallType{}, fmt.Errorf("r.dao.UpdateType -> %w", err)
	}

	return r.typeDaoToDomain(updated), nil
}

func (r *StallRepository) DeleteType(ctx context.Context, id uuid.UUID) error {
	if err := r.dao.DeleteTypeCascade(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteTypeCascade -> %w", err)
	}

	return nil
}

func (r *StallRepository) ApplyLayout(ctx context.Context, batches []domain.LayoutBatch) error {
	batchesDAO := make([]dao.InstanceBatch, len(batches))
	for i, batch := range batches {
		instances := make([]dao.StallInstance, len(batch.Instances))
		for j, instance := range batch.Instances {
			instances[j] = r.instanceDomainToDao(instance)
		}
		batchesDAO[i] = dao.InstanceBatch{
			StallTypeID: batch.StallTypeID,
			Instances:   instances,
		}
	}

	if err := r.dao.ApplyLayout(ctx, batchesDAO); err != nil {
		return fmt.Errorf("r.dao.ApplyLayout -> %w", err)
	}

	return nil
}

func (r *StallRepository) FindInstanceByID(ctx context.Context, id uuid.UUID) (domain.StallInstance, error) {
	instance, err := r.dao.FindInstanceByID(ctx, id)
	if err != nil {
		return domain.StallInstance{}, fmt.Errorf("r.dao.FindInstanceByID -> %w", err)
	}

	return r.instanceDaoToDomain(instance), nil
}

func (r *StallRepository) FindInstancesByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]domain.StallInstance, error) {
	instancesDAO, err := r.dao.FindInstancesByExhibitionID(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindInstancesByExhibitionID -> %w", err)
	}

	instances := make([]domain.StallInstance, len(instancesDAO))
	for i, si := range instancesDAO {
		instances[i] = r.instanceDaoToDomain(si)
	}

	return instances, nil
}

func (r *StallRepository) FindInstancesByTypeID(ctx context.Context, stallTypeID uuid.UUID) ([]domain.StallInstance, error) {
	instancesDAO, err := r.dao.FindInstancesByTypeID(ctx, stallTypeID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindInstancesByTypeID -> %w", err)
	}

	instances := make([]domain.StallInstance, len(instancesDAO))
	for i, si := range instancesDAO {
		instances[i] = r.instanceDaoToDomain(si)
	}

	return instances, nil
}

func (r *StallRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.StallInstanceStatus) error {
	if err := r.dao.TransitionStatus(ctx, id, string(from), string(to)); err != nil {
		return fmt.Errorf("r.dao.TransitionStatus -> %w", err)
	}

	return nil
}
