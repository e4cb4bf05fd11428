package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/expofair/expofair-api/internal/domain"
	"github.com/expofair/expofair-api/internal/repository/dao"
)

var (
	ErrExhibitionNotFound = dao.ErrExhibitionNotFound
)

type ExhibitionDAO interface {
	Insert(ctx context.Context, exhibition dao.Exhibition) (dao.Exhibition, error)
	FindByID(ctx context.Context, id uuid.UUID) (dao.Exhibition, error)
	FindAll(ctx context.Context) ([]dao.Exhibition, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UnitExists(ctx context.Context, id uuid.UUID) (bool, error)
	FindAmenities(ctx context.Context, ids []uuid.UUID) ([]dao.Amenity, error)
}

type ExhibitionRepository struct {
	dao ExhibitionDAO
}

func NewExhibitionRepository(dao ExhibitionDAO) *ExhibitionRepository {
	return &ExhibitionRepository{
		dao: dao,
	}
}

func (r *ExhibitionRepository) domainToDao(e domain.Exhibition) dao.Exhibition {
	return dao.Exhibition{
		ID:          e.ID,
		Name:        e.Name,
		Venue:       e.Venue,
		Description: e.Description,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		OrganiserID: e.OrganiserID,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (r *ExhibitionRepository) daoToDomain(e dao.Exhibition) domain.Exhibition {
	return domain.Exhibition{
		ID:          e.ID,
		Name:        e.Name,
		Venue:       e.Venue,
		Description: e.Description,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		OrganiserID: e.OrganiserID,
		Status:      domain.ExhibitionStatus(e.Status),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (r *ExhibitionRepository) Create(ctx context.Context, exhibition domain.Exhibition) (domain.Exhibition, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(exhibition))
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ExhibitionRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Exhibition, error) {
	exhibition, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Exhibition{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(exhibition), nil
}

func (r *ExhibitionRepository) FindAll(ctx context.Context) ([]domain.Exhibition, error) {
	exhibitionsDAO, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	exhibitions := make([]domain.Exhibition, len(exhibitionsDAO))
	for i, e := range exhibitionsDAO {
		exhibitions[i] = r.daoToDomain(e)
	}

	return exhibitions, nil
}

func (r *ExhibitionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ExhibitionStatus) error {
	if err := r.dao.UpdateStatus(ctx, id, string(status)); err != nil {
		return fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return nil
}

func (r *ExhibitionRepository) UnitExists(ctx context.Context, id uuid.UUID) (bool, error) {
	exists, err := r.dao.UnitExists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("r.dao.UnitExists -> %w", err)
	}

	return exists, nil
}

func (r *ExhibitionRepository) FindAmenities(ctx context.Context, ids []uuid.UUID) ([]domain.Amenity, error) {
	amenitiesDAO, err := r.dao.FindAmenities(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAmenities -> %w", err)
	}

	amenities := make([]domain.Amenity, len(amenitiesDAO))
	for i, a := range amenitiesDAO {
		amenities[i] = domain.Amenity{ID: a.ID, Name: a.Name}
	}

	return amenities, nil
}
