package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/expofair/expofair-api/internal/domain"
	"github.com/expofair/expofair-api/internal/repository/dao"
)

var (
	ErrApplicationNotFound       = dao.ErrApplicationNotFound
	ErrStallUnavailable          = dao.ErrStallUnavailable
	ErrStaleApplicationStatus    = dao.ErrStaleApplicationStatus
	ErrApplicationDeleteConflict = dao.ErrApplicationDeleteConflict
)

type ApplicationDAO interface {
	CreateWithClaim(ctx context.Context, application dao.StallApplication) (dao.StallApplication, error)
	FindByID(ctx context.Context, id uuid.UUID) (dao.StallApplication, error)
	FindByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]dao.StallApplication, error)
	FindByBrandID(ctx context.Context, brandID uuid.UUID) ([]dao.StallApplication, error)
	FindPendingByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]dao.StallApplication, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) error
	RejectAndRelease(ctx context.Context, id uuid.UUID) (dao.StallApplication, error)
	DeleteAndRelease(ctx context.Context, id uuid.UUID) (dao.StallApplication, error)
	VoidAndRelease(ctx context.Context, id uuid.UUID) (dao.StallApplication, error)
	CancelBookingRelease(ctx context.Context, id uuid.UUID) (dao.StallApplication, error)
}

type ApplicationRepository struct {
	dao ApplicationDAO
}

func NewApplicationRepository(dao ApplicationDAO) *ApplicationRepository {
	return &ApplicationRepository{
		dao: dao,
	}
}

func (r *ApplicationRepository) domainToDao(a domain.StallApplication) dao.StallApplication {
	return dao.StallApplication{
		ID:              a.ID,
		ExhibitionID:    a.ExhibitionID,
		StallInstanceID: a.StallInstanceID,
		BrandID:         a.BrandID,
		Message:         a.Message,
		QuotedPrice:     a.QuotedPrice,
		Status:          string(a.Status),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func (r *ApplicationRepository) daoToDomain(a dao.StallApplication) domain.StallApplication {
	return domain.StallApplication{
		ID:              a.ID,
		ExhibitionID:    a.ExhibitionID,
		StallInstanceID: a.StallInstanceID,
		BrandID:         a.BrandID,
		Message:         a.Message,
		QuotedPrice:     a.QuotedPrice,
		Status:          domain.ApplicationStatus(a.Status),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func (r *ApplicationRepository) daosToDomain(applicationsDAO []dao.StallApplication) []domain.StallApplication {
	applications := make([]domain.StallApplication, len(applicationsDAO))
	for i, a := range applicationsDAO {
		applications[i] = r.daoToDomain(a)
	}

	return applications
}

func (r *ApplicationRepository) CreateWithClaim(ctx context.Context, application domain.StallApplication) (domain.StallApplication, error) {
	created, err := r.dao.CreateWithClaim(ctx, r.domainToDao(application))
	if err != nil {
		return domain.StallApplication{}, fmt.Errorf("r.dao.CreateWithClaim -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.StallApplication, error) {
	application, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.StallApplication{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(application), nil
}

func (r *ApplicationRepository) FindByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]domain.StallApplication, error) {
	applications, err := r.dao.FindByExhibitionID(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByExhibitionID -> %w", err)
	}

	return r.daosToDomain(applications), nil
}

func (r *ApplicationRepository) FindByBrandID(ctx context.Context, brandID uuid.UUID) ([]domain.StallApplication, error) {
	applications, err := r.dao.FindByBrandID(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByBrandID -> %w", err)
	}

	return r.daosToDomain(applications), nil
}

func (r *ApplicationRepository) FindPendingByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]domain.StallApplication, error) {
	applications, err := r.dao.FindPendingByExhibitionID(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindPendingByExhibitionID -> %w", err)
	}

	return r.daosToDomain(applications), nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.ApplicationStatus) error {
	if err := r.dao.UpdateStatus(ctx, id, string(from), string(to)); err != nil {
		return fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return nil
}

func (r *ApplicationRepository) RejectAndRelease(ctx context.Context, id uuid.UUID) (domain.StallApplication, error) {
	application, err := r.dao.RejectAndRelease(ctx, id)
	if err != nil {
		return domain.StallApplication{}, fmt.Errorf("r.dao.RejectAndRelease -> %w", err)
	}

	return r.daoToDomain(application), nil
}

func (r *ApplicationRepository) DeleteAndRelease(ctx context.Context, id uuid.UUID) (domain.StallApplication, error) {
	application, err := r.dao.DeleteAndRelease(ctx, id)
	if err != nil {
		return domain.StallApplication{}, fmt.Errorf("r.dao.DeleteAndRelease -> %w", err)
	}

	return r.daoToDomain(application), nil
}

func (r *ApplicationRepository) VoidAndRelease(ctx context.Context, id uuid.UUID) (domain.StallApplication, error) {
	application, err := r.dao.VoidAndRelease(ctx, id)
	if err != nil {
		return domain.StallApplication{}, fmt.Errorf("r.dao.VoidAndRelease -> %w", err)
	}

	return r.daoToDomain(application), nil
}

func (r *ApplicationRepository) CancelBookingRelease(ctx context.Context, id uuid.UUID) (domain.StallApplication, error) {
	application, err := r.dao.CancelBookingRelease(ctx, id)
	if err != nil {
		return domain.StallApplication{}, fmt.Errorf("r.dao.CancelBookingRelease -> %w", err)
	}

	return r.daoToDomain(application), nil
}
