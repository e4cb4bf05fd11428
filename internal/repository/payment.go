package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/expofair/expofair-api/internal/domain"
	"github.com/expofair/expofair-api/internal/repository/dao"
)

var (
	ErrPaymentNotFound         = dao.ErrPaymentNotFound
	ErrStalePaymentStatus      = dao.ErrStalePaymentStatus
	ErrInvalidApplicationState = dao.ErrInvalidApplicationState
)

type PaymentDAO interface {
	Submit(ctx context.Context, submission dao.PaymentSubmission) (dao.PaymentSubmission, error)
	Review(ctx context.Context, id uuid.UUID, approve bool, reviewerID uuid.UUID, rejectionReason string) (dao.PaymentSubmission, error)
	FindByID(ctx context.Context, id uuid.UUID) (dao.PaymentSubmission, error)
	FindByApplicationID(ctx context.Context, applicationID uuid.UUID) ([]dao.PaymentSubmission, error)
	FindPendingByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]dao.PaymentSubmission, error)
}

type PaymentRepository struct {
	dao PaymentDAO
}

func NewPaymentRepository(dao PaymentDAO) *PaymentRepository {
	return &PaymentRepository{
		dao: dao,
	}
}

func (r *PaymentRepository) domainToDao(p domain.PaymentSubmission) dao.PaymentSubmission {
	return dao.PaymentSubmission{
		ID:              p.ID,
		ApplicationID:   p.ApplicationID,
		Amount:          p.Amount,
		TransactionID:   p.TransactionID,
		Email:           p.Email,
		ProofFileURL:    p.ProofFileURL,
		Notes:           p.Notes,
		Status:          string(p.Status),
		RejectionReason: p.RejectionReason,
		ReviewedAt:      p.ReviewedAt,
		ReviewedBy:      p.ReviewedBy,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (r *PaymentRepository) daoToDomain(p dao.PaymentSubmission) domain.PaymentSubmission {
	return domain.PaymentSubmission{
		ID:              p.ID,
		ApplicationID:   p.ApplicationID,
		Amount:          p.Amount,
		TransactionID:   p.TransactionID,
		Email:           p.Email,
		ProofFileURL:    p.ProofFileURL,
		Notes:           p.Notes,
		Status:          domain.PaymentStatus(p.Status),
		RejectionReason: p.RejectionReason,
		ReviewedAt:      p.ReviewedAt,
		ReviewedBy:      p.ReviewedBy,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (r *PaymentRepository) Submit(ctx context.Context, submission domain.PaymentSubmission) (domain.PaymentSubmission, error) {
	created, err := r.dao.Submit(ctx, r.domainToDao(submission))
	if err != nil {
		return domain.PaymentSubmission{}, fmt.Errorf("r.dao.Submit -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *PaymentRepository) Review(ctx context.Context, id uuid.UUID, decision domain.PaymentDecision, reviewerID uuid.UUID, rejectionReason string) (domain.PaymentSubmission, error) {
	reviewed, err := r.dao.Review(ctx, id, decision == domain.PaymentDecisionApprove, reviewerID, rejectionReason)
	if err != nil {
		return domain.PaymentSubmission{}, fmt.Errorf("r.dao.Review -> %w", err)
	}

	return r.daoToDomain(reviewed), nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.PaymentSubmission, error) {
	submission, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.PaymentSubmission{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(submission), nil
}

func (r *PaymentRepository) FindByApplicationID(ctx context.Context, applicationID uuid.UUID) ([]domain.PaymentSubmission, error) {
	submissionsDAO, err := r.dao.FindByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByApplicationID -> %w", err)
	}

	submissions := make([]domain.PaymentSubmission, len(submissionsDAO))
	for i, p := range submissionsDAO {
		submissions[i] = r.daoToDomain(p)
	}

	return submissions, nil
}

func (r *PaymentRepository) FindPendingByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]domain.PaymentSubmission, error) {
	submissionsDAO, err := r.dao.FindPendingByExhibitionID(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindPendingByExhibitionID -> %w", err)
	}

	submissions := make([]domain.PaymentSubmission, len(submissionsDAO))
	for i, p := range submissionsDAO {
		submissions[i] = r.daoToDomain(p)
	}

	return submissions, nil
}
