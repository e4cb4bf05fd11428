package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/expofair/expofair-api/internal/domain"
	"github.com/expofair/expofair-api/internal/notifier"
	"github.com/expofair/expofair-api/internal/repository"
)

var (
	ErrPaymentNotFound         = repository.ErrPaymentNotFound
	ErrStalePaymentStatus      = repository.ErrStalePaymentStatus
	ErrInvalidApplicationState = repository.ErrInvalidApplicationState

	ErrNonPositiveAmount       = errors.New("payment amount must be positive")
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
)

type PaymentRepository interface {
	Submit(ctx context.Context, submission domain.PaymentSubmission) (domain.PaymentSubmission, error)
	Review(ctx context.Context, id uuid.UUID, decision domain.PaymentDecision, reviewerID uuid.UUID, rejectionReason string) (domain.PaymentSubmission, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.PaymentSubmission, error)
	FindByApplicationID(ctx context.Context, applicationID uuid.UUID) ([]domain.PaymentSubmission, error)
	FindPendingByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]domain.PaymentSubmission, error)
}

type PaymentApplicationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.StallApplication, error)
}

type PaymentService struct {
	repo     PaymentRepository
	appRepo  PaymentApplicationRepository
	notifier notifier.Notifier
}

func NewPaymentService(repo PaymentRepository, appRepo PaymentApplicationRepository, notifier notifier.Notifier) *PaymentService {
	return &PaymentService{
		repo:     repo,
		appRepo:  appRepo,
		notifier: notifier,
	}
}

// SubmitPayment records the brand's proof of payment and moves the
// application to payment_review. The application-side compare-and-swap
// guarantees at most one submission is under review at a time.
func (s *PaymentService) SubmitPayment(ctx context.Context, brand domain.User, applicationID uuid.UUID, submission domain.PaymentSubmission) (domain.PaymentSubmission, error) {
	if !submission.Amount.IsPositive() {
		return domain.PaymentSubmission{}, ErrNonPositiveAmount
	}

	application, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		return domain.PaymentSubmission{}, fmt.Errorf("s.appRepo.FindByID -> %w", err)
	}
	if application.BrandID != brand.ID {
		return domain.PaymentSubmission{}, ErrNotAuthorized
	}
	if _, err = application.Status.Next(domain.EventSubmitPayment); err != nil {
		return domain.PaymentSubmission{}, ErrInvalidApplicationState
	}

	submission.ApplicationID = applicationID
	created, err := s.repo.Submit(ctx, submission)
	if err != nil {
		return domain.PaymentSubmission{}, fmt.Errorf("s.repo.Submit -> %w", err)
	}

	s.notify(ctx, domain.EventTypePaymentSubmitted, application, created.ID, "")
	return created, nil
}

// ReviewPayment settles a submission under review. Approval books the
// stall; rejection sends the application back to payment_pending so the
// brand can try again. Rejecting requires a reason.
func (s *PaymentService) ReviewPayment(ctx context.Context, id uuid.UUID, decision domain.PaymentDecision, rejectionReason string, reviewer domain.User) (domain.PaymentSubmission, error) {
	if !reviewer.CanReview() {
		return domain.PaymentSubmission{}, ErrNotAuthorized
	}
	if decision == domain.PaymentDecisionReject && strings.TrimSpace(rejectionReason) == "" {
		return domain.PaymentSubmission{}, ErrRejectionReasonRequired
	}

	reviewed, err := s.repo.Review(ctx, id, decision, reviewer.ID, rejectionReason)
	if err != nil {
		return domain.PaymentSubmission{}, fmt.Errorf("s.repo.Review -> %w", err)
	}

	application, err := s.appRepo.FindByID(ctx, reviewed.ApplicationID)
	if err != nil {
		return domain.PaymentSubmission{}, fmt.Errorf("s.appRepo.FindByID -> %w", err)
	}

	eventType := domain.EventTypePaymentApproved
	if decision == domain.PaymentDecisionReject {
		eventType = domain.EventTypePaymentRejected
	}
	s.notify(ctx, eventType, application, reviewed.ID, rejectionReason)

	return reviewed, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID, actor domain.User) (domain.PaymentSubmission, error) {
	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.PaymentSubmission{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err = s.authorizeRead(ctx, submission.ApplicationID, actor); err != nil {
		return domain.PaymentSubmission{}, err
	}

	return submission, nil
}

func (s *PaymentService) ListByApplication(ctx context.Context, applicationID uuid.UUID, actor domain.User) ([]domain.PaymentSubmission, error) {
	if err := s.authorizeRead(ctx, applicationID, actor); err != nil {
		return nil, err
	}

	submissions, err := s.repo.FindByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByApplicationID -> %w", err)
	}

	return submissions, nil
}

func (s *PaymentService) ListPendingByExhibition(ctx context.Context, exhibitionID uuid.UUID, reviewer domain.User) ([]domain.PaymentSubmission, error) {
	if !reviewer.CanReview() {
		return nil, ErrNotAuthorized
	}

	submissions, err := s.repo.FindPendingByExhibitionID(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindPendingByExhibitionID -> %w", err)
	}

	return submissions, nil
}

func (s *PaymentService) authorizeRead(ctx context.Context, applicationID uuid.UUID, actor domain.User) error {
	if actor.CanReview() {
		return nil
	}

	application, err := s.appRepo.FindByID(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("s.appRepo.FindByID -> %w", err)
	}
	if application.BrandID != actor.ID {
		return ErrNotAuthorized
	}

	return nil
}

func (s *PaymentService) notify(ctx context.Context, eventType domain.EventType, application domain.StallApplication, paymentID uuid.UUID, reason string) {
	err := s.notifier.Notify(ctx, domain.Event{
		Type:            eventType,
		ExhibitionID:    application.ExhibitionID,
		ApplicationID:   application.ID,
		StallInstanceID: application.StallInstanceID,
		BrandID:         application.BrandID,
		Reason:          reason,
		OccurredAt:      time.Now(),
		PaymentID:       &paymentID,
	})
	if err != nil {
		zap.L().Warn("event delivery failed",
			zap.String("type", string(eventType)),
			zap.Error(err),
		)
	}
}
