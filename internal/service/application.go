package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/expofair/expofair-api/internal/domain"
	"github.com/expofair/expofair-api/internal/notifier"
	"github.com/expofair/expofair-api/internal/repository"
)

var (
	ErrApplicationNotFound       = repository.ErrApplicationNotFound
	ErrStallUnavailable          = repository.ErrStallUnavailable
	ErrStaleApplicationStatus    = repository.ErrStaleApplicationStatus
	ErrApplicationDeleteConflict = repository.ErrApplicationDeleteConflict
	ErrInvalidTransition         = domain.ErrInvalidTransition
)

type ApplicationRepository interface {
	CreateWithClaim(ctx context.Context, application domain.StallApplication) (domain.StallApplication, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.StallApplication, error)
	FindByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]domain.StallApplication, error)
	FindByBrandID(ctx context.Context, brandID uuid.UUID) ([]domain.StallApplication, error)
	FindPendingByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]domain.StallApplication, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.ApplicationStatus) error
	RejectAndRelease(ctx context.Context, id uuid.UUID) (domain.StallApplication, error)
	DeleteAndRelease(ctx context.Context, id uuid.UUID) (domain.StallApplication, error)
	VoidAndRelease(ctx context.Context, id uuid.UUID) (domain.StallApplication, error)
	CancelBookingRelease(ctx context.Context, id uuid.UUID) (domain.StallApplication, error)
}

type ApplicationStallRepository interface {
	FindInstanceByID(ctx context.Context, id uuid.UUID) (domain.StallInstance, error)
}

type ApplicationExhibitionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Exhibition, error)
}

type ApplicationService struct {
	repo           ApplicationRepository
	stallRepo      ApplicationStallRepository
	exhibitionRepo ApplicationExhibitionRepository
	notifier       notifier.Notifier
}

func NewApplicationService(
	repo ApplicationRepository,
	stallRepo ApplicationStallRepository,
	exhibitionRepo ApplicationExhibitionRepository,
	notifier notifier.Notifier,
) *ApplicationService {
	return &ApplicationService{
		repo:           repo,
		stallRepo:      stallRepo,
		exhibitionRepo: exhibitionRepo,
		notifier:       notifier,
	}
}

// Apply claims a stall for the brand. The claim and the application row
// are created in one transaction, so two brands racing for the same
// stall cannot both succeed; the loser gets ErrStallUnavailable.
func (s *ApplicationService) Apply(ctx context.Context, brand domain.User, instanceID uuid.UUID, message string) (domain.StallApplication, error) {
	if brand.Role != domain.RoleBrand {
		return domain.StallApplication{}, ErrNotAuthorized
	}

	instance, err := s.stallRepo.FindInstanceByID(ctx, instanceID)
	if err != nil {
		return domain.StallApplication{}, fmt.Errorf("s.stallRepo.FindInstanceByID -> %w", err)
	}

	exhibition, err := s.exhibitionRepo.FindByID(ctx, instance.ExhibitionID)
	if err != nil {
		return domain.StallApplication{}, fmt.Errorf("s.exhibitionRepo.FindByID -> %w", err)
	}
	if exhibition.Status != domain.ExhibitionPublished {
		return domain.StallApplication{}, ErrExhibitionClosed
	}

	application, err := s.repo.CreateWithClaim(ctx, domain.StallApplication{
		StallInstanceID: instanceID,
		BrandID:         brand.ID,
		Message:         message,
	})
	if err != nil {
		return domain.StallApplication{}, fmt.Errorf("s.repo.CreateWithClaim -> %w", err)
	}

	s.notify(ctx, domain.EventTypeApplicationSubmitted, application, "")
	return application, nil
}

func (s *ApplicationService) GetApplication(ctx context.Context, id uuid.UUID, actor domain.User) (domain.StallApplication, error) {
	application, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.StallApplication{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if !actor.CanReview() && actor.ID != application.BrandID {
		return domain.StallApplication{}, ErrNotAuthorized
	}

	return application, nil
}

func (s *ApplicationService) ListByExhibition(ctx context.Context, exhibitionID uuid.UUID, actor domain.User) ([]domain.StallApplication, error) {
	if !actor.CanReview() {
		return nil, ErrNotAuthorized
	}

	applications, err := s.repo.FindByExhibitionID(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByExhibitionID -> %w", err)
	}

	return applications, nil
}

func (s *ApplicationService) ListMine(ctx context.Context, brandID uuid.UUID) ([]domain.StallApplication, error) {
	applications, err := s.repo.FindByBrandID(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByBrandID -> %w", err)
	}

	return applications, nil
}

// ApproveForPayment moves a pending application to payment_pending.
// The stall stays pending; it only becomes booked once a payment is
// approved.
func (s *ApplicationService) ApproveForPayment(ctx context.Context, id uuid.UUID, reviewer domain.User) (domain.StallApplication, error) {
	if !reviewer.CanReview() {
		return domain.StallApplication{}, ErrNotAuthorized
	}

	application, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.StallApplication{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	next, err := application.Status.Next(domain.EventApproveForPayment)
	if err != nil {
		return domain.StallApplication{}, err
	}

	if err = s.repo.UpdateStatus(ctx, id, application.Status, next); err != nil {
		return domain.StallApplication{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	application.Status = next
	s.notify(ctx, domain.EventTypeApplicationApproved, application, "")
	return application, nil
}

// Reject turns down a pending application and frees its stall.
func (s *ApplicationService) Reject(ctx context.Context, id uuid.UUID, reviewer domain.User) (domain.StallApplication, error) {
	if !reviewer.CanReview() {
		return domain.StallApplication{}, ErrNotAuthorized
	}

	application, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.StallApplication{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if _, err = application.Status.Next(domain.EventReject); err != nil {
		return domain.StallApplication{}, err
	}

	rejected, err := s.repo.RejectAndRelease(ctx, id)
	if err != nil {
		return domain.StallApplication{}, fmt.Errorf("s.repo.RejectAndRelease -> %w", err)
	}

	s.notify(ctx, domain.EventTypeApplicationRejected, rejected, "")
	return rejected, nil
}

// DeleteApplication withdraws an application. The brand may delete its
// own, a reviewer may delete any; a booked application is refused.
func (s *ApplicationService) DeleteApplication(ctx context.Context, id uuid.UUID, actor domain.User) error {
	application, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if !actor.CanReview() && actor.ID != application.BrandID {
		return ErrNotAuthorized
	}

	if _, err = s.repo.DeleteAndRelease(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeleteAndRelease -> %w", err)
	}

	return nil
}

// BulkDecide applies one approve/reject decision to many applications,
// best effort. Each row succeeds or fails on its own; a failure never
// aborts the rest.
func (s *ApplicationService) BulkDecide(ctx context.Context, ids []uuid.UUID, approve bool, reviewer domain.User) ([]domain.BulkDecision, error) {
	if !reviewer.CanReview() {
		return nil, ErrNotAuthorized
	}

	decisions := make([]domain.BulkDecision, len(ids))
	for i, id := range ids {
		var err error
		if approve {
			_, err = s.ApproveForPayment(ctx, id, reviewer)
		} else {
			_, err = s.Reject(ctx, id, reviewer)
		}

		decisions[i] = domain.BulkDecision{ApplicationID: id, OK: err == nil}
		if err != nil {
			decisions[i].Error = err.Error()
		}
	}

	return decisions, nil
}

// CancelBooking is the privileged escape hatch for a booked stall: the
// application goes to rejected and the instance returns to available.
func (s *ApplicationService) CancelBooking(ctx context.Context, id uuid.UUID, reviewer domain.User) (domain.StallApplication, error) {
	if !reviewer.CanReview() {
		return domain.StallApplication{}, ErrNotAuthorized
	}

	application, err := s.repo.CancelBookingRelease(ctx, id)
	if err != nil {
		return domain.StallApplication{}, fmt.Errorf("s.repo.CancelBookingRelease -> %w", err)
	}

	s.notify(ctx, domain.EventTypeBookingCancelled, application, "")
	return application, nil
}

// VoidPendingApplications force-rejects every non-terminal application
// of an exhibition, releasing the claimed stalls. Used when closing an
// exhibition down.
func (s *ApplicationService) VoidPendingApplications(ctx context.Context, exhibitionID uuid.UUID, reviewer domain.User) ([]domain.BulkDecision, error) {
	if !reviewer.CanReview() {
		return nil, ErrNotAuthorized
	}

	applications, err := s.repo.FindPendingByExhibitionID(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindPendingByExhibitionID -> %w", err)
	}

	decisions := make([]domain.BulkDecision, len(applications))
	for i, application := range applications {
		voided, err := s.repo.VoidAndRelease(ctx, application.ID)
		decisions[i] = domain.BulkDecision{ApplicationID: application.ID, OK: err == nil}
		if err != nil {
			decisions[i].Error = err.Error()
			continue
		}

		s.notify(ctx, domain.EventTypeApplicationRejected, voided, "voided by organiser")
	}

	return decisions, nil
}

// notify runs after the owning transaction committed. A delivery
// failure is logged, never propagated; the transition already happened.
func (s *ApplicationService) notify(ctx context.Context, eventType domain.EventType, application domain.StallApplication, reason string) {
	err := s.notifier.Notify(ctx, domain.Event{
		Type:            eventType,
		ExhibitionID:    application.ExhibitionID,
		ApplicationID:   application.ID,
		StallInstanceID: application.StallInstanceID,
		BrandID:         application.BrandID,
		Reason:          reason,
		OccurredAt:      time.Now(),
	})
	if err != nil {
		zap.L().Warn("event delivery failed",
			zap.String("type", string(eventType)),
			zap.Error(err),
		)
	}
}
