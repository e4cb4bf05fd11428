package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound = errors.New("payment submission not found")

	// ErrStalePaymentStatus signals the submission was already reviewed.
	ErrStalePaymentStatus = errors.New("payment submission already reviewed")

	// ErrInvalidApplicationState rejects a payment action against an
	// application whose status does not permit it.
	ErrInvalidApplicationState = errors.New("application state does not permit this operation")
)

type PaymentSubmission struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ApplicationID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TransactionID   string          `gorm:"not null"`
	Email           string          `gorm:"not null"`
	ProofFileURL    *string
	Notes           *string    `gorm:"type:text"`
	Status          string     `gorm:"not null;default:'pending_review';index"`
	RejectionReason *string    `gorm:"type:text"`
	ReviewedAt      *time.Time
	ReviewedBy      *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p *PaymentSubmission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type PaymentDAO struct {
	db *gorm.DB
}

func NewPaymentDAO(db *gorm.DB) *PaymentDAO {
	return &PaymentDAO{
		db: db,
	}
}

// Submit records a payment proof and moves the owning application from
// payment_pending to payment_review as one transaction. The
// application-side CAS doubles as the at-most-one-pending-review guard:
// a second submission finds the application already in payment_review.
func (d *PaymentDAO) Submit(ctx context.Context, submission PaymentSubmission) (PaymentSubmission, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := transitionApplicationStatus(tx, submission.ApplicationID, "payment_pending", "payment_review")
		if err != nil {
			if errors.Is(err, ErrStaleApplicationStatus) {
				return ErrInvalidApplicationState
			}
			return err
		}

		submission.Status = "pending_review"
		return tx.Create(&submission).Error
	})
	if err != nil {
		return PaymentSubmission{}, err
	}

	return submission, nil
}

// Review settles a pending_review submission. Approving books the
// application and the stall; rejecting reopens the application for
// resubmission and leaves the stall pending. All three rows move in
// one transaction; any failed precondition rolls everything back.
func (d *PaymentDAO) Review(ctx context.Context, id uuid.UUID, approve bool, reviewerID uuid.UUID, rejectionReason string) (PaymentSubmission, error) {
	var submission PaymentSubmission

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&submission, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if submission.Status != "pending_review" {
			return ErrStalePaymentStatus
		}

		var application StallApplication
		if err := tx.First(&application, "id = ?", submission.ApplicationID).Error; err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"reviewed_at": now,
			"reviewed_by": reviewerID,
		}

		if approve {
			updates["status"] = "approved"
			if err := transitionApplicationStatus(tx, application.ID, "payment_review", "booked"); err != nil {
				return err
			}
			if err := transitionInstanceStatus(tx, application.StallInstanceID, "pending", "booked"); err != nil {
				return err
			}
		} else {
			updates["status"] = "rejected"
			updates["rejection_reason"] = rejectionReason
			if err := transitionApplicationStatus(tx, application.ID, "payment_review", "payment_pending"); err != nil {
				return err
			}
		}

		result := tx.Model(&PaymentSubmission{}).
			Where("id = ? AND status = ?", id, "pending_review").
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStalePaymentStatus
		}

		return tx.First(&submission, "id = ?", id).Error
	})
	if err != nil {
		return PaymentSubmission{}, err
	}

	return submission, nil
}

func (d *PaymentDAO) FindByID(ctx context.Context, id uuid.UUID) (PaymentSubmission, error) {
	var submission PaymentSubmission

	result := d.db.WithContext(ctx).First(&submission, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return PaymentSubmission{}, ErrPaymentNotFound
		}

		return PaymentSubmission{}, result.Error
	}

	return submission, nil
}

func (d *PaymentDAO) FindByApplicationID(ctx context.Context, applicationID uuid.UUID) ([]PaymentSubmission, error) {
	var submissions []PaymentSubmission

	result := d.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at").
		Find(&submissions)
	if result.Error != nil {
		return nil, result.Error
	}

	return submissions, nil
}

func (d *PaymentDAO) FindPendingByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]PaymentSubmission, error) {
	var submissions []PaymentSubmission

	result := d.db.WithContext(ctx).
		Joins("JOIN stall_applications ON stall_applications.id = payment_submissions.application_id").
		Where("stall_applications.exhibition_id = ? AND payment_submissions.status = ?",
			exhibitionID, "pending_review").
		Order("payment_submissions.created_at").
		Find(&submissions)
	if result.Error != nil {
		return nil, result.Error
	}

	return submissions, nil
}
