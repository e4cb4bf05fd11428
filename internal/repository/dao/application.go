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
	ErrApplicationNotFound = errors.New("application not found")

	// ErrStallUnavailable is the losing side of the claim race: the
	// instance stopped being available between browse and submit.
	ErrStallUnavailable = errors.New("stall instance is no longer available")

	// ErrStaleApplicationStatus signals a failed compare-and-swap on
	// the application row.
	ErrStaleApplicationStatus = errors.New("application status changed concurrently")

	// ErrApplicationDeleteConflict blocks deleting an application whose
	// stall is already booked.
	ErrApplicationDeleteConflict = errors.New("application stall is booked")
)

type StallApplication struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ExhibitionID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	StallInstanceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	BrandID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Message         string          `gorm:"type:text"`
	QuotedPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status          string          `gorm:"not null;default:'pending';index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (a *StallApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type ApplicationDAO struct {
	db *gorm.DB
}

func NewApplicationDAO(db *gorm.DB) *ApplicationDAO {
	return &ApplicationDAO{
		db: db,
	}
}

// CreateWithClaim claims the stall instance and creates the application
// as one transaction. The claim is the available -> pending CAS, so of
// two concurrent submissions exactly one creates an application; the
// other gets ErrStallUnavailable. The effective price (instance
// override, else stall type price) is frozen onto the row here.
func (d *ApplicationDAO) CreateWithClaim(ctx context.Context, application StallApplication) (StallApplication, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := transitionInstanceStatus(tx, application.StallInstanceID, "available", "pending")
		if err != nil {
			if errors.Is(err, ErrStaleInstanceStatus) {
				return ErrStallUnavailable
			}
			return err
		}

		var instance StallInstance
		if err = tx.First(&instance, "id = ?", application.StallInstanceID).Error; err != nil {
			return err
		}

		application.ExhibitionID = instance.ExhibitionID
		if instance.Price != nil {
			application.QuotedPrice = *instance.Price
		} else {
			var stallType StallType
			if err = tx.First(&stallType, "id = ?", instance.StallTypeID).Error; err != nil {
				return err
			}
			application.QuotedPrice = stallType.Price
		}
		application.Status = "pending"

		return tx.Create(&application).Error
	})
	if err != nil {
		return StallApplication{}, err
	}

	return application, nil
}

func (d *ApplicationDAO) FindByID(ctx context.Context, id uuid.UUID) (StallApplication, error) {
	var application StallApplication

	result := d.db.WithContext(ctx).First(&application, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return StallApplication{}, ErrApplicationNotFound
		}

		return StallApplication{}, result.Error
	}

	return application, nil
}

func (d *ApplicationDAO) FindByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]StallApplication, error) {
	var applications []StallApplication

	result := d.db.WithContext(ctx).
		Where("exhibition_id = ?", exhibitionID).
		Order("created_at").
		Find(&applications)
	if result.Error != nil {
		return nil, result.Error
	}

	return applications, nil
}

func (d *ApplicationDAO) FindByBrandID(ctx context.Context, brandID uuid.UUID) ([]StallApplication, error) {
	var applications []StallApplication

	result := d.db.WithContext(ctx).
		Where("brand_id = ?", brandID).
		Order("created_at").
		Find(&applications)
	if result.Error != nil {
		return nil, result.Error
	}

	return applications, nil
}

func (d *ApplicationDAO) FindPendingByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]StallApplication, error) {
	var applications []StallApplication

	result := d.db.WithContext(ctx).
		Where("exhibition_id = ? AND status IN ?", exhibitionID,
			[]string{"pending", "payment_pending", "payment_review"}).
		Order("created_at").
		Find(&applications)
	if result.Error != nil {
		return nil, result.Error
	}

	return applications, nil
}

// UpdateStatus is the application-side compare-and-swap.
func (d *ApplicationDAO) UpdateStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) error {
	return transitionApplicationStatus(d.db.WithContext(ctx), id, fromStatus, toStatus)
}

func transitionApplicationStatus(tx *gorm.DB, id uuid.UUID, fromStatus, toStatus string) error {
	result := tx.Model(&StallApplication{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Update("status", toStatus)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&StallApplication{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrApplicationNotFound
		}

		return ErrStaleApplicationStatus
	}

	return nil
}

// RejectAndRelease moves a pending application to rejected and frees
// its stall in one transaction.
func (d *ApplicationDAO) RejectAndRelease(ctx context.Context, id uuid.UUID) (StallApplication, error) {
	var application StallApplication

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&application, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicationNotFound
			}
			return err
		}

		if err := transitionApplicationStatus(tx, id, "pending", "rejected"); err != nil {
			return err
		}
		if err := transitionInstanceStatus(tx, application.StallInstanceID, "pending", "available"); err != nil {
			return err
		}

		application.Status = "rejected"
		return nil
	})
	if err != nil {
		return StallApplication{}, err
	}

	return application, nil
}

// DeleteAndRelease removes an application row. Deleting is allowed in
// any non-booked state; while the application still holds its stall
// (non-terminal statuses) the instance is released in the same
// transaction. A booked application is refused.
func (d *ApplicationDAO) DeleteAndRelease(ctx context.Context, id uuid.UUID) (StallApplication, error) {
	var application StallApplication

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&application, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicationNotFound
			}
			return err
		}

		switch application.Status {
		case "booked":
			return ErrApplicationDeleteConflict
		case "rejected":
			// Stall was already released on rejection.
		default:
			err := transitionInstanceStatus(tx, application.StallInstanceID, "pending", "available")
			if err != nil {
				return err
			}
		}

		return tx.Delete(&StallApplication{}, "id = ?", id).Error
	})
	if err != nil {
		return StallApplication{}, err
	}

	return application, nil
}

// VoidAndRelease force-rejects a non-terminal application, frees its
// stall if still pending, and rejects any payment submission still
// awaiting review so it drops out of the pending-payments list.
// Administrative operation backing the "void all pending applications
// of an exhibition" action.
func (d *ApplicationDAO) VoidAndRelease(ctx context.Context, id uuid.UUID) (StallApplication, error) {
	var application StallApplication

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&application, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicationNotFound
			}
			return err
		}

		result := tx.Model(&StallApplication{}).
			Where("id = ? AND status IN ?", id,
				[]string{"pending", "payment_pending", "payment_review"}).
			Update("status", "rejected")
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleApplicationStatus
		}

		err := tx.Model(&PaymentSubmission{}).
			Where("application_id = ? AND status = ?", id, "pending_review").
			Updates(map[string]interface{}{
				"status":           "rejected",
				"rejection_reason": "application voided",
			}).Error
		if err != nil {
			return err
		}

		err = transitionInstanceStatus(tx, application.StallInstanceID, "pending", "available")
		if err != nil {
			return err
		}

		application.Status = "rejected"
		return nil
	})
	if err != nil {
		return StallApplication{}, err
	}

	return application, nil
}

// CancelBookingRelease is the privileged release of a booked stall:
// application booked -> rejected, instance booked -> available, one
// transaction. Not reachable through the normal transition surface.
func (d *ApplicationDAO) CancelBookingRelease(ctx context.Context, id uuid.UUID) (StallApplication, error) {
	var application StallApplication

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&application, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrApplicationNotFound
			}
			return err
		}

		if err := transitionApplicationStatus(tx, id, "booked", "rejected"); err != nil {
			return err
		}

		result := tx.Model(&StallInstance{}).
			Where("id = ? AND status = ?", application.StallInstanceID, "booked").
			Update("status", "available")
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleInstanceStatus
		}

		application.Status = "rejected"
		return nil
	})
	if err != nil {
		return StallApplication{}, err
	}

	return application, nil
}
