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
	ErrStallTypeNotFound     = errors.New("stall type not found")
	ErrStallInstanceNotFound = errors.New("stall instance not found")

	// ErrStaleInstanceStatus signals a failed compare-and-swap: the
	// instance is no longer in the status the caller observed.
	ErrStaleInstanceStatus = errors.New("stall instance status changed concurrently")

	// ErrStallTypeHasClaims blocks deleting a stall type while any of
	// its instances is pending or booked.
	ErrStallTypeHasClaims = errors.New("stall type has pending or booked instances")
)

type StallType struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ExhibitionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name         string          `gorm:"not null"`
	Length       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Width        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	UnitID       uuid.UUID       `gorm:"type:uuid;not null"`
	Price        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity     int             `gorm:"not null"`
	Amenities    []Amenity       `gorm:"many2many:stall_type_amenities;"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (st *StallType) BeforeCreate(tx *gorm.DB) error {
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	return nil
}

type StallInstance struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	StallTypeID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stall_type_instance_number"`
	ExhibitionID   uuid.UUID `gorm:"type:uuid;not null;index"`
	InstanceNumber int       `gorm:"not null;uniqueIndex:idx_stall_type_instance_number"`
	PositionX      float64   `gorm:"not null"`
	PositionY      float64   `gorm:"not null"`
	RotationAngle  float64   `gorm:"not null;default:0"`
	Status         string    `gorm:"not null;default:'available';index"`
	Price          *decimal.Decimal `gorm:"type:decimal(18,2)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (si *StallInstance) BeforeCreate(tx *gorm.DB) error {
	if si.ID == uuid.Nil {
		si.ID = uuid.New()
	}
	return nil
}

type StallDAO struct {
	db *gorm.DB
}

func NewStallDAO(db *gorm.DB) *StallDAO {
	return &StallDAO{
		db: db,
	}
}

func (d *StallDAO) InsertType(ctx context.Context, stallType StallType) (StallType, error) {
	result := d.db.WithContext(ctx).Create(&stallType)
	if result.Error != nil {
		return StallType{}, result.Error
	}

	return stallType, nil
}

func (d *StallDAO) FindTypeByID(ctx context.Context, id uuid.UUID) (StallType, error) {
	var stallType StallType

	result := d.db.WithContext(ctx).Preload("Amenities").First(&stallType, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return StallType{}, ErrStallTypeNotFound
		}

		return StallType{}, result.Error
	}

	return stallType, nil
}

func (d *StallDAO) FindTypesByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]StallType, error) {
	var stallTypes []StallType

	result := d.db.WithContext(ctx).
		Preload("Amenities").
		Where("exhibition_id = ?", exhibitionID).
		Order("created_at").
		Find(&stallTypes)
	if result.Error != nil {
		return nil, result.Error
	}

	return stallTypes, nil
}

func (d *StallDAO) UpdateType(ctx context.Context, stallType StallType) (StallType, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&StallType{ID: stallType.ID}).
			Select("Name", "Length", "Width", "UnitID", "Price", "Quantity").
			Updates(stallType)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStallTypeNotFound
		}

		return tx.Model(&StallType{ID: stallType.ID}).Association("Amenities").Replace(stallType.Amenities)
	})
	if err != nil {
		return StallType{}, err
	}

	return d.FindTypeByID(ctx, stallType.ID)
}

// DeleteTypeCascade removes a stall type together with its available
// instances. Any pending or booked instance aborts the whole delete.
func (d *StallDAO) DeleteTypeCascade(ctx context.Context, id uuid.UUID) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stallType StallType
		if err := tx.First(&stallType, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStallTypeNotFound
			}
			return err
		}

		var claimed int64
		err := tx.Model(&StallInstance{}).
			Where("stall_type_id = ? AND status <> ?", id, "available").
			Count(&claimed).Error
		if err != nil {
			return err
		}
		if claimed > 0 {
			return ErrStallTypeHasClaims
		}

		if err = tx.Where("stall_type_id = ?", id).Delete(&StallInstance{}).Error; err != nil {
			return err
		}
		if err = tx.Model(&stallType).Association("Amenities").Clear(); err != nil {
			return err
		}

		return tx.Delete(&StallType{}, "id = ?", id).Error
	})
}

// ApplyLayout replaces the available instances of every stall type in
// one transaction: a failure on any type persists nothing.
func (d *StallDAO) ApplyLayout(ctx context.Context, batches []InstanceBatch) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, batch := range batches {
			err := tx.Where("stall_type_id = ? AND status = ?", batch.StallTypeID, "available").
				Delete(&StallInstance{}).Error
			if err != nil {
				return err
			}

			if len(batch.Instances) == 0 {
				continue
			}
			if err = tx.Create(&batch.Instances).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// InstanceBatch is the replacement set of available instances for one
// stall type.
type InstanceBatch struct {
	StallTypeID uuid.UUID
	Instances   []StallInstance
}

func (d *StallDAO) FindInstanceByID(ctx context.Context, id uuid.UUID) (StallInstance, error) {
	var instance StallInstance

	result := d.db.WithContext(ctx).First(&instance, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return StallInstance{}, ErrStallInstanceNotFound
		}

		return StallInstance{}, result.Error
	}

	return instance, nil
}

func (d *StallDAO) FindInstancesByExhibitionID(ctx context.Context, exhibitionID uuid.UUID) ([]StallInstance, error) {
	var instances []StallInstance

	result := d.db.WithContext(ctx).
		Where("exhibition_id = ?", exhibitionID).
		Order("stall_type_id, instance_number").
		Find(&instances)
	if result.Error != nil {
		return nil, result.Error
	}

	return instances, nil
}

func (d *StallDAO) FindInstancesByTypeID(ctx context.Context, stallTypeID uuid.UUID) ([]StallInstance, error) {
	var instances []StallInstance

	result := d.db.WithContext(ctx).
		Where("stall_type_id = ?", stallTypeID).
		Order("instance_number").
		Find(&instances)
	if result.Error != nil {
		return nil, result.Error
	}

	return instances, nil
}

// TransitionStatus is the single mutation surface for instance status:
// a conditional update that only applies while the row still holds
// fromStatus. Zero rows affected means somebody else won the race.
func (d *StallDAO) TransitionStatus(ctx context.Context, id uuid.UUID, fromStatus, toStatus string) error {
	return transitionInstanceStatus(d.db.WithContext(ctx), id, fromStatus, toStatus)
}

func transitionInstanceStatus(tx *gorm.DB, id uuid.UUID, fromStatus, toStatus string) error {
	result := tx.Model(&StallInstance{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Update("status", toStatus)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&StallInstance{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrStallInstanceNotFound
		}

		return ErrStaleInstanceStatus
	}

	return nil
}
