package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrExhibitionNotFound = errors.New("exhibition not found")
	ErrExhibitionNotDraft = errors.New("exhibition is not editable")
)

type Exhibition struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"not null"`
	Venue       string    `gorm:"not null"`
	Description string
	StartsAt    time.Time `gorm:"not null"`
	EndsAt      time.Time `gorm:"not null"`
	OrganiserID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status      string    `gorm:"not null;default:'draft'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e *Exhibition) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

type MeasurementUnit struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"unique;not null"`
}

func (m *MeasurementUnit) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type Amenity struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"unique;not null"`
}

func (a *Amenity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type ExhibitionDAO struct {
	db *gorm.DB
}

func NewExhibitionDAO(db *gorm.DB) *ExhibitionDAO {
	return &ExhibitionDAO{
		db: db,
	}
}

func (d *ExhibitionDAO) Insert(ctx context.Context, exhibition Exhibition) (Exhibition, error) {
	result := d.db.WithContext(ctx).Create(&exhibition)
	if result.Error != nil {
		return Exhibition{}, result.Error
	}

	return exhibition, nil
}

func (d *ExhibitionDAO) FindByID(ctx context.Context, id uuid.UUID) (Exhibition, error) {
	var exhibition Exhibition

	result := d.db.WithContext(ctx).First(&exhibition, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Exhibition{}, ErrExhibitionNotFound
		}

		return Exhibition{}, result.Error
	}

	return exhibition, nil
}

func (d *ExhibitionDAO) FindAll(ctx context.Context) ([]Exhibition, error) {
	var exhibitions []Exhibition

	result := d.db.WithContext(ctx).Order("created_at").Find(&exhibitions)
	if result.Error != nil {
		return nil, result.Error
	}

	return exhibitions, nil
}

func (d *ExhibitionDAO) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result := d.db.WithContext(ctx).
		Model(&Exhibition{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrExhibitionNotFound
	}

	return nil
}

func (d *ExhibitionDAO) UnitExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	result := d.db.WithContext(ctx).Model(&MeasurementUnit{}).Where("id = ?", id).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

func (d *ExhibitionDAO) FindAmenities(ctx context.Context, ids []uuid.UUID) ([]Amenity, error) {
	var amenities []Amenity

	result := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&amenities)
	if result.Error != nil {
		return nil, result.Error
	}

	return amenities, nil
}
