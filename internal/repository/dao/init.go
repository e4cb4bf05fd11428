package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Exhibition{},
		&MeasurementUnit{},
		&Amenity{},
		&StallType{},
		&StallInstance{},
		&StallApplication{},
		&PaymentSubmission{},
	)
}
