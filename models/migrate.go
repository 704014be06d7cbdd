package models

import "gorm.io/gorm"

// All lists every table owned by this service, in migration order.
func All() []interface{} {
	return []interface{}{
		&Player{},
		&Attempt{},
		&BestScore{},
		&Achievement{},
		&Grant{},
		&Question{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
