package model

import (
	"gorm.io/gorm"
)

// Tables lists every table managed by AutoMigrate, in creation order.
func Tables() []interface{} {
	return []interface{}{&Menu{}, &MenuLink{}, &MenuLinkOverride{}}
}

func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "Menu":
		return db.AutoMigrate(&Menu{})

	case "MenuLink":
		return db.AutoMigrate(&MenuLink{})

	case "MenuLinkOverride":
		return db.AutoMigrate(&MenuLinkOverride{})
	}
	return nil
}

// AutoMigrateAll migrates every table.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(Tables()...)
}
