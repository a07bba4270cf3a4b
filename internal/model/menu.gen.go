package model

import "time"

const TableNameMenu = "menu"

// Menu mapped from table <menu>
type Menu struct {
	ID          string    `gorm:"column:id;type:varchar(32);primaryKey" json:"id" form:"id"`
	Label       string    `gorm:"column:label;type:varchar(255);not null" json:"label" form:"label"`
	Description string    `gorm:"column:description;type:text" json:"description" form:"description"`
	Locked      bool      `gorm:"column:locked;not null" json:"locked" form:"locked"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt" form:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt" form:"updatedAt"`
}

// TableName Menu's table name
func (*Menu) TableName() string {
	return TableNameMenu
}
