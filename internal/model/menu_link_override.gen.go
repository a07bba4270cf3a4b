package model

import "time"

const TableNameMenuLinkOverride = "menu_link_override"

// MenuLinkOverride mapped from table <menu_link_override>
type MenuLinkOverride struct {
	ID          string    `gorm:"column:id;type:varchar(255);primaryKey" json:"id" form:"id"`
	ParentID    *string   `gorm:"column:parent_id;type:varchar(255)" json:"parentId" form:"parentId"`
	Weight      *int      `gorm:"column:weight" json:"weight" form:"weight"`
	Enabled     *bool     `gorm:"column:enabled" json:"enabled" form:"enabled"`
	Expanded    *bool     `gorm:"column:expanded" json:"expanded" form:"expanded"`
	Title       *string   `gorm:"column:title;type:varchar(255)" json:"title" form:"title"`
	Description *string   `gorm:"column:description;type:text" json:"description" form:"description"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt" form:"updatedAt"`
}

// TableName MenuLinkOverride's table name
func (*MenuLinkOverride) TableName() string {
	return TableNameMenuLinkOverride
}
