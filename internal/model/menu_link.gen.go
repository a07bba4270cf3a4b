package model

import "time"

const TableNameMenuLink = "menu_link"

// MenuLink mapped from table <menu_link>
type MenuLink struct {
	ID              string    `gorm:"column:id;type:varchar(255);primaryKey" json:"id" form:"id"`
	MenuName        string    `gorm:"column:menu_name;type:varchar(32);not null;index:idx_menu_link_menu_parent,priority:1" json:"menuName" form:"menuName"`
	ParentID        string    `gorm:"column:parent_id;type:varchar(255);not null;index:idx_menu_link_menu_parent,priority:2;index:idx_menu_link_parent" json:"parentId" form:"parentId"`
	Weight          int       `gorm:"column:weight;not null" json:"weight" form:"weight"`
	Title           string    `gorm:"column:title;type:varchar(255);not null" json:"title" form:"title"`
	Description     string    `gorm:"column:description;type:text" json:"description" form:"description"`
	TargetKind      string    `gorm:"column:target_kind;type:varchar(16);not null" json:"targetKind" form:"targetKind"`
	RouteName       string    `gorm:"column:route_name;type:varchar(255)" json:"routeName" form:"routeName"`
	RouteParameters string    `gorm:"column:route_parameters;type:text" json:"routeParameters" form:"routeParameters"`
	TargetPath      string    `gorm:"column:target_path;type:varchar(2048)" json:"targetPath" form:"targetPath"`
	URL             string    `gorm:"column:url;type:varchar(2048)" json:"url" form:"url"`
	Query           string    `gorm:"column:query;type:varchar(2048)" json:"query" form:"query"`
	Fragment        string    `gorm:"column:fragment;type:varchar(255)" json:"fragment" form:"fragment"`
	Enabled         bool      `gorm:"column:enabled;not null" json:"enabled" form:"enabled"`
	Expanded        bool      `gorm:"column:expanded;not null" json:"expanded" form:"expanded"`
	Origin          string    `gorm:"column:origin;type:varchar(16);not null;index:idx_menu_link_origin" json:"origin" form:"origin"`
	Provider        string    `gorm:"column:provider;type:varchar(64);not null" json:"provider" form:"provider"`
	RevisionState   string    `gorm:"column:revision_state;type:varchar(16);not null" json:"revisionState" form:"revisionState"`
	Revision        int64     `gorm:"column:revision;not null" json:"revision" form:"revision"`
	Definition      string    `gorm:"column:definition;type:text" json:"definition" form:"definition"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt" form:"createdAt"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt" form:"updatedAt"`
}

// TableName MenuLink's table name
func (*MenuLink) TableName() string {
	return TableNameMenuLink
}
