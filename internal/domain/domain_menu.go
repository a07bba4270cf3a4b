package domain

import "time"

// Menu 菜单领域模型
type Menu struct {
	ID          string
	Label       string
	Description string
	// Locked 系统菜单或由声明创建的菜单，不能删除
	Locked    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MenuSummary 菜单及其统计信息
type MenuSummary struct {
	Menu
	LinkCount    int64
	PendingCount int64
}
