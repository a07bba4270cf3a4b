package upgrade

import (
	"context"

	"github.com/haierkeys/menu-tree-service/internal/model"

	"gorm.io/gorm"
)

// InitialSchemaMigrate 创建菜单、链接和覆盖记录表
type InitialSchemaMigrate struct{}

// Version 返回版本号
func (m *InitialSchemaMigrate) Version() string {
	return "1.0.0"
}

// Description 返回描述
func (m *InitialSchemaMigrate) Description() string {
	return "Create menu, menu_link and menu_link_override tables"
}

// Up 执行升级
func (m *InitialSchemaMigrate) Up(ctx context.Context, db *gorm.DB) error {
	return model.AutoMigrateAll(db.WithContext(ctx))
}
