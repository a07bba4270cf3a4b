package upgrade

import (
	"context"

	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/internal/model"

	"gorm.io/gorm"
)

// RevisionStateMigrate 补齐自定义链接的修订状态，清理没有任何字段的覆盖记录
type RevisionStateMigrate struct{}

// Version 返回版本号
func (m *RevisionStateMigrate) Version() string {
	return "1.0.1"
}

// Description 返回描述
func (m *RevisionStateMigrate) Description() string {
	return "Backfill empty revision_state of content links and prune empty overrides"
}

// Up 执行升级
func (m *RevisionStateMigrate) Up(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	err := db.Model(&model.MenuLink{}).
		Where("origin = ? AND revision_state = ?", string(domain.LinkOriginContent), "").
		Update("revision_state", string(domain.RevisionStateDefault)).Error
	if err != nil {
		return err
	}

	return db.Where("parent_id IS NULL AND weight IS NULL AND enabled IS NULL AND expanded IS NULL AND title IS NULL AND description IS NULL").
		Delete(&model.MenuLinkOverride{}).Error
}
