package dao

import (
	"context"

	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/internal/model"

	"gorm.io/gorm/clause"
)

// overlayRepository 实现 domain.OverlayRepository 接口
type overlayRepository struct {
	dao *Dao
}

// NewOverlayRepository 创建 OverlayRepository 实例
func NewOverlayRepository(dao *Dao) domain.OverlayRepository {
	return &overlayRepository{dao: dao}
}

func (r *overlayRepository) toDomain(m *model.MenuLinkOverride) *domain.Overlay {
	return &domain.Overlay{
		ID:          m.ID,
		ParentID:    m.ParentID,
		Weight:      m.Weight,
		Enabled:     m.Enabled,
		Expanded:    m.Expanded,
		Title:       m.Title,
		Description: m.Description,
	}
}

// Get 获取覆盖记录
func (r *overlayRepository) Get(ctx context.Context, id string) (*domain.Overlay, error) {
	var m model.MenuLinkOverride
	if err := r.dao.DB(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// List 获取全部覆盖记录
func (r *overlayRepository) List(ctx context.Context) ([]*domain.Overlay, error) {
	var ms []*model.MenuLinkOverride
	if err := r.dao.DB(ctx).Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Overlay, len(ms))
	for i, m := range ms {
		out[i] = r.toDomain(m)
	}
	return out, nil
}

// Put 插入或更新覆盖记录，nil 字段写为 NULL
func (r *overlayRepository) Put(ctx context.Context, o *domain.Overlay) error {
	m := &model.MenuLinkOverride{
		ID:          o.ID,
		ParentID:    o.ParentID,
		Weight:      o.Weight,
		Enabled:     o.Enabled,
		Expanded:    o.Expanded,
		Title:       o.Title,
		Description: o.Description,
	}
	return r.dao.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(m).Error
}

// Delete 删除覆盖记录
func (r *overlayRepository) Delete(ctx context.Context, id string) error {
	return r.dao.DB(ctx).Where("id = ?", id).Delete(&model.MenuLinkOverride{}).Error
}
