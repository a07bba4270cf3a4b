package dao

import (
	"context"

	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/internal/model"

	"gorm.io/gorm"
)

// menuRepository 实现 domain.MenuRepository 接口
type menuRepository struct {
	dao *Dao
}

// NewMenuRepository 创建 MenuRepository 实例
func NewMenuRepository(dao *Dao) domain.MenuRepository {
	return &menuRepository{dao: dao}
}

func (r *menuRepository) toDomain(m *model.Menu) *domain.Menu {
	return &domain.Menu{
		ID:          m.ID,
		Label:       m.Label,
		Description: m.Description,
		Locked:      m.Locked,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// Get 根据ID获取菜单
func (r *menuRepository) Get(ctx context.Context, id string) (*domain.Menu, error) {
	var m model.Menu
	if err := r.dao.DB(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// List 获取全部菜单
func (r *menuRepository) List(ctx context.Context) ([]*domain.Menu, error) {
	var ms []*model.Menu
	if err := r.dao.DB(ctx).Order("id").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Menu, len(ms))
	for i, m := range ms {
		out[i] = r.toDomain(m)
	}
	return out, nil
}

// Create 创建菜单
func (r *menuRepository) Create(ctx context.Context, menu *domain.Menu) error {
	m := &model.Menu{
		ID:          menu.ID,
		Label:       menu.Label,
		Description: menu.Description,
		Locked:      menu.Locked,
	}
	if err := r.dao.DB(ctx).Create(m).Error; err != nil {
		return err
	}
	menu.CreatedAt, menu.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

// Update 更新菜单标题与描述
func (r *menuRepository) Update(ctx context.Context, menu *domain.Menu) error {
	res := r.dao.DB(ctx).Model(&model.Menu{}).Where("id = ?", menu.ID).Updates(map[string]interface{}{
		"label":       menu.Label,
		"description": menu.Description,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 删除菜单
func (r *menuRepository) Delete(ctx context.Context, id string) error {
	res := r.dao.DB(ctx).Where("id = ?", id).Delete(&model.Menu{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
