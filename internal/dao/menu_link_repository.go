package dao

import (
	"context"

	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/internal/model"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// menuLinkRepository 实现 domain.MenuLinkRepository 接口
type menuLinkRepository struct {
	dao *Dao
}

// NewMenuLinkRepository 创建 MenuLinkRepository 实例
func NewMenuLinkRepository(dao *Dao) domain.MenuLinkRepository {
	return &menuLinkRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *menuLinkRepository) toDomain(m *model.MenuLink) (*domain.MenuLink, error) {
	l := &domain.MenuLink{
		ID:          m.ID,
		MenuName:    m.MenuName,
		ParentID:    m.ParentID,
		Weight:      m.Weight,
		Title:       m.Title,
		Description: m.Description,
		Target: domain.Target{
			Kind:      domain.TargetKind(m.TargetKind),
			RouteName: m.RouteName,
			Path:      m.TargetPath,
			URL:       m.URL,
			Query:     m.Query,
			Fragment:  m.Fragment,
		},
		Enabled:       m.Enabled,
		Expanded:      m.Expanded,
		Origin:        domain.LinkOrigin(m.Origin),
		Provider:      m.Provider,
		RevisionState: domain.RevisionState(m.RevisionState),
		Revision:      m.Revision,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.RouteParameters != "" {
		if err := sonic.UnmarshalString(m.RouteParameters, &l.Target.RouteParams); err != nil {
			return nil, errors.Wrapf(err, "decode route parameters of %s", m.ID)
		}
	}
	if m.Definition != "" {
		l.Definition = new(domain.Declaration)
		if err := sonic.UnmarshalString(m.Definition, l.Definition); err != nil {
			return nil, errors.Wrapf(err, "decode definition of %s", m.ID)
		}
	}
	return l, nil
}

// domainToModel 将领域模型转换为数据库模型
func (r *menuLinkRepository) domainToModel(l *domain.MenuLink) (*model.MenuLink, error) {
	m := &model.MenuLink{
		ID:            l.ID,
		MenuName:      l.MenuName,
		ParentID:      l.ParentID,
		Weight:        l.Weight,
		Title:         l.Title,
		Description:   l.Description,
		TargetKind:    string(l.Target.Kind),
		RouteName:     l.Target.RouteName,
		TargetPath:    l.Target.Path,
		URL:           l.Target.URL,
		Query:         l.Target.Query,
		Fragment:      l.Target.Fragment,
		Enabled:       l.Enabled,
		Expanded:      l.Expanded,
		Origin:        string(l.Origin),
		Provider:      l.Provider,
		RevisionState: string(l.RevisionState),
		Revision:      l.Revision,
		CreatedAt:     l.CreatedAt,
	}
	if len(l.Target.RouteParams) > 0 {
		s, err := sonic.MarshalString(l.Target.RouteParams)
		if err != nil {
			return nil, errors.Wrapf(err, "encode route parameters of %s", l.ID)
		}
		m.RouteParameters = s
	}
	if l.Definition != nil {
		s, err := sonic.MarshalString(l.Definition)
		if err != nil {
			return nil, errors.Wrapf(err, "encode definition of %s", l.ID)
		}
		m.Definition = s
	}
	return m, nil
}

func (r *menuLinkRepository) toDomainList(ms []*model.MenuLink) ([]*domain.MenuLink, error) {
	out := make([]*domain.MenuLink, 0, len(ms))
	for _, m := range ms {
		l, err := r.toDomain(m)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Get 根据ID获取链接
func (r *menuLinkRepository) Get(ctx context.Context, id string) (*domain.MenuLink, error) {
	var m model.MenuLink
	if err := r.dao.DB(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m)
}

// ListByMenu 获取菜单下全部链接
func (r *menuLinkRepository) ListByMenu(ctx context.Context, menuName string) ([]*domain.MenuLink, error) {
	var ms []*model.MenuLink
	if err := r.dao.DB(ctx).Where("menu_name = ?", menuName).Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms)
}

// ListByMenus 获取多个菜单下的全部链接
func (r *menuLinkRepository) ListByMenus(ctx context.Context, menuNames []string) ([]*domain.MenuLink, error) {
	if len(menuNames) == 0 {
		return nil, nil
	}
	var ms []*model.MenuLink
	if err := r.dao.DB(ctx).Where("menu_name IN ?", menuNames).Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms)
}

// ListByParent 获取直接子链接
func (r *menuLinkRepository) ListByParent(ctx context.Context, parentID string) ([]*domain.MenuLink, error) {
	if parentID == "" {
		return nil, nil
	}
	var ms []*model.MenuLink
	if err := r.dao.DB(ctx).Where("parent_id = ?", parentID).Order("weight, title, id").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms)
}

// ListByOrigin 获取指定来源的全部链接
func (r *menuLinkRepository) ListByOrigin(ctx context.Context, origin domain.LinkOrigin) ([]*domain.MenuLink, error) {
	var ms []*model.MenuLink
	if err := r.dao.DB(ctx).Where("origin = ?", string(origin)).Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms)
}

// ListByIDs 根据ID批量获取
func (r *menuLinkRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.MenuLink, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ms []*model.MenuLink
	if err := r.dao.DB(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms)
}

// Put 按ID插入或更新
func (r *menuLinkRepository) Put(ctx context.Context, link *domain.MenuLink) error {
	m, err := r.domainToModel(link)
	if err != nil {
		return err
	}
	return r.dao.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(m).Error
}

// Delete 删除链接
func (r *menuLinkRepository) Delete(ctx context.Context, id string) error {
	res := r.dao.DB(ctx).Where("id = ?", id).Delete(&model.MenuLink{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByMenu 删除菜单下全部链接
func (r *menuLinkRepository) DeleteByMenu(ctx context.Context, menuName string) (int64, error) {
	res := r.dao.DB(ctx).Where("menu_name = ?", menuName).Delete(&model.MenuLink{})
	return res.RowsAffected, res.Error
}

// Count 统计链接数量
func (r *menuLinkRepository) Count(ctx context.Context, menuName *string) (int64, error) {
	var n int64
	q := r.dao.DB(ctx).Model(&model.MenuLink{})
	if menuName != nil {
		q = q.Where("menu_name = ?", *menuName)
	}
	err := q.Count(&n).Error
	return n, err
}

// CountPending 统计菜单下存在待发布修订的链接数量
func (r *menuLinkRepository) CountPending(ctx context.Context, menuName string) (int64, error) {
	var n int64
	err := r.dao.DB(ctx).Model(&model.MenuLink{}).
		Where("menu_name = ? AND origin = ? AND revision_state = ?",
			menuName, string(domain.LinkOriginContent), string(domain.RevisionStatePending)).
		Count(&n).Error
	return n, err
}
