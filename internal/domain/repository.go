// Package domain 定义领域模型和接口
package domain

import "context"

// MenuLinkRepository 菜单链接仓储接口
type MenuLinkRepository interface {
	// Get 根据ID获取链接
	Get(ctx context.Context, id string) (*MenuLink, error)

	// ListByMenu 获取菜单下全部链接
	ListByMenu(ctx context.Context, menuName string) ([]*MenuLink, error)

	// ListByMenus 获取多个菜单下的全部链接
	ListByMenus(ctx context.Context, menuNames []string) ([]*MenuLink, error)

	// ListByParent 获取直接子链接
	ListByParent(ctx context.Context, parentID string) ([]*MenuLink, error)

	// ListByOrigin 获取指定来源的全部链接
	ListByOrigin(ctx context.Context, origin LinkOrigin) ([]*MenuLink, error)

	// ListByIDs 根据ID批量获取
	ListByIDs(ctx context.Context, ids []string) ([]*MenuLink, error)

	// Put 按ID插入或更新
	Put(ctx context.Context, link *MenuLink) error

	// Delete 删除链接，不存在时返回 gorm.ErrRecordNotFound
	Delete(ctx context.Context, id string) error

	// DeleteByMenu 删除菜单下全部链接
	DeleteByMenu(ctx context.Context, menuName string) (int64, error)

	// Count 统计链接数量，menuName 为 nil 时统计全部
	Count(ctx context.Context, menuName *string) (int64, error)

	// CountPending 统计菜单下存在待发布修订的链接数量
	CountPending(ctx context.Context, menuName string) (int64, error)
}

// OverlayRepository 模块链接覆盖记录仓储接口
type OverlayRepository interface {
	// Get 获取覆盖记录，不存在时返回 gorm.ErrRecordNotFound
	Get(ctx context.Context, id string) (*Overlay, error)

	// List 获取全部覆盖记录
	List(ctx context.Context) ([]*Overlay, error)

	// Put 插入或更新覆盖记录
	Put(ctx context.Context, overlay *Overlay) error

	// Delete 删除覆盖记录，不存在时不报错
	Delete(ctx context.Context, id string) error
}

// MenuRepository 菜单仓储接口
type MenuRepository interface {
	// Get 根据ID获取菜单
	Get(ctx context.Context, id string) (*Menu, error)

	// List 获取全部菜单
	List(ctx context.Context) ([]*Menu, error)

	// Create 创建菜单
	Create(ctx context.Context, menu *Menu) error

	// Update 更新菜单标题与描述
	Update(ctx context.Context, menu *Menu) error

	// Delete 删除菜单
	Delete(ctx context.Context, id string) error
}

// TargetResolver 链接目标解析接口
type TargetResolver interface {
	// ResolveTarget 解析 URI，返回 code.ErrorInvalidTarget 或 code.ErrorTargetInaccessible
	ResolveTarget(ctx context.Context, uri string) (*Target, error)
}

// RevisionLookup 修订状态查询接口
type RevisionLookup interface {
	// IsPendingRevision 自定义链接的最新修订是否为待发布状态
	IsPendingRevision(ctx context.Context, id string) bool
}
