// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import "github.com/haierkeys/menu-tree-service/internal/domain"

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	// MaxDepth number of levels a menu may hold // 菜单最大层级数
	MaxDepth int
	// PluginTitleOverridable allow overlays to change title and description of module links // 是否允许覆盖模块链接的标题与描述
	PluginTitleOverridable bool
	// SystemMenus menus ensured at startup, never deletable // 启动时确保存在的系统菜单
	SystemMenus []domain.Menu
	// DefaultPageSize page size when none is requested // 默认分页大小
	DefaultPageSize int
	// MaxPageSize upper bound of a page // 最大分页大小
	MaxPageSize int
}
