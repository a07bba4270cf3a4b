// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"github.com/haierkeys/menu-tree-service/internal/app"
	pkgapp "github.com/haierkeys/menu-tree-service/pkg/app"

	"github.com/gin-gonic/gin"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// pagination 从请求中读取分页参数，使用应用配置的默认值与上限
func (h *Handler) pagination(c *gin.Context) (int, int) {
	cfg := h.App.Config().App
	return pkgapp.GetPage(c), pkgapp.GetPageSizeWithConfig(c, pkgapp.PaginationConfig{
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	})
}
