package api_router

import (
	"github.com/haierkeys/menu-tree-service/internal/app"
	pkgapp "github.com/haierkeys/menu-tree-service/pkg/app"
	"github.com/haierkeys/menu-tree-service/pkg/code"
	apperrors "github.com/haierkeys/menu-tree-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// RebuildHandler 模块链接重建处理器
type RebuildHandler struct {
	*Handler
}

// NewRebuildHandler 创建 RebuildHandler 实例
func NewRebuildHandler(a *app.App) *RebuildHandler {
	return &RebuildHandler{Handler: NewHandler(a)}
}

// Rebuild 重新读取声明目录并重建模块链接
// @Summary Rebuild module links
// @Description Reloads the declaration files and reconciles module links; custom links and overrides are kept
// @Tags System
// @Produce json
// @Success 200 {object} pkgapp.Res{data=domain.RebuildResult} "Success"
// @Router /api/rebuild [post]
func (h *RebuildHandler) Rebuild(c *gin.Context) {
	res, err := h.App.Rebuild(c.Request.Context())
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(res))
}
