package api_router

import (
	"github.com/haierkeys/menu-tree-service/internal/app"
	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/internal/dto"
	pkgapp "github.com/haierkeys/menu-tree-service/pkg/app"
	"github.com/haierkeys/menu-tree-service/pkg/code"
	apperrors "github.com/haierkeys/menu-tree-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// LinkHandler 菜单链接 API 路由处理器
type LinkHandler struct {
	*Handler
}

// NewLinkHandler 创建 LinkHandler 实例
func NewLinkHandler(a *app.App) *LinkHandler {
	return &LinkHandler{Handler: NewHandler(a)}
}

// respondLink 输出单个链接
func respondLink(c *gin.Context, ok *code.Code, link *domain.MenuLink, err error) {
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	res, err := dto.NewLinkDTO(link)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(ok.WithData(res))
}

// Create 创建自定义链接
// @Summary Create custom link
// @Description Menu defaults to the parent's menu when a parent is given
// @Tags Link
// @Accept json
// @Produce json
// @Param params body dto.LinkCreateRequest true "Create Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.LinkDTO} "Success"
// @Router /api/link [post]
func (h *LinkHandler) Create(c *gin.Context) {
	var params dto.LinkCreateRequest
	if err := c.ShouldBindJSON(&params); err != nil {
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	link, err := h.App.LinkService.CreateLink(c.Request.Context(), params.Draft())
	respondLink(c, code.SuccessCreate, link, err)
}

// Get 获取链接
// @Summary Get link
// @Tags Link
// @Produce json
// @Param params query dto.LinkGetRequest true "Query Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.LinkDTO} "Success"
// @Router /api/link [get]
func (h *LinkHandler) Get(c *gin.Context) {
	var params dto.LinkGetRequest
	if err := c.ShouldBindQuery(&params); err != nil {
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	link, err := h.App.LinkService.GetLink(c.Request.Context(), params.ID)
	respondLink(c, code.Success, link, err)
}

// Update 修改链接
// @Summary Update link
// @Description Module links accept parent, weight, enabled and expanded; changes are kept as overrides
// @Tags Link
// @Accept json
// @Produce json
// @Param params body dto.LinkUpdateRequest true "Update Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.LinkDTO} "Success"
// @Router /api/link [put]
func (h *LinkHandler) Update(c *gin.Context) {
	var params dto.LinkUpdateRequest
	if err := c.ShouldBindJSON(&params); err != nil {
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	link, err := h.App.LinkService.UpdateLink(c.Request.Context(), params.ID, params.Patch())
	respondLink(c, code.SuccessUpdate, link, err)
}

// Move 移动链接
// @Summary Move link
// @Description Empty parent moves the link to the root of its menu, or of the given menu
// @Tags Link
// @Accept json
// @Produce json
// @Param params body dto.LinkMoveRequest true "Move Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.LinkDTO} "Success"
// @Router /api/link/move [put]
func (h *LinkHandler) Move(c *gin.Context) {
	var params dto.LinkMoveRequest
	if err := c.ShouldBindJSON(&params); err != nil {
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	link, err := h.App.LinkService.MoveLink(c.Request.Context(), params.ID, params.Parent, params.Menu)
	respondLink(c, code.SuccessUpdate, link, err)
}

// Enabled 启用或禁用链接
// @Summary Toggle link
// @Tags Link
// @Accept json
// @Produce json
// @Param params body dto.LinkEnabledRequest true "Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.LinkDTO} "Success"
// @Router /api/link/enabled [put]
func (h *LinkHandler) Enabled(c *gin.Context) {
	var params dto.LinkEnabledRequest
	if err := c.ShouldBindJSON(&params); err != nil {
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	link, err := h.App.LinkService.ToggleEnabled(c.Request.Context(), params.ID, *params.Enabled)
	respondLink(c, code.SuccessUpdate, link, err)
}

// Revision 设置自定义链接的修订状态
// @Summary Set revision state
// @Tags Link
// @Accept json
// @Produce json
// @Param params body dto.LinkRevisionRequest true "Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.LinkDTO} "Success"
// @Router /api/link/revision [put]
func (h *LinkHandler) Revision(c *gin.Context) {
	var params dto.LinkRevisionRequest
	if err := c.ShouldBindJSON(&params); err != nil {
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	link, err := h.App.LinkService.SetRevisionState(c.Request.Context(), params.ID, domain.RevisionState(params.State))
	respondLink(c, code.SuccessUpdate, link, err)
}

// Delete 删除自定义链接及其子孙链接
// @Summary Delete link
// @Tags Link
// @Produce json
// @Param params query dto.LinkDeleteRequest true "Delete Parameters"
// @Success 200 {object} pkgapp.Res "Success"
// @Router /api/link [delete]
func (h *LinkHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	var params dto.LinkDeleteRequest
	if err := c.ShouldBindQuery(&params); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	if err := h.App.LinkService.DeleteLink(c.Request.Context(), params.ID); err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessDelete)
}

// Reset 重置模块链接
// @Summary Reset module link
// @Description Drops the override and restores the declared values
// @Tags Link
// @Accept json
// @Produce json
// @Param params body dto.LinkResetRequest true "Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.LinkDTO} "Success"
// @Router /api/link/reset [post]
func (h *LinkHandler) Reset(c *gin.Context) {
	var params dto.LinkResetRequest
	if err := c.ShouldBindJSON(&params); err != nil {
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	link, err := h.App.LinkService.ResetLink(c.Request.Context(), params.ID)
	respondLink(c, code.SuccessReset, link, err)
}

// Count 统计链接数量
// @Summary Count links
// @Description Total links and pending revisions, of one menu or of all menus
// @Tags Link
// @Produce json
// @Param params query dto.LinkCountRequest false "Query Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.LinkCountDTO} "Success"
// @Router /api/links/count [get]
func (h *LinkHandler) Count(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	var params dto.LinkCountRequest
	if err := c.ShouldBindQuery(&params); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	ctx := c.Request.Context()
	var menu *string
	if params.Menu != "" {
		menu = &params.Menu
	}

	total, err := h.App.LinkService.CountLinks(ctx, menu)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	res := dto.LinkCountDTO{Menu: params.Menu, Total: total}
	if menu != nil {
		if res.Pending, err = h.App.LinkService.CountPending(ctx, params.Menu); err != nil {
			apperrors.ErrorResponse(c, err)
			return
		}
	}
	response.ToResponse(code.Success.WithData(res))
}
