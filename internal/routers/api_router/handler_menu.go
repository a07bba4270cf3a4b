package api_router

import (
	"github.com/haierkeys/menu-tree-service/internal/app"
	"github.com/haierkeys/menu-tree-service/internal/dto"
	pkgapp "github.com/haierkeys/menu-tree-service/pkg/app"
	"github.com/haierkeys/menu-tree-service/pkg/code"
	apperrors "github.com/haierkeys/menu-tree-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// MenuHandler 菜单 API 路由处理器
type MenuHandler struct {
	*Handler
}

// NewMenuHandler 创建 MenuHandler 实例
func NewMenuHandler(a *app.App) *MenuHandler {
	return &MenuHandler{Handler: NewHandler(a)}
}

// List 分页获取菜单列表
// @Summary Get menu list
// @Description Menus sorted by label (case-insensitive) then machine name, with link and pending counts
// @Tags Menu
// @Produce json
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} pkgapp.Res{data=pkgapp.ListRes{list=[]dto.MenuDTO}} "Success"
// @Router /api/menus [get]
func (h *MenuHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	page, pageSize := h.pagination(c)

	menus, total, err := h.App.MenuService.ListMenus(c.Request.Context(), page, pageSize)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	list, err := dto.NewMenuDTOList(menus)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponseList(code.Success, list, pkgapp.NewPager(page, pageSize, total))
}

// Create 创建菜单
// @Summary Create menu
// @Tags Menu
// @Accept json
// @Produce json
// @Param params body dto.MenuCreateRequest true "Create Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.MenuDTO} "Success"
// @Router /api/menus [post]
func (h *MenuHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	var params dto.MenuCreateRequest
	if err := c.ShouldBindJSON(&params); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	menu, err := h.App.MenuService.CreateMenu(c.Request.Context(), params.CreateMenu())
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	res, err := dto.NewMenuDTOFromMenu(menu)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessCreate.WithData(res))
}

// Get 获取菜单
// @Summary Get menu
// @Tags Menu
// @Produce json
// @Param params query dto.MenuGetRequest true "Query Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.MenuDTO} "Success"
// @Router /api/menu [get]
func (h *MenuHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	var params dto.MenuGetRequest
	if err := c.ShouldBindQuery(&params); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	menu, err := h.App.MenuService.GetMenu(c.Request.Context(), params.ID)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	res, err := dto.NewMenuDTO(menu)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(res))
}

// Update 修改菜单标题与描述
// @Summary Update menu
// @Tags Menu
// @Accept json
// @Produce json
// @Param params body dto.MenuUpdateRequest true "Update Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.MenuDTO} "Success"
// @Router /api/menu [put]
func (h *MenuHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	var params dto.MenuUpdateRequest
	if err := c.ShouldBindJSON(&params); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	menu, err := h.App.MenuService.UpdateMenu(c.Request.Context(), params.ID, params.Label, params.Description)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	res, err := dto.NewMenuDTOFromMenu(menu)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.SuccessUpdate.WithData(res))
}

// Delete 删除菜单及其全部自定义链接
// @Summary Delete menu
// @Description System menus and menus holding module links cannot be deleted
// @Tags Menu
// @Produce json
// @Param params query dto.MenuDeleteRequest true "Delete Parameters"
// @Success 200 {object} pkgapp.Res{data=dto.MenuDeleteDTO} "Success"
// @Router /api/menu [delete]
func (h *MenuHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	var params dto.MenuDeleteRequest
	if err := c.ShouldBindQuery(&params); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	n, err := h.App.MenuService.DeleteMenu(c.Request.Context(), params.ID)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.SuccessDelete.WithData(dto.MenuDeleteDTO{ID: params.ID, DeletedLinks: n}))
}

// Tree 加载菜单树
// @Summary Load menu tree
// @Description Links in render order with depth, filtered by the tree parameters
// @Tags Menu
// @Produce json
// @Param params query dto.MenuTreeRequest true "Tree Parameters"
// @Success 200 {object} pkgapp.Res{data=[]dto.TreeEntryDTO} "Success"
// @Router /api/menu/tree [get]
func (h *MenuHandler) Tree(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	var params dto.MenuTreeRequest
	if err := c.ShouldBindQuery(&params); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	entries, err := h.App.LinkService.LoadTree(c.Request.Context(), params.Menu, params.Parameters())
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	res, err := dto.NewTreeDTO(entries)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(res))
}

// ParentOptions 获取父级候选项
// @Summary Get parent options
// @Description Links the given link may be placed under, in tree order; omit id for a new link
// @Tags Menu
// @Produce json
// @Param params query dto.ParentOptionsRequest true "Query Parameters"
// @Success 200 {object} pkgapp.Res{data=[]dto.ParentOptionDTO} "Success"
// @Router /api/menu/parent-options [get]
func (h *MenuHandler) ParentOptions(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	var params dto.ParentOptionsRequest
	if err := c.ShouldBindQuery(&params); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	options, err := h.App.LinkService.ParentOptions(c.Request.Context(), params.Menus, params.ID)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(dto.NewParentOptionDTOList(options)))
}
