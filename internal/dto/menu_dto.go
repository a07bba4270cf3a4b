package dto

import (
	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/pkg/convert"
	"github.com/haierkeys/menu-tree-service/pkg/timex"
)

// MenuDTO 菜单数据传输对象
type MenuDTO struct {
	ID           string     `json:"id"`
	Label        string     `json:"label"`
	Description  string     `json:"description"`
	Locked       bool       `json:"locked"`
	LinkCount    int64      `json:"linkCount"`
	PendingCount int64      `json:"pendingCount"`
	CreatedAt    timex.Time `json:"createdAt"`
	UpdatedAt    timex.Time `json:"updatedAt"`
}

// MenuCreateRequest 创建菜单请求参数
type MenuCreateRequest struct {
	ID          string `json:"id" form:"id" binding:"required,menuname"`
	Label       string `json:"label" form:"label" binding:"required,max=255"`
	Description string `json:"description" form:"description" binding:"max=512"`
}

// MenuUpdateRequest 修改菜单请求参数，机器名不可修改
type MenuUpdateRequest struct {
	ID          string `json:"id" form:"id" binding:"required"`
	Label       string `json:"label" form:"label" binding:"required,max=255"`
	Description string `json:"description" form:"description" binding:"max=512"`
}

// MenuGetRequest 获取菜单请求参数
type MenuGetRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}

// MenuDeleteRequest 删除菜单请求参数
type MenuDeleteRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}

// MenuDeleteDTO 删除菜单结果
type MenuDeleteDTO struct {
	ID           string `json:"id"`
	DeletedLinks int64  `json:"deletedLinks"`
}

// CreateMenu 转换为领域模型
func (r *MenuCreateRequest) CreateMenu() *domain.Menu {
	return &domain.Menu{ID: r.ID, Label: r.Label, Description: r.Description}
}

// NewMenuDTO 由菜单统计信息构造 DTO
func NewMenuDTO(m *domain.MenuSummary) (*MenuDTO, error) {
	out := &MenuDTO{}
	if err := convert.StructAssign(m, out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewMenuDTOFromMenu 由菜单构造 DTO，不含统计信息
func NewMenuDTOFromMenu(m *domain.Menu) (*MenuDTO, error) {
	return NewMenuDTO(&domain.MenuSummary{Menu: *m})
}

// NewMenuDTOList 批量构造菜单 DTO
func NewMenuDTOList(list []*domain.MenuSummary) ([]*MenuDTO, error) {
	out := make([]*MenuDTO, 0, len(list))
	for _, m := range list {
		d, err := NewMenuDTO(m)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
