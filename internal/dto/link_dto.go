package dto

import (
	"strings"

	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/internal/tree"
	"github.com/haierkeys/menu-tree-service/pkg/convert"
	"github.com/haierkeys/menu-tree-service/pkg/timex"
)

// LinkDTO 菜单链接数据传输对象
type LinkDTO struct {
	ID            string               `json:"id"`
	MenuName      string               `json:"menu"`
	ParentID      string               `json:"parent"`
	Weight        int                  `json:"weight"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Link          string               `json:"link"`
	Kind          domain.TargetKind    `json:"kind"`
	RouteName     string               `json:"routeName,omitempty"`
	RouteParams   map[string]string    `json:"routeParams,omitempty"`
	Enabled       bool                 `json:"enabled"`
	Expanded      bool                 `json:"expanded"`
	Origin        domain.LinkOrigin    `json:"origin"`
	Provider      string               `json:"provider"`
	RevisionState domain.RevisionState `json:"revisionState,omitempty"`
	Revision      int64                `json:"revision,omitempty"`
	CreatedAt     timex.Time           `json:"createdAt"`
	UpdatedAt     timex.Time           `json:"updatedAt"`
}

// TreeEntryDTO 树形列表中的一项
type TreeEntryDTO struct {
	*LinkDTO
	Depth       int  `json:"depth"`
	HasChildren bool `json:"hasChildren"`
}

// ParentOptionDTO 父级候选项
type ParentOptionDTO struct {
	ID    string `json:"id"`
	Menu  string `json:"menu"`
	Depth int    `json:"depth"`
	// Label 以 "--" 缩进表示层级的标题
	Label string `json:"label"`
}

// LinkCountDTO 链接统计
type LinkCountDTO struct {
	Menu    string `json:"menu,omitempty"`
	Total   int64  `json:"total"`
	Pending int64  `json:"pending"`
}

// LinkCreateRequest 创建自定义链接请求参数
type LinkCreateRequest struct {
	Menu        string `json:"menu" form:"menu" binding:"omitempty,menuname"`
	Parent      string `json:"parent" form:"parent"`
	Title       string `json:"title" form:"title" binding:"required,max=255"`
	Description string `json:"description" form:"description" binding:"max=255"`
	Link        string `json:"link" form:"link" binding:"required,max=2048"`
	Weight      *int   `json:"weight" form:"weight"`
	Enabled     *bool  `json:"enabled" form:"enabled"`
	Expanded    *bool  `json:"expanded" form:"expanded"`
}

// LinkGetRequest 获取链接请求参数
type LinkGetRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}

// LinkUpdateRequest 修改链接请求参数，未提供的字段保持不变
type LinkUpdateRequest struct {
	ID          string  `json:"id" form:"id" binding:"required"`
	Menu        *string `json:"menu" form:"menu" binding:"omitempty,menuname"`
	Parent      *string `json:"parent" form:"parent"`
	Weight      *int    `json:"weight" form:"weight"`
	Title       *string `json:"title" form:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" form:"description" binding:"omitempty,max=255"`
	Link        *string `json:"link" form:"link" binding:"omitempty,min=1,max=2048"`
	Enabled     *bool   `json:"enabled" form:"enabled"`
	Expanded    *bool   `json:"expanded" form:"expanded"`
}

// LinkMoveRequest 移动链接请求参数，parent 为空表示移到根层级
type LinkMoveRequest struct {
	ID     string `json:"id" form:"id" binding:"required"`
	Parent string `json:"parent" form:"parent"`
	Menu   string `json:"menu" form:"menu" binding:"omitempty,menuname"`
}

// LinkEnabledRequest 启用/禁用链接请求参数
type LinkEnabledRequest struct {
	ID      string `json:"id" form:"id" binding:"required"`
	Enabled *bool  `json:"enabled" form:"enabled" binding:"required"`
}

// LinkRevisionRequest 设置修订状态请求参数
type LinkRevisionRequest struct {
	ID    string `json:"id" form:"id" binding:"required"`
	State string `json:"state" form:"state" binding:"required,oneof=default pending"`
}

// LinkDeleteRequest 删除链接请求参数
type LinkDeleteRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}

// LinkResetRequest 重置模块链接请求参数
type LinkResetRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}

// LinkCountRequest 链接统计请求参数，menu 为空时统计全部
type LinkCountRequest struct {
	Menu string `json:"menu" form:"menu"`
}

// MenuTreeRequest 加载菜单树请求参数
type MenuTreeRequest struct {
	Menu        string `json:"menu" form:"menu" binding:"required"`
	MinDepth    int    `json:"minDepth" form:"minDepth" binding:"min=0"`
	MaxDepth    int    `json:"maxDepth" form:"maxDepth" binding:"min=0"`
	ExpandAll   bool   `json:"expandAll" form:"expandAll"`
	OnlyEnabled bool   `json:"onlyEnabled" form:"onlyEnabled"`
}

// ParentOptionsRequest 父级候选项请求参数，id 为空表示新链接
type ParentOptionsRequest struct {
	Menus []string `json:"menus" form:"menus" binding:"required,min=1,dive,required"`
	ID    string   `json:"id" form:"id"`
}

// Draft 转换为领域模型
func (r *LinkCreateRequest) Draft() *domain.LinkDraft {
	return &domain.LinkDraft{
		MenuName:    r.Menu,
		ParentID:    r.Parent,
		Title:       r.Title,
		Description: r.Description,
		Link:        r.Link,
		Weight:      r.Weight,
		Enabled:     r.Enabled,
		Expanded:    r.Expanded,
	}
}

// Patch 转换为领域模型
func (r *LinkUpdateRequest) Patch() *domain.LinkPatch {
	return &domain.LinkPatch{
		MenuName:    r.Menu,
		ParentID:    r.Parent,
		Weight:      r.Weight,
		Title:       r.Title,
		Description: r.Description,
		Link:        r.Link,
		Enabled:     r.Enabled,
		Expanded:    r.Expanded,
	}
}

// Parameters 转换为树加载参数
func (r *MenuTreeRequest) Parameters() domain.TreeParameters {
	return domain.TreeParameters{
		MinDepth:    r.MinDepth,
		MaxDepth:    r.MaxDepth,
		ExpandAll:   r.ExpandAll,
		OnlyEnabled: r.OnlyEnabled,
	}
}

// NewLinkDTO 由领域模型构造链接 DTO
func NewLinkDTO(l *domain.MenuLink) (*LinkDTO, error) {
	out := &LinkDTO{}
	if err := convert.StructAssign(l, out); err != nil {
		return nil, err
	}
	out.Link = l.Target.String()
	out.Kind = l.Target.Kind
	out.RouteName = l.Target.RouteName
	if len(l.Target.RouteParams) > 0 {
		out.RouteParams = make(map[string]string, len(l.Target.RouteParams))
		for k, v := range l.Target.RouteParams {
			out.RouteParams[k] = v
		}
	}
	if l.IsPlugin() {
		out.RevisionState = ""
		out.Revision = 0
	}
	return out, nil
}

// NewTreeDTO 构造树形列表
func NewTreeDTO(entries []domain.TreeEntry) ([]*TreeEntryDTO, error) {
	out := make([]*TreeEntryDTO, 0, len(entries))
	for _, e := range entries {
		l, err := NewLinkDTO(e.Link)
		if err != nil {
			return nil, err
		}
		out = append(out, &TreeEntryDTO{LinkDTO: l, Depth: e.Depth, HasChildren: e.HasChildren})
	}
	return out, nil
}

// NewParentOptionDTOList 构造父级候选项，根层级以 <menu> 表示
func NewParentOptionDTOList(options []tree.ParentOption) []*ParentOptionDTO {
	out := make([]*ParentOptionDTO, 0, len(options))
	for _, o := range options {
		out = append(out, &ParentOptionDTO{
			ID:    o.Link.ID,
			Menu:  o.Link.MenuName,
			Depth: o.Depth,
			Label: strings.Repeat("--", o.Depth+1) + " " + o.Link.Title,
		})
	}
	return out
}
