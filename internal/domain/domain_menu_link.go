package domain

import (
	"net/url"
	"sort"
	"strings"
	"time"
)

// LinkOrigin 菜单链接来源
type LinkOrigin string

const (
	// LinkOriginPlugin 由模块声明的链接，只能通过覆盖记录修改
	LinkOriginPlugin LinkOrigin = "plugin"
	// LinkOriginContent 用户创建的链接，可自由修改并带有修订
	LinkOriginContent LinkOrigin = "content"
)

// RevisionState 自定义链接的修订状态
type RevisionState string

const (
	RevisionStateDefault RevisionState = "default"
	RevisionStatePending RevisionState = "pending"
)

// ContentProvider 自定义链接的 provider 名称
const ContentProvider = "menu_link_content"

// ContentIDPrefix 自定义链接 ID 前缀
const ContentIDPrefix = ContentProvider + ":"

// TargetKind 链接目标类型
type TargetKind string

const (
	TargetKindRoute    TargetKind = "route"
	TargetKindExternal TargetKind = "external"
	TargetKindFront    TargetKind = "front"
)

// FrontPage 首页占位符
const FrontPage = "<front>"

// Target 链接目标
type Target struct {
	Kind        TargetKind
	RouteName   string
	RouteParams map[string]string
	// Path 内部路由解析后的路径
	Path     string
	URL      string
	Query    string
	Fragment string
}

// String 返回目标的 URI 形式，保留查询参数与片段
func (t Target) String() string {
	var b strings.Builder
	switch t.Kind {
	case TargetKindExternal:
		return t.URL
	case TargetKindFront:
		b.WriteString(FrontPage)
	default:
		if t.Path != "" {
			b.WriteString(t.Path)
		} else {
			b.WriteString("route:")
			b.WriteString(t.RouteName)
			keys := make([]string, 0, len(t.RouteParams))
			for k := range t.RouteParams {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				b.WriteString(";")
				b.WriteString(k)
				b.WriteString("=")
				b.WriteString(url.QueryEscape(t.RouteParams[k]))
			}
		}
	}
	if t.Query != "" {
		b.WriteString("?")
		b.WriteString(t.Query)
	}
	if t.Fragment != "" {
		b.WriteString("#")
		b.WriteString(t.Fragment)
	}
	return b.String()
}

// Equal 比较两个目标是否相同
func (t Target) Equal(o Target) bool {
	if t.Kind != o.Kind || t.RouteName != o.RouteName || t.Path != o.Path || t.URL != o.URL ||
		t.Query != o.Query || t.Fragment != o.Fragment || len(t.RouteParams) != len(o.RouteParams) {
		return false
	}
	for k, v := range t.RouteParams {
		if ov, ok := o.RouteParams[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// MenuLink 菜单链接领域模型
type MenuLink struct {
	ID            string
	MenuName      string
	ParentID      string
	Weight        int
	Title         string
	Description   string
	Target        Target
	Enabled       bool
	Expanded      bool
	Origin        LinkOrigin
	Provider      string
	RevisionState RevisionState
	Revision      int64
	// Definition 模块链接的声明默认值，自定义链接为 nil
	Definition *Declaration
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsPlugin 是否为模块声明的链接
func (l *MenuLink) IsPlugin() bool {
	return l.Origin == LinkOriginPlugin
}

// IsPending 是否存在待发布修订
func (l *MenuLink) IsPending() bool {
	return l.Origin == LinkOriginContent && l.RevisionState == RevisionStatePending
}

// Clone 复制链接
func (l *MenuLink) Clone() *MenuLink {
	c := *l
	if l.Target.RouteParams != nil {
		c.Target.RouteParams = make(map[string]string, len(l.Target.RouteParams))
		for k, v := range l.Target.RouteParams {
			c.Target.RouteParams[k] = v
		}
	}
	if l.Definition != nil {
		d := *l.Definition
		c.Definition = &d
	}
	return &c
}

// LinkDraft 创建自定义链接的参数
type LinkDraft struct {
	MenuName    string
	ParentID    string
	Title       string
	Description string
	// Link 目标 URI：内部路径、route:名称、外部 URL 或 <front>
	Link     string
	Weight   *int
	Enabled  *bool
	Expanded *bool
}

// LinkPatch 链接更新参数，nil 表示不修改
type LinkPatch struct {
	MenuName    *string
	ParentID    *string
	Weight      *int
	Title       *string
	Description *string
	Link        *string
	Enabled     *bool
	Expanded    *bool
}

// TouchesStructure 是否修改了结构属性
func (p *LinkPatch) TouchesStructure() bool {
	return p.MenuName != nil || p.ParentID != nil || p.Weight != nil
}

// TreeEntry 树形列表中的一项
type TreeEntry struct {
	Link *MenuLink
	// Depth 链接深度，根链接为 0
	Depth int
	// HasChildren 是否有可见子链接
	HasChildren bool
}

// TreeParameters 树加载参数
type TreeParameters struct {
	// MinDepth 从该深度开始返回，更浅的层级不输出，返回的深度以此为 0
	MinDepth int
	// MaxDepth 最多返回的层级数，0 表示不限制
	MaxDepth int
	// ExpandAll 为 false 时仅展开 Expanded 的链接
	ExpandAll bool
	// OnlyEnabled 隐藏禁用链接及其子树
	OnlyEnabled bool
}
