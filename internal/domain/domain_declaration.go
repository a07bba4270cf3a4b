package domain

// Declaration 模块声明的菜单链接
type Declaration struct {
	ID          string            `json:"id"`
	MenuName    string            `json:"menu_name"`
	ParentID    string            `json:"parent,omitempty"`
	Weight      int               `json:"weight"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	RouteName   string            `json:"route_name,omitempty"`
	RouteParams map[string]string `json:"route_parameters,omitempty"`
	URL         string            `json:"url,omitempty"`
	Enabled     bool              `json:"enabled"`
	Expanded    bool              `json:"expanded"`
	Provider    string            `json:"provider"`
}

// Overlay 用户对模块链接的覆盖记录，nil 字段表示沿用声明值
type Overlay struct {
	ID          string
	ParentID    *string
	Weight      *int
	Enabled     *bool
	Expanded    *bool
	Title       *string
	Description *string
}

// IsEmpty 覆盖记录是否没有任何覆盖值
func (o *Overlay) IsEmpty() bool {
	return o.ParentID == nil && o.Weight == nil && o.Enabled == nil && o.Expanded == nil &&
		o.Title == nil && o.Description == nil
}

// Apply 将覆盖值合并到链接上，覆盖值优先
func (o *Overlay) Apply(l *MenuLink) {
	if o == nil {
		return
	}
	if o.ParentID != nil {
		l.ParentID = *o.ParentID
	}
	if o.Weight != nil {
		l.Weight = *o.Weight
	}
	if o.Enabled != nil {
		l.Enabled = *o.Enabled
	}
	if o.Expanded != nil {
		l.Expanded = *o.Expanded
	}
	if o.Title != nil {
		l.Title = *o.Title
	}
	if o.Description != nil {
		l.Description = *o.Description
	}
}

// RebuildResult 重建结果统计
type RebuildResult struct {
	Added      int `json:"added"`
	Updated    int `json:"updated"`
	Removed    int `json:"removed"`
	Unchanged  int `json:"unchanged"`
	Reparented int `json:"reparented"`
}
