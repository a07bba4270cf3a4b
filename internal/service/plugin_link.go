package service

import (
	"context"
	"strings"

	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/internal/tree"
	"github.com/haierkeys/menu-tree-service/pkg/util"
)

// pluginLink 由声明默认值与覆盖记录计算模块链接的有效值，覆盖值优先
// titles 为 false 时忽略覆盖记录中的标题与描述
func pluginLink(d *domain.Declaration, o *domain.Overlay, titles bool) *domain.MenuLink {
	def := *d
	if len(d.RouteParams) == 0 {
		def.RouteParams = nil
	} else {
		def.RouteParams = make(map[string]string, len(d.RouteParams))
		for k, v := range d.RouteParams {
			def.RouteParams[k] = v
		}
	}

	l := &domain.MenuLink{
		ID:          def.ID,
		MenuName:    def.MenuName,
		ParentID:    def.ParentID,
		Weight:      def.Weight,
		Title:       def.Title,
		Description: def.Description,
		Target:      declarationTarget(&def),
		Enabled:     def.Enabled,
		Expanded:    def.Expanded,
		Origin:      domain.LinkOriginPlugin,
		Provider:    def.Provider,
		Definition:  &def,
	}
	if o != nil {
		ov := *o
		if !titles {
			ov.Title, ov.Description = nil, nil
		}
		ov.Apply(l)
	}
	return l
}

// declarationTarget 将声明中的 route_name / url 转换为链接目标
func declarationTarget(d *domain.Declaration) domain.Target {
	if d.URL != "" {
		if util.IsExternalURL(d.URL) {
			return domain.Target{Kind: domain.TargetKindExternal, URL: d.URL}
		}
		base, fragment, _ := strings.Cut(d.URL, "#")
		base, query, _ := strings.Cut(base, "?")
		if base == "/" || base == domain.FrontPage {
			return domain.Target{Kind: domain.TargetKindFront, Query: query, Fragment: fragment}
		}
		return domain.Target{Kind: domain.TargetKindRoute, Path: base, Query: query, Fragment: fragment}
	}
	if d.RouteName == domain.FrontPage {
		return domain.Target{Kind: domain.TargetKindFront}
	}
	var params map[string]string
	if len(d.RouteParams) > 0 {
		params = make(map[string]string, len(d.RouteParams))
		for k, v := range d.RouteParams {
			params[k] = v
		}
	}
	return domain.Target{Kind: domain.TargetKindRoute, RouteName: d.RouteName, RouteParams: params}
}

// sameLink 比较两个模块链接持久化后的值是否一致
func sameLink(a, b *domain.MenuLink) bool {
	return a.MenuName == b.MenuName &&
		a.ParentID == b.ParentID &&
		a.Weight == b.Weight &&
		a.Title == b.Title &&
		a.Description == b.Description &&
		a.Target.Equal(b.Target) &&
		a.Enabled == b.Enabled &&
		a.Expanded == b.Expanded &&
		a.Origin == b.Origin &&
		a.Provider == b.Provider &&
		sameDeclaration(a.Definition, b.Definition)
}

func sameDeclaration(a, b *domain.Declaration) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != b.ID || a.MenuName != b.MenuName || a.ParentID != b.ParentID || a.Weight != b.Weight ||
		a.Title != b.Title || a.Description != b.Description || a.RouteName != b.RouteName ||
		a.URL != b.URL || a.Enabled != b.Enabled || a.Expanded != b.Expanded || a.Provider != b.Provider ||
		len(a.RouteParams) != len(b.RouteParams) {
		return false
	}
	for k, v := range a.RouteParams {
		if bv, ok := b.RouteParams[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// pendingFunc 返回基于快照的待发布判断：先看存储的修订状态，再询问外部修订查询
func pendingFunc(ctx context.Context, revisions domain.RevisionLookup, ix *tree.Index) tree.PendingFunc {
	return func(id string) bool {
		l, ok := ix.Get(id)
		if !ok || l.Origin != domain.LinkOriginContent {
			return false
		}
		if l.IsPending() {
			return true
		}
		return revisions != nil && revisions.IsPendingRevision(ctx, id)
	}
}
