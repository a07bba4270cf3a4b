package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/internal/metrics"
	"github.com/haierkeys/menu-tree-service/internal/tree"
	"github.com/haierkeys/menu-tree-service/pkg/code"
	pkglogger "github.com/haierkeys/menu-tree-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// LinkService 菜单链接业务服务接口
type LinkService interface {
	// CreateLink 创建自定义链接
	CreateLink(ctx context.Context, draft *domain.LinkDraft) (*domain.MenuLink, error)
	// UpdateLink 修改链接属性，模块链接的修改写入覆盖记录
	UpdateLink(ctx context.Context, id string, patch *domain.LinkPatch) (*domain.MenuLink, error)
	// MoveLink 修改父级，newMenuName 为空时保持原菜单
	MoveLink(ctx context.Context, id, newParentID, newMenuName string) (*domain.MenuLink, error)
	// DeleteLink 删除自定义链接及其全部子孙链接
	DeleteLink(ctx context.Context, id string) error
	// ResetLink 删除模块链接的覆盖记录并恢复声明值
	ResetLink(ctx context.Context, id string) (*domain.MenuLink, error)
	ToggleEnabled(ctx context.Context, id string, enabled bool) (*domain.MenuLink, error)
	SetRevisionState(ctx context.Context, id string, state domain.RevisionState) (*domain.MenuLink, error)
	GetLink(ctx context.Context, id string) (*domain.MenuLink, error)
	// ListTree 按渲染顺序返回启用的链接，maxDepth 为 0 表示不限制
	ListTree(ctx context.Context, menuName string, maxDepth int, expandAll bool) ([]domain.TreeEntry, error)
	LoadTree(ctx context.Context, menuName string, params domain.TreeParameters) ([]domain.TreeEntry, error)
	// ParentOptions 返回 linkID 可以放置到其下的链接，linkID 为空表示新链接
	ParentOptions(ctx context.Context, menus []string, linkID string) ([]tree.ParentOption, error)
	// Subtree 返回子孙链接 ID，按层级、权重、标题排序
	Subtree(ctx context.Context, id string) ([]string, error)
	CountLinks(ctx context.Context, menuName *string) (int64, error)
	CountPending(ctx context.Context, menuName string) (int64, error)
}

type linkService struct {
	linkRepo    domain.MenuLinkRepository
	overlayRepo domain.OverlayRepository
	menuRepo    domain.MenuRepository
	resolver    domain.TargetResolver
	revisions   domain.RevisionLookup
	guard       *Guard
	config      *ServiceConfig
	logger      *zap.Logger
	sf          singleflight.Group
}

// LinkServiceOption LinkService 选项
type LinkServiceOption func(*linkService)

// WithRevisionLookup 设置外部修订状态查询，默认只使用存储的修订状态
func WithRevisionLookup(r domain.RevisionLookup) LinkServiceOption {
	return func(s *linkService) { s.revisions = r }
}

// NewLinkService 创建 LinkService 实例
func NewLinkService(
	linkRepo domain.MenuLinkRepository,
	overlayRepo domain.OverlayRepository,
	menuRepo domain.MenuRepository,
	resolver domain.TargetResolver,
	guard *Guard,
	config *ServiceConfig,
	logger *zap.Logger,
	opts ...LinkServiceOption,
) LinkService {
	s := &linkService{
		linkRepo:    linkRepo,
		overlayRepo: overlayRepo,
		menuRepo:    menuRepo,
		resolver:    resolver,
		guard:       guard,
		config:      config,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *linkService) loadIndex(ctx context.Context, menus ...string) (*tree.Index, error) {
	links, err := s.linkRepo.ListByMenus(ctx, dedupe(menus))
	if err != nil {
		return nil, dbError(err)
	}
	return tree.New(links, s.config.MaxDepth), nil
}

// includeParent 父级属于其他菜单时也放入索引，使校验报告菜单不一致而不是父级不存在
func (s *linkService) includeParent(ctx context.Context, ix *tree.Index, parentID string) error {
	if parentID == "" {
		return nil
	}
	if _, ok := ix.Get(parentID); ok {
		return nil
	}
	p, err := s.linkRepo.Get(ctx, parentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return dbError(err)
	}
	ix.Put(p)
	return nil
}

func (s *linkService) ensureMenu(ctx context.Context, name string) error {
	_, err := s.menuRepo.Get(ctx, name)
	if err != nil {
		return notFound(err, code.ErrorMenuNotFound, name)
	}
	return nil
}

func (s *linkService) isPending(ctx context.Context, l *domain.MenuLink) bool {
	if l.Origin != domain.LinkOriginContent {
		return false
	}
	return l.IsPending() || (s.revisions != nil && s.revisions.IsPendingRevision(ctx, l.ID))
}

func (s *linkService) CreateLink(ctx context.Context, draft *domain.LinkDraft) (*domain.MenuLink, error) {
	link, err := s.newContentLink(ctx, draft)
	if err == nil {
		err = s.guard.Structural(ctx, []string{link.MenuName}, func(ctx context.Context) error {
			if err := s.ensureMenu(ctx, link.MenuName); err != nil {
				return err
			}
			ix, err := s.loadIndex(ctx, link.MenuName)
			if err != nil {
				return err
			}
			if err := s.includeParent(ctx, ix, link.ParentID); err != nil {
				return err
			}
			if err := ix.ValidateMove(link.ID, link.ParentID, link.MenuName, pendingFunc(ctx, s.revisions, ix)); err != nil {
				return err
			}
			return dbError(s.linkRepo.Put(ctx, link))
		})
	}
	metrics.Mutations.WithLabelValues("link_create", metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.logger.Info("menu link created",
		zap.String(pkglogger.FieldLinkID, link.ID),
		zap.String(pkglogger.FieldMenu, link.MenuName),
		zap.String(pkglogger.FieldParentID, link.ParentID))
	return link, nil
}

func (s *linkService) newContentLink(ctx context.Context, draft *domain.LinkDraft) (*domain.MenuLink, error) {
	if draft == nil {
		return nil, code.ErrorInvalidParams
	}
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, code.ErrorInvalidParams.WithDetails("title is required")
	}

	menu := draft.MenuName
	if menu == "" && draft.ParentID != "" {
		parent, err := s.linkRepo.Get(ctx, draft.ParentID)
		if err != nil {
			return nil, notFound(err, code.ErrorParentNotFound, draft.ParentID)
		}
		menu = parent.MenuName
	}
	if menu == "" {
		return nil, code.ErrorInvalidParams.WithDetails("menu_name is required")
	}

	target, err := s.resolver.ResolveTarget(ctx, draft.Link)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	link := &domain.MenuLink{
		ID:            domain.ContentIDPrefix + uuid.NewString(),
		MenuName:      menu,
		ParentID:      draft.ParentID,
		Title:         title,
		Description:   strings.TrimSpace(draft.Description),
		Target:        *target,
		Enabled:       true,
		Origin:        domain.LinkOriginContent,
		Provider:      domain.ContentProvider,
		RevisionState: domain.RevisionStateDefault,
		Revision:      1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if draft.Weight != nil {
		link.Weight = *draft.Weight
	}
	if draft.Enabled != nil {
		link.Enabled = *draft.Enabled
	}
	if draft.Expanded != nil {
		link.Expanded = *draft.Expanded
	}
	return link, nil
}

func (s *linkService) UpdateLink(ctx context.Context, id string, patch *domain.LinkPatch) (*domain.MenuLink, error) {
	out, err := s.update(ctx, id, patch, false)
	metrics.Mutations.WithLabelValues("link_update", metrics.Result(err)).Inc()
	return out, err
}

func (s *linkService) MoveLink(ctx context.Context, id, newParentID, newMenuName string) (*domain.MenuLink, error) {
	patch := &domain.LinkPatch{ParentID: &newParentID}
	if newMenuName != "" {
		patch.MenuName = &newMenuName
	}
	out, err := s.update(ctx, id, patch, true)
	metrics.Mutations.WithLabelValues("link_move", metrics.Result(err)).Inc()
	return out, err
}

func (s *linkService) ToggleEnabled(ctx context.Context, id string, enabled bool) (*domain.MenuLink, error) {
	out, err := s.update(ctx, id, &domain.LinkPatch{Enabled: &enabled}, false)
	metrics.Mutations.WithLabelValues("link_toggle", metrics.Result(err)).Inc()
	return out, err
}

// update 在链接所在菜单（以及目标菜单）的写者上执行修改
// move 为 true 时，待发布链接的任何结构修改都被拒绝，即使值未变化
func (s *linkService) update(ctx context.Context, id string, patch *domain.LinkPatch, move bool) (*domain.MenuLink, error) {
	if patch == nil {
		return s.GetLink(ctx, id)
	}

	var out *domain.MenuLink
	err := withRetry(func() error {
		cur, err := s.linkRepo.Get(ctx, id)
		if err != nil {
			return notFound(err, code.ErrorLinkNotFound, id)
		}
		menus := []string{cur.MenuName}
		if patch.MenuName != nil && *patch.MenuName != cur.MenuName {
			menus = append(menus, *patch.MenuName)
		}

		return s.guard.Structural(ctx, menus, func(ctx context.Context) error {
			link, err := s.linkRepo.Get(ctx, id)
			if err != nil {
				return notFound(err, code.ErrorLinkNotFound, id)
			}
			if link.MenuName != cur.MenuName {
				return errRetry
			}
			if link.IsPlugin() {
				out, err = s.updatePlugin(ctx, link, patch)
			} else {
				out, err = s.updateContent(ctx, link, patch, move)
			}
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("menu link updated",
		zap.String(pkglogger.FieldLinkID, out.ID),
		zap.String(pkglogger.FieldMenu, out.MenuName),
		zap.String(pkglogger.FieldParentID, out.ParentID))
	return out, nil
}

// placement 修改后的结构位置
type placement struct {
	menu   string
	parent string
	weight int
	// moved 菜单或父级发生变化
	moved bool
}

func planPlacement(l *domain.MenuLink, patch *domain.LinkPatch) placement {
	p := placement{menu: l.MenuName, parent: l.ParentID, weight: l.Weight}
	if patch.MenuName != nil && *patch.MenuName != l.MenuName {
		// 换菜单且未指定父级时放到新菜单根部
		p.menu, p.parent = *patch.MenuName, ""
	}
	if patch.ParentID != nil {
		p.parent = *patch.ParentID
	}
	if patch.Weight != nil {
		p.weight = *patch.Weight
	}
	p.moved = p.menu != l.MenuName || p.parent != l.ParentID
	return p
}

// validatePlacement 校验移动并返回包含新旧菜单的索引
func (s *linkService) validatePlacement(ctx context.Context, l *domain.MenuLink, p placement) (*tree.Index, error) {
	if p.menu != l.MenuName {
		if err := s.ensureMenu(ctx, p.menu); err != nil {
			return nil, err
		}
	}
	ix, err := s.loadIndex(ctx, l.MenuName, p.menu)
	if err != nil {
		return nil, err
	}
	if err := s.includeParent(ctx, ix, p.parent); err != nil {
		return nil, err
	}
	if err := ix.ValidateMove(l.ID, p.parent, p.menu, pendingFunc(ctx, s.revisions, ix)); err != nil {
		return nil, err
	}
	return ix, nil
}

func (s *linkService) updateContent(ctx context.Context, link *domain.MenuLink, patch *domain.LinkPatch, move bool) (*domain.MenuLink, error) {
	p := planPlacement(link, patch)
	if s.isPending(ctx, link) {
		structural := p.moved || p.weight != link.Weight
		if move {
			structural = patch.TouchesStructure()
		}
		if structural {
			return nil, code.ErrorPendingRevisionLocked.WithDetails(link.ID)
		}
	}

	next := link.Clone()
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, code.ErrorInvalidParams.WithDetails("title is required")
		}
		next.Title = title
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Link != nil {
		target, err := s.resolver.ResolveTarget(ctx, *patch.Link)
		if err != nil {
			return nil, err
		}
		next.Target = *target
	}
	if patch.Enabled != nil {
		next.Enabled = *patch.Enabled
	}
	if patch.Expanded != nil {
		next.Expanded = *patch.Expanded
	}
	next.Weight = p.weight

	if p.moved {
		ix, err := s.validatePlacement(ctx, link, p)
		if err != nil {
			return nil, err
		}
		if p.menu != link.MenuName {
			if err := s.carryDescendants(ctx, ix, link.ID, p.menu); err != nil {
				return nil, err
			}
		}
		next.MenuName, next.ParentID = p.menu, p.parent
	}

	next.Revision++
	next.UpdatedAt = time.Now()
	if err := s.linkRepo.Put(ctx, next); err != nil {
		return nil, dbError(err)
	}
	return next, nil
}

// carryDescendants 子孙链接跟随移动的链接进入新菜单
func (s *linkService) carryDescendants(ctx context.Context, ix *tree.Index, id, menu string) error {
	descendants := ix.Subtree(id)
	for _, did := range descendants {
		if d, ok := ix.Get(did); ok && d.IsPlugin() {
			return code.ErrorProtectedField.WithDetails("the subtree holds the module link " + did + " which cannot change menu")
		}
	}
	for _, did := range descendants {
		d, _ := ix.Get(did)
		moved := d.Clone()
		moved.MenuName = menu
		moved.UpdatedAt = time.Now()
		if err := s.linkRepo.Put(ctx, moved); err != nil {
			return dbError(err)
		}
	}
	return nil
}

func (s *linkService) updatePlugin(ctx context.Context, link *domain.MenuLink, patch *domain.LinkPatch) (*domain.MenuLink, error) {
	if patch.MenuName != nil && *patch.MenuName != link.MenuName {
		return nil, code.ErrorProtectedField.WithDetails("menu_name")
	}
	if patch.Link != nil && *patch.Link != link.Target.String() {
		return nil, code.ErrorProtectedField.WithDetails("link")
	}
	if !s.config.PluginTitleOverridable {
		if patch.Title != nil && *patch.Title != link.Title {
			return nil, code.ErrorProtectedField.WithDetails("title")
		}
		if patch.Description != nil && *patch.Description != link.Description {
			return nil, code.ErrorProtectedField.WithDetails("description")
		}
	}

	p := planPlacement(link, patch)
	if p.moved {
		if _, err := s.validatePlacement(ctx, link, p); err != nil {
			return nil, err
		}
	}

	overlay, err := s.overlayRepo.Get(ctx, link.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		overlay, err = &domain.Overlay{ID: link.ID}, nil
	}
	if err != nil {
		return nil, dbError(err)
	}
	if patch.ParentID != nil {
		parent := p.parent
		overlay.ParentID = &parent
	}
	if patch.Weight != nil {
		weight := *patch.Weight
		overlay.Weight = &weight
	}
	if patch.Enabled != nil {
		enabled := *patch.Enabled
		overlay.Enabled = &enabled
	}
	if patch.Expanded != nil {
		expanded := *patch.Expanded
		overlay.Expanded = &expanded
	}
	if s.config.PluginTitleOverridable {
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return nil, code.ErrorInvalidParams.WithDetails("title is required")
			}
			overlay.Title = &title
		}
		if patch.Description != nil {
			description := strings.TrimSpace(*patch.Description)
			overlay.Description = &description
		}
	}
	if err := s.overlayRepo.Put(ctx, overlay); err != nil {
		return nil, dbError(err)
	}

	var next *domain.MenuLink
	if link.Definition != nil {
		next = pluginLink(link.Definition, overlay, s.config.PluginTitleOverridable)
		if !p.moved {
			// 重建时被拒绝的声明父级只记录在链接行上，未移动时沿用当前位置
			next.ParentID = link.ParentID
		}
	} else {
		next = link.Clone()
		overlay.Apply(next)
	}
	next.CreatedAt = link.CreatedAt
	next.UpdatedAt = time.Now()
	if err := s.linkRepo.Put(ctx, next); err != nil {
		return nil, dbError(err)
	}
	return next, nil
}

func (s *linkService) DeleteLink(ctx context.Context, id string) error {
	var removed int
	err := withRetry(func() error {
		cur, err := s.linkRepo.Get(ctx, id)
		if err != nil {
			return notFound(err, code.ErrorLinkNotFound, id)
		}
		if cur.IsPlugin() {
			return code.ErrorCannotDeleteProtected.WithDetails(id)
		}

		return s.guard.Structural(ctx, []string{cur.MenuName}, func(ctx context.Context) error {
			link, err := s.linkRepo.Get(ctx, id)
			if err != nil {
				return notFound(err, code.ErrorLinkNotFound, id)
			}
			if link.MenuName != cur.MenuName {
				return errRetry
			}
			ix, err := s.loadIndex(ctx, link.MenuName)
			if err != nil {
				return err
			}
			descendants := ix.Subtree(id)
			for _, did := range descendants {
				if d, ok := ix.Get(did); ok && d.IsPlugin() {
					return code.ErrorCannotDeleteProtected.WithDetails("the subtree holds the module link " + did)
				}
			}
			for i := len(descendants) - 1; i >= 0; i-- {
				if err := s.linkRepo.Delete(ctx, descendants[i]); err != nil {
					return notFound(err, code.ErrorLinkNotFound, descendants[i])
				}
			}
			if err := s.linkRepo.Delete(ctx, id); err != nil {
				return notFound(err, code.ErrorLinkNotFound, id)
			}
			removed = len(descendants) + 1
			return nil
		})
	})
	metrics.Mutations.WithLabelValues("link_delete", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	s.logger.Info("menu link deleted",
		zap.String(pkglogger.FieldLinkID, id),
		zap.Int(pkglogger.FieldCount, removed))
	return nil
}

func (s *linkService) ResetLink(ctx context.Context, id string) (*domain.MenuLink, error) {
	var out *domain.MenuLink
	err := withRetry(func() error {
		cur, err := s.linkRepo.Get(ctx, id)
		if err != nil {
			return notFound(err, code.ErrorLinkNotFound, id)
		}
		if !cur.IsPlugin() || cur.Definition == nil {
			return code.ErrorNotResettable.WithDetails(id)
		}

		return s.guard.Structural(ctx, []string{cur.MenuName}, func(ctx context.Context) error {
			link, err := s.linkRepo.Get(ctx, id)
			if err != nil {
				return notFound(err, code.ErrorLinkNotFound, id)
			}
			if link.MenuName != cur.MenuName {
				return errRetry
			}
			if err := s.overlayRepo.Delete(ctx, id); err != nil {
				return dbError(err)
			}

			next := pluginLink(link.Definition, nil, s.config.PluginTitleOverridable)
			if next.ParentID != "" {
				ix, err := s.loadIndex(ctx, next.MenuName)
				if err != nil {
					return err
				}
				if err := s.includeParent(ctx, ix, next.ParentID); err != nil {
					return err
				}
				if err := ix.ValidateMove(id, next.ParentID, next.MenuName, pendingFunc(ctx, s.revisions, ix)); err != nil {
					s.logger.Warn("declared parent rejected, link placed at menu root",
						zap.String(pkglogger.FieldLinkID, id),
						zap.String(pkglogger.FieldParentID, next.ParentID),
						zap.Error(err))
					next.ParentID = ""
				}
			}
			next.CreatedAt = link.CreatedAt
			next.UpdatedAt = time.Now()
			if err := s.linkRepo.Put(ctx, next); err != nil {
				return dbError(err)
			}
			out = next
			return nil
		})
	})
	metrics.Mutations.WithLabelValues("link_reset", metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.logger.Info("menu link reset", zap.String(pkglogger.FieldLinkID, id))
	return out, nil
}

func (s *linkService) SetRevisionState(ctx context.Context, id string, state domain.RevisionState) (*domain.MenuLink, error) {
	if state != domain.RevisionStateDefault && state != domain.RevisionStatePending {
		return nil, code.ErrorInvalidParams.WithDetails("unknown revision state " + string(state))
	}

	var out *domain.MenuLink
	err := withRetry(func() error {
		cur, err := s.linkRepo.Get(ctx, id)
		if err != nil {
			return notFound(err, code.ErrorLinkNotFound, id)
		}
		if cur.IsPlugin() {
			return code.ErrorRevisionStateUnsupported.WithDetails(id)
		}

		return s.guard.Structural(ctx, []string{cur.MenuName}, func(ctx context.Context) error {
			link, err := s.linkRepo.Get(ctx, id)
			if err != nil {
				return notFound(err, code.ErrorLinkNotFound, id)
			}
			if link.MenuName != cur.MenuName {
				return errRetry
			}
			if state == domain.RevisionStatePending && link.RevisionState != domain.RevisionStatePending {
				children, err := s.linkRepo.ListByParent(ctx, id)
				if err != nil {
					return dbError(err)
				}
				if len(children) > 0 {
					return code.ErrorPendingRevisionParent.WithDetails(id + " has child links")
				}
			}
			next := link.Clone()
			next.RevisionState = state
			next.Revision++
			next.UpdatedAt = time.Now()
			if err := s.linkRepo.Put(ctx, next); err != nil {
				return dbError(err)
			}
			out = next
			return nil
		})
	})
	metrics.Mutations.WithLabelValues("link_revision", metrics.Result(err)).Inc()
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *linkService) GetLink(ctx context.Context, id string) (*domain.MenuLink, error) {
	l, err := s.linkRepo.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, code.ErrorLinkNotFound, id)
	}
	return l, nil
}

func (s *linkService) ListTree(ctx context.Context, menuName string, maxDepth int, expandAll bool) ([]domain.TreeEntry, error) {
	return s.LoadTree(ctx, menuName, domain.TreeParameters{
		MaxDepth:    maxDepth,
		ExpandAll:   expandAll,
		OnlyEnabled: true,
	})
}

func (s *linkService) LoadTree(ctx context.Context, menuName string, params domain.TreeParameters) ([]domain.TreeEntry, error) {
	if err := s.ensureMenu(ctx, menuName); err != nil {
		return nil, err
	}

	start := time.Now()
	// 共享的加载不随首个调用方取消
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do(menuName, func() (interface{}, error) {
		return s.linkRepo.ListByMenu(shared, menuName)
	})
	metrics.TreeLoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, dbError(err)
	}

	ix := tree.New(v.([]*domain.MenuLink), s.config.MaxDepth)
	return ix.Walk(menuName, params), nil
}

func (s *linkService) ParentOptions(ctx context.Context, menus []string, linkID string) ([]tree.ParentOption, error) {
	load := append([]string{}, menus...)
	if linkID != "" {
		link, err := s.linkRepo.Get(ctx, linkID)
		if err != nil {
			return nil, notFound(err, code.ErrorLinkNotFound, linkID)
		}
		if link.IsPlugin() {
			// 模块链接不能换菜单
			menus = []string{link.MenuName}
		}
		load = append(load, link.MenuName)
	}

	ix, err := s.loadIndex(ctx, load...)
	if err != nil {
		return nil, err
	}
	pending := pendingFunc(ctx, s.revisions, ix)

	var out []tree.ParentOption
	for _, m := range dedupe(menus) {
		out = append(out, ix.ParentOptions(m, linkID, pending)...)
	}
	return out, nil
}

func (s *linkService) Subtree(ctx context.Context, id string) ([]string, error) {
	link, err := s.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}
	ix, err := s.loadIndex(ctx, link.MenuName)
	if err != nil {
		return nil, err
	}
	return ix.Subtree(id), nil
}

func (s *linkService) CountLinks(ctx context.Context, menuName *string) (int64, error) {
	n, err := s.linkRepo.Count(ctx, menuName)
	return n, dbError(err)
}

func (s *linkService) CountPending(ctx context.Context, menuName string) (int64, error) {
	n, err := s.linkRepo.CountPending(ctx, menuName)
	return n, dbError(err)
}

// dedupe 去重并保持顺序
func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := keys[:0:0]
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
