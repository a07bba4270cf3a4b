package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/internal/metrics"
	"github.com/haierkeys/menu-tree-service/internal/tree"
	"github.com/haierkeys/menu-tree-service/pkg/code"
	pkglogger "github.com/haierkeys/menu-tree-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RebuildService 将模块声明的链接与已持久化的链接和覆盖记录同步
type RebuildService interface {
	// Rebuild 按声明重建模块链接，自定义链接与覆盖记录保持不变
	Rebuild(ctx context.Context, decls []*domain.Declaration) (*domain.RebuildResult, error)
}

type rebuildService struct {
	linkRepo    domain.MenuLinkRepository
	overlayRepo domain.OverlayRepository
	menuRepo    domain.MenuRepository
	revisions   domain.RevisionLookup
	guard       *Guard
	config      *ServiceConfig
	logger      *zap.Logger
}

// NewRebuildService 创建 RebuildService 实例，revisions 可以为 nil
func NewRebuildService(
	linkRepo domain.MenuLinkRepository,
	overlayRepo domain.OverlayRepository,
	menuRepo domain.MenuRepository,
	revisions domain.RevisionLookup,
	guard *Guard,
	config *ServiceConfig,
	logger *zap.Logger,
) RebuildService {
	return &rebuildService{
		linkRepo:    linkRepo,
		overlayRepo: overlayRepo,
		menuRepo:    menuRepo,
		revisions:   revisions,
		guard:       guard,
		config:      config,
		logger:      logger,
	}
}

func (s *rebuildService) Rebuild(ctx context.Context, decls []*domain.Declaration) (*domain.RebuildResult, error) {
	start := time.Now()

	declared, order, err := indexDeclarations(decls)
	var res *domain.RebuildResult
	if err == nil {
		err = s.guard.Exclusive(ctx, func(ctx context.Context) error {
			r, err := s.reconcile(ctx, declared, order)
			res = r
			return err
		})
	}
	metrics.Rebuilds.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Error("menu rebuild failed", zap.Error(err))
		return nil, err
	}

	metrics.RebuildLinks.WithLabelValues("added").Set(float64(res.Added))
	metrics.RebuildLinks.WithLabelValues("updated").Set(float64(res.Updated))
	metrics.RebuildLinks.WithLabelValues("removed").Set(float64(res.Removed))
	metrics.RebuildLinks.WithLabelValues("unchanged").Set(float64(res.Unchanged))
	metrics.RebuildLinks.WithLabelValues("reparented").Set(float64(res.Reparented))

	s.logger.Info("menu rebuild finished",
		zap.Int("added", res.Added),
		zap.Int("updated", res.Updated),
		zap.Int("removed", res.Removed),
		zap.Int("unchanged", res.Unchanged),
		zap.Int("reparented", res.Reparented),
		zap.Duration(pkglogger.FieldDuration, time.Since(start)))
	return res, nil
}

// indexDeclarations 校验声明并按 ID 建立索引，保留声明顺序
func indexDeclarations(decls []*domain.Declaration) (map[string]*domain.Declaration, []string, error) {
	declared := make(map[string]*domain.Declaration, len(decls))
	order := make([]string, 0, len(decls))
	for _, d := range decls {
		if d == nil {
			continue
		}
		switch {
		case d.ID == "":
			return nil, nil, code.ErrorInvalidDeclaration.WithDetails("declaration without id")
		case strings.HasPrefix(d.ID, domain.ContentIDPrefix):
			return nil, nil, code.ErrorInvalidDeclaration.WithDetails(d.ID + " uses a reserved prefix")
		case !ValidMenuID(d.MenuName):
			return nil, nil, code.ErrorInvalidDeclaration.WithDetails(d.ID + ": invalid menu name " + d.MenuName)
		case strings.TrimSpace(d.Title) == "":
			return nil, nil, code.ErrorInvalidDeclaration.WithDetails(d.ID + " has no title")
		}
		if _, dup := declared[d.ID]; dup {
			return nil, nil, code.ErrorInvalidDeclaration.WithDetails("duplicate declaration " + d.ID)
		}
		declared[d.ID] = d
		order = append(order, d.ID)
	}
	return declared, order, nil
}

func (s *rebuildService) reconcile(ctx context.Context, declared map[string]*domain.Declaration, order []string) (*domain.RebuildResult, error) {
	res := &domain.RebuildResult{}

	// 声明 ID 不能占用自定义链接
	clashes, err := s.linkRepo.ListByIDs(ctx, order)
	if err != nil {
		return nil, dbError(err)
	}
	for _, l := range clashes {
		if !l.IsPlugin() {
			return nil, code.ErrorIdCollision.WithDetails(l.ID)
		}
	}

	plugins, err := s.linkRepo.ListByOrigin(ctx, domain.LinkOriginPlugin)
	if err != nil {
		return nil, dbError(err)
	}
	contents, err := s.linkRepo.ListByOrigin(ctx, domain.LinkOriginContent)
	if err != nil {
		return nil, dbError(err)
	}
	overlayList, err := s.overlayRepo.List(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	overlays := make(map[string]*domain.Overlay, len(overlayList))
	for _, o := range overlayList {
		overlays[o.ID] = o
	}

	old := make(map[string]*domain.MenuLink, len(plugins)+len(contents))
	withdrawn := make(map[string]bool)
	for _, l := range contents {
		old[l.ID] = l
	}
	for _, l := range plugins {
		old[l.ID] = l
		if _, ok := declared[l.ID]; !ok {
			withdrawn[l.ID] = true
		}
	}

	// survivor 返回 id 或其最近的未撤销祖先
	survivor := func(id string) string {
		seen := make(map[string]bool)
		for id != "" && !seen[id] {
			seen[id] = true
			l, ok := old[id]
			if !ok {
				return ""
			}
			if !withdrawn[id] {
				return id
			}
			id = l.ParentID
		}
		return ""
	}

	if err := s.ensureMenus(ctx, declared, order); err != nil {
		return nil, err
	}

	next := make(map[string]*domain.MenuLink, len(contents)+len(order))
	reparented := make(map[string]bool)
	for _, l := range contents {
		c := l.Clone()
		if withdrawn[c.ParentID] {
			c.ParentID = survivor(c.ParentID)
			reparented[c.ID] = true
		}
		next[c.ID] = c
	}

	overlayWrites := make(map[string]*domain.Overlay)
	for _, id := range order {
		l := pluginLink(declared[id], overlays[id], s.config.PluginTitleOverridable)
		if withdrawn[l.ParentID] {
			// 记录到覆盖记录中，使之后的重建得到相同位置
			parent := survivor(l.ParentID)
			o := &domain.Overlay{ID: id}
			if existing, ok := overlays[id]; ok {
				cp := *existing
				o = &cp
			}
			o.ParentID = &parent
			overlayWrites[id] = o
			l.ParentID = parent
			reparented[id] = true
		}
		if prev, ok := old[id]; ok {
			l.CreatedAt = prev.CreatedAt
		}
		next[id] = l
	}

	s.place(ctx, next)

	now := time.Now()
	for _, id := range order {
		l := next[id]
		prev, ok := old[id]
		switch {
		case !ok:
			res.Added++
		case !sameLink(prev, l):
			res.Updated++
		default:
			res.Unchanged++
			continue
		}
		l.UpdatedAt = now
		if err := s.linkRepo.Put(ctx, l); err != nil {
			return nil, dbError(err)
		}
	}

	for _, id := range sortedKeys(overlayWrites) {
		if err := s.overlayRepo.Put(ctx, overlayWrites[id]); err != nil {
			return nil, dbError(err)
		}
	}

	for _, l := range contents {
		c := next[l.ID]
		if c.ParentID == l.ParentID && c.MenuName == l.MenuName {
			continue
		}
		reparented[c.ID] = true
		c.UpdatedAt = now
		if err := s.linkRepo.Put(ctx, c); err != nil {
			return nil, dbError(err)
		}
	}

	for _, id := range sortedKeys(withdrawn) {
		if err := s.linkRepo.Delete(ctx, id); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dbError(err)
		}
		res.Removed++
		s.logger.Info("withdrawn menu link removed", zap.String(pkglogger.FieldLinkID, id))
	}
	for id := range overlays {
		if _, ok := declared[id]; ok {
			continue
		}
		if err := s.overlayRepo.Delete(ctx, id); err != nil {
			return nil, dbError(err)
		}
	}

	for id := range reparented {
		if !withdrawn[id] {
			res.Reparented++
		}
	}
	return res, nil
}

// ensureMenus 创建声明引用但不存在的菜单，这些菜单不可删除
func (s *rebuildService) ensureMenus(ctx context.Context, declared map[string]*domain.Declaration, order []string) error {
	menus := make(map[string]bool)
	for _, id := range order {
		menus[declared[id].MenuName] = true
	}
	for _, name := range sortedKeys(menus) {
		_, err := s.menuRepo.Get(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dbError(err)
		}
		if err := s.menuRepo.Create(ctx, &domain.Menu{ID: name, Label: name, Locked: true}); err != nil {
			return dbError(err)
		}
		s.logger.Info("menu created for declared links", zap.String(pkglogger.FieldMenu, name))
	}
	return nil
}

// place 按父级优先的顺序确定每个链接的位置
//
// 模块链接的父级不存在、属于其他菜单、待发布、形成环或超过最大深度时放到菜单根部。
// 自定义链接跟随父级所在菜单，超过最大深度时放到根部。
func (s *rebuildService) place(ctx context.Context, next map[string]*domain.MenuLink) {
	ids := sortedKeys(next)
	links := make([]*domain.MenuLink, 0, len(ids))
	for _, id := range ids {
		links = append(links, next[id])
	}
	ix := tree.New(links, s.config.MaxDepth)
	pending := pendingFunc(ctx, s.revisions, ix)

	placed := make(map[string]bool, len(ids))
	visiting := make(map[string]bool)

	var visit func(id string)
	visit = func(id string) {
		if placed[id] || visiting[id] {
			return
		}
		visiting[id] = true
		l := next[id]
		if _, ok := next[l.ParentID]; ok {
			visit(l.ParentID)
		}
		if reason := s.rejectParent(ix, l, pending); reason != "" {
			s.logger.Warn("menu link placed at menu root",
				zap.String(pkglogger.FieldLinkID, l.ID),
				zap.String(pkglogger.FieldParentID, l.ParentID),
				zap.String("reason", reason))
			l.ParentID = ""
			ix.Put(l)
		}
		placed[id] = true
	}
	for _, id := range ids {
		visit(id)
	}
}

// rejectParent 返回父级不可用的原因，可用时返回空字符串
func (s *rebuildService) rejectParent(ix *tree.Index, l *domain.MenuLink, pending tree.PendingFunc) string {
	if l.ParentID == "" {
		return ""
	}
	parent, ok := ix.Get(l.ParentID)
	if !ok {
		if l.IsPlugin() {
			return "parent not found"
		}
		return ""
	}
	if parent.MenuName != l.MenuName {
		if l.IsPlugin() {
			return "parent belongs to menu " + parent.MenuName
		}
		l.MenuName = parent.MenuName
		ix.Put(l)
	}
	if l.IsPlugin() && pending(parent.ID) {
		return "parent has a pending revision"
	}
	depth, err := ix.ComputeDepth(l.ID, l.ParentID)
	if err != nil {
		return err.Error()
	}
	if depth >= ix.MaxDepth() {
		return "maximum depth exceeded"
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
