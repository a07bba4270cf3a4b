package service

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/menu-tree-service/internal/dao"
	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/internal/routing"
	"github.com/haierkeys/menu-tree-service/internal/tree"
	"github.com/haierkeys/menu-tree-service/pkg/writequeue"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	config      *ServiceConfig
	linkRepo    domain.MenuLinkRepository
	overlayRepo domain.OverlayRepository
	menuRepo    domain.MenuRepository
	menus       MenuService
	links       LinkService
	rebuild     RebuildService
}

type fixtureOption func(*ServiceConfig)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	return newFixtureWithLookup(t, nil, opts...)
}

func newFixtureWithLookup(t *testing.T, revisions domain.RevisionLookup, opts ...fixtureOption) *fixture {
	t.Helper()

	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{Type: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	d := dao.New(db)
	require.NoError(t, d.AutoMigrate())

	queue := writequeue.New(&writequeue.Config{
		QueueCapacity: 100,
		WriteTimeout:  10 * time.Second,
		IdleTimeout:   time.Minute,
	}, zap.NewNop())
	t.Cleanup(func() {
		_ = queue.Shutdown(context.Background())
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	table, err := routing.NewTable(routing.Config{})
	require.NoError(t, err)

	cfg := &ServiceConfig{
		MaxDepth:        tree.DefaultMaxDepth,
		DefaultPageSize: 50,
		MaxPageSize:     200,
		SystemMenus: []domain.Menu{
			{ID: "account", Label: "User account menu"},
			{ID: "footer", Label: "Footer"},
			{ID: "main", Label: "Main navigation"},
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	f := &fixture{
		config:      cfg,
		linkRepo:    dao.NewMenuLinkRepository(d),
		overlayRepo: dao.NewOverlayRepository(d),
		menuRepo:    dao.NewMenuRepository(d),
	}
	guard := NewGuard(queue, d)
	logger := zap.NewNop()
	f.menus = NewMenuService(f.menuRepo, f.linkRepo, guard, cfg, logger)
	f.links = NewLinkService(f.linkRepo, f.overlayRepo, f.menuRepo, table, guard, cfg, logger, WithRevisionLookup(revisions))
	f.rebuild = NewRebuildService(f.linkRepo, f.overlayRepo, f.menuRepo, revisions, guard, cfg, logger)

	require.NoError(t, f.menus.EnsureSystemMenus(context.Background()))
	return f
}

func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

// mustCreate 创建指向首页的自定义链接
func (f *fixture) mustCreate(t *testing.T, menu, parent, title string, weight int) *domain.MenuLink {
	t.Helper()
	l, err := f.links.CreateLink(context.Background(), &domain.LinkDraft{
		MenuName: menu,
		ParentID: parent,
		Title:    title,
		Link:     "<front>",
		Weight:   intPtr(weight),
	})
	require.NoError(t, err)
	return l
}

// checkInvariants 校验整个注册表的结构约束
func (f *fixture) checkInvariants(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	menus, err := f.menuRepo.List(ctx)
	require.NoError(t, err)
	names := make([]string, len(menus))
	for i, m := range menus {
		names[i] = m.ID
	}
	links, err := f.linkRepo.ListByMenus(ctx, names)
	require.NoError(t, err)
	ix := tree.New(links, f.config.MaxDepth)
	require.NoError(t, ix.Check(func(id string) bool {
		l, ok := ix.Get(id)
		return ok && l.IsPending()
	}))
}

func treeIDs(entries []domain.TreeEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Link.ID
	}
	return out
}

func titles(entries []domain.TreeEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Link.Title
	}
	return out
}
