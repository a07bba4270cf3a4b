package dao

import (
	"context"
	"errors"
	"testing"

	"github.com/haierkeys/menu-tree-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDao(t *testing.T) *Dao {
	t.Helper()
	db, err := NewDBEngineWithConfig(DatabaseConfig{Type: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	d := New(db)
	require.NoError(t, d.AutoMigrate())
	return d
}

func contentLink(id, menu, parent string) *domain.MenuLink {
	return &domain.MenuLink{
		ID:            id,
		MenuName:      menu,
		ParentID:      parent,
		Title:         id,
		Target:        domain.Target{Kind: domain.TargetKindFront},
		Enabled:       true,
		Origin:        domain.LinkOriginContent,
		Provider:      domain.ContentProvider,
		RevisionState: domain.RevisionStateDefault,
		Revision:      1,
	}
}

func TestMenuLinkRepository_PutIsUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewMenuLinkRepository(newTestDao(t))

	l := contentLink("a", "main", "")
	l.Target = domain.Target{
		Kind:        domain.TargetKindRoute,
		RouteName:   "entity.node.canonical",
		RouteParams: map[string]string{"node": "5"},
		Path:        "/node/5",
		Query:       "x=1",
		Fragment:    "top",
	}
	require.NoError(t, repo.Put(ctx, l))

	l.Title = "renamed"
	l.Weight = -7
	require.NoError(t, repo.Put(ctx, l))

	n, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, -7, got.Weight)
	assert.Equal(t, "5", got.Target.RouteParams["node"])
	assert.Equal(t, "/node/5?x=1#top", got.Target.String())
	assert.Nil(t, got.Definition)
}

func TestMenuLinkRepository_PluginDefinition(t *testing.T) {
	ctx := context.Background()
	repo := NewMenuLinkRepository(newTestDao(t))

	l := &domain.MenuLink{
		ID:       "user.logout",
		MenuName: "account",
		Title:    "Log out",
		Weight:   10,
		Target:   domain.Target{Kind: domain.TargetKindRoute, RouteName: "user.logout"},
		Enabled:  true,
		Origin:   domain.LinkOriginPlugin,
		Provider: "user",
		Definition: &domain.Declaration{
			ID: "user.logout", MenuName: "account", Title: "Log out", Weight: 10,
			RouteName: "user.logout", Enabled: true, Provider: "user",
		},
	}
	require.NoError(t, repo.Put(ctx, l))

	got, err := repo.Get(ctx, "user.logout")
	require.NoError(t, err)
	require.NotNil(t, got.Definition)
	assert.Equal(t, 10, got.Definition.Weight)
	assert.True(t, got.IsPlugin())

	plugins, err := repo.ListByOrigin(ctx, domain.LinkOriginPlugin)
	require.NoError(t, err)
	assert.Len(t, plugins, 1)
}

func TestMenuLinkRepository_QueriesAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMenuLinkRepository(newTestDao(t))

	for _, l := range []*domain.MenuLink{
		contentLink("a", "main", ""),
		contentLink("b", "main", "a"),
		contentLink("c", "main", "a"),
		contentLink("x", "footer", ""),
	} {
		require.NoError(t, repo.Put(ctx, l))
	}
	pending := contentLink("p", "main", "")
	pending.RevisionState = domain.RevisionStatePending
	require.NoError(t, repo.Put(ctx, pending))

	children, err := repo.ListByParent(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, children, 2)

	mainLinks, err := repo.ListByMenu(ctx, "main")
	require.NoError(t, err)
	assert.Len(t, mainLinks, 4)

	both, err := repo.ListByMenus(ctx, []string{"main", "footer"})
	require.NoError(t, err)
	assert.Len(t, both, 5)

	byID, err := repo.ListByIDs(ctx, []string{"b", "x", "missing"})
	require.NoError(t, err)
	assert.Len(t, byID, 2)

	n, err := repo.CountPending(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	menu := "footer"
	n, err = repo.Count(ctx, &menu)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.Delete(ctx, "b"))
	assert.True(t, errors.Is(repo.Delete(ctx, "b"), gorm.ErrRecordNotFound))

	deleted, err := repo.DeleteByMenu(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}

func TestOverlayRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewOverlayRepository(newTestDao(t))

	_, err := repo.Get(ctx, "user.logout")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	w := 5
	require.NoError(t, repo.Put(ctx, &domain.Overlay{ID: "user.logout", Weight: &w}))

	enabled := false
	require.NoError(t, repo.Put(ctx, &domain.Overlay{ID: "user.logout", Enabled: &enabled}))

	got, err := repo.Get(ctx, "user.logout")
	require.NoError(t, err)
	assert.Nil(t, got.Weight, "put replaces the whole record")
	require.NotNil(t, got.Enabled)
	assert.False(t, *got.Enabled)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, "user.logout"))
	require.NoError(t, repo.Delete(ctx, "user.logout"))
}

func TestMenuRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMenuRepository(newTestDao(t))

	require.NoError(t, repo.Create(ctx, &domain.Menu{ID: "main", Label: "Main navigation", Locked: true}))
	require.NoError(t, repo.Create(ctx, &domain.Menu{ID: "custom", Label: "Custom"}))

	require.NoError(t, repo.Update(ctx, &domain.Menu{ID: "custom", Label: "Renamed", Description: "d"}))
	got, err := repo.Get(ctx, "custom")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Label)
	assert.Equal(t, "d", got.Description)

	assert.True(t, errors.Is(repo.Update(ctx, &domain.Menu{ID: "nope", Label: "x"}), gorm.ErrRecordNotFound))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, repo.Delete(ctx, "custom"))
	assert.True(t, errors.Is(repo.Delete(ctx, "custom"), gorm.ErrRecordNotFound))
}

func TestTransaction_RollsBackAllWrites(t *testing.T) {
	ctx := context.Background()
	d := newTestDao(t)
	repo := NewMenuLinkRepository(d)

	boom := errors.New("validation failed")
	err := d.Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.Put(ctx, contentLink("a", "main", "")))
		require.NoError(t, repo.Put(ctx, contentLink("b", "main", "a")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, d.Transaction(ctx, func(ctx context.Context) error {
		return d.Transaction(ctx, func(ctx context.Context) error {
			return repo.Put(ctx, contentLink("a", "main", ""))
		})
	}))
	n, err = repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
