package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haierkeys/menu-tree-service/internal/dao"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testDeclarations = `
user.page:
  title: My account
  route_name: user.page
  menu_name: account
user.logout:
  title: Log out
  route_name: user.logout
  menu_name: account
  weight: 10
`

func newTestApp(t *testing.T, rebuildOnStart bool) *App {
	t.Helper()

	cfg, err := DefaultConfig()
	require.NoError(t, err)
	cfg.Database.Path = ":memory:"
	cfg.Menu.DeclarationsDir = t.TempDir()
	cfg.Menu.RebuildOnStart = rebuildOnStart
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Menu.DeclarationsDir, "user.links.menu.yml"), []byte(testDeclarations), 0644))

	db, err := dao.NewDBEngineWithConfig(cfg.DaoConfig())
	require.NoError(t, err)

	a, err := NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	require.NoError(t, a.Dao.AutoMigrate())
	t.Cleanup(func() {
		_ = a.Shutdown(context.Background())
		_ = a.Close()
	})
	return a
}

func TestAppInit(t *testing.T) {
	a := newTestApp(t, true)
	ctx := context.Background()
	require.NoError(t, a.Init(ctx))

	menus, total, err := a.MenuService.ListMenus(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, menus, 5)

	link, err := a.LinkService.GetLink(ctx, "user.logout")
	require.NoError(t, err)
	assert.Equal(t, "Log out", link.Title)
	assert.Equal(t, 10, link.Weight)
}

func TestAppInitWithoutRebuild(t *testing.T) {
	a := newTestApp(t, false)
	ctx := context.Background()
	require.NoError(t, a.Init(ctx))

	_, err := a.LinkService.GetLink(ctx, "user.logout")
	assert.Error(t, err)

	res, err := a.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
}

func TestAppRebuildAsync(t *testing.T) {
	a := newTestApp(t, false)
	ctx := context.Background()
	require.NoError(t, a.Init(ctx))

	require.NoError(t, a.RebuildAsync(ctx, "test"))
	assert.Eventually(t, func() bool {
		_, err := a.LinkService.GetLink(ctx, "user.page")
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)
}

func TestAppVersion(t *testing.T) {
	a := newTestApp(t, false)
	v := a.Version()
	assert.Equal(t, Name, v.Name)
	assert.Equal(t, Version, v.Version)
	assert.False(t, a.IsProductionMode())
}

func TestAppShutdown(t *testing.T) {
	a := newTestApp(t, false)

	stopped := make(chan struct{})
	a.Go(func(stop <-chan struct{}) {
		<-stop
		close(stopped)
	})

	require.NoError(t, a.Shutdown(context.Background()))
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("background goroutine was not stopped")
	}
}
