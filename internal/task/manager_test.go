package task

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haierkeys/menu-tree-service/internal/app"
	"github.com/haierkeys/menu-tree-service/internal/dao"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, configure func(cfg *app.AppConfig)) *app.App {
	t.Helper()

	cfg, err := app.DefaultConfig()
	require.NoError(t, err)
	cfg.Database.Path = ":memory:"
	cfg.Menu.DeclarationsDir = t.TempDir()
	if configure != nil {
		configure(cfg)
	}

	db, err := dao.NewDBEngineWithConfig(cfg.DaoConfig())
	require.NoError(t, err)

	a, err := app.NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	require.NoError(t, a.Dao.AutoMigrate())
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(func() {
		_ = a.Shutdown(context.Background())
		_ = a.Close()
	})
	return a
}

func TestRebuildTaskFactory(t *testing.T) {
	a := newTestApp(t, nil)
	task, err := NewRebuildTask(a)
	require.NoError(t, err)
	assert.Nil(t, task)

	a = newTestApp(t, func(cfg *app.AppConfig) { cfg.Menu.RebuildCron = "@every 1h" })
	task, err = NewRebuildTask(a)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, "MenuRebuild", task.Name())
	assert.Equal(t, "@every 1h", task.Spec())
	assert.False(t, task.IsStartupRun())
}

func TestRebuildTaskRun(t *testing.T) {
	a := newTestApp(t, func(cfg *app.AppConfig) { cfg.Menu.RebuildCron = "@every 1h" })
	decl := "user.page:\n  title: My account\n  route_name: user.page\n  menu_name: account\n"
	require.NoError(t, os.WriteFile(filepath.Join(a.Config().Menu.DeclarationsDir, "user.links.menu.yml"), []byte(decl), 0o644))

	task, err := NewRebuildTask(a)
	require.NoError(t, err)
	require.NoError(t, task.Run(context.Background()))

	link, err := a.LinkService.GetLink(context.Background(), "user.page")
	require.NoError(t, err)
	assert.Equal(t, "My account", link.Title)
}

func TestManagerWatchesDeclarations(t *testing.T) {
	a := newTestApp(t, func(cfg *app.AppConfig) {
		cfg.Menu.WatchDeclarations = true
		cfg.Menu.WatchInterval = 50
	})

	m := NewManager(zap.NewNop(), a)
	require.NoError(t, m.RegisterTasks())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer func() { _ = m.Stop(context.Background()) }()

	decl := "user.logout:\n  title: Log out\n  route_name: user.logout\n  menu_name: account\n"
	require.NoError(t, os.WriteFile(filepath.Join(a.Config().Menu.DeclarationsDir, "user.links.menu.yml"), []byte(decl), 0o644))

	assert.Eventually(t, func() bool {
		_, err := a.LinkService.GetLink(context.Background(), "user.logout")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
}
