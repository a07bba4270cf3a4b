package task

import (
	"context"

	"github.com/haierkeys/menu-tree-service/internal/app"

	"go.uber.org/zap"
)

func init() {
	Register(NewRebuildTask)
}

// RebuildTask 按声明目录重建模块链接
type RebuildTask struct {
	app *app.App
}

// Name 返回任务名称
func (t *RebuildTask) Name() string {
	return "MenuRebuild"
}

// Spec 定时重建的 cron 表达式
func (t *RebuildTask) Spec() string {
	return t.app.Config().Menu.RebuildCron
}

// IsStartupRun 启动重建已由 App.Init 同步完成
func (t *RebuildTask) IsStartupRun() bool {
	return false
}

// Run 执行重建
func (t *RebuildTask) Run(ctx context.Context) error {
	res, err := t.app.Rebuild(ctx)
	if err != nil {
		return err
	}

	t.app.Logger().Info("task log",
		zap.String("task", t.Name()),
		zap.Int("added", res.Added),
		zap.Int("updated", res.Updated),
		zap.Int("removed", res.Removed),
		zap.Int("reparented", res.Reparented),
		zap.Int("unchanged", res.Unchanged))
	return nil
}

// NewRebuildTask 创建重建任务，未配置 cron 时返回 nil
func NewRebuildTask(a *app.App) (Task, error) {
	if a.Config().Menu.RebuildCron == "" {
		return nil, nil
	}
	return &RebuildTask{app: a}, nil
}
