package task

import (
	"context"
	"time"

	"github.com/haierkeys/menu-tree-service/internal/app"
	pkglogger "github.com/haierkeys/menu-tree-service/pkg/logger"

	"go.uber.org/zap"
)

// Manager 任务管理器，负责任务的注册和调度
type Manager struct {
	scheduler *Scheduler
	watcher   *DeclarationWatcher
	logger    *zap.Logger
	app       *app.App
}

// NewManager 创建任务管理器
func NewManager(logger *zap.Logger, a *app.App) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger),
		logger:    logger,
		app:       a,
	}
}

// RegisterTasks 自动注册所有已注册的任务
func (m *Manager) RegisterTasks() error {
	factories := GetFactories()

	for _, factory := range factories {
		task, err := factory(m.app)
		if err != nil {
			m.logger.Error("failed to create task", zap.Error(err))
			return err
		}
		if task == nil {
			continue
		}
		if err := m.scheduler.AddTask(task); err != nil {
			return err
		}
		m.logger.Info("task registered",
			zap.String("name", task.Name()),
			zap.String("spec", task.Spec()),
			zap.Bool("startupRun", task.IsStartupRun()))
	}

	if cfg := m.app.Config().Menu; cfg.WatchDeclarations {
		m.watcher = NewDeclarationWatcher(cfg.DeclarationsDir, time.Duration(cfg.WatchInterval)*time.Millisecond, m.logger,
			func(ctx context.Context, path string) {
				if err := m.app.RebuildAsync(ctx, "declaration changed: "+path); err != nil {
					m.logger.Warn("schedule rebuild failed", zap.String(pkglogger.FieldPath, path), zap.Error(err))
				}
			})
	}
	return nil
}

// Start 启动所有任务
func (m *Manager) Start(ctx context.Context) {
	m.scheduler.Start()
	if m.watcher != nil {
		if err := m.watcher.Start(ctx); err != nil {
			m.logger.Warn("declaration watcher disabled", zap.Error(err))
		}
	}
}

// Stop 停止所有任务
func (m *Manager) Stop(ctx context.Context) error {
	if m.watcher != nil {
		m.watcher.Stop()
	}
	return m.scheduler.Stop(ctx)
}
