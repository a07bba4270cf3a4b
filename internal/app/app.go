// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/menu-tree-service/internal/dao"
	"github.com/haierkeys/menu-tree-service/internal/declaration"
	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/internal/routing"
	"github.com/haierkeys/menu-tree-service/internal/service"
	pkgapp "github.com/haierkeys/menu-tree-service/pkg/app"
	"github.com/haierkeys/menu-tree-service/pkg/workerpool"
	"github.com/haierkeys/menu-tree-service/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager

	// Repository 层
	LinkRepo    domain.MenuLinkRepository
	OverlayRepo domain.OverlayRepository
	MenuRepo    domain.MenuRepository

	// 路由表，解析链接目标
	Routes *routing.Table

	// Service 层
	Guard          *service.Guard
	MenuService    service.MenuService
	LinkService    service.LinkService
	RebuildService service.RebuildService

	StartTime time.Time

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// Option App 选项
type Option func(*App)

// WithWriteQueue 使用外部的写队列（测试中用于缩短超时）
func WithWriteQueue(m *writequeue.Manager) Option {
	return func(a *App) { a.writeQueueMgr = m }
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	// 初始化 Worker Pool
	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	// 初始化 Write Queue Manager
	wqConfig := cfg.GetWriteQueueConfig()
	if a.writeQueueMgr == nil {
		a.writeQueueMgr = writequeue.New(&wqConfig, logger)
	}

	dbConfig := cfg.DaoConfig()
	a.Dao = dao.New(db, dao.WithConfig(&dbConfig), dao.WithLogger(logger))

	routes, err := routing.NewTable(cfg.Routing)
	if err != nil {
		return nil, fmt.Errorf("build route table: %w", err)
	}
	a.Routes = routes

	// 初始化 Repository 层
	a.LinkRepo = dao.NewMenuLinkRepository(a.Dao)
	a.OverlayRepo = dao.NewOverlayRepository(a.Dao)
	a.MenuRepo = dao.NewMenuRepository(a.Dao)

	// 初始化 Service 层（依赖注入）
	svcConfig := cfg.ServiceConfig()
	a.Guard = service.NewGuard(a.writeQueueMgr, a.Dao)
	a.MenuService = service.NewMenuService(a.MenuRepo, a.LinkRepo, a.Guard, svcConfig, logger)
	a.LinkService = service.NewLinkService(a.LinkRepo, a.OverlayRepo, a.MenuRepo, a.Routes, a.Guard, svcConfig, logger)
	a.RebuildService = service.NewRebuildService(a.LinkRepo, a.OverlayRepo, a.MenuRepo, nil, a.Guard, svcConfig, logger)

	logger.Info("App container initialized successfully",
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity),
		zap.Int("maxDepth", svcConfig.MaxDepth))

	return a, nil
}

// Init 确保系统菜单存在，按配置执行启动重建
func (a *App) Init(ctx context.Context) error {
	if err := a.MenuService.EnsureSystemMenus(ctx); err != nil {
		return err
	}
	if a.config.Menu.RebuildOnStart {
		if _, err := a.Rebuild(ctx); err != nil {
			return err
		}
	}
	return nil
}

// LoadDeclarations 读取声明目录中的全部模块链接声明
func (a *App) LoadDeclarations() ([]*domain.Declaration, error) {
	return declaration.LoadDir(a.config.Menu.DeclarationsDir)
}

// Rebuild 从声明目录重新加载声明并重建模块链接
func (a *App) Rebuild(ctx context.Context) (*domain.RebuildResult, error) {
	decls, err := a.LoadDeclarations()
	if err != nil {
		return nil, err
	}
	return a.RebuildService.Rebuild(ctx, decls)
}

// RebuildAsync 在 Worker Pool 中执行重建，不等待结果
func (a *App) RebuildAsync(ctx context.Context, reason string) error {
	return a.SubmitTaskAsync(ctx, func(ctx context.Context) error {
		res, err := a.Rebuild(ctx)
		if err != nil {
			a.logger.Error("background rebuild failed", zap.String("reason", reason), zap.Error(err))
			return err
		}
		a.logger.Info("background rebuild finished", zap.String("reason", reason), zap.Any("result", res))
		return nil
	})
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// SubmitTask 提交任务到 Worker Pool
// 返回错误如果池已满或已关闭
func (a *App) SubmitTask(ctx context.Context, task func(context.Context) error) error {
	return a.workerPool.Submit(ctx, task)
}

// SubmitTaskAsync 异步提交任务到 Worker Pool（不等待结果）
// 返回错误如果池已满或已关闭
func (a *App) SubmitTaskAsync(ctx context.Context, task func(context.Context) error) error {
	return a.workerPool.SubmitAsync(ctx, task)
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Name:      Name,
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// IsProductionMode 是否为生产模式
// 根据日志配置中的 Production 字段判断
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}

// WorkerPool 获取 Worker Pool（用于高级操作）
func (a *App) WorkerPool() *workerpool.Pool {
	return a.workerPool
}

// WriteQueueManager 获取 Write Queue Manager（用于高级操作）
func (a *App) WriteQueueManager() *writequeue.Manager {
	return a.writeQueueMgr
}

// Go 启动受 Shutdown 等待的后台协程
func (a *App) Go(fn func(stop <-chan struct{})) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn(a.shutdownCh)
	}()
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Worker Pool -> Write Queue Manager -> 后台协程
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	// 标记关闭
	select {
	case <-a.shutdownCh:
		return nil
	default:
		close(a.shutdownCh)
	}

	var errs []error

	// 1. 关闭 Worker Pool（停止接受新任务，等待现有任务完成）
	if a.workerPool != nil {
		a.logger.Info("Shutting down worker pool...")
		if err := a.workerPool.Shutdown(ctx); err != nil {
			a.logger.Warn("Worker pool shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("worker pool shutdown: %w", err))
		}
	}

	// 2. 关闭 Write Queue Manager（排空所有队列）
	if a.writeQueueMgr != nil {
		a.logger.Info("Shutting down write queue manager...")
		if err := a.writeQueueMgr.Shutdown(ctx); err != nil {
			a.logger.Warn("write queue manager shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("write queue manager shutdown: %w", err))
		}
	}

	// 3. 等待所有后台协程完成
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("All background operations completed")
	case <-ctx.Done():
		a.logger.Warn("Timeout waiting for background operations")
		errs = append(errs, fmt.Errorf("timeout waiting for background operations"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.Info("App container shutdown completed")
	return nil
}
