package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	internalApp "github.com/haierkeys/menu-tree-service/internal/app"
	"github.com/haierkeys/menu-tree-service/internal/dao"
	"github.com/haierkeys/menu-tree-service/internal/routers"
	"github.com/haierkeys/menu-tree-service/internal/task"
	"github.com/haierkeys/menu-tree-service/pkg/validator"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DefaultShutdownTimeout default shutdown timeout duration
// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// httpShutdownTimeout HTTP 服务器关闭等待时间
const httpShutdownTimeout = 5 * time.Second

type Server struct {
	logger            *zap.Logger             // 日志对象
	config            *internalApp.AppConfig  // 应用配置
	db                *gorm.DB                // 数据库连接
	ut                *ut.UniversalTranslator // 翻译器
	httpServer        *http.Server
	privateHttpServer *http.Server
	app               *internalApp.App // App Container
	tasks             *task.Manager

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewServer(runEnv *runFlags) (*Server, error) {

	// 使用 LoadConfig 直接加载配置到 AppConfig
	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if len(runEnv.port) > 0 {
		appConfig.Server.HttpPort = runEnv.port
	}

	// 确定运行模式
	runMode := runEnv.runMode
	if len(runMode) <= 0 {
		runMode = appConfig.Server.RunMode
	}
	appConfig.Server.RunMode = runMode

	if len(runMode) > 0 {
		gin.SetMode(runMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: appConfig,
	}

	// 初始化日志器
	if s.logger, err = newLogger(appConfig); err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}

	// 初始化存储目录
	if err := initStorageWithConfig(appConfig); err != nil {
		return nil, fmt.Errorf("initStorage: %w", err)
	}

	// 初始化数据库
	db, err := dao.NewDBEngineWithConfig(appConfig.DaoConfig())
	if err != nil {
		return nil, fmt.Errorf("initDatabase: %w", err)
	}
	s.db = db

	// 初始化 App Container
	app, err := internalApp.NewApp(appConfig, s.logger, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}
	s.app = app

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.group, s.ctx = errgroup.WithContext(ctx)

	if err := s.init(ctx); err != nil {
		cancel()
		_ = s.app.Close()
		return nil, err
	}

	s.logger.Warn(fmt.Sprintf("\n%s v%s\nGit: %s\nBuildTime: %s\n", internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))
	s.logger.Warn("config loaded", zap.String("path", configRealpath))

	// 启动 HTTP API 服务器
	if httpAddr := appConfig.Server.HttpPort; len(httpAddr) > 0 {
		s.logger.Warn("api_router", zap.String("config.server.HttpPort", appConfig.Server.HttpPort))
		s.httpServer = &http.Server{
			Addr:           appConfig.Server.HttpPort,
			Handler:        routers.NewRouter(s.app, s.ut),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.serve("api service", s.httpServer)
	}

	if httpAddr := appConfig.Server.PrivateHttpListen; len(httpAddr) > 0 {
		s.logger.Info("api_router", zap.String("config.server.PrivateHttpListen", appConfig.Server.PrivateHttpListen))
		s.privateHttpServer = &http.Server{
			Addr:           appConfig.Server.PrivateHttpListen,
			Handler:        routers.NewPrivateRouterWithLogger(runMode, s.logger),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.serve("private api service", s.privateHttpServer)
	}

	return s, nil
}

// init 执行迁移、初始化验证器、系统菜单和后台任务
func (s *Server) init(ctx context.Context) error {
	applied, err := migrate(ctx, s.app)
	if err != nil {
		return fmt.Errorf("upgrade: %w", err)
	}
	if applied > 0 {
		s.logger.Info("database upgraded", zap.Int("migrations", applied))
	}

	uni, err := validator.Init()
	if err != nil {
		return fmt.Errorf("initValidator: %w", err)
	}
	s.ut = uni

	if err := ensureDeclarations(s.config.Menu.DeclarationsDir); err != nil {
		s.logger.Warn("failed to create declarations dir", zap.Error(err))
	}

	if err := s.app.Init(ctx); err != nil {
		return fmt.Errorf("initApp: %w", err)
	}

	// 启动调度器
	s.tasks = task.NewManager(s.logger, s.app)
	if err := s.tasks.RegisterTasks(); err != nil {
		return fmt.Errorf("register tasks: %w", err)
	}
	s.tasks.Start(s.ctx)
	return nil
}

// serve 在 errgroup 中运行 HTTP 服务器，ctx 取消时优雅关闭
// 监听失败会取消 ctx，从而关闭其他服务器
func (s *Server) serve(name string, srv *http.Server) {
	s.group.Go(func() error {
		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.ListenAndServe()
		}()

		select {
		case err := <-errChan:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			s.logger.Error(name+" err", zap.Error(err))
			return fmt.Errorf("%s: %w", name, err)
		case <-s.ctx.Done():
			ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
			defer cancel()

			// 停止HTTP服务器
			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error(name+" shutdown error", zap.Error(err))
				return err
			}
			return nil
		}
	})
}

// Done 任一服务器异常退出时关闭
func (s *Server) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Close 关闭服务器、后台任务和 App Container
func (s *Server) Close() error {
	s.cancel()
	err := s.group.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if s.tasks != nil {
		if stopErr := s.tasks.Stop(ctx); stopErr != nil {
			s.logger.Error("failed to stop tasks", zap.Error(stopErr))
		}
	}

	// 使用带超时的优雅关闭
	if shutdownErr := s.app.Shutdown(ctx); shutdownErr != nil {
		s.logger.Error("failed to shutdown app container", zap.Error(shutdownErr))
	} else {
		s.logger.Info("App container shutdown gracefully")
	}
	if closeErr := s.app.Close(); closeErr != nil {
		s.logger.Error("failed to close database", zap.Error(closeErr))
	}
	_ = s.logger.Sync()
	return err
}

// initStorageWithConfig 初始化日志和数据库目录
func initStorageWithConfig(cfg *internalApp.AppConfig) error {
	dirs := []string{
		filepath.Dir(cfg.Log.File),
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path != ":memory:" {
		dirs = append(dirs, filepath.Dir(cfg.Database.Path))
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0754); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetApp 获取 App Container
func (s *Server) GetApp() *internalApp.App {
	return s.app
}

// GetConfig 获取应用配置
func (s *Server) GetConfig() *internalApp.AppConfig {
	return s.config
}
