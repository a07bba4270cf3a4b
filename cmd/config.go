package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	internalApp "github.com/haierkeys/menu-tree-service/internal/app"
	"github.com/haierkeys/menu-tree-service/internal/dao"
	"github.com/haierkeys/menu-tree-service/internal/upgrade"
	"github.com/haierkeys/menu-tree-service/pkg/code"
	"github.com/haierkeys/menu-tree-service/pkg/fileurl"
	"github.com/haierkeys/menu-tree-service/pkg/logger"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// configCandidates 未指定配置文件时依次查找
var configCandidates = []string{
	"config/config-dev.yaml",
	"config.yaml",
	"config/config.yaml",
}

// lastVersionFile 记录上一次运行的版本，用于跳过已执行的升级
const lastVersionFile = "config/lastVersion"

// findConfig 查找配置文件，返回空字符串表示没有找到
func findConfig(configPath string) string {
	if len(configPath) > 0 {
		return configPath
	}
	for _, candidate := range configCandidates {
		if fileurl.IsExist(candidate) {
			return candidate
		}
	}
	return ""
}

// ensureConfig 查找配置文件，不存在时写出默认配置
func ensureConfig(configPath string) (string, error) {
	if found := findConfig(configPath); found != "" {
		return found, nil
	}

	bootstrapLogger.Warn("config file not found, creating default config")
	configPath = "config/config.yaml"

	created, err := fileurl.WriteFileIfMissing(configPath, []byte(configDefault), 0644)
	if err != nil {
		return "", errors.Wrap(err, "config file auto create error")
	}
	if created {
		bootstrapLogger.Info("config file auto create successfully", zap.String("path", configPath))
	}
	return configPath, nil
}

// ensureDeclarations 声明目录不存在时写出内置的示例声明
func ensureDeclarations(dir string) error {
	if fileurl.IsDir(dir) {
		return nil
	}
	entries, err := fs.ReadDir(linkFiles, "config/links")
	if err != nil {
		// 没有内置声明
		return os.MkdirAll(dir, 0754)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := fs.ReadFile(linkFiles, path.Join("config/links", entry.Name()))
		if err != nil {
			return err
		}
		if _, err := fileurl.WriteFileIfMissing(filepath.Join(dir, entry.Name()), data, 0644); err != nil {
			return err
		}
	}
	bootstrapLogger.Info("sample declarations created", zap.String("dir", dir))
	return nil
}

// newLogger 根据配置创建日志器
func newLogger(cfg *internalApp.AppConfig) (*zap.Logger, error) {
	return logger.NewLogger(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		Production: cfg.Log.Production,
	})
}

// migrate 执行表结构迁移与升级脚本
func migrate(ctx context.Context, a *internalApp.App) (int, error) {
	if err := a.Dao.AutoMigrate(); err != nil {
		return 0, fmt.Errorf("auto migrate: %w", err)
	}
	return upgrade.NewMigrationManager(a.DB, a.Logger(), internalApp.Version, lastVersionFile).Run(ctx)
}

// commandEnv 命令行子命令使用的应用容器
type commandEnv struct {
	config *internalApp.AppConfig
	logger *zap.Logger
	app    *internalApp.App
}

// openCommandEnv 加载配置并创建应用容器，完成迁移与系统菜单初始化
// 子命令不会自动创建配置文件
func openCommandEnv(ctx context.Context, configPath string) (*commandEnv, error) {
	found := findConfig(configPath)
	if found == "" {
		return nil, code.ErrorConfig.WithDetails("config file not found, use -c to specify one")
	}

	cfg, _, err := internalApp.LoadConfig(found)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	// 子命令只输出警告以上的日志
	cfg.Log.Level = "warn"

	lg, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0754); err != nil {
		return nil, err
	}
	db, err := dao.NewDBEngineWithConfig(cfg.DaoConfig())
	if err != nil {
		return nil, fmt.Errorf("initDatabase: %w", err)
	}

	a, err := internalApp.NewApp(cfg, lg, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}
	if _, err := migrate(ctx, a); err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := a.MenuService.EnsureSystemMenus(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return &commandEnv{config: cfg, logger: lg, app: a}, nil
}

// Close 关闭应用容器
func (e *commandEnv) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := e.app.Shutdown(ctx); err != nil {
		e.logger.Error("failed to shutdown app container", zap.Error(err))
	}
	if err := e.app.Close(); err != nil {
		e.logger.Error("failed to close database", zap.Error(err))
	}
	_ = e.logger.Sync()
}

func init() {
	var configPath string

	configCommand := &cobra.Command{
		Use:   "config [-c config_file]",
		Short: "Print the effective configuration // 打印生效的配置",
		RunE: func(cmd *cobra.Command, args []string) error {
			found := findConfig(configPath)
			var (
				cfg *internalApp.AppConfig
				err error
			)
			if found == "" {
				cfg, err = internalApp.DefaultConfig()
			} else {
				cfg, _, err = internalApp.LoadConfig(found)
			}
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			if found != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "# %s\n", found)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	rootCmd.AddCommand(configCommand)
	configCommand.Flags().StringVarP(&configPath, "config", "c", "", "config file")
}
