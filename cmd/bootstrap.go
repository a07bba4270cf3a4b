package cmd

import (
	"os"

	"github.com/haierkeys/menu-tree-service/pkg/logger"

	"go.uber.org/zap"
)

// bootstrapLogger 启动阶段日志器
// 在读取配置、创建主日志器之前使用，只输出到控制台
var bootstrapLogger *zap.Logger

func init() {
	level := "info"
	if os.Getenv("DEBUG") != "" {
		level = "debug"
	}

	lg, err := logger.NewLogger(logger.Config{Level: level})
	if err != nil {
		lg = zap.NewNop()
	}
	bootstrapLogger = lg
}

// BootstrapLogger 获取启动阶段日志器
func BootstrapLogger() *zap.Logger {
	return bootstrapLogger
}
