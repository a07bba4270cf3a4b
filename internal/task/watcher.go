package task

import (
	"context"
	"os"
	"regexp"
	"time"

	pkglogger "github.com/haierkeys/menu-tree-service/pkg/logger"

	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"go.uber.org/zap"
)

// declarationFilePattern 模块链接声明文件名
var declarationFilePattern = regexp.MustCompile(`\.links\.menu\.ya?ml$`)

// DeclarationWatcher 监听声明目录，文件变化时回调
type DeclarationWatcher struct {
	dir      string
	interval time.Duration
	logger   *zap.Logger
	onChange func(ctx context.Context, path string)
	w        *watcher.Watcher
}

// NewDeclarationWatcher 创建声明目录监听器
func NewDeclarationWatcher(dir string, interval time.Duration, logger *zap.Logger, onChange func(ctx context.Context, path string)) *DeclarationWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &DeclarationWatcher{
		dir:      dir,
		interval: interval,
		logger:   logger,
		onChange: onChange,
	}
}

// Start 开始监听，ctx 结束时自动关闭
func (d *DeclarationWatcher) Start(ctx context.Context) error {
	if _, err := os.Stat(d.dir); err != nil {
		return errors.Wrapf(err, "declarations dir %s", d.dir)
	}

	w := watcher.New()
	// 一个轮询周期内的多次变化只触发一次
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Create, watcher.Write, watcher.Remove, watcher.Rename, watcher.Move)
	w.AddFilterHook(watcher.RegexFilterHook(declarationFilePattern, false))

	if err := w.Add(d.dir); err != nil {
		return errors.Wrapf(err, "watch declarations dir %s", d.dir)
	}
	d.w = w

	go func() {
		for {
			select {
			case event := <-w.Event:
				d.logger.Info("declaration changed", zap.String("op", event.Op.String()), zap.String(pkglogger.FieldPath, event.Path))
				d.onChange(ctx, event.Path)
			case err := <-w.Error:
				d.logger.Error("declaration watcher error", zap.Error(err))
			case <-w.Closed:
				return
			case <-ctx.Done():
				w.Close()
				return
			}
		}
	}()

	go func() {
		if err := w.Start(d.interval); err != nil {
			d.logger.Error("declaration watcher start failed", zap.Error(err))
		}
	}()

	d.logger.Info("declaration watcher started", zap.String("dir", d.dir), zap.Duration("interval", d.interval))
	return nil
}

// Stop 停止监听
func (d *DeclarationWatcher) Stop() {
	if d.w != nil {
		d.w.Close()
	}
}
