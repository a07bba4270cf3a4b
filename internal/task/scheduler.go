package task

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	Spec() string                  // cron 表达式，为空时不定时执行
	IsStartupRun() bool            // 是否立即执行一次
}

// Scheduler 任务调度器，定时执行基于 robfig/cron
type Scheduler struct {
	logger *zap.Logger
	cron   *cron.Cron
	tasks  []Task

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger: logger,
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		tasks:  make([]Task, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddTask 添加任务，cron 表达式无效时返回错误
func (s *Scheduler) AddTask(task Task) error {
	if spec := task.Spec(); spec != "" {
		if _, err := s.cron.AddFunc(spec, func() { s.run(task, "cronRun") }); err != nil {
			return errors.Wrapf(err, "task %s: invalid cron spec %q", task.Name(), spec)
		}
	}
	s.tasks = append(s.tasks, task)
	return nil
}

// Start 启动所有任务
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	s.logger.Info("tasks starting ", zap.Int("count", len(s.tasks)))

	for _, task := range s.tasks {
		if task.IsStartupRun() {
			task := task
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.run(task, "startupRun")
			}()
		}
	}
	s.cron.Start()
}

// Stop 停止定时执行，取消正在执行的任务并等待其退出
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("tasks stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run 执行单个任务，panic 被记录而不向外传播
func (s *Scheduler) run(task Task, mode string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("name", task.Name()),
				zap.String("mode", mode),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()

	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	s.logger.Info("task running", zap.String("name", task.Name()), zap.String("mode", mode))
	if err := task.Run(ctx); err != nil {
		s.logger.Error("task running error",
			zap.String("name", task.Name()),
			zap.String("mode", mode),
			zap.Error(err))
	}
}

// cronLogger 将 cron 日志写入 zap
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
