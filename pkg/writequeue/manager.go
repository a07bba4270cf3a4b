// Package writequeue provides a per-key single-writer queue.
// Package writequeue 提供按键串行化的单写者队列
// Writes submitted under the same key run one at a time in FIFO order.
// 同一个键下提交的写操作按 FIFO 顺序逐个执行
package writequeue

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Error definitions
// 错误定义
var (
	// ErrWriteQueueFull returned when the queue of a key is full
	// ErrWriteQueueFull 当键对应的写队列已满时返回
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed returned when write queue manager is closed
	// ErrWriteQueueClosed 当写队列管理器已关闭时返回
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout returned when the operation did not start before the timeout
	// ErrWriteTimeout 当写操作在超时前未开始执行时返回
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config write queue configuration
// Config 写队列配置
type Config struct {
	// QueueCapacity per-key queue capacity, default 100
	// QueueCapacity 每个键的队列容量，默认 100
	QueueCapacity int
	// WriteTimeout how long an operation may wait before it starts, default 30 seconds
	// WriteTimeout 写操作开始前的最长等待时间，默认 30 秒
	WriteTimeout time.Duration
	// IdleTimeout idle cleanup timeout, default 10 minutes
	// IdleTimeout 空闲清理超时时间，默认 10 分钟
	IdleTimeout time.Duration
}

// DefaultConfig returns default configuration
// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

// op states
const (
	opQueued int32 = iota
	opRunning
	opAbandoned
)

type writeOp struct {
	ctx    context.Context
	fn     func() error
	state  *atomic.Int32
	result chan error
}

// keyQueue write queue of a single key
// keyQueue 单个键的写队列
type keyQueue struct {
	key      string
	ch       chan writeOp
	lastUsed atomic.Int64
	closed   atomic.Bool
	workerWg sync.WaitGroup
	stopCh   chan struct{}
}

// Manager manages write queues for all keys
// Manager 管理所有键的写队列
type Manager struct {
	config Config
	logger *zap.Logger

	queues sync.Map // map[string]*keyQueue

	ctx    context.Context
	cancel context.CancelFunc

	// mu guards closed and orders queue submission against idle cleanup
	// mu 保护 closed，并使提交与空闲清理互斥
	mu     sync.RWMutex
	closed bool

	cleanupWg   sync.WaitGroup
	cleanupDone chan struct{}
}

// New creates write queue manager
// New 创建写队列管理器
// cfg: configuration, if nil use default configuration
// cfg: 配置，如果为 nil 则使用默认配置
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.QueueCapacity > 0 {
			c.QueueCapacity = cfg.QueueCapacity
		}
		if cfg.WriteTimeout > 0 {
			c.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.IdleTimeout > 0 {
			c.IdleTimeout = cfg.IdleTimeout
		}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		config:      c,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		cleanupDone: make(chan struct{}),
	}

	m.cleanupWg.Add(1)
	go m.cleanupIdleQueues()

	m.logger.Info("write queue manager started",
		zap.Int("queueCapacity", c.QueueCapacity),
		zap.Duration("writeTimeout", c.WriteTimeout),
		zap.Duration("idleTimeout", c.IdleTimeout))

	return m
}

// Execute runs fn on the single writer of key and returns its error.
// Execute 在 key 对应的单写者上执行 fn 并返回其错误
// An operation that has started is always waited for, so a returned
// ErrWriteTimeout or context error means fn never ran.
// 已开始的操作总会等待其完成，因此返回超时或 context 错误时 fn 一定未执行
func (m *Manager) Execute(ctx context.Context, key string, fn func() error) error {
	op := writeOp{
		ctx:    ctx,
		fn:     fn,
		state:  new(atomic.Int32),
		result: make(chan error, 1),
	}

	if err := m.submit(key, op); err != nil {
		return err
	}

	timeout := m.config.WriteTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var abortErr error
	select {
	case err := <-op.result:
		return err
	case <-ctx.Done():
		abortErr = ctx.Err()
	case <-timer.C:
		abortErr = ErrWriteTimeout
	case <-m.ctx.Done():
		abortErr = ErrWriteQueueClosed
	}

	if op.state.CompareAndSwap(opQueued, opAbandoned) {
		return abortErr
	}
	// already running: the write must be reported as it actually ended
	// 已经开始执行：按实际结果返回
	return <-op.result
}

// ExecuteMany runs fn while holding the writers of every key.
// ExecuteMany 在持有所有键的写者期间执行 fn
// Keys are acquired in sorted order so overlapping calls cannot deadlock.
// 按排序后的顺序获取各键，重叠调用不会死锁
func (m *Manager) ExecuteMany(ctx context.Context, keys []string, fn func() error) error {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var run func(i int) error
	run = func(i int) error {
		if i == len(sorted) {
			return fn()
		}
		return m.Execute(ctx, sorted[i], func() error { return run(i + 1) })
	}
	return run(0)
}

func (m *Manager) submit(key string, op writeOp) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrWriteQueueClosed
	}

	queue := m.getOrCreateQueue(key)

	select {
	case queue.ch <- op:
		return nil
	default:
		return ErrWriteQueueFull
	}
}

// getOrCreateQueue gets or creates the queue of key (lazy loading); callers hold m.mu.RLock
// getOrCreateQueue 获取或创建键的写队列（懒加载），调用方需持有 m.mu 读锁
func (m *Manager) getOrCreateQueue(key string) *keyQueue {
	if v, ok := m.queues.Load(key); ok {
		queue := v.(*keyQueue)
		queue.lastUsed.Store(time.Now().UnixNano())
		return queue
	}

	queue := &keyQueue{
		key:    key,
		ch:     make(chan writeOp, m.config.QueueCapacity),
		stopCh: make(chan struct{}),
	}
	queue.lastUsed.Store(time.Now().UnixNano())

	actual, loaded := m.queues.LoadOrStore(key, queue)
	if loaded {
		existing := actual.(*keyQueue)
		existing.lastUsed.Store(time.Now().UnixNano())
		return existing
	}

	queue.workerWg.Add(1)
	go m.worker(queue)

	m.logger.Debug("created write queue",
		zap.String("key", key),
		zap.Int("capacity", m.config.QueueCapacity))

	return queue
}

func (m *Manager) worker(queue *keyQueue) {
	defer queue.workerWg.Done()
	defer func() {
		queue.closed.Store(true)
		m.logger.Debug("write queue worker stopped", zap.String("key", queue.key))
	}()

	for {
		select {
		case <-m.ctx.Done():
			m.drainQueue(queue)
			return
		case <-queue.stopCh:
			m.drainQueue(queue)
			return
		case op := <-queue.ch:
			m.executeOp(queue, op)
		}
	}
}

func (m *Manager) executeOp(queue *keyQueue, op writeOp) {
	queue.lastUsed.Store(time.Now().UnixNano())

	if !op.state.CompareAndSwap(opQueued, opRunning) {
		return
	}

	if err := op.ctx.Err(); err != nil {
		op.result <- err
		return
	}

	op.result <- op.fn()
}

func (m *Manager) drainQueue(queue *keyQueue) {
	for {
		select {
		case op := <-queue.ch:
			m.executeOp(queue, op)
		default:
			return
		}
	}
}

// cleanupIdleQueues regularly cleans up idle queues
// cleanupIdleQueues 定期清理空闲队列
func (m *Manager) cleanupIdleQueues() {
	defer m.cleanupWg.Done()

	ticker := time.NewTicker(m.config.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.cleanupDone:
			return
		case <-ticker.C:
			m.doCleanup()
		}
	}
}

func (m *Manager) doCleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	now := time.Now().UnixNano()
	idleThreshold := m.config.IdleTimeout.Nanoseconds()

	m.queues.Range(func(key, value interface{}) bool {
		queue := value.(*keyQueue)
		lastUsed := queue.lastUsed.Load()
		if now-lastUsed > idleThreshold && len(queue.ch) == 0 {
			m.logger.Debug("cleaning up idle write queue",
				zap.String("key", queue.key),
				zap.Duration("idleTime", time.Duration(now-lastUsed)))
			close(queue.stopCh)
			m.queues.Delete(key)
		}
		return true
	})
}

// Shutdown closes write queue manager and waits for queued operations
// Shutdown 关闭写队列管理器，等待已排队的操作完成
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.logger.Info("write queue manager shutting down")
	close(m.cleanupDone)

	done := make(chan struct{})
	go func() {
		m.queues.Range(func(key, value interface{}) bool {
			close(value.(*keyQueue).stopCh)
			return true
		})
		m.queues.Range(func(key, value interface{}) bool {
			value.(*keyQueue).workerWg.Wait()
			return true
		})
		m.cleanupWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("write queue manager shutdown completed")
		m.cancel()
		return nil
	case <-ctx.Done():
		m.logger.Warn("write queue manager shutdown timeout, forcing cancellation")
		m.cancel()
		return ctx.Err()
	}
}

// QueueCount returns current active queue count
// QueueCount 返回当前活跃队列数量
func (m *Manager) QueueCount() int {
	count := 0
	m.queues.Range(func(key, value interface{}) bool {
		if !value.(*keyQueue).closed.Load() {
			count++
		}
		return true
	})
	return count
}

// QueuedCount returns number of operations waiting under key
// QueuedCount 返回指定键队列中等待的操作数
func (m *Manager) QueuedCount(key string) int {
	if v, ok := m.queues.Load(key); ok {
		return len(v.(*keyQueue).ch)
	}
	return 0
}

// IsClosed returns if manager is closed
// IsClosed 返回管理器是否已关闭
func (m *Manager) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Metrics write queue manager metrics
// Metrics 写队列管理器指标
type Metrics struct {
	QueueCapacity int
	ActiveQueues  int
	IsClosed      bool
}

// GetMetrics gets current metrics
// GetMetrics 获取当前指标
func (m *Manager) GetMetrics() Metrics {
	return Metrics{
		QueueCapacity: m.config.QueueCapacity,
		ActiveQueues:  m.QueueCount(),
		IsClosed:      m.IsClosed(),
	}
}
