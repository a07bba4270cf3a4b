package service

import (
	"context"
	"errors"
	"sync"

	"github.com/haierkeys/menu-tree-service/pkg/code"
	"github.com/haierkeys/menu-tree-service/pkg/writequeue"

	"gorm.io/gorm"
)

// Transactor 在一个数据库事务中执行 fn，fn 内的仓储调用必须使用传入的 ctx
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Guard 串行化写操作
//
// 普通写操作按菜单进入写队列并共享重建闸门；重建独占闸门。
// 读操作不经过 Guard。
type Guard struct {
	queue *writequeue.Manager
	tx    Transactor
	gate  sync.RWMutex
}

// NewGuard 创建 Guard
func NewGuard(queue *writequeue.Manager, tx Transactor) *Guard {
	return &Guard{queue: queue, tx: tx}
}

// Structural 持有 menus 的写者并在事务中执行 fn
func (g *Guard) Structural(ctx context.Context, menus []string, fn func(ctx context.Context) error) error {
	g.gate.RLock()
	defer g.gate.RUnlock()

	err := g.queue.ExecuteMany(ctx, menus, func() error {
		return g.tx.Transaction(ctx, fn)
	})
	return queueError(err)
}

// Exclusive 等待所有写操作结束后在事务中执行 fn
func (g *Guard) Exclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	g.gate.Lock()
	defer g.gate.Unlock()

	return g.tx.Transaction(ctx, fn)
}

func queueError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, writequeue.ErrWriteQueueFull):
		return code.ErrorWriteQueueFull
	case errors.Is(err, writequeue.ErrWriteTimeout):
		return code.ErrorWriteTimeout
	case errors.Is(err, writequeue.ErrWriteQueueClosed):
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	return err
}

// dbError 业务错误原样返回，其余错误转换为 ErrorDBQuery
func dbError(err error) error {
	if err == nil {
		return nil
	}
	var c *code.Code
	if errors.As(err, &c) {
		return err
	}
	return code.ErrorDBQuery.WithDetails(err.Error())
}

// notFound 将 gorm.ErrRecordNotFound 转换为 notFoundCode
func notFound(err error, notFoundCode *code.Code, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundCode.WithDetails(id)
	}
	return dbError(err)
}

// errRetry 写者持有的菜单与链接当前所在菜单不一致，需要重新获取
var errRetry = errors.New("link moved to another menu while waiting")

const maxRetries = 3

// withRetry 在 errRetry 时重新执行 fn
func withRetry(fn func() error) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = fn(); !errors.Is(err, errRetry) {
			return err
		}
	}
	return code.ErrorWriteTimeout.WithDetails(err.Error())
}
