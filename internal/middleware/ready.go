package middleware

import (
	"code4u_backend/internal/util"
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadyGate 启动初始化完成后打开，请求在打开前最多等待 timeout
type ReadyGate struct {
	ch      chan struct{}
	once    sync.Once
	timeout time.Duration

	mu       sync.RWMutex
	degraded error
}

// NewReadyGate timeout <= 0 时仅受请求 ctx 约束
func NewReadyGate(timeout time.Duration) *ReadyGate {
	return &ReadyGate{ch: make(chan struct{}), timeout: timeout}
}

// Open 可重复调用
func (g *ReadyGate) Open() {
	g.once.Do(func() { close(g.ch) })
}

// OpenDegraded 初始化失败时仍然放行请求，并记录失败原因
func (g *ReadyGate) OpenDegraded(cause error) {
	g.mu.Lock()
	g.degraded = cause
	g.mu.Unlock()
	g.Open()
}

// Degraded 返回降级打开的原因，正常打开或未打开时为 nil
func (g *ReadyGate) Degraded() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.degraded
}

func (g *ReadyGate) Done() <-chan struct{} {
	return g.ch
}

// Wait 等待就绪或 ctx 结束
func (g *ReadyGate) Wait(ctx context.Context) error {
	select {
	case <-g.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *ReadyGate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if g.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}
		if err := g.Wait(ctx); err != nil {
			util.ServiceUnavailable(c, util.ErrNotReady.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}
