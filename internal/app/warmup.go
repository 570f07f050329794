package app

import (
	"code4u_backend/pkg/logger"
	"context"
	"time"

	"go.uber.org/zap"
)

const warmUpBaseDelay = time.Second

// retryWithBackoff 失败后按指数退避重试，直到成功、次数用尽或 ctx 结束
func retryWithBackoff(ctx context.Context, attempts int, base time.Duration, fn func(context.Context) error) error {
	if attempts <= 0 {
		attempts = 1
	}
	delay := base
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		logger.Log.Warn("Startup warm-up attempt failed",
			zap.Int("attempt", i), zap.Int("attempts", attempts), zap.Error(err))
		if i == attempts {
			break
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return err
}

// warmUpAndOpen 预热成功后打开就绪门，重试耗尽则降级打开并记录错误
func (a *App) warmUpAndOpen(ctx context.Context, base time.Duration, warm func(context.Context) error) {
	err := retryWithBackoff(ctx, a.Config.Server.WarmUpAttempts, base, warm)
	if err == nil {
		a.Ready.Open()
		return
	}
	if ctx.Err() != nil {
		return
	}
	logger.Log.Error("Startup warm-up failed, serving in degraded mode", zap.Error(err))
	a.Ready.OpenDegraded(err)
}
