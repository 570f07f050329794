package scheduler

import (
	"code4u_backend/pkg/logger"
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// 单次全量同步的超时时间
const syncTimeout = 30 * time.Minute

// ProgressSyncer 为所有用户对账旅程进度
type ProgressSyncer interface {
	SyncAllUsers(ctx context.Context) (int, error)
}

// Scheduler 定时任务
type Scheduler struct {
	scheduler *gocron.Scheduler
	syncer    ProgressSyncer
}

func New(syncer ProgressSyncer) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		syncer:    syncer,
	}
}

// Start 每天 syncTime（HH:MM，UTC）执行一次全量同步
func (s *Scheduler) Start(syncTime string) error {
	if _, err := s.scheduler.Every(1).Day().At(syncTime).Do(s.syncProgress); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	logger.Log.Info("Scheduler started", zap.String("sync_time", syncTime))
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) syncProgress() {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	start := time.Now()
	updated, err := s.syncer.SyncAllUsers(ctx)
	if err != nil {
		logger.Log.Error("Scheduled progress sync failed", zap.Int("updated", updated), zap.Error(err))
		return
	}
	logger.Log.Info("Scheduled progress sync finished",
		zap.Int("updated", updated),
		zap.Duration("elapsed", time.Since(start)))
}
