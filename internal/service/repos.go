package service

import (
	"code4u_backend/internal/model"
	"context"
	"time"
)

// 服务层依赖的存储接口，由 repository 包中的 gorm 实现提供

type UserRepo interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Updates(ctx context.Context, id string, fields map[string]interface{}) error
	UpdateLastSeen(ctx context.Context, id string) error
	// RecordLevelCompletion 在一个事务内写入扁平完成记录；首次完成时累加积分、等级并写动态
	RecordLevelCompletion(ctx context.Context, userID, levelID string, points int, activity *model.UserActivity) (bool, error)
	CompletedLevels(ctx context.Context, userID string) ([]string, error)
	UsersWithCompletedLevels(ctx context.Context) ([]string, error)
	FindTopByPoints(ctx context.Context, limit int) ([]model.User, error)
	List(ctx context.Context, page, limit int, filter UserFilter) ([]model.User, int64, error)
}

type JourneyRepo interface {
	List(ctx context.Context) ([]model.Journey, error)
	FindByID(ctx context.Context, id string) (*model.Journey, error)
	Save(ctx context.Context, journey *model.Journey) error
	Delete(ctx context.Context, id string) error
}

type LevelRepo interface {
	FindByID(ctx context.Context, id string) (*model.Level, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Level, error)
	List(ctx context.Context, category string) ([]model.Level, error)
	Save(ctx context.Context, level *model.Level) error
	Delete(ctx context.Context, id string) error
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
	CreateInBatches(ctx context.Context, levels []model.Level, batchSize int) error
}

// JourneySyncPatch 一个旅程需要补写的内容
type JourneySyncPatch struct {
	JourneyID string
	Start     bool
	LevelIDs  []string
}

type ProgressRepo interface {
	// ListByUser 返回用户全部旅程进度，CompletedLevels 已填充
	ListByUser(ctx context.Context, userID string) ([]model.JourneyProgress, error)
	Find(ctx context.Context, userID, journeyID string) (*model.JourneyProgress, error)
	// Start 不存在则创建；已有 startedAt 时保留
	Start(ctx context.Context, userID, journeyID string, now time.Time) (bool, error)
	AddLevels(ctx context.Context, userID, journeyID string, levelIDs []string, now time.Time) error
	ApplySync(ctx context.Context, userID string, patches []JourneySyncPatch, now time.Time) error
	// MarkCompleted 仅当尚未完成时生效
	MarkCompleted(ctx context.Context, userID, journeyID string, now time.Time) (bool, error)
	// Import 合并一条外部进度记录：不覆盖已有时间戳，完成状态只前进，关卡取并集
	Import(ctx context.Context, progress model.JourneyProgress) error
}

type BadgeRepo interface {
	List(ctx context.Context) ([]model.Badge, error)
	FindByID(ctx context.Context, id string) (*model.Badge, error)
	Save(ctx context.Context, badge *model.Badge) error
	Delete(ctx context.Context, id string) error
	UserBadgeIDs(ctx context.Context, userID string) ([]string, error)
	// Award 同一事务内插入徽章与动态，已持有时返回 false
	Award(ctx context.Context, userID, badgeID string, activity *model.UserActivity) (bool, error)
}

type ActivityRepo interface {
	Create(ctx context.Context, activity *model.UserActivity) error
	Recent(ctx context.Context, limit int) ([]model.UserActivity, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]model.UserActivity, error)
}

type LegalRepo interface {
	FindByID(ctx context.Context, id string) (*model.LegalDocument, error)
	Save(ctx context.Context, doc *model.LegalDocument) error
}

type FeedbackRepo interface {
	Create(ctx context.Context, feedback *model.Feedback) error
	FindByID(ctx context.Context, id uint) (*model.Feedback, error)
	List(ctx context.Context, page, limit int) ([]model.Feedback, int64, error)
}

type LearningPathRepo interface {
	ListPaths(ctx context.Context) ([]model.LearningPath, error)
	ListPathProgress(ctx context.Context) ([]model.PathProgress, error)
}
