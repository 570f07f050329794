package service

import (
	"code4u_backend/internal/config"
	"code4u_backend/internal/model"
	"code4u_backend/internal/util"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"gorm.io/gorm"
)

// UserFilter 定义用户筛选条件
// swagger:model UserFilter
type UserFilter struct {
	Role   string
	Status string
	Search string
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	Points      int    `json:"points"`
	Level       int    `json:"level"`
}

// 排行榜单次最多返回条数
const maxLeaderboardLimit = 100

// UserService 处理用户资料、排行榜与管理操作
type UserService struct {
	UserRepo   UserRepo
	Activities ActivityRepo
	Storage    *StorageService

	leaderboard atomic.Value // config.LeaderboardConfig
}

func NewUserService(userRepo UserRepo, activities ActivityRepo, storage *StorageService, cfg config.LeaderboardConfig) *UserService {
	s := &UserService{
		UserRepo:   userRepo,
		Activities: activities,
		Storage:    storage,
	}
	s.ApplyLeaderboardConfig(cfg)
	return s
}

// ApplyLeaderboardConfig 配置热更新时调用
func (s *UserService) ApplyLeaderboardConfig(cfg config.LeaderboardConfig) {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	s.leaderboard.Store(cfg)
}

func (s *UserService) leaderboardConfig() config.LeaderboardConfig {
	cfg, _ := s.leaderboard.Load().(config.LeaderboardConfig)
	return cfg
}

// LeaderboardPublic 排行榜和动态是否允许匿名访问
func (s *UserService) LeaderboardPublic() bool {
	return s.leaderboardConfig().Public
}

// ResolveLimit 解析 limit 参数，默认取配置值，上限 100
func (s *UserService) ResolveLimit(raw string) int {
	return util.ParseLimit(raw, s.leaderboardConfig().DefaultLimit, maxLeaderboardLimit)
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

func (s *UserService) UpdateProfile(ctx context.Context, userID, displayName string) (*model.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName != "" {
		err := s.UserRepo.Updates(ctx, userID, map[string]interface{}{"display_name": displayName})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		if err != nil {
			return nil, err
		}
	}
	return s.GetUserByID(ctx, userID)
}

// UploadProfilePicture 上传头像并更新 photoURL
func (s *UserService) UploadProfilePicture(ctx context.Context, userID string, reader io.Reader, size int64) (*model.User, error) {
	url, err := s.Storage.UploadProfilePicture(ctx, userID, reader, size)
	if err != nil {
		return nil, err
	}
	if err := s.UserRepo.Updates(ctx, userID, map[string]interface{}{"photo_url": url}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUserByID(ctx, userID)
}

// DeleteProfilePicture 删除头像；对象不存在或无权限时继续清空资料
func (s *UserService) DeleteProfilePicture(ctx context.Context, userID string) (*model.User, error) {
	if err := s.Storage.DeleteProfilePicture(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.UserRepo.Updates(ctx, userID, map[string]interface{}{"photo_url": ""}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUserByID(ctx, userID)
}

func (s *UserService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = s.leaderboardConfig().DefaultLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	users, err := s.UserRepo.FindTopByPoints(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, LeaderboardEntry{
			Rank:        i + 1,
			UserID:      u.ID,
			DisplayName: u.DisplayName,
			PhotoURL:    u.PhotoURL,
			Points:      u.Points,
			Level:       u.Level,
		})
	}
	return entries, nil
}

func (s *UserService) RecentActivities(ctx context.Context, limit int) ([]model.UserActivity, error) {
	return s.Activities.Recent(ctx, limit)
}

func (s *UserService) UserActivities(ctx context.Context, userID string, limit int) ([]model.UserActivity, error) {
	return s.Activities.ListByUser(ctx, userID, limit)
}

// GetUsers 获取用户列表，支持分页和筛选
func (s *UserService) GetUsers(ctx context.Context, page, pageSize int, filter UserFilter) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxLeaderboardLimit {
		pageSize = 20
	}
	return s.UserRepo.List(ctx, page, pageSize, filter)
}

func (s *UserService) SetRole(ctx context.Context, userID string, role model.UserRole) error {
	switch role {
	case model.RoleUser, model.RoleCreator, model.RoleAdmin:
	default:
		return fmt.Errorf("%w: %s", util.ErrInvalidRole, role)
	}
	err := s.UserRepo.Updates(ctx, userID, map[string]interface{}{"role": role})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrUserNotFound
	}
	return err
}

func (s *UserService) DisableUser(ctx context.Context, userID string, disable bool) error {
	err := s.UserRepo.Updates(ctx, userID, map[string]interface{}{"disabled": disable})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrUserNotFound
	}
	return err
}

// UpdateLastSeen 供活跃度中间件使用
func (s *UserService) UpdateLastSeen(ctx context.Context, userID string) error {
	return s.UserRepo.UpdateLastSeen(ctx, userID)
}
