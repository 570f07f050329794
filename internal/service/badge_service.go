package service

import (
	"code4u_backend/internal/model"
	"code4u_backend/internal/util"
	"code4u_backend/pkg/logger"
	"code4u_backend/pkg/monitoring"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 关卡序号上限，1-5 HTML，6-10 CSS，11-15 JavaScript
const maxLevelNumber = 15

// 完成特定关卡即获得的徽章
var levelBadges = map[int]string{
	1:  "html-basics",
	6:  "css-basics",
	11: "js-basics",
}

type masteryRule struct {
	BadgeID  string
	From, To int
}

var masteryRules = []masteryRule{
	{BadgeID: "html-master", From: 1, To: 5},
	{BadgeID: "css-master", From: 6, To: 10},
	{BadgeID: "js-master", From: 11, To: 15},
	{BadgeID: "web-developer", From: 1, To: maxLevelNumber},
}

var categoryRanges = []struct {
	Category string
	From, To int
}{
	{model.CategoryHTML, 1, 5},
	{model.CategoryCSS, 6, 10},
	{model.CategoryJavaScript, 11, 15},
}

// CategoryProgress 单个分类的完成情况
type CategoryProgress struct {
	Category   string `json:"category"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

type BadgeService struct {
	Badges BadgeRepo
	Users  UserRepo
}

func NewBadgeService(badges BadgeRepo, users UserRepo) *BadgeService {
	return &BadgeService{Badges: badges, Users: users}
}

// levelNumber 解析 "level-N"，其他格式的关卡 ID 不参与序号规则
func levelNumber(levelID string) (int, bool) {
	rest, ok := strings.CutPrefix(levelID, "level-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func levelID(n int) string {
	return fmt.Sprintf("level-%d", n)
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// EligibleBadges 计算尚未持有但已满足条件的徽章，顺序稳定
func EligibleBadges(completed, held []string, catalog []model.Badge) []string {
	done := toSet(completed)
	have := toSet(held)
	var result []string

	add := func(id string) {
		if id == "" || have[id] {
			return
		}
		have[id] = true
		result = append(result, id)
	}

	for n := 1; n <= maxLevelNumber; n++ {
		if badge, ok := levelBadges[n]; ok && done[levelID(n)] {
			add(badge)
		}
	}

	for _, rule := range masteryRules {
		all := true
		for n := rule.From; n <= rule.To; n++ {
			if !done[levelID(n)] {
				all = false
				break
			}
		}
		if all {
			add(rule.BadgeID)
		}
	}

	// 徽章要求可以引用其他徽章，迭代到不再变化
	for changed := true; changed; {
		changed = false
		for _, b := range catalog {
			if have[b.ID] || len(b.Requirements) == 0 {
				continue
			}
			satisfied := true
			for _, req := range b.Requirements {
				if !done[req] && !have[req] {
					satisfied = false
					break
				}
			}
			if satisfied {
				add(b.ID)
				changed = true
			}
		}
	}

	return result
}

// CalculateCategoryProgress 按分类统计 1-15 号关卡的完成百分比
func CalculateCategoryProgress(completed []string) []CategoryProgress {
	done := make(map[int]bool)
	for _, id := range completed {
		if n, ok := levelNumber(id); ok {
			done[n] = true
		}
	}

	result := make([]CategoryProgress, 0, len(categoryRanges))
	for _, r := range categoryRanges {
		total := r.To - r.From + 1
		count := 0
		for n := r.From; n <= r.To; n++ {
			if done[n] {
				count++
			}
		}
		result = append(result, CategoryProgress{
			Category:   r.Category,
			Completed:  count,
			Total:      total,
			Percentage: util.Percent(count, total),
		})
	}
	return result
}

// AwardBadge 幂等授予；返回是否为新获得
func (s *BadgeService) AwardBadge(ctx context.Context, userID, badgeID string) (bool, error) {
	if userID == "" || badgeID == "" {
		return false, nil
	}

	details := map[string]interface{}{"badgeId": badgeID}
	if badge, err := s.Badges.FindByID(ctx, badgeID); err == nil {
		details["badgeName"] = badge.Name
		details["icon"] = badge.Icon
	}

	awarded, err := s.Badges.Award(ctx, userID, badgeID, model.NewActivity(userID, model.ActivityBadgeEarned, details))
	if err != nil {
		return false, fmt.Errorf("award badge %s: %w", badgeID, err)
	}
	if awarded {
		monitoring.BadgesAwarded.WithLabelValues(badgeID).Inc()
		logger.Log.Info("Badge awarded", zap.String("user_id", userID), zap.String("badge_id", badgeID))
	}
	return awarded, nil
}

// CheckForBadges 根据当前完成情况授予所有新满足的徽章
func (s *BadgeService) CheckForBadges(ctx context.Context, userID string) ([]string, error) {
	completed, err := s.Users.CompletedLevels(ctx, userID)
	if err != nil {
		return nil, err
	}
	held, err := s.Badges.UserBadgeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.Badges.List(ctx)
	if err != nil {
		// 目录不可用时仍按内置规则授予
		logger.Log.Warn("Failed to load badge catalog", zap.Error(err))
		catalog = nil
	}

	awarded := []string{}
	for _, id := range EligibleBadges(completed, held, catalog) {
		ok, err := s.AwardBadge(ctx, userID, id)
		if err != nil {
			return awarded, err
		}
		if ok {
			awarded = append(awarded, id)
		}
	}
	return awarded, nil
}

func (s *BadgeService) ListBadges(ctx context.Context) ([]model.Badge, error) {
	return s.Badges.List(ctx)
}

// UserBadges 用户已获得的徽章详情，目录中不存在的徽章只返回 ID
func (s *BadgeService) UserBadges(ctx context.Context, userID string) ([]model.Badge, error) {
	ids, err := s.Badges.UserBadgeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges := make([]model.Badge, 0, len(ids))
	for _, id := range ids {
		b, err := s.Badges.FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			badges = append(badges, model.Badge{ID: id, Name: id})
			continue
		}
		if err != nil {
			return nil, err
		}
		badges = append(badges, *b)
	}
	return badges, nil
}

func (s *BadgeService) SaveBadge(ctx context.Context, badge *model.Badge) error {
	return s.Badges.Save(ctx, badge)
}

func (s *BadgeService) DeleteBadge(ctx context.Context, id string) error {
	err := s.Badges.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrBadgeNotFound
	}
	return err
}
