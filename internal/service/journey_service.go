package service

import (
	"code4u_backend/internal/model"
	"code4u_backend/internal/util"
	"code4u_backend/pkg/logger"
	"code4u_backend/pkg/monitoring"
	"code4u_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 加载旅程失败时返回给用户的提示
const journeysLoadError = "Failed to load journeys"

// PrerequisiteError 前置旅程未完成
type PrerequisiteError struct {
	Titles []string
}

func (e *PrerequisiteError) Error() string {
	return "You need to complete these journeys first: " + strings.Join(e.Titles, ", ")
}

// JourneyDetails 旅程及其关卡（按 number 排序）
type JourneyDetails struct {
	Journey model.Journey `json:"journey"`
	Levels  []model.Level `json:"levels"`
}

type JourneyService struct {
	Journeys   JourneyRepo
	Levels     LevelRepo
	Progress   ProgressRepo
	Users      UserRepo
	Activities ActivityRepo
	Badges     *BadgeService

	mu     sync.RWMutex
	cache  []model.Journey
	loaded bool

	now func() time.Time
}

func NewJourneyService(journeys JourneyRepo, levels LevelRepo, progress ProgressRepo, users UserRepo, activities ActivityRepo, badges *BadgeService) *JourneyService {
	return &JourneyService{
		Journeys:   journeys,
		Levels:     levels,
		Progress:   progress,
		Users:      users,
		Activities: activities,
		Badges:     badges,
		now:        time.Now,
	}
}

// FetchAllJourneys 按 order 返回全部旅程；失败时返回空列表和错误提示
func (s *JourneyService) FetchAllJourneys(ctx context.Context) ([]model.Journey, string) {
	journeys, err := s.Journeys.List(ctx)
	if err != nil {
		logger.Log.Error("Failed to load journeys", zap.Error(err))
		return []model.Journey{}, journeysLoadError
	}
	sort.SliceStable(journeys, func(i, j int) bool { return journeys[i].Order < journeys[j].Order })

	s.mu.Lock()
	s.cache = journeys
	s.loaded = true
	s.mu.Unlock()

	return journeys, ""
}

// InvalidateJourneys 旅程定义变更后清除缓存
func (s *JourneyService) InvalidateJourneys() {
	s.mu.Lock()
	s.cache = nil
	s.loaded = false
	s.mu.Unlock()
}

// journeys 优先使用缓存，缓存为空时重新加载
func (s *JourneyService) journeys(ctx context.Context) []model.Journey {
	s.mu.RLock()
	if s.loaded && len(s.cache) > 0 {
		cached := s.cache
		s.mu.RUnlock()
		return cached
	}
	s.mu.RUnlock()

	journeys, _ := s.FetchAllJourneys(ctx)
	return journeys
}

func findJourney(journeys []model.Journey, id string) *model.Journey {
	for i := range journeys {
		if journeys[i].ID == id {
			return &journeys[i]
		}
	}
	return nil
}

func (s *JourneyService) FetchJourneyDetails(ctx context.Context, id string) (*JourneyDetails, error) {
	journey, err := s.Journeys.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrJourneyNotFound
	}
	if err != nil {
		return nil, err
	}

	levels, err := s.Levels.FindByIDs(ctx, journey.LevelIDs)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(levels, func(i, j int) bool { return levels[i].Number < levels[j].Number })
	if levels == nil {
		levels = []model.Level{}
	}

	return &JourneyDetails{Journey: *journey, Levels: levels}, nil
}

// FetchUserJourneyProgress 旅程 ID 到进度的映射，未登录或无记录时为空
func (s *JourneyService) FetchUserJourneyProgress(ctx context.Context, userID string) (map[string]model.JourneyProgress, error) {
	result := make(map[string]model.JourneyProgress)
	if userID == "" {
		return result, nil
	}
	list, err := s.Progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		result[p.JourneyID] = p
	}
	return result, nil
}

// SynchronizeCompletedLevels 把扁平完成集合补写进各旅程；只写差异，返回是否有写入
func (s *JourneyService) SynchronizeCompletedLevels(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	ctx, span := tracing.StartSpan(ctx, "journey.sync")
	defer span.End()

	completed, err := s.Users.CompletedLevels(ctx, userID)
	if err != nil {
		return false, err
	}
	if len(completed) == 0 {
		return false, nil
	}
	done := toSet(completed)

	journeys := s.journeys(ctx)
	progress, err := s.FetchUserJourneyProgress(ctx, userID)
	if err != nil {
		return false, err
	}

	var patches []JourneySyncPatch
	for _, j := range journeys {
		if len(j.LevelIDs) == 0 {
			continue
		}

		var matched []string
		for _, id := range j.LevelIDs {
			if done[id] {
				matched = append(matched, id)
			}
		}
		if len(matched) == 0 {
			continue
		}

		p, exists := progress[j.ID]
		patch := JourneySyncPatch{
			JourneyID: j.ID,
			Start:     !exists || p.StartedAt == nil,
		}
		for _, id := range matched {
			if !p.HasCompletedLevel(id) {
				patch.LevelIDs = append(patch.LevelIDs, id)
			}
		}
		if patch.Start || len(patch.LevelIDs) > 0 {
			patches = append(patches, patch)
		}
	}

	if len(patches) == 0 {
		return false, nil
	}

	if err := s.Progress.ApplySync(ctx, userID, patches, s.now()); err != nil {
		return false, fmt.Errorf("synchronize completed levels: %w", err)
	}
	monitoring.SyncWrites.Inc()
	logger.Log.Debug("Journey progress synchronized", zap.String("user_id", userID), zap.Int("journeys", len(patches)))
	return true, nil
}

// RefreshJourneyProgress 同步后重新读取进度
func (s *JourneyService) RefreshJourneyProgress(ctx context.Context, userID string) (map[string]model.JourneyProgress, error) {
	if userID == "" {
		return map[string]model.JourneyProgress{}, nil
	}
	s.journeys(ctx)
	if _, err := s.FetchUserJourneyProgress(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.SynchronizeCompletedLevels(ctx, userID); err != nil {
		logger.Log.Error("Failed to synchronize completed levels", zap.String("user_id", userID), zap.Error(err))
	}
	return s.FetchUserJourneyProgress(ctx, userID)
}

func (s *JourneyService) StartJourney(ctx context.Context, userID, journeyID string) (*model.JourneyProgress, error) {
	if userID == "" {
		return nil, util.ErrPermissionDenied
	}

	journeys := s.journeys(ctx)
	if len(journeys) == 0 {
		return nil, util.ErrJourneysUnavailable
	}
	journey := findJourney(journeys, journeyID)
	if journey == nil {
		return nil, util.ErrJourneyNotFound
	}

	progress, err := s.FetchUserJourneyProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	if missing := missingPrerequisites(journeys, journey, progress); len(missing) > 0 {
		return nil, &PrerequisiteError{Titles: missing}
	}

	started, err := s.Progress.Start(ctx, userID, journeyID, s.now())
	if err != nil {
		return nil, fmt.Errorf("start journey %s: %w", journeyID, err)
	}
	if started {
		s.recordActivity(ctx, model.NewActivity(userID, model.ActivityJourneyStarted, map[string]interface{}{
			"journeyId":    journey.ID,
			"journeyTitle": journey.Title,
		}))
	}

	return s.Progress.Find(ctx, userID, journeyID)
}

// CompleteJourney 标记旅程完成并授予旅程徽章；返回本次是否由未完成转为完成
func (s *JourneyService) CompleteJourney(ctx context.Context, userID, journeyID string) (bool, error) {
	journey := findJourney(s.journeys(ctx), journeyID)
	if journey == nil {
		return false, util.ErrJourneyNotFound
	}

	completed, err := s.Progress.MarkCompleted(ctx, userID, journeyID, s.now())
	if err != nil {
		return false, fmt.Errorf("complete journey %s: %w", journeyID, err)
	}

	if completed {
		monitoring.JourneysCompleted.WithLabelValues(journeyID).Inc()
		s.recordActivity(ctx, model.NewActivity(userID, model.ActivityJourneyCompleted, map[string]interface{}{
			"journeyId":    journey.ID,
			"journeyTitle": journey.Title,
		}))
	}

	if journey.BadgeID != "" && s.Badges != nil {
		if _, err := s.Badges.AwardBadge(ctx, userID, journey.BadgeID); err != nil {
			return completed, err
		}
	}
	return completed, nil
}

// CompleteLevelInJourney 把已通关的关卡计入旅程，覆盖全部关卡时完成旅程
func (s *JourneyService) CompleteLevelInJourney(ctx context.Context, userID, journeyID, levelID string) (*model.JourneyProgress, error) {
	if userID == "" {
		return nil, util.ErrPermissionDenied
	}
	ctx, span := tracing.StartSpan(ctx, "journey.complete_level")
	defer span.End()

	journey, err := s.CheckLevelForJourney(ctx, userID, journeyID, levelID)
	if err != nil {
		return nil, err
	}

	// 只接受已经在游戏中完成过的关卡
	completed, err := s.Users.CompletedLevels(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !toSet(completed)[levelID] {
		return nil, util.ErrLevelNotCompleted
	}

	p, err := s.Progress.Find(ctx, userID, journeyID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if p == nil || p.StartedAt == nil {
		if _, err := s.StartJourney(ctx, userID, journeyID); err != nil {
			return nil, err
		}
	}

	if err := s.Progress.AddLevels(ctx, userID, journeyID, []string{levelID}, s.now()); err != nil {
		return nil, fmt.Errorf("add level %s to journey %s: %w", levelID, journeyID, err)
	}

	p, err = s.Progress.Find(ctx, userID, journeyID)
	if err != nil {
		return nil, err
	}

	if !p.Completed && coversAll(p.CompletedLevels, journey.LevelIDs) {
		if _, err := s.CompleteJourney(ctx, userID, journeyID); err != nil {
			return nil, err
		}
		return s.Progress.Find(ctx, userID, journeyID)
	}
	return p, nil
}

// missingPrerequisites 返回未完成的前置旅程标题
func missingPrerequisites(journeys []model.Journey, journey *model.Journey, progress map[string]model.JourneyProgress) []string {
	var missing []string
	for _, pre := range journey.Prerequisites {
		if p, ok := progress[pre]; ok && p.Completed {
			continue
		}
		title := pre
		if pj := findJourney(journeys, pre); pj != nil {
			title = pj.Title
		}
		missing = append(missing, title)
	}
	return missing
}

// CheckLevelForJourney 校验关卡能否计入旅程，不写入任何数据
// 关卡必须属于该旅程（无关卡的旅程除外），尚未开始的旅程还需满足前置条件
func (s *JourneyService) CheckLevelForJourney(ctx context.Context, userID, journeyID, levelID string) (*model.Journey, error) {
	if userID == "" {
		return nil, util.ErrPermissionDenied
	}
	journeys := s.journeys(ctx)
	journey := findJourney(journeys, journeyID)
	if journey == nil {
		return nil, util.ErrJourneyNotFound
	}
	if len(journey.LevelIDs) > 0 && !toSet(journey.LevelIDs)[levelID] {
		return nil, util.ErrLevelNotInJourney
	}

	progress, err := s.FetchUserJourneyProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p, ok := progress[journeyID]; ok && p.StartedAt != nil {
		return journey, nil
	}
	if missing := missingPrerequisites(journeys, journey, progress); len(missing) > 0 {
		return nil, &PrerequisiteError{Titles: missing}
	}
	return journey, nil
}

func coversAll(have, want []string) bool {
	set := toSet(have)
	for _, id := range want {
		if !set[id] {
			return false
		}
	}
	return true
}

// Overview 旅程列表及三种派生视图
func (s *JourneyService) Overview(ctx context.Context, userID string) (*JourneyOverview, error) {
	journeys, loadErr := s.FetchAllJourneys(ctx)

	progress := map[string]model.JourneyProgress{}
	if userID != "" {
		var err error
		progress, err = s.RefreshJourneyProgress(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	return &JourneyOverview{
		Journeys:   journeys,
		Error:      loadErr,
		Progress:   progress,
		Available:  AvailableJourneys(journeys, progress, userID != ""),
		Completed:  CompletedJourneys(journeys, progress),
		InProgress: InProgressJourneys(journeys, progress),
	}, nil
}

// SaveJourney 新建或更新旅程定义
func (s *JourneyService) SaveJourney(ctx context.Context, journey *model.Journey) error {
	if err := s.Journeys.Save(ctx, journey); err != nil {
		return err
	}
	s.InvalidateJourneys()
	return nil
}

func (s *JourneyService) DeleteJourney(ctx context.Context, id string) error {
	err := s.Journeys.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrJourneyNotFound
	}
	if err != nil {
		return err
	}
	s.InvalidateJourneys()
	return nil
}

// SyncAllUsers 对所有有完成记录的用户执行一次同步
func (s *JourneyService) SyncAllUsers(ctx context.Context) (int, error) {
	ids, err := s.Users.UsersWithCompletedLevels(ctx)
	if err != nil {
		return 0, err
	}
	s.InvalidateJourneys()

	updated := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}
		wrote, err := s.SynchronizeCompletedLevels(ctx, id)
		if err != nil {
			logger.Log.Error("Failed to synchronize user progress", zap.String("user_id", id), zap.Error(err))
			continue
		}
		if wrote {
			updated++
		}
	}
	return updated, nil
}

func (s *JourneyService) recordActivity(ctx context.Context, activity *model.UserActivity) {
	if s.Activities == nil {
		return
	}
	if err := s.Activities.Create(ctx, activity); err != nil {
		logger.Log.Error("Failed to record activity", zap.String("type", activity.Type), zap.Error(err))
	}
}
