package service

import (
	"code4u_backend/internal/catalog"
	"code4u_backend/internal/config"
	"code4u_backend/internal/model"
	"code4u_backend/internal/util"
	"code4u_backend/pkg/logger"
	"code4u_backend/pkg/monitoring"
	"code4u_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskView 返回给前端的任务，不包含 solution
type TaskView struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Instructions string `json:"instructions,omitempty"`
	InitialCode  string `json:"initialCode"`
}

func newTaskView(t model.Task) TaskView {
	return TaskView{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Instructions: t.Instructions,
		InitialCode:  t.InitialCode,
	}
}

// LevelView 关卡公开信息
type LevelView struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Number       int        `json:"number"`
	Difficulty   string     `json:"difficulty"`
	PointsToEarn int        `json:"pointsToEarn"`
	Tasks        []TaskView `json:"tasks"`
}

func NewLevelView(l *model.Level) LevelView {
	tasks := make([]TaskView, 0, len(l.Tasks))
	for _, t := range l.Tasks {
		tasks = append(tasks, newTaskView(t))
	}
	return LevelView{
		ID:           l.ID,
		Title:        l.Title,
		Description:  l.Description,
		Category:     l.Category,
		Number:       l.Number,
		Difficulty:   l.Difficulty,
		PointsToEarn: l.PointsToEarn,
		Tasks:        tasks,
	}
}

type GameState struct {
	LevelID     string    `json:"levelId"`
	CurrentTask int       `json:"currentTask"`
	TotalTasks  int       `json:"totalTasks"`
	Task        *TaskView `json:"task,omitempty"`
	Code        string    `json:"code"`
	Output      string    `json:"output"`
	TaskPassed  bool      `json:"taskPassed"`
	AllPassed   bool      `json:"allPassed"`
}

type CompletionResult struct {
	LevelID          string                 `json:"levelId"`
	FirstCompletion  bool                   `json:"firstCompletion"`
	PointsEarned     int                    `json:"pointsEarned"`
	NewBadges        []string               `json:"newBadges"`
	CategoryProgress []CategoryProgress     `json:"categoryProgress"`
	Journey          *model.JourneyProgress `json:"journey,omitempty"`
	RequestFeedback  bool                   `json:"requestFeedback"`
}

type UserProgress struct {
	Level            int                `json:"level"`
	Points           int                `json:"points"`
	CompletedLevels  []string           `json:"completedLevels"`
	Badges           []string           `json:"badges"`
	CategoryProgress []CategoryProgress `json:"categoryProgress"`
}

type GameService struct {
	Levels   LevelRepo
	Users    UserRepo
	Badges   *BadgeService
	Journeys *JourneyService
	Sessions SessionStore
	Grader   Grader
	Catalog  *catalog.Catalog
	Cfg      config.GameConfig
}

func NewGameService(levels LevelRepo, users UserRepo, badges *BadgeService, journeys *JourneyService, sessions SessionStore, grader Grader, cat *catalog.Catalog, cfg config.GameConfig) *GameService {
	if grader == nil {
		grader = SubstringGrader{}
	}
	return &GameService{
		Levels:   levels,
		Users:    users,
		Badges:   badges,
		Journeys: journeys,
		Sessions: sessions,
		Grader:   grader,
		Catalog:  cat,
		Cfg:      cfg,
	}
}

func (s *GameService) ListLevels(ctx context.Context, category string) ([]model.Level, error) {
	return s.Levels.List(ctx, category)
}

// LoadLevel 不存在的 level-N 使用生成的兜底关卡
func (s *GameService) LoadLevel(ctx context.Context, levelID string) (*model.Level, error) {
	level, err := s.Levels.FindByID(ctx, levelID)
	if err == nil {
		return level, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	n, ok := levelNumber(levelID)
	if !ok || s.Catalog == nil {
		return nil, util.ErrLevelNotFound
	}
	fallback := s.Catalog.FallbackLevel(n)
	return &fallback, nil
}

func (s *GameService) state(level *model.Level, session *GameSession) *GameState {
	st := &GameState{
		LevelID:     level.ID,
		CurrentTask: session.CurrentTask,
		TotalTasks:  len(level.Tasks),
		Code:        session.Code,
		Output:      session.Output,
		TaskPassed:  session.CurrentPassed(),
		AllPassed:   session.AllPassed(),
	}
	if session.CurrentTask < len(level.Tasks) {
		tv := newTaskView(level.Tasks[session.CurrentTask])
		st.Task = &tv
	}
	return st
}

func (s *GameService) session(ctx context.Context, userID, levelID string) (*model.Level, *GameSession, error) {
	session, err := s.Sessions.Get(ctx, userID, levelID)
	if err != nil {
		return nil, nil, err
	}
	level, err := s.LoadLevel(ctx, levelID)
	if err != nil {
		return nil, nil, err
	}
	if len(level.Tasks) == 0 {
		return nil, nil, util.ErrLevelHasNoTasks
	}
	// 会话开始后关卡任务被修改过，旧会话作废，需要重新开始
	if !session.fits(level) {
		logger.Log.Info("Discarding stale game session",
			zap.String("user_id", userID), zap.String("level_id", levelID),
			zap.Int("session_tasks", len(session.Passed)), zap.Int("level_tasks", len(level.Tasks)))
		if err := s.Sessions.Delete(ctx, userID, levelID); err != nil {
			logger.Log.Warn("Failed to delete game session", zap.Error(err))
		}
		return nil, nil, util.ErrSessionNotFound
	}
	return level, session, nil
}

// StartGame 从第一个任务开始新的会话
func (s *GameService) StartGame(ctx context.Context, userID, levelID string) (*GameState, error) {
	level, err := s.LoadLevel(ctx, levelID)
	if err != nil {
		return nil, err
	}
	if len(level.Tasks) == 0 {
		return nil, util.ErrLevelHasNoTasks
	}

	session := &GameSession{
		UserID:    userID,
		LevelID:   level.ID,
		Code:      level.Tasks[0].InitialCode,
		Passed:    make([]bool, len(level.Tasks)),
		StartedAt: time.Now(),
	}

	if err := s.Sessions.Save(ctx, session, s.Cfg.SessionTTL()); err != nil {
		return nil, fmt.Errorf("save game session: %w", err)
	}
	return s.state(level, session), nil
}

// RunCode 用评分器判定当前任务
func (s *GameService) RunCode(ctx context.Context, userID, levelID, code string) (*GameState, error) {
	level, session, err := s.session(ctx, userID, levelID)
	if err != nil {
		return nil, err
	}
	result := s.Grader.Grade(ctx, level.Tasks[session.CurrentTask], code)
	session.Code = code
	session.Output = result.Output
	if result.Passed {
		session.Passed[session.CurrentTask] = true
	}

	if err := s.Sessions.Save(ctx, session, s.Cfg.SessionTTL()); err != nil {
		return nil, fmt.Errorf("save game session: %w", err)
	}
	return s.state(level, session), nil
}

// NextTask 当前任务通过后前进一步；没有更多任务时返回 false
func (s *GameService) NextTask(ctx context.Context, userID, levelID string) (*GameState, bool, error) {
	level, session, err := s.session(ctx, userID, levelID)
	if err != nil {
		return nil, false, err
	}
	if !session.CurrentPassed() {
		return nil, false, util.ErrTaskNotPassed
	}
	if session.CurrentTask >= len(level.Tasks)-1 {
		return s.state(level, session), false, nil
	}

	session.CurrentTask++
	session.Code = level.Tasks[session.CurrentTask].InitialCode
	session.Output = ""

	if err := s.Sessions.Save(ctx, session, s.Cfg.SessionTTL()); err != nil {
		return nil, false, fmt.Errorf("save game session: %w", err)
	}
	return s.state(level, session), true, nil
}

// ShouldRequestFeedback 每个分类的第二关完成后请求反馈
func ShouldRequestFeedback(levelNumber int, category string) bool {
	if levelNumber != 2 {
		return false
	}
	switch category {
	case model.CategoryHTML, model.CategoryCSS, model.CategoryJavaScript:
		return true
	}
	return false
}

// CompleteLevel 所有任务通过后记录完成、发放积分与徽章，并可计入旅程
// 旅程校验在写入前完成；写入后旅程更新失败只记录日志，不影响已提交的结果
func (s *GameService) CompleteLevel(ctx context.Context, userID, levelID, journeyID string) (*CompletionResult, error) {
	ctx, span := tracing.StartSpan(ctx, "game.complete_level")
	defer span.End()

	level, session, err := s.session(ctx, userID, levelID)
	if err != nil {
		return nil, err
	}
	if !session.AllPassed() {
		return nil, util.ErrLevelNotFinished
	}

	withJourney := journeyID != "" && s.Journeys != nil
	if withJourney {
		if _, err := s.Journeys.CheckLevelForJourney(ctx, userID, journeyID, level.ID); err != nil {
			return nil, err
		}
	}

	points := level.PointsToEarn
	if points <= 0 {
		points = s.Cfg.DefaultPoints
	}
	if points <= 0 {
		points = 100
	}

	activity := model.NewActivity(userID, model.ActivityLevelCompleted, map[string]interface{}{
		"levelId":    level.ID,
		"levelTitle": level.Title,
		"category":   level.Category,
		"points":     points,
	})
	first, err := s.Users.RecordLevelCompletion(ctx, userID, level.ID, points, activity)
	if err != nil {
		return nil, fmt.Errorf("record level completion: %w", err)
	}

	result := &CompletionResult{
		LevelID:         level.ID,
		FirstCompletion: first,
		NewBadges:       []string{},
		RequestFeedback: ShouldRequestFeedback(level.Number, level.Category),
	}
	if first {
		result.PointsEarned = points
		monitoring.LevelsCompleted.WithLabelValues(level.Category).Inc()
	}

	badges, err := s.Badges.CheckForBadges(ctx, userID)
	if err != nil {
		logger.Log.Error("Failed to check badges", zap.String("user_id", userID), zap.Error(err))
	}
	if len(badges) > 0 {
		result.NewBadges = badges
	}

	if withJourney {
		jp, err := s.Journeys.CompleteLevelInJourney(ctx, userID, journeyID, level.ID)
		if err != nil {
			logger.Log.Error("Failed to count level toward journey",
				zap.String("user_id", userID), zap.String("journey_id", journeyID),
				zap.String("level_id", level.ID), zap.Error(err))
		} else {
			result.Journey = jp
		}
	}

	completed, err := s.Users.CompletedLevels(ctx, userID)
	if err != nil {
		logger.Log.Error("Failed to load completed levels", zap.String("user_id", userID), zap.Error(err))
		completed = []string{level.ID}
	}
	result.CategoryProgress = CalculateCategoryProgress(completed)

	if err := s.Sessions.Delete(ctx, userID, levelID); err != nil {
		logger.Log.Warn("Failed to delete game session", zap.Error(err))
	}
	return result, nil
}

func (s *GameService) FetchUserProgress(ctx context.Context, userID string) (*UserProgress, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	completed, err := s.Users.CompletedLevels(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges, err := s.Badges.Badges.UserBadgeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if completed == nil {
		completed = []string{}
	}

	return &UserProgress{
		Level:            user.Level,
		Points:           user.Points,
		CompletedLevels:  completed,
		Badges:           badges,
		CategoryProgress: CalculateCategoryProgress(completed),
	}, nil
}

// SaveLevel 创作者新建或更新关卡，关卡至少要有一个任务
func (s *GameService) SaveLevel(ctx context.Context, level *model.Level) error {
	if len(level.Tasks) == 0 {
		return util.ErrLevelHasNoTasks
	}
	if level.Category == "" && level.Number > 0 {
		level.Category = model.CategoryForNumber(level.Number)
	}
	return s.Levels.Save(ctx, level)
}

func (s *GameService) DeleteLevel(ctx context.Context, id string) error {
	err := s.Levels.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrLevelNotFound
	}
	return err
}
