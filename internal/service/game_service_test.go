package service

import (
	"code4u_backend/internal/catalog"
	"code4u_backend/internal/config"
	"code4u_backend/internal/model"
	"code4u_backend/internal/util"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsLevel() model.Level {
	return model.Level{
		ID:           "level-12",
		Number:       12,
		Title:        "Variables",
		Category:     model.CategoryJavaScript,
		PointsToEarn: 250,
		Tasks: []model.Task{
			{ID: "task1", InitialCode: "// declare\n", Solution: "let name", ExpectedOutput: "Variable declared!", ErrorHint: "Declare a variable called name using let."},
			{ID: "task2", InitialCode: "// log\n", Solution: "console.log(name)", ExpectedOutput: "Logged!", ErrorHint: "Log the variable."},
		},
	}
}

type gameFixture struct {
	users   *fakeUserRepo
	badges  *fakeBadgeRepo
	journey *journeyFixture
	service *GameService
}

func newGameFixture(levels ...model.Level) *gameFixture {
	jf := newJourneyFixture()
	badgeService := NewBadgeService(jf.badges, jf.users)
	svc := NewGameService(newFakeLevelRepo(levels...), jf.users, badgeService, jf.service, NewMemorySessionStore(), nil, catalog.MustDefault(), config.GameConfig{DefaultPoints: 100})
	return &gameFixture{users: jf.users, badges: jf.badges, journey: jf, service: svc}
}

// playThrough 依次提交每个任务的答案
func playThrough(t *testing.T, svc *GameService, userID string, level model.Level) {
	ctx := context.Background()
	_, err := svc.StartGame(ctx, userID, level.ID)
	require.NoError(t, err)
	for i, task := range level.Tasks {
		state, err := svc.RunCode(ctx, userID, level.ID, "<!-- -->"+task.Solution)
		require.NoError(t, err)
		require.True(t, state.TaskPassed)
		if i < len(level.Tasks)-1 {
			_, more, err := svc.NextTask(ctx, userID, level.ID)
			require.NoError(t, err)
			require.True(t, more)
		}
	}
}

func TestSubstringGrader(t *testing.T) {
	task := jsLevel().Tasks[0]
	g := SubstringGrader{}

	ok := g.Grade(context.Background(), task, "let name = 5;")
	assert.True(t, ok.Passed)
	assert.Equal(t, "Variable declared!", ok.Output)

	bad := g.Grade(context.Background(), task, "let x = 5;")
	assert.False(t, bad.Passed)
	assert.Equal(t, "Error: Declare a variable called name using let.", bad.Output)
}

func TestGameFlowRequiresPassingEachTask(t *testing.T) {
	f := newGameFixture(jsLevel())
	ctx := context.Background()

	state, err := f.service.StartGame(ctx, "u1", "level-12")
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentTask)
	assert.Equal(t, 2, state.TotalTasks)
	assert.Equal(t, "// declare\n", state.Code)

	_, _, err = f.service.NextTask(ctx, "u1", "level-12")
	assert.ErrorIs(t, err, util.ErrTaskNotPassed)

	state, err = f.service.RunCode(ctx, "u1", "level-12", "var name")
	require.NoError(t, err)
	assert.False(t, state.TaskPassed)

	state, err = f.service.RunCode(ctx, "u1", "level-12", "let name = 1")
	require.NoError(t, err)
	assert.True(t, state.TaskPassed)
	assert.False(t, state.AllPassed)

	_, err = f.service.CompleteLevel(ctx, "u1", "level-12", "")
	assert.ErrorIs(t, err, util.ErrLevelNotFinished)

	state, more, err := f.service.NextTask(ctx, "u1", "level-12")
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, 1, state.CurrentTask)
	assert.Equal(t, "// log\n", state.Code)
	assert.Empty(t, state.Output)
}

func TestRunCodeWithoutSession(t *testing.T) {
	f := newGameFixture(jsLevel())

	_, err := f.service.RunCode(context.Background(), "u1", "level-12", "let name")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestCompleteLevelAwardsPointsOnlyOnce(t *testing.T) {
	level := jsLevel()
	f := newGameFixture(level)
	ctx := context.Background()

	playThrough(t, f.service, "u1", level)
	result, err := f.service.CompleteLevel(ctx, "u1", level.ID, "")
	require.NoError(t, err)
	assert.True(t, result.FirstCompletion)
	assert.Equal(t, 250, result.PointsEarned)

	user, _ := f.users.FindByID(ctx, "u1")
	assert.Equal(t, 250, user.Points)
	assert.Equal(t, 2, user.Level)

	// 会话在完成后删除
	_, err = f.service.RunCode(ctx, "u1", level.ID, "let name")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)

	playThrough(t, f.service, "u1", level)
	result, err = f.service.CompleteLevel(ctx, "u1", level.ID, "")
	require.NoError(t, err)
	assert.False(t, result.FirstCompletion)
	assert.Zero(t, result.PointsEarned)

	user, _ = f.users.FindByID(ctx, "u1")
	assert.Equal(t, 250, user.Points)
	assert.Len(t, f.users.activities, 1)
}

func TestCompletingLastHTMLLevelAwardsMastery(t *testing.T) {
	f := newGameFixture()
	f.users.setCompleted("u1", levelRange(1, 4)...)
	f.badges.held["u1"] = []string{"html-basics"}
	ctx := context.Background()

	// level-5 不在库中，使用兜底关卡
	level, err := f.service.LoadLevel(ctx, "level-5")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryHTML, level.Category)
	assert.Equal(t, 500, level.PointsToEarn)

	playThrough(t, f.service, "u1", *level)
	result, err := f.service.CompleteLevel(ctx, "u1", "level-5", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"html-master"}, result.NewBadges)
	assert.Equal(t, 100, result.CategoryProgress[0].Percentage)
	assert.False(t, result.RequestFeedback)

	playThrough(t, f.service, "u1", *level)
	result, err = f.service.CompleteLevel(ctx, "u1", "level-5", "")
	require.NoError(t, err)
	assert.Empty(t, result.NewBadges)

	held, _ := f.badges.UserBadgeIDs(ctx, "u1")
	assert.Equal(t, []string{"html-basics", "html-master"}, held)
}

func TestCompleteLevelCountsTowardJourney(t *testing.T) {
	f := newGameFixture()
	ctx := context.Background()
	level, err := f.service.LoadLevel(ctx, "level-2")
	require.NoError(t, err)

	playThrough(t, f.service, "u1", *level)
	result, err := f.service.CompleteLevel(ctx, "u1", "level-2", "fundamentals")
	require.NoError(t, err)
	require.NotNil(t, result.Journey)
	assert.Equal(t, []string{"level-2"}, result.Journey.CompletedLevels)
	assert.True(t, result.RequestFeedback)
}

func TestLevelWithoutTasksCannotBeCompleted(t *testing.T) {
	empty := model.Level{ID: "level-13", Number: 13, Category: model.CategoryJavaScript, PointsToEarn: 300}
	f := newGameFixture(empty)
	ctx := context.Background()

	_, err := f.service.StartGame(ctx, "u1", empty.ID)
	assert.ErrorIs(t, err, util.ErrLevelHasNoTasks)

	// 直接写入的空会话也不能完成关卡
	require.NoError(t, f.service.Sessions.Save(ctx, &GameSession{UserID: "u1", LevelID: empty.ID, StartedAt: time.Now()}, time.Minute))
	_, err = f.service.CompleteLevel(ctx, "u1", empty.ID, "")
	assert.ErrorIs(t, err, util.ErrLevelHasNoTasks)

	user, _ := f.users.FindByID(ctx, "u1")
	assert.Zero(t, user.Points)
	assert.False(t, (&GameSession{}).AllPassed())
}

func TestSaveLevelRequiresTasks(t *testing.T) {
	f := newGameFixture()

	err := f.service.SaveLevel(context.Background(), &model.Level{ID: "level-20", Title: "Empty", Number: 20})
	assert.ErrorIs(t, err, util.ErrLevelHasNoTasks)

	level := jsLevel()
	level.ID = "level-20"
	assert.NoError(t, f.service.SaveLevel(context.Background(), &level))
}

func TestSessionIsDiscardedWhenLevelTasksChange(t *testing.T) {
	level := jsLevel()
	level.Tasks = level.Tasks[:1]
	f := newGameFixture(level)
	ctx := context.Background()

	_, err := f.service.StartGame(ctx, "u1", level.ID)
	require.NoError(t, err)

	// 创作者在游戏过程中追加了任务
	edited := jsLevel()
	require.NoError(t, f.service.SaveLevel(ctx, &edited))

	assert.NotPanics(t, func() {
		_, err = f.service.RunCode(ctx, "u1", level.ID, "let name")
	})
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
	_, err = f.service.CompleteLevel(ctx, "u1", level.ID, "")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)

	state, err := f.service.StartGame(ctx, "u1", level.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, state.TotalTasks)
}

func TestSessionIsDiscardedWhenLevelShrinks(t *testing.T) {
	level := jsLevel()
	f := newGameFixture(level)
	ctx := context.Background()

	_, err := f.service.StartGame(ctx, "u1", level.ID)
	require.NoError(t, err)
	_, err = f.service.RunCode(ctx, "u1", level.ID, "let name")
	require.NoError(t, err)
	_, _, err = f.service.NextTask(ctx, "u1", level.ID)
	require.NoError(t, err)

	shrunk := jsLevel()
	shrunk.Tasks = shrunk.Tasks[:1]
	require.NoError(t, f.service.SaveLevel(ctx, &shrunk))

	assert.NotPanics(t, func() {
		_, _, err = f.service.NextTask(ctx, "u1", level.ID)
	})
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
	_, err = f.service.Sessions.Get(ctx, "u1", level.ID)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestCompleteLevelChecksJourneyBeforeRecording(t *testing.T) {
	adv := jsLevel()
	adv.ID = "level-adv-1"
	f := newGameFixture(adv, jsLevel())
	ctx := context.Background()

	playThrough(t, f.service, "u1", adv)
	_, err := f.service.CompleteLevel(ctx, "u1", adv.ID, "advanced")
	var prereq *PrerequisiteError
	require.True(t, errors.As(err, &prereq))

	playThrough(t, f.service, "u1", jsLevel())
	_, err = f.service.CompleteLevel(ctx, "u1", "level-12", "fundamentals")
	assert.ErrorIs(t, err, util.ErrLevelNotInJourney)

	// 校验失败时不写入积分，会话保留可以重试
	user, _ := f.users.FindByID(ctx, "u1")
	assert.Zero(t, user.Points)
	assert.Empty(t, f.users.activities)

	result, err := f.service.CompleteLevel(ctx, "u1", adv.ID, "")
	require.NoError(t, err)
	assert.True(t, result.FirstCompletion)
}

func TestCompleteLevelKeepsResultWhenJourneyUpdateFails(t *testing.T) {
	f := newGameFixture()
	f.journey.progress.addErr = errors.New("progress table locked")
	ctx := context.Background()
	level, err := f.service.LoadLevel(ctx, "level-2")
	require.NoError(t, err)

	playThrough(t, f.service, "u1", *level)
	result, err := f.service.CompleteLevel(ctx, "u1", "level-2", "fundamentals")
	require.NoError(t, err)
	assert.True(t, result.FirstCompletion)
	assert.Equal(t, level.PointsToEarn, result.PointsEarned)
	assert.Nil(t, result.Journey)

	user, _ := f.users.FindByID(ctx, "u1")
	assert.Equal(t, level.PointsToEarn, user.Points)

	// 之后的同步会把关卡补进旅程
	f.journey.progress.addErr = nil
	_, err = f.journey.service.SynchronizeCompletedLevels(ctx, "u1")
	require.NoError(t, err)
	p, err := f.journey.service.FetchUserJourneyProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, p["fundamentals"].CompletedLevels, "level-2")
}

func TestLoadLevelUnknownID(t *testing.T) {
	f := newGameFixture()

	_, err := f.service.LoadLevel(context.Background(), "level-resp-9")
	assert.ErrorIs(t, err, util.ErrLevelNotFound)
}

func TestShouldRequestFeedback(t *testing.T) {
	assert.True(t, ShouldRequestFeedback(2, model.CategoryHTML))
	assert.True(t, ShouldRequestFeedback(2, model.CategoryJavaScript))
	assert.False(t, ShouldRequestFeedback(3, model.CategoryHTML))
	assert.False(t, ShouldRequestFeedback(2, "Responsive"))
}

func TestLevelViewHidesSolutions(t *testing.T) {
	level := jsLevel()
	view := NewLevelView(&level)

	require.Len(t, view.Tasks, 2)
	assert.Equal(t, "task1", view.Tasks[0].ID)
	assert.Equal(t, "// declare\n", view.Tasks[0].InitialCode)
}

func TestFetchUserProgress(t *testing.T) {
	f := newGameFixture()
	f.users.setCompleted("u1", "level-1", "level-6")
	f.badges.held["u1"] = []string{"html-basics"}

	progress, err := f.service.FetchUserProgress(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"level-1", "level-6"}, progress.CompletedLevels)
	assert.Equal(t, []string{"html-basics"}, progress.Badges)
	assert.Equal(t, 20, progress.CategoryProgress[1].Percentage)

	_, err = f.service.FetchUserProgress(context.Background(), "ghost")
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}
