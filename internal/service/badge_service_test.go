package service

import (
	"code4u_backend/internal/model"
	"code4u_backend/internal/util"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func levelRange(from, to int) []string {
	var ids []string
	for n := from; n <= to; n++ {
		ids = append(ids, levelID(n))
	}
	return ids
}

func TestLevelNumber(t *testing.T) {
	n, ok := levelNumber("level-12")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	for _, id := range []string{"level-resp-1", "level-0", "level-", "lvl-3", "level-x"} {
		_, ok := levelNumber(id)
		assert.False(t, ok, id)
	}
}

func TestEligibleBadgesLevelAndMastery(t *testing.T) {
	got := EligibleBadges(levelRange(1, 5), nil, nil)
	assert.Equal(t, []string{"html-basics", "html-master"}, got)

	got = EligibleBadges(levelRange(1, 15), []string{"html-basics", "html-master"}, nil)
	assert.Equal(t, []string{"css-basics", "js-basics", "css-master", "js-master", "web-developer"}, got)
}

func TestEligibleBadgesIgnoresNonNumberedLevels(t *testing.T) {
	got := EligibleBadges([]string{"level-resp-1", "level-dom-1"}, nil, nil)
	assert.Empty(t, got)
}

func TestEligibleBadgesCatalogRequirementsReachFixedPoint(t *testing.T) {
	catalog := []model.Badge{
		// 依赖另一个目录徽章，出现在前面也应在同一轮计算中授予
		{ID: "champion", Requirements: []string{"responsive-designer", "html-master"}},
		{ID: "responsive-designer", Requirements: []string{"level-resp-1", "level-resp-2"}},
		{ID: "no-rules"},
	}
	completed := append(levelRange(1, 5), "level-resp-1", "level-resp-2")

	got := EligibleBadges(completed, nil, catalog)
	assert.Contains(t, got, "responsive-designer")
	assert.Contains(t, got, "champion")
	assert.NotContains(t, got, "no-rules")
}

func TestEligibleBadgesSkipsHeld(t *testing.T) {
	got := EligibleBadges(levelRange(1, 5), []string{"html-basics", "html-master"}, nil)
	assert.Empty(t, got)
}

func TestCalculateCategoryProgress(t *testing.T) {
	progress := CalculateCategoryProgress(append(levelRange(1, 5), "level-6", "level-resp-1"))
	require.Len(t, progress, 3)

	assert.Equal(t, CategoryProgress{Category: model.CategoryHTML, Completed: 5, Total: 5, Percentage: 100}, progress[0])
	assert.Equal(t, CategoryProgress{Category: model.CategoryCSS, Completed: 1, Total: 5, Percentage: 20}, progress[1])
	assert.Equal(t, 0, progress[2].Percentage)
}

func TestAwardBadgeIsIdempotent(t *testing.T) {
	badges := newFakeBadgeRepo(model.Badge{ID: "html-master", Name: "HTML Master", Icon: "🏆"})
	svc := NewBadgeService(badges, newFakeUserRepo())
	ctx := context.Background()

	first, err := svc.AwardBadge(ctx, "u1", "html-master")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := svc.AwardBadge(ctx, "u1", "html-master")
	require.NoError(t, err)
	assert.False(t, second)

	require.Len(t, badges.activities, 1)
	assert.Equal(t, model.ActivityBadgeEarned, badges.activities[0].Type)
	assert.Equal(t, "HTML Master", badges.activities[0].Details["badgeName"])
}

func TestCheckForBadgesAwardsOnce(t *testing.T) {
	users := newFakeUserRepo()
	users.setCompleted("u1", levelRange(1, 5)...)
	badges := newFakeBadgeRepo()
	svc := NewBadgeService(badges, users)
	ctx := context.Background()

	awarded, err := svc.CheckForBadges(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"html-basics", "html-master"}, awarded)

	awarded, err = svc.CheckForBadges(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, awarded)
}

func TestCheckForBadgesWithoutCatalog(t *testing.T) {
	users := newFakeUserRepo()
	users.setCompleted("u1", "level-1")
	badges := newFakeBadgeRepo()
	badges.listErr = errors.New("table missing")
	svc := NewBadgeService(badges, users)

	awarded, err := svc.CheckForBadges(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"html-basics"}, awarded)
}

func TestUserBadgesIncludesUnknownIDs(t *testing.T) {
	badges := newFakeBadgeRepo(model.Badge{ID: "html-basics", Name: "HTML Basics"})
	badges.held["u1"] = []string{"html-basics", "retired"}
	svc := NewBadgeService(badges, newFakeUserRepo())

	got, err := svc.UserBadges(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "HTML Basics", got[0].Name)
	assert.Equal(t, "retired", got[1].ID)
}

func TestDeleteBadgeNotFound(t *testing.T) {
	svc := NewBadgeService(newFakeBadgeRepo(), newFakeUserRepo())
	assert.ErrorIs(t, svc.DeleteBadge(context.Background(), "missing"), util.ErrBadgeNotFound)
}
