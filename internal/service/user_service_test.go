package service

import (
	"bytes"
	"code4u_backend/internal/config"
	"code4u_backend/internal/model"
	"code4u_backend/internal/util"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorageConfig(dir string) config.StorageConfig {
	return config.StorageConfig{Type: util.StorageLocal, LocalPath: dir}
}

func newTestUser(id, name string, points int) *model.User {
	return &model.User{UUIDBase: model.UUIDBase{ID: id}, DisplayName: name, Points: points, Level: 1, Role: model.RoleUser}
}

func newUserFixture(users ...*model.User) (*UserService, *fakeUserRepo, *fakeProvider) {
	repo := newFakeUserRepo(users...)
	provider := &fakeProvider{}
	svc := NewUserService(repo, &fakeActivityRepo{}, &StorageService{Provider: provider}, config.LeaderboardConfig{Public: true})
	return svc, repo, provider
}

func TestLeaderboardRanksByPoints(t *testing.T) {
	svc, _, _ := newUserFixture(
		newTestUser("a", "Ada", 300),
		newTestUser("b", "Bob", 900),
		newTestUser("c", "Cy", 500),
	)

	entries, err := svc.Leaderboard(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "Bob", entries[0].DisplayName)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, 500, entries[1].Points)

	all, err := svc.Leaderboard(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestApplyLeaderboardConfig(t *testing.T) {
	svc, _, _ := newUserFixture()
	assert.True(t, svc.LeaderboardPublic())
	assert.Equal(t, 10, svc.ResolveLimit(""))
	assert.Equal(t, 100, svc.ResolveLimit("1000"))

	svc.ApplyLeaderboardConfig(config.LeaderboardConfig{Public: false, DefaultLimit: 25})
	assert.False(t, svc.LeaderboardPublic())
	assert.Equal(t, 25, svc.ResolveLimit("zero"))
	assert.Equal(t, 7, svc.ResolveLimit("7"))
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newUserFixture(newTestUser("u1", "Ada", 0))

	user, err := svc.UpdateProfile(context.Background(), "u1", "  Ada Lovelace ")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.DisplayName)

	// 空名称不修改
	user, err = svc.UpdateProfile(context.Background(), "u1", "   ")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.DisplayName)

	_, err = svc.UpdateProfile(context.Background(), "ghost", "X")
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestProfilePictureLifecycle(t *testing.T) {
	svc, _, _ := newUserFixture(newTestUser("u1", "Ada", 0))
	ctx := context.Background()

	user, err := svc.UploadProfilePicture(ctx, "u1", bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/profile-pictures/u1/profile-image", user.PhotoURL)

	user, err = svc.DeleteProfilePicture(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, user.PhotoURL)
}

func TestSetRoleAndDisable(t *testing.T) {
	svc, repo, _ := newUserFixture(newTestUser("u1", "Ada", 0))
	ctx := context.Background()

	require.NoError(t, svc.SetRole(ctx, "u1", model.RoleCreator))
	assert.Equal(t, model.RoleCreator, repo.users["u1"].Role)

	assert.ErrorIs(t, svc.SetRole(ctx, "u1", model.UserRole("root")), util.ErrInvalidRole)
	assert.ErrorIs(t, svc.SetRole(ctx, "ghost", model.RoleAdmin), util.ErrUserNotFound)

	require.NoError(t, svc.DisableUser(ctx, "u1", true))
	assert.True(t, repo.users["u1"].Disabled)
	assert.ErrorIs(t, svc.DisableUser(ctx, "ghost", true), util.ErrUserNotFound)
}
