package service

import (
	"code4u_backend/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePathRepo struct {
	paths    []model.LearningPath
	progress []model.PathProgress
}

func (r *fakePathRepo) ListPaths(_ context.Context) ([]model.LearningPath, error) {
	return r.paths, nil
}

func (r *fakePathRepo) ListPathProgress(_ context.Context) ([]model.PathProgress, error) {
	return r.progress, nil
}

func TestMigratePathsToJourneysIsRepeatable(t *testing.T) {
	f := newJourneyFixture()
	started := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	paths := &fakePathRepo{
		paths: []model.LearningPath{
			{ID: "web-path", Title: "Web Path", LevelIDs: []string{"level-1", "level-6"}, Order: 3},
		},
		progress: []model.PathProgress{
			{UserID: "u1", PathID: "web-path", StartedAt: &started, CompletedLevels: []string{"level-1"}},
		},
	}
	svc := NewPathMigrationService(paths, f.service, f.progress)
	ctx := context.Background()

	result, err := svc.MigratePathsToJourneys(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Journeys)
	assert.Equal(t, 1, result.Progress)

	journey, err := f.journeys.FindByID(ctx, "web-path")
	require.NoError(t, err)
	assert.Equal(t, []string{"level-1", "level-6"}, journey.LevelIDs)

	// 再次执行不会覆盖已有的开始时间，也不会重复关卡
	later := started.Add(time.Hour)
	paths.progress[0].StartedAt = &later
	_, err = svc.MigratePathsToJourneys(ctx)
	require.NoError(t, err)

	p, err := f.progress.Find(ctx, "u1", "web-path")
	require.NoError(t, err)
	assert.True(t, p.StartedAt.Equal(started))
	assert.Equal(t, []string{"level-1"}, p.CompletedLevels)
}
