package service

import (
	"code4u_backend/internal/model"
	"code4u_backend/pkg/logger"
	"context"
	"fmt"

	"go.uber.org/zap"
)

type PathMigrationResult struct {
	Journeys int `json:"journeys"`
	Progress int `json:"progress"`
}

// PathMigrationService 把旧版学习路径及其进度迁移到旅程，可重复执行
type PathMigrationService struct {
	Paths    LearningPathRepo
	Journeys *JourneyService
	Progress ProgressRepo
}

func NewPathMigrationService(paths LearningPathRepo, journeys *JourneyService, progress ProgressRepo) *PathMigrationService {
	return &PathMigrationService{Paths: paths, Journeys: journeys, Progress: progress}
}

func (s *PathMigrationService) MigratePathsToJourneys(ctx context.Context) (*PathMigrationResult, error) {
	paths, err := s.Paths.ListPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("load learning paths: %w", err)
	}

	result := &PathMigrationResult{}
	for _, p := range paths {
		journey := p.ToJourney()
		if err := s.Journeys.SaveJourney(ctx, &journey); err != nil {
			return result, fmt.Errorf("migrate path %s: %w", p.ID, err)
		}
		result.Journeys++
	}

	progress, err := s.Paths.ListPathProgress(ctx)
	if err != nil {
		return result, fmt.Errorf("load path progress: %w", err)
	}
	for _, pp := range progress {
		err := s.Progress.Import(ctx, model.JourneyProgress{
			UserID:          pp.UserID,
			JourneyID:       pp.PathID,
			StartedAt:       pp.StartedAt,
			LastAccessedAt:  pp.LastAccessedAt,
			Completed:       pp.Completed,
			CompletedAt:     pp.CompletedAt,
			CompletedLevels: pp.CompletedLevels,
		})
		if err != nil {
			return result, fmt.Errorf("migrate progress %s/%s: %w", pp.UserID, pp.PathID, err)
		}
		result.Progress++
	}

	logger.Log.Info("Learning paths migrated to journeys",
		zap.Int("journeys", result.Journeys),
		zap.Int("progress", result.Progress))
	return result, nil
}
