package repository

import (
	"code4u_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

// LearningPathRepository 只读访问旧版学习路径数据
type LearningPathRepository struct {
	DB *gorm.DB
}

func NewLearningPathRepository(db *gorm.DB) *LearningPathRepository {
	return &LearningPathRepository{DB: db}
}

func (r *LearningPathRepository) ListPaths(ctx context.Context) ([]model.LearningPath, error) {
	var paths []model.LearningPath
	err := r.DB.WithContext(ctx).Order("sort_order asc").Find(&paths).Error
	return paths, err
}

func (r *LearningPathRepository) ListPathProgress(ctx context.Context) ([]model.PathProgress, error) {
	var progress []model.PathProgress
	err := r.DB.WithContext(ctx).Find(&progress).Error
	return progress, err
}
