package repository

import (
	"code4u_backend/internal/model"
	"context"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *model.UserActivity) error {
	return r.DB.WithContext(ctx).Create(activity).Error
}

func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]model.UserActivity, error) {
	var activities []model.UserActivity
	err := r.DB.WithContext(ctx).Order("timestamp desc").Limit(limit).Find(&activities).Error
	return activities, err
}

func (r *ActivityRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.UserActivity, error) {
	var activities []model.UserActivity
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp desc").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
