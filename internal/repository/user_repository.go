package repository

import (
	"code4u_backend/internal/model"
	"code4u_backend/internal/service"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Updates(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	// mysql 在值未变化时 RowsAffected 为 0，需再确认记录是否存在
	if res.RowsAffected == 0 {
		var count int64
		if err := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (r *UserRepository) UpdateLastSeen(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("last_seen", time.Now()).
		Error
}

func (r *UserRepository) RecordLevelCompletion(ctx context.Context, userID, levelID string, points int, activity *model.UserActivity) (bool, error) {
	first := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.UserCompletedLevel{
			UserID:      userID,
			LevelID:     levelID,
			CompletedAt: time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		// 已完成过的关卡不重复加分
		if res.RowsAffected == 0 {
			return nil
		}
		first = true

		if err := tx.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"points": gorm.Expr("points + ?", points),
			"level":  gorm.Expr("level + 1"),
		}).Error; err != nil {
			return err
		}

		if activity != nil {
			return tx.Create(activity).Error
		}
		return nil
	})
	return first, err
}

func (r *UserRepository) CompletedLevels(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.UserCompletedLevel{}).
		Where("user_id = ?", userID).
		Order("completed_at asc").
		Pluck("level_id", &ids).Error
	return ids, err
}

func (r *UserRepository) UsersWithCompletedLevels(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.UserCompletedLevel{}).
		Distinct("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *UserRepository) FindTopByPoints(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.WithContext(ctx).
		Where("disabled = ?", false).
		Order("points DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) List(ctx context.Context, page, limit int, filter service.UserFilter) ([]model.User, int64, error) {
	var users []model.User
	var total int64
	query := r.DB.WithContext(ctx).Model(&model.User{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status == "disabled" {
		query = query.Where("disabled = ?", true)
	} else if filter.Status == "active" {
		query = query.Where("disabled = ?", false)
	}
	if filter.Search != "" {
		searchTerm := "%" + filter.Search + "%"
		query = query.Where("display_name LIKE ? OR email LIKE ?", searchTerm, searchTerm)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}
