package repository

import (
	"code4u_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

func (r *BadgeRepository) List(ctx context.Context) ([]model.Badge, error) {
	var badges []model.Badge
	err := r.DB.WithContext(ctx).Order("category asc, id asc").Find(&badges).Error
	return badges, err
}

func (r *BadgeRepository) FindByID(ctx context.Context, id string) (*model.Badge, error) {
	var badge model.Badge
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&badge).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

func (r *BadgeRepository) Save(ctx context.Context, badge *model.Badge) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(badge).Error
}

func (r *BadgeRepository) Delete(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.Badge{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *BadgeRepository) UserBadgeIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.DB.WithContext(ctx).Model(&model.UserBadge{}).
		Where("user_id = ?", userID).
		Order("earned_at asc").
		Pluck("badge_id", &ids).Error
	return ids, err
}

func (r *BadgeRepository) Award(ctx context.Context, userID, badgeID string, activity *model.UserActivity) (bool, error) {
	awarded := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.UserBadge{
			UserID:   userID,
			BadgeID:  badgeID,
			EarnedAt: time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		awarded = true
		if activity != nil {
			return tx.Create(activity).Error
		}
		return nil
	})
	return awarded, err
}
