package repository

import (
	"code4u_backend/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JourneyRepository struct {
	DB *gorm.DB
}

func NewJourneyRepository(db *gorm.DB) *JourneyRepository {
	return &JourneyRepository{DB: db}
}

func (r *JourneyRepository) List(ctx context.Context) ([]model.Journey, error) {
	var journeys []model.Journey
	err := r.DB.WithContext(ctx).Order("sort_order asc").Find(&journeys).Error
	return journeys, err
}

func (r *JourneyRepository) FindByID(ctx context.Context, id string) (*model.Journey, error) {
	var journey model.Journey
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&journey).Error; err != nil {
		return nil, err
	}
	return &journey, nil
}

// Save 按主键 upsert
func (r *JourneyRepository) Save(ctx context.Context, journey *model.Journey) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(journey).Error
}

func (r *JourneyRepository) Delete(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.Journey{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
