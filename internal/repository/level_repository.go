package repository

import (
	"code4u_backend/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LevelRepository struct {
	DB *gorm.DB
}

func NewLevelRepository(db *gorm.DB) *LevelRepository {
	return &LevelRepository{DB: db}
}

func (r *LevelRepository) FindByID(ctx context.Context, id string) (*model.Level, error) {
	var level model.Level
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&level).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

// FindByIDs 缺失的关卡直接跳过
func (r *LevelRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Level, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var levels []model.Level
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("number asc").Find(&levels).Error
	return levels, err
}

func (r *LevelRepository) List(ctx context.Context, category string) ([]model.Level, error) {
	var levels []model.Level
	query := r.DB.WithContext(ctx).Where("published = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("number asc").Find(&levels).Error
	return levels, err
}

func (r *LevelRepository) Save(ctx context.Context, level *model.Level) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(level).Error
}

func (r *LevelRepository) Delete(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.Level{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *LevelRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(ids) == 0 {
		return existing, nil
	}
	var found []string
	if err := r.DB.WithContext(ctx).Model(&model.Level{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

func (r *LevelRepository) CreateInBatches(ctx context.Context, levels []model.Level, batchSize int) error {
	if len(levels) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(levels, batchSize).Error
}
