package repository

import (
	"code4u_backend/internal/model"
	"code4u_backend/internal/service"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) ListByUser(ctx context.Context, userID string) ([]model.JourneyProgress, error) {
	db := r.DB.WithContext(ctx)

	var progress []model.JourneyProgress
	if err := db.Where("user_id = ?", userID).Find(&progress).Error; err != nil {
		return nil, err
	}

	var facts []model.JourneyLevelCompletion
	if err := db.Where("user_id = ?", userID).Order("completed_at asc").Find(&facts).Error; err != nil {
		return nil, err
	}

	byJourney := make(map[string][]string)
	for _, f := range facts {
		byJourney[f.JourneyID] = append(byJourney[f.JourneyID], f.LevelID)
	}
	for i := range progress {
		progress[i].CompletedLevels = byJourney[progress[i].JourneyID]
		if progress[i].CompletedLevels == nil {
			progress[i].CompletedLevels = []string{}
		}
	}
	return progress, nil
}

func (r *ProgressRepository) Find(ctx context.Context, userID, journeyID string) (*model.JourneyProgress, error) {
	db := r.DB.WithContext(ctx)

	var p model.JourneyProgress
	if err := db.Where("user_id = ? AND journey_id = ?", userID, journeyID).First(&p).Error; err != nil {
		return nil, err
	}

	p.CompletedLevels = []string{}
	if err := db.Model(&model.JourneyLevelCompletion{}).
		Where("user_id = ? AND journey_id = ?", userID, journeyID).
		Order("completed_at asc").
		Pluck("level_id", &p.CompletedLevels).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) Start(ctx context.Context, userID, journeyID string, now time.Time) (bool, error) {
	started := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		started, err = startJourney(tx, userID, journeyID, now)
		return err
	})
	return started, err
}

// startJourney 返回本次是否首次开始
func startJourney(tx *gorm.DB, userID, journeyID string, now time.Time) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.JourneyProgress{
		UserID:         userID,
		JourneyID:      journeyID,
		StartedAt:      &now,
		LastAccessedAt: &now,
	})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	// 已有记录：只补写缺失的 startedAt
	res = tx.Model(&model.JourneyProgress{}).
		Where("user_id = ? AND journey_id = ? AND started_at IS NULL", userID, journeyID).
		Updates(map[string]interface{}{"started_at": now, "last_accessed_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	return false, tx.Model(&model.JourneyProgress{}).
		Where("user_id = ? AND journey_id = ?", userID, journeyID).
		Update("last_accessed_at", now).Error
}

func addLevels(tx *gorm.DB, userID, journeyID string, levelIDs []string, now time.Time) error {
	if len(levelIDs) == 0 {
		return nil
	}
	facts := make([]model.JourneyLevelCompletion, 0, len(levelIDs))
	for _, id := range levelIDs {
		facts = append(facts, model.JourneyLevelCompletion{
			UserID:      userID,
			JourneyID:   journeyID,
			LevelID:     id,
			CompletedAt: now,
		})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&facts).Error
}

func (r *ProgressRepository) AddLevels(ctx context.Context, userID, journeyID string, levelIDs []string, now time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := addLevels(tx, userID, journeyID, levelIDs, now); err != nil {
			return err
		}
		return tx.Model(&model.JourneyProgress{}).
			Where("user_id = ? AND journey_id = ?", userID, journeyID).
			Update("last_accessed_at", now).Error
	})
}

func (r *ProgressRepository) ApplySync(ctx context.Context, userID string, patches []service.JourneySyncPatch, now time.Time) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range patches {
			if p.Start {
				if _, err := startJourney(tx, userID, p.JourneyID, now); err != nil {
					return err
				}
			}
			if err := addLevels(tx, userID, p.JourneyID, p.LevelIDs, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ProgressRepository) MarkCompleted(ctx context.Context, userID, journeyID string, now time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&model.JourneyProgress{}).
		Where("user_id = ? AND journey_id = ? AND completed = ?", userID, journeyID, false).
		Updates(map[string]interface{}{
			"completed":        true,
			"completed_at":     now,
			"last_accessed_at": now,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *ProgressRepository) Import(ctx context.Context, p model.JourneyProgress) error {
	now := time.Now()
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := model.JourneyProgress{
			UserID:         p.UserID,
			JourneyID:      p.JourneyID,
			StartedAt:      p.StartedAt,
			LastAccessedAt: p.LastAccessedAt,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}

		if p.StartedAt != nil {
			if err := tx.Model(&model.JourneyProgress{}).
				Where("user_id = ? AND journey_id = ? AND started_at IS NULL", p.UserID, p.JourneyID).
				Update("started_at", p.StartedAt).Error; err != nil {
				return err
			}
		}

		if p.Completed {
			completedAt := now
			if p.CompletedAt != nil {
				completedAt = *p.CompletedAt
			}
			if err := tx.Model(&model.JourneyProgress{}).
				Where("user_id = ? AND journey_id = ? AND completed = ?", p.UserID, p.JourneyID, false).
				Updates(map[string]interface{}{"completed": true, "completed_at": completedAt}).Error; err != nil {
				return err
			}
		}

		factTime := now
		if p.LastAccessedAt != nil {
			factTime = *p.LastAccessedAt
		}
		return addLevels(tx, p.UserID, p.JourneyID, p.CompletedLevels, factTime)
	})
}
