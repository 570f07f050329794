package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActivityLevelCompleted   = "level_completed"
	ActivityBadgeEarned      = "badge_earned"
	ActivityJourneyStarted   = "journey_started"
	ActivityJourneyCompleted = "journey_completed"
)

// swagger:model UserActivity
type UserActivity struct {
	ID        string            `gorm:"primaryKey;type:varchar(64)" json:"id"`
	UserID    string            `gorm:"type:varchar(64);index" json:"userId"`
	Type      string            `gorm:"size:50;index" json:"type"`
	Details   datatypes.JSONMap `gorm:"type:json" json:"details"`
	Timestamp time.Time         `gorm:"index" json:"timestamp"`
}

func (UserActivity) TableName() string {
	return "user_activities"
}

func (a *UserActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = GenerateUUID()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	return nil
}

// NewActivity 构造一条动态记录
func NewActivity(userID, typ string, details map[string]interface{}) *UserActivity {
	return &UserActivity{
		ID:        GenerateUUID(),
		UserID:    userID,
		Type:      typ,
		Details:   datatypes.JSONMap(details),
		Timestamp: time.Now(),
	}
}
