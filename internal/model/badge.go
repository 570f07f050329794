package model

import "time"

// swagger:model Badge
type Badge struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id" yaml:"id"`
	Name         string    `gorm:"size:100;not null" json:"name" yaml:"name"`
	Description  string    `gorm:"type:text" json:"description" yaml:"description"`
	Icon         string    `gorm:"size:32" json:"icon" yaml:"icon"`
	Category     string    `gorm:"size:50" json:"category" yaml:"category"`
	Requirements []string  `gorm:"serializer:json;type:json" json:"requirements" yaml:"requirements"`
	CreatedAt    time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt    time.Time `json:"updatedAt" yaml:"-"`
}

func (Badge) TableName() string {
	return "badges"
}

// UserBadge 复合主键保证同一徽章只授予一次
type UserBadge struct {
	UserID   string    `gorm:"primaryKey;type:varchar(64)" json:"userId"`
	BadgeID  string    `gorm:"primaryKey;type:varchar(64)" json:"badgeId"`
	EarnedAt time.Time `json:"earnedAt"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
