package model

import "time"

// JourneyProgress 用户在某个旅程上的进度
// swagger:model JourneyProgress
type JourneyProgress struct {
	UserID         string     `gorm:"primaryKey;type:varchar(64)" json:"-"`
	JourneyID      string     `gorm:"primaryKey;type:varchar(64)" json:"journeyId"`
	StartedAt      *time.Time `json:"startedAt,omitempty"`
	LastAccessedAt *time.Time `json:"lastAccessedAt,omitempty"`
	Completed      bool       `gorm:"default:false" json:"completed"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`

	// 由 journey_level_completions 推导
	CompletedLevels []string `gorm:"-" json:"completedLevels"`
}

func (JourneyProgress) TableName() string {
	return "journey_progress"
}

// HasCompletedLevel 判断关卡是否已计入该旅程
func (p *JourneyProgress) HasCompletedLevel(levelID string) bool {
	for _, id := range p.CompletedLevels {
		if id == levelID {
			return true
		}
	}
	return false
}

// JourneyLevelCompletion (user, journey, level) 完成事实
type JourneyLevelCompletion struct {
	UserID      string    `gorm:"primaryKey;type:varchar(64)"`
	JourneyID   string    `gorm:"primaryKey;type:varchar(64)"`
	LevelID     string    `gorm:"primaryKey;type:varchar(64)"`
	CompletedAt time.Time
}

func (JourneyLevelCompletion) TableName() string {
	return "journey_level_completions"
}

// PathProgress 旧版学习路径进度，仅供迁移读取
type PathProgress struct {
	UserID          string     `gorm:"primaryKey;type:varchar(64)"`
	PathID          string     `gorm:"primaryKey;type:varchar(64)"`
	StartedAt       *time.Time
	LastAccessedAt  *time.Time
	Completed       bool
	CompletedAt     *time.Time
	CompletedLevels []string `gorm:"serializer:json;type:json"`
}

func (PathProgress) TableName() string {
	return "path_progress"
}
