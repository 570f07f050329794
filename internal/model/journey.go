package model

import "time"

// swagger:model Journey
type Journey struct {
	ID             string    `gorm:"primaryKey;type:varchar(64)" json:"id" yaml:"id"`
	Title          string    `gorm:"size:255;not null" json:"title" yaml:"title"`
	Description    string    `gorm:"type:text" json:"description" yaml:"description"`
	Icon           string    `gorm:"size:32" json:"icon" yaml:"icon"`
	Difficulty     string    `gorm:"size:50" json:"difficulty" yaml:"difficulty"`
	EstimatedHours int       `gorm:"default:0" json:"estimatedHours" yaml:"estimatedHours"`
	LevelIDs       []string  `gorm:"column:level_ids;serializer:json;type:json" json:"levelIds" yaml:"levelIds"`
	Prerequisites  []string  `gorm:"serializer:json;type:json" json:"prerequisites" yaml:"prerequisites"`
	BadgeID        string    `gorm:"size:64" json:"badgeId" yaml:"badgeId"`
	Categories     []string  `gorm:"serializer:json;type:json" json:"categories" yaml:"categories"`
	Tags           []string  `gorm:"serializer:json;type:json" json:"tags" yaml:"tags"`
	Featured       bool      `gorm:"default:false" json:"featured" yaml:"featured"`
	Order          int       `gorm:"column:sort_order;default:0;index" json:"order" yaml:"order"`
	CreatedAt      time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt      time.Time `json:"updatedAt" yaml:"-"`
}

func (Journey) TableName() string {
	return "journeys"
}

// HasLevel 判断关卡是否属于该旅程
func (j *Journey) HasLevel(levelID string) bool {
	for _, id := range j.LevelIDs {
		if id == levelID {
			return true
		}
	}
	return false
}

// LearningPath 旧版"学习路径"定义，仅供迁移读取
type LearningPath struct {
	ID             string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	Icon           string    `gorm:"size:32" json:"icon"`
	Difficulty     string    `gorm:"size:50" json:"difficulty"`
	EstimatedHours int       `json:"estimatedHours"`
	LevelIDs       []string  `gorm:"column:level_ids;serializer:json;type:json" json:"levelIds"`
	Prerequisites  []string  `gorm:"serializer:json;type:json" json:"prerequisites"`
	BadgeID        string    `gorm:"size:64" json:"badgeId"`
	Categories     []string  `gorm:"serializer:json;type:json" json:"categories"`
	Tags           []string  `gorm:"serializer:json;type:json" json:"tags"`
	Featured       bool      `json:"featured"`
	Order          int       `gorm:"column:sort_order" json:"order"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (LearningPath) TableName() string {
	return "learning_paths"
}

// ToJourney 将旧版路径转换为旅程
func (p LearningPath) ToJourney() Journey {
	return Journey{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Icon:           p.Icon,
		Difficulty:     p.Difficulty,
		EstimatedHours: p.EstimatedHours,
		LevelIDs:       p.LevelIDs,
		Prerequisites:  p.Prerequisites,
		BadgeID:        p.BadgeID,
		Categories:     p.Categories,
		Tags:           p.Tags,
		Featured:       p.Featured,
		Order:          p.Order,
	}
}
