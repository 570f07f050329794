package model

import "time"

// 关卡分类
const (
	CategoryHTML       = "HTML"
	CategoryCSS        = "CSS"
	CategoryJavaScript = "JavaScript"
)

// Task 关卡内的单个编码任务
type Task struct {
	ID             string `json:"id" yaml:"id"`
	Title          string `json:"title" yaml:"title"`
	Description    string `json:"description" yaml:"description"`
	Instructions   string `json:"instructions" yaml:"instructions"`
	InitialCode    string `json:"initialCode" yaml:"initialCode"`
	Solution       string `json:"solution" yaml:"solution"`
	ExpectedOutput string `json:"expectedOutput" yaml:"expectedOutput"`
	ErrorHint      string `json:"errorHint" yaml:"errorHint"`
}

// swagger:model Level
type Level struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id" yaml:"id"`
	Title        string    `gorm:"size:255;not null" json:"title" yaml:"title"`
	Description  string    `gorm:"type:text" json:"description" yaml:"description"`
	Category     string    `gorm:"size:50;index" json:"category" yaml:"category"`
	Number       int       `gorm:"index" json:"number" yaml:"number"`
	Difficulty   string    `gorm:"size:50" json:"difficulty" yaml:"difficulty"`
	PointsToEarn int       `gorm:"default:100" json:"pointsToEarn" yaml:"pointsToEarn"`
	Tasks        []Task    `gorm:"serializer:json;type:json" json:"tasks" yaml:"tasks"`
	Published    bool      `gorm:"default:true" json:"published" yaml:"published"`
	CreatedBy    string    `gorm:"size:64" json:"createdBy,omitempty" yaml:"-"`
	CreatedAt    time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt    time.Time `json:"updatedAt" yaml:"-"`
}

func (Level) TableName() string {
	return "levels"
}

// CategoryForNumber 按关卡序号划分分类：1-5 HTML，6-10 CSS，其余 JavaScript
func CategoryForNumber(n int) string {
	switch {
	case n >= 1 && n <= 5:
		return CategoryHTML
	case n >= 6 && n <= 10:
		return CategoryCSS
	default:
		return CategoryJavaScript
	}
}
