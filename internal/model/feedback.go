package model

// swagger:model Feedback
type Feedback struct {
	BaseModel
	UserID     string `gorm:"type:varchar(64);index" json:"userId"`
	LevelID    string `gorm:"size:64" json:"levelId"`
	Category   string `gorm:"size:50" json:"category"`
	Rating     int    `json:"rating"`
	Message    string `gorm:"type:text" json:"message"`
	AutoPrompt bool   `gorm:"default:false" json:"autoPrompt"`
}

func (Feedback) TableName() string {
	return "feedback"
}
