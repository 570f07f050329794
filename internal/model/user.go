package model

import (
	"time"
)

type UserRole string

const (
	RoleUser    UserRole = "user"
	RoleCreator UserRole = "creator"
	RoleAdmin   UserRole = "admin"
)

// User 的 ID 是外部认证主体 ID（Google sub）或本地注册时生成的 uuid
// swagger:model User
type User struct {
	UUIDBase
	DisplayName string    `gorm:"size:100;not null" json:"displayName"`
	Email       string    `gorm:"size:191;uniqueIndex" json:"email"`
	Password    string    `gorm:"size:100" json:"-"`
	PhotoURL    string    `gorm:"type:text" json:"photoURL"`
	Role        UserRole  `gorm:"size:20;default:'user'" json:"role"`
	Level       int       `gorm:"default:1" json:"level"`
	Points      int       `gorm:"default:0;index" json:"points"`
	Disabled    bool      `gorm:"default:false" json:"disabled"`
	LastLogin   time.Time `json:"lastLogin"`
	LastSeen    time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

// UserCompletedLevel 扁平的已完成关卡集合
type UserCompletedLevel struct {
	UserID      string    `gorm:"primaryKey;type:varchar(64)" json:"userId"`
	LevelID     string    `gorm:"primaryKey;type:varchar(64)" json:"levelId"`
	CompletedAt time.Time `json:"completedAt"`
}

func (UserCompletedLevel) TableName() string {
	return "user_completed_levels"
}
