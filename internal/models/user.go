package models

import (
	"time"
)

// User 用户目录（由主系统维护，论坛只读）
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	ProfilePhoto string    `json:"profile_photo"` // 头像 URL
	Role         string    `gorm:"size:20;default:'volunteer';not null" json:"role"` // admin, staff, volunteer, sponsor, scholar
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
