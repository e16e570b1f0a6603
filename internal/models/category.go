package models

import (
	"time"
)

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;unique" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	// 非数据库字段，用于查询时填充
	PostCount int `gorm:"-" json:"post_count"`
}

func (Category) TableName() string {
	return "forum_categories"
}
