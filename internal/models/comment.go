package models

import (
	"time"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"-"`
	Likes     int       `gorm:"not null;default:0" json:"likes"` // = COUNT(forum_comment_likes)
	CreatedAt time.Time `json:"created_at"`

	AuthorName   string `gorm:"-" json:"author_name"`
	AuthorAvatar string `gorm:"-" json:"author_avatar"`
	AuthorRole   string `gorm:"-" json:"author_role,omitempty"`
}

func (Comment) TableName() string {
	return "forum_comments"
}
