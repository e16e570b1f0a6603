package models

import (
	"time"
)

const (
	PostTypeDiscussion = "discussion"
	PostTypePoll       = "poll"
)

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"-"`
	Category  string    `gorm:"size:50;not null;index;default:'General'" json:"category"`
	Type      string    `gorm:"size:20;not null;default:'discussion'" json:"type"`
	ImageURL  *string   `json:"image_url"`
	Likes     int       `gorm:"not null;default:0" json:"likes"` // = COUNT(forum_post_likes)，只由论坛引擎写入
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments"`
	Poll     *Poll     `gorm:"foreignKey:PostID" json:"poll"`

	// 非数据库字段，用于查询时填充
	AuthorName   string `gorm:"-" json:"author_name"`
	AuthorAvatar string `gorm:"-" json:"author_avatar"`
	AuthorRole   string `gorm:"-" json:"author_role,omitempty"`
	ContentHTML  string `gorm:"-" json:"content_html,omitempty"`
}

func (Post) TableName() string {
	return "forum_posts"
}

// IsPoll reports whether the post carries a poll.
func (p *Post) IsPoll() bool {
	return p.Type == PostTypePoll
}
