package models

import (
	"time"
)

// 事实表：计数器（likes / votes / total_votes）都由这些行推导。
// (subject_id, user_id) 上的唯一索引是“每人最多一次”的最后防线。

type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_like_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_like_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostLike) TableName() string {
	return "forum_post_likes"
}

type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_like_user" json:"comment_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_like_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (CommentLike) TableName() string {
	return "forum_comment_likes"
}

type PollVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PollID    uint      `gorm:"not null;uniqueIndex:idx_poll_vote_user" json:"poll_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_poll_vote_user;index" json:"user_id"`
	OptionID  uint      `gorm:"not null;index" json:"option_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (PollVote) TableName() string {
	return "forum_poll_votes"
}
