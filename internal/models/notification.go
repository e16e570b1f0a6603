package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeNewComment  NotificationType = "new_comment"
	NotificationTypePostLike    NotificationType = "post_like"
	NotificationTypeCommentLike NotificationType = "comment_like"
)

// Notification 只写一次，不更新。Actor* 为触发时的快照。
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	UserID      uint             `gorm:"not null;index" json:"user_id"` // Receiver
	Type        NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Content     string           `gorm:"type:text;not null" json:"content"`
	RelatedID   uint             `gorm:"not null;index" json:"related_id"` // 触发通知的帖子
	ActorID     uint             `gorm:"not null" json:"actor_id"`
	ActorName   string           `json:"actor_name"`
	ActorAvatar string           `json:"actor_avatar"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
