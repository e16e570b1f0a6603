package services

import (
	"context"
	"fmt"
	"strings"

	"kkmk/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AddCommentInput struct {
	Content  string
	AuthorID uint
}

// AddComment 评论与给帖子作者的通知在同一事务内写入
func (s *ForumService) AddComment(ctx context.Context, postID uint, in AddCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrContentRequired
	}
	if err := s.filter.Check(content); err != nil {
		return nil, err
	}

	var comment models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "author_id", "title").First(&post, postID).Error; err != nil {
			if isNotFound(err) {
				return ErrPostNotFound
			}
			return fmt.Errorf("查询帖子失败: %w", err)
		}
		author, err := lookupUser(tx, in.AuthorID)
		if err != nil {
			return err
		}

		comment = models.Comment{PostID: post.ID, Content: content, AuthorID: author.ID}
		if err := tx.Omit(clause.Associations).Create(&comment).Error; err != nil {
			return fmt.Errorf("创建评论失败: %w", err)
		}
		fillCommentAuthor(&comment, author)

		return notify(tx, post.AuthorID, author, models.NotificationTypeNewComment, post.ID,
			fmt.Sprintf("%s commented on your post", author.Name))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("comment added",
		zap.Uint("post_id", postID),
		zap.Uint("comment_id", comment.ID),
		zap.Uint("author_id", comment.AuthorID))
	return &comment, nil
}
