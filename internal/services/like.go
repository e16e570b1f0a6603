package services

import (
	"context"
	"fmt"

	"kkmk/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 计数器每次都按事实表重新统计，而不是 +1/-1
var (
	postLikeCount    = "(SELECT COUNT(*) FROM forum_post_likes WHERE post_id = ?)"
	commentLikeCount = "(SELECT COUNT(*) FROM forum_comment_likes WHERE comment_id = ?)"
)

// TogglePostLike increment=true 点赞（重复点赞返回 ErrAlreadyLikedPost），
// increment=false 取消点赞（未点过也视为成功）。返回更新后的帖子。
func (s *ForumService) TogglePostLike(ctx context.Context, postID, userID uint, increment bool) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockPost(tx, postID)
		if err != nil {
			return err
		}

		if increment {
			actor, err := lookupUser(tx, userID)
			if err != nil {
				return err
			}
			var count int64
			if err := tx.Model(&models.PostLike{}).
				Where("post_id = ? AND user_id = ?", postID, userID).
				Count(&count).Error; err != nil {
				return fmt.Errorf("查询点赞失败: %w", err)
			}
			if count > 0 {
				return ErrAlreadyLikedPost
			}
			if err := tx.Create(&models.PostLike{PostID: postID, UserID: userID}).Error; err != nil {
				if isDuplicate(err) {
					return ErrAlreadyLikedPost
				}
				return fmt.Errorf("点赞失败: %w", err)
			}
			if err := notify(tx, locked.AuthorID, actor, models.NotificationTypePostLike, postID,
				fmt.Sprintf("%s liked your post \"%s\"", actor.Name, locked.Title)); err != nil {
				return err
			}
		} else {
			if err := tx.Where("post_id = ? AND user_id = ?", postID, userID).
				Delete(&models.PostLike{}).Error; err != nil {
				return fmt.Errorf("取消点赞失败: %w", err)
			}
		}

		if err := tx.Model(locked).
			UpdateColumn("likes", gorm.Expr(postLikeCount, postID)).Error; err != nil {
			return fmt.Errorf("更新点赞数失败: %w", err)
		}
		return postQuery(tx).First(&post, postID).Error
	})
	if err != nil {
		return nil, err
	}

	fillPostAuthor(&post)
	s.log.Debug("post like toggled",
		zap.Uint("post_id", postID),
		zap.Uint("user_id", userID),
		zap.Bool("increment", increment),
		zap.Int("likes", post.Likes))
	return &post, nil
}

// ToggleCommentLike 同上，评论必须属于该帖子；通知关联的是帖子 ID
func (s *ForumService) ToggleCommentLike(ctx context.Context, postID, commentID, userID uint, increment bool) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Comment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND post_id = ?", commentID, postID).
			First(&locked).Error; err != nil {
			if isNotFound(err) {
				return ErrCommentNotFound
			}
			return fmt.Errorf("查询评论失败: %w", err)
		}

		if increment {
			actor, err := lookupUser(tx, userID)
			if err != nil {
				return err
			}
			var count int64
			if err := tx.Model(&models.CommentLike{}).
				Where("comment_id = ? AND user_id = ?", commentID, userID).
				Count(&count).Error; err != nil {
				return fmt.Errorf("查询点赞失败: %w", err)
			}
			if count > 0 {
				return ErrAlreadyLikedComment
			}
			if err := tx.Create(&models.CommentLike{CommentID: commentID, UserID: userID}).Error; err != nil {
				if isDuplicate(err) {
					return ErrAlreadyLikedComment
				}
				return fmt.Errorf("点赞失败: %w", err)
			}

			var post models.Post
			if err := tx.Select("id", "title").First(&post, postID).Error; err != nil {
				return fmt.Errorf("查询帖子失败: %w", err)
			}
			if err := notify(tx, locked.AuthorID, actor, models.NotificationTypeCommentLike, postID,
				fmt.Sprintf("%s liked your comment on \"%s\"", actor.Name, post.Title)); err != nil {
				return err
			}
		} else {
			if err := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).
				Delete(&models.CommentLike{}).Error; err != nil {
				return fmt.Errorf("取消点赞失败: %w", err)
			}
		}

		if err := tx.Model(&locked).
			UpdateColumn("likes", gorm.Expr(commentLikeCount, commentID)).Error; err != nil {
			return fmt.Errorf("更新点赞数失败: %w", err)
		}
		return tx.Preload("Author").First(&comment, commentID).Error
	})
	if err != nil {
		return nil, err
	}

	fillCommentAuthor(&comment, &comment.Author)
	s.log.Debug("comment like toggled",
		zap.Uint("comment_id", commentID),
		zap.Uint("user_id", userID),
		zap.Bool("increment", increment),
		zap.Int("likes", comment.Likes))
	return &comment, nil
}
