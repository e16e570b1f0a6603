package services

import (
	"context"
	"fmt"
	"strings"

	"kkmk/internal/models"

	"gorm.io/gorm"
)

const (
	DefaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

type ListPostsOptions struct {
	Category string
	Page     int // 0 表示不分页，返回全部
	PerPage  int
}

// postQuery 帖子读模型：作者、评论（新的在前）及评论作者、投票及选项
func postQuery(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		Preload("Comments.Author").
		Preload("Poll").
		Preload("Poll.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
}

// ListPosts 按时间倒序列出帖子
func (s *ForumService) ListPosts(ctx context.Context, opts ListPostsOptions) ([]models.Post, error) {
	q := postQuery(s.db.WithContext(ctx)).Order("created_at DESC, id DESC")
	if c := strings.TrimSpace(opts.Category); c != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(c))
	}
	if opts.Page > 0 {
		perPage := opts.PerPage
		if perPage <= 0 {
			perPage = 20
		}
		q = q.Limit(perPage).Offset((opts.Page - 1) * perPage)
	}

	posts := []models.Post{}
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("查询帖子列表失败: %w", err)
	}
	for i := range posts {
		fillPostAuthor(&posts[i])
	}
	return posts, nil
}

func (s *ForumService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	var post models.Post
	if err := postQuery(s.db.WithContext(ctx)).First(&post, postID).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("查询帖子失败: %w", err)
	}
	fillPostAuthor(&post)
	return &post, nil
}

func (s *ForumService) LikedPostIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&models.PostLike{}).
		Where("user_id = ?", userID).
		Order("post_id").
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("查询点赞帖子失败: %w", err)
	}
	return ids, nil
}

func (s *ForumService) LikedCommentIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&models.CommentLike{}).
		Where("user_id = ?", userID).
		Order("comment_id").
		Pluck("comment_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("查询点赞评论失败: %w", err)
	}
	return ids, nil
}

// VotedPollPostIDs 返回用户投过票的帖子 ID（不是 poll ID）
func (s *ForumService) VotedPollPostIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&models.PollVote{}).
		Joins("JOIN forum_polls ON forum_polls.id = forum_poll_votes.poll_id").
		Where("forum_poll_votes.user_id = ?", userID).
		Order("forum_polls.post_id").
		Pluck("forum_polls.post_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("查询投票记录失败: %w", err)
	}
	return ids, nil
}

func (s *ForumService) ListNotifications(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	limit = min(limit, maxNotificationLimit)
	notifications := []models.Notification{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("查询通知失败: %w", err)
	}
	return notifications, nil
}

// ListCategories 分类及其帖子数
func (s *ForumService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}

	type countResult struct {
		Category string
		Count    int
	}
	var results []countResult
	if err := s.db.WithContext(ctx).Model(&models.Post{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("统计分类帖子数失败: %w", err)
	}
	countMap := make(map[string]int, len(results))
	for _, r := range results {
		countMap[strings.ToLower(r.Category)] += r.Count
	}
	for i := range categories {
		categories[i].PostCount = countMap[strings.ToLower(categories[i].Name)]
	}
	return categories, nil
}
