package services

import (
	"errors"
	"fmt"

	"kkmk/internal/models"
	"kkmk/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForumService 论坛一致性引擎：点赞、投票、评论、帖子增删改。
// 所有写操作都在一个数据库事务里完成，计数器只在同一事务内随事实表变化；
// 并发控制完全交给数据库（行锁 + 唯一索引），引擎本身不持有任何共享状态。
type ForumService struct {
	db     *gorm.DB
	filter ContentFilter
	log    *zap.Logger
}

func NewForumService(db *gorm.DB, filter ContentFilter, log *zap.Logger) *ForumService {
	if filter == nil {
		filter = NewWordFilter()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ForumService{db: db, filter: filter, log: log}
}

// lookupUser 从用户目录读取作者/操作者信息
func lookupUser(tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := tx.Select("id", "name", "profile_photo", "role").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

// lockPost 锁住帖子行（FOR UPDATE），同一帖子上的点赞、更新、删除因此串行
func lockPost(tx *gorm.DB, id uint) (*models.Post, error) {
	var post models.Post
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("查询帖子失败: %w", err)
	}
	return &post, nil
}

// lockPoll 锁住帖子的投票行；投票与编辑投票在这里串行
func lockPoll(tx *gorm.DB, postID uint) (*models.Poll, error) {
	var poll models.Poll
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("post_id = ?", postID).First(&poll).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("查询投票失败: %w", err)
	}
	return &poll, nil
}

// notify 写入通知；接收者就是操作者本人时跳过
func notify(tx *gorm.DB, recipientID uint, actor *models.User, typ models.NotificationType, relatedID uint, content string) error {
	if recipientID == actor.ID {
		return nil
	}
	n := models.Notification{
		UserID:      recipientID,
		Type:        typ,
		Content:     content,
		RelatedID:   relatedID,
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorAvatar: actor.ProfilePhoto,
	}
	if err := tx.Create(&n).Error; err != nil {
		return fmt.Errorf("创建通知失败: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// fillPostAuthor 把作者信息、渲染后的正文填到读模型字段
func fillPostAuthor(post *models.Post) {
	post.AuthorName = post.Author.Name
	post.AuthorAvatar = post.Author.ProfilePhoto
	post.AuthorRole = post.Author.Role
	post.ContentHTML = string(utils.RenderMarkdown(post.Content))
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	for i := range post.Comments {
		fillCommentAuthor(&post.Comments[i], &post.Comments[i].Author)
	}
}

func fillCommentAuthor(comment *models.Comment, author *models.User) {
	comment.AuthorName = author.Name
	comment.AuthorAvatar = author.ProfilePhoto
	comment.AuthorRole = author.Role
}
