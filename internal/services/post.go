package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"kkmk/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultCategory = "General"

type CreatePostInput struct {
	Title    string
	Content  string
	Category string
	Type     string
	ImageURL *string
	AuthorID uint
	Poll     *PollInput
}

type UpdatePostInput struct {
	Title    *string
	Content  *string
	Category *string
	Poll     *PollInput
}

type PollInput struct {
	Question string            `json:"question"`
	Options  []PollOptionInput `json:"options"`
}

// PollOptionInput 兼容两种写法: "Apple" 或 {"id": 3, "text": "Apple"}
type PollOptionInput struct {
	ID   uint   `json:"id,omitempty"`
	Text string `json:"text"`
}

func (o *PollOptionInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &o.Text)
	}
	type plain PollOptionInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = PollOptionInput(p)
	return nil
}

// ParsePollPayload 解析 poll 字段。multipart 表单里它是 JSON 字符串，
// JSON 请求体里可能是对象，也可能是被再次编码的字符串。空值返回 nil。
func ParsePollPayload(raw []byte) (*PollInput, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, invalidPoll("malformed poll payload")
		}
		return ParsePollPayload([]byte(inner))
	}
	var poll PollInput
	if err := json.Unmarshal(raw, &poll); err != nil {
		return nil, invalidPoll("malformed poll payload")
	}
	return &poll, nil
}

// optionTexts 去掉首尾空白，丢弃空选项
func (p *PollInput) optionTexts() []string {
	texts := make([]string, 0, len(p.Options))
	for _, o := range p.Options {
		if t := strings.TrimSpace(o.Text); t != "" {
			texts = append(texts, t)
		}
	}
	return texts
}

// canonicalCategory 按名称（忽略大小写）匹配已有分类，返回库中的写法
func canonicalCategory(tx *gorm.DB, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultCategory, nil
	}
	var category models.Category
	err := tx.Where("LOWER(name) = ?", strings.ToLower(name)).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrInvalidCategory
	}
	if err != nil {
		return "", fmt.Errorf("查询分类失败: %w", err)
	}
	return category.Name, nil
}

// ValidatePost 规范化输入并做写库前的检查。handler 在保存图片之前调用它
func (s *ForumService) ValidatePost(ctx context.Context, in *CreatePostInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if in.Type == "" {
		in.Type = models.PostTypeDiscussion
	}

	if in.Title == "" {
		return ErrTitleRequired
	}
	var optionTexts []string
	switch in.Type {
	case models.PostTypeDiscussion:
		if in.Content == "" {
			return ErrContentRequired
		}
	case models.PostTypePoll:
		if in.Poll == nil {
			return invalidPoll("poll payload is required")
		}
		optionTexts = in.Poll.optionTexts()
		if len(optionTexts) < 2 {
			return invalidPoll("at least 2 options are required")
		}
		in.Poll.Question = strings.TrimSpace(in.Poll.Question)
		if in.Poll.Question == "" {
			in.Poll.Question = in.Title
		}
	default:
		return ErrInvalidPostType
	}

	fields := append([]string{in.Title, in.Content}, optionTexts...)
	if in.Poll != nil {
		fields = append(fields, in.Poll.Question)
	}
	if err := s.filter.Check(fields...); err != nil {
		return err
	}
	_, err := canonicalCategory(s.db.WithContext(ctx), in.Category)
	return err
}

// CreatePost 创建帖子；type=poll 时同一事务内创建投票及选项，计数全部为 0
func (s *ForumService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := s.ValidatePost(ctx, &in); err != nil {
		return nil, err
	}
	var optionTexts []string
	if in.Type == models.PostTypePoll {
		optionTexts = in.Poll.optionTexts()
	}

	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		author, err := lookupUser(tx, in.AuthorID)
		if err != nil {
			return err
		}
		category, err := canonicalCategory(tx, in.Category)
		if err != nil {
			return err
		}

		post = models.Post{
			Title:    in.Title,
			Content:  in.Content,
			AuthorID: author.ID,
			Author:   *author,
			Category: category,
			Type:     in.Type,
			ImageURL: in.ImageURL,
		}
		if err := tx.Omit(clause.Associations).Create(&post).Error; err != nil {
			return fmt.Errorf("创建帖子失败: %w", err)
		}

		if in.Type == models.PostTypePoll {
			poll := models.Poll{PostID: post.ID, Question: in.Poll.Question}
			if err := tx.Omit(clause.Associations).Create(&poll).Error; err != nil {
				return fmt.Errorf("创建投票失败: %w", err)
			}
			poll.Options = make([]models.PollOption, len(optionTexts))
			for i, text := range optionTexts {
				poll.Options[i] = models.PollOption{PollID: poll.ID, Text: text}
			}
			if err := tx.Create(&poll.Options).Error; err != nil {
				return fmt.Errorf("创建投票选项失败: %w", err)
			}
			post.Poll = &poll
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 响应里的作者信息是创建时的快照，之后的读取走实时关联
	fillPostAuthor(&post)
	s.log.Info("post created",
		zap.Uint("post_id", post.ID),
		zap.Uint("author_id", post.AuthorID),
		zap.String("type", post.Type))
	return &post, nil
}

// UpdatePost 只有作者可以修改。投票一旦有人投过，问题和有票的选项都不能再改；
// 零票选项逐个带 votes = 0 条件更新，条件落空说明期间有人投票，整个事务回滚。
func (s *ForumService) UpdatePost(ctx context.Context, postID, userID uint, in UpdatePostInput) (*models.Post, error) {
	var fields []string
	for _, f := range []*string{in.Title, in.Content} {
		if f != nil {
			fields = append(fields, *f)
		}
	}
	if in.Poll != nil {
		fields = append(fields, in.Poll.Question)
		for _, o := range in.Poll.Options {
			fields = append(fields, o.Text)
		}
	}
	if err := s.filter.Check(fields...); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := lockPost(tx, postID)
		if err != nil {
			return err
		}
		if post.AuthorID != userID {
			return ErrNotPostAuthor
		}
		if in.Poll != nil && !post.IsPoll() {
			return invalidPoll("post %d is not a poll", post.ID)
		}

		updates := map[string]any{}
		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title == "" {
				return ErrTitleRequired
			}
			updates["title"] = title
		}
		if in.Content != nil {
			content := strings.TrimSpace(*in.Content)
			if content == "" && !post.IsPoll() {
				return ErrContentRequired
			}
			updates["content"] = content
		}
		if in.Category != nil {
			category, err := canonicalCategory(tx, *in.Category)
			if err != nil {
				return err
			}
			updates["category"] = category
		}
		if len(updates) > 0 {
			if err := tx.Model(post).Updates(updates).Error; err != nil {
				return fmt.Errorf("更新帖子失败: %w", err)
			}
		}

		if in.Poll != nil {
			if err := updatePoll(tx, post.ID, in.Poll); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("post updated", zap.Uint("post_id", postID), zap.Uint("user_id", userID))
	return s.GetPost(ctx, postID)
}

func updatePoll(tx *gorm.DB, postID uint, in *PollInput) error {
	poll, err := lockPoll(tx, postID)
	if err != nil {
		return err
	}

	question := strings.TrimSpace(in.Question)
	if question != "" && question != poll.Question {
		if poll.TotalVotes > 0 {
			return ErrPollLocked
		}
		if err := tx.Model(poll).Update("question", question).Error; err != nil {
			return fmt.Errorf("更新投票问题失败: %w", err)
		}
	}

	var options []models.PollOption
	if err := tx.Where("poll_id = ?", poll.ID).Find(&options).Error; err != nil {
		return fmt.Errorf("查询投票选项失败: %w", err)
	}
	current := make(map[uint]models.PollOption, len(options))
	for _, o := range options {
		current[o.ID] = o
	}

	for _, o := range in.Options {
		text := strings.TrimSpace(o.Text)
		existing, ok := current[o.ID]
		if !ok {
			return ErrOptionNotFound
		}
		if text == "" || text == existing.Text {
			continue
		}
		if existing.Votes > 0 {
			return ErrPollLocked
		}
		res := tx.Model(&models.PollOption{}).
			Where("id = ? AND poll_id = ? AND votes = 0", o.ID, poll.ID).
			Update("text", text)
		if res.Error != nil {
			return fmt.Errorf("更新投票选项失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrPollLocked
		}
	}
	return nil
}

// DeletePost 作者删除帖子，按固定顺序级联删除，任何一步失败都整体回滚
func (s *ForumService) DeletePost(ctx context.Context, postID, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := lockPost(tx, postID)
		if err != nil {
			return err
		}
		if post.AuthorID != userID {
			return ErrNotPostAuthor
		}

		comments := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", postID)
		polls := tx.Model(&models.Poll{}).Select("id").Where("post_id = ?", postID)

		steps := []struct {
			name  string
			model any
			query string
			arg   any
		}{
			{"post likes", &models.PostLike{}, "post_id = ?", postID},
			{"comment likes", &models.CommentLike{}, "comment_id IN (?)", comments},
			{"comments", &models.Comment{}, "post_id = ?", postID},
			{"poll votes", &models.PollVote{}, "poll_id IN (?)", polls},
			{"poll options", &models.PollOption{}, "poll_id IN (?)", polls},
			{"poll", &models.Poll{}, "post_id = ?", postID},
		}
		for _, step := range steps {
			if err := tx.Where(step.query, step.arg).Delete(step.model).Error; err != nil {
				return fmt.Errorf("删除%s失败: %w", step.name, err)
			}
		}
		if err := tx.Delete(&models.Post{}, postID).Error; err != nil {
			return fmt.Errorf("删除帖子失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("post deleted", zap.Uint("post_id", postID), zap.Uint("user_id", userID))
	return nil
}
