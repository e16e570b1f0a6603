package services

import (
	"context"
	"fmt"

	"kkmk/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CastPollVote 每人每个投票只能投一次。投票记录、选项票数、总票数在同一事务内更新，
// 投票行加锁保证并发投票与编辑投票互斥。
func (s *ForumService) CastPollVote(ctx context.Context, postID, optionID, userID uint) (*models.Poll, error) {
	var poll models.Poll
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockPoll(tx, postID)
		if err != nil {
			return err
		}
		if _, err := lookupUser(tx, userID); err != nil {
			return err
		}

		var option models.PollOption
		if err := tx.Where("id = ? AND poll_id = ?", optionID, locked.ID).First(&option).Error; err != nil {
			if isNotFound(err) {
				return ErrOptionNotFound
			}
			return fmt.Errorf("查询投票选项失败: %w", err)
		}

		var count int64
		if err := tx.Model(&models.PollVote{}).
			Where("poll_id = ? AND user_id = ?", locked.ID, userID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("查询投票记录失败: %w", err)
		}
		if count > 0 {
			return ErrAlreadyVoted
		}
		if err := tx.Create(&models.PollVote{PollID: locked.ID, UserID: userID, OptionID: option.ID}).Error; err != nil {
			if isDuplicate(err) {
				return ErrAlreadyVoted
			}
			return fmt.Errorf("投票失败: %w", err)
		}

		if err := tx.Model(&option).
			UpdateColumn("votes", gorm.Expr("votes + ?", 1)).Error; err != nil {
			return fmt.Errorf("更新选项票数失败: %w", err)
		}
		if err := tx.Model(locked).
			UpdateColumn("total_votes", gorm.Expr("total_votes + ?", 1)).Error; err != nil {
			return fmt.Errorf("更新总票数失败: %w", err)
		}

		return tx.Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).First(&poll, locked.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("poll vote cast",
		zap.Uint("post_id", postID),
		zap.Uint("option_id", optionID),
		zap.Uint("user_id", userID),
		zap.Int("total_votes", poll.TotalVotes))
	return &poll, nil
}
