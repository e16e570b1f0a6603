package models

// Poll 与 type=poll 的帖子一对一
type Poll struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	PostID     uint         `gorm:"not null;uniqueIndex" json:"-"`
	Question   string       `gorm:"type:text;not null" json:"question"`
	TotalVotes int          `gorm:"not null;default:0" json:"totalVotes"` // = SUM(options.votes) = COUNT(forum_poll_votes)
	Options    []PollOption `gorm:"foreignKey:PollID" json:"options"`
}

func (Poll) TableName() string {
	return "forum_polls"
}

type PollOption struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	PollID uint   `gorm:"not null;index" json:"-"`
	Text   string `gorm:"not null" json:"text"`
	Votes  int    `gorm:"not null;default:0" json:"votes"`
}

func (PollOption) TableName() string {
	return "forum_poll_options"
}
