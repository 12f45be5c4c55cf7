package posts

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ScheduledPost is a pending unit of work in the durable delayed queue: a
// post to be created no earlier than PublishAt. It carries no post id - the
// post does not exist until the publisher runs.
type ScheduledPost struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"not null;size:255" json:"title"`
	Content   string    `gorm:"not null" json:"content"`
	PublishAt time.Time `gorm:"not null;index" json:"publish_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (ScheduledPost) TableName() string {
	return "scheduled_posts"
}

// ErrScheduleNotFuture is returned when the requested publish time is not
// strictly in the future. The check runs at submission only; the publisher
// trusts the queue for execution-time ordering.
var ErrScheduleNotFuture = errors.New("scheduled time must be in the future")

// NewScheduledPost validates and builds a queue entry. now is the
// submission wall-clock time the future check is made against.
func NewScheduledPost(userID uint, title, content string, publishAt, now time.Time) (*ScheduledPost, error) {
	if userID == 0 {
		return nil, errors.New("user ID is required")
	}
	if title == "" {
		return nil, errors.New("post title is required")
	}
	if content == "" {
		return nil, errors.New("post content is required")
	}
	if !publishAt.After(now) {
		return nil, ErrScheduleNotFuture
	}

	return &ScheduledPost{
		UserID:    userID,
		Title:     title,
		Content:   content,
		PublishAt: publishAt.UTC(),
	}, nil
}

// DueScheduledPosts returns up to limit queue entries whose publish time has
// arrived, oldest first.
func DueScheduledPosts(db *gorm.DB, now time.Time, limit int) ([]ScheduledPost, error) {
	var due []ScheduledPost
	err := db.Where("publish_at <= ?", now.UTC()).
		Order("publish_at").
		Limit(limit).
		Find(&due).Error
	if err != nil {
		return nil, err
	}
	return due, nil
}

// CountScheduledPosts returns the number of entries waiting in the queue.
func CountScheduledPosts(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&ScheduledPost{}).Count(&count).Error
	return count, err
}
