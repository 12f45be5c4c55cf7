package posts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// Commentary is a comment on a post. Append-only: identical comments from the
// same user are all kept as distinct rows.
type Commentary struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Content   string    `gorm:"not null" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Commentary) TableName() string {
	return "commentaries"
}

// ErrEmptyContent is returned when a comment has no content.
var ErrEmptyContent = errors.New("comment content cannot be empty")

// CommentNotFoundError represents an error when a comment is not found
type CommentNotFoundError struct {
	ID uint
}

func (e *CommentNotFoundError) Error() string {
	return fmt.Sprintf("comment not found: %d", e.ID)
}

// CommentInfo is the wire representation of a comment.
type CommentInfo struct {
	ID        uint      `json:"id"`
	UserEmail string    `json:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// AddComment appends a new comment to the post; it never toggles or mutates
// an existing row.
func AddComment(logger *slog.Logger, db *gorm.DB, userID, postID uint, content string) (*Commentary, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	if _, err := GetPostByID(db, postID); err != nil {
		return nil, err
	}

	comment := Commentary{
		UserID:  userID,
		PostID:  postID,
		Content: content,
	}

	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetCommentByID retrieves a single comment.
func GetCommentByID(db *gorm.DB, id uint) (*Commentary, error) {
	var comment Commentary
	if err := db.Where("id = ?", id).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &CommentNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("unexpected error querying comment: %w", err)
	}
	return &comment, nil
}

// DeleteComment deletes a comment by ID.
func DeleteComment(logger *slog.Logger, db *gorm.DB, id uint) error {
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&Commentary{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ListComments returns all comments, newest last.
func ListComments(db *gorm.DB) ([]CommentInfo, error) {
	return commentQuery(db, nil)
}

// ListPostComments returns the comments on one post in creation order.
func ListPostComments(db *gorm.DB, postID uint) ([]CommentInfo, error) {
	return commentQuery(db, &postID)
}

func commentQuery(db *gorm.DB, postID *uint) ([]CommentInfo, error) {
	query := db.Model(&Commentary{}).
		Select("commentaries.id, commentaries.content, commentaries.created_at, users.email AS user_email").
		Joins("JOIN users ON users.id = commentaries.user_id")

	if postID != nil {
		query = query.Where("commentaries.post_id = ?", *postID)
	}

	var comments []CommentInfo
	if err := query.Order("commentaries.id").Scan(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
