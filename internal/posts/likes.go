package posts

import (
	"time"

	"log/slog"

	"gorm.io/gorm"

	"mingle/internal/pkg/toggle"
)

// Like marks that a user liked a post. The composite unique index arbitrates
// concurrent toggles on the (user, post) pair.
type Like struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_likes_user_post" json:"post_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Like) TableName() string {
	return "likes"
}

// LikeInfo names one like on a post.
type LikeInfo struct {
	UserEmail string    `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// ToggleLike flips the like from the caller on the given post. Unlike
// follows, liking one's own post is allowed.
func ToggleLike(logger *slog.Logger, db *gorm.DB, userID, postID uint) (toggle.Outcome, error) {
	if _, err := GetPostByID(db, postID); err != nil {
		return 0, err
	}

	return toggle.Flip(logger, db, &Like{UserID: userID, PostID: postID})
}

// HasLiked reports whether the user currently likes the post.
func HasLiked(db *gorm.DB, userID, postID uint) (bool, error) {
	var count int64
	err := db.Model(&Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

// ListLikes returns who liked the given post, in like order.
func ListLikes(db *gorm.DB, postID uint) ([]LikeInfo, error) {
	var likes []LikeInfo
	err := db.Model(&Like{}).
		Select("users.email AS user_email, likes.created_at").
		Joins("JOIN users ON users.id = likes.user_id").
		Where("likes.post_id = ?", postID).
		Order("likes.id").
		Scan(&likes).Error
	if err != nil {
		return nil, err
	}
	return likes, nil
}
