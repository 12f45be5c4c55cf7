// Package posts holds the content records: posts, likes and commentaries.
package posts

import (
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// Post is a piece of content owned by a user. CreatedAt is settable so the
// publisher job can backdate a scheduled post to its requested time.
type Post struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"not null;size:255" json:"title"`
	Content   string    `gorm:"not null" json:"content"`
	Image     *string   `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// PostNotFoundError represents an error when a post is not found
type PostNotFoundError struct {
	ID uint
}

func (e *PostNotFoundError) Error() string {
	return fmt.Sprintf("post not found: %d", e.ID)
}

// NewPostNotFoundError creates a new PostNotFoundError
func NewPostNotFoundError(id uint) *PostNotFoundError {
	return &PostNotFoundError{ID: id}
}

// Summary is the list representation of a post.
type Summary struct {
	ID        uint      `json:"id"`
	Owner     string    `json:"owner"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     *string   `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// Detail is the retrieve representation: likes and commentaries included.
type Detail struct {
	ID           uint          `json:"id"`
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	Image        *string       `json:"image"`
	CreatedAt    time.Time     `json:"created_at"`
	Likes        []LikeInfo    `json:"likes"`
	Commentaries []CommentInfo `json:"commentaries"`
}

// Filter enumerates the supported list filters; unset fields do not
// constrain the query.
type Filter struct {
	Owner     string    // substring match on the owner's email
	Title     string    // substring match on title
	Content   string    // substring match on content
	CreatedOn time.Time // whole-day match on creation date
}

// CreatePost stores a new post. A zero CreatedAt is stamped with the current
// time; a non-zero one is preserved.
func CreatePost(logger *slog.Logger, db *gorm.DB, post *Post) error {
	if post.UserID == 0 {
		return errors.New("user ID is required")
	}
	if post.Title == "" {
		return errors.New("post title is required")
	}
	if post.Content == "" {
		return errors.New("post content is required")
	}

	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(post).Error
	})
}

// GetPostByID retrieves a post by ID.
func GetPostByID(db *gorm.DB, id uint) (*Post, error) {
	var post Post
	if err := db.Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewPostNotFoundError(id)
		}
		return nil, fmt.Errorf("unexpected error querying post: %w", err)
	}
	return &post, nil
}

// UpdatePost updates the mutable fields of an existing post.
func UpdatePost(logger *slog.Logger, db *gorm.DB, post *Post) error {
	if post.ID == 0 {
		return errors.New("post ID is required")
	}
	if post.Title == "" {
		return errors.New("post title is required")
	}

	// Only update specific fields to prevent overwriting user_id
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Model(post).
			Select("title", "content", "image").
			Updates(map[string]interface{}{
				"title":   post.Title,
				"content": post.Content,
				"image":   post.Image,
			}).Error
	})
}

// DeletePost deletes a post together with its likes and commentaries.
func DeletePost(logger *slog.Logger, db *gorm.DB, id uint) error {
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&Post{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("post_id = ?", id).Delete(&Like{}).Error; err != nil {
			return err
		}
		return tx.Where("post_id = ?", id).Delete(&Commentary{}).Error
	})
}

// ListPosts returns post summaries matching the filter, in creation order.
func ListPosts(db *gorm.DB, filter Filter) ([]Summary, error) {
	query := summaryQuery(db)

	if filter.Owner != "" {
		query = query.Where("users.email LIKE ?", "%"+filter.Owner+"%")
	}
	if filter.Title != "" {
		query = query.Where("posts.title LIKE ?", "%"+filter.Title+"%")
	}
	if filter.Content != "" {
		query = query.Where("posts.content LIKE ?", "%"+filter.Content+"%")
	}
	if !filter.CreatedOn.IsZero() {
		query = query.Where("date(posts.created_at) = ?", filter.CreatedOn.Format("2006-01-02"))
	}

	var summaries []Summary
	if err := query.Order("posts.id").Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetPostDetail returns the retrieve representation of a post.
func GetPostDetail(db *gorm.DB, id uint) (*Detail, error) {
	post, err := GetPostByID(db, id)
	if err != nil {
		return nil, err
	}

	likes, err := ListLikes(db, id)
	if err != nil {
		return nil, err
	}

	comments, err := ListPostComments(db, id)
	if err != nil {
		return nil, err
	}

	return &Detail{
		ID:           post.ID,
		Title:        post.Title,
		Content:      post.Content,
		Image:        post.Image,
		CreatedAt:    post.CreatedAt,
		Likes:        likes,
		Commentaries: comments,
	}, nil
}

// MyPosts returns all posts owned by the caller, unfiltered, in store order.
func MyPosts(db *gorm.DB, userID uint) ([]Summary, error) {
	var summaries []Summary
	err := summaryQuery(db).
		Where("posts.user_id = ?", userID).
		Order("posts.id").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// PostsByOwners returns all posts owned by any of the given users - the feed
// composer's flat containment filter, no ranking or recency decay.
func PostsByOwners(db *gorm.DB, ownerIDs []uint) ([]Summary, error) {
	if len(ownerIDs) == 0 {
		return []Summary{}, nil
	}

	var summaries []Summary
	err := summaryQuery(db).
		Where("posts.user_id IN ?", ownerIDs).
		Order("posts.id").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func summaryQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&Post{}).
		Select("posts.id, posts.title, posts.content, posts.image, posts.created_at, users.email AS owner").
		Joins("JOIN users ON users.id = posts.user_id")
}
