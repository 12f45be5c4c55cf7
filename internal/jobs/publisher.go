package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"mingle/internal/accounts"
	"mingle/internal/config"
	"mingle/internal/pkg/async"
	"mingle/internal/posts"
)

// publishWorkers bounds how many due entries are published concurrently.
const publishWorkers = 4

// PublisherJob drains due scheduled posts into real posts.
type PublisherJob struct {
	dbManager cartridge.DBManager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewPublisherJob(dbManager cartridge.DBManager, logger *slog.Logger, cfg *config.Config) *PublisherJob {
	return &PublisherJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run publishes every queue entry whose publish time has arrived. The created
// post gets the originally requested time as its creation timestamp so
// chronological ordering reflects intent, not execution jitter. An entry whose
// user no longer exists is logged and abandoned - no retry, the user is gone.
// Entries are removed only after their post exists, so a crash in between
// republishes (at-least-once).
func (j *PublisherJob) Run() error {
	db := j.dbManager.GetConnection()
	now := time.Now().UTC()

	due, err := posts.DueScheduledPosts(db, now, j.cfg.PublishBatchSize)
	if err != nil {
		j.logger.Error("Failed to query due scheduled posts", slog.Any("error", err))
		return err
	}

	if len(due) == 0 {
		j.logger.Debug("No scheduled posts due")
		return nil
	}

	j.logger.Info("Publishing due scheduled posts", slog.Int("count", len(due)))

	tasks := make([]async.Task, 0, len(due))
	for _, entry := range due {
		entry := entry
		tasks = append(tasks, async.Task{
			Name: fmt.Sprintf("scheduled_post_%d", entry.ID),
			Execute: func() (interface{}, error) {
				return nil, j.publish(entry)
			},
		})
	}

	pool := async.NewPool(publishWorkers)
	results := pool.Execute(context.Background(), tasks)

	published := 0
	for name, result := range results {
		if result.Err != nil {
			j.logger.Error("Failed to publish scheduled post",
				slog.String("job", name),
				slog.Any("error", result.Err))
			continue
		}
		published++
	}

	j.logger.Info("Scheduled posts published",
		slog.Int("published", published),
		slog.Int("failed", len(due)-published))

	return nil
}

func (j *PublisherJob) publish(entry posts.ScheduledPost) error {
	db := j.dbManager.GetConnection()

	// Re-resolve the user: the account may have been deleted since
	// submission.
	if _, err := accounts.FindByID(db, entry.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			j.logger.Warn("Abandoning scheduled post - user no longer exists",
				slog.Uint64("entryID", uint64(entry.ID)),
				slog.Uint64("userID", uint64(entry.UserID)),
				slog.String("title", entry.Title))
			return j.remove(entry.ID)
		}
		return fmt.Errorf("failed to resolve user %d: %w", entry.UserID, err)
	}

	post := posts.Post{
		UserID:    entry.UserID,
		Title:     entry.Title,
		Content:   entry.Content,
		CreatedAt: entry.PublishAt,
	}
	if err := posts.CreatePost(j.logger, db, &post); err != nil {
		return fmt.Errorf("failed to create post for entry %d: %w", entry.ID, err)
	}

	j.logger.Info("Published scheduled post",
		slog.Uint64("postID", uint64(post.ID)),
		slog.Uint64("userID", uint64(post.UserID)),
		slog.String("title", post.Title),
		slog.Time("createdAt", post.CreatedAt))

	return j.remove(entry.ID)
}

func (j *PublisherJob) remove(entryID uint) error {
	db := j.dbManager.GetConnection()
	return sqlite.PerformWrite(j.logger, db, func(tx *gorm.DB) error {
		return tx.Where("id = ?", entryID).Delete(&posts.ScheduledPost{}).Error
	})
}
