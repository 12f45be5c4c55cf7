// Package jobs runs the deferred side of post scheduling: a durable delayed
// queue plus the background publisher that drains it.
package jobs

import (
	"log/slog"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"mingle/internal/posts"
)

// Queue accepts a unit of work to run no earlier than its publish time.
// Submission returns as soon as the job is enqueued; execution happens on the
// publisher's timeline with no synchronous completion and no upper bound
// beyond "at or after PublishAt", at-least-once.
type Queue interface {
	Submit(job *posts.ScheduledPost) error
}

// TableQueue is the durable Queue backed by the scheduled_posts table.
type TableQueue struct {
	dbManager cartridge.DBManager
	logger    *slog.Logger
}

var _ Queue = (*TableQueue)(nil)

// NewTableQueue creates a queue over the given database.
func NewTableQueue(dbManager cartridge.DBManager, logger *slog.Logger) *TableQueue {
	return &TableQueue{
		dbManager: dbManager,
		logger:    logger,
	}
}

// Submit persists the job. Validation has already happened when the job was
// built; a row in the table is the acknowledgement.
func (q *TableQueue) Submit(job *posts.ScheduledPost) error {
	db := q.dbManager.GetConnection()

	err := sqlite.PerformWrite(q.logger, db, func(tx *gorm.DB) error {
		return tx.Create(job).Error
	})
	if err != nil {
		return err
	}

	q.logger.Info("Scheduled post enqueued",
		slog.Uint64("userID", uint64(job.UserID)),
		slog.String("title", job.Title),
		slog.Time("publishAt", job.PublishAt))
	return nil
}
