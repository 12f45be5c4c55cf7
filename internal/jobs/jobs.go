package jobs

import (
	"log/slog"

	"mingle/internal/database"
)

// NewJobs creates the job scheduler wired with the post publisher.
func NewJobs(dbManager *database.DBManager, logger *slog.Logger) (*Scheduler, error) {
	return NewScheduler(dbManager, logger)
}
