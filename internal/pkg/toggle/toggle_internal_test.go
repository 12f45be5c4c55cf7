package toggle

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// racingEdge plants its own pair right before the insert runs, standing in
// for a concurrent toggle that wins the race after the existence check.
type racingEdge struct {
	ID      uint `gorm:"primaryKey;autoIncrement"`
	LeftID  uint `gorm:"not null;uniqueIndex:idx_racing_edges_pair"`
	RightID uint `gorm:"not null;uniqueIndex:idx_racing_edges_pair"`
}

func (e *racingEdge) BeforeCreate(tx *gorm.DB) error {
	// Raw SQL so the planted row does not recurse through this hook
	return tx.Exec(
		"INSERT INTO racing_edges (left_id, right_id) VALUES (?, ?)",
		e.LeftID, e.RightID,
	).Error
}

// plainEdge is the same shape without the hook, for provoking a real
// duplicate-key error.
type plainEdge struct {
	ID      uint `gorm:"primaryKey;autoIncrement"`
	LeftID  uint `gorm:"not null;uniqueIndex:idx_plain_edges_pair"`
	RightID uint `gorm:"not null;uniqueIndex:idx_plain_edges_pair"`
}

func setupInternalDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:toggle_internal_%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models...))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFlipFallsBackToDeleteWhenInsertLosesRace(t *testing.T) {
	db := setupInternalDB(t, &racingEdge{})
	log := silentLogger()

	// The pair is absent at lookup time but present by the time the insert
	// lands, so the unique constraint fires and Flip must take the delete
	// branch instead of erroring or duplicating.
	outcome, err := Flip(log, db, &racingEdge{LeftID: 4, RightID: 5})
	require.NoError(t, err)
	assert.Equal(t, Removed, outcome)

	var count int64
	require.NoError(t, db.Model(&racingEdge{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestIsUniqueViolation(t *testing.T) {
	db := setupInternalDB(t, &plainEdge{})

	require.NoError(t, db.Create(&plainEdge{LeftID: 1, RightID: 2}).Error)
	dup := db.Create(&plainEdge{LeftID: 1, RightID: 2}).Error
	require.Error(t, dup)

	assert.True(t, isUniqueViolation(dup))
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(errors.New("disk I/O error")))
}
