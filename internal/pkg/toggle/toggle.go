// Package toggle implements the create-else-delete pattern shared by follows
// and likes: the first call with a given identity pair inserts a row, the next
// one removes it, so two successive calls always return to the prior state.
package toggle

import (
	"errors"
	"strings"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// Outcome reports which branch of a toggle ran.
type Outcome int

const (
	// Created means the pair was absent and a row was inserted.
	Created Outcome = iota
	// Removed means the pair existed and its row was deleted.
	Removed
)

// Flip toggles the presence of the given pair record. The non-zero fields of
// pair identify the row; the record type must carry a unique constraint over
// those fields, because that constraint is the only arbiter under concurrent
// toggles - a losing insert falls through to the delete branch instead of
// creating a duplicate.
func Flip[T any](logger *slog.Logger, db *gorm.DB, pair *T) (Outcome, error) {
	outcome := Created

	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		var existing T
		err := tx.Where(pair).First(&existing).Error
		switch {
		case err == nil:
			outcome = Removed
			return tx.Where(pair).Delete(new(T)).Error

		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(pair).Error; err != nil {
				if isUniqueViolation(err) {
					// A concurrent toggle won the insert; take the
					// delete branch.
					outcome = Removed
					return tx.Where(pair).Delete(new(T)).Error
				}
				return err
			}
			outcome = Created
			return nil

		default:
			return err
		}
	})

	return outcome, err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE constraint failed") || strings.Contains(s, "unique constraint")
}
