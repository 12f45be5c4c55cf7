// Package profiles holds the social-facing profile records and the directed
// follow edges between them.
package profiles

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"mingle/internal/accounts"
)

// Profile is a user's social extension record; each user has at most one.
type Profile struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Bio       string    `json:"bio"`
	Picture   *string   `json:"profile_picture"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// ErrProfileExists is returned when a user who already has a profile creates
// another one.
var ErrProfileExists = errors.New("profile already exists for this user")

// ProfileNotFoundError represents an error when a profile is not found
type ProfileNotFoundError struct {
	ID uint
}

func (e *ProfileNotFoundError) Error() string {
	return fmt.Sprintf("profile not found: %d", e.ID)
}

// NewProfileNotFoundError creates a new ProfileNotFoundError
func NewProfileNotFoundError(id uint) *ProfileNotFoundError {
	return &ProfileNotFoundError{ID: id}
}

// Summary is the list representation of a profile.
type Summary struct {
	ID        uint      `json:"id"`
	Bio       string    `json:"bio"`
	UserEmail string    `json:"user_email"`
	Picture   *string   `json:"profile_picture"`
	CreatedAt time.Time `json:"created_at"`
}

// Detail is the retrieve representation: a summary plus follower emails.
type Detail struct {
	Summary
	Followers []FollowerInfo `json:"followers"`
}

// Filter enumerates the supported list filters. Unset fields do not
// constrain the query; there is deliberately no generic field lookup.
type Filter struct {
	Bio       string    // substring match on bio
	UserEmail string    // substring match on the owner's email
	CreatedOn time.Time // whole-day match on creation date
}

// CreateProfile creates the caller's profile. The unique index on user_id
// backs the one-profile-per-user invariant against concurrent creates.
func CreateProfile(logger *slog.Logger, db *gorm.DB, profile *Profile) error {
	if profile.UserID == 0 {
		return errors.New("user ID is required")
	}

	var existing Profile
	if err := db.Where("user_id = ?", profile.UserID).First(&existing).Error; err == nil {
		return ErrProfileExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		if err := tx.Create(profile).Error; err != nil {
			if isUniqueViolation(err) { // lost the race after the pre-check
				return ErrProfileExists
			}
			return err
		}
		return nil
	})
}

// GetProfileByID retrieves a profile by ID.
func GetProfileByID(db *gorm.DB, id uint) (*Profile, error) {
	var profile Profile
	if err := db.Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewProfileNotFoundError(id)
		}
		return nil, fmt.Errorf("unexpected error querying profile: %w", err)
	}
	return &profile, nil
}

// GetProfileByUserID retrieves the profile owned by the given user.
func GetProfileByUserID(db *gorm.DB, userID uint) (*Profile, error) {
	var profile Profile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile updates the mutable fields of an existing profile.
func UpdateProfile(logger *slog.Logger, db *gorm.DB, profile *Profile) error {
	if profile.ID == 0 {
		return errors.New("profile ID is required")
	}

	// Only update specific fields to prevent overwriting user_id
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Model(profile).
			Select("bio", "picture").
			Updates(map[string]interface{}{"bio": profile.Bio, "picture": profile.Picture}).Error
	})
}

// DeleteProfile deletes a profile and its follow edges.
func DeleteProfile(logger *slog.Logger, db *gorm.DB, id uint) error {
	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&Profile{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		// Edges pointing at the profile, and edges created by its owner,
		// cascade with it.
		return tx.Where("profile_id = ?", id).Delete(&Follow{}).Error
	})
}

// ListProfiles returns profile summaries matching the filter, in creation
// order.
func ListProfiles(db *gorm.DB, filter Filter) ([]Summary, error) {
	query := db.Model(&Profile{}).
		Select("profiles.id, profiles.bio, profiles.picture, profiles.created_at, users.email AS user_email").
		Joins("JOIN users ON users.id = profiles.user_id")

	if filter.Bio != "" {
		query = query.Where("profiles.bio LIKE ?", "%"+filter.Bio+"%")
	}
	if filter.UserEmail != "" {
		query = query.Where("users.email LIKE ?", "%"+filter.UserEmail+"%")
	}
	if !filter.CreatedOn.IsZero() {
		query = query.Where("date(profiles.created_at) = ?", filter.CreatedOn.Format("2006-01-02"))
	}

	var summaries []Summary
	if err := query.Order("profiles.id").Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetProfileDetail returns the retrieve representation of a profile,
// including its followers.
func GetProfileDetail(db *gorm.DB, id uint) (*Detail, error) {
	profile, err := GetProfileByID(db, id)
	if err != nil {
		return nil, err
	}

	owner, err := accounts.FindByID(db, profile.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profile owner: %w", err)
	}

	followers, err := Followers(db, id)
	if err != nil {
		return nil, err
	}

	return &Detail{
		Summary: Summary{
			ID:        profile.ID,
			Bio:       profile.Bio,
			UserEmail: owner.Email,
			Picture:   profile.Picture,
			CreatedAt: profile.CreatedAt,
		},
		Followers: followers,
	}, nil
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
