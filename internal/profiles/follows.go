package profiles

import (
	"errors"
	"time"

	"log/slog"

	"gorm.io/gorm"

	"mingle/internal/pkg/toggle"
)

// Follow is a directed edge from a follower user to a target profile.
// The composite unique index makes the (follower, profile) pair the
// single arbiter for concurrent toggles.
type Follow struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FollowerID uint      `gorm:"not null;index;uniqueIndex:idx_follows_follower_profile" json:"follower_id"`
	ProfileID  uint      `gorm:"not null;index;uniqueIndex:idx_follows_follower_profile" json:"profile_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// ErrSelfFollow is returned when a caller tries to follow their own profile.
var ErrSelfFollow = errors.New("cannot follow yourself")

// FollowerInfo names one follower of a profile.
type FollowerInfo struct {
	UserEmail string `json:"user"`
}

// FollowingInfo names one profile the subject follows.
type FollowingInfo struct {
	ProfileEmail string    `json:"profile"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToggleFollow flips the follow edge from the caller to the target profile:
// absent creates it, present removes it. Self-follows are rejected
// regardless of prior state.
func ToggleFollow(logger *slog.Logger, db *gorm.DB, followerID, profileID uint) (toggle.Outcome, error) {
	profile, err := GetProfileByID(db, profileID)
	if err != nil {
		return 0, err
	}

	if profile.UserID == followerID {
		return 0, ErrSelfFollow
	}

	return toggle.Flip(logger, db, &Follow{FollowerID: followerID, ProfileID: profileID})
}

// IsFollowing reports whether the follow edge currently exists.
func IsFollowing(db *gorm.DB, followerID, profileID uint) (bool, error) {
	var count int64
	err := db.Model(&Follow{}).
		Where("follower_id = ? AND profile_id = ?", followerID, profileID).
		Count(&count).Error
	return count > 0, err
}

// Followers lists the users following the given profile.
func Followers(db *gorm.DB, profileID uint) ([]FollowerInfo, error) {
	var followers []FollowerInfo
	err := db.Model(&Follow{}).
		Select("users.email AS user_email").
		Joins("JOIN users ON users.id = follows.follower_id").
		Where("follows.profile_id = ?", profileID).
		Order("follows.id").
		Scan(&followers).Error
	if err != nil {
		return nil, err
	}
	return followers, nil
}

// Following lists the profiles the given profile's owner follows.
func Following(db *gorm.DB, profileID uint) ([]FollowingInfo, error) {
	profile, err := GetProfileByID(db, profileID)
	if err != nil {
		return nil, err
	}

	var following []FollowingInfo
	err = db.Model(&Follow{}).
		Select("users.email AS profile_email, follows.created_at").
		Joins("JOIN profiles ON profiles.id = follows.profile_id").
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("follows.follower_id = ?", profile.UserID).
		Order("follows.id").
		Scan(&following).Error
	if err != nil {
		return nil, err
	}
	return following, nil
}

// FollowedOwnerIDs resolves the set of user ids whose profiles the caller
// follows; the feed composer filters posts by this set.
func FollowedOwnerIDs(db *gorm.DB, followerID uint) ([]uint, error) {
	var ownerIDs []uint
	err := db.Model(&Follow{}).
		Select("profiles.user_id").
		Joins("JOIN profiles ON profiles.id = follows.profile_id").
		Where("follows.follower_id = ?", followerID).
		Scan(&ownerIDs).Error
	if err != nil {
		return nil, err
	}
	return ownerIDs, nil
}
