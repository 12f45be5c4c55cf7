package profiles_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mingle/internal/profiles"
	"mingle/internal/testsupport"
)

func TestCreateProfile(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()
	user := testsupport.CreateTestUser(db, "owner@example.com", "pw")

	profile := &profiles.Profile{UserID: user.ID, Bio: "hello"}
	require.NoError(t, profiles.CreateProfile(log, db, profile))
	assert.NotZero(t, profile.ID)
}

func TestCreateProfileRejectsSecondProfile(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()
	user := testsupport.CreateTestUser(db, "owner@example.com", "pw")

	require.NoError(t, profiles.CreateProfile(log, db, &profiles.Profile{UserID: user.ID}))

	err := profiles.CreateProfile(log, db, &profiles.Profile{UserID: user.ID, Bio: "again"})
	assert.ErrorIs(t, err, profiles.ErrProfileExists)
}

func TestGetProfileByIDNotFound(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	_, err := profiles.GetProfileByID(db, 999)
	var notFound *profiles.ProfileNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, uint(999), notFound.ID)
}

func TestUpdateProfileChangesOnlyMutableFields(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()
	user := testsupport.CreateTestUser(db, "owner@example.com", "pw")
	profile := testsupport.CreateTestProfile(t, db, user.ID, "before")

	profile.Bio = "after"
	require.NoError(t, profiles.UpdateProfile(log, db, profile))

	reloaded, err := profiles.GetProfileByID(db, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", reloaded.Bio)
	assert.Equal(t, user.ID, reloaded.UserID)
}

func TestDeleteProfileCascadesFollows(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	owner := testsupport.CreateTestUser(db, "owner@example.com", "pw")
	follower := testsupport.CreateTestUser(db, "fan@example.com", "pw")
	profile := testsupport.CreateTestProfile(t, db, owner.ID, "bio")

	_, err := profiles.ToggleFollow(log, db, follower.ID, profile.ID)
	require.NoError(t, err)

	require.NoError(t, profiles.DeleteProfile(log, db, profile.ID))

	var followCount int64
	require.NoError(t, db.Model(&profiles.Follow{}).Where("profile_id = ?", profile.ID).Count(&followCount).Error)
	assert.Equal(t, int64(0), followCount)
}

func TestListProfilesFilters(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	alice := testsupport.CreateTestUser(db, "alice@example.com", "pw")
	bob := testsupport.CreateTestUser(db, "bob@example.com", "pw")
	testsupport.CreateTestProfile(t, db, alice.ID, "loves hiking")
	testsupport.CreateTestProfile(t, db, bob.ID, "city person")

	t.Run("no filter returns all", func(t *testing.T) {
		list, err := profiles.ListProfiles(db, profiles.Filter{})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("bio substring", func(t *testing.T) {
		list, err := profiles.ListProfiles(db, profiles.Filter{Bio: "hiking"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "alice@example.com", list[0].UserEmail)
	})

	t.Run("user email substring", func(t *testing.T) {
		list, err := profiles.ListProfiles(db, profiles.Filter{UserEmail: "bob"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "city person", list[0].Bio)
	})

	t.Run("created on today", func(t *testing.T) {
		list, err := profiles.ListProfiles(db, profiles.Filter{CreatedOn: time.Now().UTC()})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("created on another day", func(t *testing.T) {
		list, err := profiles.ListProfiles(db, profiles.Filter{CreatedOn: time.Now().UTC().AddDate(0, 0, -1)})
		require.NoError(t, err)
		assert.Len(t, list, 0)
	})
}

func TestGetProfileDetailIncludesFollowers(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	owner := testsupport.CreateTestUser(db, "owner@example.com", "pw")
	fan := testsupport.CreateTestUser(db, "fan@example.com", "pw")
	profile := testsupport.CreateTestProfile(t, db, owner.ID, "bio")

	_, err := profiles.ToggleFollow(log, db, fan.ID, profile.ID)
	require.NoError(t, err)

	detail, err := profiles.GetProfileDetail(db, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", detail.UserEmail)
	require.Len(t, detail.Followers, 1)
	assert.Equal(t, "fan@example.com", detail.Followers[0].UserEmail)
}
