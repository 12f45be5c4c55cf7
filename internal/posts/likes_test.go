package posts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mingle/internal/pkg/toggle"
	"mingle/internal/posts"
	"mingle/internal/testsupport"
)

func TestToggleLikeCreatesThenRemoves(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	owner := testsupport.CreateTestUser(db, "owner@example.com", "pw")
	reader := testsupport.CreateTestUser(db, "reader@example.com", "pw")
	post := testsupport.CreateTestPost(t, db, owner.ID, "Title", "body")

	outcome, err := posts.ToggleLike(log, db, reader.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, toggle.Created, outcome)

	liked, err := posts.HasLiked(db, reader.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	outcome, err = posts.ToggleLike(log, db, reader.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, toggle.Removed, outcome)

	liked, err = posts.HasLiked(db, reader.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestToggleLikeOwnPostAllowed(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	owner := testsupport.CreateTestUser(db, "owner@example.com", "pw")
	post := testsupport.CreateTestPost(t, db, owner.ID, "Title", "body")

	outcome, err := posts.ToggleLike(log, db, owner.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, toggle.Created, outcome)
}

func TestToggleLikeUnknownPost(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()
	reader := testsupport.CreateTestUser(db, "reader@example.com", "pw")

	_, err := posts.ToggleLike(log, db, reader.ID, 999)
	var notFound *posts.PostNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestListLikes(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	owner := testsupport.CreateTestUser(db, "owner@example.com", "pw")
	a := testsupport.CreateTestUser(db, "a@example.com", "pw")
	b := testsupport.CreateTestUser(db, "b@example.com", "pw")
	post := testsupport.CreateTestPost(t, db, owner.ID, "Title", "body")

	_, err := posts.ToggleLike(log, db, a.ID, post.ID)
	require.NoError(t, err)
	_, err = posts.ToggleLike(log, db, b.ID, post.ID)
	require.NoError(t, err)

	likes, err := posts.ListLikes(db, post.ID)
	require.NoError(t, err)
	require.Len(t, likes, 2)
	assert.Equal(t, "a@example.com", likes[0].UserEmail)
	assert.Equal(t, "b@example.com", likes[1].UserEmail)
}
