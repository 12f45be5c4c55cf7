package posts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mingle/internal/posts"
	"mingle/internal/testsupport"
)

func TestAddCommentAppendsDuplicates(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	owner := testsupport.CreateTestUser(db, "owner@example.com", "pw")
	reader := testsupport.CreateTestUser(db, "reader@example.com", "pw")
	post := testsupport.CreateTestPost(t, db, owner.ID, "Title", "body")

	// The same comment twice from the same user makes two rows; comments
	// never toggle.
	first, err := posts.AddComment(log, db, reader.ID, post.ID, "same words")
	require.NoError(t, err)
	second, err := posts.AddComment(log, db, reader.ID, post.ID, "same words")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	comments, err := posts.ListPostComments(db, post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}

func TestAddCommentRejectsEmptyContent(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	owner := testsupport.CreateTestUser(db, "owner@example.com", "pw")
	post := testsupport.CreateTestPost(t, db, owner.ID, "Title", "body")

	_, err := posts.AddComment(log, db, owner.ID, post.ID, "")
	assert.ErrorIs(t, err, posts.ErrEmptyContent)

	_, err = posts.AddComment(log, db, owner.ID, post.ID, "   \t ")
	assert.ErrorIs(t, err, posts.ErrEmptyContent)
}

func TestAddCommentUnknownPost(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()
	reader := testsupport.CreateTestUser(db, "reader@example.com", "pw")

	_, err := posts.AddComment(log, db, reader.ID, 999, "hello")
	var notFound *posts.PostNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDeleteComment(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	owner := testsupport.CreateTestUser(db, "owner@example.com", "pw")
	post := testsupport.CreateTestPost(t, db, owner.ID, "Title", "body")

	comment, err := posts.AddComment(log, db, owner.ID, post.ID, "to be removed")
	require.NoError(t, err)

	require.NoError(t, posts.DeleteComment(log, db, comment.ID))

	_, err = posts.GetCommentByID(db, comment.ID)
	var notFound *posts.CommentNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestListCommentsAcrossPosts(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	owner := testsupport.CreateTestUser(db, "owner@example.com", "pw")
	postA := testsupport.CreateTestPost(t, db, owner.ID, "A", "body")
	postB := testsupport.CreateTestPost(t, db, owner.ID, "B", "body")

	_, err := posts.AddComment(log, db, owner.ID, postA.ID, "on a")
	require.NoError(t, err)
	_, err = posts.AddComment(log, db, owner.ID, postB.ID, "on b")
	require.NoError(t, err)

	all, err := posts.ListComments(db)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyA, err := posts.ListPostComments(db, postA.ID)
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, "on a", onlyA[0].Content)
}
