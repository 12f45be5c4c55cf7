package posts_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mingle/internal/posts"
	"mingle/internal/testsupport"
)

func TestCreatePostStampsZeroCreatedAt(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()
	user := testsupport.CreateTestUser(db, "owner@example.com", "pw")

	post := &posts.Post{UserID: user.ID, Title: "Hello", Content: "World"}
	require.NoError(t, posts.CreatePost(log, db, post))

	assert.NotZero(t, post.ID)
	assert.WithinDuration(t, time.Now().UTC(), post.CreatedAt, 5*time.Second)
}

func TestCreatePostPreservesExplicitCreatedAt(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()
	user := testsupport.CreateTestUser(db, "owner@example.com", "pw")

	requested := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	post := &posts.Post{UserID: user.ID, Title: "Backdated", Content: "c", CreatedAt: requested}
	require.NoError(t, posts.CreatePost(log, db, post))

	reloaded, err := posts.GetPostByID(db, post.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.CreatedAt.Equal(requested), "got %v", reloaded.CreatedAt)
}

func TestCreatePostValidation(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()
	user := testsupport.CreateTestUser(db, "owner@example.com", "pw")

	assert.Error(t, posts.CreatePost(log, db, &posts.Post{Title: "t", Content: "c"}))
	assert.Error(t, posts.CreatePost(log, db, &posts.Post{UserID: user.ID, Content: "c"}))
	assert.Error(t, posts.CreatePost(log, db, &posts.Post{UserID: user.ID, Title: "t"}))
}

func TestUpdatePostKeepsOwner(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()
	user := testsupport.CreateTestUser(db, "owner@example.com", "pw")
	post := testsupport.CreateTestPost(t, db, user.ID, "Before", "body")

	post.Title = "After"
	post.Content = "new body"
	require.NoError(t, posts.UpdatePost(log, db, post))

	reloaded, err := posts.GetPostByID(db, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", reloaded.Title)
	assert.Equal(t, "new body", reloaded.Content)
	assert.Equal(t, user.ID, reloaded.UserID)
}

func TestDeletePostCascadesLikesAndComments(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	owner := testsupport.CreateTestUser(db, "owner@example.com", "pw")
	reader := testsupport.CreateTestUser(db, "reader@example.com", "pw")
	post := testsupport.CreateTestPost(t, db, owner.ID, "Title", "body")

	_, err := posts.ToggleLike(log, db, reader.ID, post.ID)
	require.NoError(t, err)
	_, err = posts.AddComment(log, db, reader.ID, post.ID, "nice")
	require.NoError(t, err)

	require.NoError(t, posts.DeletePost(log, db, post.ID))

	var likeCount, commentCount int64
	require.NoError(t, db.Model(&posts.Like{}).Where("post_id = ?", post.ID).Count(&likeCount).Error)
	require.NoError(t, db.Model(&posts.Commentary{}).Where("post_id = ?", post.ID).Count(&commentCount).Error)
	assert.Equal(t, int64(0), likeCount)
	assert.Equal(t, int64(0), commentCount)
}

func TestListPostsFilters(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	alice := testsupport.CreateTestUser(db, "alice@example.com", "pw")
	bob := testsupport.CreateTestUser(db, "bob@example.com", "pw")
	testsupport.CreateTestPost(t, db, alice.ID, "Morning run", "10k today")
	testsupport.CreateTestPost(t, db, bob.ID, "Dinner", "pasta again")

	t.Run("owner email substring", func(t *testing.T) {
		list, err := posts.ListPosts(db, posts.Filter{Owner: "alice"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Morning run", list[0].Title)
	})

	t.Run("title substring", func(t *testing.T) {
		list, err := posts.ListPosts(db, posts.Filter{Title: "Dinner"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "bob@example.com", list[0].Owner)
	})

	t.Run("content substring", func(t *testing.T) {
		list, err := posts.ListPosts(db, posts.Filter{Content: "pasta"})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("combined filters are conjunctive", func(t *testing.T) {
		list, err := posts.ListPosts(db, posts.Filter{Owner: "alice", Title: "Dinner"})
		require.NoError(t, err)
		assert.Len(t, list, 0)
	})
}

func TestGetPostDetail(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	log := testsupport.GetLogger()

	owner := testsupport.CreateTestUser(db, "owner@example.com", "pw")
	reader := testsupport.CreateTestUser(db, "reader@example.com", "pw")
	post := testsupport.CreateTestPost(t, db, owner.ID, "Title", "body")

	_, err := posts.ToggleLike(log, db, reader.ID, post.ID)
	require.NoError(t, err)
	_, err = posts.AddComment(log, db, reader.ID, post.ID, "first")
	require.NoError(t, err)

	detail, err := posts.GetPostDetail(db, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Title", detail.Title)
	require.Len(t, detail.Likes, 1)
	assert.Equal(t, "reader@example.com", detail.Likes[0].UserEmail)
	require.Len(t, detail.Commentaries, 1)
	assert.Equal(t, "first", detail.Commentaries[0].Content)
}

func TestMyPostsAndPostsByOwners(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	alice := testsupport.CreateTestUser(db, "alice@example.com", "pw")
	bob := testsupport.CreateTestUser(db, "bob@example.com", "pw")
	carol := testsupport.CreateTestUser(db, "carol@example.com", "pw")
	testsupport.CreateTestPost(t, db, alice.ID, "A1", "x")
	testsupport.CreateTestPost(t, db, alice.ID, "A2", "x")
	testsupport.CreateTestPost(t, db, bob.ID, "B1", "x")
	testsupport.CreateTestPost(t, db, carol.ID, "C1", "x")

	mine, err := posts.MyPosts(db, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	feed, err := posts.PostsByOwners(db, []uint{bob.ID, carol.ID})
	require.NoError(t, err)
	assert.Len(t, feed, 2)

	empty, err := posts.PostsByOwners(db, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
