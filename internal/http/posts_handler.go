package http

import (
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"mingle/internal/jobs"
	"mingle/internal/pkg/media"
	"mingle/internal/pkg/toggle"
	"mingle/internal/posts"
	"mingle/internal/profiles"
)

// postParams holds the mutable post fields accepted from clients
type postParams struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Image   string `json:"image"`
}

// schedulePostParams is the delayed-creation request body. ScheduledTime is
// RFC 3339; the zone offset is honored and the stored time is UTC.
type schedulePostParams struct {
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	ScheduledTime time.Time `json:"scheduled_time"`
}

// PostCreateAction creates a post owned by the authenticated user
func PostCreateAction(ctx *cartridge.Context) error {
	userID := currentUserID(ctx)

	var params postParams
	if err := ctx.BodyParser(&params); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}
	if params.Title == "" || params.Content == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Title and content are required",
		})
	}

	post := &posts.Post{
		UserID:  userID,
		Title:   params.Title,
		Content: params.Content,
	}
	if params.Image != "" {
		path := media.ImagePath(media.PostImages, params.Title, params.Image)
		post.Image = &path
	}

	if err := posts.CreatePost(ctx.Logger, ctx.DB(), post); err != nil {
		ctx.Logger.Error("Failed to create post", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to create post",
		})
	}

	return ctx.Status(fiber.StatusCreated).JSON(post)
}

// PostsIndexAction lists posts, optionally filtered by owner email,
// title, content or creation date
func PostsIndexAction(ctx *cartridge.Context) error {
	filter := posts.Filter{
		Owner:     ctx.Query("owner"),
		Title:     ctx.Query("title"),
		Content:   ctx.Query("content"),
		CreatedOn: parseDateParam(ctx, "created_at"),
	}

	list, err := posts.ListPosts(ctx.DB(), filter)
	if err != nil {
		ctx.Logger.Error("Failed to list posts", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to list posts",
		})
	}

	return ctx.JSON(list)
}

// PostShowAction returns a single post with its likes and commentaries
func PostShowAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid post ID",
		})
	}

	detail, err := posts.GetPostDetail(ctx.DB(), uint(id))
	if err != nil {
		var notFound *posts.PostNotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"detail": "Post not found",
			})
		}
		ctx.Logger.Error("Failed to load post", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to load post",
		})
	}

	return ctx.JSON(detail)
}

// PostUpdateAction updates a post; only its owner may do so
func PostUpdateAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid post ID",
		})
	}

	post, ok, err := loadOwnedPost(ctx, uint(id))
	if err != nil || !ok {
		return err
	}

	var params postParams
	if err := ctx.BodyParser(&params); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}
	if params.Title == "" || params.Content == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Title and content are required",
		})
	}

	post.Title = params.Title
	post.Content = params.Content
	if params.Image != "" {
		path := media.ImagePath(media.PostImages, params.Title, params.Image)
		post.Image = &path
	}

	if err := posts.UpdatePost(ctx.Logger, ctx.DB(), post); err != nil {
		ctx.Logger.Error("Failed to update post", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to update post",
		})
	}

	return ctx.JSON(post)
}

// PostDeleteAction removes a post; only its owner may do so
func PostDeleteAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid post ID",
		})
	}

	post, ok, err := loadOwnedPost(ctx, uint(id))
	if err != nil || !ok {
		return err
	}

	if err := posts.DeletePost(ctx.Logger, ctx.DB(), post.ID); err != nil {
		ctx.Logger.Error("Failed to delete post", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to delete post",
		})
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// MyPostsAction lists the authenticated user's own posts, unfiltered
func MyPostsAction(ctx *cartridge.Context) error {
	list, err := posts.MyPosts(ctx.DB(), currentUserID(ctx))
	if err != nil {
		ctx.Logger.Error("Failed to list own posts", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to list posts",
		})
	}

	return ctx.JSON(list)
}

// FollowingPostsAction composes the feed: every post whose owner the
// authenticated user follows
func FollowingPostsAction(ctx *cartridge.Context) error {
	userID := currentUserID(ctx)

	ownerIDs, err := profiles.FollowedOwnerIDs(ctx.DB(), userID)
	if err != nil {
		ctx.Logger.Error("Failed to resolve followed profiles", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to compose feed",
		})
	}

	list, err := posts.PostsByOwners(ctx.DB(), ownerIDs)
	if err != nil {
		ctx.Logger.Error("Failed to compose feed", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to compose feed",
		})
	}

	return ctx.JSON(list)
}

// LikeToggleAction likes the post if the user has not liked it yet, and
// unlikes it otherwise
func LikeToggleAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid post ID",
		})
	}

	outcome, err := posts.ToggleLike(ctx.Logger, ctx.DB(), currentUserID(ctx), uint(id))
	if err != nil {
		var notFound *posts.PostNotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"detail": "Post not found",
			})
		}
		ctx.Logger.Error("Failed to toggle like", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to toggle like",
		})
	}

	if outcome == toggle.Created {
		return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
			"detail": "Successfully liked the post.",
		})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"detail": "Successfully unliked the post.",
	})
}

// AddCommentAction appends a commentary to a post
func AddCommentAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid post ID",
		})
	}

	var params struct {
		Content string `json:"content"`
	}
	if err := ctx.BodyParser(&params); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}

	comment, err := posts.AddComment(ctx.Logger, ctx.DB(), currentUserID(ctx), uint(id), params.Content)
	if err != nil {
		if errors.Is(err, posts.ErrEmptyContent) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "Comment content cannot be empty",
			})
		}
		var notFound *posts.PostNotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"detail": "Post not found",
			})
		}
		ctx.Logger.Error("Failed to add comment", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to add comment",
		})
	}

	return ctx.Status(fiber.StatusCreated).JSON(comment)
}

// SchedulePostAction enqueues a post for deferred creation. The response
// acknowledges enqueueing only; the post appears once the publisher runs.
func SchedulePostAction(ctx *cartridge.Context) error {
	var params schedulePostParams
	if err := ctx.BodyParser(&params); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}

	entry, err := posts.NewScheduledPost(currentUserID(ctx), params.Title, params.Content, params.ScheduledTime, time.Now())
	if err != nil {
		if errors.Is(err, posts.ErrScheduleNotFuture) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "Scheduled time must be in the future",
			})
		}
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": err.Error(),
		})
	}

	var queue jobs.Queue = jobs.NewTableQueue(ctx.DBManager, ctx.Logger)
	if err := queue.Submit(entry); err != nil {
		ctx.Logger.Error("Failed to enqueue scheduled post", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to schedule post",
		})
	}

	return ctx.JSON(fiber.Map{
		"message": fmt.Sprintf("Post %q scheduled for %s", entry.Title, entry.PublishAt.Format(time.RFC3339)),
	})
}

// loadOwnedPost fetches a post and enforces that the current user owns it.
// The second return value reports whether the caller may proceed; when false
// the response has already been written.
func loadOwnedPost(ctx *cartridge.Context, postID uint) (*posts.Post, bool, error) {
	post, err := posts.GetPostByID(ctx.DB(), postID)
	if err != nil {
		var notFound *posts.PostNotFoundError
		if errors.As(err, &notFound) {
			return nil, false, ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"detail": "Post not found",
			})
		}
		ctx.Logger.Error("Failed to load post", slog.Any("error", err))
		return nil, false, ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to load post",
		})
	}

	if post.UserID != currentUserID(ctx) {
		return nil, false, forbidden(ctx)
	}

	return post, true, nil
}
