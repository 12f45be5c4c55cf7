package http

import (
	"errors"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"mingle/internal/posts"
)

// CommentsIndexAction lists every commentary across all posts
func CommentsIndexAction(ctx *cartridge.Context) error {
	list, err := posts.ListComments(ctx.DB())
	if err != nil {
		ctx.Logger.Error("Failed to list comments", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to list comments",
		})
	}

	return ctx.JSON(list)
}

// CommentShowAction returns a single commentary
func CommentShowAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid comment ID",
		})
	}

	comment, err := posts.GetCommentByID(ctx.DB(), uint(id))
	if err != nil {
		var notFound *posts.CommentNotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"detail": "Comment not found",
			})
		}
		ctx.Logger.Error("Failed to load comment", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to load comment",
		})
	}

	return ctx.JSON(comment)
}

// CommentDeleteAction removes a commentary; only its author may do so
func CommentDeleteAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid comment ID",
		})
	}

	comment, err := posts.GetCommentByID(ctx.DB(), uint(id))
	if err != nil {
		var notFound *posts.CommentNotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"detail": "Comment not found",
			})
		}
		ctx.Logger.Error("Failed to load comment", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to load comment",
		})
	}

	if comment.UserID != currentUserID(ctx) {
		return forbidden(ctx)
	}

	if err := posts.DeleteComment(ctx.Logger, ctx.DB(), comment.ID); err != nil {
		ctx.Logger.Error("Failed to delete comment", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to delete comment",
		})
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}
