package http

import (
	"errors"
	"fmt"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/feeds"
	"github.com/karloscodes/cartridge"

	"mingle/internal/accounts"
	"mingle/internal/pkg/media"
	"mingle/internal/pkg/toggle"
	"mingle/internal/posts"
	"mingle/internal/profiles"
)

// profileParams holds the mutable profile fields accepted from clients
type profileParams struct {
	Bio     string `json:"bio"`
	Picture string `json:"picture"`
}

// ProfileCreateAction creates a profile for the authenticated user
func ProfileCreateAction(ctx *cartridge.Context) error {
	userID := currentUserID(ctx)

	var params profileParams
	if err := ctx.BodyParser(&params); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}

	profile := &profiles.Profile{
		UserID: userID,
		Bio:    params.Bio,
	}
	if params.Picture != "" {
		path := media.ImagePath(media.ProfileImages, fmt.Sprintf("user-%d", userID), params.Picture)
		profile.Picture = &path
	}

	if err := profiles.CreateProfile(ctx.Logger, ctx.DB(), profile); err != nil {
		if errors.Is(err, profiles.ErrProfileExists) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "Profile already exists for this user",
			})
		}
		ctx.Logger.Error("Failed to create profile", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to create profile",
		})
	}

	detail, err := profiles.GetProfileDetail(ctx.DB(), profile.ID)
	if err != nil {
		ctx.Logger.Error("Failed to load created profile", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to load profile",
		})
	}

	return ctx.Status(fiber.StatusCreated).JSON(detail.Summary)
}

// ProfilesIndexAction lists profiles, optionally filtered by bio,
// user email or creation date
func ProfilesIndexAction(ctx *cartridge.Context) error {
	filter := profiles.Filter{
		Bio:       ctx.Query("bio"),
		UserEmail: ctx.Query("user_email"),
		CreatedOn: parseDateParam(ctx, "created_at"),
	}

	list, err := profiles.ListProfiles(ctx.DB(), filter)
	if err != nil {
		ctx.Logger.Error("Failed to list profiles", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to list profiles",
		})
	}

	return ctx.JSON(list)
}

// ProfileShowAction returns a single profile with its follower count
func ProfileShowAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid profile ID",
		})
	}

	detail, err := profiles.GetProfileDetail(ctx.DB(), uint(id))
	if err != nil {
		var notFound *profiles.ProfileNotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"detail": "Profile not found",
			})
		}
		ctx.Logger.Error("Failed to load profile", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to load profile",
		})
	}

	return ctx.JSON(detail)
}

// ProfileUpdateAction updates a profile; only its owner may do so
func ProfileUpdateAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid profile ID",
		})
	}

	profile, ok, err := loadOwnedProfile(ctx, uint(id))
	if err != nil || !ok {
		return err
	}

	var params profileParams
	if err := ctx.BodyParser(&params); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}

	profile.Bio = params.Bio
	if params.Picture != "" {
		path := media.ImagePath(media.ProfileImages, fmt.Sprintf("user-%d", profile.UserID), params.Picture)
		profile.Picture = &path
	}

	if err := profiles.UpdateProfile(ctx.Logger, ctx.DB(), profile); err != nil {
		ctx.Logger.Error("Failed to update profile", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to update profile",
		})
	}

	detail, err := profiles.GetProfileDetail(ctx.DB(), profile.ID)
	if err != nil {
		ctx.Logger.Error("Failed to load updated profile", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to load profile",
		})
	}

	return ctx.JSON(detail.Summary)
}

// ProfileDeleteAction removes a profile; only its owner may do so
func ProfileDeleteAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid profile ID",
		})
	}

	profile, ok, err := loadOwnedProfile(ctx, uint(id))
	if err != nil || !ok {
		return err
	}

	if err := profiles.DeleteProfile(ctx.Logger, ctx.DB(), profile.ID); err != nil {
		ctx.Logger.Error("Failed to delete profile", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to delete profile",
		})
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// FollowToggleAction follows the profile if the user does not follow
// it yet, and unfollows it otherwise
func FollowToggleAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid profile ID",
		})
	}

	userID := currentUserID(ctx)

	outcome, err := profiles.ToggleFollow(ctx.Logger, ctx.DB(), userID, uint(id))
	if err != nil {
		if errors.Is(err, profiles.ErrSelfFollow) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"detail": "Cannot follow yourself.",
			})
		}
		var notFound *profiles.ProfileNotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"detail": "Profile not found",
			})
		}
		ctx.Logger.Error("Failed to toggle follow", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to toggle follow",
		})
	}

	if outcome == toggle.Created {
		return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
			"detail": "Successfully followed the profile.",
		})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"detail": "Successfully unfollowed the profile.",
	})
}

// ProfileFollowersAction lists the users following a profile
func ProfileFollowersAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid profile ID",
		})
	}

	if _, err := profiles.GetProfileByID(ctx.DB(), uint(id)); err != nil {
		var notFound *profiles.ProfileNotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"detail": "Profile not found",
			})
		}
		ctx.Logger.Error("Failed to load profile", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to load profile",
		})
	}

	followers, err := profiles.Followers(ctx.DB(), uint(id))
	if err != nil {
		ctx.Logger.Error("Failed to list followers", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to list followers",
		})
	}

	return ctx.JSON(followers)
}

// ProfileFollowingAction lists the profiles a profile's owner follows
func ProfileFollowingAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid profile ID",
		})
	}

	following, err := profiles.Following(ctx.DB(), uint(id))
	if err != nil {
		var notFound *profiles.ProfileNotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"detail": "Profile not found",
			})
		}
		ctx.Logger.Error("Failed to list following", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to list following",
		})
	}

	return ctx.JSON(following)
}

// ProfileRSSAction serves an RSS feed of a profile's posts
func ProfileRSSAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid profile ID",
		})
	}

	profile, err := profiles.GetProfileByID(ctx.DB(), uint(id))
	if err != nil {
		var notFound *profiles.ProfileNotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"detail": "Profile not found",
			})
		}
		ctx.Logger.Error("Failed to load profile", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to load profile",
		})
	}

	owner, err := accounts.FindByID(ctx.DB(), profile.UserID)
	if err != nil {
		ctx.Logger.Error("Failed to resolve profile owner", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to load profile",
		})
	}

	entries, err := posts.MyPosts(ctx.DB(), profile.UserID)
	if err != nil {
		ctx.Logger.Error("Failed to load profile posts", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to load profile posts",
		})
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("Posts by %s", owner.Email),
		Link:        &feeds.Link{Href: fmt.Sprintf("/api/profiles/%d", id)},
		Description: profile.Bio,
		Created:     profile.CreatedAt,
	}
	for _, entry := range entries {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          fmt.Sprintf("%d", entry.ID),
			Title:       entry.Title,
			Link:        &feeds.Link{Href: fmt.Sprintf("/api/posts/%d", entry.ID)},
			Description: entry.Content,
			Author:      &feeds.Author{Email: entry.Owner},
			Created:     entry.CreatedAt,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		ctx.Logger.Error("Failed to render RSS feed", slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to render feed",
		})
	}

	ctx.Set("Content-Type", "application/rss+xml; charset=utf-8")
	return ctx.Send([]byte(rss))
}

// loadOwnedProfile fetches a profile and enforces that the current
// user owns it. The second return value reports whether the caller
// may proceed; when false the response has already been written.
func loadOwnedProfile(ctx *cartridge.Context, profileID uint) (*profiles.Profile, bool, error) {
	profile, err := profiles.GetProfileByID(ctx.DB(), profileID)
	if err != nil {
		var notFound *profiles.ProfileNotFoundError
		if errors.As(err, &notFound) {
			return nil, false, ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"detail": "Profile not found",
			})
		}
		ctx.Logger.Error("Failed to load profile", slog.Any("error", err))
		return nil, false, ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"detail": "Failed to load profile",
		})
	}

	if profile.UserID != currentUserID(ctx) {
		return nil, false, forbidden(ctx)
	}

	return profile, true, nil
}
