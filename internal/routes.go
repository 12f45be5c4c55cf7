package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	"mingle/internal/config"
	"mingle/internal/http"
	"mingle/internal/http/middleware"
)

// MountAppRoutes mounts all application routes using cartridge's route API
func MountAppRoutes(srv *cartridge.Server) {
	cfg := config.GetConfig()

	// Helper to conditionally apply rate limiting (only in production)
	// In development/test, rate limiting would interfere with testing
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// Stricter rate limiter for auth endpoints (10 requests per minute)
	// Prevents brute force login attempts
	authRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(10),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// No Sec-Fetch-Site on the token API - clients are curl, mobile apps and
	// other servers, none of which send fetch metadata. The bearer token is
	// the credential, not a cookie, so there is nothing for CSRF to ride on.
	authConfig := &cartridge.RouteConfig{
		EnableSecFetchSite: cartridge.Bool(false),
		CustomMiddleware:   []fiber.Handler{authRateLimiter},
	}

	db := srv.GetDBManager().GetConnection()
	logger := srv.GetLogger()

	// Every route below /api except register and login requires a bearer
	// token issued at login.
	apiConfig := &cartridge.RouteConfig{
		EnableSecFetchSite: cartridge.Bool(false),
		CustomMiddleware: []fiber.Handler{
			middleware.RequireAuth(cfg.GetSessionSecret(), db, logger),
		},
	}

	// Health check endpoint
	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)

	// === ACCOUNTS ===
	srv.Post("/api/users/register", http.RegisterAction, authConfig)
	srv.Post("/api/users/login", http.LoginAction, authConfig)
	srv.Post("/api/users/logout", http.LogoutAction, apiConfig)

	// === PROFILES ===
	srv.Get("/api/profiles", http.ProfilesIndexAction, apiConfig)
	srv.Post("/api/profiles", http.ProfileCreateAction, apiConfig)
	srv.Get("/api/profiles/:id", http.ProfileShowAction, apiConfig)
	srv.Put("/api/profiles/:id", http.ProfileUpdateAction, apiConfig)
	srv.Delete("/api/profiles/:id", http.ProfileDeleteAction, apiConfig)
	srv.Post("/api/profiles/:id/follow-toggle", http.FollowToggleAction, apiConfig)
	srv.Get("/api/profiles/:id/followers", http.ProfileFollowersAction, apiConfig)
	srv.Get("/api/profiles/:id/following", http.ProfileFollowingAction, apiConfig)
	srv.Get("/api/profiles/:id/rss", http.ProfileRSSAction)

	// === POSTS ===
	srv.Get("/api/posts", http.PostsIndexAction, apiConfig)
	srv.Post("/api/posts", http.PostCreateAction, apiConfig)
	srv.Get("/api/posts/my-posts", http.MyPostsAction, apiConfig)
	srv.Get("/api/posts/following-posts", http.FollowingPostsAction, apiConfig)
	srv.Post("/api/posts/schedule-post-creation", http.SchedulePostAction, apiConfig)
	srv.Get("/api/posts/:id", http.PostShowAction, apiConfig)
	srv.Put("/api/posts/:id", http.PostUpdateAction, apiConfig)
	srv.Delete("/api/posts/:id", http.PostDeleteAction, apiConfig)
	srv.Post("/api/posts/:id/like-toggle", http.LikeToggleAction, apiConfig)
	srv.Post("/api/posts/:id/add-comment", http.AddCommentAction, apiConfig)

	// === COMMENTS ===
	srv.Get("/api/comments", http.CommentsIndexAction, apiConfig)
	srv.Get("/api/comments/:id", http.CommentShowAction, apiConfig)
	srv.Delete("/api/comments/:id", http.CommentDeleteAction, apiConfig)
}
