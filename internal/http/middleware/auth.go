package middleware

import (
	"strings"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mingle/internal/accounts"
)

// UserIDKey is the locals key the authenticated caller id is stored under.
const UserIDKey = "user_id"

// RequireAuth validates the bearer token and resolves the caller before any
// core logic runs. Expects: Authorization: Bearer <token>
func RequireAuth(secret string, db *gorm.DB, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Authorization header",
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid Authorization header format. Expected: Bearer <token>",
			})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		userID, err := accounts.ParseToken(secret, tokenString)
		if err != nil {
			logger.Debug("Rejected bearer token", slog.Any("error", err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		// Tokens outlive accounts; make sure the user still exists.
		if _, err := accounts.FindByID(db, userID); err != nil {
			logger.Debug("Token for missing user",
				slog.Uint64("userID", uint64(userID)),
				slog.Any("error", err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}
