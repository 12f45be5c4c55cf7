package http

import (
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"mingle/internal/accounts"
	"mingle/internal/config"
)

type credentialsParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterAction creates a new user account.
func RegisterAction(ctx *cartridge.Context) error {
	var params credentialsParams
	if err := ctx.BodyParser(&params); err != nil {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	user, err := accounts.Register(ctx.Logger, ctx.DB(), params.Email, params.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrUserExists) {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "User already exists"})
		}
		ctx.Logger.Error("Failed to register user", slog.Any("error", err))
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Logger.Info("User registered",
		slog.Uint64("id", uint64(user.ID)),
		slog.String("email", user.Email))

	return ctx.Status(http.StatusCreated).JSON(fiber.Map{
		"id":    user.ID,
		"email": user.Email,
	})
}

// LoginAction verifies credentials and issues a bearer token.
func LoginAction(ctx *cartridge.Context) error {
	var params credentialsParams
	if err := ctx.BodyParser(&params); err != nil {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	cfg := config.GetConfig()

	user, err := accounts.Authenticate(ctx.Logger, ctx.DB(), params.Email, params.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			return ctx.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
		}
		ctx.Logger.Error("Failed to authenticate user", slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Login failed"})
	}

	ttl := time.Duration(cfg.GetTokenTTL()) * time.Second
	token, err := accounts.IssueToken(cfg.GetSessionSecret(), user.ID, ttl)
	if err != nil {
		ctx.Logger.Error("Failed to issue token", slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Login failed"})
	}

	return ctx.Status(http.StatusOK).JSON(fiber.Map{"token": token})
}

// LogoutAction acknowledges a logout. Tokens are stateless, so revocation is
// the client discarding the token; the endpoint exists for API parity.
func LogoutAction(ctx *cartridge.Context) error {
	return ctx.Status(http.StatusOK).JSON(fiber.Map{"detail": "Logged out."})
}
