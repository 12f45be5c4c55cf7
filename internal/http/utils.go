// Package http contains the JSON API handlers.
package http

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"mingle/internal/http/middleware"
)

const dateLayout = "2006-01-02"

// currentUserID returns the authenticated caller id placed in locals by the
// auth middleware. Zero means the route was mounted without RequireAuth,
// which is a wiring bug, not a request error.
func currentUserID(ctx *cartridge.Context) uint {
	id, _ := ctx.Locals(middleware.UserIDKey).(uint)
	return id
}

// parseDateParam parses an optional ?param=YYYY-MM-DD query filter. A zero
// time means the parameter was absent or malformed; malformed values are
// ignored rather than rejected, matching the lenient list-filter behavior.
func parseDateParam(ctx *cartridge.Context, name string) time.Time {
	raw := ctx.Query(name)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// forbidden writes the standard owner-only rejection.
func forbidden(ctx *cartridge.Context) error {
	return ctx.Status(http.StatusForbidden).JSON(fiber.Map{
		"detail": "You do not have permission to perform this action.",
	})
}
