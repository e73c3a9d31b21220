package identity

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/studybuddy/studybuddy-server/internal/web/handler"
)

// HeaderUserID carries the authenticated user id set by the identity proxy.
const HeaderUserID = "X-User-ID"

// Middleware reads the user id the identity proxy injected and stores it
// in fiber.Locals for the API handlers. Requests without a valid id are
// rejected before any handler runs.
func Middleware(c *fiber.Ctx) error {
	raw := c.Get(HeaderUserID)
	if raw == "" {
		return handler.FailWithStatus(c, fiber.StatusUnauthorized, "missing "+HeaderUserID+" header")
	}

	userID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || userID == 0 {
		return handler.FailWithStatus(c, fiber.StatusUnauthorized, "invalid "+HeaderUserID+" header")
	}

	c.Locals(handler.UserIDLocal, userID)

	return c.Next()
}

// UserID returns the authenticated user id stored by Middleware.
func UserID(c *fiber.Ctx) uint64 {
	userID, _ := c.Locals(handler.UserIDLocal).(uint64)

	return userID
}
