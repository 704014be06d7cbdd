// middleware/auth.go
package middleware

import (
	"strconv"
	"strings"

	"maze-quiz-system/services"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
)

const (
	HeaderUserID      = "X-User-ID"
	HeaderActiveLevel = "X-Active-Level"

	localsUserID      = "user_id"
	localsPlayContext = "play_context"
)

// UserContextMiddleware extracts the user identity set by the Gateway.
// Routes under /s/ require it.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(HeaderUserID))

		if strings.HasPrefix(c.Path(), "/s/") && userID == "" {
			log.Warn("❌ [USER_CTX] X-User-ID required but missing on secured route", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not logged in",
			})
		}

		c.Locals(localsUserID, userID)
		return c.Next()
	}
}

// PlayContextMiddleware reads the client's active level. A missing or
// unusable header means a fresh game on level 1.
func PlayContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		pc := services.StartingPlayContext()
		if raw := c.Get(HeaderActiveLevel); raw != "" {
			if lvl, err := strconv.Atoi(raw); err == nil && lvl >= 1 {
				pc.Level = lvl
			}
		}
		c.Locals(localsPlayContext, pc)
		return c.Next()
	}
}

// UserID returns the identity attached by UserContextMiddleware ("" if none).
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsUserID).(string)
	return id
}

// PlayContext returns the active play context for the request.
func PlayContext(c *fiber.Ctx) services.PlayContext {
	if pc, ok := c.Locals(localsPlayContext).(services.PlayContext); ok {
		return pc
	}
	return services.StartingPlayContext()
}

// SetPlayContext hands the (possibly new) play context back to the client.
func SetPlayContext(c *fiber.Ctx, pc services.PlayContext) {
	c.Locals(localsPlayContext, pc)
	c.Set(HeaderActiveLevel, strconv.Itoa(pc.Level))
}
