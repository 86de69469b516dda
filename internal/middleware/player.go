package middleware

import (
	"github.com/couchbaselabs/logg"
	"github.com/gofiber/fiber/v2"
)

// PlayerIDHeader carries the client's persistent player ID.
const PlayerIDHeader = "X-Player-ID"

func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Check if playerID is already set
		if c.Locals("playerID") != nil {
			return c.Next()
		}

		// Check header first
		playerID := c.Get(PlayerIDHeader)
		if playerID == "" {
			playerID = c.Query("playerId")
		}

		if playerID == "" {
			logg.LogTo("HTTP", "Rejecting %s %s: no player ID", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
			})
		}

		// Store in context for this request
		c.Locals("playerID", playerID)
		return c.Next()
	}
}
