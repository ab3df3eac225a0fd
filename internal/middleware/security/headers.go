package security

import (
	"github.com/gofiber/fiber/v2"
)

// Headers sets the hardening headers for a JSON-only API. The tool runs on
// an internal network but responses may be proxied, so the usual set still
// applies.
func Headers(development bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Cache-Control", "no-store")

		if !development {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		return c.Next()
	}
}
