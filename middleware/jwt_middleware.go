package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"taskhub/utils"
)

// Protected authenticates the request from its bearer token alone. The
// verifier is stateless: claims are trusted as issued, with no user lookup,
// so every service can run without access to the user store. Any structural,
// signature, or expiry problem collapses into the same 401.
//
// Authentication runs before any resource lookup so unauthenticated callers
// can't probe which resources exist.
func Protected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization required",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization format",
			})
		}

		claims, err := utils.ParseToken(tokenParts[1], secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("userID", claims.UserID)
		c.Locals("userRole", claims.Role)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// RequireRoles rejects authenticated principals whose role claim is not in
// the allowed set. Must be mounted after Protected.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("userRole").(string)
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You do not have permission to perform this action",
		})
	}
}

// Principal returns the authenticated user's id and role from the request
// context. Handlers doing resource-level checks read these.
func Principal(c *fiber.Ctx) (uint, string) {
	id, _ := c.Locals("userID").(uint)
	role, _ := c.Locals("userRole").(string)
	return id, role
}
