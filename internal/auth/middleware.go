package auth

import (
	"errors"
	"strings"

	"agency-backend/internal/config"
	"agency-backend/internal/database"
	"agency-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUserRoleKey = "user_role"
)

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing Authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserRoleKey, claims.Role)

		return c.Next()
	}
}

// RequireActive runs after JWTMiddleware and turns away tokens whose user
// was deactivated or removed after the token was issued.
func RequireActive() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := Identity(c)
		if err != nil {
			return err
		}

		var user models.User
		err = database.DB.Select("id", "active").First(&user, "id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Account no longer exists")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not check account")
		}
		if !user.Active {
			return fiber.NewError(fiber.StatusUnauthorized, "Account is deactivated")
		}
		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Role missing from token")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "You are not allowed to do this")
	}
}
