package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/univertix/ouvidoria-backend/internal/config"
	"github.com/univertix/ouvidoria-backend/internal/dto"
	"github.com/univertix/ouvidoria-backend/internal/models"
)

// AdminRequired checks, in order:
// 1. Config-based admin token header
// 2. Config-based admin email list
// 3. DB-based user Role field
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(cfg.AdminEmails)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" {
			if c.Get("X-Admin-Token") == cfg.AdminToken {
				return c.Next()
			}
		}

		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid claims",
			})
		}

		email, _ := claims["email"].(string)
		sub, _ := claims["sub"].(string)

		if contains(adminEmails, email) {
			return c.Next()
		}

		if sub != "" {
			userID, err := uuid.Parse(sub)
			if err == nil {
				var user models.User
				if err := db.First(&user, "id = ?", userID).Error; err == nil {
					if user.IsAdmin() {
						return c.Next()
					}
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

// IsAdminCaller reports whether the current request carries admin privileges,
// without rejecting the request. Used where owners and admins share a route.
func IsAdminCaller(c *fiber.Ctx, db *gorm.DB, cfg *config.Config) bool {
	if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
		return true
	}

	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}

	if email, _ := claims["email"].(string); email != "" {
		if contains(parseCSV(cfg.AdminEmails), email) {
			return true
		}
	}

	if sub, _ := claims["sub"].(string); sub != "" {
		if userID, err := uuid.Parse(sub); err == nil {
			var user models.User
			if err := db.First(&user, "id = ?", userID).Error; err == nil {
				return user.IsAdmin()
			}
		}
	}
	return false
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
