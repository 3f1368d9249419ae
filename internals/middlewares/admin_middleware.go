package middlewares

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"helmetkiosk_backend/internals/configs"
)

const AdminCookieName = "admin_token"

// IssueAdminToken membuat JWT flag admin untuk cookie dashboard.
func IssueAdminToken(username string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":      username,
		"is_admin": true,
		"exp":      time.Now().Add(ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(configs.JWTSecret))
}

// AdminOnly: gate dashboard admin lewat cookie JWT (flag is_admin).
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Cookies(AdminCookieName))
		if raw == "" {
			// fallback: Authorization Bearer (untuk curl/testing)
			if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				raw = strings.TrimSpace(authz[7:])
			}
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(configs.JWTSecret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}
		if isAdmin, _ := claims["is_admin"].(bool); !isAdmin {
			return fiber.NewError(fiber.StatusForbidden, "Admin only")
		}

		c.Locals("admin_user", claims["sub"])
		return c.Next()
	}
}
