package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// UserIDKey is the Locals key holding the authenticated caller id.
const UserIDKey = "user_id"

// Auth validates the bearer token and stores the caller id for the next
// handlers.
func Auth(secret string) fiber.Handler {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "No token, authorization denied")
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			return unauthorized(c, "Invalid token format")
		}

		token, err := parser.Parse(strings.TrimSpace(tokenString), func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid {
			return unauthorized(c, "Invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c, "Invalid token claims")
		}

		// Older tokens carry the id under "id".
		userID, _ := claims["user_id"].(string)
		if userID == "" {
			userID, _ = claims["id"].(string)
		}
		if userID == "" {
			return unauthorized(c, "Invalid token payload")
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserID returns the caller id stored by Auth.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   "unauthenticated",
		"message": msg,
	})
}
