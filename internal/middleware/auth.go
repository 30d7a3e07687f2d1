// Package middleware provides the HTTP middleware chain: principal
// extraction, request context propagation, tracing and metrics.
package middleware

import (
	"context"
	"strconv"
	"strings"

	"snapgram/internal/models"
	"snapgram/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// UserIDLocal is the fiber locals key holding the authenticated user id.
const UserIDLocal = "userID"

// AuthRequired verifies an HS256 bearer token signed with secret and stores
// its "sub" claim as the principal. Tokens are issued elsewhere.
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization header required"))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid authorization header format"))
		}

		userID, err := ParseSubject(parts[1], secret)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		c.Locals(UserIDLocal, userID)
		ctx := context.WithValue(c.UserContext(), observability.UserIDKey, userID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// ParseSubject validates tokenString and returns the user id in its "sub" claim.
func ParseSubject(tokenString, secret string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, models.NewUnauthorizedError("Invalid or expired token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return 0, models.NewUnauthorizedError("Invalid token structure - missing subject")
	}

	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewUnauthorizedError("Invalid user ID in token")
	}
	return uint(id), nil
}

// UserID returns the principal stored by AuthRequired.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(UserIDLocal).(uint)
	return id, ok
}
