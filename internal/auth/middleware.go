package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jturner/defence-radar/internal/models"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	TierKey   contextKey = "tier"
)

// Middleware validates the JWT token and adds the user ID and tier to the
// request context.
func Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, tier, err := parseAuthorization(c)
		if err != nil {
			return err
		}

		c.Set(string(UserIDKey), userID)
		c.Set(string(TierKey), tier)
		return next(c)
	}
}

// OptionalMiddleware resolves tier from a token when one is present but lets
// anonymous requests through as free tier. The feed endpoint uses this: the
// free slice is public, the pro slice needs a pro token.
func OptionalMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Header.Get("Authorization") == "" {
			c.Set(string(TierKey), models.TierFree)
			return next(c)
		}

		userID, tier, err := parseAuthorization(c)
		if err != nil {
			return err
		}

		c.Set(string(UserIDKey), userID)
		c.Set(string(TierKey), tier)
		return next(c)
	}
}

func parseAuthorization(c echo.Context) (uuid.UUID, string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return uuid.Nil, "", echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return uuid.Nil, "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}

	secretKey, err := jwtSecretFromEnv()
	if err != nil {
		return uuid.Nil, "", echo.NewHTTPError(http.StatusInternalServerError, "Server auth configuration error")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return uuid.Nil, "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid token subject")
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid user ID in token")
	}

	tier := models.TierFree
	if claimed, ok := claims["tier"].(string); ok && claimed == models.TierPro {
		tier = models.TierPro
	}

	return userID, tier, nil
}

// RequireTier gates a route on the caller's subscription tier.
func RequireTier(required string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if required == models.TierPro && TierFromContext(c) != models.TierPro {
				return echo.NewHTTPError(http.StatusForbidden, "Pro subscription required")
			}
			return next(c)
		}
	}
}

// GetUserIDFromContext helper to retrieve the user ID
func GetUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	val := c.Get(string(UserIDKey))
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return id, nil
}

// TierFromContext returns the caller's resolved tier, free when unset.
func TierFromContext(c echo.Context) string {
	if tier, ok := c.Get(string(TierKey)).(string); ok && tier != "" {
		return tier
	}
	return models.TierFree
}
