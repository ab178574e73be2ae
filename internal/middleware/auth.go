package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-api/internal/model"
	"github.com/moviehub/movie-api/internal/utils"
)

// userKey is the context key under which Protect stores the resolved
// identity. Handlers read it through CurrentUser instead of re-parsing
// the token.
const userKey = "auth_user"

// UserSource resolves a user by ID. Implemented by repository.UserRepo.
type UserSource interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// SessionSource answers whether a user still has a live session.
// Implemented by repository.SessionRepo.
type SessionSource interface {
	HasLive(ctx context.Context, userID uint64) (bool, error)
}

// Protect returns the auth guard for protected routes. Per request it
// extracts the bearer token (Authorization header first, then the "jwt"
// cookie), verifies it, loads the user, and confirms a valid unexpired
// session row exists. The first failing step short-circuits with 401.
// Token validity alone is not sufficient: a logged-out user holding a
// still-unexpired JWT is rejected at the session check.
func Protect(secret string, users UserSource, sessions SessionSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractToken(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"status": "error", "message": "you are not authorized to access this route",
				})
			}

			uid, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				msg := "invalid token, please log in again"
				if err == utils.ErrTokenExpired {
					msg = "your token has expired, please log in again"
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": msg})
			}

			ctx := c.Request().Context()
			u, err := users.GetByID(ctx, uid)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"status": "error", "message": "the user belonging to this token no longer exists",
				})
			}

			live, err := sessions.HasLive(ctx, u.ID)
			if err != nil || !live {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"status": "error", "message": "your session has expired, please log in again",
				})
			}

			c.Set(userKey, u)
			return next(c)
		}
	}
}

// CurrentUser returns the identity attached by Protect. The second return
// is false on routes where the guard did not run.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userKey).(model.User)
	return u, ok
}

// extractToken reads the bearer token from the Authorization header or,
// failing that, from the httpOnly "jwt" cookie. The header wins when both
// are present.
func extractToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if ck, err := c.Cookie("jwt"); err == nil && ck.Value != "" {
		return ck.Value
	}
	return ""
}
