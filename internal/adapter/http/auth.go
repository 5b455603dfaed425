package http

import (
	"context"
	"net/http"
	"strings"

	"loan-management/internal/domain/user"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	authScheme = "Token"
	callerKey  = "caller"
)

// Authenticator resolves an API token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*user.User, error)
}

// RequireAuth rejects requests without a valid "Authorization: Token <key>" header.
func RequireAuth(a Authenticator, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, found := tokenFrom(c.Request().Header.Get(echo.HeaderAuthorization))
			if !found {
				return fail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			}
			u, err := a.Authenticate(c.Request().Context(), key)
			if err != nil {
				return respondError(c, log, err)
			}
			c.Set(callerKey, u)
			return next(c)
		}
	}
}

func tokenFrom(header string) (string, bool) {
	scheme, key, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, authScheme) {
		return "", false
	}
	key = strings.TrimSpace(key)
	return key, key != ""
}

// CallerFrom returns the authenticated user, or nil on public routes.
func CallerFrom(c echo.Context) *user.User {
	u, _ := c.Get(callerKey).(*user.User)
	return u
}
