package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"sweetshop/internal/logging"
	"sweetshop/internal/models"
	"sweetshop/internal/repo"
	"sweetshop/internal/tokens"
)

const userContextKey = "currentUser"

// Gate resolves a bearer token to a stored user and enforces roles.
type Gate struct {
	Tokens *tokens.Service
	Repo   *repo.GormRepo
}

func (g *Gate) authenticate(c echo.Context) (*models.User, error) {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("middleware", "auth")

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		l.Warn("auth_failed", "status", 401, "reason", "missing bearer token")
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	subject, err := g.Tokens.Verify(strings.TrimPrefix(header, prefix))
	if err != nil {
		l.Warn("auth_failed", "status", 401, "reason", "invalid or expired token", "error", err)
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
	}

	user, err := g.Repo.FindUserByUsername(ctx, subject)
	if err != nil {
		l.Warn("auth_failed", "status", 401, "reason", "subject no longer exists", "subject", subject)
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
	}

	return user, nil
}

// RequireAuth admits any user presenting a valid token.
func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := g.authenticate(c)
		if err != nil {
			return err
		}
		c.Set(userContextKey, user)
		return next(c)
	}
}

// RequireRole additionally demands an exact role match. There is no
// hierarchy: admin does not satisfy a seller requirement.
func (g *Gate) RequireRole(role models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := g.authenticate(c)
			if err != nil {
				return err
			}
			if user.Role != role {
				logging.FromContext(c.Request().Context()).Warn("auth_forbidden",
					"status", 403, "required_role", role, "user_role", user.Role)
				return echo.NewHTTPError(http.StatusForbidden,
					fmt.Sprintf("Operation requires the '%s' role", role))
			}
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user resolved by the gate, or nil on public routes.
func CurrentUser(c echo.Context) *models.User {
	if u, ok := c.Get(userContextKey).(*models.User); ok {
		return u
	}
	return nil
}
