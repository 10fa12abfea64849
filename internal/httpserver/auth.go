package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"sweetshop/internal/logging"
	"sweetshop/internal/repo"
	"sweetshop/internal/service"
	"sweetshop/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		l.Warn("register_error", "status", 422, "reason", "missing required field")
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "username, email and password are required")
	}
	if req.Role != "" && !req.Role.Valid() {
		l.Warn("register_error", "status", 422, "reason", "unknown role", "role", req.Role)
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "role must be one of customer, seller, admin")
	}

	user, err := h.Svc.Register(ctx, req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return echo.NewHTTPError(http.StatusBadRequest, "Username or email already registered")
		}
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot register user")
	}

	return c.JSON(http.StatusCreated, user)
}

// Token is the password login endpoint. It accepts form data and answers
// with a bearer access token.
func (h *AuthHTTP) Token(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.token")

	var req transport.TokenRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("token_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	token, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.Response().Header().Set("WWW-Authenticate", "Bearer")
			return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect username or password")
		}
		l.Error("token_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot issue token")
	}

	return c.JSON(http.StatusOK, transport.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}
