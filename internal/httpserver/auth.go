package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/catalog_api/internal/logging"
	authmw "github.com/Skotchmaster/catalog_api/internal/middleware/auth"
	"github.com/Skotchmaster/catalog_api/internal/service"
	"github.com/Skotchmaster/catalog_api/internal/transport"
	"github.com/Skotchmaster/catalog_api/internal/validate"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 422, "reason", "invalid body", "error", err)
		return bindError(err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("login_failed", "status", 422, "reason", "validation failed", "error", err)
		return err
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return validate.Field("email", "The provided credentials are incorrect.")
		}
		l.Error("login_failed", "status", 500, "reason", "cannot issue token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	return c.JSON(http.StatusOK, dataEnvelope{Data: loginData{
		Token:     res.Token,
		TokenType: res.TokenType,
		User:      newUserResource(res.User),
	}})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if err := h.Svc.Logout(ctx, authmw.PrincipalFrom(c)); err != nil {
		return serviceError(l, "logout_failed", err)
	}
	return c.JSON(http.StatusOK, messageEnvelope{Message: "Successfully logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	user := authmw.UserFrom(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated.")
	}
	return c.JSON(http.StatusOK, dataEnvelope{Data: newUserResource(user)})
}
